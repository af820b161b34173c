// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import "github.com/pkg/errors"

// Errors returned by device bring-up. Compare with errors.Cause.
var (
	ErrNoAccelerators        = errors.New("no accelerators found")
	ErrNoSuitableAccelerator = errors.New("no suitable accelerator found")
	ErrIncompleteQueueLayout = errors.New("queue layout is incomplete")
	ErrInvalidState          = errors.New("device is not in a state that allows this call")
	ErrUnsupportedAPI        = errors.New("unsupported graphics API")
)
