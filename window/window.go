// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package window provides the windowing and input collaborator that the
// device layer drives. The device layer never reimplements window system
// behaviour, it only calls through Platform and Window.
package window

import (
	"unsafe"
)

// Extent is the size of a window in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// Platform describes the process wide prerequisites of a windowing system.
type Platform interface {
	// Setup initialises the windowing system and loads the Vulkan loader.
	Setup() error

	// ProcAddr returns vkGetInstanceProcAddr as resolved by the windowing
	// system, nil if Setup was not called.
	ProcAddr() unsafe.Pointer

	// Teardown releases everything Setup acquired. Safe to call twice.
	Teardown()
}

// Window describes a single platform window able to host a Vulkan surface.
type Window interface {
	// Create opens the window.
	Create(width, height uint32, title string) error

	// Terminate closes the window. Safe to call twice.
	Terminate()

	// PollInputs drains pending platform events into the InputCenter.
	PollInputs()

	// Handle returns the platform handle of the window.
	Handle() interface{}

	// Extent returns the current size of the window.
	Extent() Extent

	// InputCenter returns the input state fed by PollInputs.
	InputCenter() *InputCenter

	// RequiredExtensions lists instance extensions needed to present to this window.
	RequiredExtensions() []string

	// CreateSurface creates a presentation surface for the given instance.
	// The returned pointer refers to the driver surface handle.
	CreateSurface(instance interface{}) (unsafe.Pointer, error)
}
