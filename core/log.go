// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// NewLogger creates the application logger with the configured
// verbosity. Output defaults to stderr when w is nil.
func NewLogger(cfg LogConfiguration, w io.Writer) (*log.Logger, error) {
	logger := log.New()
	if w == nil {
		w = os.Stderr
	}
	logger.SetOutput(w)

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	logger.SetLevel(lvl)

	switch cfg.Format {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{
			FullTimestamp: true,
		})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return nil, errors.Errorf("unknown log format %q", cfg.Format)
	}
	return logger, nil
}
