// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"os"

	"github.com/gobuffalo/packr"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/shaderstudio/core"
	"github.com/devblok/shaderstudio/shader"
)

// builtinShaders are packed into the binary for when
// no shader directory is present.
var builtinShaders = packr.NewBox("./shaders")

// shaderSource picks where shaders come from: a configured bundle,
// then the configured directory, then the built in shaders.
func shaderSource(cfg core.ShaderConfiguration, logger log.FieldLogger) (shader.Source, func(), error) {
	if cfg.Bundle != "" {
		bundle, err := shader.OpenBundle(cfg.Bundle)
		if err != nil {
			return nil, nil, err
		}
		logger.WithField("bundle", cfg.Bundle).Info("using shader bundle")
		return bundle, func() { bundle.Close() }, nil
	}
	if cfg.Directory != "" {
		if info, err := os.Stat(cfg.Directory); err == nil && info.IsDir() {
			logger.WithField("directory", cfg.Directory).Info("using shader directory")
			return shader.NewDirSource(cfg.Directory), func() {}, nil
		}
		logger.WithField("directory", cfg.Directory).Warn("shader directory not found, using built in shaders")
	}
	return shader.NewBoxSource(builtinShaders), func() {}, nil
}
