// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/devblok/shaderstudio/core"
	"github.com/devblok/shaderstudio/device"
	"github.com/devblok/shaderstudio/engine"
	"github.com/devblok/shaderstudio/shader"
	"github.com/devblok/shaderstudio/window"
)

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the studio window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudio(opts.cfg, opts.logger)
		},
	}
}

func deviceOptions(cfg core.Configuration, logger *log.Logger) (device.Options, error) {
	policy, err := device.ParsePolicy(cfg.Renderer.Selection)
	if err != nil {
		return device.Options{}, err
	}
	return device.Options{
		Platform:   window.NewSDLPlatform(logger),
		Window:     window.NewSDLWindow(logger),
		Validation: cfg.Renderer.Validation,
		Policy:     policy,
		Extensions: cfg.Renderer.DeviceExtensions,
		Logger:     logger,
	}, nil
}

func runStudio(cfg core.Configuration, logger *log.Logger) error {
	if cfg.Window.MessageBox {
		logger.AddHook(window.NewMessageBoxHook(log.ErrorLevel))
	}
	logger.Info("Welcome to the Shader Studio!")

	devOpts, err := deviceOptions(cfg, logger)
	if err != nil {
		return err
	}

	src, closeSource, err := shaderSource(cfg.Shaders, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	graphics := engine.NewGraphicsEngine(engine.Config{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Device: devOpts,
		Logger: logger,
	})
	defer graphics.Terminate()

	if err := graphics.Initialize(device.APIVulkan); err != nil {
		return err
	}
	if err := graphics.LoadShaders(src); err != nil {
		return err
	}

	var watcher *shader.Watcher
	if dir, ok := src.(*shader.DirSource); ok && cfg.Shaders.Watch {
		if watcher, err = shader.NewWatcher(dir.Dir(), logger); err != nil {
			return err
		}
		defer watcher.Close()
	}

	frameTime := core.NewTime(cfg.Time)
	defer frameTime.Stop()

	input := graphics.InputCenter()
	var reloadHeld bool
	for input.IsWindowOpen() {
		<-frameTime.FpsTicker().C

		if err := graphics.Update(); err != nil {
			return err
		}

		if input.IsPressed(window.KeyA) {
			logger.Info("Key A")
		}
		if input.IsPressed(window.KeyEscape) {
			input.Close()
		}

		reload := input.IsPressed(window.KeyR)
		if reload && !reloadHeld {
			if err := graphics.LoadShaders(src); err != nil {
				logger.WithError(err).Warn("shader reload failed")
			}
		}
		reloadHeld = reload

		if watcher != nil {
			if names := watcher.Changes(); len(names) > 0 {
				graphics.ReloadShaders(src, names)
			}
		}
	}

	logger.Info("Event loop exited")
	return nil
}
