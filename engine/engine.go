// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package engine drives a device through it's lifecycle and keeps
// the loaded shaders.
package engine

import (
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/shaderstudio/device"
	"github.com/devblok/shaderstudio/shader"
	"github.com/devblok/shaderstudio/window"
)

// Window defaults
const (
	DefaultTitle  = "Shader Studio v1.0"
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// ErrInitialized is returned when Initialize is called twice
var ErrInitialized = errors.New("graphics engine already initialized")

// Config configures a GraphicsEngine
type Config struct {
	Title  string
	Width  uint32
	Height uint32

	Device device.Options

	// NewDevice creates the backend, device.New when nil
	NewDevice func(device.GraphicsAPI, device.Options) (device.Device, error)

	Logger log.FieldLogger
}

// NewGraphicsEngine creates an engine, nothing is acquired
// until Initialize.
func NewGraphicsEngine(cfg Config) *GraphicsEngine {
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		cfg.Width, cfg.Height = DefaultWidth, DefaultHeight
	}
	if cfg.NewDevice == nil {
		cfg.NewDevice = device.New
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	if cfg.Device.Logger == nil {
		cfg.Device.Logger = logger
	}
	return &GraphicsEngine{
		cfg:     cfg,
		logger:  logger.WithField("component", "engine"),
		shaders: make(map[string]*shader.Code),
	}
}

// GraphicsEngine owns a device and the render target drawn to
type GraphicsEngine struct {
	cfg    Config
	logger log.FieldLogger

	device  device.Device
	target  device.RenderTarget
	shaders map[string]*shader.Code
}

// Initialize creates the device of the given api, opens the window
// and creates a screen bound render target the size of it. Terminate
// must be called even if Initialize fails.
func (e *GraphicsEngine) Initialize(api device.GraphicsAPI) error {
	if e.device != nil {
		return ErrInitialized
	}
	dev, err := e.cfg.NewDevice(api, e.cfg.Device)
	if err != nil {
		return err
	}
	e.device = dev

	if err := dev.CreateWindow(e.cfg.Width, e.cfg.Height, e.cfg.Title); err != nil {
		return err
	}
	if err := dev.Initialize(); err != nil {
		return err
	}
	target, err := dev.CreateRenderTarget(device.ScreenBound3D, e.cfg.Width, e.cfg.Height, 0, 0)
	if err != nil {
		return err
	}
	e.target = target

	e.logger.WithFields(log.Fields{
		"api":     api.String(),
		"buffers": dev.MaxFrameBufferCount(),
	}).Info("graphics engine initialized")
	return nil
}

// Update draws one frame, resizing the render targets first
// when the window size changed.
func (e *GraphicsEngine) Update() error {
	e.device.BeginDraw()
	if extent, ok := e.device.InputCenter().Resized(); ok && extent.Width > 0 && extent.Height > 0 {
		if err := e.device.Resize(extent.Width, extent.Height); err != nil {
			return err
		}
		e.logger.WithFields(log.Fields{
			"width":  extent.Width,
			"height": extent.Height,
		}).Debug("render targets resized")
	}
	e.device.Update()
	e.device.EndDraw()
	return nil
}

// Terminate releases the render target and the device
func (e *GraphicsEngine) Terminate() {
	if e.device == nil {
		return
	}
	if e.target != nil {
		e.device.DestroyRenderTarget(e.target)
		e.target = nil
	}
	e.device.Terminate()
	e.device = nil
}

// InputCenter of the engine window, nil before Initialize
func (e *GraphicsEngine) InputCenter() *window.InputCenter {
	if e.device == nil {
		return nil
	}
	return e.device.InputCenter()
}

// Device returns the device in use
func (e *GraphicsEngine) Device() device.Device {
	return e.device
}

// RenderTarget returns the screen bound target
func (e *GraphicsEngine) RenderTarget() device.RenderTarget {
	return e.target
}

// LoadShaders replaces the loaded shaders with all shaders of src
func (e *GraphicsEngine) LoadShaders(src shader.Source) error {
	codes, err := shader.LoadAll(src)
	if err != nil {
		return errors.Wrap(err, "loading shaders")
	}
	e.shaders = make(map[string]*shader.Code, len(codes))
	for _, code := range codes {
		e.shaders[code.Name] = code
	}
	e.logger.WithField("count", len(codes)).Info("shaders loaded")
	return nil
}

// ReloadShaders loads the named shaders again. A shader that fails
// to load keeps it's previous code. Returns the number reloaded.
func (e *GraphicsEngine) ReloadShaders(src shader.Source, names []string) int {
	var reloaded int
	for _, name := range names {
		code, err := src.Load(name)
		if err != nil {
			e.logger.WithError(err).WithField("shader", name).Warn("shader reload failed")
			continue
		}
		e.shaders[name] = code
		reloaded++
		e.logger.WithFields(log.Fields{
			"shader": name,
			"kind":   code.Kind.String(),
		}).Info("shader reloaded")
	}
	return reloaded
}

// Shader returns a loaded shader by name
func (e *GraphicsEngine) Shader(name string) (*shader.Code, bool) {
	code, ok := e.shaders[name]
	return code, ok
}

// Shaders lists the loaded shader names
func (e *GraphicsEngine) Shaders() []string {
	names := make([]string, 0, len(e.shaders))
	for name := range e.shaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
