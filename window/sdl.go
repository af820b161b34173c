// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"unsafe"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

// NewSDLPlatform creates the SDL2 windowing prerequisites.
func NewSDLPlatform(logger log.FieldLogger) *SDLPlatform {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &SDLPlatform{logger: logger.WithField("component", "sdl")}
}

// SDLPlatform initialises SDL video, events and the Vulkan loader.
type SDLPlatform struct {
	logger      log.FieldLogger
	initialised bool
	vulkan      bool
}

// Setup implements interface
func (p *SDLPlatform) Setup() error {
	if p.initialised {
		return nil
	}
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return errors.Wrap(err, "sdl.Init()")
	}
	p.initialised = true

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		p.logger.WithError(err).Error("SDL could not load the Vulkan loader")
		return errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}
	p.vulkan = true
	return nil
}

// ProcAddr implements interface
func (p *SDLPlatform) ProcAddr() unsafe.Pointer {
	if !p.vulkan {
		return nil
	}
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// Teardown implements interface
func (p *SDLPlatform) Teardown() {
	if p.vulkan {
		sdl.VulkanUnloadLibrary()
		p.vulkan = false
	}
	if p.initialised {
		sdl.Quit()
		p.initialised = false
	}
}

// NewSDLWindow creates a not yet opened SDL2 window.
func NewSDLWindow(logger log.FieldLogger) *SDLWindow {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &SDLWindow{
		logger: logger.WithField("component", "window"),
		input:  NewInputCenter(),
	}
}

// SDLWindow is a Vulkan capable SDL2 window.
type SDLWindow struct {
	logger log.FieldLogger
	window *sdl.Window
	input  *InputCenter
}

// Create implements interface
func (w *SDLWindow) Create(width, height uint32, title string) error {
	window, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(width),
		int32(height),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return errors.Wrap(err, "sdl.CreateWindow()")
	}
	w.window = window
	w.input = NewInputCenter()
	w.logger.WithFields(log.Fields{
		"width":  width,
		"height": height,
	}).Debug("window created")
	return nil
}

// Terminate implements interface
func (w *SDLWindow) Terminate() {
	if w.window == nil {
		return
	}
	if err := w.window.Destroy(); err != nil {
		w.logger.WithError(err).Warn("window destroy failed")
	}
	w.window = nil
	w.input.Close()
}

// PollInputs implements interface
func (w *SDLWindow) PollInputs() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		w.input.Handle(event)
	}
}

// Handle implements interface
func (w *SDLWindow) Handle() interface{} {
	return w.window
}

// Extent implements interface
func (w *SDLWindow) Extent() Extent {
	if w.window == nil {
		return Extent{}
	}
	width, height := w.window.GetSize()
	return Extent{Width: uint32(width), Height: uint32(height)}
}

// InputCenter implements interface
func (w *SDLWindow) InputCenter() *InputCenter {
	return w.input
}

// RequiredExtensions implements interface
func (w *SDLWindow) RequiredExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// CreateSurface implements interface
func (w *SDLWindow) CreateSurface(instance interface{}) (unsafe.Pointer, error) {
	if w.window == nil {
		return nil, errors.New("window not created")
	}
	surface, err := w.window.VulkanCreateSurface(instance)
	if err != nil {
		return nil, errors.Wrap(err, "sdl.VulkanCreateSurface()")
	}
	return surface, nil
}
