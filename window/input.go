// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Key identifies a keyboard key.
type Key = sdl.Keycode

// Keys the application reacts to
const (
	KeyA      Key = sdl.K_a
	KeyEscape Key = sdl.K_ESCAPE
	KeyR      Key = sdl.K_r
)

// NewInputCenter creates input state for a freshly opened window.
func NewInputCenter() *InputCenter {
	return &InputCenter{
		windowOpen: true,
		keys:       make(map[Key]bool),
	}
}

// InputCenter keeps the input state of a window between polls.
type InputCenter struct {
	windowOpen bool
	resized    bool
	extent     Extent
	keys       map[Key]bool
}

// IsWindowOpen reports false once the window was asked to close.
func (ic *InputCenter) IsWindowOpen() bool {
	return ic.windowOpen
}

// IsPressed reports whether the key is currently held down.
func (ic *InputCenter) IsPressed(k Key) bool {
	return ic.keys[k]
}

// Resized reports a size change since the last call, and the new extent.
func (ic *InputCenter) Resized() (Extent, bool) {
	resized := ic.resized
	ic.resized = false
	return ic.extent, resized
}

// Close marks the window as closed.
func (ic *InputCenter) Close() {
	ic.windowOpen = false
}

// Handle applies a single platform event.
func (ic *InputCenter) Handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		ic.windowOpen = false
	case *sdl.KeyboardEvent:
		ic.keys[e.Keysym.Sym] = e.State == sdl.PRESSED
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_CLOSE:
			ic.windowOpen = false
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			ic.resized = true
			ic.extent = Extent{Width: uint32(e.Data1), Height: uint32(e.Data2)}
		}
	}
}
