// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"github.com/go-gl/mathgl/mgl32"
)

// RenderTargetType tells where and in how many dimensions a target draws.
type RenderTargetType int

// Render target kinds
const (
	ScreenBound2D RenderTargetType = iota
	ScreenBound3D
	OffScreen2D
	OffScreen3D
)

func (t RenderTargetType) String() string {
	switch t {
	case ScreenBound2D:
		return "ScreenBound2D"
	case ScreenBound3D:
		return "ScreenBound3D"
	case OffScreen2D:
		return "OffScreen2D"
	case OffScreen3D:
		return "OffScreen3D"
	}
	return "Unknown"
}

// RenderTarget is a destination for frames.
type RenderTarget interface {
	Type() RenderTargetType
	Extent() (width, height uint32)
	Terminate()
}

const (
	fieldOfView = 45
	nearPlane   = 0.1
	farPlane    = 100
)

func newScreenBound3D(swapchain *Swapchain, xOffset, yOffset float32) *ScreenBound3DTarget {
	t := &ScreenBound3DTarget{
		swapchain: swapchain,
		offset:    mgl32.Vec2{xOffset, yOffset},
	}
	t.updateProjection()
	return t
}

// ScreenBound3DTarget presents 3D frames to the window through a swapchain.
type ScreenBound3DTarget struct {
	swapchain  *Swapchain
	offset     mgl32.Vec2
	projection mgl32.Mat4
}

// Type implements interface
func (t *ScreenBound3DTarget) Type() RenderTargetType {
	return ScreenBound3D
}

// Extent implements interface
func (t *ScreenBound3DTarget) Extent() (uint32, uint32) {
	return t.swapchain.Extent.Width, t.swapchain.Extent.Height
}

// Swapchain returns the presentable image chain.
func (t *ScreenBound3DTarget) Swapchain() *Swapchain {
	return t.swapchain
}

// Projection is the perspective projection matching the current extent.
func (t *ScreenBound3DTarget) Projection() mgl32.Mat4 {
	return t.projection
}

// Offset is the translation placing the target within the window.
func (t *ScreenBound3DTarget) Offset() mgl32.Mat4 {
	return mgl32.Translate3D(t.offset.X(), t.offset.Y(), 0)
}

// Resize rebuilds the swapchain for a new window size.
func (t *ScreenBound3DTarget) Resize(support SurfaceSupport, width, height uint32) error {
	if err := t.swapchain.Recreate(support, width, height); err != nil {
		return err
	}
	t.updateProjection()
	return nil
}

func (t *ScreenBound3DTarget) updateProjection() {
	width, height := t.Extent()
	aspect := float32(1)
	if height != 0 {
		aspect = float32(width) / float32(height)
	}
	t.projection = mgl32.Perspective(mgl32.DegToRad(fieldOfView), aspect, nearPlane, farPlane)
}

// Terminate implements interface
func (t *ScreenBound3DTarget) Terminate() {
	t.swapchain.Destroy()
}
