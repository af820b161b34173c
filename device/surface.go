// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"unsafe"

	vk "github.com/goki/vulkan"
)

// SurfaceSupport is what a physical device offers for a surface.
type SurfaceSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// Adequate reports whether a swapchain can be built from this support.
func (s SurfaceSupport) Adequate() bool {
	return len(s.Formats) > 0 && len(s.PresentModes) > 0
}

// QuerySurfaceSupport reads capabilities, formats and present modes.
func QuerySurfaceSupport(driver Driver, pd vk.PhysicalDevice, surface vk.Surface) (SurfaceSupport, error) {
	var (
		support SurfaceSupport
		err     error
	)
	if support.Capabilities, err = driver.SurfaceCapabilities(pd, surface); err != nil {
		return SurfaceSupport{}, err
	}
	if support.Formats, err = driver.SurfaceFormats(pd, surface); err != nil {
		return SurfaceSupport{}, err
	}
	if support.PresentModes, err = driver.SurfacePresentModes(pd, surface); err != nil {
		return SurfaceSupport{}, err
	}
	return support, nil
}

var sampleCounts = []vk.SampleCountFlagBits{
	vk.SampleCount64Bit,
	vk.SampleCount32Bit,
	vk.SampleCount16Bit,
	vk.SampleCount8Bit,
	vk.SampleCount4Bit,
	vk.SampleCount2Bit,
}

// MaxUsableSampleCount is the highest sample count usable for both color
// and depth framebuffer attachments.
func MaxUsableSampleCount(limits vk.PhysicalDeviceLimits) vk.SampleCountFlagBits {
	counts := limits.FramebufferColorSampleCounts & limits.FramebufferDepthSampleCounts
	for _, count := range sampleCounts {
		if counts&vk.SampleCountFlags(count) != 0 {
			return count
		}
	}
	return vk.SampleCount1Bit
}

// surfaceFromPointer reads the surface handle a window system wrote out.
func surfaceFromPointer(p unsafe.Pointer) vk.Surface {
	return vk.SurfaceFromPointer(uintptr(p))
}
