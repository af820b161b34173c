// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

// Swapchain is a presentable image chain with one view per image.
type Swapchain struct {
	driver  Driver
	device  vk.Device
	surface vk.Surface
	layout  QueueLayout

	Handle      vk.Swapchain
	Images      []vk.Image
	Views       []vk.ImageView
	Format      vk.Format
	ColorSpace  vk.ColorSpace
	Extent      vk.Extent2D
	PresentMode vk.PresentMode
	ImageCount  uint32
}

// ChooseSurfaceFormat prefers BGRA8 in non-linear sRGB, else the first format.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	return formats[0]
}

// ChoosePresentMode prefers mailbox, then immediate, then FIFO.
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	chosen := vk.PresentModeFifo
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
		if mode == vk.PresentModeImmediate {
			chosen = mode
		}
	}
	return chosen
}

// ChooseExtent clamps the requested size into the surface limits.
func ChooseExtent(capabilities vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	return vk.Extent2D{
		Width:  clamp(width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ImageCount is one more than the minimum, bounded by a nonzero maximum.
func ImageCount(capabilities vk.SurfaceCapabilities) uint32 {
	count := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount != 0 && capabilities.MaxImageCount < count {
		count = capabilities.MaxImageCount
	}
	return count
}

var compositeAlphaFlags = []vk.CompositeAlphaFlagBits{
	vk.CompositeAlphaOpaqueBit,
	vk.CompositeAlphaPreMultipliedBit,
	vk.CompositeAlphaPostMultipliedBit,
	vk.CompositeAlphaInheritBit,
}

// ChooseCompositeAlpha takes the first supported mode in
// opaque, pre-multiplied, post-multiplied, inherit order.
func ChooseCompositeAlpha(capabilities vk.SurfaceCapabilities) vk.CompositeAlphaFlagBits {
	for _, flag := range compositeAlphaFlags {
		if capabilities.SupportedCompositeAlpha&vk.CompositeAlphaFlags(flag) != 0 {
			return flag
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

// CreateSwapchain builds a swapchain and its image views for surface.
func CreateSwapchain(driver Driver, dev *LogicalDevice, surface vk.Surface, support SurfaceSupport, layout QueueLayout, width, height uint32) (*Swapchain, error) {
	s := &Swapchain{
		driver:  driver,
		device:  dev.Handle,
		surface: surface,
		layout:  layout,
		Handle:  vk.NullSwapchain,
	}
	if err := s.build(support, width, height, vk.NullSwapchain); err != nil {
		return nil, err
	}
	return s, nil
}

// Recreate rebuilds the chain for a new size, handing the current
// handle to the driver as the one being replaced.
func (s *Swapchain) Recreate(support SurfaceSupport, width, height uint32) error {
	old := s.Handle
	s.destroyViews()
	s.Handle = vk.NullSwapchain

	err := s.build(support, width, height, old)
	if old != vk.NullSwapchain {
		s.driver.DestroySwapchain(s.device, old)
	}
	return err
}

func (s *Swapchain) build(support SurfaceSupport, width, height uint32, old vk.Swapchain) error {
	if !support.Adequate() {
		return errors.New("surface offers no formats or present modes")
	}
	capabilities := support.Capabilities
	format := ChooseSurfaceFormat(support.Formats)
	presentMode := ChoosePresentMode(support.PresentModes)
	extent := ChooseExtent(capabilities, width, height)
	imageCount := ImageCount(capabilities)

	scci := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          s.surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     capabilities.CurrentTransform,
		CompositeAlpha:   ChooseCompositeAlpha(capabilities),
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     old,
	}
	graphics, transfer := s.layout.Graphics.Index, s.layout.Transfer.Index
	if graphics != transfer {
		scci.ImageSharingMode = vk.SharingModeConcurrent
		scci.QueueFamilyIndexCount = 2
		scci.PQueueFamilyIndices = []uint32{graphics, transfer}
	} else {
		scci.ImageSharingMode = vk.SharingModeExclusive
	}

	handle, err := s.driver.CreateSwapchain(s.device, &scci)
	if err != nil {
		return err
	}

	images, err := s.driver.SwapchainImages(s.device, handle)
	if err != nil {
		s.driver.DestroySwapchain(s.device, handle)
		return err
	}

	views := make([]vk.ImageView, 0, len(images))
	for idx, image := range images {
		ivci := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   format.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		view, err := s.driver.CreateImageView(s.device, &ivci)
		if err != nil {
			for _, v := range views {
				s.driver.DestroyImageView(s.device, v)
			}
			s.driver.DestroySwapchain(s.device, handle)
			return errors.Wrapf(err, "image view %d", idx)
		}
		views = append(views, view)
	}

	s.Handle = handle
	s.Images = images
	s.Views = views
	s.Format = format.Format
	s.ColorSpace = format.ColorSpace
	s.Extent = extent
	s.PresentMode = presentMode
	s.ImageCount = imageCount
	return nil
}

func (s *Swapchain) destroyViews() {
	for _, view := range s.Views {
		s.driver.DestroyImageView(s.device, view)
	}
	s.Views = nil
	s.Images = nil
}

// Destroy releases every view and then the swapchain.
func (s *Swapchain) Destroy() {
	if s == nil {
		return
	}
	s.destroyViews()
	if s.Handle != vk.NullSwapchain {
		s.driver.DestroySwapchain(s.device, s.Handle)
	}
	s.Handle = vk.NullSwapchain
}
