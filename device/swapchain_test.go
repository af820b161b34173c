// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"testing"

	qt "github.com/frankban/quicktest"
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

// VK_COLOR_SPACE_EXTENDED_SRGB_LINEAR_EXT
const linearColorSpace = vk.ColorSpace(1000104002)

var (
	bgraSRGB   = vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	rgbaLinear = vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: linearColorSpace}
	bgraLinear = vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: linearColorSpace}
)

func TestChooseSurfaceFormat(t *testing.T) {
	c := qt.New(t)
	c.Assert(ChooseSurfaceFormat([]vk.SurfaceFormat{rgbaLinear, bgraLinear, bgraSRGB}), qt.Equals, bgraSRGB)
	c.Assert(ChooseSurfaceFormat([]vk.SurfaceFormat{bgraSRGB, rgbaLinear}), qt.Equals, bgraSRGB)
	c.Assert(ChooseSurfaceFormat([]vk.SurfaceFormat{bgraLinear, rgbaLinear}), qt.Equals, bgraLinear)
	c.Assert(ChooseSurfaceFormat([]vk.SurfaceFormat{rgbaLinear}), qt.Equals, rgbaLinear)
}

func TestChoosePresentMode(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		modes []vk.PresentMode
		want  vk.PresentMode
	}{
		{[]vk.PresentMode{vk.PresentModeFifo}, vk.PresentModeFifo},
		{[]vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeMailbox}, vk.PresentModeMailbox},
		{[]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate}, vk.PresentModeImmediate},
		{[]vk.PresentMode{vk.PresentModeMailbox, vk.PresentModeFifo}, vk.PresentModeMailbox},
		{nil, vk.PresentModeFifo},
	}
	for _, test := range tests {
		c.Assert(ChoosePresentMode(test.modes), qt.Equals, test.want)
	}
}

func TestChooseExtent(t *testing.T) {
	c := qt.New(t)
	capabilities := vk.SurfaceCapabilities{
		MinImageExtent: vk.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: vk.Extent2D{Width: 2000, Height: 1000},
	}
	tests := []struct {
		width, height uint32
		want          vk.Extent2D
	}{
		{1280, 720, vk.Extent2D{Width: 1280, Height: 720}},
		{100, 1000, vk.Extent2D{Width: 100, Height: 1000}},
		{50, 20, vk.Extent2D{Width: 100, Height: 100}},
		{4000, 3000, vk.Extent2D{Width: 2000, Height: 1000}},
		{50, 3000, vk.Extent2D{Width: 100, Height: 1000}},
	}
	for _, test := range tests {
		got := ChooseExtent(capabilities, test.width, test.height)
		c.Assert(got.Width, qt.Equals, test.want.Width)
		c.Assert(got.Height, qt.Equals, test.want.Height)
	}
}

func TestImageCount(t *testing.T) {
	c := qt.New(t)
	c.Assert(ImageCount(vk.SurfaceCapabilities{MinImageCount: 2}), qt.Equals, uint32(3))
	c.Assert(ImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}), qt.Equals, uint32(2))
	c.Assert(ImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}), qt.Equals, uint32(3))
}

func TestChooseCompositeAlpha(t *testing.T) {
	c := qt.New(t)
	all := vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit | vk.CompositeAlphaPreMultipliedBit |
		vk.CompositeAlphaPostMultipliedBit | vk.CompositeAlphaInheritBit)
	c.Assert(ChooseCompositeAlpha(vk.SurfaceCapabilities{SupportedCompositeAlpha: all}), qt.Equals, vk.CompositeAlphaOpaqueBit)

	post := vk.CompositeAlphaFlags(vk.CompositeAlphaPostMultipliedBit | vk.CompositeAlphaInheritBit)
	c.Assert(ChooseCompositeAlpha(vk.SurfaceCapabilities{SupportedCompositeAlpha: post}), qt.Equals, vk.CompositeAlphaPostMultipliedBit)

	inherit := vk.CompositeAlphaFlags(vk.CompositeAlphaInheritBit)
	c.Assert(ChooseCompositeAlpha(vk.SurfaceCapabilities{SupportedCompositeAlpha: inherit}), qt.Equals, vk.CompositeAlphaInheritBit)
}

func newTestSwapchainDevice(c *qt.C, driver *fakeDriver) *LogicalDevice {
	acc := &Accelerator{Handle: driver.devices[0]}
	layout := DiscoverQueues(driver, acc.Handle)
	dev, err := CreateLogicalDevice(driver, acc, layout, []string{"VK_KHR_swapchain"}, nil)
	c.Assert(err, qt.IsNil)
	return dev
}

func TestCreateSwapchainScenario(t *testing.T) {
	c := qt.New(t)
	driver := newFakeDriver(newFakeAccelerator("gpu", vk.PhysicalDeviceTypeDiscreteGpu))
	dev := newTestSwapchainDevice(c, driver)

	support := SurfaceSupport{
		Capabilities: vk.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  0,
			MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
		},
		Formats:      []vk.SurfaceFormat{rgbaLinear},
		PresentModes: []vk.PresentMode{vk.PresentModeFifo},
	}
	layout := QueueLayout{
		Graphics: QueueFamily{Index: 0, Found: true},
		Compute:  QueueFamily{Index: 0, Found: true},
		Transfer: QueueFamily{Index: 0, Found: true},
	}

	swapchain, err := CreateSwapchain(driver, dev, fakeHandle[vk.Surface](), support, layout, 1280, 720)
	c.Assert(err, qt.IsNil)
	c.Assert(swapchain.Format, qt.Equals, vk.FormatR8g8b8a8Unorm)
	c.Assert(swapchain.ColorSpace, qt.Equals, linearColorSpace)
	c.Assert(swapchain.PresentMode, qt.Equals, vk.PresentModeFifo)
	c.Assert(swapchain.Extent.Width, qt.Equals, uint32(1280))
	c.Assert(swapchain.Extent.Height, qt.Equals, uint32(720))
	c.Assert(swapchain.ImageCount, qt.Equals, uint32(3))
	c.Assert(swapchain.Images, qt.HasLen, 3)
	c.Assert(swapchain.Views, qt.HasLen, len(swapchain.Images))

	info := driver.swapchainInfos[0]
	c.Assert(info.MinImageCount, qt.Equals, uint32(3))
	c.Assert(info.ImageSharingMode, qt.Equals, vk.SharingModeExclusive)
	c.Assert(info.PQueueFamilyIndices, qt.HasLen, 0)
	c.Assert(info.CompositeAlpha, qt.Equals, vk.CompositeAlphaOpaqueBit)
	c.Assert(info.OldSwapchain, qt.Equals, vk.NullSwapchain)
}

func TestCreateSwapchainConcurrentSharing(t *testing.T) {
	c := qt.New(t)
	driver := newFakeDriver(newFakeAccelerator("gpu", vk.PhysicalDeviceTypeDiscreteGpu))
	dev := newTestSwapchainDevice(c, driver)
	support, err := QuerySurfaceSupport(driver, driver.devices[0], fakeHandle[vk.Surface]())
	c.Assert(err, qt.IsNil)

	layout := QueueLayout{
		Graphics: QueueFamily{Index: 0, Found: true},
		Compute:  QueueFamily{Index: 0, Found: true},
		Transfer: QueueFamily{Index: 2, Found: true},
	}
	_, err = CreateSwapchain(driver, dev, fakeHandle[vk.Surface](), support, layout, 640, 480)
	c.Assert(err, qt.IsNil)

	info := driver.swapchainInfos[0]
	c.Assert(info.ImageSharingMode, qt.Equals, vk.SharingModeConcurrent)
	c.Assert(info.QueueFamilyIndexCount, qt.Equals, uint32(2))
	c.Assert(info.PQueueFamilyIndices, qt.DeepEquals, []uint32{0, 2})
}

func TestCreateSwapchainViewFailure(t *testing.T) {
	c := qt.New(t)
	driver := newFakeDriver(newFakeAccelerator("gpu", vk.PhysicalDeviceTypeDiscreteGpu))
	dev := newTestSwapchainDevice(c, driver)
	support, err := QuerySurfaceSupport(driver, driver.devices[0], fakeHandle[vk.Surface]())
	c.Assert(err, qt.IsNil)
	driver.failViewAt = 2

	swapchain, err := CreateSwapchain(driver, dev, fakeHandle[vk.Surface](), support, sharedLayout(), 640, 480)
	c.Assert(swapchain, qt.IsNil)
	c.Assert(errors.Cause(err), qt.Equals, errFake)
	c.Assert(err, qt.ErrorMatches, "image view 2: .*")
	c.Assert(driver.liveViews, qt.HasLen, 0)
	c.Assert(driver.liveChains, qt.HasLen, 0)
	c.Assert(driver.doubleFrees, qt.Equals, 0)
}

func TestCreateSwapchainDriverFailure(t *testing.T) {
	c := qt.New(t)
	driver := newFakeDriver(newFakeAccelerator("gpu", vk.PhysicalDeviceTypeDiscreteGpu))
	dev := newTestSwapchainDevice(c, driver)
	support, err := QuerySurfaceSupport(driver, driver.devices[0], fakeHandle[vk.Surface]())
	c.Assert(err, qt.IsNil)
	driver.failSwapchain = errFake

	_, err = CreateSwapchain(driver, dev, fakeHandle[vk.Surface](), support, sharedLayout(), 640, 480)
	c.Assert(errors.Cause(err), qt.Equals, errFake)

	_, err = CreateSwapchain(driver, dev, fakeHandle[vk.Surface](), SurfaceSupport{}, sharedLayout(), 640, 480)
	c.Assert(err, qt.ErrorMatches, "surface offers no formats or present modes")
}

func TestSwapchainDestroyTwice(t *testing.T) {
	c := qt.New(t)
	driver := newFakeDriver(newFakeAccelerator("gpu", vk.PhysicalDeviceTypeDiscreteGpu))
	dev := newTestSwapchainDevice(c, driver)
	support, err := QuerySurfaceSupport(driver, driver.devices[0], fakeHandle[vk.Surface]())
	c.Assert(err, qt.IsNil)

	swapchain, err := CreateSwapchain(driver, dev, fakeHandle[vk.Surface](), support, sharedLayout(), 640, 480)
	c.Assert(err, qt.IsNil)

	swapchain.Destroy()
	c.Assert(driver.calls, qt.DeepEquals, []string{
		"DestroyImageView", "DestroyImageView", "DestroyImageView", "DestroySwapchain",
	})
	c.Assert(swapchain.Handle, qt.Equals, vk.NullSwapchain)
	c.Assert(swapchain.Images, qt.HasLen, 0)
	c.Assert(swapchain.Views, qt.HasLen, 0)

	swapchain.Destroy()
	c.Assert(driver.calls, qt.HasLen, 4)
	c.Assert(driver.doubleFrees, qt.Equals, 0)
}

func TestSwapchainRecreate(t *testing.T) {
	c := qt.New(t)
	driver := newFakeDriver(newFakeAccelerator("gpu", vk.PhysicalDeviceTypeDiscreteGpu))
	dev := newTestSwapchainDevice(c, driver)
	support, err := QuerySurfaceSupport(driver, driver.devices[0], fakeHandle[vk.Surface]())
	c.Assert(err, qt.IsNil)

	swapchain, err := CreateSwapchain(driver, dev, fakeHandle[vk.Surface](), support, sharedLayout(), 640, 480)
	c.Assert(err, qt.IsNil)
	old := swapchain.Handle

	err = swapchain.Recreate(support, 800, 600)
	c.Assert(err, qt.IsNil)
	c.Assert(driver.swapchainInfos, qt.HasLen, 2)
	c.Assert(driver.swapchainInfos[1].OldSwapchain, qt.Equals, old)
	c.Assert(swapchain.Handle, qt.Not(qt.Equals), old)
	c.Assert(swapchain.Extent.Width, qt.Equals, uint32(800))
	c.Assert(swapchain.Views, qt.HasLen, len(swapchain.Images))
	c.Assert(driver.liveChains, qt.HasLen, 1)
	c.Assert(driver.liveViews, qt.HasLen, 3)
	c.Assert(driver.doubleFrees, qt.Equals, 0)
}

func sharedLayout() QueueLayout {
	return QueueLayout{
		Graphics: QueueFamily{Index: 0, Found: true},
		Compute:  QueueFamily{Index: 0, Found: true},
		Transfer: QueueFamily{Index: 0, Found: true},
	}
}
