// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"errors"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/devblok/shaderstudio/window"
)

// fakeHandle returns a distinct non-null handle of any pointer shaped type.
func fakeHandle[H any]() H {
	var h H
	*(*unsafe.Pointer)(unsafe.Pointer(&h)) = unsafe.Pointer(new(uintptr))
	return h
}

var errFake = errors.New("fake driver failure")

type recorder struct {
	calls []string
}

func (r *recorder) record(call string) {
	r.calls = append(r.calls, call)
}

type fakeAccelerator struct {
	properties   vk.PhysicalDeviceProperties
	features     vk.PhysicalDeviceFeatures
	memory       vk.PhysicalDeviceMemoryProperties
	families     []vk.QueueFamilyProperties
	extensions   []string
	capabilities vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	modes        []vk.PresentMode

	surfaceQueries   int
	extensionQueries int
}

func newFakeAccelerator(name string, class vk.PhysicalDeviceType) *fakeAccelerator {
	a := &fakeAccelerator{
		features: vk.PhysicalDeviceFeatures{SamplerAnisotropy: vk.True},
		families: []vk.QueueFamilyProperties{{
			QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit),
			QueueCount: 1,
		}},
		extensions: []string{"VK_KHR_swapchain"},
		capabilities: vk.SurfaceCapabilities{
			MinImageCount:           2,
			MaxImageCount:           0,
			MinImageExtent:          vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:          vk.Extent2D{Width: 4096, Height: 4096},
			CurrentExtent:           vk.Extent2D{Width: 1280, Height: 720},
			CurrentTransform:        vk.SurfaceTransformIdentityBit,
			SupportedCompositeAlpha: vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit),
		},
		formats: []vk.SurfaceFormat{{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}},
		modes:   []vk.PresentMode{vk.PresentModeFifo},
	}
	a.properties.DeviceType = class
	a.properties.VendorID = 0x10de
	a.properties.DeviceID = uint32(len(name))
	a.properties.ApiVersion = vk.MakeVersion(1, 2, 0)
	a.properties.Limits.FramebufferColorSampleCounts = vk.SampleCountFlags(vk.SampleCount1Bit | vk.SampleCount4Bit | vk.SampleCount8Bit)
	a.properties.Limits.FramebufferDepthSampleCounts = vk.SampleCountFlags(vk.SampleCount1Bit | vk.SampleCount4Bit)
	copy(a.properties.DeviceName[:], name)
	a.memory.MemoryHeapCount = 1
	a.memory.MemoryHeaps[0].Size = 1 << 30
	return a
}

type fakeDriver struct {
	*recorder

	layers       []string
	devices      []vk.PhysicalDevice
	accelerators map[vk.PhysicalDevice]*fakeAccelerator

	failInit      error
	failInstance  error
	failDebug     error
	failDevices   error
	failSurface   error
	failDevice    error
	failSwapchain error
	failViewAt    int
	swapchainSize int

	procAddr       unsafe.Pointer
	instanceInfo   *vk.InstanceCreateInfo
	debugInfo      *vk.DebugReportCallbackCreateInfo
	deviceInfo     *vk.DeviceCreateInfo
	swapchainInfos []vk.SwapchainCreateInfo
	queueRequests  [][2]uint32

	instances   int
	views       int
	liveViews   map[vk.ImageView]bool
	liveChains  map[vk.Swapchain]bool
	doubleFrees int
}

func newFakeDriver(accelerators ...*fakeAccelerator) *fakeDriver {
	d := &fakeDriver{
		recorder:     &recorder{},
		layers:       []string{ValidationLayer},
		accelerators: make(map[vk.PhysicalDevice]*fakeAccelerator),
		failViewAt:   -1,
		liveViews:    make(map[vk.ImageView]bool),
		liveChains:   make(map[vk.Swapchain]bool),
	}
	for _, a := range accelerators {
		d.add(a)
	}
	return d
}

func (d *fakeDriver) add(a *fakeAccelerator) vk.PhysicalDevice {
	pd := fakeHandle[vk.PhysicalDevice]()
	d.devices = append(d.devices, pd)
	d.accelerators[pd] = a
	return pd
}

func (d *fakeDriver) Init(procAddr unsafe.Pointer) error {
	d.procAddr = procAddr
	return d.failInit
}

func (d *fakeDriver) InstanceLayers() ([]string, error) {
	return d.layers, nil
}

func (d *fakeDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	d.instanceInfo = info
	if d.failInstance != nil {
		return nil, d.failInstance
	}
	d.instances++
	return fakeHandle[vk.Instance](), nil
}

func (d *fakeDriver) DestroyInstance(instance vk.Instance) {
	d.record("DestroyInstance")
	d.instances--
}

func (d *fakeDriver) CreateDebugReportCallback(instance vk.Instance, info *vk.DebugReportCallbackCreateInfo) (vk.DebugReportCallback, error) {
	d.debugInfo = info
	if d.failDebug != nil {
		return vk.DebugReportCallback(vk.NullHandle), d.failDebug
	}
	return fakeHandle[vk.DebugReportCallback](), nil
}

func (d *fakeDriver) DestroyDebugReportCallback(instance vk.Instance, callback vk.DebugReportCallback) {
	d.record("DestroyDebugReportCallback")
}

func (d *fakeDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	d.record("DestroySurface")
}

func (d *fakeDriver) PhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	return d.devices, d.failDevices
}

func (d *fakeDriver) Properties(pd vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	return d.accelerators[pd].properties
}

func (d *fakeDriver) Features(pd vk.PhysicalDevice) vk.PhysicalDeviceFeatures {
	return d.accelerators[pd].features
}

func (d *fakeDriver) MemoryProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	return d.accelerators[pd].memory
}

func (d *fakeDriver) QueueFamilies(pd vk.PhysicalDevice) []vk.QueueFamilyProperties {
	return d.accelerators[pd].families
}

func (d *fakeDriver) DeviceExtensions(pd vk.PhysicalDevice) ([]string, error) {
	a := d.accelerators[pd]
	a.extensionQueries++
	return a.extensions, nil
}

func (d *fakeDriver) SurfaceCapabilities(pd vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error) {
	a := d.accelerators[pd]
	a.surfaceQueries++
	if d.failSurface != nil {
		return vk.SurfaceCapabilities{}, d.failSurface
	}
	return a.capabilities, nil
}

func (d *fakeDriver) SurfaceFormats(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	return d.accelerators[pd].formats, nil
}

func (d *fakeDriver) SurfacePresentModes(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	return d.accelerators[pd].modes, nil
}

func (d *fakeDriver) CreateDevice(pd vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error) {
	d.deviceInfo = info
	if d.failDevice != nil {
		return nil, d.failDevice
	}
	return fakeHandle[vk.Device](), nil
}

func (d *fakeDriver) DeviceQueue(device vk.Device, family, index uint32) vk.Queue {
	d.queueRequests = append(d.queueRequests, [2]uint32{family, index})
	return fakeHandle[vk.Queue]()
}

func (d *fakeDriver) WaitIdle(device vk.Device) {}

func (d *fakeDriver) DestroyDevice(device vk.Device) {
	d.record("DestroyDevice")
}

func (d *fakeDriver) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	d.swapchainInfos = append(d.swapchainInfos, *info)
	if d.failSwapchain != nil {
		return vk.NullSwapchain, d.failSwapchain
	}
	chain := fakeHandle[vk.Swapchain]()
	d.liveChains[chain] = true
	return chain, nil
}

func (d *fakeDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	count := d.swapchainSize
	if count == 0 {
		count = int(d.swapchainInfos[len(d.swapchainInfos)-1].MinImageCount)
	}
	images := make([]vk.Image, count)
	for i := range images {
		images[i] = fakeHandle[vk.Image]()
	}
	return images, nil
}

func (d *fakeDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	d.record("DestroySwapchain")
	if !d.liveChains[swapchain] {
		d.doubleFrees++
	}
	delete(d.liveChains, swapchain)
}

func (d *fakeDriver) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	if d.views == d.failViewAt {
		d.views++
		return vk.NullImageView, errFake
	}
	d.views++
	view := fakeHandle[vk.ImageView]()
	d.liveViews[view] = true
	return view, nil
}

func (d *fakeDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	d.record("DestroyImageView")
	if !d.liveViews[view] {
		d.doubleFrees++
	}
	delete(d.liveViews, view)
}

type fakePlatform struct {
	*recorder
	failSetup error
	setups    int
}

func (p *fakePlatform) Setup() error {
	p.setups++
	return p.failSetup
}

func (p *fakePlatform) ProcAddr() unsafe.Pointer {
	return nil
}

func (p *fakePlatform) Teardown() {
	p.record("Teardown")
}

type fakeWindow struct {
	*recorder
	input      *window.InputCenter
	surface    vk.Surface
	failCreate error
	polls      int
	width      uint32
	height     uint32
}

func (w *fakeWindow) Create(width, height uint32, title string) error {
	w.width, w.height = width, height
	return w.failCreate
}

func (w *fakeWindow) Terminate() {
	w.record("Terminate")
}

func (w *fakeWindow) PollInputs() {
	w.polls++
}

func (w *fakeWindow) Handle() interface{} {
	return w
}

func (w *fakeWindow) Extent() window.Extent {
	return window.Extent{Width: w.width, Height: w.height}
}

func (w *fakeWindow) InputCenter() *window.InputCenter {
	return w.input
}

func (w *fakeWindow) RequiredExtensions() []string {
	return []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}
}

func (w *fakeWindow) CreateSurface(instance interface{}) (unsafe.Pointer, error) {
	w.surface = fakeHandle[vk.Surface]()
	return unsafe.Pointer(&w.surface), nil
}

// newFakeSetup wires a platform, window and driver to one call recorder.
func newFakeSetup(accelerators ...*fakeAccelerator) (*fakeDriver, *fakePlatform, *fakeWindow) {
	driver := newFakeDriver(accelerators...)
	platform := &fakePlatform{recorder: driver.recorder}
	win := &fakeWindow{recorder: driver.recorder, input: window.NewInputCenter()}
	return driver, platform, win
}
