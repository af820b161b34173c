// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"strings"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

// Driver is the set of Vulkan entry points the device layer uses.
// Enumerations return fully dereferenced values.
type Driver interface {
	Init(procAddr unsafe.Pointer) error

	InstanceLayers() ([]string, error)
	CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error)
	DestroyInstance(instance vk.Instance)

	CreateDebugReportCallback(instance vk.Instance, info *vk.DebugReportCallbackCreateInfo) (vk.DebugReportCallback, error)
	DestroyDebugReportCallback(instance vk.Instance, callback vk.DebugReportCallback)

	DestroySurface(instance vk.Instance, surface vk.Surface)

	PhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error)
	Properties(pd vk.PhysicalDevice) vk.PhysicalDeviceProperties
	Features(pd vk.PhysicalDevice) vk.PhysicalDeviceFeatures
	MemoryProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties
	QueueFamilies(pd vk.PhysicalDevice) []vk.QueueFamilyProperties
	DeviceExtensions(pd vk.PhysicalDevice) ([]string, error)

	SurfaceCapabilities(pd vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error)
	SurfaceFormats(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error)
	SurfacePresentModes(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error)

	CreateDevice(pd vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error)
	DeviceQueue(device vk.Device, family, index uint32) vk.Queue
	WaitIdle(device vk.Device)
	DestroyDevice(device vk.Device)

	CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error)
	SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error)
	DestroySwapchain(device vk.Device, swapchain vk.Swapchain)

	CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error)
	DestroyImageView(device vk.Device, view vk.ImageView)
}

// NewVulkanDriver returns a Driver calling into the system Vulkan loader.
func NewVulkanDriver() Driver {
	return vulkanDriver{}
}

type vulkanDriver struct{}

func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func safeStrings(list []string) []string {
	safe := make([]string, len(list))
	for i, s := range list {
		safe[i] = safeString(s)
	}
	return safe
}

func (vulkanDriver) Init(procAddr unsafe.Pointer) error {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}
	return errors.Wrap(vk.Init(), "vk.Init()")
}

func (vulkanDriver) InstanceLayers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}
	layers := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, layers)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}
	names := make([]string, 0, count)
	for _, layer := range layers {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

func (vulkanDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	ci := *info
	ci.PpEnabledExtensionNames = safeStrings(info.PpEnabledExtensionNames)
	ci.PpEnabledLayerNames = safeStrings(info.PpEnabledLayerNames)
	if info.PApplicationInfo != nil {
		app := *info.PApplicationInfo
		app.PApplicationName = safeString(app.PApplicationName)
		app.PEngineName = safeString(app.PEngineName)
		ci.PApplicationInfo = &app
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&ci, nil, &instance)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateInstance()")
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.Wrap(err, "vk.InitInstance()")
	}
	return instance, nil
}

func (vulkanDriver) DestroyInstance(instance vk.Instance) {
	vk.DestroyInstance(instance, nil)
}

func (vulkanDriver) CreateDebugReportCallback(instance vk.Instance, info *vk.DebugReportCallbackCreateInfo) (vk.DebugReportCallback, error) {
	var callback vk.DebugReportCallback
	if err := vk.Error(vk.CreateDebugReportCallback(instance, info, nil, &callback)); err != nil {
		return callback, errors.Wrap(err, "vk.CreateDebugReportCallback()")
	}
	return callback, nil
}

func (vulkanDriver) DestroyDebugReportCallback(instance vk.Instance, callback vk.DebugReportCallback) {
	vk.DestroyDebugReportCallback(instance, callback, nil)
}

func (vulkanDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, nil)
}

func (vulkanDriver) PhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}
	devices := make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, devices)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}
	return devices, nil
}

func (vulkanDriver) Properties(pd vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &properties)
	properties.Deref()
	properties.Limits.Deref()
	return properties
}

func (vulkanDriver) Features(pd vk.PhysicalDevice) vk.PhysicalDeviceFeatures {
	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(pd, &features)
	features.Deref()
	return features
}

func (vulkanDriver) MemoryProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var memory vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &memory)
	memory.Deref()
	for i := uint32(0); i < memory.MemoryHeapCount; i++ {
		memory.MemoryHeaps[i].Deref()
	}
	return memory
}

func (vulkanDriver) QueueFamilies(pd vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, families)
	for i := range families {
		families[i].Deref()
	}
	return families
}

func (vulkanDriver) DeviceExtensions(pd vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateDeviceExtensionProperties()")
	}
	extensions := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(pd, "", &count, extensions)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateDeviceExtensionProperties()")
	}
	names := make([]string, 0, count)
	for _, ext := range extensions {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

func (vulkanDriver) SurfaceCapabilities(pd vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error) {
	var capabilities vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(pd, surface, &capabilities)); err != nil {
		return capabilities, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceCapabilities()")
	}
	capabilities.Deref()
	capabilities.CurrentExtent.Deref()
	capabilities.MinImageExtent.Deref()
	capabilities.MaxImageExtent.Deref()
	return capabilities, nil
}

func (vulkanDriver) SurfaceFormats(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var count uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceFormats()")
	}
	formats := make([]vk.SurfaceFormat, count)
	if count == 0 {
		return formats, nil
	}
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &count, formats)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceFormats()")
	}
	for i := range formats {
		formats[i].Deref()
	}
	return formats, nil
}

func (vulkanDriver) SurfacePresentModes(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	var count uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfacePresentModes()")
	}
	modes := make([]vk.PresentMode, count)
	if count == 0 {
		return modes, nil
	}
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &count, modes)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfacePresentModes()")
	}
	return modes, nil
}

func (vulkanDriver) CreateDevice(pd vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error) {
	ci := *info
	ci.PpEnabledExtensionNames = safeStrings(info.PpEnabledExtensionNames)
	ci.PpEnabledLayerNames = safeStrings(info.PpEnabledLayerNames)

	var device vk.Device
	if err := vk.Error(vk.CreateDevice(pd, &ci, nil, &device)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateDevice()")
	}
	return device, nil
}

func (vulkanDriver) DeviceQueue(device vk.Device, family, index uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(device, family, index, &queue)
	return queue
}

func (vulkanDriver) WaitIdle(device vk.Device) {
	vk.DeviceWaitIdle(device)
}

func (vulkanDriver) DestroyDevice(device vk.Device) {
	vk.DestroyDevice(device, nil)
}

func (vulkanDriver) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	var swapchain vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(device, info, nil, &swapchain)); err != nil {
		return vk.NullSwapchain, errors.Wrap(err, "vk.CreateSwapchain()")
	}
	return swapchain, nil
}

func (vulkanDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	var numImages uint32
	if err := vk.Error(vk.GetSwapchainImages(device, swapchain, &numImages, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.GetSwapchainImages(num)")
	}
	images := make([]vk.Image, numImages)
	if err := vk.Error(vk.GetSwapchainImages(device, swapchain, &numImages, images)); err != nil {
		return nil, errors.Wrap(err, "vk.GetSwapchainImages(images)")
	}
	return images, nil
}

func (vulkanDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	vk.DestroySwapchain(device, swapchain, nil)
}

func (vulkanDriver) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(device, info, nil, &view)); err != nil {
		return vk.NullImageView, errors.Wrap(err, "vk.CreateImageView()")
	}
	return view, nil
}

func (vulkanDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	vk.DestroyImageView(device, view, nil)
}
