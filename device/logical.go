// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	vk "github.com/goki/vulkan"
)

// LogicalDevice is a created device and its queues.
// Roles sharing a family share the queue.
type LogicalDevice struct {
	driver Driver

	Handle   vk.Device
	Graphics vk.Queue
	Compute  vk.Queue
	Transfer vk.Queue
}

// CreateLogicalDevice creates a device with one queue per distinct family of layout.
func CreateLogicalDevice(driver Driver, acc *Accelerator, layout QueueLayout, extensions, layers []string) (*LogicalDevice, error) {
	if !layout.Complete() {
		return nil, ErrIncompleteQueueLayout
	}

	var queueInfos []vk.DeviceQueueCreateInfo
	for _, family := range layout.Families() {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
		PEnabledFeatures: []vk.PhysicalDeviceFeatures{{
			SamplerAnisotropy: vk.True,
			SampleRateShading: vk.True,
		}},
	}

	handle, err := driver.CreateDevice(acc.Handle, &dci)
	if err != nil {
		return nil, err
	}

	return &LogicalDevice{
		driver:   driver,
		Handle:   handle,
		Graphics: driver.DeviceQueue(handle, layout.Graphics.Index, 0),
		Compute:  driver.DeviceQueue(handle, layout.Compute.Index, 0),
		Transfer: driver.DeviceQueue(handle, layout.Transfer.Index, 0),
	}, nil
}

// Destroy waits for the device to go idle and destroys it.
func (d *LogicalDevice) Destroy() {
	if d == nil || d.Handle == vk.Device(vk.NullHandle) {
		return
	}
	d.driver.WaitIdle(d.Handle)
	d.driver.DestroyDevice(d.Handle)
	d.Handle = vk.Device(vk.NullHandle)
	d.Graphics = vk.Queue(vk.NullHandle)
	d.Compute = vk.Queue(vk.NullHandle)
	d.Transfer = vk.Queue(vk.NullHandle)
}
