// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"sort"

	vk "github.com/goki/vulkan"
)

// QueueFamily is an optional queue family index.
type QueueFamily struct {
	Index uint32
	Found bool
}

// QueueLayout records which queue family serves each role.
// One family may serve several roles.
type QueueLayout struct {
	Graphics QueueFamily
	Compute  QueueFamily
	Transfer QueueFamily
}

// Complete reports whether every role has a family.
func (l QueueLayout) Complete() bool {
	return l.Graphics.Found && l.Compute.Found && l.Transfer.Found
}

// Families returns the distinct family indices in ascending order.
func (l QueueLayout) Families() []uint32 {
	seen := make(map[uint32]bool, 3)
	var families []uint32
	for _, f := range []QueueFamily{l.Graphics, l.Compute, l.Transfer} {
		if f.Found && !seen[f.Index] {
			seen[f.Index] = true
			families = append(families, f.Index)
		}
	}
	sort.Slice(families, func(i, j int) bool { return families[i] < families[j] })
	return families
}

// DiscoverQueues inspects the queue families of a physical device.
func DiscoverQueues(driver Driver, pd vk.PhysicalDevice) QueueLayout {
	return LayoutFromFamilies(driver.QueueFamilies(pd))
}

// LayoutFromFamilies picks the first family offering each capability.
// Families without queues are ignored.
func LayoutFromFamilies(families []vk.QueueFamilyProperties) QueueLayout {
	var layout QueueLayout
	for i, family := range families {
		if family.QueueCount == 0 {
			continue
		}

		index := uint32(i)
		if !layout.Graphics.Found && family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			layout.Graphics = QueueFamily{Index: index, Found: true}
		}
		if !layout.Compute.Found && family.QueueFlags&vk.QueueFlags(vk.QueueComputeBit) != 0 {
			layout.Compute = QueueFamily{Index: index, Found: true}
		}
		if !layout.Transfer.Found && family.QueueFlags&vk.QueueFlags(vk.QueueTransferBit) != 0 {
			layout.Transfer = QueueFamily{Index: index, Found: true}
		}

		if layout.Complete() {
			break
		}
	}
	return layout
}
