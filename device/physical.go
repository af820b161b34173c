// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Policy decides between several suitable accelerators.
type Policy int

// Selection policies
const (
	// FirstSuitable takes the first suitable accelerator in driver order.
	FirstSuitable Policy = iota

	// PreferDiscrete ranks suitable accelerators by device class.
	PreferDiscrete
)

// ParsePolicy reads a policy name as used in configuration.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(name) {
	case "", "first":
		return FirstSuitable, nil
	case "discrete":
		return PreferDiscrete, nil
	}
	return FirstSuitable, errors.Errorf("unknown selection policy %q", name)
}

// Accelerator is a physical device together with what was learnt about it.
type Accelerator struct {
	Handle      vk.PhysicalDevice
	Properties  vk.PhysicalDeviceProperties
	Features    vk.PhysicalDeviceFeatures
	Support     SurfaceSupport
	Layout      QueueLayout
	SampleCount vk.SampleCountFlagBits

	// Extensions the device offers.
	Extensions []string
}

// Name of the device as reported by the driver.
func (a *Accelerator) Name() string {
	return vk.ToString(a.Properties.DeviceName[:])
}

// Class returns a short device class name.
func (a *Accelerator) Class() string {
	switch a.Properties.DeviceType {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	}
	return "other"
}

func (a *Accelerator) rank() int {
	switch a.Properties.DeviceType {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return 0
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return 1
	case vk.PhysicalDeviceTypeVirtualGpu:
		return 2
	case vk.PhysicalDeviceTypeCpu:
		return 3
	}
	return 4
}

// Suitability is the outcome of checking one accelerator.
type Suitability struct {
	QueuesComplete    bool
	MissingExtensions []string
	SurfaceAdequate   bool
	Anisotropy        bool
}

// Suitable reports whether every requirement holds.
func (s Suitability) Suitable() bool {
	return s.QueuesComplete && len(s.MissingExtensions) == 0 && s.SurfaceAdequate && s.Anisotropy
}

// Reasons lists the failed requirements.
func (s Suitability) Reasons() []string {
	var reasons []string
	if !s.QueuesComplete {
		reasons = append(reasons, "incomplete queue layout")
	}
	if len(s.MissingExtensions) > 0 {
		reasons = append(reasons, "missing extensions: "+strings.Join(s.MissingExtensions, ", "))
	}
	if !s.SurfaceAdequate {
		reasons = append(reasons, "no surface formats or present modes")
	}
	if !s.Anisotropy {
		reasons = append(reasons, "no anisotropic sampling")
	}
	return reasons
}

// inspect gathers everything needed to judge a physical device.
// Surface support is only queried once the extensions are present.
func inspect(driver Driver, pd vk.PhysicalDevice, surface vk.Surface, required []string) (*Accelerator, Suitability, error) {
	acc := &Accelerator{
		Handle:     pd,
		Properties: driver.Properties(pd),
		Features:   driver.Features(pd),
		Layout:     DiscoverQueues(driver, pd),
	}

	available, err := driver.DeviceExtensions(pd)
	if err != nil {
		return nil, Suitability{}, err
	}
	acc.Extensions = available

	suitability := Suitability{
		QueuesComplete:    acc.Layout.Complete(),
		MissingExtensions: difference(required, available),
		Anisotropy:        acc.Features.SamplerAnisotropy == vk.True,
	}
	if len(suitability.MissingExtensions) == 0 {
		if acc.Support, err = QuerySurfaceSupport(driver, pd, surface); err != nil {
			return nil, Suitability{}, err
		}
		suitability.SurfaceAdequate = acc.Support.Adequate()
	}
	return acc, suitability, nil
}

// SelectAccelerator picks a physical device able to present to surface.
func SelectAccelerator(driver Driver, ctx *Context, surface vk.Surface, required []string, policy Policy) (*Accelerator, error) {
	devices, err := driver.PhysicalDevices(ctx.Instance())
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		ctx.logger.Error("no Vulkan capable accelerators found")
		return nil, ErrNoAccelerators
	}

	var selected *Accelerator
	for _, pd := range devices {
		acc, suitability, err := inspect(driver, pd, surface, required)
		if err != nil {
			return nil, err
		}
		if !suitability.Suitable() {
			ctx.logger.WithFields(log.Fields{
				"device":  acc.Name(),
				"reasons": suitability.Reasons(),
			}).Debug("accelerator rejected")
			continue
		}

		if policy == FirstSuitable {
			selected = acc
			break
		}
		if selected == nil || acc.rank() < selected.rank() {
			selected = acc
		}
	}

	if selected == nil {
		ctx.logger.Error("no suitable accelerator found")
		return nil, ErrNoSuitableAccelerator
	}

	selected.SampleCount = MaxUsableSampleCount(selected.Properties.Limits)
	ctx.logger.WithFields(log.Fields{
		"device":        selected.Name(),
		"class":         selected.Class(),
		"vendorID":      selected.Properties.VendorID,
		"deviceID":      selected.Properties.DeviceID,
		"apiVersion":    versionString(selected.Properties.ApiVersion),
		"driverVersion": selected.Properties.DriverVersion,
		"sampleCount":   selected.SampleCount,
	}).Debug("accelerator selected")
	return selected, nil
}

func versionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, (v>>12)&0x3ff, v&0xfff)
}
