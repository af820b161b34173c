// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device brings up a GPU for presenting to a window. It selects
// an accelerator, creates the logical device and its queues, and manages
// the swapchains backing render targets.
package device

import (
	"io"

	vk "github.com/goki/vulkan"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/shaderstudio/window"
)

// GraphicsAPI identifies a rendering backend.
type GraphicsAPI int

// Known backends
const (
	APIVulkan GraphicsAPI = iota
)

func (a GraphicsAPI) String() string {
	if a == APIVulkan {
		return "Vulkan"
	}
	return "Undefined"
}

// Device describes a non-concrete rendering device
type Device interface {
	CreateWindow(width, height uint32, title string) error
	Initialize() error
	Terminate()

	BeginDraw()
	Update()
	EndDraw()

	CreateRenderTarget(kind RenderTargetType, width, height uint32, xOffset, yOffset float32) (RenderTarget, error)
	DestroyRenderTarget(target RenderTarget)
	Resize(width, height uint32) error

	InputCenter() *window.InputCenter
	MaxFrameBufferCount() uint32
	Accelerators() ([]AcceleratorReport, error)
}

// Options configure a device.
type Options struct {
	Platform window.Platform
	Window   window.Window
	Driver   Driver

	Validation bool
	Policy     Policy

	// Extensions required of the accelerator.
	Extensions []string

	Logger      log.FieldLogger
	Diagnostics io.Writer
}

// New creates a device for the given graphics API.
func New(api GraphicsAPI, opts Options) (Device, error) {
	switch api {
	case APIVulkan:
		return NewVulkan(opts), nil
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	logger.WithField("api", int(api)).Error("invalid or undefined graphics API")
	return nil, ErrUnsupportedAPI
}

// AcceleratorReport describes one enumerated physical device.
type AcceleratorReport struct {
	Name          string   `json:"name" yaml:"name"`
	Class         string   `json:"class" yaml:"class"`
	VendorID      uint32   `json:"vendorID" yaml:"vendorID"`
	DeviceID      uint32   `json:"deviceID" yaml:"deviceID"`
	APIVersion    string   `json:"apiVersion" yaml:"apiVersion"`
	DriverVersion uint32   `json:"driverVersion" yaml:"driverVersion"`
	Memory        uint64   `json:"memory" yaml:"memory"`
	SampleCount   uint32   `json:"sampleCount" yaml:"sampleCount"`
	Extensions    []string `json:"extensions" yaml:"extensions"`
	Suitable      bool     `json:"suitable" yaml:"suitable"`
	Reasons       []string `json:"reasons,omitempty" yaml:"reasons,omitempty"`
	Selected      bool     `json:"selected" yaml:"selected"`

	// Handle is the physical device reported on.
	Handle vk.PhysicalDevice `json:"-" yaml:"-"`
}

// ReportAccelerators inspects every physical device of the context.
func ReportAccelerators(driver Driver, ctx *Context, surface vk.Surface, required []string) ([]AcceleratorReport, error) {
	devices, err := driver.PhysicalDevices(ctx.Instance())
	if err != nil {
		return nil, err
	}

	reports := make([]AcceleratorReport, 0, len(devices))
	for _, pd := range devices {
		acc, suitability, err := inspect(driver, pd, surface, required)
		if err != nil {
			return nil, err
		}
		var memory uint64
		memoryProperties := driver.MemoryProperties(pd)
		for i := uint32(0); i < memoryProperties.MemoryHeapCount; i++ {
			memory += uint64(memoryProperties.MemoryHeaps[i].Size)
		}

		reports = append(reports, AcceleratorReport{
			Name:          acc.Name(),
			Class:         acc.Class(),
			VendorID:      acc.Properties.VendorID,
			DeviceID:      acc.Properties.DeviceID,
			APIVersion:    versionString(acc.Properties.ApiVersion),
			DriverVersion: acc.Properties.DriverVersion,
			Memory:        memory,
			SampleCount:   uint32(MaxUsableSampleCount(acc.Properties.Limits)),
			Extensions:    acc.Extensions,
			Suitable:      suitability.Suitable(),
			Reasons:       suitability.Reasons(),
			Handle:        pd,
		})
	}
	return reports, nil
}
