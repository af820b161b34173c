// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"io"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/shaderstudio/window"
)

type state int

const (
	stateUninitialized state = iota
	stateWindowed
	stateReady
	stateTerminated
)

// NewVulkan creates a Vulkan device. Nothing is acquired until
// CreateWindow and Initialize are called.
func NewVulkan(opts Options) *Vulkan {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	driver := opts.Driver
	if driver == nil {
		driver = NewVulkanDriver()
	}
	return &Vulkan{
		driver:      driver,
		platform:    opts.Platform,
		window:      opts.Window,
		validation:  opts.Validation,
		policy:      opts.Policy,
		extensions:  opts.Extensions,
		logger:      logger.WithField("component", "device"),
		diagnostics: opts.Diagnostics,
		surface:     vk.NullSurface,
	}
}

// Vulkan is a Device backed by the Vulkan API.
type Vulkan struct {
	driver   Driver
	platform window.Platform
	window   window.Window

	validation  bool
	policy      Policy
	extensions  []string
	logger      log.FieldLogger
	diagnostics io.Writer

	state       state
	context     *Context
	surface     vk.Surface
	accelerator *Accelerator
	layout      QueueLayout
	device      *LogicalDevice
	targets     []RenderTarget
}

// CreateWindow implements interface
func (v *Vulkan) CreateWindow(width, height uint32, title string) error {
	if v.state != stateUninitialized {
		return ErrInvalidState
	}
	if err := v.platform.Setup(); err != nil {
		return v.fail(err, "window system setup")
	}
	if err := v.window.Create(width, height, title); err != nil {
		return v.fail(err, "window creation")
	}
	v.state = stateWindowed
	return nil
}

// Initialize implements interface. On failure everything built so far
// is released and the device stays windowed, so Initialize can be retried.
func (v *Vulkan) Initialize() error {
	if v.state != stateWindowed {
		return ErrInvalidState
	}
	if err := v.initialize(); err != nil {
		v.release()
		return err
	}
	v.state = stateReady
	v.logger.WithField("device", v.accelerator.Name()).Info("device initialized")
	return nil
}

func (v *Vulkan) initialize() error {
	var layers []string
	if v.validation {
		layers = append(layers, ValidationLayer)
	}

	ctx, err := CreateContext(v.driver, ContextConfig{
		Validation:  v.validation,
		Layers:      layers,
		Extensions:  v.window.RequiredExtensions(),
		ProcAddr:    v.platform.ProcAddr(),
		Logger:      v.logger,
		Diagnostics: v.diagnostics,
	})
	if err != nil {
		return v.fail(err, "instance creation")
	}
	v.context = ctx

	if err := ctx.CreateDebugMessenger(); err != nil {
		return v.fail(err, "debug messenger creation")
	}

	pSurface, err := v.window.CreateSurface(ctx.Instance())
	if err != nil {
		return v.fail(err, "surface creation")
	}
	v.surface = surfaceFromPointer(pSurface)

	acc, err := SelectAccelerator(v.driver, ctx, v.surface, v.extensions, v.policy)
	if err != nil {
		return v.fail(err, "accelerator selection")
	}
	if acc.Support, err = QuerySurfaceSupport(v.driver, acc.Handle, v.surface); err != nil {
		return v.fail(err, "surface support query")
	}
	acc.Properties = v.driver.Properties(acc.Handle)
	acc.SampleCount = MaxUsableSampleCount(acc.Properties.Limits)
	v.accelerator = acc

	v.layout = DiscoverQueues(v.driver, acc.Handle)
	dev, err := CreateLogicalDevice(v.driver, acc, v.layout, v.extensions, ctx.Layers())
	if err != nil {
		return v.fail(err, "logical device creation")
	}
	v.device = dev
	return nil
}

func (v *Vulkan) fail(err error, step string) error {
	v.logger.WithError(err).Errorf("%s failed", step)
	return errors.Wrap(err, step)
}

// Terminate implements interface
func (v *Vulkan) Terminate() {
	if v.state == stateTerminated {
		return
	}

	for i := len(v.targets) - 1; i >= 0; i-- {
		v.targets[i].Terminate()
	}
	v.targets = nil

	v.release()
	v.window.Terminate()
	v.platform.Teardown()
	v.state = stateTerminated
}

// release destroys the device chain in reverse order of creation.
func (v *Vulkan) release() {
	v.device.Destroy()
	v.device = nil

	if v.context != nil {
		v.context.DestroyDebugMessenger()
		if v.surface != vk.NullSurface {
			v.driver.DestroySurface(v.context.Instance(), v.surface)
		}
		v.context.Destroy()
	}
	v.surface = vk.NullSurface
	v.context = nil
	v.accelerator = nil
}

// BeginDraw implements interface
func (v *Vulkan) BeginDraw() {
	v.window.PollInputs()
}

// Update implements interface
func (v *Vulkan) Update() {}

// EndDraw implements interface
func (v *Vulkan) EndDraw() {}

// CreateRenderTarget implements interface. Only screen bound 3D targets
// are supported, other kinds yield nil.
func (v *Vulkan) CreateRenderTarget(kind RenderTargetType, width, height uint32, xOffset, yOffset float32) (RenderTarget, error) {
	if v.state != stateReady {
		return nil, ErrInvalidState
	}
	if kind != ScreenBound3D {
		return nil, nil
	}

	swapchain, err := CreateSwapchain(v.driver, v.device, v.surface, v.accelerator.Support, v.layout, width, height)
	if err != nil {
		return nil, v.fail(err, "swapchain creation")
	}
	target := newScreenBound3D(swapchain, xOffset, yOffset)
	v.targets = append(v.targets, target)

	v.logger.WithFields(log.Fields{
		"width":  swapchain.Extent.Width,
		"height": swapchain.Extent.Height,
		"images": len(swapchain.Images),
	}).Debug("render target created")
	return target, nil
}

// DestroyRenderTarget implements interface
func (v *Vulkan) DestroyRenderTarget(target RenderTarget) {
	for i, t := range v.targets {
		if t == target {
			t.Terminate()
			v.targets = append(v.targets[:i], v.targets[i+1:]...)
			return
		}
	}
}

// Resize implements interface
func (v *Vulkan) Resize(width, height uint32) error {
	if v.state != stateReady {
		return ErrInvalidState
	}
	support, err := QuerySurfaceSupport(v.driver, v.accelerator.Handle, v.surface)
	if err != nil {
		return v.fail(err, "surface support query")
	}
	v.accelerator.Support = support

	for _, t := range v.targets {
		if sb, ok := t.(*ScreenBound3DTarget); ok {
			if err := sb.Resize(support, width, height); err != nil {
				return v.fail(err, "swapchain recreation")
			}
		}
	}
	return nil
}

// InputCenter implements interface
func (v *Vulkan) InputCenter() *window.InputCenter {
	return v.window.InputCenter()
}

// MaxFrameBufferCount implements interface
func (v *Vulkan) MaxFrameBufferCount() uint32 {
	if v.accelerator == nil {
		return 0
	}
	return ImageCount(v.accelerator.Support.Capabilities)
}

// Accelerators implements interface
func (v *Vulkan) Accelerators() ([]AcceleratorReport, error) {
	if v.state != stateReady {
		return nil, ErrInvalidState
	}
	reports, err := ReportAccelerators(v.driver, v.context, v.surface, v.extensions)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		reports[i].Selected = reports[i].Handle == v.accelerator.Handle
	}
	return reports, nil
}

// Accelerator returns the selected physical device, nil before Initialize.
func (v *Vulkan) Accelerator() *Accelerator {
	return v.accelerator
}

// Device returns the logical device, nil before Initialize.
func (v *Vulkan) Device() *LogicalDevice {
	return v.device
}
