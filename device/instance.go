// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"io"
	"os"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ValidationLayer is requested when validation is enabled.
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// Application identity reported to the driver
const (
	ApplicationName = "Shader Studio"
	EngineName      = "ShaderStudio"
)

// ContextConfig controls instance creation.
type ContextConfig struct {
	Validation bool

	// Layers are enabled only with Validation.
	Layers []string

	// Extensions required by the window system.
	Extensions []string

	// ProcAddr is vkGetInstanceProcAddr, nil for the system loader.
	ProcAddr unsafe.Pointer

	Logger      log.FieldLogger
	Diagnostics io.Writer
}

// Context owns the driver instance and its debug callback.
type Context struct {
	driver     Driver
	logger     log.FieldLogger
	messenger  *DebugMessenger
	validation bool
	layers     []string

	instance vk.Instance
	debug    vk.DebugReportCallback
}

// CreateContext initialises the loader and creates a driver instance.
func CreateContext(driver Driver, cfg ContextConfig) (*Context, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	raw := cfg.Diagnostics
	if raw == nil {
		raw = os.Stderr
	}

	if err := driver.Init(cfg.ProcAddr); err != nil {
		return nil, err
	}

	var layers []string
	extensions := append([]string{}, cfg.Extensions...)
	if cfg.Validation {
		available, err := driver.InstanceLayers()
		if err != nil {
			return nil, err
		}
		for _, missing := range difference(cfg.Layers, available) {
			logger.WithField("layer", missing).Error("requested validation layer is not available")
		}
		layers = append(layers, cfg.Layers...)
		extensions = append(extensions, DebugReportExtension)
	}

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   ApplicationName,
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        EngineName,
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 2, 0),
	}
	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	instance, err := driver.CreateInstance(&instanceInfo)
	if err != nil {
		return nil, err
	}

	return &Context{
		driver:     driver,
		logger:     logger,
		messenger:  &DebugMessenger{logger: logger.WithField("component", "vulkan"), raw: raw},
		validation: cfg.Validation,
		layers:     layers,
		instance:   instance,
		debug:      vk.DebugReportCallback(vk.NullHandle),
	}, nil
}

// Instance returns the driver instance handle.
func (c *Context) Instance() vk.Instance {
	return c.instance
}

// Validation reports whether validation was requested.
func (c *Context) Validation() bool {
	return c.validation
}

// Layers returns the enabled instance layers.
func (c *Context) Layers() []string {
	return c.layers
}

// Messenger returns the diagnostics router.
func (c *Context) Messenger() *DebugMessenger {
	return c.messenger
}

// CreateDebugMessenger installs the driver diagnostics callback.
// Does nothing unless validation is enabled.
func (c *Context) CreateDebugMessenger() error {
	if !c.validation || c.debug != vk.DebugReportCallback(vk.NullHandle) {
		return nil
	}
	callback, err := c.driver.CreateDebugReportCallback(c.instance, &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       debugReportFlags,
		PfnCallback: c.messenger.report,
	})
	if err != nil {
		return errors.Wrap(err, "debug messenger")
	}
	c.debug = callback
	return nil
}

// DestroyDebugMessenger removes the diagnostics callback if present.
func (c *Context) DestroyDebugMessenger() {
	if c.debug == vk.DebugReportCallback(vk.NullHandle) {
		return
	}
	c.driver.DestroyDebugReportCallback(c.instance, c.debug)
	c.debug = vk.DebugReportCallback(vk.NullHandle)
}

// Destroy releases the debug callback and then the instance.
func (c *Context) Destroy() {
	if c == nil {
		return
	}
	c.DestroyDebugMessenger()
	if c.instance == vk.Instance(vk.NullHandle) {
		return
	}
	c.driver.DestroyInstance(c.instance)
	c.instance = vk.Instance(vk.NullHandle)
}

// difference returns the entries of want absent from have.
func difference(want, have []string) []string {
	present := make(map[string]bool, len(have))
	for _, h := range have {
		present[h] = true
	}
	var missing []string
	for _, w := range want {
		if !present[w] {
			missing = append(missing, w)
		}
	}
	return missing
}
