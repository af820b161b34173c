// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Environment keys that override file configuration
const (
	EnvValidation = "STUDIO_VALIDATION"
	EnvLogLevel   = "STUDIO_LOG_LEVEL"
	EnvWidth      = "STUDIO_WIDTH"
	EnvHeight     = "STUDIO_HEIGHT"
	EnvSelection  = "STUDIO_SELECTION"
	EnvShaders    = "STUDIO_SHADERS"
	EnvFPS        = "STUDIO_FPS"
	EnvMessageBox = "STUDIO_MESSAGE_BOX"
)

// Configuration defines a global application configuration setting
type Configuration struct {
	Time     TimeConfiguration     `toml:"time"`
	Renderer RendererConfiguration `toml:"renderer"`
	Window   WindowConfiguration   `toml:"window"`
	Log      LogConfiguration      `toml:"log"`
	Shaders  ShaderConfiguration   `toml:"shaders"`
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int `toml:"fps"`
}

// RendererConfiguration is used to configure the device layer
type RendererConfiguration struct {
	// Validation loads the validation layer and the debug callback.
	Validation bool `toml:"validation"`

	// Selection is the accelerator selection policy,
	// either "first" or "discrete".
	Selection string `toml:"selection"`

	DeviceExtensions []string `toml:"device_extensions"`
}

// WindowConfiguration describes the main window
type WindowConfiguration struct {
	Title  string `toml:"title"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`

	// MessageBox pops up a dialog for error level log entries
	MessageBox bool `toml:"message_box"`
}

// LogConfiguration sets diagnostic verbosity
type LogConfiguration struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ShaderConfiguration tells where compiled shaders are found
type ShaderConfiguration struct {
	Directory string `toml:"directory"`
	Bundle    string `toml:"bundle"`
	Watch     bool   `toml:"watch"`
}

// DefaultConfiguration returns the configuration used when nothing is set
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 60,
		},
		Renderer: RendererConfiguration{
			Selection: "first",
			DeviceExtensions: []string{
				"VK_KHR_swapchain",
			},
		},
		Window: WindowConfiguration{
			Title:  "Shader Studio v1.0",
			Width:  1280,
			Height: 720,
		},
		Log: LogConfiguration{
			Level:  "info",
			Format: "text",
		},
		Shaders: ShaderConfiguration{
			Directory: "./shaders",
		},
	}
}

// LoadConfiguration builds the configuration from defaults, an optional
// TOML file at path, a .env file in the working directory and finally
// the process environment. Empty path skips the file.
func LoadConfiguration(path string, envFiles ...string) (Configuration, error) {
	cfg := DefaultConfiguration()

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return cfg, errors.Wrap(err, "homedir.Expand()")
		}
		data, err := ioutil.ReadFile(expanded)
		if err != nil {
			return cfg, errors.Wrapf(err, "reading configuration %s", expanded)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "decoding configuration %s", expanded)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return cfg, errors.Wrapf(err, "godotenv.Load(%s)", f)
		}
	}
	envy.Reload()

	if err := applyEnvironment(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvironment(cfg *Configuration) error {
	if v := envy.Get(EnvValidation, ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvValidation)
		}
		cfg.Renderer.Validation = b
	}
	if v := envy.Get(EnvMessageBox, ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvMessageBox)
		}
		cfg.Window.MessageBox = b
	}
	if v := envy.Get(EnvLogLevel, ""); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := envy.Get(EnvSelection, ""); v != "" {
		cfg.Renderer.Selection = strings.ToLower(v)
	}
	if v := envy.Get(EnvShaders, ""); v != "" {
		cfg.Shaders.Directory = v
	}
	for key, dst := range map[string]*uint32{
		EnvWidth:  &cfg.Window.Width,
		EnvHeight: &cfg.Window.Height,
	} {
		if v := envy.Get(key, ""); v != "" {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return errors.Wrapf(err, "%s", key)
			}
			*dst = uint32(n)
		}
	}
	if v := envy.Get(EnvFPS, ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return errors.Errorf("%s: invalid frame rate %q", EnvFPS, v)
		}
		cfg.Time.FramesPerSecond = n
	}
	return nil
}
