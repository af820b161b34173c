// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/shaderstudio/core"
)

func TestDefaultConfiguration(t *testing.T) {
	c := qt.New(t)
	cfg, err := core.LoadConfiguration("", filepath.Join(t.TempDir(), "missing.env"))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Window.Width, qt.Equals, uint32(1280))
	c.Assert(cfg.Window.Height, qt.Equals, uint32(720))
	c.Assert(cfg.Renderer.Selection, qt.Equals, "first")
	c.Assert(cfg.Renderer.DeviceExtensions, qt.DeepEquals, []string{"VK_KHR_swapchain"})
	c.Assert(cfg.Renderer.Validation, qt.IsFalse)
}

func TestConfigurationFileAndEnvironment(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	file := filepath.Join(dir, "studio.toml")
	err := ioutil.WriteFile(file, []byte(`
[window]
title = "Test"
width = 640
height = 480

[renderer]
selection = "discrete"

[log]
level = "debug"
`), 0644)
	c.Assert(err, qt.IsNil)

	envFile := filepath.Join(dir, "test.env")
	err = ioutil.WriteFile(envFile, []byte("STUDIO_VALIDATION=true\n"), 0644)
	c.Assert(err, qt.IsNil)
	t.Setenv(core.EnvHeight, "600")
	t.Cleanup(func() { os.Unsetenv(core.EnvValidation) })

	cfg, err := core.LoadConfiguration(file, envFile)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Window.Title, qt.Equals, "Test")
	c.Assert(cfg.Window.Width, qt.Equals, uint32(640))
	c.Assert(cfg.Window.Height, qt.Equals, uint32(600))
	c.Assert(cfg.Renderer.Selection, qt.Equals, "discrete")
	c.Assert(cfg.Renderer.Validation, qt.IsTrue)
	c.Assert(cfg.Log.Level, qt.Equals, "debug")
}

func TestConfigurationBadEnvironment(t *testing.T) {
	c := qt.New(t)
	t.Setenv(core.EnvWidth, "wide")
	_, err := core.LoadConfiguration("", filepath.Join(t.TempDir(), "missing.env"))
	c.Assert(err, qt.ErrorMatches, "STUDIO_WIDTH: .*")
}

func TestConfigurationMissingFile(t *testing.T) {
	c := qt.New(t)
	_, err := core.LoadConfiguration(filepath.Join(t.TempDir(), "nope.toml"))
	c.Assert(err, qt.ErrorMatches, "reading configuration .*")
}

func TestNewLogger(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	logger, err := core.NewLogger(core.LogConfiguration{Level: "warn"}, &buf)
	c.Assert(err, qt.IsNil)
	c.Assert(logger.GetLevel(), qt.Equals, log.WarnLevel)

	logger.Info("hidden")
	logger.Warn("shown")
	c.Assert(buf.String(), qt.Not(qt.Contains), "hidden")
	c.Assert(buf.String(), qt.Contains, "shown")

	_, err = core.NewLogger(core.LogConfiguration{Level: "loud"}, &buf)
	c.Assert(err, qt.ErrorMatches, "log level: .*")

	_, err = core.NewLogger(core.LogConfiguration{Format: "xml"}, &buf)
	c.Assert(err, qt.ErrorMatches, `unknown log format "xml"`)
}

func TestFrameInterval(t *testing.T) {
	c := qt.New(t)
	c.Assert(core.FrameInterval(0), qt.Equals, time.Nanosecond)
	c.Assert(core.FrameInterval(50), qt.Equals, 20*time.Millisecond)

	tm := core.NewTime(core.TimeConfiguration{FramesPerSecond: 1000})
	defer tm.Stop()
	c.Assert(tm.Fps(), qt.Equals, 1000)
	<-tm.FpsTicker().C
}
