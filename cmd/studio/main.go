// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/devblok/shaderstudio/core"
)

func init() {
	runtime.LockOSThread()
}

type options struct {
	configPath string
	logLevel   string

	cfg    core.Configuration
	logger *log.Logger
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "studio",
		Short:         "Shader Studio, a playground for compiled shaders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "TOML configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level, overrides configuration")

	root.AddCommand(
		newRunCommand(opts),
		newDevicesCommand(opts),
		newPackCommand(opts),
	)
	return root
}

func (o *options) load() error {
	cfg, err := core.LoadConfiguration(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	logger, err := core.NewLogger(cfg.Log, nil)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = logger
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.WithError(err).Error("studio failed")
		os.Exit(1)
	}
}
