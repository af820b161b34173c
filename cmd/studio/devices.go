// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/devblok/shaderstudio/core"
	"github.com/devblok/shaderstudio/device"
)

func newDevicesCommand(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Report the accelerators and their suitability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listDevices(opts.cfg, opts.logger, cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format, json or yaml")
	return cmd
}

func listDevices(cfg core.Configuration, logger *log.Logger, w io.Writer, format string) error {
	devOpts, err := deviceOptions(cfg, logger)
	if err != nil {
		return err
	}
	dev, err := device.New(device.APIVulkan, devOpts)
	if err != nil {
		return err
	}
	defer dev.Terminate()

	if err := dev.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title); err != nil {
		return err
	}
	if err := dev.Initialize(); err != nil {
		return err
	}
	reports, err := dev.Accelerators()
	if err != nil {
		return err
	}
	return writeReport(w, reports, format)
}

func writeReport(w io.Writer, reports []device.AcceleratorReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.Errorf("unknown report format %q", format)
}
