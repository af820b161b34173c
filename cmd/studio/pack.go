// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"os"
	"os/user"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/devblok/shaderstudio/shader"
	"github.com/devblok/shaderstudio/utility/kar"
)

func currentUserName() string {
	u, err := user.Current()
	if err != nil {
		return "unknown"
	}
	return u.Username
}

type packOptions struct {
	author  string
	version int64
	dst     string
	force   bool
}

func newPackCommand(opts *options) *cobra.Command {
	po := packOptions{}
	cmd := &cobra.Command{
		Use:   "pack <directory>",
		Short: "Bundle the compiled shaders of a directory into a kar archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := packShaders(args[0], po, opts.logger)
			return err
		},
	}
	cmd.Flags().StringVar(&po.author, "author", currentUserName(), "author of the bundle")
	cmd.Flags().Int64Var(&po.version, "version", 1, "bundle version number")
	cmd.Flags().StringVarP(&po.dst, "output", "o", "shaders.kar", "destination file")
	cmd.Flags().BoolVar(&po.force, "force", false, "overwrite the destination file")
	return cmd
}

// packShaders writes every compiled shader in dir into a bundle,
// returning the number of shaders packed.
func packShaders(dir string, po packOptions, logger log.FieldLogger) (int, error) {
	if _, err := os.Stat(po.dst); err == nil && !po.force {
		return 0, errors.Errorf("%s exists, will not overwrite", po.dst)
	}

	builder, err := kar.NewBuilder(kar.Header{
		Author:      po.author,
		DateCreated: time.Now().Unix(),
		Version:     po.version,
	})
	if err != nil {
		return 0, err
	}
	defer builder.Close()

	if err := shader.Pack(shader.NewDirSource(dir), builder); err != nil {
		return 0, err
	}
	count := builder.Len()
	if count == 0 {
		return 0, errors.Errorf("no compiled shaders in %s", dir)
	}

	f, err := os.Create(po.dst)
	if err != nil {
		return 0, err
	}
	written, err := builder.WriteTo(f)
	if err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	logger.WithFields(log.Fields{
		"bundle":  po.dst,
		"shaders": count,
		"bytes":   written,
	}).Info("shaders packed")
	return count, nil
}
