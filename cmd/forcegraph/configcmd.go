// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"

	"cogentcore.org/forcegraph/config"
	"github.com/spf13/cobra"
)

func newConfigCommand(opts *options) *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or save the effective configuration",
		Long: `Prints the configuration that the other commands would use, from the
defaults, the --config file and the flags, as TOML or YAML. With -o, the
configuration is saved to the file instead, in the format of its extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if output != "" {
				if err := config.Save(cfg, output); err != nil {
					return err
				}
				slog.Info("saved config", "file", output)
				return nil
			}
			fm, err := config.FormatOf("config." + format)
			if err != nil {
				return fmt.Errorf("config --format %q: %w", format, err)
			}
			return config.Write(cfg, cmd.OutOrStdout(), fm)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to save the config to, .toml, .yaml or .yml")
	cmd.Flags().StringVarP(&format, "format", "f", "toml", "format to print: toml or yaml")
	return cmd
}
