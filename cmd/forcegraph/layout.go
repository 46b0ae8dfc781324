// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newLayoutCommand(opts *options) *cobra.Command {
	var output string
	var watch bool

	cmd := &cobra.Command{
		Use:   "layout graph.json",
		Short: "Lay out a graph and write it with node positions",
		Long: `Runs the force simulation of the graph to convergence and writes the graph
back as JSON, with the final position of every node. With --watch, the
layout runs again whenever the graph or config file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			run := func() error {
				cfg, err := opts.config()
				if err != nil {
					return err
				}
				lt, err := runLayout(cfg, file)
				if err != nil {
					return err
				}
				return writeLayout(lt, cfg.Simulation.Dims, output, cmd.OutOrStdout())
			}
			if !watch {
				return run()
			}
			if output != "" && samePath(output, file) {
				return fmt.Errorf("layout --watch: the output %s would overwrite the watched graph", output)
			}
			files := []string{file}
			if opts.configFile != "" {
				files = append(files, opts.configFile)
			}
			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
			defer stop()
			return watchFiles(ctx, files, run)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output JSON file (default stdout)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "lay out again when the graph or config file changes")
	return cmd
}

// writeLayout writes the graph data with the positions of the layout
// to the output file, or w if there is none.
func writeLayout(lt *layout, dims int, output string, w io.Writer) error {
	lt.Data.SetPositions(lt.Nodes, dims)
	if output == "" {
		return lt.Data.Write(w)
	}
	return lt.Data.Save(output)
}

func samePath(a, b string) bool {
	aa, aerr := filepath.Abs(a)
	ba, berr := filepath.Abs(b)
	return aerr == nil && berr == nil && aa == ba
}

// cmdContext returns the context of the command, which is nil
// for commands that are not executed through the root.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
