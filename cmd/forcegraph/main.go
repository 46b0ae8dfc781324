// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command forcegraph lays out graphs with force simulations,
// renders them to images, and streams layouts over websockets.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"cogentcore.org/forcegraph/base/logx"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	var verbose, quiet bool

	root := &cobra.Command{
		Use:   "forcegraph",
		Short: "Force-directed graph layout",
		Long: `forcegraph lays out graphs given as JSON with a force simulation on the
CPU, on host worker goroutines, or on the GPU, and renders or streams the
resulting node positions.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			switch {
			case verbose:
				logx.UserLevel = slog.LevelDebug
			case quiet:
				logx.UserLevel = slog.LevelWarn
			}
			logx.SetDefaultLogger()
		},
	}
	pf := root.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "print debug messages")
	pf.BoolVarP(&quiet, "quiet", "q", false, "only print warnings and errors")
	opts.addFlags(root)

	root.AddCommand(newLayoutCommand(opts))
	root.AddCommand(newRenderCommand(opts))
	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newConfigCommand(opts))
	return root
}
