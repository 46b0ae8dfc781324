// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"
	"time"

	"cogentcore.org/forcegraph/config"
	"cogentcore.org/forcegraph/force"
	"cogentcore.org/forcegraph/graph"
	"github.com/spf13/cobra"
)

// options are the flags shared by all commands. Flags that are
// set override the values of the config file.
type options struct {
	configFile    string
	engine        config.Engines
	dims          int
	threads       int
	maxIterations int
}

func (o *options) addFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&o.configFile, "config", "c", "", "TOML or YAML config file")
	pf.VarP(&o.engine, "engine", "e", "simulation engine: cpu, host or gpu (default cpu)")
	pf.IntVarP(&o.dims, "dims", "d", 0, "number of dimensions, 2 or 3 (default from the config, else 2)")
	pf.IntVar(&o.threads, "threads", 0, "work groups run at once by the host engine (default GOMAXPROCS)")
	pf.IntVar(&o.maxIterations, "max-iterations", 0, "maximum number of ticks (default 10000)")
}

// config returns the config file, or the defaults, with the flag
// overrides applied. Without a config file, the defaults are those
// of the dimensions.
func (o *options) config(overrides ...func(ov *config.Config)) (*config.Config, error) {
	var cfg *config.Config
	if o.configFile != "" {
		var err error
		cfg, err = config.Load(o.configFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.New(o.dims)
	}
	ov := &config.Config{Engine: o.engine, Threads: o.threads, MaxIterations: o.maxIterations}
	ov.Simulation.Dims = o.dims
	for _, f := range overrides {
		f(ov)
	}
	if err := config.Merge(cfg, ov); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// layout is the result of laying out a graph file.
type layout struct {
	Data  *graph.Data
	Graph *graph.Graph

	// Nodes have the final state of the simulation.
	Nodes []force.Node

	Ticks     int
	Converged bool
}

// runLayout reads the graph file and runs the simulation of it
// to convergence, or to the maximum number of iterations.
func runLayout(cfg *config.Config, file string) (*layout, error) {
	dt, gr, err := openGraph(cfg, file)
	if err != nil {
		return nil, err
	}
	en, err := cfg.NewEngine(gr.Nodes, gr.Edges)
	if err != nil {
		return nil, err
	}
	defer config.Release(en)

	start := time.Now()
	lt := &layout{Data: dt, Graph: gr}
	lt.Ticks = en.RunToConvergence(cfg.MaxIterations)
	lt.Converged = en.IsConverged()
	lt.Nodes, err = en.ReadNodes()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Engine, err)
	}
	slog.Info("layout", "file", file, "engine", cfg.Engine, "dims", cfg.Simulation.Dims,
		"nodes", en.NodeCount(), "edges", en.EdgeCount(), "dropped", gr.Dropped,
		"ticks", lt.Ticks, "converged", lt.Converged, "elapsed", time.Since(start))
	if !lt.Converged {
		slog.Warn("layout did not converge", "file", file, "maxIterations", cfg.MaxIterations, "alpha", en.Alpha())
	}
	return lt, nil
}

// openGraph reads and builds the graph file.
func openGraph(cfg *config.Config, file string) (*graph.Data, *graph.Graph, error) {
	dt, err := graph.Open(file)
	if err != nil {
		return nil, nil, err
	}
	gr, err := graph.Build(dt, cfg.Simulation)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", file, err)
	}
	return dt, gr, nil
}
