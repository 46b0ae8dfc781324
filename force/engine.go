// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package force

import (
	"log/slog"
)

// DefaultMaxIterations is the fuse on the number of ticks run by
// RunToConvergence when it is given a non-positive maximum.
const DefaultMaxIterations = 10000

// Engine is a force simulation that advances node positions under
// many-body repulsion, link springs, and a centering pull, while
// alpha cools toward zero. [Simulation] is the sequential engine;
// the parallel package has the host and GPU engines.
type Engine interface {

	// Tick advances the simulation by one step. It is a no-op once
	// the simulation has converged, or when there are no nodes.
	Tick()

	// TickN runs up to count ticks, stopping early at convergence,
	// and returns the number of ticks performed.
	TickN(count int) int

	// RunToConvergence runs ticks until alpha falls to AlphaMin or
	// maxIterations ticks have been performed, returning the number
	// of ticks. maxIterations <= 0 uses [DefaultMaxIterations].
	RunToConvergence(maxIterations int) int

	// IsRunning returns true while alpha is above AlphaMin.
	IsRunning() bool

	// IsConverged returns true once alpha has reached AlphaMin.
	IsConverged() bool

	// Alpha returns the current temperature.
	Alpha() float32

	// NodeCount returns the number of nodes.
	NodeCount() int

	// EdgeCount returns the number of edges being simulated,
	// not counting edges dropped at construction.
	EdgeCount() int

	// ReadNodes returns a copy of the current node state,
	// in the original node order.
	ReadNodes() ([]Node, error)

	// UpdateNodes overwrites the state of all nodes, for example
	// to apply positions that were dragged in a view. The Charge
	// and Mass defaults are filled in as at construction. It panics
	// if len(nodes) differs from NodeCount.
	UpdateNodes(nodes []Node)

	// Reheat restores alpha to [Config.Alpha] so that the
	// simulation runs again.
	Reheat()

	// Config returns the simulation parameters.
	Config() Config
}

// RunToConvergence is a helper for [Engine] implementations:
// it ticks en until it converges or hits the fuse.
func RunToConvergence(en Engine, maxIterations int) int {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return en.TickN(maxIterations)
}

// PrepareNodes fills in the Charge and Mass defaults of the nodes
// from cf, and zeroes Z in 2D.
func PrepareNodes(nodes []Node, cf *Config) {
	for i := range nodes {
		nd := &nodes[i]
		if nd.Charge == 0 {
			nd.Charge = cf.Charge
		}
		if nd.Mass == 0 {
			nd.Mass = 1
		}
		if cf.Dims == 2 {
			nd.Pos.Z = 0
			nd.Vel.Z = 0
			nd.Fixed &^= AxisZ
		}
	}
}

// Prepare returns copies of nodes and edges that are ready to
// simulate: Charge, Mass, Distance and Strength defaults are
// filled in from cf, Z is zeroed in 2D, and edges with an
// endpoint out of range are dropped. The dropped count is returned.
func Prepare(nodes []Node, edges []Edge, cf *Config) ([]Node, []Edge, int) {
	ns := make([]Node, len(nodes))
	copy(ns, nodes)
	PrepareNodes(ns, cf)
	n := len(ns)
	es := make([]Edge, 0, len(edges))
	dropped := 0
	for _, e := range edges {
		if e.Source < 0 || e.Source >= n || e.Target < 0 || e.Target >= n {
			slog.Debug("force: dropping edge with endpoint out of range", "source", e.Source, "target", e.Target, "nodes", n)
			dropped++
			continue
		}
		if e.Distance == 0 {
			e.Distance = cf.LinkDistance
		}
		if e.Strength == 0 {
			e.Strength = cf.LinkStrength
		}
		es = append(es, e)
	}
	return ns, es, dropped
}
