// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package graph builds simulation nodes and edges from id-keyed graph
// data, with kind colors, edge labels and initial layouts.
package graph

import (
	"fmt"
	"log/slog"

	"cogentcore.org/forcegraph/force"
	"cogentcore.org/forcegraph/math32"
)

// Default node radii, by dimensions.
const (
	DefaultRadius2D = 8
	DefaultRadius3D = 12
)

// Graph is graph data resolved to node indexes, ready to simulate.
type Graph struct {
	// Nodes in the order of the data nodes.
	Nodes []force.Node

	// Edges whose endpoints were both found.
	Edges []force.Edge

	// Index maps node ids to indexes.
	Index map[string]int

	// Dropped is the number of edges with an unknown endpoint.
	Dropped int

	// Config is the simulation config the graph was built for.
	Config force.Config
}

// Build resolves the data for a simulation with the given config.
// Nodes without a position are placed on a circle in 2D or a
// Fibonacci sphere in 3D. Duplicate node ids are an error, and
// edges with an unknown endpoint are dropped.
func Build(dt *Data, cf force.Config) (*Graph, error) {
	gr := &Graph{Config: cf, Index: make(map[string]int, len(dt.Nodes))}
	n := len(dt.Nodes)
	var initial []math32.Vector3
	radius := float32(DefaultRadius2D)
	if cf.Dims == 3 {
		initial = FibonacciSphere(n, DefaultLayoutRadius)
		radius = DefaultRadius3D
	} else {
		initial = CircleLayout(n, DefaultLayoutRadius)
	}
	gr.Nodes = make([]force.Node, n)
	for i, ni := range dt.Nodes {
		if _, has := gr.Index[ni.ID]; has {
			return nil, fmt.Errorf("graph.Build: duplicate node id %q", ni.ID)
		}
		gr.Index[ni.ID] = i
		nd := &gr.Nodes[i]
		nd.ID = ni.ID
		nd.Label = ni.Label
		if nd.Label == "" {
			nd.Label = ni.ID
		}
		nd.Pos = initial[i]
		if len(ni.Position) >= 2 {
			nd.Pos = math32.Vec3(ni.Position[0], ni.Position[1], 0)
			if len(ni.Position) >= 3 && cf.Dims == 3 {
				nd.Pos.Z = ni.Position[2]
			}
		}
		if ni.Fixed {
			nd.Pin(force.AllAxes, nd.Pos)
		}
		nd.Radius = ni.Radius
		if nd.Radius <= 0 {
			nd.Radius = radius
		}
		nd.Color = nodeColor(&ni)
	}
	for _, ei := range dt.Edges {
		s, sok := gr.Index[ei.Source]
		t, tok := gr.Index[ei.Target]
		if !sok || !tok {
			gr.Dropped++
			continue
		}
		label := ei.Label
		if label == "" {
			label = ei.Kind.String()
		}
		gr.Edges = append(gr.Edges, force.Edge{Source: s, Target: t, Distance: ei.Distance, Strength: ei.Strength, Label: label})
	}
	if gr.Dropped > 0 {
		slog.Debug("graph.Build: dropped edges with unknown endpoints", "dropped", gr.Dropped)
	}
	return gr, nil
}

// nodeColor returns the explicit color of the node, or its kind color.
func nodeColor(ni *NodeInput) math32.Vector4 {
	c := ni.Kind.Color()
	if len(ni.Color) >= 3 {
		c = math32.Vector4FromSlice(ni.Color, math32.Vec4(0, 0, 0, 1))
	}
	if ni.Abstract {
		c.W = AbstractAlpha
	}
	return c
}

// NewSimulation returns a sequential simulation of the graph.
func (gr *Graph) NewSimulation() (*force.Simulation, error) {
	return force.NewSimulation(gr.Nodes, gr.Edges, gr.Config)
}
