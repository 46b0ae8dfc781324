// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"

	"cogentcore.org/forcegraph/force"
	"cogentcore.org/forcegraph/math32"
)

// DefaultNodeRadius is the radius of nodes that do not set one.
const DefaultNodeRadius = 8

// Camera provides the transform from world to clip space.
// Both [camera.Camera2D] and [camera.Camera3D] are Cameras.
type Camera interface {
	ViewProjectionMatrix() math32.Matrix4
}

// NodeInstance is the per-instance vertex data of one node.
// The layout matches the node vertex buffer: 48 bytes.
type NodeInstance struct {
	Position [3]float32
	Radius   float32
	Color    [4]float32

	// Selected is 1 for a selected node and 0 otherwise.
	Selected float32

	pad [3]float32
}

// IsSelected returns whether the node is selected.
func (ni *NodeInstance) IsSelected() bool { return ni.Selected > 0.5 }

// EdgeInstance is the per-instance vertex data of one edge segment.
// The layout matches the edge vertex buffer: 32 bytes.
type EdgeInstance struct {
	Start [3]float32

	// Alpha is the opacity of the edge; zero takes [Config.EdgeAlpha].
	Alpha float32

	End [3]float32

	pad float32
}

// Frame is a snapshot of the nodes and edges to draw.
type Frame struct {
	Nodes []NodeInstance
	Edges []EdgeInstance

	// NodeLabels and EdgeLabels are parallel to Nodes and Edges.
	NodeLabels []string
	EdgeLabels []string
}

// NewFrame returns a frame of the current state of the given nodes
// and the edges between them. Selected has the indexes of the selected
// nodes. Edges with an endpoint out of range are skipped.
func NewFrame(nodes []force.Node, edges []force.Edge, selected ...int) *Frame {
	fr := &Frame{
		Nodes:      make([]NodeInstance, len(nodes)),
		NodeLabels: make([]string, len(nodes)),
		Edges:      make([]EdgeInstance, 0, len(edges)),
		EdgeLabels: make([]string, 0, len(edges)),
	}
	for i := range nodes {
		nd := &nodes[i]
		r := nd.Radius
		if r <= 0 {
			r = DefaultNodeRadius
		}
		c := nd.Color
		if c == (math32.Vector4{}) {
			c = math32.Vec4(0.5, 0.5, 0.5, 1)
		}
		fr.Nodes[i] = NodeInstance{Position: nd.Pos.Array(), Radius: r, Color: c.Array()}
		fr.NodeLabels[i] = nd.Label
	}
	for _, s := range selected {
		if s >= 0 && s < len(fr.Nodes) {
			fr.Nodes[s].Selected = 1
		}
	}
	n := len(nodes)
	for _, ed := range edges {
		if ed.Source < 0 || ed.Source >= n || ed.Target < 0 || ed.Target >= n {
			continue
		}
		fr.Edges = append(fr.Edges, EdgeInstance{
			Start: nodes[ed.Source].Pos.Array(),
			End:   nodes[ed.Target].Pos.Array(),
		})
		fr.EdgeLabels = append(fr.EdgeLabels, ed.Label)
	}
	return fr
}

// checkCapacity panics if the frame has more nodes or edges than
// the config allows.
func (fr *Frame) checkCapacity(cf *Config) {
	if len(fr.Nodes) > cf.MaxNodes {
		panic(fmt.Sprintf("render: frame has %d nodes, more than the capacity of %d", len(fr.Nodes), cf.MaxNodes))
	}
	if len(fr.Edges) > cf.MaxEdges {
		panic(fmt.Sprintf("render: frame has %d edges, more than the capacity of %d", len(fr.Edges), cf.MaxEdges))
	}
}
