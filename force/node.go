// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package force

import (
	"cogentcore.org/forcegraph/math32"
)

// Axes is a bit set of spatial axes.
type Axes uint8

const (
	AxisX Axes = 1 << iota
	AxisY
	AxisZ

	// AllAxes has all three axes set.
	AllAxes = AxisX | AxisY | AxisZ
)

// Has returns true if the axis with the given dimension
// index (0 = X, 1 = Y, 2 = Z) is set.
func (ax Axes) Has(dim int) bool {
	return ax&(1<<dim) != 0
}

// Node is one simulated body in the arena of nodes.
// Nodes are referenced by their index, which is stable
// for the lifetime of a simulation.
type Node struct {
	// ID is the identity assigned by the collaborator that built
	// the graph. It is carried through and not used by the physics.
	ID string

	// Label is the display label, carried through to rendering.
	Label string

	// Pos is the current position. Z stays 0 in 2D simulations.
	Pos math32.Vector3

	// Vel is the current velocity.
	Vel math32.Vector3

	// Charge is the repulsion strength; negative values repel.
	// Zero takes [Config.Charge] at simulation construction.
	Charge float32

	// Mass scales the force impulses on this node.
	// Zero is treated as 1.
	Mass float32

	// Fixed has the axes that are pinned to FixedPos,
	// excluded from force-driven integration.
	Fixed Axes

	// FixedPos has the pinned coordinates for the Fixed axes.
	FixedPos math32.Vector3

	// Radius is the display radius, carried through to rendering.
	Radius float32

	// Color is the display RGBA color in [0, 1].
	Color math32.Vector4
}

// Pin fixes the given axes of the node at the corresponding
// coordinates of pos, for example while it is being dragged.
func (nd *Node) Pin(axes Axes, pos math32.Vector3) {
	nd.Fixed |= axes
	for d := range 3 {
		if axes.Has(d) {
			nd.FixedPos.SetDim(d, pos.Dim(d))
		}
	}
}

// Unpin releases the given axes.
func (nd *Node) Unpin(axes Axes) {
	nd.Fixed &^= axes
}

// IsFixed returns true if the axis with the given dimension index is pinned.
func (nd *Node) IsFixed(dim int) bool {
	return nd.Fixed.Has(dim)
}

// InvMass returns the inverse mass used to scale impulses.
func (nd *Node) InvMass() float32 {
	if nd.Mass > 0 {
		return 1 / nd.Mass
	}
	return 1
}

// Edge is a spring between two nodes, referenced by index.
type Edge struct {
	// Source node index.
	Source int

	// Target node index.
	Target int

	// Distance is the rest length of the spring.
	// Zero takes [Config.LinkDistance].
	Distance float32

	// Strength is the spring constant.
	// Zero takes [Config.LinkStrength].
	Strength float32

	// Label is the display label.
	Label string
}

// Positions returns a snapshot of the node positions.
func Positions(nodes []Node) []math32.Vector3 {
	ps := make([]math32.Vector3, len(nodes))
	for i := range nodes {
		ps[i] = nodes[i].Pos
	}
	return ps
}

// Bounds returns the bounding box of the node positions.
// It is empty if there are no nodes.
func Bounds(nodes []Node) math32.Box3 {
	b := math32.B3Empty()
	for i := range nodes {
		b.ExpandByPoint(nodes[i].Pos)
	}
	return b
}
