// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parallel

import (
	"cogentcore.org/forcegraph/force"
	"cogentcore.org/forcegraph/math32"
)

// WorkgroupSize is the number of invocations per work group,
// matching @workgroup_size in the compute shaders.
const WorkgroupSize = 256

// NotFixed is the GPUNode.Fixed coordinate of an axis that is
// free to move.
const NotFixed float32 = -1e9

// notFixedLimit is the threshold below which an axis counts as free.
const notFixedLimit float32 = -1e8

// IsFixed returns true if the given GPUNode.Fixed coordinate pins its axis.
func IsFixed(f float32) bool {
	return f >= notFixedLimit
}

// GPUNode is the 48 byte node layout shared with the compute shaders.
type GPUNode struct {
	Pos    [3]float32
	Charge float32
	Vel    [3]float32
	Mass   float32

	// Fixed has the pinned coordinate of each axis, or NotFixed.
	Fixed [3]float32

	pad float32
}

// GPUEdge is the 16 byte edge layout shared with the compute shaders.
type GPUEdge struct {
	Source   uint32
	Target   uint32
	Strength float32
	Distance float32
}

// Params is the 64 byte uniform with the per tick simulation
// parameters. Theta is carried but not used by the brute force
// many-body kernel.
type Params struct {
	Alpha          float32
	VelocityDecay  float32
	NodeCount      uint32
	EdgeCount      uint32
	CenterX        float32
	CenterY        float32
	CenterZ        float32
	CenterStrength float32
	Theta          float32
	DistanceMin    float32
	DistanceMax    float32
	MaxVelocity    float32
	Dims           uint32

	pad [3]uint32
}

// NewParams returns the uniform parameters for the given config,
// alpha, and element counts.
func NewParams(cf *force.Config, alpha float32, nodes, edges int) Params {
	return Params{
		Alpha:          alpha,
		VelocityDecay:  cf.VelocityDecay,
		NodeCount:      uint32(nodes),
		EdgeCount:      uint32(edges),
		CenterX:        cf.Center.X,
		CenterY:        cf.Center.Y,
		CenterZ:        cf.Center.Z,
		CenterStrength: cf.CenterStrength,
		Theta:          cf.Theta,
		DistanceMin:    cf.DistanceMin,
		DistanceMax:    cf.DistanceMax,
		MaxVelocity:    cf.MaxVelocity,
		Dims:           uint32(cf.Dims),
	}
}

// Center returns the center point.
func (pr *Params) Center() math32.Vector3 {
	return math32.Vec3(pr.CenterX, pr.CenterY, pr.CenterZ)
}

// PackNode returns the GPU layout of the given node.
func PackNode(nd *force.Node) GPUNode {
	gn := GPUNode{
		Pos:    nd.Pos.Array(),
		Charge: nd.Charge,
		Vel:    nd.Vel.Array(),
		Mass:   nd.Mass,
	}
	for d := range 3 {
		if nd.Fixed.Has(d) {
			gn.Fixed[d] = nd.FixedPos.Dim(d)
		} else {
			gn.Fixed[d] = NotFixed
		}
	}
	return gn
}

// PackNodes packs all nodes into dst, which is grown as needed.
func PackNodes(dst []GPUNode, nodes []force.Node) []GPUNode {
	if cap(dst) < len(nodes) {
		dst = make([]GPUNode, len(nodes))
	}
	dst = dst[:len(nodes)]
	for i := range nodes {
		dst[i] = PackNode(&nodes[i])
	}
	return dst
}

// Unpack sets the position and velocity of the node from
// the GPU layout. Fixed axes and other attributes are unchanged.
func (gn *GPUNode) Unpack(nd *force.Node) {
	nd.Pos = math32.Vector3FromArray(gn.Pos)
	nd.Vel = math32.Vector3FromArray(gn.Vel)
}

// PackEdge returns the GPU layout of the given edge.
func PackEdge(e *force.Edge) GPUEdge {
	return GPUEdge{
		Source:   uint32(e.Source),
		Target:   uint32(e.Target),
		Strength: e.Strength,
		Distance: e.Distance,
	}
}

// PackEdges returns the GPU layout of all edges.
func PackEdges(edges []force.Edge) []GPUEdge {
	ges := make([]GPUEdge, len(edges))
	for i := range edges {
		ges[i] = PackEdge(&edges[i])
	}
	return ges
}
