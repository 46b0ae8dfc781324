// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parallel

import (
	"cogentcore.org/forcegraph/gpu"
)

// Kernels are the compute stages of one tick.
type Kernels int32

const (
	// LinkKernel computes the spring force of each edge,
	// over edge space.
	LinkKernel Kernels = iota

	// LinkApplyKernel gathers the edge forces on each node
	// through the Adjacency, over node space.
	LinkApplyKernel

	// ManyBodyKernel applies the pairwise charge interaction,
	// over node space.
	ManyBodyKernel

	// CenterKernel pulls each node toward the center.
	CenterKernel

	// IntegrateKernel applies velocity decay and clamping,
	// and moves the nodes.
	IntegrateKernel

	KernelsN
)

var kernelNames = [KernelsN]string{"link", "link_apply", "many_body", "center", "integrate"}

// String returns the shader entry point of the kernel.
func (k Kernels) String() string {
	if k < 0 || k >= KernelsN {
		return "unknown"
	}
	return kernelNames[k]
}

// IsEdgeSpace returns true if the kernel runs once per edge,
// rather than once per node.
func (k Kernels) IsEdgeSpace() bool {
	return k == LinkKernel
}

// Dispatch is one recorded kernel invocation over the given
// number of work groups of [WorkgroupSize].
type Dispatch struct {
	Kernel     Kernels
	Workgroups int
}

// Stages returns the dispatches of one tick for the given node and
// edge counts, in the order they must run: link and link_apply only
// if there are edges, many_body only if there is more than one node,
// then center and integrate.
func Stages(nodes, edges int) []Dispatch {
	nw := gpu.Warps(nodes, WorkgroupSize)
	ds := make([]Dispatch, 0, KernelsN)
	if edges > 0 {
		ds = append(ds, Dispatch{LinkKernel, gpu.Warps(edges, WorkgroupSize)}, Dispatch{LinkApplyKernel, nw})
	}
	if nodes > 1 {
		ds = append(ds, Dispatch{ManyBodyKernel, nw})
	}
	ds = append(ds, Dispatch{CenterKernel, nw}, Dispatch{IntegrateKernel, nw})
	return ds
}

// Layout has the static graph structure uploaded at Configure.
type Layout struct {
	// Nodes is the initial node state.
	Nodes []GPUNode

	// Edges are the simulated edges.
	Edges []GPUEdge

	// Adjacency is the incidence of Edges on Nodes.
	Adjacency *Adjacency
}

// NewLayout returns the layout for the given nodes and edges.
func NewLayout(nodes []GPUNode, edges []GPUEdge) *Layout {
	return &Layout{Nodes: nodes, Edges: edges, Adjacency: NewAdjacency(len(nodes), edges)}
}

// Backend executes the compute kernels of a [Simulation]. Writes and
// submissions are ordered as they are made; Submit returns without
// waiting for the kernels, and ReadNodes blocks until all prior
// submissions have completed.
type Backend interface {

	// Name is the name of the backend, for logging.
	Name() string

	// Configure allocates the buffers for the given layout
	// and uploads its nodes, edges and adjacency.
	Configure(layout *Layout) error

	// WriteParams writes the uniform parameters for the following submissions.
	WriteParams(params *Params) error

	// WriteNodes overwrites the state of all nodes.
	WriteNodes(nodes []GPUNode) error

	// Submit queues the given dispatches to run in order.
	Submit(dispatches []Dispatch) error

	// ReadNodes waits for all submitted work and copies the node state into dst.
	ReadNodes(dst []GPUNode) error

	// Release frees all resources. The backend cannot be used afterwards.
	Release()
}
