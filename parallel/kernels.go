// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parallel

import (
	"cogentcore.org/forcegraph/force"
	"cogentcore.org/forcegraph/math32"
)

// hostState has the buffers of the host backend, mirroring
// the bindings of the compute shader.
type hostState struct {
	params     Params
	nodes      []GPUNode
	edges      []GPUEdge
	edgeForces []math32.Vector4
	adj        *Adjacency
}

// kernelFunc runs one invocation of a kernel, for global index i.
// It may only write the element at i.
type kernelFunc func(st *hostState, i int)

var hostKernels = [KernelsN]kernelFunc{linkKernel, linkApplyKernel, manyBodyKernel, centerKernel, integrateKernel}

func invMass(m float32) float32 {
	if m > 0 {
		return 1 / m
	}
	return 1
}

func linkKernel(st *hostState, e int) {
	if e >= int(st.params.EdgeCount) {
		return
	}
	edge := st.edges[e]
	ps := math32.Vector3FromArray(st.nodes[edge.Source].Pos)
	pt := math32.Vector3FromArray(st.nodes[edge.Target].Pos)
	d := pt.Sub(ps)
	l := d.Length()
	var u math32.Vector3
	if l > 0 {
		u = d.DivScalar(l)
	} else {
		u = force.PairJiggle(int(edge.Source), int(edge.Target), int(st.params.Dims))
	}
	dist := max(l, st.params.DistanceMin)
	f := u.MulScalar(edge.Strength * (dist - edge.Distance))
	st.edgeForces[e] = math32.Vector4FromVector3(f, 0)
}

func linkApplyKernel(st *hostState, i int) {
	if i >= int(st.params.NodeCount) {
		return
	}
	var dv math32.Vector3
	for _, entry := range st.adj.Incident(i) {
		e, isTarget := EntryEdge(entry)
		f := st.edgeForces[e].Vector3()
		if isTarget {
			dv.SetSub(f)
		} else {
			dv.SetAdd(f)
		}
	}
	nd := &st.nodes[i]
	addVel(nd, dv.MulScalar(invMass(nd.Mass)))
}

func manyBodyKernel(st *hostState, i int) {
	n := int(st.params.NodeCount)
	if i >= n {
		return
	}
	pr := &st.params
	nd := &st.nodes[i]
	pi := math32.Vector3FromArray(nd.Pos)
	var dv math32.Vector3
	for j := range n {
		if j == i {
			continue
		}
		o := &st.nodes[j]
		d := math32.Vector3FromArray(o.Pos).Sub(pi)
		l := d.Length()
		var u math32.Vector3
		if l > 0 {
			u = d.DivScalar(l)
		} else {
			u = force.PairJiggle(i, j, int(pr.Dims))
		}
		dist := max(l, pr.DistanceMin)
		if dist > pr.DistanceMax {
			continue
		}
		f := 0.5 * (nd.Charge + o.Charge) / (dist * dist)
		dv.SetAdd(u.MulScalar(f))
	}
	addVel(nd, dv.MulScalar(invMass(nd.Mass)))
}

func centerKernel(st *hostState, i int) {
	if i >= int(st.params.NodeCount) {
		return
	}
	pr := &st.params
	c := pr.Center().Array()
	nd := &st.nodes[i]
	for a := range int(pr.Dims) {
		nd.Vel[a] += (c[a] - nd.Pos[a]) * pr.CenterStrength
	}
}

func integrateKernel(st *hostState, i int) {
	if i >= int(st.params.NodeCount) {
		return
	}
	pr := &st.params
	nd := &st.nodes[i]
	for a := range int(pr.Dims) {
		if IsFixed(nd.Fixed[a]) {
			nd.Pos[a] = nd.Fixed[a]
			nd.Vel[a] = 0
			continue
		}
		v := math32.Clamp(nd.Vel[a]*pr.VelocityDecay, -pr.MaxVelocity, pr.MaxVelocity)
		nd.Vel[a] = v
		nd.Pos[a] += v * pr.Alpha
	}
}

func addVel(nd *GPUNode, dv math32.Vector3) {
	nd.Vel[0] += dv.X
	nd.Vel[1] += dv.Y
	nd.Vel[2] += dv.Z
}
