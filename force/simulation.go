// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package force

import (
	"fmt"
	"log/slog"

	"cogentcore.org/forcegraph/math32"
)

// Simulation is the sequential [Engine], computing all forces on
// the calling goroutine. It is the reference for the parallel engines.
type Simulation struct {
	config Config
	nodes  []Node
	edges  []Edge
	alpha  float32

	// ticks is the number of ticks performed since construction.
	ticks int
}

// NewSimulation returns a new sequential simulation of copies of the
// given nodes and edges. Edges with an endpoint out of range are
// dropped; see [Prepare].
func NewSimulation(nodes []Node, edges []Edge, cf Config) (*Simulation, error) {
	if err := cf.Validate(); err != nil {
		return nil, fmt.Errorf("force.NewSimulation: %w", err)
	}
	sm := &Simulation{config: cf, alpha: cf.Alpha}
	var dropped int
	sm.nodes, sm.edges, dropped = Prepare(nodes, edges, &sm.config)
	if dropped > 0 {
		slog.Debug("force.NewSimulation: dropped edges", "dropped", dropped)
	}
	return sm, nil
}

func (sm *Simulation) Config() Config  { return sm.config }
func (sm *Simulation) Alpha() float32  { return sm.alpha }
func (sm *Simulation) NodeCount() int  { return len(sm.nodes) }
func (sm *Simulation) EdgeCount() int  { return len(sm.edges) }
func (sm *Simulation) IsRunning() bool { return sm.alpha > sm.config.AlphaMin }
func (sm *Simulation) IsConverged() bool {
	return !sm.IsRunning()
}

// Ticks returns the number of ticks performed.
func (sm *Simulation) Ticks() int { return sm.ticks }

// Nodes returns the nodes directly, without copying.
// They must not be modified while ticking.
func (sm *Simulation) Nodes() []Node { return sm.nodes }

// Edges returns the simulated edges.
func (sm *Simulation) Edges() []Edge { return sm.edges }

// Bounds returns the bounding box of the current node positions.
func (sm *Simulation) Bounds() math32.Box3 { return Bounds(sm.nodes) }

func (sm *Simulation) Tick() {
	if !sm.IsRunning() || len(sm.nodes) == 0 {
		return
	}
	sm.manyBody()
	sm.link()
	sm.center()
	sm.integrate()
	sm.alpha = sm.config.Cool(sm.alpha)
	sm.ticks++
}

func (sm *Simulation) TickN(count int) int {
	n := 0
	for ; n < count; n++ {
		if !sm.IsRunning() || len(sm.nodes) == 0 {
			break
		}
		sm.Tick()
	}
	return n
}

func (sm *Simulation) RunToConvergence(maxIterations int) int {
	return RunToConvergence(sm, maxIterations)
}

func (sm *Simulation) ReadNodes() ([]Node, error) {
	ns := make([]Node, len(sm.nodes))
	copy(ns, sm.nodes)
	return ns, nil
}

func (sm *Simulation) UpdateNodes(nodes []Node) {
	if len(nodes) != len(sm.nodes) {
		panic(fmt.Sprintf("force.Simulation UpdateNodes: got %d nodes, have %d", len(nodes), len(sm.nodes)))
	}
	copy(sm.nodes, nodes)
	PrepareNodes(sm.nodes, &sm.config)
}

func (sm *Simulation) Reheat() {
	sm.alpha = sm.config.Alpha
}

// manyBody applies the brute force pairwise charge interaction.
func (sm *Simulation) manyBody() {
	cf := &sm.config
	n := len(sm.nodes)
	for i := range n {
		a := &sm.nodes[i]
		for j := i + 1; j < n; j++ {
			b := &sm.nodes[j]
			d := b.Pos.Sub(a.Pos)
			l := d.Length()
			var u math32.Vector3
			if l == 0 {
				u = Jiggle(i, j, cf.Dims)
			} else {
				u = d.DivScalar(l)
			}
			dist := max(l, cf.DistanceMin)
			if dist > cf.DistanceMax {
				continue
			}
			f := 0.5 * (a.Charge + b.Charge) / (dist * dist)
			fu := u.MulScalar(f)
			a.Vel.SetAdd(fu.MulScalar(a.InvMass()))
			b.Vel.SetSub(fu.MulScalar(b.InvMass()))
		}
	}
}

// link applies the spring force of every edge to both endpoints.
func (sm *Simulation) link() {
	cf := &sm.config
	for _, e := range sm.edges {
		s := &sm.nodes[e.Source]
		t := &sm.nodes[e.Target]
		f := LinkForce(s.Pos, t.Pos, e, e.Source, e.Target, cf)
		s.Vel.SetAdd(f.MulScalar(s.InvMass()))
		t.Vel.SetSub(f.MulScalar(t.InvMass()))
	}
}

// LinkForce returns the spring impulse that edge e applies to its
// source node at ps, toward the target at pt when stretched beyond
// its rest length. The target receives the negation.
func LinkForce(ps, pt math32.Vector3, e Edge, si, ti int, cf *Config) math32.Vector3 {
	d := pt.Sub(ps)
	l := d.Length()
	var u math32.Vector3
	if l == 0 {
		u = PairJiggle(si, ti, cf.Dims)
	} else {
		u = d.DivScalar(l)
	}
	dist := max(l, cf.DistanceMin)
	return u.MulScalar(e.Strength * (dist - e.Distance))
}

// center pulls every node toward the center point.
func (sm *Simulation) center() {
	cf := &sm.config
	for i := range sm.nodes {
		nd := &sm.nodes[i]
		for d := range cf.Dims {
			v := nd.Vel.Dim(d) + (cf.Center.Dim(d)-nd.Pos.Dim(d))*cf.CenterStrength
			nd.Vel.SetDim(d, v)
		}
	}
}

// integrate applies velocity decay and clamping, and moves every
// unfixed axis by its velocity scaled by alpha.
func (sm *Simulation) integrate() {
	cf := &sm.config
	for i := range sm.nodes {
		nd := &sm.nodes[i]
		pos := nd.Pos.Array()
		vel := nd.Vel.Array()
		for d := range cf.Dims {
			if nd.Fixed.Has(d) {
				pos[d] = nd.FixedPos.Dim(d)
				vel[d] = 0
				continue
			}
			v := math32.Clamp(vel[d]*cf.VelocityDecay, -cf.MaxVelocity, cf.MaxVelocity)
			vel[d] = v
			pos[d] += v * sm.alpha
		}
		nd.Pos = math32.Vector3FromArray(pos)
		nd.Vel = math32.Vector3FromArray(vel)
	}
}
