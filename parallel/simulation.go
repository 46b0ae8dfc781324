// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parallel

import (
	"fmt"
	"log/slog"

	"cogentcore.org/forcegraph/base/errors"
	"cogentcore.org/forcegraph/force"
	"cogentcore.org/forcegraph/math32"
)

// Simulation is a [force.Engine] that runs the force kernels on a
// [Backend]. Ticks are submitted without waiting for them to
// complete; ReadNodes waits for all of them.
type Simulation struct {
	backend Backend
	config  force.Config
	nodes   []force.Node
	edges   []force.Edge
	packed  []GPUNode
	alpha   float32
	ticks   int

	// err is the first error from the backend, after which
	// ticks are no longer submitted.
	err error
}

var _ force.Engine = (*Simulation)(nil)

// NewSimulation returns a new simulation of copies of the given nodes
// and edges on the given backend, which is configured with them.
// The simulation owns the backend and releases it in Release,
// or before returning an error.
func NewSimulation(backend Backend, nodes []force.Node, edges []force.Edge, cf force.Config) (*Simulation, error) {
	if err := cf.Validate(); err != nil {
		backend.Release()
		return nil, fmt.Errorf("parallel.NewSimulation: %w", err)
	}
	sm := &Simulation{backend: backend, config: cf, alpha: cf.Alpha}
	var dropped int
	sm.nodes, sm.edges, dropped = force.Prepare(nodes, edges, &sm.config)
	if dropped > 0 {
		slog.Debug("parallel.NewSimulation: dropped edges", "dropped", dropped)
	}
	sm.packed = PackNodes(nil, sm.nodes)
	layout := NewLayout(sm.packed, PackEdges(sm.edges))
	if err := backend.Configure(layout); err != nil {
		backend.Release()
		return nil, fmt.Errorf("parallel.NewSimulation: %s: %w", backend.Name(), err)
	}
	slog.Debug("parallel.NewSimulation", "backend", backend.Name(), "nodes", len(sm.nodes), "edges", len(sm.edges))
	return sm, nil
}

// Backend returns the backend running the kernels.
func (sm *Simulation) Backend() Backend { return sm.backend }

func (sm *Simulation) Config() force.Config { return sm.config }
func (sm *Simulation) Alpha() float32       { return sm.alpha }
func (sm *Simulation) NodeCount() int       { return len(sm.nodes) }
func (sm *Simulation) EdgeCount() int       { return len(sm.edges) }
func (sm *Simulation) IsRunning() bool      { return sm.alpha > sm.config.AlphaMin }
func (sm *Simulation) IsConverged() bool    { return !sm.IsRunning() }

// Ticks returns the number of ticks submitted.
func (sm *Simulation) Ticks() int { return sm.ticks }

// Err returns the first backend error, which stops the simulation.
func (sm *Simulation) Err() error { return sm.err }

// Tick cools alpha and submits one round of the kernels with it.
func (sm *Simulation) Tick() {
	if sm.err != nil || !sm.IsRunning() || len(sm.nodes) == 0 {
		return
	}
	sm.alpha = sm.config.Cool(sm.alpha)
	n, e := len(sm.nodes), len(sm.edges)
	pr := NewParams(&sm.config, sm.alpha, n, e)
	if err := sm.backend.WriteParams(&pr); errors.Log(err) != nil {
		sm.err = err
		return
	}
	if err := sm.backend.Submit(Stages(n, e)); errors.Log(err) != nil {
		sm.err = err
		return
	}
	sm.ticks++
}

func (sm *Simulation) TickN(count int) int {
	n := 0
	for ; n < count; n++ {
		if sm.err != nil || !sm.IsRunning() || len(sm.nodes) == 0 {
			break
		}
		sm.Tick()
	}
	return n
}

func (sm *Simulation) RunToConvergence(maxIterations int) int {
	return force.RunToConvergence(sm, maxIterations)
}

// ReadNodes waits for all submitted ticks and returns a copy of the
// nodes with their current positions and velocities.
func (sm *Simulation) ReadNodes() ([]force.Node, error) {
	if sm.err != nil {
		return nil, sm.err
	}
	if err := sm.backend.ReadNodes(sm.packed); err != nil {
		sm.err = err
		return nil, err
	}
	for i := range sm.nodes {
		sm.packed[i].Unpack(&sm.nodes[i])
	}
	ns := make([]force.Node, len(sm.nodes))
	copy(ns, sm.nodes)
	return ns, nil
}

func (sm *Simulation) UpdateNodes(nodes []force.Node) {
	if len(nodes) != len(sm.nodes) {
		panic(fmt.Sprintf("parallel.Simulation UpdateNodes: got %d nodes, have %d", len(nodes), len(sm.nodes)))
	}
	copy(sm.nodes, nodes)
	force.PrepareNodes(sm.nodes, &sm.config)
	sm.packed = PackNodes(sm.packed, sm.nodes)
	if err := sm.backend.WriteNodes(sm.packed); errors.Log(err) != nil {
		sm.err = err
	}
}

func (sm *Simulation) Reheat() {
	sm.alpha = sm.config.Alpha
}

// Bounds returns the bounding box of the nodes as of the last ReadNodes.
func (sm *Simulation) Bounds() math32.Box3 { return force.Bounds(sm.nodes) }

// Release releases the backend.
func (sm *Simulation) Release() {
	sm.backend.Release()
}
