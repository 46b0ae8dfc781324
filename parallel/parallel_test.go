// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parallel

import (
	"strings"
	"testing"
	"unsafe"

	"cogentcore.org/forcegraph/base/errors"
	"cogentcore.org/forcegraph/base/tolassert"
	"cogentcore.org/forcegraph/force"
	"cogentcore.org/forcegraph/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHost(t *testing.T, nodes []force.Node, edges []force.Edge, cf force.Config) *Simulation {
	sm, err := NewSimulation(NewHostBackend(0), nodes, edges, cf)
	require.NoError(t, err)
	t.Cleanup(sm.Release)
	return sm
}

func readNodes(t *testing.T, en force.Engine) []force.Node {
	ns, err := en.ReadNodes()
	require.NoError(t, err)
	return ns
}

func pair(x0, y0, x1, y1 float32) []force.Node {
	return []force.Node{{Pos: math32.Vec3(x0, y0, 0)}, {Pos: math32.Vec3(x1, y1, 0)}}
}

// grid returns n nodes on a jittered grid, with a chain of edges.
func grid(n int) ([]force.Node, []force.Edge) {
	nodes := make([]force.Node, n)
	edges := make([]force.Edge, 0, n)
	for i := range nodes {
		x := float32(i%20) * 10
		y := float32(i/20) * 10
		nodes[i].Pos = math32.Vec3(x+float32(i%3), y-float32(i%5), 0)
		if i > 0 {
			edges = append(edges, force.Edge{Source: i - 1, Target: i})
		}
	}
	return nodes, edges
}

func TestLayoutSizes(t *testing.T) {
	assert.Equal(t, uintptr(48), unsafe.Sizeof(GPUNode{}))
	assert.Equal(t, uintptr(16), unsafe.Sizeof(GPUEdge{}))
	assert.Equal(t, uintptr(64), unsafe.Sizeof(Params{}))
}

func TestPack(t *testing.T) {
	nd := force.Node{Pos: math32.Vec3(1, 2, 3), Vel: math32.Vec3(4, 5, 6), Charge: -30, Mass: 2}
	nd.Pin(force.AxisY, math32.Vec3(0, 7, 0))
	gn := PackNode(&nd)
	assert.Equal(t, [3]float32{1, 2, 3}, gn.Pos)
	assert.Equal(t, float32(-30), gn.Charge)
	assert.False(t, IsFixed(gn.Fixed[0]))
	assert.True(t, IsFixed(gn.Fixed[1]))
	assert.Equal(t, float32(7), gn.Fixed[1])
	assert.True(t, IsFixed(-1000))

	gn.Pos = [3]float32{9, 8, 7}
	var out force.Node
	out.Label = "kept"
	gn.Unpack(&out)
	assert.Equal(t, math32.Vec3(9, 8, 7), out.Pos)
	assert.Equal(t, math32.Vec3(4, 5, 6), out.Vel)
	assert.Equal(t, "kept", out.Label)

	ge := PackEdge(&force.Edge{Source: 3, Target: 1, Distance: 20, Strength: 0.5})
	assert.Equal(t, GPUEdge{Source: 3, Target: 1, Strength: 0.5, Distance: 20}, ge)

	cf := force.DefaultConfig()
	pr := NewParams(&cf, 0.5, 10, 4)
	assert.Equal(t, uint32(10), pr.NodeCount)
	assert.Equal(t, uint32(2), pr.Dims)
	assert.Equal(t, cf.Center, pr.Center())
}

func TestAdjacency(t *testing.T) {
	edges := []GPUEdge{{Source: 0, Target: 2}, {Source: 2, Target: 1}, {Source: 0, Target: 1}}
	ad := NewAdjacency(4, edges)
	assert.Equal(t, []uint32{0, 2, 4, 6, 6}, ad.Offsets)
	assert.Equal(t, []uint32{0 << 1, 2 << 1}, ad.Incident(0))
	assert.Equal(t, []uint32{1<<1 | 1, 2<<1 | 1}, ad.Incident(1))
	assert.Equal(t, []uint32{0<<1 | 1, 1 << 1}, ad.Incident(2))
	assert.Empty(t, ad.Incident(3))
	e, tgt := EntryEdge(1<<1 | 1)
	assert.Equal(t, 1, e)
	assert.True(t, tgt)
}

func TestStages(t *testing.T) {
	kernels := func(ds []Dispatch) []string {
		var s []string
		for _, d := range ds {
			s = append(s, d.Kernel.String())
		}
		return s
	}
	assert.Equal(t, []string{"link", "link_apply", "many_body", "center", "integrate"}, kernels(Stages(300, 600)))
	assert.Equal(t, []string{"many_body", "center", "integrate"}, kernels(Stages(2, 0)))
	assert.Equal(t, []string{"center", "integrate"}, kernels(Stages(1, 0)))

	ds := Stages(300, 600)
	assert.Equal(t, 3, ds[0].Workgroups)
	assert.Equal(t, 2, ds[1].Workgroups)
	assert.Equal(t, "unknown", KernelsN.String())
}

func TestShaderCode(t *testing.T) {
	code, err := ShaderCode()
	require.NoError(t, err)
	assert.NotContains(t, code, "\n#include")
	assert.Contains(t, code, "struct Params")
	for k := range KernelsN {
		assert.Contains(t, code, "fn "+k.String()+"(")
	}
	assert.Equal(t, 5, strings.Count(code, "@compute @workgroup_size(256)"))
}

func TestHostCooling(t *testing.T) {
	seq, err := force.NewSimulation(pair(-10, 0, 10, 0), nil, force.DefaultConfig())
	require.NoError(t, err)
	sm := newHost(t, pair(-10, 0, 10, 0), nil, force.DefaultConfig())
	n := sm.RunToConvergence(0)
	assert.Equal(t, seq.RunToConvergence(0), n)
	assert.Equal(t, n, sm.Ticks())
	assert.True(t, sm.IsConverged())
	tolassert.EqualTol(t, seq.Alpha(), sm.Alpha(), 1.0e-6)

	assert.Equal(t, 0, sm.TickN(5))
	sm.Reheat()
	assert.True(t, sm.IsRunning())
}

func TestHostMatchesSequential(t *testing.T) {
	cases := []struct {
		name  string
		nodes []force.Node
		edges []force.Edge
	}{
		{"repulsion", pair(100, 0, -100, 0), nil},
		{"link", pair(100, 0, -100, 0), []force.Edge{{Source: 0, Target: 1}}},
		{"coincident", pair(0, 0, 0, 0), nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			seq, err := force.NewSimulation(c.nodes, c.edges, force.DefaultConfig())
			require.NoError(t, err)
			seq.RunToConvergence(0)
			sm := newHost(t, c.nodes, c.edges, force.DefaultConfig())
			sm.RunToConvergence(0)
			ns := readNodes(t, sm)
			want := seq.Nodes()[0].Pos.DistanceTo(seq.Nodes()[1].Pos)
			tolassert.EqualTol(t, want, ns[0].Pos.DistanceTo(ns[1].Pos), 2)
			for _, nd := range ns {
				assert.False(t, math32.IsNaN(nd.Pos.X))
				assert.Equal(t, float32(0), nd.Pos.Z)
			}
		})
	}
}

func TestHostLink(t *testing.T) {
	sm := newHost(t, pair(100, 0, -100, 0), []force.Edge{{Source: 0, Target: 1}}, force.DefaultConfig())
	sm.RunToConvergence(0)
	ns := readNodes(t, sm)
	tolassert.EqualTol(t, 50, ns[0].Pos.DistanceTo(ns[1].Pos), 3)
	tolassert.EqualTol(t, 0, ns[0].Pos.X+ns[1].Pos.X, 1.0e-3)
}

func TestHostFixed(t *testing.T) {
	nodes := pair(0, 0, 30, 0)
	nodes[0].Pin(force.AxisX|force.AxisY, math32.Vec3(10, 20, 0))
	sm := newHost(t, nodes, []force.Edge{{Source: 0, Target: 1}}, force.DefaultConfig())
	sm.TickN(50)
	ns := readNodes(t, sm)
	assert.Equal(t, math32.Vec3(10, 20, 0), ns[0].Pos)
	assert.Equal(t, math32.Vector3{}, ns[0].Vel)
	assert.NotEqual(t, float32(30), ns[1].Pos.X)
}

func TestHost3D(t *testing.T) {
	nodes := []force.Node{{Pos: math32.Vec3(0, 0, 100)}, {Pos: math32.Vec3(0, 0, -100)}}
	sm := newHost(t, nodes, nil, force.DefaultConfig3D())
	sm.RunToConvergence(0)
	ns := readNodes(t, sm)
	assert.Greater(t, ns[0].Pos.DistanceTo(ns[1].Pos), float32(10))
	assert.Greater(t, ns[0].Pos.Z, ns[1].Pos.Z)
}

func TestHostThreads(t *testing.T) {
	nodes, edges := grid(300)
	run := func(threads int) []force.Node {
		sm, err := NewSimulation(NewHostBackend(threads), nodes, edges, force.DefaultConfig())
		require.NoError(t, err)
		defer sm.Release()
		assert.Equal(t, 20, sm.TickN(20))
		return readNodes(t, sm)
	}
	one := run(1)
	assert.Equal(t, one, run(8))
}

func TestHostGrid(t *testing.T) {
	nodes, edges := grid(300)
	cf := force.DefaultConfig()
	host := newHost(t, nodes, edges, cf)

	// the parallel engine cools before its first tick
	scf := cf
	scf.Alpha = cf.Cool(cf.Alpha)
	seq, err := force.NewSimulation(nodes, edges, scf)
	require.NoError(t, err)

	// only short runs agree, since the layout is chaotic
	host.TickN(2)
	seq.TickN(2)
	hn := readNodes(t, host)
	for i, nd := range seq.Nodes() {
		assert.Less(t, nd.Pos.DistanceTo(hn[i].Pos), float32(1.0e-2), "node %d", i)
	}
	tolassert.EqualTol(t, seq.Alpha(), cf.Cool(host.Alpha()), 1.0e-6)

	// both converge to a spread out layout
	host.RunToConvergence(0)
	seq.RunToConvergence(0)
	assert.True(t, host.IsConverged())
	assert.True(t, seq.IsConverged())
	readNodes(t, host)
	hb := host.Bounds()
	sb := seq.Bounds()
	for _, bb := range []math32.Box3{hb, sb} {
		size := bb.Size()
		assert.Greater(t, size.X, float32(50))
		assert.Greater(t, size.Y, float32(50))
	}
}

func TestHostUpdateNodes(t *testing.T) {
	sm := newHost(t, pair(0, 0, 10, 0), nil, force.DefaultConfig())
	assert.Panics(t, func() { sm.UpdateNodes(make([]force.Node, 3)) })
	ns := readNodes(t, sm)
	ns[0].Pos = math32.Vec3(-40, 2, 9)
	sm.UpdateNodes(ns)
	ns = readNodes(t, sm)
	assert.Equal(t, math32.Vec3(-40, 2, 0), ns[0].Pos)

	sm.UpdateNodes(pair(0, 0, 10, 0))
	for _, nd := range readNodes(t, sm) {
		assert.Equal(t, force.DefaultConfig().Charge, nd.Charge)
		assert.Equal(t, float32(1), nd.Mass)
	}
}

func TestHostEmpty(t *testing.T) {
	sm := newHost(t, nil, nil, force.DefaultConfig())
	assert.Equal(t, 0, sm.TickN(10))
	assert.Len(t, readNodes(t, sm), 0)

	sm = newHost(t, []force.Node{{Pos: math32.Vec3(100, 0, 0)}}, nil, force.DefaultConfig())
	sm.TickN(30)
	assert.Less(t, readNodes(t, sm)[0].Pos.X, float32(100))
}

func TestHostRelease(t *testing.T) {
	hb := NewHostBackend(2)
	assert.Equal(t, "host(2)", hb.Name())
	hb.Release()
	hb.Release()
	assert.ErrorIs(t, hb.WriteParams(&Params{}), ErrReleased)
	assert.ErrorIs(t, hb.ReadNodes(nil), ErrReleased)
}

func TestHostError(t *testing.T) {
	hb := NewHostBackend(1)
	defer hb.Release()
	require.NoError(t, hb.Configure(NewLayout(make([]GPUNode, 2), nil)))
	require.NoError(t, hb.WriteNodes(make([]GPUNode, 3)))
	err := hb.ReadNodes(make([]GPUNode, 2))
	assert.Error(t, err)
	assert.Equal(t, err, hb.Err())
	assert.Error(t, hb.Submit(nil))
}

// failBackend fails every submission.
type failBackend struct {
	*HostBackend
}

func (fb *failBackend) Submit([]Dispatch) error { return errors.New("submit failed") }

func TestSimulationError(t *testing.T) {
	sm, err := NewSimulation(&failBackend{NewHostBackend(1)}, pair(0, 0, 10, 0), nil, force.DefaultConfig())
	require.NoError(t, err)
	defer sm.Release()
	assert.Equal(t, 1, sm.TickN(10))
	assert.Error(t, sm.Err())
	assert.Equal(t, 0, sm.Ticks())
	_, err = sm.ReadNodes()
	assert.Error(t, err)

	bad := force.DefaultConfig()
	bad.Dims = 1
	hb := NewHostBackend(1)
	_, err = NewSimulation(hb, nil, nil, bad)
	assert.Error(t, err)
	assert.ErrorIs(t, hb.WriteParams(&Params{}), ErrReleased)
}

func TestGPUMatchesHost(t *testing.T) {
	gb, err := NewGPUBackend()
	if err != nil {
		t.Skip("Need software GPU on CI")
	}
	nodes, edges := grid(300)
	nodes[5].Pin(force.AxisX, math32.Vec3(-50, 0, 0))
	gs, err := NewSimulation(gb, nodes, edges, force.DefaultConfig())
	require.NoError(t, err)
	defer gs.Release()
	hs := newHost(t, nodes, edges, force.DefaultConfig())
	gs.TickN(30)
	hs.TickN(30)
	gn := readNodes(t, gs)
	hn := readNodes(t, hs)
	for i := range gn {
		assert.Less(t, gn[i].Pos.DistanceTo(hn[i].Pos), float32(0.1), "node %d", i)
	}
	assert.Equal(t, float32(-50), gn[5].Pos.X)
}
