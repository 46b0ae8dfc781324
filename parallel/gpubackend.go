// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parallel

import (
	"embed"
	"fmt"
	"sync"

	"cogentcore.org/forcegraph/base/errors"
	"cogentcore.org/forcegraph/gpu"
)

//go:embed shaders/*.wgsl
var shaders embed.FS

// ShaderCode returns the compute shader source with includes resolved.
func ShaderCode() (string, error) {
	b, err := shaders.ReadFile("shaders/forces.wgsl")
	if err != nil {
		return "", err
	}
	return gpu.IncludeFS(shaders, "shaders", string(b)), nil
}

// GPUBackend runs the kernels as WebGPU compute shaders.
// All methods are serialized, and the queue of the device keeps
// submissions in order.
type GPUBackend struct {
	// GPU is the adapter, owned if made by [NewGPUBackend].
	GPU *gpu.GPU

	// Device is the logical device, owned if made by [NewGPUBackend].
	Device *gpu.Device

	// System has the pipelines and variables once configured.
	System *gpu.ComputeSystem

	own      bool
	mu       sync.Mutex
	released bool
	nodes    int
	edges    int

	params, nodeValue, edgeValue, forces, offsets, entries *gpu.Value
}

// NewGPUBackend returns a backend on a new compute device without
// any display. It returns an error if no adapter is available.
func NewGPUBackend() (*GPUBackend, error) {
	gp, dev, err := gpu.NoDisplayGPU()
	if err != nil {
		return nil, err
	}
	gb := NewGPUBackendOn(gp, dev)
	gb.own = true
	return gb, nil
}

// NewGPUBackendOn returns a backend on the given device, which
// is not released by the backend.
func NewGPUBackendOn(gp *gpu.GPU, dev *gpu.Device) *GPUBackend {
	return &GPUBackend{GPU: gp, Device: dev}
}

func (gb *GPUBackend) Name() string { return "gpu" }

// atLeastOne returns s, or a single zero element if s is empty,
// because bound buffers cannot be empty.
func atLeastOne[E any](s []E) []E {
	if len(s) == 0 {
		return make([]E, 1)
	}
	return s
}

func (gb *GPUBackend) Configure(layout *Layout) error {
	gb.mu.Lock()
	defer gb.mu.Unlock()
	if gb.released {
		return ErrReleased
	}
	if gb.System != nil {
		gb.System.Release()
	}
	code, err := ShaderCode()
	if err != nil {
		return fmt.Errorf("parallel.GPUBackend Configure: %w", err)
	}
	gb.nodes = len(layout.Nodes)
	gb.edges = len(layout.Edges)
	sy := gpu.NewComputeSystem(gb.Device, "forces")
	vs := &sy.Vars
	vars := []struct {
		name  string
		role  gpu.VarRoles
		value **gpu.Value
	}{
		{"params", gpu.Uniform, &gb.params},
		{"nodes", gpu.Storage, &gb.nodeValue},
		{"edges", gpu.Storage, &gb.edgeValue},
		{"edge_forces", gpu.Storage, &gb.forces},
		{"adj_offsets", gpu.Storage, &gb.offsets},
		{"adj_entries", gpu.Storage, &gb.entries},
	}
	for _, v := range vars {
		vr := vs.Add(v.name, v.role)
		*v.value = gpu.NewValue(gb.Device, v.name, v.role)
		vr.Value = *v.value
	}
	adj := layout.Adjacency
	if adj == nil {
		adj = NewAdjacency(len(layout.Nodes), layout.Edges)
	}
	pr := Params{}
	errs := []error{
		gpu.SetValueFrom(gb.params, []Params{pr}),
		gpu.SetValueFrom(gb.nodeValue, atLeastOne(layout.Nodes)),
		gpu.SetValueFrom(gb.edgeValue, atLeastOne(layout.Edges)),
		gpu.SetValueFrom(gb.forces, make([][4]float32, max(len(layout.Edges), 1))),
		gpu.SetValueFrom(gb.offsets, atLeastOne(adj.Offsets)),
		gpu.SetValueFrom(gb.entries, atLeastOne(adj.Entries)),
	}
	if err := errors.Join(errs...); err != nil {
		sy.Release()
		return err
	}
	for k := range KernelsN {
		sy.AddComputePipeline(k.String())
	}
	if err := sy.Config(code); err != nil {
		sy.Release()
		return err
	}
	gb.System = sy
	return nil
}

// check returns an error if the backend cannot be used.
func (gb *GPUBackend) check() error {
	if gb.released {
		return ErrReleased
	}
	if gb.System == nil {
		return errors.New("parallel.GPUBackend: not configured")
	}
	return nil
}

func (gb *GPUBackend) WriteParams(params *Params) error {
	gb.mu.Lock()
	defer gb.mu.Unlock()
	if err := gb.check(); err != nil {
		return err
	}
	return gpu.SetValueFrom(gb.params, []Params{*params})
}

func (gb *GPUBackend) WriteNodes(nodes []GPUNode) error {
	gb.mu.Lock()
	defer gb.mu.Unlock()
	if err := gb.check(); err != nil {
		return err
	}
	if len(nodes) != gb.nodes {
		return fmt.Errorf("parallel.GPUBackend WriteNodes: %d nodes, configured for %d", len(nodes), gb.nodes)
	}
	if len(nodes) == 0 {
		return nil
	}
	return gpu.SetValueFrom(gb.nodeValue, nodes)
}

// Submit records all dispatches in a single compute pass.
func (gb *GPUBackend) Submit(dispatches []Dispatch) error {
	gb.mu.Lock()
	defer gb.mu.Unlock()
	if err := gb.check(); err != nil {
		return err
	}
	if len(dispatches) == 0 {
		return nil
	}
	sy := gb.System
	ce, err := sy.BeginComputePass()
	if err != nil {
		return err
	}
	for _, d := range dispatches {
		if d.Workgroups <= 0 {
			continue
		}
		pl := sy.ComputePipelines[d.Kernel.String()]
		if pl == nil {
			err = fmt.Errorf("parallel.GPUBackend Submit: no pipeline for kernel %s", d.Kernel)
			break
		}
		if err = pl.Dispatch(ce, d.Workgroups, 1, 1); err != nil {
			break
		}
	}
	if eerr := ce.End(); eerr != nil && err == nil {
		err = eerr
	}
	if serr := sy.EndComputePass(ce); serr != nil && err == nil {
		err = serr
	}
	return err
}

func (gb *GPUBackend) ReadNodes(dst []GPUNode) error {
	gb.mu.Lock()
	defer gb.mu.Unlock()
	if err := gb.check(); err != nil {
		return err
	}
	if len(dst) != gb.nodes {
		return fmt.Errorf("parallel.GPUBackend ReadNodes: %d nodes, configured for %d", len(dst), gb.nodes)
	}
	if len(dst) == 0 {
		return nil
	}
	if err := gb.System.ReadFromGPU(gb.nodeValue); err != nil {
		return err
	}
	return gpu.ReadValueTo(gb.nodeValue, dst)
}

func (gb *GPUBackend) Release() {
	gb.mu.Lock()
	defer gb.mu.Unlock()
	if gb.released {
		return
	}
	gb.released = true
	if gb.System != nil {
		gb.System.Release()
		gb.System = nil
	}
	if gb.own {
		gb.Device.Release()
		gb.GPU.Release()
	}
}
