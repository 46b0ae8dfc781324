// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"math"

	"cogentcore.org/forcegraph/base/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// ComputeSystem manages a system of ComputePipelines, one per entry
// point of a single shader, that all share a common set of Vars.
type ComputeSystem struct {
	// optional name of this ComputeSystem
	Name string

	// Vars has the variables bound in group 0 of every pipeline.
	Vars Vars

	// Shader is the shader with the entry points of all pipelines.
	Shader *Shader

	// ComputePipelines by entry point name
	ComputePipelines map[string]*ComputePipeline

	// CommandEncoder is the command encoder created in
	// [BeginComputePass], and released in [EndComputePass].
	CommandEncoder *wgpu.CommandEncoder

	// layout is the pipeline layout shared by all pipelines.
	layout *wgpu.PipelineLayout

	// logical device for this ComputeSystem, which we do NOT own.
	device *Device
}

// NewComputeSystem returns a new ComputeSystem on the given device.
func NewComputeSystem(dev *Device, name string) *ComputeSystem {
	sy := &ComputeSystem{Name: name, device: dev}
	sy.Vars.Stages = wgpu.ShaderStageCompute
	sy.Shader = NewShader(name)
	sy.ComputePipelines = make(map[string]*ComputePipeline)
	return sy
}

func (sy *ComputeSystem) Device() *Device { return sy.device }

// WaitDone waits until device is done with current processing steps
func (sy *ComputeSystem) WaitDone() {
	sy.device.WaitDone()
}

// AddComputePipeline adds a new ComputePipeline to the system
// for the shader entry point of the given name.
func (sy *ComputeSystem) AddComputePipeline(entry string) *ComputePipeline {
	pl := &ComputePipeline{Name: entry, System: sy}
	sy.ComputePipelines[entry] = pl
	return pl
}

// Config compiles the given shader code and configures all of the
// pipelines, after they and the Vars have been added.
// This should not need to be called more than once.
func (sy *ComputeSystem) Config(code string) error {
	if err := sy.Shader.OpenCode(sy.device, code); err != nil {
		return err
	}
	bgl, err := sy.Vars.BindLayout(sy.device)
	if err != nil {
		return err
	}
	pll, err := sy.device.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            sy.Name,
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if errors.Log(err) != nil {
		return err
	}
	sy.layout = pll
	for _, pl := range sy.ComputePipelines {
		if err := pl.config(); err != nil {
			return err
		}
	}
	return nil
}

// NewCommandEncoder returns a new CommandEncoder for encoding
// compute commands.  This is automatically called by
// BeginComputePass and the result maintained in [CommandEncoder].
func (sy *ComputeSystem) NewCommandEncoder() (*wgpu.CommandEncoder, error) {
	cmd, err := sy.device.Device.CreateCommandEncoder(nil)
	if errors.Log(err) != nil {
		return nil, err
	}
	return cmd, nil
}

// BeginComputePass adds commands to the given command buffer
// to start the compute pass, returning the encoder object
// to which further compute commands should be added.
// Call [EndComputePass] when done.
func (sy *ComputeSystem) BeginComputePass() (*wgpu.ComputePassEncoder, error) {
	cmd, err := sy.NewCommandEncoder()
	if errors.Log(err) != nil {
		return nil, err
	}
	sy.CommandEncoder = cmd
	return cmd.BeginComputePass(nil), nil // note: optional name in the descriptor
}

// EndComputePass submits the current compute commands to the device
// Queue and releases the [CommandEncoder] and the given
// ComputePassEncoder.  You must call ce.End prior to calling this.
// Can insert other commands after ce.End, e.g., to copy data back
// from the GPU, prior to calling EndComputePass.
func (sy *ComputeSystem) EndComputePass(ce *wgpu.ComputePassEncoder) error {
	cmd := sy.CommandEncoder
	sy.CommandEncoder = nil
	cmdBuffer, err := cmd.Finish(nil)
	if errors.Log(err) != nil {
		return err
	}
	sy.device.Queue.Submit(cmdBuffer)
	cmdBuffer.Release()
	ce.Release()
	cmd.Release()
	sy.Vars.ReleaseOldBindGroups()
	return nil
}

// ReadFromGPU copies the given Storage values to their read buffers,
// in a new command submitted after all prior ones, and waits until
// they can be read with [ReadValueTo].
func (sy *ComputeSystem) ReadFromGPU(values ...*Value) error {
	cmd, err := sy.NewCommandEncoder()
	if err != nil {
		return err
	}
	defer cmd.Release()
	for _, vl := range values {
		if err := vl.GPUToRead(cmd); err != nil {
			return err
		}
	}
	cmdBuffer, err := cmd.Finish(nil)
	if errors.Log(err) != nil {
		return err
	}
	sy.device.Queue.Submit(cmdBuffer)
	cmdBuffer.Release()
	return ValueReadSync(sy.device, values...)
}

// Release releases the pipelines, shader and Vars,
// including all of the Values.
func (sy *ComputeSystem) Release() {
	sy.WaitDone()
	for _, pl := range sy.ComputePipelines {
		pl.Release()
	}
	sy.ComputePipelines = nil
	if sy.layout != nil {
		sy.layout.Release()
		sy.layout = nil
	}
	sy.Shader.Release()
	sy.Vars.Release()
}

// ComputePipeline is one compute shader entry point.
type ComputePipeline struct {
	// Name is the entry point in the shader.
	Name string

	// System that we belong to.
	System *ComputeSystem

	computePipeline *wgpu.ComputePipeline
}

func (pl *ComputePipeline) config() error {
	sy := pl.System
	cp, err := sy.device.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  pl.Name,
		Layout: sy.layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     sy.Shader.Module(),
			EntryPoint: pl.Name,
		},
	})
	if err != nil {
		return fmt.Errorf("gpu.ComputePipeline %s: %w", pl.Name, err)
	}
	pl.computePipeline = cp
	return nil
}

// Dispatch adds commands to the given compute encoder to run
// the pipeline with the given number of work groups per dimension.
func (pl *ComputePipeline) Dispatch(ce *wgpu.ComputePassEncoder, nx, ny, nz int) error {
	bg, err := pl.System.Vars.BindGroup(pl.System.device)
	if err != nil {
		return err
	}
	ce.SetPipeline(pl.computePipeline)
	ce.SetBindGroup(0, bg, nil)
	ce.DispatchWorkgroups(uint32(nx), uint32(ny), uint32(nz))
	return nil
}

// Dispatch1D adds commands to the given compute encoder to run
// the pipeline over n elements, with the given number of threads
// per work group, as declared in the shader @workgroup_size.
func (pl *ComputePipeline) Dispatch1D(ce *wgpu.ComputePassEncoder, n, threads int) error {
	return pl.Dispatch(ce, Warps(n, threads), 1, 1)
}

// Release releases the pipeline.
func (pl *ComputePipeline) Release() {
	if pl.computePipeline != nil {
		pl.computePipeline.Release()
		pl.computePipeline = nil
	}
}

// Warps returns the number of warps (work goups of compute threads)
// that is sufficient to compute n elements, given specified number
// of threads per this dimension.
// It just rounds up to nearest even multiple of n divided by threads:
// Ceil(n / threads)
func Warps(n, threads int) int {
	return int(math.Ceil(float64(n) / float64(threads)))
}
