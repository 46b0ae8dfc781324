// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpu is a thin layer over WebGPU for headless compute
// and offscreen rendering: a GPU adapter and logical Device,
// buffer Values with readback, compute pipelines sharing one
// bind group, and render target textures.
package gpu

import (
	"fmt"
	"log/slog"
	"sync"

	"cogentcore.org/forcegraph/base/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// Debug is whether to enable debug mode, getting
// more diagnostic output about GPU configuration.
var Debug = false

var (
	theInstance     *wgpu.Instance
	theInstanceOnce sync.Once
)

// Instance returns the process-wide WebGPU instance.
func Instance() *wgpu.Instance {
	theInstanceOnce.Do(func() {
		theInstance = wgpu.CreateInstance(nil)
	})
	return theInstance
}

// GPU represents the GPU hardware, as an adapter.
type GPU struct {
	// GPU is the WebGPU adapter.
	GPU *wgpu.Adapter

	// Limits are the supported limits of the adapter,
	// used to request the Device.
	Limits wgpu.SupportedLimits

	// ComputeOnly is true if this GPU is only used for compute,
	// which prefers low power adapters.
	ComputeOnly bool

	// MaxComputeWorkGroupCount1D is the maximum number of work
	// groups in one dispatch dimension.
	MaxComputeWorkGroupCount1D int
}

// NewGPU returns a new GPU for rendering, preferring
// a high performance adapter.
func NewGPU() (*GPU, error) {
	gp := &GPU{}
	return gp, gp.init()
}

// NewComputeGPU returns a new GPU for compute only.
func NewComputeGPU() (*GPU, error) {
	gp := &GPU{ComputeOnly: true}
	return gp, gp.init()
}

func (gp *GPU) init() error {
	pref := wgpu.PowerPreferenceHighPerformance
	if gp.ComputeOnly {
		pref = wgpu.PowerPreferenceLowPower
	}
	ad, err := Instance().RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: pref,
	})
	if err != nil {
		return fmt.Errorf("gpu.GPU: could not get an adapter: %w", err)
	}
	if ad == nil {
		return errors.New("gpu.GPU: no adapter available")
	}
	gp.GPU = ad
	gp.Limits = ad.GetLimits()
	gp.MaxComputeWorkGroupCount1D = int(gp.Limits.Limits.MaxComputeWorkgroupsPerDimension)
	if Debug {
		slog.Info("gpu.GPU", "maxWorkgroups", gp.MaxComputeWorkGroupCount1D, "maxStorageBuffer", gp.Limits.Limits.MaxStorageBufferBindingSize)
	}
	return nil
}

// Release releases the adapter.
func (gp *GPU) Release() {
	if gp.GPU == nil {
		return
	}
	gp.GPU.Release()
	gp.GPU = nil
}

// NoDisplayGPU returns a compute GPU and a new Device on it,
// for use without any display surface, for example in tests
// and command line tools.
func NoDisplayGPU() (*GPU, *Device, error) {
	gp, err := NewComputeGPU()
	if err != nil {
		return nil, nil, err
	}
	dev, err := NewDevice(gp)
	if err != nil {
		gp.Release()
		return nil, nil, err
	}
	return gp, dev, nil
}
