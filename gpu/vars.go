// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"cogentcore.org/forcegraph/base/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// Var is one binding in a bind group, indicated by @binding in
// the WGSL shader. Each Var has one Value.
type Var struct {
	// Name of the variable, matching the shader variable for clarity.
	Name string

	// Role of the variable, which must be Uniform or Storage.
	Role VarRoles

	// Binding number, assigned sequentially in Add.
	Binding int

	// Value is the buffer bound to this variable.
	Value *Value
}

// Vars are the ordered variables of bind group 0, shared by all
// of the pipelines of a system.
type Vars struct {
	// List of variables, indexed by Binding.
	List []*Var

	// Stages are the shader stages the variables are visible in.
	Stages wgpu.ShaderStage

	layout    *wgpu.BindGroupLayout
	bindGroup *wgpu.BindGroup

	// bindUpdates is the value update count when bindGroup was made.
	bindUpdates int

	// oldBindGroups are prior bind groups that need to be released
	// after the current pass has been submitted.
	oldBindGroups []*wgpu.BindGroup
}

// Add adds a new variable with the next binding number.
func (vs *Vars) Add(name string, role VarRoles) *Var {
	vr := &Var{Name: name, Role: role, Binding: len(vs.List)}
	vs.List = append(vs.List, vr)
	return vr
}

// VarByName returns the variable with the given name, or an error.
func (vs *Vars) VarByName(name string) (*Var, error) {
	for _, vr := range vs.List {
		if vr.Name == name {
			return vr, nil
		}
	}
	return nil, fmt.Errorf("gpu.Vars VarByName: variable named %q not found", name)
}

// SetValue sets the Value of the variable with the given name.
func (vs *Vars) SetValue(name string, vl *Value) error {
	vr, err := vs.VarByName(name)
	if errors.Log(err) != nil {
		return err
	}
	vr.Value = vl
	vs.bindUpdates = -1
	return nil
}

// BindLayout returns the bind group layout for the variables,
// creating it on first use.
func (vs *Vars) BindLayout(dev *Device) (*wgpu.BindGroupLayout, error) {
	if vs.layout != nil {
		return vs.layout, nil
	}
	entries := make([]wgpu.BindGroupLayoutEntry, len(vs.List))
	for i, vr := range vs.List {
		if !vr.Role.IsBindable() {
			return nil, fmt.Errorf("gpu.Vars BindLayout: variable %q has role %s, which cannot be bound", vr.Name, vr.Role)
		}
		entries[i] = wgpu.BindGroupLayoutEntry{
			Binding:    uint32(vr.Binding),
			Visibility: vs.Stages,
			Buffer: wgpu.BufferBindingLayout{
				Type:             vr.Role.BindingType(),
				HasDynamicOffset: false,
				MinBindingSize:   0,
			},
		}
	}
	bgl, err := dev.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Entries: entries,
	})
	if errors.Log(err) != nil {
		return nil, err
	}
	vs.layout = bgl
	return bgl, nil
}

func (vs *Vars) valueUpdates() int {
	n := 0
	for _, vr := range vs.List {
		if vr.Value != nil {
			n += vr.Value.updates
		}
	}
	return n
}

// BindGroup returns a bind group with the current Values, making a
// new one if any Value has been set or has re-created its buffer.
func (vs *Vars) BindGroup(dev *Device) (*wgpu.BindGroup, error) {
	upd := vs.valueUpdates()
	if vs.bindGroup != nil && vs.bindUpdates == upd {
		return vs.bindGroup, nil
	}
	bgl, err := vs.BindLayout(dev)
	if err != nil {
		return nil, err
	}
	entries := make([]wgpu.BindGroupEntry, len(vs.List))
	for i, vr := range vs.List {
		if vr.Value == nil {
			return nil, fmt.Errorf("gpu.Vars BindGroup: variable %q has no value", vr.Name)
		}
		if err := vr.Value.NilBufferCheck(); err != nil {
			return nil, err
		}
		entries[i] = wgpu.BindGroupEntry{
			Binding: uint32(vr.Binding),
			Buffer:  vr.Value.buffer,
			Offset:  0,
			Size:    uint64(vr.Value.AllocSize),
		}
	}
	bg, err := dev.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  bgl,
		Entries: entries,
	})
	if errors.Log(err) != nil {
		return nil, err
	}
	if vs.bindGroup != nil {
		vs.oldBindGroups = append(vs.oldBindGroups, vs.bindGroup)
	}
	vs.bindGroup = bg
	vs.bindUpdates = upd
	return bg, nil
}

// ReleaseOldBindGroups releases bind groups replaced since the last call.
func (vs *Vars) ReleaseOldBindGroups() {
	for _, bg := range vs.oldBindGroups {
		bg.Release()
	}
	vs.oldBindGroups = nil
}

// Release releases the bind group and layout, and all of the Values.
func (vs *Vars) Release() {
	vs.ReleaseOldBindGroups()
	if vs.bindGroup != nil {
		vs.bindGroup.Release()
		vs.bindGroup = nil
	}
	if vs.layout != nil {
		vs.layout.Release()
		vs.layout = nil
	}
	for _, vr := range vs.List {
		if vr.Value != nil {
			vr.Value.Release()
		}
	}
}
