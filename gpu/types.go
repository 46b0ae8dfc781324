// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// VarRoles are the roles a buffer Value plays in the shaders.
type VarRoles int32

const (
	UndefVarRole VarRoles = iota

	// Vertex is vertex shader input data, including
	// per-instance data.
	Vertex

	// Index is vertex index data.
	Index

	// Uniform is read-only, small, general constant data.
	Uniform

	// Storage is read-write general purpose data,
	// which can be copied back to the host.
	Storage

	VarRolesN
)

var varRoleNames = [VarRolesN]string{"UndefVarRole", "Vertex", "Index", "Uniform", "Storage"}

func (vr VarRoles) String() string {
	if vr < 0 || vr >= VarRolesN {
		return "UndefVarRole"
	}
	return varRoleNames[vr]
}

// BufferUsages returns the WebGPU buffer usages of the role.
func (vr VarRoles) BufferUsages() wgpu.BufferUsage {
	switch vr {
	case Vertex:
		return wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	case Index:
		return wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	case Uniform:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	case Storage:
		return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc
	}
	return 0
}

// BindingType returns the buffer binding type for a bind group
// layout entry, for the roles that can be bound.
// All Storage values are bound read-write.
func (vr VarRoles) BindingType() wgpu.BufferBindingType {
	if vr == Uniform {
		return wgpu.BufferBindingTypeUniform
	}
	return wgpu.BufferBindingTypeStorage
}

// IsBindable returns true if values of the role are bound
// in a bind group, rather than set as vertex or index buffers.
func (vr VarRoles) IsBindable() bool {
	return vr == Uniform || vr == Storage
}

// Depth32 is the standard float32 depth buffer format.
const Depth32 = wgpu.TextureFormatDepth32Float
