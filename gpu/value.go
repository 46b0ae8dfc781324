// Copyright (c) 2022, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"cogentcore.org/forcegraph/base/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// Value is a WebGPU Buffer with a given role, plus an optional
// read buffer used to copy Storage data back to the host.
type Value struct {
	// Name of this value, for debugging.
	Name string

	// AllocSize is the total memory size of this value in bytes,
	// as allocated in the buffer.
	AllocSize int

	role VarRoles

	device Device

	// buffer for this value, makes it accessible to the GPU.
	buffer *wgpu.Buffer

	// readBuffer is the host-mappable copy of buffer.
	readBuffer *wgpu.Buffer

	// readSize is the size of readBuffer.
	readSize int

	// updates counts buffer re-creations, so bind groups
	// using the value know to update.
	updates int
}

// NewValue returns a new Value with the given name and role on the device.
// The buffer is created by the first CreateBuffer or SetFromBytes call.
func NewValue(dev *Device, name string, role VarRoles) *Value {
	return &Value{Name: name, role: role, device: *dev}
}

// Role returns the role of the value.
func (vl *Value) Role() VarRoles { return vl.role }

// Buffer returns the WebGPU buffer, which is nil until created.
func (vl *Value) Buffer() *wgpu.Buffer { return vl.buffer }

// MemSizeAlign returns the size aligned according to align byte increments
// e.g., if align = 16 and size = 12, it returns 16
func MemSizeAlign(size, align int) int {
	if size%align == 0 {
		return size
	}
	nb := size / align
	return (nb + 1) * align
}

// CreateBuffer creates a zeroed GPU buffer of the given size in bytes,
// rounded up to a multiple of 16 and at least 16, if it does not
// yet exist or is a different size.
func (vl *Value) CreateBuffer(size int) error {
	sz := MemSizeAlign(max(size, 1), 16)
	if vl.buffer != nil && vl.AllocSize == sz {
		return nil
	}
	vl.Release()
	buf, err := vl.device.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Size:             uint64(sz),
		Label:            vl.Name,
		Usage:            vl.role.BufferUsages(),
		MappedAtCreation: false,
	})
	if errors.Log(err) != nil {
		return err
	}
	vl.buffer = buf
	vl.AllocSize = sz
	vl.updates++
	return nil
}

// NilBufferCheck checks if buffer is nil, returning error if so
func (vl *Value) NilBufferCheck() error {
	if vl.buffer == nil {
		return fmt.Errorf("gpu.Value NilBufferCheck: buffer is nil for value: %s", vl.Name)
	}
	return nil
}

// SetValueFrom copies given values into value buffer memory,
// making the buffer if it has not yet been constructed.
func SetValueFrom[E any](vl *Value, from []E) error {
	return vl.SetFromBytes(wgpu.ToBytes(from))
}

// SetFromBytes copies given bytes into value buffer memory.
// If the buffer has not been created, it is created to fit.
// Otherwise the bytes must fit within the existing buffer,
// and are written at offset 0.
func (vl *Value) SetFromBytes(from []byte) error {
	nb := len(from)
	if vl.buffer == nil {
		if err := vl.CreateBuffer(nb); err != nil {
			return err
		}
	}
	if nb > vl.AllocSize {
		err := fmt.Errorf("gpu.Value SetFromBytes %s, Size passed: %d > Size allocated %d", vl.Name, nb, vl.AllocSize)
		return errors.Log(err)
	}
	if nb == 0 {
		return nil
	}
	err := vl.device.Queue.WriteBuffer(vl.buffer, 0, from)
	if errors.Log(err) != nil {
		return err
	}
	return nil
}

// GPUToRead records a command to copy the buffer to the read buffer
// that can be mapped on the host, creating the read buffer as needed.
// Next step is [ValueReadSync] after the command has been submitted.
func (vl *Value) GPUToRead(cmd *wgpu.CommandEncoder) error {
	if err := vl.NilBufferCheck(); errors.Log(err) != nil {
		return err
	}
	if vl.readBuffer == nil || vl.readSize != vl.AllocSize {
		vl.releaseRead()
		buf, err := vl.device.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Size:             uint64(vl.AllocSize),
			Label:            vl.Name + " read",
			Usage:            wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if errors.Log(err) != nil {
			return err
		}
		vl.readBuffer = buf
		vl.readSize = vl.AllocSize
	}
	return cmd.CopyBufferToBuffer(vl.buffer, 0, vl.readBuffer, 0, uint64(vl.AllocSize))
}

// ReadToBytes copies the mapped read buffer into dest, which must
// not be larger than AllocSize, and unmaps the read buffer.
// It must be called after [ValueReadSync] succeeds.
func (vl *Value) ReadToBytes(dest []byte) error {
	if vl.readBuffer == nil {
		return fmt.Errorf("gpu.Value ReadToBytes %s: no read buffer; call GPUToRead first", vl.Name)
	}
	if len(dest) > vl.AllocSize {
		return fmt.Errorf("gpu.Value ReadToBytes %s: dest size %d > Size allocated %d", vl.Name, len(dest), vl.AllocSize)
	}
	bm := vl.readBuffer.GetMappedRange(0, uint(vl.AllocSize))
	copy(dest, bm)
	return vl.readBuffer.Unmap()
}

// ReadValueTo copies the mapped read buffer into the given slice;
// see [Value.ReadToBytes].
func ReadValueTo[E any](vl *Value, dest []E) error {
	return vl.ReadToBytes(wgpu.ToBytes(dest))
}

func (vl *Value) releaseRead() {
	if vl.readBuffer != nil {
		vl.readBuffer.Release()
		vl.readBuffer = nil
		vl.readSize = 0
	}
}

// Release releases the buffers for this value
func (vl *Value) Release() {
	if vl.buffer != nil {
		vl.buffer.Release()
		vl.buffer = nil
	}
	vl.releaseRead()
	vl.AllocSize = 0
}
