// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Device holds a logical WebGPU device and its queue.
type Device struct {
	// Device is the logical device.
	Device *wgpu.Device

	// Queue is the queue for the device.
	Queue *wgpu.Queue
}

// NewDevice returns a new device for the given GPU,
// requesting the full supported limits of the adapter.
func NewDevice(gp *GPU) (*Device, error) {
	wdev, err := gp.GPU.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "forcegraph",
		RequiredLimits: &wgpu.RequiredLimits{Limits: gp.Limits.Limits},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu.NewDevice: %w", err)
	}
	return &Device{Device: wdev, Queue: wdev.GetQueue()}, nil
}

// WaitDone waits until the device is idle, which also
// runs any pending map callbacks.
func (dv *Device) WaitDone() {
	if dv.Device == nil {
		return
	}
	dv.Device.Poll(true, nil)
}

// Release releases the queue and device.
func (dv *Device) Release() {
	if dv.Device == nil {
		return
	}
	dv.Queue.Release()
	dv.Queue = nil
	dv.Device.Release()
	dv.Device = nil
}
