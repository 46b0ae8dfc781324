// Copyright (c) 2022, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"image"

	"cogentcore.org/forcegraph/base/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// RenderTexture is an offscreen, non-window-backed rendering target,
// with an optional depth buffer, whose rendered pixels can be
// read back to the host.
type RenderTexture struct {
	// Format has the current image format and dimensions.
	Format TextureFormat

	// Frame is the color texture rendered into.
	Frame *Texture

	// Depth is the depth texture, nil if there is none.
	Depth *Texture

	// DepthFormat is the format of the depth buffer.
	DepthFormat wgpu.TextureFormat

	// readDims has the padded row sizes for readBuffer.
	readDims TextureBufferDims

	// readBuffer receives the copy of Frame.
	readBuffer *wgpu.Buffer

	// device, which we do NOT own.
	device Device
}

// NewRenderTexture returns a new standalone texture render
// target for the given device, of the given size.
// If depth is true a [Depth32] depth buffer is made too.
func NewRenderTexture(dev *Device, size image.Point, depth bool) (*RenderTexture, error) {
	rt := &RenderTexture{device: *dev}
	rt.Format.Defaults()
	rt.Format.Size = size
	if depth {
		rt.DepthFormat = Depth32
	}
	return rt, rt.ConfigFrames()
}

func (rt *RenderTexture) Device() *Device { return &rt.device }

// View returns the view to render color into.
func (rt *RenderTexture) View() *wgpu.TextureView { return rt.Frame.View() }

// DepthView returns the depth view, or nil if there is no depth buffer.
func (rt *RenderTexture) DepthView() *wgpu.TextureView {
	if rt.Depth == nil {
		return nil
	}
	return rt.Depth.View()
}

// ConfigFrames configures the textures and read buffer, releasing
// any existing ones, so it is safe for re-use.
func (rt *RenderTexture) ConfigFrames() error {
	rt.releaseFrames()
	if rt.Format.Size.X <= 0 || rt.Format.Size.Y <= 0 {
		return fmt.Errorf("gpu.RenderTexture: invalid size %v", rt.Format.Size)
	}
	rt.Frame = NewTexture(&rt.device)
	rt.Frame.Name = "render frame"
	if err := rt.Frame.ConfigRenderTexture(&rt.device, &rt.Format); err != nil {
		return err
	}
	if rt.DepthFormat != wgpu.TextureFormatUndefined {
		rt.Depth = NewTexture(&rt.device)
		rt.Depth.Name = "render depth"
		if err := rt.Depth.ConfigDepth(&rt.device, rt.DepthFormat, &rt.Format); err != nil {
			return err
		}
	}
	rt.readDims.Set(rt.Format.Size)
	buf, err := rt.device.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "render read",
		Size:             rt.readDims.PaddedSize(),
		Usage:            wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if errors.Log(err) != nil {
		return err
	}
	rt.readBuffer = buf
	return nil
}

// SetSize sets the size for the render frame,
// doesn't do anything if already that size.
func (rt *RenderTexture) SetSize(size image.Point) error {
	if rt.Format.Size == size {
		return nil
	}
	rt.Format.Size = size
	return rt.ConfigFrames()
}

// GrabTexture records a command to copy the rendered frame
// into the read buffer, for [RenderTexture.ReadPixels] after
// the command has been submitted.
func (rt *RenderTexture) GrabTexture(cmd *wgpu.CommandEncoder) error {
	size := rt.Format.Extent3D()
	return cmd.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  rt.Frame.Texture(),
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: rt.readBuffer,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(rt.readDims.PaddedRowSize),
				RowsPerImage: uint32(rt.readDims.Height),
			},
		},
		&size,
	)
}

// ReadPixels maps the read buffer filled by GrabTexture and returns
// the RGBA pixels, row major from the top, with row padding removed.
func (rt *RenderTexture) ReadPixels() ([]byte, error) {
	err := BufferReadSync(&rt.device, int(rt.readDims.PaddedSize()), rt.readBuffer)
	if err != nil {
		return nil, err
	}
	padded := rt.readBuffer.GetMappedRange(0, uint(rt.readDims.PaddedSize()))
	pix := make([]byte, rt.readDims.UnpaddedSize())
	rt.readDims.Unpad(pix, padded)
	if err := rt.readBuffer.Unmap(); err != nil {
		return nil, err
	}
	return pix, nil
}

func (rt *RenderTexture) releaseFrames() {
	if rt.Frame != nil {
		rt.Frame.Release()
		rt.Frame = nil
	}
	if rt.Depth != nil {
		rt.Depth.Release()
		rt.Depth = nil
	}
	if rt.readBuffer != nil {
		rt.readBuffer.Release()
		rt.readBuffer = nil
	}
}

func (rt *RenderTexture) Release() {
	rt.releaseFrames()
}
