// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"cogentcore.org/forcegraph/base/errors"
	"cogentcore.org/forcegraph/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// GraphicsSystem manages a set of GraphicsPipelines that render into
// one [RenderTexture], sharing a single shader and the Vars of
// bind group 0. Vertex data is supplied per pipeline, as [Value]s
// with the Vertex and Index roles.
type GraphicsSystem struct {
	// optional name of this GraphicsSystem
	Name string

	// Vars has the variables bound in group 0 of every pipeline.
	Vars Vars

	// Shader has the vertex and fragment entry points of all pipelines.
	Shader *Shader

	// GraphicsPipelines in the order they are added.
	GraphicsPipelines []*GraphicsPipeline

	// Render is the target rendered into, which we do NOT own.
	Render *RenderTexture

	// ClearColor is the linear color the frame is cleared to.
	ClearColor math32.Vector4

	// CommandEncoder is the command encoder created in
	// [BeginRenderPass], and released in [EndRenderPass].
	CommandEncoder *wgpu.CommandEncoder

	layout *wgpu.PipelineLayout

	// logical device for this GraphicsSystem, which we do NOT own.
	device *Device
}

// NewGraphicsSystem returns a new GraphicsSystem rendering into
// the given render texture.
func NewGraphicsSystem(dev *Device, name string, rt *RenderTexture) *GraphicsSystem {
	sy := &GraphicsSystem{Name: name, device: dev, Render: rt}
	sy.Vars.Stages = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	sy.Shader = NewShader(name)
	sy.ClearColor = math32.Vec4(0, 0, 0, 1)
	return sy
}

func (sy *GraphicsSystem) Device() *Device { return sy.device }

// AddGraphicsPipeline adds a new pipeline with the given vertex and
// fragment entry points, and the default graphics settings.
func (sy *GraphicsSystem) AddGraphicsPipeline(name, vertexEntry, fragmentEntry string) *GraphicsPipeline {
	pl := &GraphicsPipeline{Name: name, VertexEntry: vertexEntry, FragmentEntry: fragmentEntry, System: sy}
	pl.SetGraphicsDefaults()
	sy.GraphicsPipelines = append(sy.GraphicsPipelines, pl)
	return pl
}

// Config compiles the given shader code and configures all of the
// pipelines, after they and the Vars have been added.
func (sy *GraphicsSystem) Config(code string) error {
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
	for _, pl := range sy.GraphicsPipelines {
		if err := pl.config(); err != nil {
			return err
		}
	}
	return nil
}

// BeginRenderPass creates the [CommandEncoder] and starts a render pass
// that clears the frame to ClearColor, and the depth buffer if any.
// Call [EndRenderPass] when done.
func (sy *GraphicsSystem) BeginRenderPass() (*wgpu.RenderPassEncoder, error) {
	cmd, err := sy.device.Device.CreateCommandEncoder(nil)
	if errors.Log(err) != nil {
		return nil, err
	}
	sy.CommandEncoder = cmd
	cc := sy.ClearColor
	rpd := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:   sy.Render.View(),
			LoadOp: wgpu.LoadOpClear,
			ClearValue: wgpu.Color{
				R: float64(cc.X),
				G: float64(cc.Y),
				B: float64(cc.Z),
				A: float64(cc.W),
			},
			StoreOp: wgpu.StoreOpStore,
		}},
	}
	if dv := sy.Render.DepthView(); dv != nil {
		rpd.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            dv,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		}
	}
	return cmd.BeginRenderPass(rpd), nil
}

// EndRenderPass ends the given render pass, records the copy of the
// frame for [RenderTexture.ReadPixels], and submits the commands.
func (sy *GraphicsSystem) EndRenderPass(rp *wgpu.RenderPassEncoder) error {
	cmd := sy.CommandEncoder
	sy.CommandEncoder = nil
	defer cmd.Release()
	err := rp.End()
	rp.Release()
	if errors.Log(err) != nil {
		return err
	}
	if err := sy.Render.GrabTexture(cmd); errors.Log(err) != nil {
		return err
	}
	cmdBuffer, err := cmd.Finish(nil)
	if errors.Log(err) != nil {
		return err
	}
	sy.device.Queue.Submit(cmdBuffer)
	cmdBuffer.Release()
	sy.Vars.ReleaseOldBindGroups()
	return nil
}

// Release releases the pipelines, shader and Vars,
// including all of the Values.
func (sy *GraphicsSystem) Release() {
	sy.device.WaitDone()
	for _, pl := range sy.GraphicsPipelines {
		pl.Release()
	}
	sy.GraphicsPipelines = nil
	if sy.layout != nil {
		sy.layout.Release()
		sy.layout = nil
	}
	sy.Shader.Release()
	sy.Vars.Release()
}

// GraphicsPipeline is one pair of vertex and fragment entry points,
// with its primitive settings and vertex buffer layouts.
type GraphicsPipeline struct {
	// Name of the pipeline, used as its label.
	Name string

	// VertexEntry and FragmentEntry are the shader entry points.
	VertexEntry, FragmentEntry string

	// System that we belong to.
	System *GraphicsSystem

	// Primitive has various settings for graphics primitives,
	// e.g., TriangleList
	Primitive wgpu.PrimitiveState

	Multisample wgpu.MultisampleState

	// Blend is the color blending, nil to replace.
	Blend *wgpu.BlendState

	// DepthWrite is whether fragments write depth, when there is
	// a depth buffer.
	DepthWrite bool

	// Buffers are the layouts of the vertex buffers, by slot.
	Buffers []wgpu.VertexBufferLayout

	renderPipeline *wgpu.RenderPipeline
}

// SetGraphicsDefaults configures the default settings for a
// graphics rendering pipeline.
func (pl *GraphicsPipeline) SetGraphicsDefaults() *GraphicsPipeline {
	pl.SetTopology(TriangleList)
	pl.SetFrontFace(wgpu.FrontFaceCCW)
	pl.SetCullMode(wgpu.CullModeBack)
	pl.SetColorBlend(true)
	pl.SetMultisample(1)
	pl.DepthWrite = true
	return pl
}

// SetTopology sets the topology of vertex position data.
// TriangleList is the default.
func (pl *GraphicsPipeline) SetTopology(topo Topologies) *GraphicsPipeline {
	pl.Primitive.Topology = topo.Primitive()
	return pl
}

// SetFrontFace sets the winding order for what counts as a front face.
func (pl *GraphicsPipeline) SetFrontFace(face wgpu.FrontFace) *GraphicsPipeline {
	pl.Primitive.FrontFace = face
	return pl
}

// SetCullMode sets the face culling mode.
func (pl *GraphicsPipeline) SetCullMode(mode wgpu.CullMode) *GraphicsPipeline {
	pl.Primitive.CullMode = mode
	return pl
}

func (pl *GraphicsPipeline) SetMultisample(ms int) *GraphicsPipeline {
	pl.Multisample.Count = uint32(max(1, ms))
	pl.Multisample.Mask = 0xFFFFFFFF
	pl.Multisample.AlphaToCoverageEnabled = false
	return pl
}

// SetColorBlend determines the color blending function:
// either 1-source alpha (alphaBlend) or no blending:
// new color overwrites old.  Default is alphaBlend = true
func (pl *GraphicsPipeline) SetColorBlend(alphaBlend bool) *GraphicsPipeline {
	if alphaBlend {
		pl.Blend = &wgpu.BlendStateAlphaBlending
	} else {
		pl.Blend = &wgpu.BlendStateReplace
	}
	return pl
}

// AddVertexBuffer adds the layout of the next vertex buffer slot,
// with attributes of the given formats packed in order starting at
// the given shader location. It returns the shader location
// following the last attribute.
func (pl *GraphicsPipeline) AddVertexBuffer(step wgpu.VertexStepMode, location int, formats ...wgpu.VertexFormat) int {
	attrs := make([]wgpu.VertexAttribute, len(formats))
	off := uint64(0)
	for i, f := range formats {
		attrs[i] = wgpu.VertexAttribute{
			Format:         f,
			Offset:         off,
			ShaderLocation: uint32(location + i),
		}
		off += VertexFormatSize(f)
	}
	pl.Buffers = append(pl.Buffers, wgpu.VertexBufferLayout{
		ArrayStride: off,
		StepMode:    step,
		Attributes:  attrs,
	})
	return location + len(formats)
}

func (pl *GraphicsPipeline) config() error {
	sy := pl.System
	pd := &wgpu.RenderPipelineDescriptor{
		Label:       pl.Name,
		Layout:      sy.layout,
		Primitive:   pl.Primitive,
		Multisample: pl.Multisample,
		Vertex: wgpu.VertexState{
			Module:     sy.Shader.Module(),
			EntryPoint: pl.VertexEntry,
			Buffers:    pl.Buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     sy.Shader.Module(),
			EntryPoint: pl.FragmentEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    sy.Render.Format.Format,
				Blend:     pl.Blend,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
	}
	if sy.Render.DepthView() != nil {
		keep := wgpu.StencilFaceState{
			Compare:     wgpu.CompareFunctionAlways,
			FailOp:      wgpu.StencilOperationKeep,
			DepthFailOp: wgpu.StencilOperationKeep,
			PassOp:      wgpu.StencilOperationKeep,
		}
		pd.DepthStencil = &wgpu.DepthStencilState{
			Format:            sy.Render.DepthFormat,
			DepthWriteEnabled: pl.DepthWrite,
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilFront:      keep,
			StencilBack:       keep,
		}
	}
	rp, err := sy.device.Device.CreateRenderPipeline(pd)
	if err != nil {
		return fmt.Errorf("gpu.GraphicsPipeline %s: %w", pl.Name, err)
	}
	pl.renderPipeline = rp
	return nil
}

// BindPipeline binds this pipeline and the bind group of the Vars
// for the next commands in the given render pass.
func (pl *GraphicsPipeline) BindPipeline(rp *wgpu.RenderPassEncoder) error {
	if pl.renderPipeline == nil {
		return fmt.Errorf("gpu.GraphicsPipeline %s: not configured", pl.Name)
	}
	bg, err := pl.System.Vars.BindGroup(pl.System.device)
	if err != nil {
		return err
	}
	rp.SetPipeline(pl.renderPipeline)
	rp.SetBindGroup(0, bg, nil)
	return nil
}

// BindVertex binds the given Vertex values to the vertex buffer slots
// in order.
func (pl *GraphicsPipeline) BindVertex(rp *wgpu.RenderPassEncoder, values ...*Value) error {
	for i, vl := range values {
		if err := vl.NilBufferCheck(); err != nil {
			return err
		}
		rp.SetVertexBuffer(uint32(i), vl.buffer, 0, wgpu.WholeSize)
	}
	return nil
}

// BindIndex binds the given Index value of uint32 indexes.
func (pl *GraphicsPipeline) BindIndex(rp *wgpu.RenderPassEncoder, index *Value) error {
	if err := index.NilBufferCheck(); err != nil {
		return err
	}
	rp.SetIndexBuffer(index.buffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	return nil
}

func (pl *GraphicsPipeline) Release() {
	if pl.renderPipeline != nil {
		pl.renderPipeline.Release()
		pl.renderPipeline = nil
	}
}

// VertexFormatSize returns the size in bytes of the float32 and
// uint32 vertex formats.
func VertexFormatSize(f wgpu.VertexFormat) uint64 {
	switch f {
	case wgpu.VertexFormatFloat32, wgpu.VertexFormatUint32:
		return 4
	case wgpu.VertexFormatFloat32x2, wgpu.VertexFormatUint32x2:
		return 8
	case wgpu.VertexFormatFloat32x3, wgpu.VertexFormatUint32x3:
		return 12
	case wgpu.VertexFormatFloat32x4, wgpu.VertexFormatUint32x4:
		return 16
	}
	return 0
}

// Topologies are the different vertex topology
type Topologies int32

const (
	PointList Topologies = iota
	LineList
	LineStrip
	TriangleList
	TriangleStrip
)

// Primitive returns the WebGPU primitive topology.
func (tp Topologies) Primitive() wgpu.PrimitiveTopology {
	return topologyPrimitives[tp]
}

var topologyPrimitives = map[Topologies]wgpu.PrimitiveTopology{
	PointList:     wgpu.PrimitiveTopologyPointList,
	LineList:      wgpu.PrimitiveTopologyLineList,
	LineStrip:     wgpu.PrimitiveTopologyLineStrip,
	TriangleList:  wgpu.PrimitiveTopologyTriangleList,
	TriangleStrip: wgpu.PrimitiveTopologyTriangleStrip,
}
