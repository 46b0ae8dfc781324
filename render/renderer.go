// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	_ "embed"
	"fmt"
	"image"
	"log/slog"
	"unsafe"

	"cogentcore.org/forcegraph/base/errors"
	"cogentcore.org/forcegraph/base/iox/imagex"
	"cogentcore.org/forcegraph/gpu"
	"cogentcore.org/forcegraph/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed shaders/graph.wgsl
var shaderCode string

// SphereSubdivisions is the icosphere subdivision level of node meshes.
const SphereSubdivisions = 2

// sceneUniforms is the uniform block of the shader.
type sceneUniforms struct {
	ViewProj  math32.Matrix4
	CameraPos [4]float32
	EdgeColor [4]float32
	Options   [4]float32
}

// positioner is a camera with a world position, used for shading.
type positioner interface {
	Position() math32.Vector3
}

// Renderer is an offscreen WebGPU renderer of a [Frame]. Nodes are
// drawn as instanced spheres and edges as instanced lines, into an
// sRGB color target with a depth buffer, which can be read back.
type Renderer struct {
	// Config has the settings. The size and capacities
	// are used at construction.
	Config Config

	// GPU is the adapter, owned if made by [NewRenderer].
	GPU *gpu.GPU

	// Device is the logical device, owned if made by [NewRenderer].
	Device *gpu.Device

	// Target is the texture rendered into.
	Target *gpu.RenderTexture

	// System has the pipelines and the scene uniforms.
	System *gpu.GraphicsSystem

	own      bool
	rendered bool

	scene, mesh, index, nodes, edges *gpu.Value
	indexCount                       int
	nodePipeline, edgePipeline       *gpu.GraphicsPipeline

	// lin are the node instances with linear colors.
	lin []NodeInstance
}

// NewRenderer returns a renderer on a new device without any display.
// It returns an error if no adapter is available.
func NewRenderer(cf Config) (*Renderer, error) {
	gp, err := gpu.NewGPU()
	if err != nil {
		return nil, err
	}
	dev, err := gpu.NewDevice(gp)
	if err != nil {
		gp.Release()
		return nil, err
	}
	rd, err := NewRendererOn(gp, dev, cf)
	if err != nil {
		dev.Release()
		gp.Release()
		return nil, err
	}
	rd.own = true
	return rd, nil
}

// NewRendererOn returns a renderer on the given device,
// which is not released by the renderer.
func NewRendererOn(gp *gpu.GPU, dev *gpu.Device, cf Config) (*Renderer, error) {
	rd := &Renderer{Config: cf, GPU: gp, Device: dev}
	if err := rd.config(); err != nil {
		rd.Release()
		return nil, fmt.Errorf("render.NewRenderer: %w", err)
	}
	slog.Debug("render.NewRenderer", "size", rd.Target.Format.Size, "maxNodes", cf.MaxNodes, "maxEdges", cf.MaxEdges)
	return rd, nil
}

func (rd *Renderer) config() error {
	cf := &rd.Config
	if cf.MaxNodes < 0 || cf.MaxEdges < 0 {
		return fmt.Errorf("negative capacity: %d nodes, %d edges", cf.MaxNodes, cf.MaxEdges)
	}
	rt, err := gpu.NewRenderTexture(rd.Device, image.Pt(cf.Width, cf.Height), true)
	if err != nil {
		return err
	}
	rd.Target = rt
	sy := gpu.NewGraphicsSystem(rd.Device, "graph", rt)
	rd.System = sy
	sy.ClearColor = gpu.SRGBToLinear(cf.BackgroundColor())

	rd.scene = gpu.NewValue(rd.Device, "scene", gpu.Uniform)
	sy.Vars.Add("scene", gpu.Uniform).Value = rd.scene

	verts, idx := Icosphere(SphereSubdivisions)
	rd.indexCount = len(idx)
	rd.mesh = gpu.NewValue(rd.Device, "mesh", gpu.Vertex)
	rd.index = gpu.NewValue(rd.Device, "index", gpu.Index)
	rd.nodes = gpu.NewValue(rd.Device, "nodes", gpu.Vertex)
	rd.edges = gpu.NewValue(rd.Device, "edges", gpu.Vertex)
	errs := []error{
		gpu.SetValueFrom(rd.scene, []sceneUniforms{{}}),
		gpu.SetValueFrom(rd.mesh, verts),
		gpu.SetValueFrom(rd.index, idx),
		rd.nodes.CreateBuffer(max(cf.MaxNodes, 1) * int(unsafe.Sizeof(NodeInstance{}))),
		rd.edges.CreateBuffer(max(cf.MaxEdges, 1) * int(unsafe.Sizeof(EdgeInstance{}))),
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	f3, f4, f1 := wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x4, wgpu.VertexFormatFloat32
	ep := sy.AddGraphicsPipeline("edges", "vs_edge", "fs_edge")
	ep.SetTopology(gpu.LineList).SetCullMode(wgpu.CullModeNone)
	ep.AddVertexBuffer(wgpu.VertexStepModeInstance, 0, f3, f1, f3, f1)
	rd.edgePipeline = ep

	np := sy.AddGraphicsPipeline("nodes", "vs_node", "fs_node")
	// the 2D camera flips Y, which reverses the winding
	np.SetCullMode(wgpu.CullModeNone)
	loc := np.AddVertexBuffer(wgpu.VertexStepModeVertex, 0, f3, f3)
	np.AddVertexBuffer(wgpu.VertexStepModeInstance, loc, f3, f1, f4, f1, f3)
	rd.nodePipeline = np

	return sy.Config(shaderCode)
}

// Render draws the frame as seen by the given camera, and records the
// copy of the frame for [Renderer.ReadPixels].
// It panics if the frame exceeds the capacity of the config.
func (rd *Renderer) Render(fr *Frame, cam Camera) error {
	cf := &rd.Config
	fr.checkCapacity(cf)
	su := sceneUniforms{
		ViewProj:  cam.ViewProjectionMatrix(),
		CameraPos: [4]float32{0, 0, 1e6, 1},
		EdgeColor: gpu.SRGBToLinear(cf.EdgeRGBA(cf.EdgeAlpha)).Array(),
		Options:   [4]float32{cf.SelectionGlow, 0, 0, 0},
	}
	if ps, ok := cam.(positioner); ok {
		su.CameraPos = math32.Vector4FromVector3(ps.Position(), 1).Array()
	}
	if err := gpu.SetValueFrom(rd.scene, []sceneUniforms{su}); err != nil {
		return err
	}
	rd.lin = append(rd.lin[:0], fr.Nodes...)
	for i := range rd.lin {
		c := math32.Vector4FromSlice(rd.lin[i].Color[:], math32.Vec4(0.5, 0.5, 0.5, 1))
		rd.lin[i].Color = gpu.SRGBToLinear(c).Array()
	}
	if len(rd.lin) > 0 {
		if err := gpu.SetValueFrom(rd.nodes, rd.lin); err != nil {
			return err
		}
	}
	if len(fr.Edges) > 0 {
		if err := gpu.SetValueFrom(rd.edges, fr.Edges); err != nil {
			return err
		}
	}

	rp, err := rd.System.BeginRenderPass()
	if err != nil {
		return err
	}
	err = rd.draw(rp, len(fr.Nodes), len(fr.Edges))
	if eerr := rd.System.EndRenderPass(rp); eerr != nil && err == nil {
		err = eerr
	}
	if err == nil {
		rd.rendered = true
	}
	return err
}

func (rd *Renderer) draw(rp *wgpu.RenderPassEncoder, nodes, edges int) error {
	if edges > 0 {
		if err := rd.edgePipeline.BindPipeline(rp); err != nil {
			return err
		}
		if err := rd.edgePipeline.BindVertex(rp, rd.edges); err != nil {
			return err
		}
		rp.Draw(2, uint32(edges), 0, 0)
	}
	if nodes > 0 {
		np := rd.nodePipeline
		if err := np.BindPipeline(rp); err != nil {
			return err
		}
		if err := np.BindVertex(rp, rd.mesh, rd.nodes); err != nil {
			return err
		}
		if err := np.BindIndex(rp, rd.index); err != nil {
			return err
		}
		rp.DrawIndexed(uint32(rd.indexCount), uint32(nodes), 0, 0, 0)
	}
	return nil
}

// ReadPixels waits for the last Render and returns its RGBA pixels,
// row major from the top.
func (rd *Renderer) ReadPixels() ([]byte, error) {
	if !rd.rendered {
		return nil, errors.New("render.Renderer ReadPixels: nothing rendered")
	}
	return rd.Target.ReadPixels()
}

// Image returns the pixels of the last Render as an image.
func (rd *Renderer) Image() (*image.RGBA, error) {
	pix, err := rd.ReadPixels()
	if err != nil {
		return nil, err
	}
	return imagex.FromRGBA(pix, rd.Target.Format.Size)
}

// SavePNG saves the last frame to the given file.
func (rd *Renderer) SavePNG(filename string) error {
	img, err := rd.Image()
	if err != nil {
		return err
	}
	return imagex.Save(img, filename)
}

// Release releases the GPU resources, and the device if owned.
func (rd *Renderer) Release() {
	if rd.System != nil {
		rd.System.Release()
		rd.System = nil
	}
	for _, vl := range []*gpu.Value{rd.mesh, rd.index, rd.nodes, rd.edges} {
		if vl != nil {
			vl.Release()
		}
	}
	if rd.Target != nil {
		rd.Target.Release()
		rd.Target = nil
	}
	if rd.own {
		rd.own = false
		rd.Device.Release()
		rd.GPU.Release()
	}
}
