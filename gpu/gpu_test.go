// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"image"
	"strings"
	"testing"
	"testing/fstest"

	"cogentcore.org/forcegraph/base/tolassert"
	"cogentcore.org/forcegraph/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarps(t *testing.T) {
	assert.Equal(t, 0, Warps(0, 256))
	assert.Equal(t, 1, Warps(1, 256))
	assert.Equal(t, 1, Warps(256, 256))
	assert.Equal(t, 2, Warps(257, 256))
	assert.Equal(t, 40, Warps(10000, 256))
}

func TestMemSizeAlign(t *testing.T) {
	assert.Equal(t, 16, MemSizeAlign(12, 16))
	assert.Equal(t, 48, MemSizeAlign(48, 16))
	assert.Equal(t, 64, MemSizeAlign(49, 16))
}

func TestTextureBufferDims(t *testing.T) {
	td := NewTextureBufferDims(image.Point{100, 3})
	assert.Equal(t, uint64(400), td.UnpaddedRowSize)
	assert.Equal(t, uint64(512), td.PaddedRowSize)
	assert.Equal(t, uint64(1536), td.PaddedSize())
	assert.Equal(t, uint64(1200), td.UnpaddedSize())
	assert.False(t, td.HasNoPadding())

	padded := make([]byte, td.PaddedSize())
	for y := range 3 {
		for x := range 400 {
			padded[y*512+x] = byte(y + 1)
		}
		padded[y*512+400] = 0xff // padding
	}
	pix := make([]byte, td.UnpaddedSize())
	td.Unpad(pix, padded)
	for y := range 3 {
		assert.Equal(t, byte(y+1), pix[y*400])
		assert.Equal(t, byte(y+1), pix[y*400+399])
	}
	assert.NotContains(t, pix, byte(0xff))

	assert.True(t, NewTextureBufferDims(image.Point{64, 2}).HasNoPadding())
}

func TestVarRoles(t *testing.T) {
	assert.Equal(t, wgpu.BufferBindingTypeUniform, Uniform.BindingType())
	assert.Equal(t, wgpu.BufferBindingTypeStorage, Storage.BindingType())
	assert.NotZero(t, Storage.BufferUsages()&wgpu.BufferUsageCopySrc)
	assert.True(t, Storage.IsBindable())
	assert.False(t, Vertex.IsBindable())
	assert.Equal(t, "Storage", Storage.String())
}

func TestIncludeFS(t *testing.T) {
	fsys := fstest.MapFS{
		"shaders/main.wgsl":   {Data: []byte("#include \"common.wgsl\"\nfn main() {}")},
		"shaders/common.wgsl": {Data: []byte("const N = 4u;")},
	}
	b, err := fsys.ReadFile("shaders/main.wgsl")
	require.NoError(t, err)
	code := IncludeFS(fsys, "shaders", string(b))
	assert.True(t, strings.HasPrefix(code, "// #include"))
	assert.Contains(t, code, "const N = 4u;")
	assert.Contains(t, code, "fn main() {}")
}

func TestSRGB(t *testing.T) {
	c := math32.Vec4(0.5, 0.2, 0.9, 0.7)
	lin := SRGBToLinear(c)
	assert.Less(t, lin.X, c.X)
	assert.Equal(t, float32(0.7), lin.W)
	back := SRGBFromLinear(lin)
	tolassert.EqualTol(t, c.X, back.X, 1.0e-4)
	tolassert.EqualTol(t, c.Y, back.Y, 1.0e-4)
	tolassert.EqualTol(t, c.Z, back.Z, 1.0e-4)

	tolassert.EqualTol(t, 1, SRGBFromLinearComp(1), 1.0e-5)
	tolassert.EqualTol(t, 0.5, SRGBFromLinearComp(0.21404114), 1.0e-4)
	tolassert.EqualTol(t, 0.01292, SRGBFromLinearComp(0.001), 1.0e-6)
}

// noDisplayGPU returns a GPU and Device, skipping the test
// when no adapter is available.
func noDisplayGPU(t *testing.T) (*GPU, *Device) {
	gp, dev, err := NoDisplayGPU()
	if err != nil {
		t.Skip("Need software GPU on CI")
	}
	t.Cleanup(func() {
		dev.Release()
		gp.Release()
	})
	return gp, dev
}

const doubleShader = `
@group(0) @binding(0) var<uniform> params: vec4<u32>;
@group(0) @binding(1) var<storage, read_write> data: array<f32>;

@compute @workgroup_size(64)
fn double(@builtin(global_invocation_id) id: vec3<u32>) {
	if (id.x >= params.x) {
		return;
	}
	data[id.x] = data[id.x] * 2.0;
}
`

func TestComputeDouble(t *testing.T) {
	_, dev := noDisplayGPU(t)
	sy := NewComputeSystem(dev, "double")
	defer sy.Release()
	sy.Vars.Add("params", Uniform)
	sy.Vars.Add("data", Storage)
	pl := sy.AddComputePipeline("double")

	n := 100
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i)
	}
	params := NewValue(dev, "params", Uniform)
	require.NoError(t, SetValueFrom(params, []uint32{uint32(n), 0, 0, 0}))
	dv := NewValue(dev, "data", Storage)
	require.NoError(t, SetValueFrom(dv, data))
	require.NoError(t, sy.Vars.SetValue("params", params))
	require.NoError(t, sy.Vars.SetValue("data", dv))
	require.NoError(t, sy.Config(doubleShader))

	ce, err := sy.BeginComputePass()
	require.NoError(t, err)
	require.NoError(t, pl.Dispatch1D(ce, n, 64))
	require.NoError(t, ce.End())
	require.NoError(t, dv.GPUToRead(sy.CommandEncoder))
	require.NoError(t, sy.EndComputePass(ce))

	require.NoError(t, ValueReadSync(dev, dv))
	res := make([]float32, n)
	require.NoError(t, ReadValueTo(dv, res))
	for i := range res {
		assert.Equal(t, float32(2*i), res[i])
	}
}

func TestRenderTextureClear(t *testing.T) {
	_, dev := noDisplayGPU(t)
	rt, err := NewRenderTexture(dev, image.Point{70, 4}, true)
	require.NoError(t, err)
	defer rt.Release()

	cmd, err := dev.Device.CreateCommandEncoder(nil)
	require.NoError(t, err)
	rp := cmd.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       rt.View(),
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 1, G: 0, B: 0, A: 1},
		}},
	})
	require.NoError(t, rp.End())
	rp.Release()
	require.NoError(t, rt.GrabTexture(cmd))
	cb, err := cmd.Finish(nil)
	require.NoError(t, err)
	dev.Queue.Submit(cb)
	cb.Release()
	cmd.Release()

	pix, err := rt.ReadPixels()
	require.NoError(t, err)
	assert.Len(t, pix, 70*4*4)
	assert.Equal(t, []byte{255, 0, 0, 255}, pix[len(pix)-4:])
}

func TestVertexBufferLayout(t *testing.T) {
	assert.Equal(t, uint64(12), VertexFormatSize(wgpu.VertexFormatFloat32x3))
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, LineList.Primitive())

	sy := &GraphicsSystem{}
	pl := &GraphicsPipeline{System: sy}
	pl.SetGraphicsDefaults()
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, pl.Primitive.Topology)
	assert.Equal(t, uint32(1), pl.Multisample.Count)
	loc := pl.AddVertexBuffer(wgpu.VertexStepModeVertex, 0, wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x3)
	assert.Equal(t, 2, loc)
	loc = pl.AddVertexBuffer(wgpu.VertexStepModeInstance, loc, wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32, wgpu.VertexFormatFloat32x4)
	assert.Equal(t, 5, loc)
	require.Len(t, pl.Buffers, 2)
	assert.Equal(t, uint64(24), pl.Buffers[0].ArrayStride)
	assert.Equal(t, uint64(32), pl.Buffers[1].ArrayStride)
	assert.Equal(t, uint64(16), pl.Buffers[1].Attributes[2].Offset)
	assert.Equal(t, uint32(4), pl.Buffers[1].Attributes[2].ShaderLocation)
}

const triangleShader = `
@group(0) @binding(0) var<uniform> color: vec4<f32>;

@vertex
fn vs_main(@location(0) pos: vec2<f32>) -> @builtin(position) vec4<f32> {
	return vec4<f32>(pos, 0.5, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
	return color;
}
`

func TestGraphicsTriangle(t *testing.T) {
	_, dev := noDisplayGPU(t)
	rt, err := NewRenderTexture(dev, image.Point{32, 32}, true)
	require.NoError(t, err)
	defer rt.Release()
	sy := NewGraphicsSystem(dev, "triangle", rt)
	defer sy.Release()
	color := NewValue(dev, "color", Uniform)
	require.NoError(t, SetValueFrom(color, []float32{0, 1, 0, 1}))
	sy.Vars.Add("color", Uniform).Value = color
	pl := sy.AddGraphicsPipeline("triangle", "vs_main", "fs_main")
	pl.SetCullMode(wgpu.CullModeNone)
	pl.AddVertexBuffer(wgpu.VertexStepModeVertex, 0, wgpu.VertexFormatFloat32x2)
	verts := NewValue(dev, "verts", Vertex)
	defer verts.Release()
	require.NoError(t, SetValueFrom(verts, []float32{-1, -1, 3, -1, -1, 3}))
	require.NoError(t, sy.Config(triangleShader))

	sy.ClearColor = math32.Vec4(1, 0, 0, 1)
	rp, err := sy.BeginRenderPass()
	require.NoError(t, err)
	require.NoError(t, pl.BindPipeline(rp))
	require.NoError(t, pl.BindVertex(rp, verts))
	rp.Draw(3, 1, 0, 0)
	require.NoError(t, sy.EndRenderPass(rp))

	pix, err := rt.ReadPixels()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 255, 0, 255}, pix[:4])
	assert.Equal(t, []byte{0, 255, 0, 255}, pix[len(pix)-4:])
}
