// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image/color"
	"path/filepath"
	"testing"
	"unsafe"

	"cogentcore.org/forcegraph/base/iox/imagex"
	"cogentcore.org/forcegraph/base/tolassert"
	"cogentcore.org/forcegraph/camera"
	"cogentcore.org/forcegraph/force"
	"cogentcore.org/forcegraph/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cf := DefaultConfig()
	assert.Equal(t, 800, cf.Width)
	assert.Equal(t, 600, cf.Height)
	assert.Equal(t, [4]float32{0.1, 0.1, 0.15, 1}, cf.Background)
	assert.Equal(t, [3]float32{0.39, 0.39, 0.47}, cf.EdgeColor)
	assert.Equal(t, float32(0.6), cf.EdgeAlpha)
	assert.Equal(t, float32(0.3), cf.SelectionGlow)
	assert.Equal(t, 10000, cf.MaxNodes)
	assert.Equal(t, 20000, cf.MaxEdges)
	assert.True(t, cf.Labels.ShowNodeLabels())
	assert.True(t, cf.Labels.ShowEdgeLabels())
}

func TestLabelOptions(t *testing.T) {
	lo := LabelOptions{All: true, Nodes: true, Edges: true}
	lo.ToggleEdges()
	assert.True(t, lo.ShowNodeLabels())
	assert.False(t, lo.ShowEdgeLabels())
	lo.ToggleAll()
	assert.False(t, lo.ShowNodeLabels())
	lo.ToggleEdges()
	assert.False(t, lo.ShowEdgeLabels())
	lo.SetAll(true)
	assert.True(t, lo.ShowEdgeLabels())
	lo.ToggleNodes()
	assert.False(t, lo.ShowNodeLabels())
}

func TestLayoutSizes(t *testing.T) {
	assert.Equal(t, uintptr(48), unsafe.Sizeof(NodeInstance{}))
	assert.Equal(t, uintptr(32), unsafe.Sizeof(EdgeInstance{}))
	assert.Equal(t, uintptr(24), unsafe.Sizeof(MeshVertex{}))
	assert.Equal(t, uintptr(112), unsafe.Sizeof(sceneUniforms{}))
}

func testNodes() ([]force.Node, []force.Edge) {
	nodes := []force.Node{
		{ID: "a", Label: "Alpha", Pos: math32.Vec3(0, 0, 0), Radius: 10, Color: math32.Vec4(1, 0, 0, 1)},
		{ID: "b", Label: "Beta", Pos: math32.Vec3(50, 0, 0), Radius: 5, Color: math32.Vec4(0, 1, 0, 1)},
		{ID: "c", Pos: math32.Vec3(-60, 20, 0)},
	}
	edges := []force.Edge{
		{Source: 0, Target: 1, Label: "knows"},
		{Source: 1, Target: 5},
	}
	return nodes, edges
}

func TestNewFrame(t *testing.T) {
	nodes, edges := testNodes()
	fr := NewFrame(nodes, edges, 1, 7)
	require.Len(t, fr.Nodes, 3)
	require.Len(t, fr.Edges, 1)
	assert.Equal(t, [3]float32{50, 0, 0}, fr.Nodes[1].Position)
	assert.True(t, fr.Nodes[1].IsSelected())
	assert.False(t, fr.Nodes[0].IsSelected())
	assert.Equal(t, float32(DefaultNodeRadius), fr.Nodes[2].Radius)
	assert.Equal(t, [4]float32{0.5, 0.5, 0.5, 1}, fr.Nodes[2].Color)
	assert.Equal(t, []string{"Alpha", "Beta", ""}, fr.NodeLabels)
	assert.Equal(t, []string{"knows"}, fr.EdgeLabels)
	assert.Equal(t, [3]float32{0, 0, 0}, fr.Edges[0].Start)
	assert.Equal(t, [3]float32{50, 0, 0}, fr.Edges[0].End)
	assert.Zero(t, fr.Edges[0].Alpha)
}

func TestIcosphere(t *testing.T) {
	for sub, want := range [][2]int{{12, 20}, {42, 80}, {162, 320}, {642, 1280}} {
		verts, idx := Icosphere(sub)
		assert.Len(t, verts, want[0], "subdivisions %d", sub)
		assert.Len(t, idx, 3*want[1], "subdivisions %d", sub)
		for _, v := range verts {
			tolassert.EqualTol(t, 1, math32.Vector3FromArray(v.Position).Length(), 1.0e-5)
			assert.Equal(t, v.Position, v.Normal)
		}
		for _, i := range idx {
			assert.Less(t, int(i), len(verts))
		}
	}
	// faces wind counter-clockwise seen from outside
	verts, idx := Icosphere(1)
	for f := 0; f < len(idx); f += 3 {
		a := math32.Vector3FromArray(verts[idx[f]].Position)
		b := math32.Vector3FromArray(verts[idx[f+1]].Position)
		c := math32.Vector3FromArray(verts[idx[f+2]].Position)
		n := b.Sub(a).Cross(c.Sub(a))
		assert.Greater(t, n.Dot(a.Add(b).Add(c)), float32(0))
	}
}

func testConfig() Config {
	cf := DefaultConfig()
	cf.Width, cf.Height = 200, 100
	cf.Labels.SetAll(false)
	return cf
}

func background(cf *Config) color.RGBA {
	c := cf.BackgroundColor().RGBA()
	return color.RGBA{c.R, c.G, c.B, c.A}
}

func TestCanvas2D(t *testing.T) {
	cf := testConfig()
	cv := NewCanvas(cf)
	nodes, edges := testNodes()
	cv.Render(NewFrame(nodes, edges), camera.NewCamera2D(200, 100))
	img := cv.Image()
	bg := background(&cf)

	assert.Equal(t, bg, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(100, 50))
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, img.RGBAAt(150, 50))
	// default gray node at (-60, 20) is at canvas (40, 70)
	assert.True(t, imagex.CompareColors(color.RGBA{128, 128, 128, 255}, img.RGBAAt(40, 70), 1))
	// edge between the first two nodes
	assert.False(t, imagex.CompareColors(bg, img.RGBAAt(130, 50), 2))
	assert.True(t, imagex.CompareColors(bg, img.RGBAAt(130, 30), 0))

	pix := cv.ReadPixels()
	assert.Len(t, pix, 200*100*4)
	assert.Equal(t, img.Pix, pix)
}

func TestCanvasFit(t *testing.T) {
	cf := testConfig()
	cv := NewCanvas(cf)
	nodes, edges := testNodes()
	for i := range nodes {
		nodes[i].Pos = nodes[i].Pos.MulScalar(10)
		nodes[i].Radius = 60
	}
	cm := camera.NewCamera2D(200, 100)
	cm.FitToBounds(camera.BoundsOf(nodes), 10)
	for cm.UpdateAnimation() {
	}
	cv.Render(NewFrame(nodes, edges), cm)
	img := cv.Image()
	c := cm.WorldToCanvas(nodes[0].Pos.XY())
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(int(c.X), int(c.Y)))
	c = cm.WorldToCanvas(nodes[1].Pos.XY())
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, img.RGBAAt(int(c.X), int(c.Y)))
}

func TestCanvasSelected(t *testing.T) {
	cf := testConfig()
	cv := NewCanvas(cf)
	nodes := []force.Node{{Pos: math32.Vec3(0, 0, 0), Radius: 10, Color: math32.Vec4(0.5, 0.2, 0.2, 1)}}
	cam := camera.NewCamera2D(200, 100)
	bg := background(&cf)

	cv.Render(NewFrame(nodes, nil), cam)
	assert.Equal(t, bg, cv.Image().RGBAAt(112, 50))
	plain := cv.Image().RGBAAt(100, 50)

	cv.Render(NewFrame(nodes, nil, 0), cam)
	assert.NotEqual(t, bg, cv.Image().RGBAAt(112, 50))
	lit := cv.Image().RGBAAt(100, 50)
	assert.Greater(t, lit.R, plain.R)
}

func TestCanvasLabels(t *testing.T) {
	cf := testConfig()
	cv := NewCanvas(cf)
	nodes, edges := testNodes()
	fr := NewFrame(nodes, edges)
	cam := camera.NewCamera2D(200, 100)
	cv.Render(fr, cam)
	bg := background(&cf)
	plain := imagex.CountDifferent(cv.Image(), bg, 0)

	cv.Config.Labels = LabelOptions{All: true, Nodes: true}
	cv.Render(fr, cam)
	nodeLabels := imagex.CountDifferent(cv.Image(), bg, 0)
	assert.Greater(t, nodeLabels, plain)

	cv.Config.Labels.Edges = true
	cv.Render(fr, cam)
	assert.Greater(t, imagex.CountDifferent(cv.Image(), bg, 0), nodeLabels)
}

func TestCanvas3D(t *testing.T) {
	cf := testConfig()
	cv := NewCanvas(cf)
	cam := camera.NewCamera3D(200, 100)
	near := cam.Position().MulScalar(0.5)
	nodes := []force.Node{
		{Pos: near, Radius: 20, Color: math32.Vec4(0, 1, 0, 1)},
		{Pos: math32.Vec3(0, 0, 0), Radius: 40, Color: math32.Vec4(1, 0, 0, 1)},
		{Pos: cam.Position().MulScalar(2), Radius: 20, Color: math32.Vec4(0, 0, 1, 1)},
	}
	cv.Render(NewFrame(nodes, nil), cam)
	img := cv.Image()
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, img.RGBAAt(100, 50))
	assert.Equal(t, background(&cf), img.RGBAAt(2, 2))
}

func TestCanvasSavePNG(t *testing.T) {
	cv := NewCanvas(testConfig())
	nodes, edges := testNodes()
	cv.Render(NewFrame(nodes, edges), camera.NewCamera2D(200, 100))
	fn := filepath.Join(t.TempDir(), "graph.png")
	require.NoError(t, cv.SavePNG(fn))
	img, f, err := imagex.Open(fn)
	require.NoError(t, err)
	assert.Equal(t, imagex.PNG, f)
	assert.Equal(t, cv.Image().Pix, imagex.AsRGBA(img).Pix)
}

func TestCapacity(t *testing.T) {
	cf := testConfig()
	cf.MaxNodes = 2
	cv := NewCanvas(cf)
	nodes, edges := testNodes()
	cam := camera.NewCamera2D(200, 100)
	assert.Panics(t, func() { cv.Render(NewFrame(nodes, edges), cam) })
	cv.Config.MaxNodes = 3
	cv.Config.MaxEdges = 0
	assert.Panics(t, func() { cv.Render(NewFrame(nodes, edges), cam) })
	cv.Config.MaxEdges = 1
	assert.NotPanics(t, func() { cv.Render(NewFrame(nodes, edges), cam) })
}

// newRenderer returns a renderer, skipping the test
// when no adapter is available.
func newRenderer(t *testing.T, cf Config) *Renderer {
	rd, err := NewRenderer(cf)
	if err != nil {
		t.Skip("Need software GPU on CI")
	}
	t.Cleanup(rd.Release)
	return rd
}

func TestRenderer2D(t *testing.T) {
	cf := testConfig()
	rd := newRenderer(t, cf)
	_, err := rd.ReadPixels()
	assert.Error(t, err)

	nodes, edges := testNodes()
	require.NoError(t, rd.Render(NewFrame(nodes, edges, 0), camera.NewCamera2D(200, 100)))
	pix, err := rd.ReadPixels()
	require.NoError(t, err)
	assert.Len(t, pix, 200*100*4)
	img, err := rd.Image()
	require.NoError(t, err)
	bg := background(&cf)
	assert.True(t, imagex.CompareColors(bg, img.RGBAAt(0, 0), 2))
	assert.False(t, imagex.CompareColors(bg, img.RGBAAt(100, 50), 2))
	assert.False(t, imagex.CompareColors(bg, img.RGBAAt(150, 50), 2))
	c := img.RGBAAt(100, 50)
	assert.Greater(t, c.R, c.G)
}

func TestRenderer3D(t *testing.T) {
	cf := testConfig()
	rd := newRenderer(t, cf)
	cam := camera.NewCamera3D(200, 100)
	nodes := []force.Node{{Pos: math32.Vec3(0, 0, 0), Radius: 40, Color: math32.Vec4(0, 0, 1, 1)}}
	require.NoError(t, rd.Render(NewFrame(nodes, nil), cam))
	img, err := rd.Image()
	require.NoError(t, err)
	c := img.RGBAAt(100, 50)
	assert.Greater(t, c.B, c.R)
	assert.True(t, imagex.CompareColors(background(&cf), img.RGBAAt(2, 2), 2))

	require.NoError(t, rd.Render(NewFrame(nil, nil), cam))
	img, err = rd.Image()
	require.NoError(t, err)
	assert.Equal(t, 0, imagex.CountDifferent(img, background(&cf), 2))
}

func TestRendererCapacity(t *testing.T) {
	cf := testConfig()
	cf.MaxNodes = 1
	rd := newRenderer(t, cf)
	nodes, edges := testNodes()
	assert.Panics(t, func() { rd.Render(NewFrame(nodes, edges), camera.NewCamera2D(200, 100)) })
}
