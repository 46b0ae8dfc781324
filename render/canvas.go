// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image"
	"image/color"
	"image/draw"
	"slices"

	"cogentcore.org/forcegraph/base/iox/imagex"
	"cogentcore.org/forcegraph/math32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	// EdgeWidth is the width of edge lines in pixels.
	EdgeWidth = 1

	// LabelGap is the space in pixels between a node and its label.
	LabelGap = 4
)

// circleKappa is the control point distance of a cubic
// Bézier quarter circle.
const circleKappa = 0.5522847498

// Canvas is a software renderer that draws a [Frame] into an RGBA image,
// with nodes as filled circles, edges as lines, and text labels.
type Canvas struct {
	// Config has the settings, used on each Render.
	Config Config

	// Face is the font of labels.
	Face font.Face

	img  *image.RGBA
	rast *vector.Rasterizer
}

// NewCanvas returns a new canvas of the size in the given config.
func NewCanvas(cf Config) *Canvas {
	cv := &Canvas{Config: cf, Face: basicfont.Face7x13}
	cv.Resize(cf.Width, cf.Height)
	return cv
}

// Resize sets the size of the image, which is cleared.
func (cv *Canvas) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	cv.Config.Width, cv.Config.Height = width, height
	cv.img = image.NewRGBA(image.Rect(0, 0, width, height))
	cv.rast = vector.NewRasterizer(width, height)
}

// Image returns the image rendered into.
func (cv *Canvas) Image() *image.RGBA { return cv.img }

// ReadPixels returns a copy of the RGBA pixels of the last frame,
// row major from the top.
func (cv *Canvas) ReadPixels() []byte {
	return slices.Clone(cv.img.Pix)
}

// SavePNG saves the last frame to the given file.
func (cv *Canvas) SavePNG(filename string) error {
	return imagex.Save(cv.img, filename)
}

// projected is a node position in pixels.
type projected struct {
	index  int
	pos    math32.Vector2
	radius float32
	depth  float32
}

// Render draws the frame as seen by the given camera: edges
// first, then nodes from back to front, then labels.
// It panics if the frame exceeds the capacity of the config.
func (cv *Canvas) Render(fr *Frame, cam Camera) {
	cf := &cv.Config
	fr.checkCapacity(cf)
	bg := cf.BackgroundColor().RGBA()
	draw.Draw(cv.img, cv.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	vp := cam.ViewProjectionMatrix()
	pj := newProjector(&vp, float32(cf.Width), float32(cf.Height))

	for i := range fr.Edges {
		ed := &fr.Edges[i]
		a, _, aok := pj.point(ed.Start)
		b, _, bok := pj.point(ed.End)
		if !aok || !bok {
			continue
		}
		alpha := ed.Alpha
		if alpha <= 0 {
			alpha = cf.EdgeAlpha
		}
		cv.line(a, b, EdgeWidth, cf.EdgeRGBA(alpha).RGBA())
	}

	nodes := make([]projected, 0, len(fr.Nodes))
	for i := range fr.Nodes {
		ni := &fr.Nodes[i]
		p, w, ok := pj.point(ni.Position)
		if !ok {
			continue
		}
		nodes = append(nodes, projected{index: i, pos: p, radius: pj.radius(ni.Radius, w), depth: w})
	}
	slices.SortStableFunc(nodes, func(a, b projected) int {
		switch {
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		}
		return 0
	})
	for _, pn := range nodes {
		ni := &fr.Nodes[pn.index]
		c := math32.Vector4FromSlice(ni.Color[:], math32.Vec4(0.5, 0.5, 0.5, 1))
		if ni.IsSelected() && cf.SelectionGlow > 0 {
			glow := c
			glow.W *= cf.SelectionGlow
			cv.circle(pn.pos, pn.radius*(1+cf.SelectionGlow)+2, glow.RGBA())
			c = selectedColor(c, cf.SelectionGlow)
		}
		cv.circle(pn.pos, pn.radius, c.RGBA())
		cv.ring(pn.pos, pn.radius, 1, color.NRGBA{255, 255, 255, 77})
	}

	if cf.Labels.ShowEdgeLabels() {
		for i := range fr.Edges {
			if i >= len(fr.EdgeLabels) || fr.EdgeLabels[i] == "" {
				continue
			}
			ed := &fr.Edges[i]
			a, _, aok := pj.point(ed.Start)
			b, _, bok := pj.point(ed.End)
			if !aok || !bok {
				continue
			}
			mid := a.Add(b).MulScalar(0.5)
			cv.label(fr.EdgeLabels[i], mid, true, color.NRGBA{200, 200, 210, 200})
		}
	}
	if cf.Labels.ShowNodeLabels() {
		for _, pn := range nodes {
			if pn.index >= len(fr.NodeLabels) || fr.NodeLabels[pn.index] == "" {
				continue
			}
			at := pn.pos.Add(math32.Vec2(pn.radius+LabelGap, 0))
			cv.label(fr.NodeLabels[pn.index], at, false, color.NRGBA{255, 255, 255, 230})
		}
	}
}

// selectedColor returns the color brightened by the glow amount.
func selectedColor(c math32.Vector4, glow float32) math32.Vector4 {
	return math32.Vec4(
		math32.Min(c.X*(1+glow), 1),
		math32.Min(c.Y*(1+glow), 1),
		math32.Min(c.Z*(1+glow), 1),
		c.W)
}

func (cv *Canvas) fill(c color.NRGBA) {
	cv.rast.Draw(cv.img, cv.img.Bounds(), image.NewUniform(c), image.Point{})
	cv.rast.Reset(cv.Config.Width, cv.Config.Height)
}

// circlePath adds a closed circle to the rasterizer path,
// counter-clockwise unless reverse is set.
func (cv *Canvas) circlePath(c math32.Vector2, r float32, reverse bool) {
	k := r * circleKappa
	s := float32(1)
	if reverse {
		s = -1
	}
	rs := r * s
	ks := k * s
	rt := cv.rast
	rt.MoveTo(c.X+r, c.Y)
	rt.CubeTo(c.X+r, c.Y+ks, c.X+k, c.Y+rs, c.X, c.Y+rs)
	rt.CubeTo(c.X-k, c.Y+rs, c.X-r, c.Y+ks, c.X-r, c.Y)
	rt.CubeTo(c.X-r, c.Y-ks, c.X-k, c.Y-rs, c.X, c.Y-rs)
	rt.CubeTo(c.X+k, c.Y-rs, c.X+r, c.Y-ks, c.X+r, c.Y)
	rt.ClosePath()
}

func (cv *Canvas) circle(c math32.Vector2, r float32, col color.NRGBA) {
	if r <= 0 {
		return
	}
	cv.circlePath(c, r, false)
	cv.fill(col)
}

// ring draws the outline of a circle with the given width inside it.
func (cv *Canvas) ring(c math32.Vector2, r, width float32, col color.NRGBA) {
	if r <= width {
		return
	}
	cv.circlePath(c, r, false)
	cv.circlePath(c, r-width, true)
	cv.fill(col)
}

// line draws a line of the given width as a quad.
func (cv *Canvas) line(a, b math32.Vector2, width float32, col color.NRGBA) {
	d := b.Sub(a)
	l := d.Length()
	if l < 1e-3 {
		return
	}
	n := math32.Vec2(-d.Y, d.X).MulScalar(0.5 * width / l)
	rt := cv.rast
	rt.MoveTo(a.X+n.X, a.Y+n.Y)
	rt.LineTo(b.X+n.X, b.Y+n.Y)
	rt.LineTo(b.X-n.X, b.Y-n.Y)
	rt.LineTo(a.X-n.X, a.Y-n.Y)
	rt.ClosePath()
	cv.fill(col)
}

// label draws text starting at the given point, or centered on it,
// vertically centered on the point.
func (cv *Canvas) label(text string, at math32.Vector2, center bool, col color.NRGBA) {
	dr := &font.Drawer{Dst: cv.img, Src: image.NewUniform(col), Face: cv.Face}
	m := cv.Face.Metrics()
	x := fixed.I(int(at.X))
	if center {
		x -= dr.MeasureString(text) / 2
	}
	y := fixed.I(int(at.Y)) + (m.Ascent-m.Descent)/2
	dr.Dot = fixed.Point26_6{X: x, Y: y}
	dr.DrawString(text)
}

// projector maps world points to pixels with a view-projection matrix.
type projector struct {
	vp            *math32.Matrix4
	width, height float32

	// scaleX is the clip space length of a world unit along
	// the view X axis, before the perspective divide.
	scaleX float32
}

func newProjector(vp *math32.Matrix4, width, height float32) *projector {
	return &projector{
		vp:     vp,
		width:  width,
		height: height,
		scaleX: math32.Vec3(vp[0], vp[4], vp[8]).Length(),
	}
}

// point returns the pixel position of p and its clip w,
// and false if it is behind the camera.
func (pj *projector) point(p [3]float32) (math32.Vector2, float32, bool) {
	c := pj.vp.MulVector4(math32.Vector4FromVector3(math32.Vector3FromArray(p), 1))
	if c.W <= 1e-6 {
		return math32.Vector2{}, 0, false
	}
	x := (c.X/c.W + 1) * 0.5 * pj.width
	y := (1 - c.Y/c.W) * 0.5 * pj.height
	return math32.Vec2(x, y), c.W, true
}

// radius returns the pixel radius of a world radius at clip w.
func (pj *projector) radius(r, w float32) float32 {
	return r * pj.scaleX / w * 0.5 * pj.width
}
