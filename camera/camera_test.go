// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package camera

import (
	"math"
	"testing"

	"cogentcore.org/forcegraph/base/tolassert"
	"cogentcore.org/forcegraph/force"
	"cogentcore.org/forcegraph/math32"
	"github.com/stretchr/testify/assert"
)

// settle runs UpdateAnimation until it stops, returning the number of calls.
func settle(t *testing.T, update func() bool) int {
	for n := 1; n <= 10000; n++ {
		if !update() {
			return n
		}
	}
	t.Fatal("animation did not terminate")
	return 0
}

func TestBoundingBox(t *testing.T) {
	bb := NewBoundingBox()
	assert.True(t, bb.IsEmpty())
	bb.IncludePoint(math32.Vec2(2, 3))
	assert.False(t, bb.IsEmpty())
	assert.Equal(t, float32(1), bb.Width())
	assert.Equal(t, float32(1), bb.Height())
	bb.IncludeCircle(math32.Vec2(10, 3), 2)
	assert.Equal(t, math32.Vec2(2, 1), bb.Min)
	assert.Equal(t, math32.Vec2(12, 5), bb.Max)
	assert.Equal(t, float32(10), bb.Width())
	assert.Equal(t, math32.Vec2(7, 3), bb.Center())

	nodes := []force.Node{{Pos: math32.Vec3(-10, 0, 5), Radius: 1}, {Pos: math32.Vec3(10, 4, -5), Radius: 2}}
	b2 := BoundsOf(nodes)
	assert.Equal(t, math32.Vec2(-11, -1), b2.Min)
	assert.Equal(t, math32.Vec2(12, 6), b2.Max)
	b3 := BoundsOf3D(nodes)
	assert.Equal(t, math32.Vec3(-11, -1, -7), b3.Min)
	assert.Equal(t, math32.Vec3(12, 6, 6), b3.Max)
	assert.True(t, BoundsOf(nil).IsEmpty())
}

func TestCamera2DMapping(t *testing.T) {
	cm := NewCamera2D(800, 600)
	assert.Equal(t, math32.Vec2(400, 300), cm.WorldToCanvas(math32.Vector2{}))
	cm.Offset = math32.Vec2(12.5, -40)
	cm.Scale = 2.5
	for _, p := range []math32.Vector2{{}, {X: 100, Y: -3}, {X: -77.25, Y: 1234}} {
		c := cm.WorldToCanvas(p)
		w := cm.CanvasToWorld(c)
		tolassert.EqualTol(t, p.X, w.X, 1.0e-3)
		tolassert.EqualTol(t, p.Y, w.Y, 1.0e-3)
	}
	assert.Equal(t, math32.Vec2(400+(10+12.5)*2.5, 300+(0-40)*2.5), cm.WorldToCanvas(math32.Vec2(10, 0)))

	// the matrix agrees with the canvas mapping
	vp := cm.ViewProjectionMatrix()
	p := math32.Vec2(30, 20)
	c := cm.WorldToCanvas(p)
	ndc := vp.MulVector3AsPoint(math32.Vec3(p.X, p.Y, 0))
	tolassert.EqualTol(t, c.X/800*2-1, ndc.X, 1.0e-5)
	tolassert.EqualTol(t, 1-c.Y/600*2, ndc.Y, 1.0e-5)
}

func TestCamera2DFit(t *testing.T) {
	cm := NewCamera2D(800, 600)
	bb := BoundingBox{Min: math32.Vec2(-50, 0), Max: math32.Vec2(150, 100)}
	cm.FitToBounds(bb, 0)
	assert.Equal(t, float32(4), cm.TargetScale)
	assert.Equal(t, math32.Vec2(-50, -50), cm.TargetOffset)
	assert.True(t, cm.IsAnimating)

	settle(t, cm.UpdateAnimation)
	assert.False(t, cm.IsAnimating)
	assert.Equal(t, cm.TargetScale, cm.Scale)
	assert.Equal(t, cm.TargetOffset, cm.Offset)

	// the box center is at the canvas center
	assert.Equal(t, math32.Vec2(400, 300), cm.WorldToCanvas(bb.Center()))

	cm = NewCamera2D(800, 600)
	cm.FitToBounds(NewBoundingBox(), 10)
	assert.False(t, cm.IsAnimating)
	assert.Equal(t, float32(1), cm.TargetScale)

	// tiny boxes clamp to MaxScale
	cm.FitToBounds(BoundingBox{Max: math32.Vec2(1, 1)}, 0)
	assert.Equal(t, cm.MaxScale, cm.TargetScale)
}

func TestCamera2DPanZoom(t *testing.T) {
	cm := NewCamera2D(800, 600)
	cm.Scale = 2
	cm.Pan(10, -20)
	assert.Equal(t, math32.Vec2(5, -10), cm.TargetOffset)
	assert.True(t, cm.IsAnimating)

	cm.Zoom(100)
	assert.Equal(t, float32(10), cm.TargetScale)
	cm.Zoom(0.0001)
	assert.Equal(t, float32(0.1), cm.TargetScale)
	cm.Zoom(float32(math.NaN()))
	assert.Equal(t, float32(0.1), cm.TargetScale)

	cm = NewCamera2D(800, 600)
	cursor := math32.Vec2(600, 100)
	before := cm.CanvasToWorld(cursor)
	cm.ZoomAt(2, cursor)
	settle(t, cm.UpdateAnimation)
	after := cm.CanvasToWorld(cursor)
	tolassert.EqualTol(t, before.X, after.X, 1.0e-3)
	tolassert.EqualTol(t, before.Y, after.Y, 1.0e-3)

	cm.ResetView()
	settle(t, cm.UpdateAnimation)
	assert.Equal(t, float32(1), cm.Scale)
	assert.Equal(t, math32.Vector2{}, cm.Offset)
	assert.False(t, cm.UpdateAnimation())
}

func TestCamera2DSpring(t *testing.T) {
	cm := NewCamera2D(800, 600)
	cm.Easing = EaseSpring
	cm.Pan(300, 0)
	cm.Zoom(3)
	n := settle(t, cm.UpdateAnimation)
	assert.Greater(t, n, 1)
	assert.Equal(t, cm.TargetOffset, cm.Offset)
	assert.Equal(t, float32(3), cm.Scale)
	assert.Equal(t, "spring", EaseSpring.String())
}

func TestCamera3DPosition(t *testing.T) {
	cm := NewCamera3D(800, 600)
	tolassert.EqualTol(t, 800.0/600, cm.Aspect, 1.0e-6)
	cm.Elevation = 0
	p := cm.Position()
	tolassert.EqualTol(t, 0, p.X, 1.0e-3)
	tolassert.EqualTol(t, 0, p.Y, 1.0e-3)
	tolassert.EqualTol(t, 500, p.Z, 1.0e-3)

	cm.Azimuth = math32.Pi / 2
	cm.Center = math32.Vec3(1, 2, 3)
	p = cm.Position()
	tolassert.EqualTol(t, 501, p.X, 1.0e-2)
	tolassert.EqualTol(t, 2, p.Y, 1.0e-3)
	tolassert.EqualTol(t, 3, p.Z, 1.0e-2)

	// the center projects to the middle of the view
	ndc := cm.ViewProjectionMatrix()
	c := ndc.MulVector3AsPoint(cm.Center)
	tolassert.EqualTol(t, 0, c.X, 1.0e-4)
	tolassert.EqualTol(t, 0, c.Y, 1.0e-4)

	u := cm.Uniforms()
	assert.Equal(t, float32(1), u.Position[3])
	assert.Equal(t, cm.ViewMatrix(), u.View)
}

func TestCamera3DOrbit(t *testing.T) {
	cm := NewCamera3D(800, 600)
	cm.Orbit(0, 10)
	assert.Equal(t, float32(MaxElevation), cm.TargetElevation)
	cm.Orbit(0, -10)
	assert.Equal(t, float32(-MaxElevation), cm.TargetElevation)
	cm.Orbit(3*math32.Pi/2, 0)
	tolassert.EqualTol(t, -math32.Pi/2, cm.TargetAzimuth, 1.0e-5)
	cm.Orbit(float32(math.NaN()), 0)
	tolassert.EqualTol(t, -math32.Pi/2, cm.TargetAzimuth, 1.0e-5)

	// shortest arc across the wrap
	cm = NewCamera3D(800, 600)
	cm.Azimuth, cm.TargetAzimuth = 3.0, 3.0
	cm.Orbit(0.4, 0)
	assert.Less(t, cm.TargetAzimuth, float32(0))
	cm.UpdateAnimation()
	assert.Greater(t, cm.Azimuth, float32(3.0))
	settle(t, cm.UpdateAnimation)
	assert.Equal(t, cm.TargetAzimuth, cm.Azimuth)
}

func TestCamera3DZoom(t *testing.T) {
	cm := NewCamera3D(800, 600)
	cm.Zoom(0.5)
	assert.Equal(t, float32(250), cm.TargetDistance)
	cm.ZoomDelta(1)
	tolassert.EqualTol(t, 225, cm.TargetDistance, 1.0e-3)
	cm.Zoom(1.0e-6)
	assert.Equal(t, cm.MinDistance, cm.TargetDistance)
	cm.Zoom(1.0e9)
	assert.Equal(t, cm.MaxDistance, cm.TargetDistance)
	cm.Zoom(math32.Infinity)
	assert.Equal(t, cm.MaxDistance, cm.TargetDistance)
}

func TestCamera3DPanFit(t *testing.T) {
	cm := NewCamera3D(800, 600)
	cm.Elevation, cm.TargetElevation = 0, 0
	cm.Pan(100, 0)
	// looking down -Z, right is +X
	tolassert.EqualTol(t, -50, cm.TargetCenter.X, 1.0e-3)
	cm.Pan(0, 100)
	tolassert.EqualTol(t, 50, cm.TargetCenter.Y, 1.0e-3)

	cm = NewCamera3D(800, 600)
	box := math32.B3(-100, -50, -20, 100, 50, 20)
	cm.FitToBounds(box, 10)
	tolassert.EqualTol(t, 110/math32.Tan(math32.Pi/8), cm.TargetDistance, 1.0e-2)
	assert.Equal(t, math32.Vector3{}, cm.TargetCenter)
	cm.FitToBounds(math32.B3Empty(), 10)

	cm.Focus(math32.Vec3(5, 6, 7))
	settle(t, cm.UpdateAnimation)
	assert.Equal(t, math32.Vec3(5, 6, 7), cm.Center)
	assert.Equal(t, cm.TargetDistance, cm.Distance)

	cm.ResetView()
	cm.Easing = EaseSpring
	settle(t, cm.UpdateAnimation)
	assert.Equal(t, float32(500), cm.Distance)
	assert.Equal(t, math32.Vector3{}, cm.Center)
	assert.Equal(t, float32(0.3), cm.Elevation)
}

func TestAnimationFarFromOrigin(t *testing.T) {
	for _, ez := range []Easing{EaseLerp, EaseSpring} {
		t.Run(ez.String(), func(t *testing.T) {
			cm := NewCamera2D(800, 600)
			cm.Easing = ez
			cm.Pan(1e8, 0)
			settle(t, cm.UpdateAnimation)
			assert.Equal(t, cm.TargetOffset, cm.Offset)

			c3 := NewCamera3D(800, 600)
			c3.Easing = ez
			c3.Focus(math32.Vec3(3e7, 0, 0))
			settle(t, c3.UpdateAnimation)
			assert.Equal(t, math32.Vec3(3e7, 0, 0), c3.Center)
		})
	}
}

func TestNonFiniteInput(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	cm := NewCamera2D(800, 600)
	cm.Pan(nan, 0)
	cm.Pan(0, inf)
	assert.Equal(t, math32.Vector2{}, cm.TargetOffset)
	assert.False(t, cm.IsAnimating)
	assert.False(t, cm.UpdateAnimation())

	c3 := NewCamera3D(800, 600)
	c3.Focus(math32.Vec3(nan, 1, 2))
	assert.Equal(t, math32.Vector3{}, c3.TargetCenter)

	// a non-finite target set directly still terminates
	cm.TargetOffset.X = nan
	cm.IsAnimating = true
	settle(t, cm.UpdateAnimation)
}

func TestHitTesting(t *testing.T) {
	cm := NewCamera2D(800, 600)
	cm.Scale, cm.TargetScale = 2, 2
	nodes := []force.Node{
		{Pos: math32.Vec3(0, 0, 0), Radius: 10},
		{Pos: math32.Vec3(100, 0, 0)},
		{Pos: math32.Vec3(100, 100, 0), Radius: 5},
	}
	// node 0 is drawn at (400, 300) with radius 20
	i, ok := cm.NodeAt(math32.Vec2(415, 300), nodes)
	assert.True(t, ok)
	assert.Equal(t, 0, i)
	_, ok = cm.NodeAt(math32.Vec2(421, 300), nodes)
	assert.False(t, ok)

	// node 1 uses HitRadius, drawn at (600, 300)
	i, ok = cm.NodeAt(math32.Vec2(600, 300+2*HitRadius), nodes)
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	cm.Offset = math32.Vec2(-100, -100)
	i, ok = cm.NodeAt(math32.Vec2(400, 300), nodes)
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	cm.Offset = math32.Vector2{}
	edges := []force.Edge{{Source: 0, Target: 5}, {Source: 0, Target: 1}, {Source: 1, Target: 2}}
	// the midpoint of edge 1 is at world (50, 0), canvas (500, 300)
	i, ok = cm.EdgeAt(math32.Vec2(503, 304), nodes, edges, 6)
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = cm.EdgeAt(math32.Vec2(503, 304), nodes, edges, 5)
	assert.False(t, ok)
	_, ok = cm.EdgeAt(math32.Vec2(0, 0), nodes, nil, 100)
	assert.False(t, ok)
}
