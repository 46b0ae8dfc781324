// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package camera

import (
	"cogentcore.org/forcegraph/math32"
)

// Camera2D is a pan and zoom view of the 2D world plane onto a
// canvas with its origin at the top left and Y pointing down.
// View changes set the target view, which the current view
// approaches in UpdateAnimation.
type Camera2D struct {

	// Width of the canvas in pixels.
	Width float32

	// Height of the canvas in pixels.
	Height float32

	// Offset is added to world points before scaling.
	Offset math32.Vector2

	// Scale is the number of pixels per world unit.
	Scale float32

	// TargetOffset is the Offset being animated toward.
	TargetOffset math32.Vector2

	// TargetScale is the Scale being animated toward.
	TargetScale float32

	MinScale float32 `default:"0.1"`
	MaxScale float32 `default:"10"`

	// IsAnimating is true while the current view differs from the target.
	IsAnimating bool

	// Easing is how UpdateAnimation moves toward the target.
	Easing Easing

	// vel has the spring velocities of offset x, y and scale.
	vel [3]float64
}

// NewCamera2D returns a new camera for a canvas of the given size,
// with the world origin at the center of the canvas.
func NewCamera2D(width, height float32) *Camera2D {
	cm := &Camera2D{MinScale: 0.1, MaxScale: 10}
	cm.Resize(width, height)
	cm.Scale = 1
	cm.TargetScale = 1
	return cm
}

func (cm *Camera2D) Resize(width, height float32) {
	cm.Width = width
	cm.Height = height
}

func (cm *Camera2D) halfSize() math32.Vector2 {
	return math32.Vec2(cm.Width/2, cm.Height/2)
}

// WorldToCanvas returns the canvas point of the given world point
// in the current view.
func (cm *Camera2D) WorldToCanvas(p math32.Vector2) math32.Vector2 {
	return p.Add(cm.Offset).MulScalar(cm.Scale).Add(cm.halfSize())
}

// CanvasToWorld is the inverse of WorldToCanvas.
func (cm *Camera2D) CanvasToWorld(p math32.Vector2) math32.Vector2 {
	return p.Sub(cm.halfSize()).DivScalar(cm.Scale).Sub(cm.Offset)
}

func (cm *Camera2D) clampScale(s float32) float32 {
	return math32.Clamp(s, cm.MinScale, cm.MaxScale)
}

// Pan moves the view by the given canvas delta, independent of scale.
func (cm *Camera2D) Pan(dx, dy float32) {
	if !finite(dx) || !finite(dy) {
		return
	}
	cm.TargetOffset.SetAdd(math32.Vec2(dx, dy).DivScalar(cm.Scale))
	cm.IsAnimating = true
}

// Zoom multiplies the target scale by factor, within the scale limits.
func (cm *Camera2D) Zoom(factor float32) {
	if !finite(factor) {
		return
	}
	cm.TargetScale = cm.clampScale(cm.TargetScale * factor)
	cm.IsAnimating = true
}

// ZoomAt zooms by factor while keeping the world point under the
// given canvas point in the same place, in the target view.
func (cm *Camera2D) ZoomAt(factor float32, canvas math32.Vector2) {
	if !finite(factor) {
		return
	}
	c := canvas.Sub(cm.halfSize())
	world := c.DivScalar(cm.TargetScale).Sub(cm.TargetOffset)
	cm.TargetScale = cm.clampScale(cm.TargetScale * factor)
	cm.TargetOffset = c.DivScalar(cm.TargetScale).Sub(world)
	cm.IsAnimating = true
}

// ResetView animates back to the world origin at scale 1.
func (cm *Camera2D) ResetView() {
	cm.TargetOffset = math32.Vector2{}
	cm.TargetScale = cm.clampScale(1)
	cm.IsAnimating = true
}

// FitToBounds animates to center the given box on the canvas at the
// largest scale that fits it inside the padding. An empty box is ignored.
func (cm *Camera2D) FitToBounds(bb BoundingBox, padding float32) {
	if bb.IsEmpty() {
		return
	}
	aw := max(cm.Width-2*padding, 1)
	ah := max(cm.Height-2*padding, 1)
	cm.TargetScale = cm.clampScale(min(aw/bb.Width(), ah/bb.Height()))
	cm.TargetOffset = bb.Center().Negate()
	cm.IsAnimating = true
}

// UpdateAnimation moves the current view toward the target, returning
// true while it is still animating. The view snaps to the target once
// the scale is within [ScaleEpsilon] and the offset within [OffsetEpsilon].
func (cm *Camera2D) UpdateAnimation() bool {
	if !cm.IsAnimating {
		return false
	}
	dx := cm.Easing.tween(&cm.Offset.X, cm.TargetOffset.X, &cm.vel[0], OffsetEpsilon)
	dy := cm.Easing.tween(&cm.Offset.Y, cm.TargetOffset.Y, &cm.vel[1], OffsetEpsilon)
	ds := cm.Easing.tween(&cm.Scale, cm.TargetScale, &cm.vel[2], ScaleEpsilon)
	cm.IsAnimating = !(dx && dy && ds)
	return cm.IsAnimating
}

// ViewProjectionMatrix returns the transform of world points to
// normalized device coordinates that matches WorldToCanvas,
// with canvas Y pointing down. Z is mapped to 0.
func (cm *Camera2D) ViewProjectionMatrix() math32.Matrix4 {
	sx := 2 * cm.Scale / cm.Width
	sy := -2 * cm.Scale / cm.Height
	var m math32.Matrix4
	m.Set(
		sx, 0, 0, sx*cm.Offset.X,
		0, sy, 0, sy*cm.Offset.Y,
		0, 0, 0, 0,
		0, 0, 0, 1,
	)
	return m
}

func finite(x float32) bool {
	return !math32.IsNaN(x) && !math32.IsInf(x, 0)
}
