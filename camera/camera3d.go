// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package camera

import (
	"cogentcore.org/forcegraph/math32"
)

// MaxElevation is the elevation limit, short of the poles where
// the view basis degenerates.
const MaxElevation = math32.Pi/2 - 0.01

// Camera3D is an orbit camera at Distance from Center, with the
// Azimuth angle around the world up +Y axis measured from +Z, and
// the Elevation angle above the XZ plane. View changes set the
// Target fields, which the current view approaches in UpdateAnimation.
type Camera3D struct {
	// Center is the point the camera looks at.
	Center math32.Vector3

	Distance  float32
	Azimuth   float32
	Elevation float32

	TargetCenter    math32.Vector3
	TargetDistance  float32
	TargetAzimuth   float32
	TargetElevation float32

	// FOV is the vertical field of view in radians.
	FOV float32

	// Aspect is the width / height ratio.
	Aspect float32

	Near float32
	Far  float32

	MinDistance float32
	MaxDistance float32

	// IsAnimating is true while the current view differs from the target.
	IsAnimating bool

	// Easing is how UpdateAnimation moves toward the target.
	Easing Easing

	// vel has the spring velocities of distance, azimuth,
	// elevation and center x, y, z.
	vel [6]float64
}

// NewCamera3D returns a new camera for a canvas of the given
// size, looking at the origin.
func NewCamera3D(width, height float32) *Camera3D {
	cm := &Camera3D{}
	cm.Defaults()
	cm.Resize(width, height)
	return cm
}

// Defaults sets the default projection, limits and view.
func (cm *Camera3D) Defaults() {
	cm.FOV = math32.Pi / 4
	cm.Aspect = 1
	cm.Near = 0.1
	cm.Far = 10000
	cm.MinDistance = 1
	cm.MaxDistance = 10000
	cm.Distance, cm.TargetDistance = 500, 500
	cm.Elevation, cm.TargetElevation = 0.3, 0.3
	cm.Azimuth, cm.TargetAzimuth = 0, 0
	cm.Center, cm.TargetCenter = math32.Vector3{}, math32.Vector3{}
	cm.IsAnimating = false
	cm.vel = [6]float64{}
}

// Resize sets the aspect ratio for a canvas of the given size.
func (cm *Camera3D) Resize(width, height float32) {
	if height > 0 && width > 0 {
		cm.Aspect = width / height
	}
}

func (cm *Camera3D) SetAspect(aspect float32) {
	if aspect > 0 && finite(aspect) {
		cm.Aspect = aspect
	}
}

// orbitPosition returns the eye position for the given orbit.
func orbitPosition(center math32.Vector3, dist, az, el float32) math32.Vector3 {
	ce := math32.Cos(el)
	return math32.Vec3(
		dist*ce*math32.Sin(az)+center.X,
		dist*math32.Sin(el)+center.Y,
		dist*ce*math32.Cos(az)+center.Z,
	)
}

// Position returns the current eye position.
func (cm *Camera3D) Position() math32.Vector3 {
	return orbitPosition(cm.Center, cm.Distance, cm.Azimuth, cm.Elevation)
}

func (cm *Camera3D) clampDistance(d float32) float32 {
	return math32.Clamp(d, cm.MinDistance, cm.MaxDistance)
}

// Orbit rotates the target view by the given azimuth and elevation
// deltas in radians.
func (cm *Camera3D) Orbit(dAzimuth, dElevation float32) {
	if !finite(dAzimuth) || !finite(dElevation) {
		return
	}
	cm.TargetAzimuth = math32.WrapAngle(cm.TargetAzimuth + dAzimuth)
	cm.TargetElevation = math32.Clamp(cm.TargetElevation+dElevation, -MaxElevation, MaxElevation)
	cm.IsAnimating = true
}

// Zoom multiplies the target distance by factor: less than 1 moves closer.
func (cm *Camera3D) Zoom(factor float32) {
	if !finite(factor) {
		return
	}
	cm.TargetDistance = cm.clampDistance(cm.TargetDistance * factor)
	cm.IsAnimating = true
}

// ZoomDelta zooms by a scroll delta, with positive deltas moving closer.
func (cm *Camera3D) ZoomDelta(delta float32) {
	cm.Zoom(1 - delta*0.1)
}

// basis returns the forward, right and up directions of the camera.
func (cm *Camera3D) basis() (forward, right, up math32.Vector3) {
	forward = cm.Center.Sub(cm.Position()).Normal()
	right = forward.Cross(math32.Vector3Y)
	if right.LengthSquared() == 0 {
		right = math32.Vector3X
	}
	right = right.Normal()
	up = right.Cross(forward)
	return
}

// Pan moves the target center in the view plane by the given canvas
// delta, scaled by the distance.
func (cm *Camera3D) Pan(dx, dy float32) {
	if !finite(dx) || !finite(dy) {
		return
	}
	_, right, up := cm.basis()
	s := cm.Distance * 0.001
	cm.TargetCenter.SetSub(right.MulScalar(dx * s))
	cm.TargetCenter.SetAdd(up.MulScalar(dy * s))
	cm.IsAnimating = true
}

// Focus animates the center to the given point.
func (cm *Camera3D) Focus(point math32.Vector3) {
	if !finite(point.X) || !finite(point.Y) || !finite(point.Z) {
		return
	}
	cm.TargetCenter = point
	cm.IsAnimating = true
}

// ResetView animates back to the default view of the origin.
func (cm *Camera3D) ResetView() {
	cm.TargetCenter = math32.Vector3{}
	cm.TargetDistance = cm.clampDistance(500)
	cm.TargetAzimuth = 0
	cm.TargetElevation = 0.3
	cm.IsAnimating = true
}

// FitToBounds animates to center the box at the distance where its
// largest side plus padding on each side fills the field of view.
// An empty box is ignored.
func (cm *Camera3D) FitToBounds(box math32.Box3, padding float32) {
	if box.IsEmpty() {
		return
	}
	size := box.Size()
	maxDim := max(size.X, size.Y, size.Z) + 2*padding
	cm.TargetDistance = cm.clampDistance((maxDim / 2) / math32.Tan(cm.FOV/2))
	cm.TargetCenter = box.Center()
	cm.IsAnimating = true
}

// UpdateAnimation moves the current view toward the target, returning
// true while it is still animating. The azimuth takes the shortest arc.
// Each quantity snaps to its target once within [ScaleEpsilon] for
// angles and [OffsetEpsilon] for positions.
func (cm *Camera3D) UpdateAnimation() bool {
	if !cm.IsAnimating {
		return false
	}
	ez := cm.Easing
	done := ez.tween(&cm.Distance, cm.TargetDistance, &cm.vel[0], OffsetEpsilon)

	// azimuth eases over the wrapped difference
	var az float32
	daz := math32.AngleDelta(cm.Azimuth, cm.TargetAzimuth)
	if ez.tween(&az, daz, &cm.vel[1], ScaleEpsilon) {
		cm.Azimuth = cm.TargetAzimuth
	} else {
		cm.Azimuth = math32.WrapAngle(cm.Azimuth + az)
		done = false
	}
	done = ez.tween(&cm.Elevation, cm.TargetElevation, &cm.vel[2], ScaleEpsilon) && done
	done = ez.tween(&cm.Center.X, cm.TargetCenter.X, &cm.vel[3], OffsetEpsilon) && done
	done = ez.tween(&cm.Center.Y, cm.TargetCenter.Y, &cm.vel[4], OffsetEpsilon) && done
	done = ez.tween(&cm.Center.Z, cm.TargetCenter.Z, &cm.vel[5], OffsetEpsilon) && done
	cm.IsAnimating = !done
	return cm.IsAnimating
}

// ViewMatrix returns the look-at view transform of the current view.
func (cm *Camera3D) ViewMatrix() math32.Matrix4 {
	return math32.LookAt(cm.Position(), cm.Center, math32.Vector3Y)
}

// ProjectionMatrix returns the perspective projection.
func (cm *Camera3D) ProjectionMatrix() math32.Matrix4 {
	return math32.Perspective(cm.FOV, cm.Aspect, cm.Near, cm.Far)
}

// ViewProjectionMatrix returns the projection times the view.
func (cm *Camera3D) ViewProjectionMatrix() math32.Matrix4 {
	view := cm.ViewMatrix()
	prj := cm.ProjectionMatrix()
	var m math32.Matrix4
	m.MulMatrices(&prj, &view)
	return m
}

// Uniforms is the 144 byte camera uniform block.
type Uniforms struct {
	View       math32.Matrix4
	Projection math32.Matrix4

	// Position is the eye position, with w = 1.
	Position [4]float32
}

// Uniforms returns the uniform block of the current view.
func (cm *Camera3D) Uniforms() Uniforms {
	p := cm.Position()
	return Uniforms{
		View:       cm.ViewMatrix(),
		Projection: cm.ProjectionMatrix(),
		Position:   [4]float32{p.X, p.Y, p.Z, 1},
	}
}
