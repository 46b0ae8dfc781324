// Copyright 2019 Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Initially copied from G3N: github.com/g3n/engine/math32
// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// with modifications needed to suit Cogent Core functionality.

package math32

import (
	"fmt"
	"image/color"
)

// Vector4 is a vector/point in homogeneous coordinates with X, Y, Z and W components.
// It is also used for RGBA colors with components in [0, 1].
type Vector4 struct {
	X float32
	Y float32
	Z float32
	W float32
}

// Vec4 returns a new [Vector4] with the given x, y, z, and w components.
func Vec4(x, y, z, w float32) Vector4 {
	return Vector4{X: x, Y: y, Z: z, W: w}
}

// Vector4FromVector3 returns a new [Vector4] from the given [Vector3] and w component.
func Vector4FromVector3(v Vector3, w float32) Vector4 {
	return Vector4{X: v.X, Y: v.Y, Z: v.Z, W: w}
}

// Vector4FromSlice returns a new [Vector4] from up to four
// slice elements; missing elements take the value of def.
func Vector4FromSlice(s []float32, def Vector4) Vector4 {
	v := def
	for i, e := range s {
		switch i {
		case 0:
			v.X = e
		case 1:
			v.Y = e
		case 2:
			v.Z = e
		case 3:
			v.W = e
		}
	}
	return v
}

// Set sets this vector X, Y, Z and W components.
func (v *Vector4) Set(x, y, z, w float32) {
	v.X = x
	v.Y = y
	v.Z = z
	v.W = w
}

// String returns a string representation of the vector.
func (v Vector4) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", v.X, v.Y, v.Z, v.W)
}

// Vector3 returns the X, Y and Z components as a [Vector3].
func (v Vector4) Vector3() Vector3 {
	return Vector3{v.X, v.Y, v.Z}
}

// Array returns the components as an array.
func (v Vector4) Array() [4]float32 {
	return [4]float32{v.X, v.Y, v.Z, v.W}
}

// MulScalar returns a vector with each component multiplied by s.
func (v Vector4) MulScalar(s float32) Vector4 {
	return Vector4{v.X * s, v.Y * s, v.Z * s, v.W * s}
}

// Lerp returns vector with each components as the linear interpolated value of
// alpha between itself and the corresponding other component.
func (v Vector4) Lerp(other Vector4, alpha float32) Vector4 {
	return Vector4{v.X + (other.X-v.X)*alpha, v.Y + (other.Y-v.Y)*alpha,
		v.Z + (other.Z-v.Z)*alpha, v.W + (other.W-v.W)*alpha}
}

// PerspDiv returns the 3D point after dividing by the W component.
func (v Vector4) PerspDiv() Vector3 {
	if v.W == 0 {
		return Vector3{v.X, v.Y, v.Z}
	}
	return Vector3{v.X / v.W, v.Y / v.W, v.Z / v.W}
}

// RGBA returns the vector as a non-premultiplied 8 bit color,
// treating X, Y, Z, W as red, green, blue and alpha in [0, 1].
func (v Vector4) RGBA() color.NRGBA {
	c8 := func(f float32) uint8 {
		return uint8(Clamp(f, 0, 1)*255 + 0.5)
	}
	return color.NRGBA{c8(v.X), c8(v.Y), c8(v.Z), c8(v.W)}
}
