// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"cogentcore.org/forcegraph/math32"
)

// SRGBToLinearComp converts an sRGB rgb component to linear space (removes gamma).
func SRGBToLinearComp(srgb float32) float32 {
	if srgb <= 0.04045 {
		return srgb / 12.92
	}
	return math32.Pow((srgb+0.055)/1.055, 2.4)
}

// SRGBFromLinearComp converts an sRGB rgb linear component
// to non-linear (gamma corrected) sRGB value
func SRGBFromLinearComp(lin float32) float32 {
	if lin <= 0.0031308 {
		return 12.92 * lin
	}
	return 1.055*math32.Pow(lin, 1/2.4) - 0.055
}

// SRGBToLinear converts an sRGB color with alpha to linear values,
// removing gamma correction. Shaders that write to an sRGB render
// target output linear colors, which the target encodes.
func SRGBToLinear(c math32.Vector4) math32.Vector4 {
	return math32.Vec4(SRGBToLinearComp(c.X), SRGBToLinearComp(c.Y), SRGBToLinearComp(c.Z), c.W)
}

// SRGBFromLinear converts a linear color with alpha to sRGB values,
// adding gamma correction.
func SRGBFromLinear(c math32.Vector4) math32.Vector4 {
	return math32.Vec4(SRGBFromLinearComp(c.X), SRGBFromLinearComp(c.Y), SRGBFromLinearComp(c.Z), c.W)
}
