// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package force

import (
	"cogentcore.org/forcegraph/math32"
)

// Jiggle returns a deterministic unit direction for the node pair
// (a, b), used in place of the displacement when two nodes coincide.
// The Z component is 0 when dims is 2. The same hash is computed by
// the compute kernels.
func Jiggle(a, b int, dims int) math32.Vector3 {
	seed := float32(uint32(a)*12345 + uint32(b)*67890)
	j := math32.Vec3(jiggleHash(seed, 12.9898), jiggleHash(seed, 78.233), 0)
	if dims == 3 {
		j.Z = jiggleHash(seed, 37.719)
	}
	if j.LengthSquared() == 0 {
		return math32.Vector3X
	}
	return j.Normal()
}

// PairJiggle returns the jiggle direction pointing from node i to
// node j, seeded by the ordered (lower, higher) index pair so that
// both sides of a pair agree.
func PairJiggle(i, j int, dims int) math32.Vector3 {
	if i < j {
		return Jiggle(i, j, dims)
	}
	return Jiggle(j, i, dims).Negate()
}

func jiggleHash(seed, k float32) float32 {
	return math32.Fract(math32.Sin(seed*k)*43758.5453) - 0.5
}
