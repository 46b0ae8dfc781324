// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"cogentcore.org/forcegraph/math32"
)

// DefaultLayoutRadius is the radius of the initial layouts.
const DefaultLayoutRadius = 100

// CircleLayout returns n points evenly spaced on a circle
// of the given radius in the XY plane, starting on +X.
func CircleLayout(n int, radius float32) []math32.Vector3 {
	ps := make([]math32.Vector3, n)
	for i := range ps {
		a := 2 * math32.Pi * float32(i) / float32(n)
		ps[i] = math32.Vec3(radius*math32.Cos(a), radius*math32.Sin(a), 0)
	}
	return ps
}

// FibonacciSphere returns n points evenly spread over a sphere
// of the given radius, on a Fibonacci lattice.
func FibonacciSphere(n int, radius float32) []math32.Vector3 {
	ps := make([]math32.Vector3, n)
	for i := range ps {
		fi := float32(i)
		theta := 2 * math32.Pi * fi / math32.Phi
		phi := math32.Acos(1 - 2*(fi+0.5)/float32(n))
		sp := math32.Sin(phi)
		ps[i] = math32.Vec3(radius*sp*math32.Cos(theta), radius*sp*math32.Sin(theta), radius*math32.Cos(phi))
	}
	return ps
}
