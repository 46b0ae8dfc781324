// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"cogentcore.org/forcegraph/math32"
)

// MeshVertex is a vertex of a unit sphere mesh, whose normal
// equals its position. The layout matches the mesh vertex buffer.
type MeshVertex struct {
	Position [3]float32
	Normal   [3]float32
}

// Icosphere returns the vertices and triangle indexes of a unit sphere
// made by subdividing an icosahedron the given number of times.
// Each subdivision splits every face into four, so there are
// 20 * 4^n faces: 2 subdivisions give 162 vertices and 320 faces.
func Icosphere(subdivisions int) ([]MeshVertex, []uint32) {
	t := float32(math32.Phi)
	pts := []math32.Vector3{
		{X: -1, Y: t, Z: 0}, {X: 1, Y: t, Z: 0}, {X: -1, Y: -t, Z: 0}, {X: 1, Y: -t, Z: 0},
		{X: 0, Y: -1, Z: t}, {X: 0, Y: 1, Z: t}, {X: 0, Y: -1, Z: -t}, {X: 0, Y: 1, Z: -t},
		{X: t, Y: 0, Z: -1}, {X: t, Y: 0, Z: 1}, {X: -t, Y: 0, Z: -1}, {X: -t, Y: 0, Z: 1},
	}
	for i := range pts {
		pts[i] = pts[i].Normal()
	}
	faces := [][3]uint32{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	for range subdivisions {
		mids := make(map[[2]uint32]uint32)
		mid := func(a, b uint32) uint32 {
			key := [2]uint32{min(a, b), max(a, b)}
			if i, ok := mids[key]; ok {
				return i
			}
			i := uint32(len(pts))
			pts = append(pts, pts[a].Add(pts[b]).Normal())
			mids[key] = i
			return i
		}
		next := make([][3]uint32, 0, 4*len(faces))
		for _, f := range faces {
			a := mid(f[0], f[1])
			b := mid(f[1], f[2])
			c := mid(f[2], f[0])
			next = append(next,
				[3]uint32{f[0], a, c},
				[3]uint32{f[1], b, a},
				[3]uint32{f[2], c, b},
				[3]uint32{a, b, c})
		}
		faces = next
	}
	verts := make([]MeshVertex, len(pts))
	for i, p := range pts {
		verts[i] = MeshVertex{Position: p.Array(), Normal: p.Array()}
	}
	idx := make([]uint32, 0, 3*len(faces))
	for _, f := range faces {
		idx = append(idx, f[0], f[1], f[2])
	}
	return verts, idx
}
