// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package camera

import (
	"cogentcore.org/forcegraph/force"
	"cogentcore.org/forcegraph/math32"
)

// BoundingBox is a 2D world space box. It is empty when Min
// is greater than Max, as made by [NewBoundingBox].
type BoundingBox struct {
	Min, Max math32.Vector2
}

// NewBoundingBox returns a new empty bounding box.
func NewBoundingBox() BoundingBox {
	b := math32.B2Empty()
	return BoundingBox{Min: b.Min, Max: b.Max}
}

func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

func (bb *BoundingBox) IncludePoint(p math32.Vector2) {
	bb.Min = bb.Min.Min(p)
	bb.Max = bb.Max.Max(p)
}

// IncludeCircle expands the box to contain the given circle.
func (bb *BoundingBox) IncludeCircle(center math32.Vector2, radius float32) {
	r := math32.Vec2(radius, radius)
	bb.IncludePoint(center.Sub(r))
	bb.IncludePoint(center.Add(r))
}

// Width returns the width, which is at least 1.
func (bb BoundingBox) Width() float32 {
	return max(bb.Max.X-bb.Min.X, 1)
}

// Height returns the height, which is at least 1.
func (bb BoundingBox) Height() float32 {
	return max(bb.Max.Y-bb.Min.Y, 1)
}

func (bb BoundingBox) Center() math32.Vector2 {
	return bb.Min.Add(bb.Max).MulScalar(0.5)
}

// BoundsOf returns the 2D bounding box of the node circles.
func BoundsOf(nodes []force.Node) BoundingBox {
	bb := NewBoundingBox()
	for i := range nodes {
		bb.IncludeCircle(nodes[i].Pos.XY(), nodes[i].Radius)
	}
	return bb
}

// BoundsOf3D returns the bounding box of the node spheres.
func BoundsOf3D(nodes []force.Node) math32.Box3 {
	b := math32.B3Empty()
	for i := range nodes {
		b.ExpandBySphere(nodes[i].Pos, nodes[i].Radius)
	}
	return b
}
