// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package camera

import (
	"cogentcore.org/forcegraph/force"
	"cogentcore.org/forcegraph/math32"
)

// HitRadius is the radius used for hit testing nodes that do not
// set one, the same as the radius they are drawn with.
const HitRadius = 8

// NodeAt returns the index of the first node whose drawn circle,
// in the current view, contains the given canvas point.
func (cm *Camera2D) NodeAt(canvas math32.Vector2, nodes []force.Node) (int, bool) {
	for i := range nodes {
		nd := &nodes[i]
		r := nd.Radius
		if r <= 0 {
			r = HitRadius
		}
		r *= cm.Scale
		if canvas.Sub(cm.WorldToCanvas(nd.Pos.XY())).LengthSquared() <= r*r {
			return i, true
		}
	}
	return -1, false
}

// EdgeAt returns the index of the first edge whose midpoint, in the
// current view, is less than threshold pixels from the given canvas
// point. Edges with out of range endpoints are skipped.
func (cm *Camera2D) EdgeAt(canvas math32.Vector2, nodes []force.Node, edges []force.Edge, threshold float32) (int, bool) {
	n := len(nodes)
	for i, ed := range edges {
		if ed.Source < 0 || ed.Source >= n || ed.Target < 0 || ed.Target >= n {
			continue
		}
		a := cm.WorldToCanvas(nodes[ed.Source].Pos.XY())
		b := cm.WorldToCanvas(nodes[ed.Target].Pos.XY())
		if canvas.DistanceTo(a.Add(b).MulScalar(0.5)) < threshold {
			return i, true
		}
	}
	return -1, false
}
