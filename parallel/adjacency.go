// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parallel

// Adjacency is the compressed sparse row incidence of edges on nodes,
// used to gather the per-edge link forces onto the nodes without
// write conflicts. The incident edges of node i are the entries
// from Offsets[i] up to Offsets[i+1].
type Adjacency struct {
	// Offsets has NodeCount+1 start offsets into Entries.
	Offsets []uint32

	// Entries has 2 entries per edge, each the edge index
	// shifted left by 1, with bit 0 set if the node is the target.
	Entries []uint32
}

// NewAdjacency returns the adjacency for n nodes and the given edges,
// whose endpoints must be less than n. Entries for each node are in
// edge order.
func NewAdjacency(n int, edges []GPUEdge) *Adjacency {
	ad := &Adjacency{
		Offsets: make([]uint32, n+1),
		Entries: make([]uint32, 2*len(edges)),
	}
	for _, e := range edges {
		ad.Offsets[e.Source+1]++
		ad.Offsets[e.Target+1]++
	}
	for i := range n {
		ad.Offsets[i+1] += ad.Offsets[i]
	}
	next := make([]uint32, n)
	copy(next, ad.Offsets[:n])
	for ei, e := range edges {
		ad.Entries[next[e.Source]] = uint32(ei) << 1
		next[e.Source]++
		ad.Entries[next[e.Target]] = uint32(ei)<<1 | 1
		next[e.Target]++
	}
	return ad
}

// Incident returns the entries for node i.
func (ad *Adjacency) Incident(i int) []uint32 {
	return ad.Entries[ad.Offsets[i]:ad.Offsets[i+1]]
}

// EntryEdge returns the edge index and whether the node is
// the target, for the given entry.
func EntryEdge(entry uint32) (edge int, isTarget bool) {
	return int(entry >> 1), entry&1 == 1
}
