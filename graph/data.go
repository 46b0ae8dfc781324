// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"cogentcore.org/forcegraph/force"
)

// Data is a graph as supplied by a collaborator, with nodes
// identified by id and edges referring to those ids.
type Data struct {
	Nodes []NodeInput `json:"nodes"`
	Edges []EdgeInput `json:"edges"`
}

// NodeInput is one node of [Data].
type NodeInput struct {
	ID       string   `json:"id"`
	Label    string   `json:"label,omitempty"`
	Kind     NodeKind `json:"kind"`
	Abstract bool     `json:"abstract,omitempty"`

	// Position is the initial position, with 2 or 3 coordinates.
	// Nodes without one are placed on the initial layout.
	Position []float32 `json:"position,omitempty"`

	// Fixed pins the node at its Position.
	Fixed bool `json:"fixed,omitempty"`

	// Color is RGB or RGBA in [0, 1], overriding the kind color.
	Color []float32 `json:"color,omitempty"`

	// Radius is the display radius; 0 uses the default for the dimensions.
	Radius float32 `json:"radius,omitempty"`
}

// EdgeInput is one edge of [Data].
type EdgeInput struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`

	// Label defaults to the kind name.
	Label string `json:"label,omitempty"`

	// Distance is the rest length; 0 uses the simulation default.
	Distance float32 `json:"distance,omitempty"`

	// Strength is the spring constant; 0 uses the simulation default.
	Strength float32 `json:"strength,omitempty"`
}

// Load reads JSON graph data from the given reader.
func Load(r io.Reader) (*Data, error) {
	dt := &Data{}
	dec := json.NewDecoder(bufio.NewReader(r))
	if err := dec.Decode(dt); err != nil {
		return nil, fmt.Errorf("graph.Load: %w", err)
	}
	return dt, nil
}

// Open reads JSON graph data from the given file.
func Open(filename string) (*Data, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dt, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return dt, nil
}

// Write writes the data as indented JSON.
func (dt *Data) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dt)
}

// Save writes the data as indented JSON to the given file.
func (dt *Data) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if err := dt.Write(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// SetPositions sets the position of each node input to that of the
// node at the same index, with 2 or 3 coordinates for dims.
func (dt *Data) SetPositions(nodes []force.Node, dims int) {
	for i := range min(len(dt.Nodes), len(nodes)) {
		p := nodes[i].Pos
		if dims == 3 {
			dt.Nodes[i].Position = []float32{p.X, p.Y, p.Z}
		} else {
			dt.Nodes[i].Position = []float32{p.X, p.Y}
		}
	}
}
