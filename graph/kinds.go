// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"fmt"

	"cogentcore.org/forcegraph/math32"
)

// NodeKind is the schema element a node stands for,
// which determines its default color.
type NodeKind int32

const (
	NodeClass NodeKind = iota
	NodeSlot
	NodeEnum
	NodeType

	NodeKindsN
)

var nodeKindNames = [NodeKindsN]string{"class", "slot", "enum", "type"}

// Default node colors, by kind.
var (
	ClassColor = math32.Vec4(0.290, 0.565, 0.851, 1)
	SlotColor  = math32.Vec4(0.314, 0.784, 0.471, 1)
	EnumColor  = math32.Vec4(0.608, 0.349, 0.714, 1)
	TypeColor  = math32.Vec4(0.902, 0.494, 0.133, 1)
)

// AbstractAlpha is the color alpha of abstract nodes.
const AbstractAlpha = 0.7

func (nk NodeKind) String() string {
	if nk < 0 || nk >= NodeKindsN {
		return fmt.Sprintf("NodeKind(%d)", int32(nk))
	}
	return nodeKindNames[nk]
}

// Color returns the default color of the kind.
func (nk NodeKind) Color() math32.Vector4 {
	switch nk {
	case NodeSlot:
		return SlotColor
	case NodeEnum:
		return EnumColor
	case NodeType:
		return TypeColor
	default:
		return ClassColor
	}
}

func (nk NodeKind) MarshalText() ([]byte, error) {
	if nk < 0 || nk >= NodeKindsN {
		return nil, fmt.Errorf("graph.NodeKind: invalid value %d", int32(nk))
	}
	return []byte(nk.String()), nil
}

func (nk *NodeKind) UnmarshalText(text []byte) error {
	s := string(text)
	for i, n := range nodeKindNames {
		if s == n {
			*nk = NodeKind(i)
			return nil
		}
	}
	return fmt.Errorf("graph.NodeKind: unknown kind %q", s)
}

// EdgeKind is the schema relation an edge stands for,
// which determines its default label.
type EdgeKind int32

const (
	// EdgeLink is a plain link, with no default label.
	EdgeLink EdgeKind = iota
	EdgeSubclassOf
	EdgeMixin
	EdgeDomain
	EdgeRange
	EdgeInverseOf
	EdgeTypeOf

	EdgeKindsN
)

// edgeKindNames are the labels, and the names in graph files.
var edgeKindNames = [EdgeKindsN]string{"", "subclassOf", "mixin", "domain", "range", "inverseOf", "typeOf"}

// edgeKindAliases are the snake case names also accepted in graph files.
var edgeKindAliases = map[string]EdgeKind{
	"link":        EdgeLink,
	"subclass_of": EdgeSubclassOf,
	"inverse":     EdgeInverseOf,
	"inverse_of":  EdgeInverseOf,
	"type_of":     EdgeTypeOf,
}

// String returns the label of the kind, which is empty for EdgeLink.
func (ek EdgeKind) String() string {
	if ek < 0 || ek >= EdgeKindsN {
		return fmt.Sprintf("EdgeKind(%d)", int32(ek))
	}
	return edgeKindNames[ek]
}

func (ek EdgeKind) MarshalText() ([]byte, error) {
	if ek < 0 || ek >= EdgeKindsN {
		return nil, fmt.Errorf("graph.EdgeKind: invalid value %d", int32(ek))
	}
	if ek == EdgeLink {
		return []byte("link"), nil
	}
	return []byte(ek.String()), nil
}

func (ek *EdgeKind) UnmarshalText(text []byte) error {
	s := string(text)
	for i, n := range edgeKindNames {
		if s == n {
			*ek = EdgeKind(i)
			return nil
		}
	}
	if k, ok := edgeKindAliases[s]; ok {
		*ek = k
		return nil
	}
	return fmt.Errorf("graph.EdgeKind: unknown kind %q", s)
}
