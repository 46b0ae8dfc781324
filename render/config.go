// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"cogentcore.org/forcegraph/base/errors"
	"cogentcore.org/forcegraph/base/reflectx"
	"cogentcore.org/forcegraph/math32"
)

// Config has the settings shared by the renderers.
type Config struct {
	// Width of the frame in pixels.
	Width int `default:"800"`

	// Height of the frame in pixels.
	Height int `default:"600"`

	// Background is the RGBA clear color.
	Background [4]float32 `default:"0.1 0.1 0.15 1"`

	// EdgeColor is the RGB color of edges.
	EdgeColor [3]float32 `default:"0.39 0.39 0.47"`

	// EdgeAlpha is the opacity of edges that do not set their own.
	EdgeAlpha float32 `default:"0.6"`

	// SelectionGlow is the intensity of the highlight of
	// selected nodes, in [0, 1].
	SelectionGlow float32 `default:"0.3"`

	// MaxNodes is the node capacity of a renderer.
	MaxNodes int `default:"10000"`

	// MaxEdges is the edge capacity of a renderer.
	MaxEdges int `default:"20000"`

	// Labels selects the labels drawn.
	Labels LabelOptions
}

// DefaultConfig returns the config with all of its default values.
func DefaultConfig() Config {
	var cf Config
	errors.Log(reflectx.SetFromDefaultTags(&cf))
	return cf
}

// BackgroundColor returns the Background as a vector.
func (cf *Config) BackgroundColor() math32.Vector4 {
	return math32.Vector4FromSlice(cf.Background[:], math32.Vec4(0, 0, 0, 1))
}

// EdgeRGBA returns the edge color with the given alpha.
func (cf *Config) EdgeRGBA(alpha float32) math32.Vector4 {
	return math32.Vec4(cf.EdgeColor[0], cf.EdgeColor[1], cf.EdgeColor[2], alpha)
}

// LabelOptions are the toggles for which labels are drawn.
// All is a master switch over Nodes and Edges.
type LabelOptions struct {
	All   bool `default:"true"`
	Nodes bool `default:"true"`
	Edges bool `default:"true"`
}

// ShowNodeLabels returns whether node labels are drawn.
func (lo *LabelOptions) ShowNodeLabels() bool { return lo.All && lo.Nodes }

// ShowEdgeLabels returns whether edge labels are drawn.
func (lo *LabelOptions) ShowEdgeLabels() bool { return lo.All && lo.Edges }

func (lo *LabelOptions) ToggleAll()   { lo.All = !lo.All }
func (lo *LabelOptions) ToggleNodes() { lo.Nodes = !lo.Nodes }
func (lo *LabelOptions) ToggleEdges() { lo.Edges = !lo.Edges }

// SetAll sets the master switch.
func (lo *LabelOptions) SetAll(visible bool) { lo.All = visible }
