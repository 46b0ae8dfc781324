// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"cogentcore.org/forcegraph/camera"
	"cogentcore.org/forcegraph/config"
	"cogentcore.org/forcegraph/force"
	"cogentcore.org/forcegraph/render"
	"github.com/spf13/cobra"
)

// maxAnimationSteps bounds the camera animation toward a fitted view,
// which always snaps to its target well before this.
const maxAnimationSteps = 10000

func newRenderCommand(opts *options) *cobra.Command {
	var output string
	var useGPU, noLabels bool
	var width, height int
	var padding float32
	var selected []string

	cmd := &cobra.Command{
		Use:   "render graph.json",
		Short: "Lay out a graph and render it to a PNG image",
		Long: `Runs the force simulation of the graph to convergence and renders the
result, fitted to the image, with the software canvas or with --gpu the
WebGPU renderer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			cfg, err := opts.config(func(ov *config.Config) {
				ov.Render.Width = width
				ov.Render.Height = height
			})
			if err != nil {
				return err
			}
			if noLabels {
				cfg.Render.Labels.SetAll(false)
			}
			if output == "" {
				output = strings.TrimSuffix(file, filepath.Ext(file)) + ".png"
			}
			lt, err := runLayout(cfg, file)
			if err != nil {
				return err
			}
			return renderLayout(cfg, lt, selected, padding, useGPU, output)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&output, "output", "o", "", "output PNG file (default the graph file with a .png extension)")
	fs.BoolVar(&useGPU, "gpu", false, "render with the WebGPU renderer instead of the software canvas")
	fs.BoolVar(&noLabels, "no-labels", false, "do not draw node and edge labels")
	fs.IntVar(&width, "width", 0, "image width in pixels (default from the config, else 800)")
	fs.IntVar(&height, "height", 0, "image height in pixels (default from the config, else 600)")
	fs.Float32Var(&padding, "padding", 40, "space around the graph in pixels, in 2D, or world units, in 3D")
	fs.StringSliceVarP(&selected, "select", "s", nil, "ids of nodes to highlight")
	return cmd
}

// renderLayout renders the nodes of the layout, with the nodes of the
// given ids selected, into the output PNG file.
func renderLayout(cfg *config.Config, lt *layout, selected []string, padding float32, useGPU bool, output string) error {
	rc := &cfg.Render
	sel := make([]int, 0, len(selected))
	for _, id := range selected {
		i, ok := lt.Graph.Index[id]
		if !ok {
			return fmt.Errorf("render: no node with the selected id %q", id)
		}
		sel = append(sel, i)
	}
	fr := render.NewFrame(lt.Nodes, lt.Graph.Edges, sel...)
	if len(fr.Nodes) > rc.MaxNodes || len(fr.Edges) > rc.MaxEdges {
		return fmt.Errorf("render: %d nodes and %d edges are more than the capacity of %d and %d: raise Render.MaxNodes and Render.MaxEdges",
			len(fr.Nodes), len(fr.Edges), rc.MaxNodes, rc.MaxEdges)
	}
	cam := fitCamera(rc, lt.Nodes, cfg.Simulation.Dims, padding)

	if useGPU {
		rd, err := render.NewRenderer(*rc)
		if err != nil {
			return err
		}
		defer rd.Release()
		if err := rd.Render(fr, cam); err != nil {
			return err
		}
		if err := rd.SavePNG(output); err != nil {
			return err
		}
	} else {
		cv := render.NewCanvas(*rc)
		cv.Render(fr, cam)
		if err := cv.SavePNG(output); err != nil {
			return err
		}
	}
	slog.Info("render", "output", output, "gpu", useGPU, "width", rc.Width, "height", rc.Height)
	return nil
}

// fitCamera returns a camera whose view is fitted to the nodes.
func fitCamera(rc *render.Config, nodes []force.Node, dims int, padding float32) render.Camera {
	w, h := float32(rc.Width), float32(rc.Height)
	if dims == 3 {
		cm := camera.NewCamera3D(w, h)
		cm.FitToBounds(camera.BoundsOf3D(nodes), padding)
		finishAnimation(cm.UpdateAnimation)
		return cm
	}
	cm := camera.NewCamera2D(w, h)
	cm.FitToBounds(camera.BoundsOf(nodes), padding)
	finishAnimation(cm.UpdateAnimation)
	return cm
}

func finishAnimation(update func() bool) {
	for i := 0; i < maxAnimationSteps && update(); i++ {
	}
}
