// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config has the configuration of forcegraph commands:
// the engine, the simulation parameters and the render settings,
// with `default:` struct tags, TOML and YAML files, and merging
// of overrides.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"cogentcore.org/forcegraph/base/errors"
	"cogentcore.org/forcegraph/base/reflectx"
	"cogentcore.org/forcegraph/force"
	"cogentcore.org/forcegraph/parallel"
	"cogentcore.org/forcegraph/render"
	"github.com/jinzhu/copier"
)

// Engines are the force simulation engines.
type Engines string

const (
	// EngineCPU is the sequential [force.Simulation].
	EngineCPU Engines = "cpu"

	// EngineHost is the parallel simulation on the host backend.
	EngineHost Engines = "host"

	// EngineGPU is the parallel simulation on the WebGPU backend.
	EngineGPU Engines = "gpu"
)

// EngineValues returns all of the engines.
func EngineValues() []Engines { return []Engines{EngineCPU, EngineHost, EngineGPU} }

func (en Engines) String() string { return string(en) }

// IsValid returns whether the engine is one of [EngineValues].
func (en Engines) IsValid() bool {
	switch en {
	case EngineCPU, EngineHost, EngineGPU:
		return true
	}
	return false
}

// Set sets the engine from its name, case insensitively.
// It implements the pflag Value interface.
func (en *Engines) Set(s string) error {
	e := Engines(strings.ToLower(strings.TrimSpace(s)))
	if !e.IsValid() {
		return fmt.Errorf("unknown engine %q: must be one of %v", s, EngineValues())
	}
	*en = e
	return nil
}

// Type returns the flag type name.
func (en *Engines) Type() string { return "engine" }

func (en Engines) MarshalText() ([]byte, error) { return []byte(en), nil }

func (en *Engines) UnmarshalText(text []byte) error { return en.Set(string(text)) }

// Config is the configuration of a layout and its rendering.
type Config struct {

	// Includes are other config files that are opened before this one,
	// in order, so that this file overrides them. Relative paths are
	// relative to the directory of the including file.
	Includes []string `toml:",omitempty" yaml:",omitempty"`

	// Engine is the simulation engine.
	Engine Engines `default:"cpu"`

	// Threads is the number of concurrent work groups of the host
	// engine; 0 uses GOMAXPROCS.
	Threads int

	// MaxIterations is the fuse on the number of ticks of a layout.
	MaxIterations int `default:"10000"`

	// Simulation has the force parameters.
	Simulation force.Config

	// Render has the image settings.
	Render render.Config
}

// New returns a config with the default values for the given
// number of dimensions, 2 or 3.
func New(dims int) *Config {
	cfg := &Config{}
	SetFromDefaults(cfg)
	if dims == 3 {
		cfg.Simulation.Defaults3D()
	} else {
		cfg.Simulation.Defaults()
	}
	return cfg
}

// SetFromDefaults sets the values of the given config object
// from `default:` struct field tag values. Errors are automatically
// logged in addition to being returned.
func SetFromDefaults(cfg any) error {
	return errors.Log(reflectx.SetFromDefaultTags(cfg))
}

// Merge sets the fields of dst to those of the non-zero fields of
// overrides, recursing into nested structs, so that zero values of
// overrides mean "not overridden".
func Merge(dst, overrides *Config) error {
	err := copier.CopyWithOption(dst, overrides, copier.Option{IgnoreEmpty: true, DeepCopy: true})
	if err != nil {
		return fmt.Errorf("config.Merge: %w", err)
	}
	return nil
}

// Validate returns an error if the config cannot be used.
func (cfg *Config) Validate() error {
	var errs []error
	if !cfg.Engine.IsValid() {
		errs = append(errs, fmt.Errorf("unknown engine %q", cfg.Engine))
	}
	if cfg.Threads < 0 {
		errs = append(errs, fmt.Errorf("negative threads %d", cfg.Threads))
	}
	if cfg.Render.Width <= 0 || cfg.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render size %dx%d must be positive", cfg.Render.Width, cfg.Render.Height))
	}
	errs = append(errs, cfg.Simulation.Validate())
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// NewEngine returns a new simulation of the given nodes and edges on
// the configured engine. Engines that hold resources are freed by
// [Release].
func (cfg *Config) NewEngine(nodes []force.Node, edges []force.Edge) (force.Engine, error) {
	slog.Debug("config.NewEngine", "engine", cfg.Engine, "nodes", len(nodes), "edges", len(edges))
	switch cfg.Engine {
	case EngineCPU, "":
		sm, err := force.NewSimulation(nodes, edges, cfg.Simulation)
		if err != nil {
			return nil, err
		}
		return sm, nil
	case EngineHost:
		return newParallel(parallel.NewHostBackend(cfg.Threads), nodes, edges, cfg.Simulation)
	case EngineGPU:
		gb, err := parallel.NewGPUBackend()
		if err != nil {
			return nil, fmt.Errorf("config.NewEngine: %w", err)
		}
		return newParallel(gb, nodes, edges, cfg.Simulation)
	}
	return nil, fmt.Errorf("config.NewEngine: unknown engine %q", cfg.Engine)
}

// newParallel returns a parallel simulation on the backend as an
// Engine, never a typed nil.
func newParallel(bk parallel.Backend, nodes []force.Node, edges []force.Edge, cf force.Config) (force.Engine, error) {
	sm, err := parallel.NewSimulation(bk, nodes, edges, cf)
	if err != nil {
		return nil, err
	}
	return sm, nil
}

// Release frees the resources of the engine, if it has any.
func Release(en force.Engine) {
	if rl, ok := en.(interface{ Release() }); ok {
		rl.Release()
	}
}
