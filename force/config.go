// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package force

import (
	"fmt"

	"cogentcore.org/forcegraph/math32"
)

// DefaultAlphaTicks is the number of ticks the default alpha decay
// takes to cool alpha from 1 to [Config.AlphaMin].
const DefaultAlphaTicks = 300

// Config has the parameters of a force simulation, shared by the
// sequential and parallel engines. It is created once at simulation
// construction; only alpha changes afterwards, and it is held by the
// simulation, not here.
type Config struct {

	// Dims is the number of spatial dimensions, 2 or 3.
	Dims int `default:"2"`

	// Charge is the default many-body strength of nodes;
	// negative values repel.
	Charge float32 `default:"-30"`

	// LinkDistance is the default rest length of edges.
	LinkDistance float32 `default:"50"`

	// LinkStrength is the default spring constant of edges.
	LinkStrength float32 `default:"1"`

	// CenterStrength scales the pull of every node toward Center.
	CenterStrength float32 `default:"0.03"`

	// Center is the point that the center force pulls toward.
	Center math32.Vector3

	// VelocityDecay is the fraction of velocity retained every tick
	// (friction), in [0, 1].
	VelocityDecay float32 `default:"0.6"`

	// Alpha is the initial temperature, restored by Reheat.
	Alpha float32 `default:"1"`

	// AlphaMin is the temperature at which the simulation stops.
	AlphaMin float32 `default:"0.001"`

	// AlphaDecay is the rate at which alpha approaches AlphaTarget
	// each tick; see [AlphaDecayFor].
	AlphaDecay float32 `default:"0.0227627"`

	// AlphaTarget is the temperature that alpha decays toward.
	AlphaTarget float32

	// MaxVelocity clamps each velocity component to
	// [-MaxVelocity, MaxVelocity].
	MaxVelocity float32 `default:"100"`

	// DistanceMin floors pair and edge distances to avoid
	// the singularity at zero.
	DistanceMin float32 `default:"1"`

	// DistanceMax is the distance beyond which pairs do not repel.
	DistanceMax float32 `default:"1000"`

	// Theta is the Barnes-Hut opening angle, reserved for
	// spatially accelerated many-body forces. It is passed
	// to the parallel kernels but not used by brute force.
	Theta float32 `default:"0.9"`
}

// AlphaDecayFor returns the alpha decay rate for which alpha
// cools from 1 to alphaMin in the given number of ticks,
// 1 - alphaMin^(1/ticks).
func AlphaDecayFor(alphaMin float32, ticks int) float32 {
	return 1 - math32.Pow(alphaMin, 1/float32(ticks))
}

// Defaults sets the default 2D parameters.
func (cf *Config) Defaults() {
	cf.Dims = 2
	cf.Charge = -30
	cf.LinkDistance = 50
	cf.LinkStrength = 1
	cf.CenterStrength = 0.03
	cf.Center = math32.Vector3{}
	cf.VelocityDecay = 0.6
	cf.Alpha = 1
	cf.AlphaMin = 0.001
	cf.AlphaDecay = AlphaDecayFor(cf.AlphaMin, DefaultAlphaTicks)
	cf.AlphaTarget = 0
	cf.MaxVelocity = 100
	cf.DistanceMin = 1
	cf.DistanceMax = 1000
	cf.Theta = 0.9
}

// Defaults3D sets the default 3D parameters, which spread
// nodes further apart than in 2D.
func (cf *Config) Defaults3D() {
	cf.Defaults()
	cf.Dims = 3
	cf.Charge = -50
	cf.LinkDistance = 60
}

// DefaultConfig returns a new 2D [Config] with default parameters.
func DefaultConfig() Config {
	cf := Config{}
	cf.Defaults()
	return cf
}

// DefaultConfig3D returns a new 3D [Config] with default parameters.
func DefaultConfig3D() Config {
	cf := Config{}
	cf.Defaults3D()
	return cf
}

// Validate returns an error if the parameters cannot
// produce a stable simulation.
func (cf *Config) Validate() error {
	switch {
	case cf.Dims != 2 && cf.Dims != 3:
		return fmt.Errorf("force.Config: Dims must be 2 or 3, not %d", cf.Dims)
	case cf.VelocityDecay < 0 || cf.VelocityDecay > 1:
		return fmt.Errorf("force.Config: VelocityDecay must be in [0, 1], not %g", cf.VelocityDecay)
	case cf.AlphaDecay <= 0 || cf.AlphaDecay > 1:
		return fmt.Errorf("force.Config: AlphaDecay must be in (0, 1], not %g", cf.AlphaDecay)
	case cf.DistanceMin <= 0:
		return fmt.Errorf("force.Config: DistanceMin must be positive, not %g", cf.DistanceMin)
	case cf.DistanceMax < cf.DistanceMin:
		return fmt.Errorf("force.Config: DistanceMax %g is less than DistanceMin %g", cf.DistanceMax, cf.DistanceMin)
	case cf.MaxVelocity <= 0:
		return fmt.Errorf("force.Config: MaxVelocity must be positive, not %g", cf.MaxVelocity)
	}
	return nil
}

// Cool returns alpha after one tick of cooling toward AlphaTarget.
func (cf *Config) Cool(alpha float32) float32 {
	return alpha + (cf.AlphaTarget-alpha)*cf.AlphaDecay
}
