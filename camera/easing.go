// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package camera

import (
	"github.com/charmbracelet/harmonica"
)

// Easing is the method used to move the current view toward the
// target view in UpdateAnimation.
type Easing int32

const (
	// EaseLerp moves a fixed fraction [LerpFactor] of the remaining
	// distance on each update.
	EaseLerp Easing = iota

	// EaseSpring moves along a critically damped spring.
	EaseSpring
)

const (
	// LerpFactor is the fraction of the remaining distance
	// covered by each EaseLerp update.
	LerpFactor = 0.12

	// SpringFPS is the update rate assumed by EaseSpring.
	SpringFPS = 60

	// SpringFrequency is the angular frequency of EaseSpring.
	SpringFrequency = 6.0

	// SpringDamping is the damping ratio of EaseSpring.
	SpringDamping = 1.0

	// ScaleEpsilon is the snap distance for scale and angles.
	ScaleEpsilon = 0.001

	// OffsetEpsilon is the snap distance for offsets, distance
	// and target points.
	OffsetEpsilon = 0.1
)

var spring = harmonica.NewSpring(harmonica.FPS(SpringFPS), SpringFrequency, SpringDamping)

func (e Easing) String() string {
	if e == EaseSpring {
		return "spring"
	}
	return "lerp"
}

// tween eases one quantity with velocity state vel, which is only
// used by EaseSpring. It snaps to target, and clears vel, once
// the result is within eps, or once a step no longer changes it,
// which happens far from the origin where the float32 spacing
// exceeds the step. It returns true when snapped.
func (e Easing) tween(cur *float32, target float32, vel *float64, eps float32) bool {
	prev := *cur
	switch e {
	case EaseSpring:
		p, v := spring.Update(float64(*cur), *vel, float64(target))
		*cur = float32(p)
		*vel = v
	default:
		*cur += (target - *cur) * LerpFactor
	}
	d := target - *cur
	if (d < eps && d > -eps) || *cur == prev || !finite(*cur) {
		*cur = target
		*vel = 0
		return true
	}
	return false
}
