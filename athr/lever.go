// athr/lever.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package athr

import (
	"github.com/salvapatuel/a32nx/math"
)

// Detent classifies a lever angle. flex selects FLX rather than MCT in
// the shared detent.
func (lv LeverConfig) Detent(angle float64, flex bool) Detent {
	near := func(d float64) bool { return math.Abs(angle-d) <= lv.Tolerance }

	switch {
	case near(lv.Idle):
		return DetentIdle
	case angle < lv.Idle:
		return DetentReverse
	case near(lv.Climb):
		return DetentClimb
	case angle < lv.Climb:
		return DetentManual
	case near(lv.MCT):
		if flex {
			return DetentFlex
		}
		return DetentMCT
	case angle >= lv.TOGA-lv.Tolerance:
		return DetentTOGA
	default:
		return DetentAboveClimb
	}
}

// Clamp limits a lever angle to the mechanical travel; NaN angles read as
// IDLE.
func (lv LeverConfig) Clamp(angle float64) float64 {
	if !math.IsFinite(angle) {
		return lv.Idle
	}
	return math.Clamp(angle, lv.Reverse, lv.TOGA)
}

// inActiveRange reports whether the autothrust may be active with the
// most forward lever in detent d. MCT only counts with an engine out.
func inActiveRange(d Detent, engineOut bool) bool {
	switch d {
	case DetentIdle, DetentManual, DetentClimb:
		return true
	case DetentMCT:
		return engineOut
	default:
		return false
	}
}

// forward returns the most forward of the two detents.
func forward(d [NumEngines]Detent) Detent {
	f := d[0]
	for _, di := range d[1:] {
		if di.rank() > f.rank() {
			f = di
		}
	}
	return f
}

// togaLimitType returns the limit that applies in the TOGA detent.
func togaLimitType(p Phase) LimitType {
	if p == PhaseGround || p == PhaseTakeoff {
		return LimitTakeoff
	}
	return LimitGoAround
}

// leverLimits holds one engine's limit for each detent, used to turn a
// lever angle into an N1 demand.
type leverLimits struct {
	climb, mct, flex, toga, reverse float64
}

// demand converts a lever angle into the manual N1 demand: idle at IDLE,
// the detent limit in each detent and linear interpolation in between.
func (lv LeverConfig) demand(angle float64, d Detent, idle float64, l leverLimits) float64 {
	switch d {
	case DetentIdle:
		return idle
	case DetentReverse:
		return math.Lerp(math.Clamp(math.InvLerp(angle, lv.Idle, lv.Reverse), 0, 1), idle, l.reverse)
	case DetentManual:
		return math.Lerp(math.Clamp(math.InvLerp(angle, lv.Idle, lv.Climb), 0, 1), idle, l.climb)
	case DetentClimb:
		return l.climb
	case DetentMCT:
		return l.mct
	case DetentFlex:
		return l.flex
	case DetentTOGA:
		return l.toga
	default:
		if angle < lv.MCT {
			return math.Lerp(math.Clamp(math.InvLerp(angle, lv.Climb, lv.MCT), 0, 1), l.climb, l.mct)
		}
		return math.Lerp(math.Clamp(math.InvLerp(angle, lv.MCT, lv.TOGA), 0, 1), l.mct, l.toga)
	}
}
