// athr/limits.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package athr

import (
	"github.com/salvapatuel/a32nx/math"
)

// Scheduler computes per-engine thrust limits from the limit type, the
// configuration index and a derate condition. It holds only configuration
// and may be shared.
type Scheduler struct {
	cfg *LimitConfig
}

func NewScheduler(cfg *LimitConfig) Scheduler {
	return Scheduler{cfg: cfg}
}

func (s Scheduler) schedule(t LimitType) *math.Table {
	if t == LimitTakeoff || t == LimitGoAround {
		return &s.cfg.GoAroundSchedule
	}
	return &s.cfg.ClimbSchedule
}

// Gain returns the schedule gain for the limit type at the given
// configuration index.
func (s Scheduler) Gain(t LimitType, configIndex float64) float64 {
	if t == LimitNone {
		return 0
	}
	return s.schedule(t).Lookup(configIndex)
}

// EngineLimit returns the limit of a single engine.
func (s Scheduler) EngineLimit(t LimitType, engine int, configIndex, condition float64) float64 {
	if t == LimitNone {
		return 0
	}
	v := s.cfg.Base.For(t) * s.Gain(t, configIndex) * s.cfg.EngineScale[engine] * condition
	if !math.IsFinite(v) {
		return 0
	}
	return math.Clamp(v, s.cfg.Min, s.cfg.Max)
}

func (s Scheduler) Limit(t LimitType, configIndex, condition float64) [NumEngines]float64 {
	var l [NumEngines]float64
	for i := range l {
		l[i] = s.EngineLimit(t, i, configIndex, condition)
	}
	return l
}

// Condition returns the derate condition for the limit type: the flex
// derate reduces the FLX limit, every other limit is undiminished.
func (s Scheduler) Condition(t LimitType, flexDerate float64) float64 {
	if t != LimitFlex || !math.IsFinite(flexDerate) {
		return 1
	}
	return 1 - math.Clamp(flexDerate, 0, s.cfg.MaxFlexDerate)/100
}

// leverLimits returns the per-detent limits of one engine.
func (s Scheduler) leverLimits(engine int, configIndex, flexDerate float64, p Phase) leverLimits {
	toga := togaLimitType(p)
	return leverLimits{
		climb:   s.EngineLimit(LimitClimb, engine, configIndex, 1),
		mct:     s.EngineLimit(LimitMaxContinuous, engine, configIndex, 1),
		flex:    s.EngineLimit(LimitFlex, engine, configIndex, s.Condition(LimitFlex, flexDerate)),
		toga:    s.EngineLimit(toga, engine, configIndex, 1),
		reverse: s.EngineLimit(LimitReverse, engine, configIndex, 1),
	}
}
