// athr/config.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package athr

import (
	"io"

	"github.com/salvapatuel/a32nx/math"
	"github.com/salvapatuel/a32nx/util"
)

// Config holds every tunable of the control law. It is established once,
// validated by New, and not modified afterward.
type Config struct {
	// CyclePeriod is the fixed control cycle in seconds; the per-cycle
	// slew bounds of the filter bank are derived from it.
	CyclePeriod float64 `json:"cycle_period"`

	// IdleThrust is the N1 commanded at the IDLE detent and the floor of
	// the speed law.
	IdleThrust float64 `json:"idle_thrust"`

	// RetardAltitude is the radio altitude (ft) below which RETARD is
	// selected on approach.
	RetardAltitude float64 `json:"retard_altitude"`

	Limits   LimitConfig    `json:"limits"`
	Lever    LeverConfig    `json:"lever"`
	Speed    SpeedConfig    `json:"speed"`
	Channels ChannelsConfig `json:"channels"`
}

type LimitConfig struct {
	Base LimitBases `json:"base"`

	// ClimbSchedule maps the configuration index to the gain applied to
	// the CLB, MCT, FLX and REV limits; GoAroundSchedule does the same for
	// TOGA and GA.
	ClimbSchedule    math.Table `json:"climb_schedule"`
	GoAroundSchedule math.Table `json:"go_around_schedule"`

	EngineScale [NumEngines]float64 `json:"engine_scale"`

	// Physical envelope of any limit or command, N1 %.
	Min float64 `json:"min"`
	Max float64 `json:"max"`

	// MaxFlexDerate is the largest derate (percent) a flex setting may
	// take off the FLX limit.
	MaxFlexDerate float64 `json:"max_flex_derate"`
}

// LimitBases gives the unscheduled value of each limit type. The reverse
// base is negative.
type LimitBases struct {
	Climb         float64 `json:"climb"`
	MaxContinuous float64 `json:"max_continuous"`
	Flex          float64 `json:"flex"`
	Takeoff       float64 `json:"takeoff"`
	GoAround      float64 `json:"go_around"`
	Reverse       float64 `json:"reverse"`
}

func (b LimitBases) For(t LimitType) float64 {
	switch t {
	case LimitClimb:
		return b.Climb
	case LimitMaxContinuous:
		return b.MaxContinuous
	case LimitFlex:
		return b.Flex
	case LimitTakeoff:
		return b.Takeoff
	case LimitGoAround:
		return b.GoAround
	case LimitReverse:
		return b.Reverse
	default:
		return 0
	}
}

// LeverConfig gives the thrust lever angle (degrees) of each detent.
type LeverConfig struct {
	Reverse float64 `json:"reverse"`
	Idle    float64 `json:"idle"`
	Climb   float64 `json:"climb"`
	MCT     float64 `json:"mct"` // shared by FLX
	TOGA    float64 `json:"toga"`

	// Tolerance is the half-width of each detent.
	Tolerance float64 `json:"tolerance"`
	// LockRelease is how far a lever must move to clear a thrust lock.
	LockRelease float64 `json:"lock_release"`
}

type SpeedConfig struct {
	// Gain is the N1 rate (%/s) commanded per knot of speed error before
	// the error schedule is applied.
	Gain float64 `json:"gain"`
	// ErrorSchedule scales Gain by the speed error (kt); positive errors
	// mean the aircraft is slow.
	ErrorSchedule math.Table `json:"error_schedule"`
}

// ChannelConfig parameterizes one lag and slew-limit channel. Rates are
// in %/s; DownRate is negative.
type ChannelConfig struct {
	TimeConstant float64 `json:"time_constant"`
	UpRate       float64 `json:"up_rate"`
	DownRate     float64 `json:"down_rate"`
}

type ChannelsConfig struct {
	Command ChannelConfig `json:"command"`
	Limit   ChannelConfig `json:"limit"`
}

// DefaultConfig returns the A320 parameter set.
func DefaultConfig() *Config {
	return &Config{
		CyclePeriod:    0.05,
		IdleThrust:     20,
		RetardAltitude: 40,
		Limits: LimitConfig{
			Base: LimitBases{
				Climb:         8.9,
				MaxContinuous: 9.3,
				Flex:          9.3,
				Takeoff:       9.5,
				GoAround:      9.5,
				Reverse:       -6.5,
			},
			ClimbSchedule: math.MakeTable(
				[]float64{0, 20, 30, 45, 60, 80, 100},
				[]float64{10, 10, 1.5, 1.5, 0.8, 0.5, 0.5}),
			GoAroundSchedule: math.MakeTable(
				[]float64{0, 20, 30, 40, 60, 80, 100},
				[]float64{10, 10, 1.25, 1.25, 0.8, 0.5, 0.5}),
			EngineScale:   [NumEngines]float64{1, 1},
			Min:           -80,
			Max:           104.5,
			MaxFlexDerate: 25,
		},
		Lever: LeverConfig{
			Reverse:     -20,
			Idle:        0,
			Climb:       25,
			MCT:         35,
			TOGA:        45,
			Tolerance:   1.5,
			LockRelease: 0.5,
		},
		Speed: SpeedConfig{
			Gain: 0.2,
			ErrorSchedule: math.MakeTable(
				[]float64{-100, -20, 0, 10, 100},
				[]float64{1.8, 1.8, 1, 1.2, 1.2}),
		},
		Channels: ChannelsConfig{
			Command: ChannelConfig{TimeConstant: 0.2, UpRate: 5, DownRate: -5},
			Limit:   ChannelConfig{TimeConstant: 5, UpRate: 10, DownRate: -10},
		},
	}
}

// LoadConfig decodes a JSON configuration on top of DefaultConfig, so that
// a file only needs to give the parameters it changes, and validates the
// result.
func LoadConfig(r io.Reader) (*Config, error) {
	c := DefaultConfig()
	if err := util.UnmarshalJSON(r, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate returns an error wrapping ErrInvalidConfig that lists every
// problem found in the configuration.
func (c *Config) Validate() error {
	var e util.ErrorLogger
	c.check(&e)
	return e.Err(ErrInvalidConfig)
}

func (c *Config) check(e *util.ErrorLogger) {
	defer e.CheckDepth(e.CurrentDepth())

	if !(c.CyclePeriod > 0) || !math.IsFinite(c.CyclePeriod) {
		e.ErrorString("%g: %v", c.CyclePeriod, ErrNonPositivePeriod)
	}
	if c.RetardAltitude < 0 {
		e.ErrorString("retard_altitude %g must not be negative", c.RetardAltitude)
	}

	e.Push("limits")
	l := &c.Limits
	if !(l.Min < l.Max) {
		e.ErrorString("min %g must be below max %g", l.Min, l.Max)
	}
	if c.IdleThrust < l.Min || c.IdleThrust > l.Max {
		e.ErrorString("idle_thrust %g outside [%g, %g]", c.IdleThrust, l.Min, l.Max)
	}
	for _, tbl := range []struct {
		name string
		t    math.Table
	}{{"climb_schedule", l.ClimbSchedule}, {"go_around_schedule", l.GoAroundSchedule}} {
		if err := tbl.t.Validate(); err != nil {
			e.Push(tbl.name)
			e.Error(err)
			e.Pop()
		}
	}
	for i, s := range l.EngineScale {
		if !(s > 0) || !math.IsFinite(s) {
			e.ErrorString("engine_scale[%d] %g must be positive", i, s)
		}
	}
	if l.Base.Reverse > 0 {
		e.ErrorString("base reverse %g must not be positive", l.Base.Reverse)
	}
	for _, t := range []LimitType{LimitClimb, LimitMaxContinuous, LimitFlex, LimitTakeoff, LimitGoAround} {
		if b := l.Base.For(t); !(b > 0) || !math.IsFinite(b) {
			e.ErrorString("base %s %g must be positive", t, b)
		}
	}
	if l.MaxFlexDerate < 0 || l.MaxFlexDerate >= 100 {
		e.ErrorString("max_flex_derate %g outside [0, 100)", l.MaxFlexDerate)
	}
	e.Pop()

	e.Push("lever")
	lv := &c.Lever
	if !(lv.Reverse < lv.Idle && lv.Idle < lv.Climb && lv.Climb < lv.MCT && lv.MCT < lv.TOGA) {
		e.Error(ErrDetentOrder)
	} else {
		gap := min(lv.Idle-lv.Reverse, lv.Climb-lv.Idle, lv.MCT-lv.Climb, lv.TOGA-lv.MCT)
		if !(lv.Tolerance > 0) || 2*lv.Tolerance >= gap {
			e.ErrorString("tolerance %g must be positive and less than half the smallest detent gap %g",
				lv.Tolerance, gap)
		}
	}
	if !(lv.LockRelease > 0) {
		e.ErrorString("lock_release %g must be positive", lv.LockRelease)
	}
	e.Pop()

	e.Push("speed")
	if c.Speed.Gain < 0 {
		e.ErrorString("gain %g must not be negative", c.Speed.Gain)
	}
	if err := c.Speed.ErrorSchedule.Validate(); err != nil {
		e.Push("error_schedule")
		e.Error(err)
		e.Pop()
	}
	e.Pop()

	e.Push("channels")
	for _, ch := range []struct {
		name string
		c    ChannelConfig
	}{{"command", c.Channels.Command}, {"limit", c.Channels.Limit}} {
		e.Push(ch.name)
		if ch.c.TimeConstant < 0 {
			e.ErrorString("time_constant %g must not be negative", ch.c.TimeConstant)
		}
		if !(ch.c.UpRate >= 0) {
			e.ErrorString("up_rate %g must not be negative", ch.c.UpRate)
		}
		if !(ch.c.DownRate <= 0) {
			e.ErrorString("down_rate %g must not be positive", ch.c.DownRate)
		}
		e.Pop()
	}
	e.Pop()
}
