// athr/law.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package athr

import (
	"fmt"
	"log/slog"

	av "github.com/salvapatuel/a32nx/aviation"
	"github.com/salvapatuel/a32nx/log"
	"github.com/salvapatuel/a32nx/math"

	"github.com/brunoga/deep"
)

// Input is the set of measurements and requests supplied by the host
// simulation each cycle.
type Input struct {
	Airspeed          float64 `json:"airspeed"`       // kt
	Mach              float64 `json:"mach"`           // Mach number
	SelectedSpeed     float64 `json:"selected_speed"` // kt
	SelectedMach      float64 `json:"selected_mach"`
	MachMode          bool    `json:"mach_mode"`
	ThrustModeRequest bool    `json:"thrust_mode_request"`
	Altitude          float64 `json:"altitude"`       // ft
	RadioAltitude     float64 `json:"radio_altitude"` // ft
	ConfigIndex       float64 `json:"config_index"`
	FlexDerate        float64 `json:"flex_derate"` // %
	Phase             Phase   `json:"phase"`
	EngineOut         bool    `json:"engine_out"`

	N1         [NumEngines]float64 `json:"n1"`          // %
	LeverAngle [NumEngines]float64 `json:"lever_angle"` // deg

	Engage     bool   `json:"engage"`
	Disengage  bool   `json:"disengage"`
	Faults     Faults `json:"faults"`
	AlphaFloor bool   `json:"alpha_floor"`
}

// Output is the command published each cycle.
type Output struct {
	Command   [NumEngines]float64 `json:"command"` // N1 %
	Limit     [NumEngines]float64 `json:"limit"`   // N1 %
	LimitType LimitType           `json:"limit_type"`
	Mode      Mode                `json:"mode"`
	Status    Status              `json:"status"`
	Message   Message             `json:"message"`
}

func (o Output) String() string {
	return fmt.Sprintf("%s %s %s %s cmd [%.2f %.2f] lim [%.2f %.2f]", o.Status, o.Mode, o.Message,
		o.LimitType, o.Command[0], o.Command[1], o.Limit[0], o.Limit[1])
}

// noRadioAltitude stands in for an invalid radio altimeter reading.
const noRadioAltitude = 2500

// State is all of the law's mutable state; it is carried from one cycle
// to the next and nowhere else.
type State struct {
	Cycle      int64
	Engagement Engagement
	Arbitrator Arbitrator
	Bank       Bank
}

// Law is the autothrust control law. It is not safe for concurrent use;
// independent laws share nothing.
type Law struct {
	cfg   *Config
	units av.Units
	sched Scheduler
	lg    *log.Logger

	state State
}

// New validates the configuration and unit table and returns a law in the
// DISENGAGED state. The law keeps its own copy of cfg; later changes to
// cfg do not affect it.
func New(cfg *Config, units av.Units, lg *log.Logger) (*Law, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		c := deep.MustCopy(*cfg)
		cfg = &c
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := units.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUnits, err)
	}

	l := &Law{
		cfg:   cfg,
		units: units,
		sched: NewScheduler(&cfg.Limits),
		lg:    lg,
	}
	l.state.Bank = NewBank(cfg.Channels, cfg.CyclePeriod)
	return l, nil
}

// Config returns a copy of the law's configuration.
func (l *Law) Config() *Config {
	c := deep.MustCopy(*l.cfg)
	return &c
}

// Snapshot returns a copy of the law's state that later cycles do not
// affect.
func (l *Law) Snapshot() State {
	return deep.MustCopy(l.state)
}

// Restore returns the law to a state previously returned by Snapshot.
func (l *Law) Restore(s State) {
	l.state = deep.MustCopy(s)
}

// Step runs one control cycle.
func (l *Law) Step(in Input) Output {
	in = l.sanitize(in)
	s := &l.state
	s.Cycle++
	cfg := l.cfg

	var detents [NumEngines]Detent
	for i := range detents {
		detents[i] = cfg.Lever.Detent(in.LeverAngle[i], in.FlexDerate > 0)
	}
	lever := forward(detents)
	activeRange := inActiveRange(lever, in.EngineOut)
	alphaFloor := in.AlphaFloor && in.Phase.Airborne()
	togaLock := lever == DetentTOGA && (in.Phase == PhaseApproach || in.Phase == PhaseGoAround)

	// Engagement
	if s.Engagement.ReleaseLock(in.LeverAngle, cfg.Lever.LockRelease) {
		l.lg.Info("thrust lock released", slog.Int64("cycle", s.Cycle))
	}
	prev, wasLocked := s.Engagement.Status, s.Engagement.Locked
	status, msg := s.Engagement.Advance(Request{Engage: in.Engage, Disengage: in.Disengage}, in.Faults,
		Conditions{
			Qualified:  activeRange || alphaFloor || togaLock || s.Arbitrator.Holding(in.Phase),
			AutoEngage: alphaFloor,
		})
	if s.Engagement.Locked && !wasLocked {
		s.Engagement.Lock(in.LeverAngle)
	}
	if status != prev {
		l.lg.Info("autothrust status", slog.Int64("cycle", s.Cycle), slog.String("from", prev.String()),
			slog.String("to", status.String()), slog.String("faults", in.Faults.String()))
	}
	AthrLog(s.Cycle, AthrLogEngage, "%s -> %s lever %s faults %s", prev, status, lever, in.Faults)

	// Mode
	prevMode, prevLatch := s.Arbitrator.Mode, s.Arbitrator.Latched
	mode := s.Arbitrator.Select(status, ArbitrationInput{
		AlphaFloor:     in.AlphaFloor,
		Phase:          in.Phase,
		Lever:          lever,
		ActiveRange:    activeRange,
		RadioAltitude:  in.RadioAltitude,
		MachMode:       in.MachMode,
		ThrustRequest:  in.ThrustModeRequest,
		RetardAltitude: cfg.RetardAltitude,
	})
	if latch := s.Arbitrator.Latched; latch != prevLatch {
		l.lg.Info("mode latch", slog.Int64("cycle", s.Cycle), slog.String("from", prevLatch.String()),
			slog.String("to", latch.String()))
	}
	if mode != prevMode {
		AthrLog(s.Cycle, AthrLogMode, "%s -> %s", prevMode, mode)
	}

	// Limits
	lt := limitTypeFor(mode, lever, in.Phase)
	raw := l.sched.Limit(lt, in.ConfigIndex, l.sched.Condition(lt, in.FlexDerate))
	AthrLog(s.Cycle, AthrLogLimit, "%s config %.1f raw [%.2f %.2f]", lt, in.ConfigIndex, raw[0], raw[1])

	out := Output{LimitType: lt, Mode: mode, Status: status, Limit: raw}

	// Command
	dt := cfg.CyclePeriod
	switch {
	case status == StatusActive && prev != StatusActive:
		s.Bank.Reset(in.N1, raw)
		out.Command = in.N1

	case status == StatusActive:
		for i := range NumEngines {
			lim := s.Bank.Limit[i].Step(raw[i], dt)
			target := l.target(mode, i, &in, detents[i], lim, s.Bank.Command[i].Value())
			out.Command[i] = s.Bank.Command[i].Step(target, dt)
			out.Limit[i] = lim
		}
		AthrLog(s.Cycle, AthrLogShape, "cmd [%.2f %.2f] lim [%.2f %.2f]", out.Command[0], out.Command[1],
			out.Limit[0], out.Limit[1])

	case s.Engagement.Locked:
		out.Command = s.Bank.Commands()

	default:
		// Manual thrust follows the levers directly; only ACTIVE commands
		// go through the filter bank, so slew bounds hold between
		// consecutive ACTIVE cycles.
		for i := range NumEngines {
			out.Command[i] = l.leverDemand(i, &in, detents[i])
		}
	}

	if msg == MessageNone {
		msg = leverMessage(status, mode, detents, lever, &in)
	}
	out.Message = msg

	return out
}

// sanitize replaces non-finite measurements and clamps the rest to their
// physical ranges.
func (l *Law) sanitize(in Input) Input {
	finite := func(v, def float64) float64 {
		if math.IsFinite(v) {
			return v
		}
		return def
	}

	in.Airspeed = max(0, finite(in.Airspeed, 0))
	in.Mach = max(0, finite(in.Mach, 0))
	in.SelectedSpeed = finite(in.SelectedSpeed, in.Airspeed)
	in.SelectedMach = finite(in.SelectedMach, in.Mach)
	in.Altitude = finite(in.Altitude, 0)
	in.RadioAltitude = finite(in.RadioAltitude, noRadioAltitude)
	in.ConfigIndex = finite(in.ConfigIndex, 0)
	in.FlexDerate = math.Clamp(finite(in.FlexDerate, 0), 0, l.cfg.Limits.MaxFlexDerate)
	if in.Phase > PhaseGoAround {
		in.Phase = PhaseGround
	}
	for i := range NumEngines {
		in.LeverAngle[i] = l.cfg.Lever.Clamp(in.LeverAngle[i])
		in.N1[i] = math.Clamp(finite(in.N1[i], l.cfg.IdleThrust), l.cfg.Limits.Min, l.cfg.Limits.Max)
	}
	return in
}

// limitTypeFor returns the limit that applies for the mode; modes that
// follow the lever use the limit of the lever's detent.
func limitTypeFor(m Mode, lever Detent, p Phase) LimitType {
	switch m {
	case ModeAlphaFloor, ModeTOGALock:
		return LimitGoAround
	case ModeTOGA, ModeLeverTOGA:
		return togaLimitType(p)
	case ModeLeverFlex:
		return LimitFlex
	case ModeLeverMCT:
		return LimitMaxContinuous
	case ModeLeverClimb:
		return LimitClimb
	}

	switch lever {
	case DetentReverse:
		return LimitReverse
	case DetentAboveClimb, DetentMCT:
		return LimitMaxContinuous
	case DetentFlex:
		return LimitFlex
	case DetentTOGA:
		return togaLimitType(p)
	default:
		return LimitClimb
	}
}

func (l *Law) leverDemand(engine int, in *Input, d Detent) float64 {
	lim := l.sched.leverLimits(engine, in.ConfigIndex, in.FlexDerate, in.Phase)
	return l.cfg.Lever.demand(in.LeverAngle[engine], d, l.cfg.IdleThrust, lim)
}

// target returns the unshaped command for one engine in the given mode,
// clamped to the envelope. limit is the engine's shaped limit and prev
// its previous command.
func (l *Law) target(mode Mode, engine int, in *Input, d Detent, limit, prev float64) float64 {
	cfg := l.cfg
	idle := cfg.IdleThrust
	floor := min(idle, limit)

	var t float64
	switch mode {
	case ModeSpeed, ModeMach:
		err := in.SelectedSpeed - in.Airspeed
		if mode == ModeMach {
			err = l.units.MachToKnots(in.SelectedMach-in.Mach, in.Altitude)
		}
		rate := cfg.Speed.Gain * cfg.Speed.ErrorSchedule.Lookup(err) * err
		t = math.Clamp(prev+rate*cfg.CyclePeriod, floor, limit)

	case ModeThrust:
		if d.rank() >= DetentClimb.rank() {
			t = limit
		} else {
			t = l.leverDemand(engine, in, d)
		}

	case ModeRetard:
		t = floor

	case ModeAlphaFloor, ModeTOGALock:
		t = limit

	default:
		t = l.leverDemand(engine, in, d)
	}

	return math.Clamp(t, cfg.Limits.Min, cfg.Limits.Max)
}

// leverMessage returns the lever annunciation for the cycle, if any.
func leverMessage(status Status, mode Mode, detents [NumEngines]Detent, lever Detent, in *Input) Message {
	switch {
	case status == StatusActive && detents[0] != detents[1]:
		return MessageLeverAsym

	case mode == ModeAlphaFloor && lever != DetentTOGA:
		return MessageLeverTOGA

	case status != StatusArmed || !in.Phase.Airborne():
		return MessageNone

	case in.EngineOut:
		if lever == DetentFlex || lever == DetentTOGA {
			return MessageLeverMCT
		}

	case in.Phase == PhaseClimb:
		switch lever {
		case DetentFlex, DetentTOGA, DetentMCT, DetentAboveClimb:
			return MessageLeverClimb
		}
	}
	return MessageNone
}
