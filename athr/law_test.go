// athr/law_test.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package athr

import (
	"errors"
	gomath "math"
	"strings"
	"testing"

	av "github.com/salvapatuel/a32nx/aviation"
	"github.com/salvapatuel/a32nx/log"
	"github.com/salvapatuel/a32nx/rand"
)

func newTestLaw(t *testing.T) *Law {
	t.Helper()
	l, err := New(DefaultConfig(), av.StandardUnits(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

// cruiseInput is level flight at the selected speed with both levers in
// the CLB detent.
func cruiseInput() Input {
	return Input{
		Airspeed:      250,
		Mach:          0.45,
		SelectedSpeed: 250,
		SelectedMach:  0.45,
		Altitude:      10000,
		RadioAltitude: 2500,
		Phase:         PhaseClimb,
		N1:            [NumEngines]float64{80, 80},
		LeverAngle:    [NumEngines]float64{25, 25},
	}
}

// engage runs the law until it is active and returns the last output.
func engage(t *testing.T, l *Law, in Input) Output {
	t.Helper()
	in.Engage = true
	out := l.Step(in)
	in.Engage = false
	for range 2 {
		if out.Status == StatusActive {
			return out
		}
		out = l.Step(in)
	}
	t.Fatalf("law did not become active: %s", out)
	return out
}

func TestZeroInput(t *testing.T) {
	l := newTestLaw(t)
	out := l.Step(Input{})

	if out.Status != StatusDisengaged || out.Mode != ModeNone || out.Message != MessageNone {
		t.Errorf("got %s, expected disengaged with no mode or message", out)
	}
	for i, c := range out.Command {
		if c != DefaultConfig().IdleThrust {
			t.Errorf("engine %d: command %g, expected idle", i, c)
		}
	}
}

func TestEngageSequence(t *testing.T) {
	l := newTestLaw(t)
	in := cruiseInput()

	in.Engage = true
	out := l.Step(in)
	if out.Status != StatusArmed {
		t.Fatalf("cycle 1: status %s, expected ARMED", out.Status)
	}
	if out.Mode != ModeLeverClimb {
		t.Errorf("cycle 1: mode %s, expected LEVER_CLB", out.Mode)
	}

	in.Engage = false
	out = l.Step(in)
	if out.Status != StatusActive {
		t.Fatalf("cycle 2: status %s, expected ACTIVE", out.Status)
	}
	if out.Mode != ModeSpeed || out.LimitType != LimitClimb {
		t.Errorf("cycle 2: got %s, expected SPEED with CLB limit", out)
	}
	if out.Command != in.N1 {
		t.Errorf("cycle 2: command %v, expected measured N1 %v", out.Command, in.N1)
	}
}

func TestFaultDisconnect(t *testing.T) {
	l := newTestLaw(t)
	in := cruiseInput()
	engage(t, l, in)

	// Slow by 10 kt: the command creeps up.
	in.Airspeed = 240
	var out Output
	for range 20 {
		out = l.Step(in)
	}
	if out.Command[0] <= 80 {
		t.Fatalf("command %g did not increase", out.Command[0])
	}
	frozen := out.Command

	in.Faults = FaultAirData
	out = l.Step(in)
	if out.Status != StatusDisengaged {
		t.Errorf("status %s, expected DISENGAGED", out.Status)
	}
	if out.Message == MessageNone {
		t.Errorf("no message after fault disconnect")
	}
	if out.Command != frozen {
		t.Errorf("command %v, expected frozen %v", out.Command, frozen)
	}

	// The fault clears but thrust stays locked until the levers move.
	in.Faults = 0
	for range 5 {
		out = l.Step(in)
		if out.Message != MessageThrustLocked || out.Command != frozen {
			t.Fatalf("got %s, expected THR LK with frozen command", out)
		}
	}

	in.LeverAngle[1] = 27
	out = l.Step(in)
	if out.Message != MessageNone {
		t.Errorf("message %s after lever motion", out.Message)
	}
	if out.Command == frozen {
		t.Errorf("command still frozen after lever motion")
	}
}

func TestFaultWhileArmed(t *testing.T) {
	l := newTestLaw(t)
	in := cruiseInput()
	in.LeverAngle = [NumEngines]float64{35, 35}
	in.Engage = true
	if out := l.Step(in); out.Status != StatusArmed {
		t.Fatalf("status %s, expected ARMED", out.Status)
	}

	in.Engage = false
	in.Faults = FaultFCU
	out := l.Step(in)
	if out.Status != StatusDisengaged || out.Message != MessageNone {
		t.Errorf("got %s, expected DISENGAGED without message", out)
	}
}

func TestReengagementResetsToFeedback(t *testing.T) {
	l := newTestLaw(t)
	in := cruiseInput()
	engage(t, l, in)

	in.Airspeed = 230
	for range 40 {
		l.Step(in)
	}

	in.Disengage = true
	if out := l.Step(in); out.Status != StatusDisengaged {
		t.Fatalf("status %s after disengage", out.Status)
	}
	in.Disengage = false

	in.N1 = [NumEngines]float64{63.5, 64}
	out := engage(t, l, in)
	if out.Command != in.N1 {
		t.Errorf("command %v on re-engagement, expected %v", out.Command, in.N1)
	}
}

func TestCommandSlewBound(t *testing.T) {
	l := newTestLaw(t)
	cfg := l.Config()
	in := cruiseInput()
	prev := engage(t, l, in)

	cmdBound := max(cfg.Channels.Command.UpRate, -cfg.Channels.Command.DownRate)*cfg.CyclePeriod + 1e-9
	limBound := max(cfg.Channels.Limit.UpRate, -cfg.Channels.Limit.DownRate)*cfg.CyclePeriod + 1e-9

	r := rand.Make(0xa7a7)
	for i := range 4000 {
		in.Airspeed = r.Uniform(150, 350)
		in.SelectedSpeed = r.Uniform(150, 350)
		in.MachMode = r.Bool(0.1)
		in.ThrustModeRequest = r.Bool(0.1)
		in.ConfigIndex = r.Uniform(0, 100)
		in.N1 = [NumEngines]float64{r.Uniform(20, 100), r.Uniform(20, 100)}
		a := rand.Sample(&r, 5.0, 20.0, 25.0)
		in.LeverAngle = [NumEngines]float64{a, a}
		in.AlphaFloor = r.Bool(0.002)

		out := l.Step(in)
		if out.Status != StatusActive {
			t.Fatalf("iteration %d: status %s", i, out.Status)
		}
		for e := range NumEngines {
			if d := gomath.Abs(out.Command[e] - prev.Command[e]); d > cmdBound {
				t.Fatalf("iteration %d engine %d: command moved %g (%g -> %g)", i, e, d,
					prev.Command[e], out.Command[e])
			}
			if d := gomath.Abs(out.Limit[e] - prev.Limit[e]); d > limBound {
				t.Fatalf("iteration %d engine %d: limit moved %g (%g -> %g)", i, e, d,
					prev.Limit[e], out.Limit[e])
			}
		}
		prev = out
	}
}

func TestSpeedLaw(t *testing.T) {
	for _, tc := range []struct {
		name     string
		airspeed float64
		mach     bool
		sign     float64
	}{
		{"slow", 240, false, 1},
		{"fast", 260, false, -1},
		{"mach slow", 250, true, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLaw(t)
			in := cruiseInput()
			in.N1 = [NumEngines]float64{60, 60}
			engage(t, l, in)

			in.Airspeed = tc.airspeed
			if tc.mach {
				in.MachMode = true
				in.SelectedMach = in.Mach + 0.02
			}
			var out Output
			for range 40 {
				out = l.Step(in)
			}
			wantMode := ModeSpeed
			if tc.mach {
				wantMode = ModeMach
			}
			if out.Mode != wantMode {
				t.Errorf("mode %s, expected %s", out.Mode, wantMode)
			}
			if d := out.Command[0] - 60; d*tc.sign <= 0 {
				t.Errorf("command %g moved the wrong way from 60", out.Command[0])
			}
		})
	}
}

func TestAlphaFloorEngagement(t *testing.T) {
	l := newTestLaw(t)
	in := cruiseInput()
	in.AlphaFloor = true

	out := l.Step(in)
	if out.Status != StatusArmed || out.Mode != ModeAlphaFloor {
		t.Fatalf("cycle 1: got %s, expected ARMED A_FLOOR", out)
	}
	out = l.Step(in)
	if out.Status != StatusActive || out.Mode != ModeAlphaFloor || out.LimitType != LimitGoAround {
		t.Fatalf("cycle 2: got %s, expected ACTIVE A_FLOOR with GA limit", out)
	}
	if out.Message != MessageLeverTOGA {
		t.Errorf("message %s, expected LVR TOGA", out.Message)
	}

	in.AlphaFloor = false
	start := out.Command[0]
	for range 100 {
		out = l.Step(in)
		if out.Mode != ModeAlphaFloor || out.Status != StatusActive {
			t.Fatalf("latch lost: %s", out)
		}
	}
	if out.Command[0] <= start {
		t.Errorf("command %g did not rise from %g toward the GA limit", out.Command[0], start)
	}

	in.Disengage = true
	if out = l.Step(in); out.Status != StatusDisengaged || out.Mode != ModeNone {
		t.Errorf("got %s after disengage", out)
	}
}

func TestRetard(t *testing.T) {
	l := newTestLaw(t)
	in := cruiseInput()
	in.Phase = PhaseApproach
	in.N1 = [NumEngines]float64{50, 50}
	in.RadioAltitude = 500
	engage(t, l, in)

	in.RadioAltitude = 30
	var out Output
	for range 20 {
		out = l.Step(in)
	}
	if out.Mode != ModeRetard {
		t.Fatalf("mode %s, expected RETARD", out.Mode)
	}
	if out.Command[0] >= 50 {
		t.Errorf("command %g not decreasing toward idle", out.Command[0])
	}
}

func TestLeverMessages(t *testing.T) {
	for _, tc := range []struct {
		name      string
		phase     Phase
		levers    [NumEngines]float64
		engineOut bool
		wantMode  Mode
		wantMsg   Message
	}{
		{"climb in mct", PhaseClimb, [NumEngines]float64{35, 35}, false, ModeLeverMCT, MessageLeverClimb},
		{"climb in toga", PhaseClimb, [NumEngines]float64{45, 45}, false, ModeLeverTOGA, MessageLeverClimb},
		{"engine out toga", PhaseClimb, [NumEngines]float64{45, 45}, true, ModeLeverTOGA, MessageLeverMCT},
		{"cruise in mct", PhaseCruise, [NumEngines]float64{35, 35}, false, ModeLeverMCT, MessageNone},
		{"takeoff toga", PhaseTakeoff, [NumEngines]float64{45, 45}, false, ModeTOGA, MessageNone},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLaw(t)
			in := cruiseInput()
			in.Phase = tc.phase
			in.LeverAngle = tc.levers
			in.EngineOut = tc.engineOut
			in.Engage = true

			out := l.Step(in)
			if out.Status != StatusArmed {
				t.Fatalf("status %s, expected ARMED", out.Status)
			}
			if out.Mode != tc.wantMode || out.Message != tc.wantMsg {
				t.Errorf("got %s %s, expected %s %s", out.Mode, out.Message, tc.wantMode, tc.wantMsg)
			}
		})
	}
}

func TestLeverAsymmetry(t *testing.T) {
	l := newTestLaw(t)
	in := cruiseInput()
	in.LeverAngle = [NumEngines]float64{25, 10}
	out := engage(t, l, in)
	if out.Message != MessageLeverAsym {
		t.Errorf("message %s, expected LVR ASYM", out.Message)
	}
}

func TestManualThrust(t *testing.T) {
	l := newTestLaw(t)
	in := cruiseInput()
	in.LeverAngle = [NumEngines]float64{25, 35}
	out := l.Step(in)

	if out.Status != StatusDisengaged {
		t.Fatalf("status %s", out.Status)
	}
	if !approxEqual(out.Command[0], 89) || !approxEqual(out.Command[1], 93) {
		t.Errorf("manual commands %v, expected [89 93]", out.Command)
	}
	if out.LimitType != LimitMaxContinuous {
		t.Errorf("limit type %s, expected MCT", out.LimitType)
	}
}

func TestDeterminism(t *testing.T) {
	inputs := func() []Input {
		r := rand.Make(42)
		var seq []Input
		in := cruiseInput()
		for i := range 2000 {
			in.Engage = i == 3 || r.Bool(0.002)
			in.Disengage = r.Bool(0.002)
			in.Airspeed = 250 + r.Uniform(-15, 15)
			in.AlphaFloor = r.Bool(0.001)
			in.Faults = 0
			if r.Bool(0.001) {
				in.Faults = FaultEngine1
			}
			if r.Bool(0.01) {
				a := rand.Sample(&r, 0.0, 12.0, 25.0, 35.0, 45.0)
				in.LeverAngle = [NumEngines]float64{a, a}
			}
			seq = append(seq, in)
		}
		return seq
	}()

	run := func(l *Law, seq []Input) []Output {
		var out []Output
		for _, in := range seq {
			out = append(out, l.Step(in))
		}
		return out
	}

	a, b := newTestLaw(t), newTestLaw(t)
	oa, ob := run(a, inputs), run(b, inputs)
	for i := range oa {
		if oa[i] != ob[i] {
			t.Fatalf("cycle %d: %s != %s", i, oa[i], ob[i])
		}
	}

	// Rewinding to a snapshot replays identically.
	c := newTestLaw(t)
	run(c, inputs[:1000])
	snap := c.Snapshot()
	first := run(c, inputs[1000:])
	c.Restore(snap)
	second := run(c, inputs[1000:])
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("cycle %d after restore: %s != %s", 1000+i, first[i], second[i])
		}
		if first[i] != oa[1000+i] {
			t.Fatalf("cycle %d: %s != %s", 1000+i, first[i], oa[1000+i])
		}
	}
}

func TestNonFiniteInputs(t *testing.T) {
	l := newTestLaw(t)
	in := cruiseInput()
	engage(t, l, in)

	nan := gomath.NaN()
	in.Airspeed, in.SelectedSpeed, in.Mach = nan, nan, nan
	in.ConfigIndex, in.FlexDerate, in.RadioAltitude = nan, gomath.Inf(1), nan
	in.N1 = [NumEngines]float64{nan, gomath.Inf(-1)}
	for range 10 {
		out := l.Step(in)
		for i := range NumEngines {
			if gomath.IsNaN(out.Command[i]) || gomath.IsInf(out.Command[i], 0) ||
				gomath.IsNaN(out.Limit[i]) || gomath.IsInf(out.Limit[i], 0) {
				t.Fatalf("non-finite output %s", out)
			}
		}
	}

	in.LeverAngle = [NumEngines]float64{nan, nan}
	if out := l.Step(in); out.Status != StatusActive || out.Mode != ModeThrust {
		t.Errorf("NaN levers: got %s, expected ACTIVE THRUST at idle", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.ClimbSchedule.Breakpoints = []float64{0, 20, 30, 30, 60, 80, 100}
	cfg.Lever.Climb = 50
	cfg.Channels.Command.UpRate = -1

	_, err := New(cfg, av.StandardUnits(), nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("got %v, expected ErrInvalidConfig", err)
	}
	for _, s := range []string{"climb_schedule", "lever", "command: up_rate"} {
		if !strings.Contains(err.Error(), s) {
			t.Errorf("error %q does not mention %q", err, s)
		}
	}

	units := av.StandardUnits()
	units.FeetToMeters = 0
	if _, err := New(DefaultConfig(), units, nil); !errors.Is(err, ErrInvalidUnits) {
		t.Errorf("got %v, expected ErrInvalidUnits", err)
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`{"retard_altitude": 30, "lever": {"tolerance": 1}}`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.RetardAltitude != 30 || cfg.Lever.Tolerance != 1 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Lever.TOGA != 45 || cfg.CyclePeriod != 0.05 {
		t.Errorf("defaults lost: %+v", cfg)
	}

	if _, err := LoadConfig(strings.NewReader(`{"retard_altitud": 30}`)); err == nil {
		t.Errorf("expected error for unknown field")
	}
	if _, err := LoadConfig(strings.NewReader(`{"cycle_period": 0}`)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("got %v, expected ErrInvalidConfig", err)
	}
}

func TestConfigOwnedByLaw(t *testing.T) {
	cfg := DefaultConfig()
	l, err := New(cfg, av.StandardUnits(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ref := newTestLaw(t)

	cfg.Limits.ClimbSchedule.Breakpoints = nil
	cfg.Lever.Climb = 100
	c := l.Config()
	c.Limits.GoAroundSchedule.Values = nil
	c.Channels.Command.UpRate = 1000

	if bp := l.Config().Limits.ClimbSchedule.Breakpoints; len(bp) != 7 {
		t.Errorf("climb schedule has %d breakpoints after caller change, expected 7", len(bp))
	}

	in := cruiseInput()
	in.Engage = true
	for i := range 50 {
		if i == 40 {
			in.AlphaFloor = true
		}
		got, expected := l.Step(in), ref.Step(in)
		if got != expected {
			t.Fatalf("cycle %d: got %s, expected %s", i, got, expected)
		}
		in.Engage = false
		in.Airspeed = 240
	}
}

func TestStepDoesNotAllocate(t *testing.T) {
	if log.RaceEnabled || AthrLogEnabled(AthrLogShape) {
		t.Skip("instrumented build")
	}
	l := newTestLaw(t)
	in := cruiseInput()
	engage(t, l, in)
	in.Airspeed = 245

	if n := testing.AllocsPerRun(100, func() { l.Step(in) }); n != 0 {
		t.Errorf("Step allocates %g times per call", n)
	}
}
