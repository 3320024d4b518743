// athr/arbitrate_test.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package athr

import (
	"testing"

	"github.com/salvapatuel/a32nx/rand"
)

func climbInput() ArbitrationInput {
	return ArbitrationInput{
		Phase:          PhaseClimb,
		Lever:          DetentClimb,
		ActiveRange:    true,
		RadioAltitude:  2500,
		RetardAltitude: 40,
	}
}

func TestArbitrationPriority(t *testing.T) {
	with := func(f func(*ArbitrationInput)) ArbitrationInput {
		in := climbInput()
		f(&in)
		return in
	}

	tests := []struct {
		name   string
		status Status
		in     ArbitrationInput
		want   Mode
	}{
		{"disengaged", StatusDisengaged, climbInput(), ModeNone},
		{"speed", StatusActive, climbInput(), ModeSpeed},
		{"mach", StatusActive, with(func(in *ArbitrationInput) { in.MachMode = true }), ModeMach},
		{"thrust request", StatusActive, with(func(in *ArbitrationInput) {
			in.MachMode = true
			in.ThrustRequest = true
		}), ModeThrust},
		{"thrust below climb", StatusActive, with(func(in *ArbitrationInput) { in.Lever = DetentManual }), ModeThrust},
		{"thrust at idle", StatusActive, with(func(in *ArbitrationInput) { in.Lever = DetentIdle }), ModeThrust},
		{"alpha floor", StatusActive, with(func(in *ArbitrationInput) { in.AlphaFloor = true }), ModeAlphaFloor},
		{"alpha floor armed", StatusArmed, with(func(in *ArbitrationInput) { in.AlphaFloor = true }), ModeAlphaFloor},
		{"alpha floor on ground", StatusActive, with(func(in *ArbitrationInput) {
			in.AlphaFloor = true
			in.Phase = PhaseGround
		}), ModeSpeed},
		{"toga lock", StatusActive, with(func(in *ArbitrationInput) {
			in.Phase = PhaseApproach
			in.Lever = DetentTOGA
			in.ActiveRange = false
			in.RadioAltitude = 20
		}), ModeTOGALock},
		{"alpha floor beats toga lock", StatusActive, with(func(in *ArbitrationInput) {
			in.Phase = PhaseGoAround
			in.Lever = DetentTOGA
			in.ActiveRange = false
			in.AlphaFloor = true
		}), ModeAlphaFloor},
		{"retard", StatusActive, with(func(in *ArbitrationInput) {
			in.Phase = PhaseApproach
			in.RadioAltitude = 30
		}), ModeRetard},
		{"no retard above altitude", StatusActive, with(func(in *ArbitrationInput) {
			in.Phase = PhaseApproach
			in.RadioAltitude = 100
		}), ModeSpeed},
		{"no retard when armed", StatusArmed, with(func(in *ArbitrationInput) {
			in.Phase = PhaseApproach
			in.RadioAltitude = 30
		}), ModeLeverClimb},
		{"takeoff toga", StatusArmed, with(func(in *ArbitrationInput) {
			in.Phase = PhaseTakeoff
			in.Lever = DetentTOGA
			in.ActiveRange = false
		}), ModeTOGA},
		{"lever toga", StatusArmed, with(func(in *ArbitrationInput) {
			in.Lever = DetentTOGA
			in.ActiveRange = false
		}), ModeLeverTOGA},
		{"lever flex", StatusArmed, with(func(in *ArbitrationInput) {
			in.Phase = PhaseTakeoff
			in.Lever = DetentFlex
			in.ActiveRange = false
		}), ModeLeverFlex},
		{"lever mct", StatusArmed, with(func(in *ArbitrationInput) {
			in.Lever = DetentMCT
			in.ActiveRange = false
		}), ModeLeverMCT},
		{"lever mct engine out active", StatusActive, with(func(in *ArbitrationInput) {
			in.Lever = DetentMCT
		}), ModeSpeed},
		{"lever climb armed", StatusArmed, climbInput(), ModeLeverClimb},
		{"armed manual", StatusArmed, with(func(in *ArbitrationInput) { in.Lever = DetentManual }), ModeNone},
		{"armed above climb", StatusArmed, with(func(in *ArbitrationInput) {
			in.Lever = DetentAboveClimb
			in.ActiveRange = false
		}), ModeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Arbitrator
			if m := a.Select(tt.status, tt.in); m != tt.want {
				t.Errorf("got %s, expected %s", m, tt.want)
			}
		})
	}
}

func TestAlphaFloorLatch(t *testing.T) {
	var a Arbitrator
	in := climbInput()
	if m := a.Select(StatusActive, in); m != ModeSpeed {
		t.Fatalf("got %s, expected SPEED", m)
	}

	in.AlphaFloor = true
	if m := a.Select(StatusActive, in); m != ModeAlphaFloor {
		t.Fatalf("got %s, expected A_FLOOR", m)
	}

	// Nothing short of a reset releases the latch.
	r := rand.Make(0xf1007)
	for i := range 2000 {
		in := ArbitrationInput{
			AlphaFloor:     r.Bool(0.2),
			Phase:          rand.Sample(&r, PhaseTakeoff, PhaseClimb, PhaseCruise, PhaseDescent, PhaseApproach, PhaseGoAround),
			Lever:          rand.Sample(&r, DetentReverse, DetentIdle, DetentManual, DetentClimb, DetentAboveClimb, DetentMCT, DetentFlex, DetentTOGA),
			ActiveRange:    r.Bool(0.5),
			RadioAltitude:  r.Uniform(0, 2500),
			MachMode:       r.Bool(0.5),
			ThrustRequest:  r.Bool(0.5),
			RetardAltitude: 40,
		}
		status := rand.Sample(&r, StatusArmed, StatusActive)
		if m := a.Select(status, in); m != ModeAlphaFloor {
			t.Fatalf("iteration %d: latch released to %s with %+v", i, m, in)
		}
	}

	// Reset on the ground recalls SPEED when it is still the result.
	in = climbInput()
	in.Phase = PhaseGround
	if m := a.Select(StatusActive, in); m != ModeSpeed {
		t.Errorf("after reset got %s, expected SPEED", m)
	}
	if a.Latched != ModeNone {
		t.Errorf("latch %s after reset", a.Latched)
	}
}

func TestLatchResetFallsBackToThrust(t *testing.T) {
	var a Arbitrator
	in := climbInput()
	a.Select(StatusActive, in)
	in.AlphaFloor = true
	a.Select(StatusActive, in)

	// The recalled SPEED no longer applies once Mach is selected.
	in = climbInput()
	in.Phase = PhaseGround
	in.MachMode = true
	if m := a.Select(StatusActive, in); m != ModeThrust {
		t.Errorf("got %s, expected THRUST", m)
	}
	// And on the following cycle normal arbitration resumes.
	if m := a.Select(StatusActive, in); m != ModeMach {
		t.Errorf("got %s, expected MACH", m)
	}
}

func TestTOGALockLatch(t *testing.T) {
	var a Arbitrator
	in := climbInput()
	in.Phase = PhaseApproach
	in.Lever = DetentTOGA
	in.ActiveRange = false
	if m := a.Select(StatusActive, in); m != ModeTOGALock {
		t.Fatalf("got %s, expected TOGA_LK", m)
	}

	in = climbInput()
	in.Phase = PhaseGoAround
	for range 10 {
		if m := a.Select(StatusActive, in); m != ModeTOGALock {
			t.Fatalf("got %s, expected TOGA_LK", m)
		}
	}
	if !a.Holding(PhaseGoAround) || a.Holding(PhaseGround) {
		t.Errorf("Holding mismatch")
	}

	if m := a.Select(StatusDisengaged, in); m != ModeNone {
		t.Errorf("got %s while disengaged", m)
	}
	if a.Latched != ModeNone || a.Recall != ModeNone {
		t.Errorf("disengagement did not clear latch: %+v", a)
	}
	if m := a.Select(StatusActive, in); m != ModeSpeed {
		t.Errorf("got %s after re-engagement, expected SPEED", m)
	}
}
