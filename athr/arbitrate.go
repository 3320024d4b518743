// athr/arbitrate.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package athr

// ArbitrationInput is the subset of the cycle inputs mode selection looks
// at.
type ArbitrationInput struct {
	AlphaFloor    bool
	Phase         Phase
	Lever         Detent // most forward lever
	ActiveRange   bool
	RadioAltitude float64
	MachMode      bool
	ThrustRequest bool

	// RetardAltitude is the radio altitude below which RETARD is selected
	// on approach.
	RetardAltitude float64
}

// Arbitrator selects the guidance mode by fixed priority. A_FLOOR and
// TOGA_LK latch: once selected they remain until the autothrust
// disengages or the aircraft is on the ground.
type Arbitrator struct {
	// Mode is the mode selected on the previous cycle.
	Mode Mode
	// Latched is the latching mode in effect, or ModeNone.
	Latched Mode
	// Recall is the mode that was in effect when the latch was entered.
	Recall Mode
}

// Holding reports whether a latching mode will still be in effect for the
// given phase.
func (a *Arbitrator) Holding(p Phase) bool {
	return a.Latched != ModeNone && p != PhaseGround
}

// Reset clears the latch and the mode memory.
func (a *Arbitrator) Reset() {
	a.Mode, a.Latched, a.Recall = ModeNone, ModeNone, ModeNone
}

// Select returns the mode for this cycle and records it as the previous
// mode for the next one.
func (a *Arbitrator) Select(status Status, in ArbitrationInput) Mode {
	if status == StatusDisengaged {
		a.Reset()
		return ModeNone
	}

	reset := a.Latched != ModeNone && in.Phase == PhaseGround
	if reset {
		a.Latched = ModeNone
	}

	var m Mode
	switch {
	case in.AlphaFloor && in.Phase.Airborne():
		m = ModeAlphaFloor
		a.latch(m)

	case a.Latched != ModeNone:
		m = a.Latched

	case in.Lever == DetentTOGA && (in.Phase == PhaseApproach || in.Phase == PhaseGoAround):
		m = ModeTOGALock
		a.latch(m)

	default:
		m = a.unlatched(status, in)
		if reset {
			switch {
			case a.Recall == m:
			case status == StatusActive:
				m = ModeThrust
			}
			a.Recall = ModeNone
		}
	}

	a.Mode = m
	return m
}

func (a *Arbitrator) latch(m Mode) {
	if a.Latched == ModeNone {
		a.Recall = a.Mode
	}
	a.Latched = m
}

func (a *Arbitrator) unlatched(status Status, in ArbitrationInput) Mode {
	if status == StatusActive && in.Phase == PhaseApproach && in.RadioAltitude < in.RetardAltitude {
		return ModeRetard
	}

	if status == StatusArmed || !in.ActiveRange {
		switch in.Lever {
		case DetentTOGA:
			if in.Phase == PhaseGround || in.Phase == PhaseTakeoff {
				return ModeTOGA
			}
			return ModeLeverTOGA
		case DetentFlex:
			return ModeLeverFlex
		case DetentMCT:
			return ModeLeverMCT
		case DetentClimb:
			return ModeLeverClimb
		}
		if status == StatusArmed {
			return ModeNone
		}
	}

	switch {
	case in.ThrustRequest || in.Lever == DetentIdle || in.Lever == DetentManual:
		return ModeThrust
	case in.MachMode:
		return ModeMach
	default:
		return ModeSpeed
	}
}
