// athr/types.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package athr

import (
	"fmt"
	"strings"
)

// NumEngines is the number of engines (and thrust levers) the law drives.
const NumEngines = 2

// Status is the autothrust engagement status. The numeric values match
// the ones the FMA expects.
type Status uint8

const (
	StatusDisengaged Status = iota
	StatusArmed
	StatusActive
)

func (s Status) String() string {
	switch s {
	case StatusDisengaged:
		return "DISENGAGED"
	case StatusArmed:
		return "ENGAGED_ARMED"
	case StatusActive:
		return "ENGAGED_ACTIVE"
	default:
		return fmt.Sprintf("Status(%d)", s)
	}
}

// Mode is the autothrust guidance mode; exactly one is active at a time.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeSpeed
	ModeMach
	ModeThrust
	ModeRetard
	ModeTOGA
	ModeLeverClimb
	ModeLeverMCT
	ModeLeverFlex
	ModeLeverTOGA
	ModeAlphaFloor
	ModeTOGALock
)

var modeNames = [...]string{
	ModeNone:       "NONE",
	ModeSpeed:      "SPEED",
	ModeMach:       "MACH",
	ModeThrust:     "THRUST",
	ModeRetard:     "RETARD",
	ModeTOGA:       "TOGA",
	ModeLeverClimb: "LEVER_CLB",
	ModeLeverMCT:   "LEVER_MCT",
	ModeLeverFlex:  "LEVER_FLEX",
	ModeLeverTOGA:  "LEVER_TOGA",
	ModeAlphaFloor: "A_FLOOR",
	ModeTOGALock:   "TOGA_LK",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// Latching reports whether the mode persists once selected until an
// explicit reset.
func (m Mode) Latching() bool {
	return m == ModeAlphaFloor || m == ModeTOGALock
}

// ParseMode returns the Mode with the given name, as returned by
// Mode.String.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(m), nil
		}
	}
	return ModeNone, fmt.Errorf("%s: unknown autothrust mode", s)
}

// Message is the annunciation code published for the FMA.
type Message uint8

const (
	MessageNone Message = iota
	MessageThrustLocked
	MessageLeverTOGA
	MessageLeverClimb
	MessageLeverMCT
	MessageLeverAsym
)

func (m Message) String() string {
	switch m {
	case MessageNone:
		return "NONE"
	case MessageThrustLocked:
		return "THR LK"
	case MessageLeverTOGA:
		return "LVR TOGA"
	case MessageLeverClimb:
		return "LVR CLB"
	case MessageLeverMCT:
		return "LVR MCT"
	case MessageLeverAsym:
		return "LVR ASYM"
	default:
		return fmt.Sprintf("Message(%d)", m)
	}
}

// LimitType selects which thrust limit (and which schedule) applies.
type LimitType uint8

const (
	LimitNone LimitType = iota
	LimitClimb
	LimitMaxContinuous
	LimitFlex
	LimitTakeoff
	LimitGoAround
	LimitReverse
)

func (t LimitType) String() string {
	switch t {
	case LimitNone:
		return "NONE"
	case LimitClimb:
		return "CLB"
	case LimitMaxContinuous:
		return "MCT"
	case LimitFlex:
		return "FLX"
	case LimitTakeoff:
		return "TOGA"
	case LimitGoAround:
		return "GA"
	case LimitReverse:
		return "REV"
	default:
		return fmt.Sprintf("LimitType(%d)", t)
	}
}

// Detent is the thrust lever position class derived from the lever angle.
type Detent uint8

const (
	DetentIdle Detent = iota
	DetentReverse
	DetentManual     // between IDLE and CLB
	DetentClimb
	DetentAboveClimb // between CLB and TOGA, outside the MCT/FLX detent
	DetentMCT
	DetentFlex
	DetentTOGA
)

func (d Detent) String() string {
	switch d {
	case DetentIdle:
		return "IDLE"
	case DetentReverse:
		return "REV"
	case DetentManual:
		return "MAN"
	case DetentClimb:
		return "CLB"
	case DetentAboveClimb:
		return "ABOVE_CLB"
	case DetentMCT:
		return "MCT"
	case DetentFlex:
		return "FLX"
	case DetentTOGA:
		return "TOGA"
	default:
		return fmt.Sprintf("Detent(%d)", d)
	}
}

// rank orders detents by lever travel so that the most forward lever can
// be found.
func (d Detent) rank() int {
	switch d {
	case DetentReverse:
		return 0
	case DetentIdle:
		return 1
	case DetentManual:
		return 2
	case DetentClimb:
		return 3
	case DetentAboveClimb:
		return 4
	case DetentMCT, DetentFlex:
		return 5
	default:
		return 6
	}
}

// Phase is the flight phase as reported by the flight guidance.
type Phase uint8

const (
	PhaseGround Phase = iota
	PhaseTakeoff
	PhaseClimb
	PhaseCruise
	PhaseDescent
	PhaseApproach
	PhaseGoAround
)

func (p Phase) String() string {
	switch p {
	case PhaseGround:
		return "GROUND"
	case PhaseTakeoff:
		return "TAKEOFF"
	case PhaseClimb:
		return "CLIMB"
	case PhaseCruise:
		return "CRUISE"
	case PhaseDescent:
		return "DESCENT"
	case PhaseApproach:
		return "APPROACH"
	case PhaseGoAround:
		return "GO_AROUND"
	default:
		return fmt.Sprintf("Phase(%d)", p)
	}
}

func (p Phase) Airborne() bool {
	return p != PhaseGround
}

// Faults is a set of fault flags; any flag set disconnects the
// autothrust.
type Faults uint16

const (
	FaultEngine1 Faults = 1 << iota
	FaultEngine2
	FaultAirData
	FaultFCU
	FaultFMGC
	FaultLeverSensor
)

func (f Faults) Any() bool { return f != 0 }

func (f Faults) Has(flag Faults) bool { return f&flag != 0 }

func (f Faults) String() string {
	if f == 0 {
		return "none"
	}
	var s []string
	for _, fl := range []struct {
		f    Faults
		name string
	}{
		{FaultEngine1, "ENG1"},
		{FaultEngine2, "ENG2"},
		{FaultAirData, "ADR"},
		{FaultFCU, "FCU"},
		{FaultFMGC, "FMGC"},
		{FaultLeverSensor, "TLA"},
	} {
		if f.Has(fl.f) {
			s = append(s, fl.name)
		}
	}
	if unknown := f &^ (FaultEngine1 | FaultEngine2 | FaultAirData | FaultFCU | FaultFMGC | FaultLeverSensor); unknown != 0 {
		s = append(s, fmt.Sprintf("0x%x", uint16(unknown)))
	}
	return strings.Join(s, ",")
}

// Phases and modes are written by name in scenario and trace files.

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for ph := PhaseGround; ph <= PhaseGoAround; ph++ {
		if strings.EqualFold(string(b), ph.String()) {
			*p = ph
			return nil
		}
	}
	return fmt.Errorf("%s: unknown flight phase", string(b))
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	var err error
	*m, err = ParseMode(string(b))
	return err
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	for st := StatusDisengaged; st <= StatusActive; st++ {
		if strings.EqualFold(string(b), st.String()) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("%s: unknown autothrust status", string(b))
}
