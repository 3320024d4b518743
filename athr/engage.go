// athr/engage.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package athr

import (
	"github.com/salvapatuel/a32nx/math"
)

// Request holds the pilot's engagement pushbutton inputs for one cycle.
type Request struct {
	Engage    bool
	Disengage bool
}

// Conditions summarizes the lever and mode situation the engagement state
// machine depends on.
type Conditions struct {
	// Qualified is set when the autothrust may be active: the levers are
	// in the active range or a latching mode holds or is being entered.
	Qualified bool
	// AutoEngage is set when alpha floor engages the autothrust without a
	// pilot request.
	AutoEngage bool
}

// Engagement is the DISENGAGED / ARMED / ACTIVE state machine along with
// the thrust lock that follows a fault disconnect.
type Engagement struct {
	Status Status

	Locked    bool
	LockAngle [NumEngines]float64
}

// Advance moves the state machine by one cycle. At most one edge is taken
// per cycle; a fault takes precedence over any request.
func (e *Engagement) Advance(req Request, faults Faults, cond Conditions) (Status, Message) {
	switch {
	case faults.Any():
		if e.Status == StatusActive {
			e.Locked = true
		}
		e.Status = StatusDisengaged

	case req.Engage && req.Disengage:
		// Conflicting requests leave the status alone.

	case req.Disengage:
		e.Status = StatusDisengaged
		e.Locked = false

	default:
		switch e.Status {
		case StatusDisengaged:
			if req.Engage || cond.AutoEngage {
				e.Status = StatusArmed
				e.Locked = false
			}
		case StatusArmed:
			if cond.Qualified {
				e.Status = StatusActive
			}
		case StatusActive:
			if !cond.Qualified {
				e.Status = StatusArmed
			}
		}
	}

	if e.Locked {
		return e.Status, MessageThrustLocked
	}
	return e.Status, MessageNone
}

// Lock records the lever angles the thrust lock is measured from; it is
// called on the cycle the lock is set.
func (e *Engagement) Lock(angles [NumEngines]float64) {
	e.LockAngle = angles
}

// ReleaseLock clears the thrust lock once either lever has moved more than
// release degrees from where it was when the lock was set.
func (e *Engagement) ReleaseLock(angles [NumEngines]float64, release float64) bool {
	if !e.Locked {
		return false
	}
	for i := range angles {
		if math.Abs(angles[i]-e.LockAngle[i]) > release {
			e.Locked = false
			return true
		}
	}
	return false
}
