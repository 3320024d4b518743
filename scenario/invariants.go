// scenario/invariants.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenario

import (
	"errors"
	"fmt"

	"github.com/salvapatuel/a32nx/athr"
	"github.com/salvapatuel/a32nx/math"
	"github.com/salvapatuel/a32nx/util"
)

var ErrInvariant = errors.New("control law invariant violated")

// maxViolations bounds how many violations are reported for one run.
const maxViolations = 10

// CheckInvariants verifies the properties that must hold for any input
// sequence and returns an error wrapping ErrInvariant that lists the
// first few violations.
func CheckInvariants(cfg *athr.Config, in []athr.Input, out []athr.Output) error {
	var e util.ErrorLogger
	n := 0
	report := func(c int, f string, args ...any) {
		if n < maxViolations {
			e.Push(util.Select(c >= 0, fmt.Sprintf("cycle %d", c), "run"))
			e.ErrorString(f, args...)
			e.Pop()
		}
		n++
	}

	if len(in) != len(out) {
		report(-1, "%d inputs but %d outputs", len(in), len(out))
		return e.Err(ErrInvariant)
	}

	dt := cfg.CyclePeriod
	cmdUp, cmdDown := cfg.Channels.Command.UpRate*dt+1e-9, cfg.Channels.Command.DownRate*dt-1e-9
	limUp, limDown := cfg.Channels.Limit.UpRate*dt+1e-9, cfg.Channels.Limit.DownRate*dt-1e-9

	for c, o := range out {
		for i := range athr.NumEngines {
			if !math.IsFinite(o.Command[i]) || !math.IsFinite(o.Limit[i]) {
				report(c, "engine %d: non-finite output %s", i, o)
			}
		}
		if c == 0 {
			continue
		}

		p := out[c-1]
		// Commands outside ACTIVE follow the levers unshaped.
		if p.Status == athr.StatusActive && o.Status == athr.StatusActive {
			for i := range athr.NumEngines {
				if d := o.Command[i] - p.Command[i]; d > cmdUp || d < cmdDown {
					report(c, "engine %d: command moved %g", i, d)
				}
				if d := o.Limit[i] - p.Limit[i]; d > limUp || d < limDown {
					report(c, "engine %d: limit moved %g", i, d)
				}
			}
		}

		if p.Mode.Latching() && o.Status != athr.StatusDisengaged && in[c].Phase != athr.PhaseGround &&
			!o.Mode.Latching() {
			report(c, "latched %s released to %s", p.Mode, o.Mode)
		}
	}

	if n > maxViolations {
		e.ErrorString("%d more violations", n-maxViolations)
	}
	return e.Err(ErrInvariant)
}
