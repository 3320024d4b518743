// scenario/random.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenario

import (
	"encoding/json"
	"fmt"

	"github.com/salvapatuel/a32nx/athr"
	"github.com/salvapatuel/a32nx/math"
	"github.com/salvapatuel/a32nx/rand"
)

// Random generates a soak scenario where every input drifts or toggles at
// random. The same seed always yields the same scenario.
func Random(seed int64, cycles int) *Scenario {
	r := rand.Make(seed)
	s := &Scenario{
		Name:   fmt.Sprintf("random-%d", seed),
		Cycles: cycles,
		Initial: athr.Input{
			Airspeed:      250,
			SelectedSpeed: 250,
			Mach:          0.45,
			SelectedMach:  0.45,
			Altitude:      10000,
			RadioAltitude: 2500,
			Phase:         athr.PhaseClimb,
			N1:            [athr.NumEngines]float64{70, 70},
			LeverAngle:    [athr.NumEngines]float64{25, 25},
		},
	}

	levers := []float64{-20, -8, 0, 10, 25, 30, 35, 40, 45}
	phases := []athr.Phase{athr.PhaseGround, athr.PhaseTakeoff, athr.PhaseClimb, athr.PhaseCruise,
		athr.PhaseDescent, athr.PhaseApproach, athr.PhaseGoAround}
	faultFlags := []athr.Faults{athr.FaultEngine1, athr.FaultEngine2, athr.FaultAirData, athr.FaultFCU,
		athr.FaultFMGC, athr.FaultLeverSensor}

	airspeed := s.Initial.Airspeed
	faulted := false
	for c := 1; c < cycles; c++ {
		set := make(map[string]any)

		if r.Bool(0.05) {
			airspeed = math.Clamp(airspeed+r.Uniform(-4, 4), 120, 340)
			set["airspeed"] = airspeed
			set["mach"] = airspeed / 560
		}
		if r.Bool(0.005) {
			sel := r.Uniform(140, 320)
			set["selected_speed"] = sel
			set["selected_mach"] = sel / 560
		}
		if r.Bool(0.01) {
			set["n1"] = [athr.NumEngines]float64{r.Uniform(20, 95), r.Uniform(20, 95)}
		}
		if r.Bool(0.01) {
			a := rand.Sample(&r, levers...)
			if r.Bool(0.1) {
				set["lever_angle"] = [athr.NumEngines]float64{a, rand.Sample(&r, levers...)}
			} else {
				set["lever_angle"] = [athr.NumEngines]float64{a, a}
			}
		}
		if r.Bool(0.002) {
			set["phase"] = rand.Sample(&r, phases...)
		}
		if r.Bool(0.003) {
			set["config_index"] = r.Uniform(0, 100)
		}
		if r.Bool(0.003) {
			set["radio_altitude"] = r.Uniform(0, 2500)
		}
		if r.Bool(0.002) {
			set["mach_mode"] = r.Bool(0.5)
		}
		if r.Bool(0.002) {
			set["thrust_mode_request"] = r.Bool(0.3)
		}
		if r.Bool(0.002) {
			set["engine_out"] = r.Bool(0.2)
		}
		if r.Bool(0.002) {
			set["flex_derate"] = r.Uniform(0, 30)
		}
		if r.Bool(0.002) {
			set["alpha_floor"] = r.Bool(0.5)
		}

		if faulted {
			if r.Bool(0.05) {
				set["faults"] = 0
				faulted = false
			}
		} else if r.Bool(0.001) {
			set["faults"] = rand.Sample(&r, faultFlags...)
			faulted = true
		}

		if r.Bool(0.01) {
			set["engage"] = true
		}
		if r.Bool(0.002) {
			set["disengage"] = true
		}

		if len(set) == 0 {
			continue
		}
		b, err := json.Marshal(set)
		if err != nil {
			// Only numbers, bools, arrays and phases are marshaled.
			panic(err)
		}
		s.Steps = append(s.Steps, Step{At: c, Set: b})
	}
	return s
}
