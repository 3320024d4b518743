// aviation/units.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"

	"github.com/salvapatuel/a32nx/math"
)

// Units holds the physical constants used at the boundary between the
// control law and the host simulation. All control-law arithmetic is done
// in knots, feet, degrees, seconds and percent N1; the ISA helpers below
// are the only place where SI units appear.
//
// A Units value is established once and then only read; it is passed by
// value so that nothing downstream can modify it.
type Units struct {
	FeetToMeters float64 `json:"feet_to_meters"`

	// International standard atmosphere
	SeaLevelTemperature  float64 `json:"sea_level_temperature"`    // K
	TropopauseAltitude   float64 `json:"tropopause_altitude"`      // ft
	LapseRate            float64 `json:"lapse_rate"`               // K/m
	SeaLevelSpeedOfSound float64 `json:"sea_level_speed_of_sound"` // kt
}

// StandardUnits returns the conversion table used by the A320 model.
func StandardUnits() Units {
	return Units{
		FeetToMeters: 0.3048,

		SeaLevelTemperature:  288.15,
		TropopauseAltitude:   36089.24,
		LapseRate:            0.0065,
		SeaLevelSpeedOfSound: 661.4788,
	}
}

func (u Units) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"feet_to_meters", u.FeetToMeters},
		{"sea_level_temperature", u.SeaLevelTemperature},
		{"tropopause_altitude", u.TropopauseAltitude},
		{"lapse_rate", u.LapseRate},
		{"sea_level_speed_of_sound", u.SeaLevelSpeedOfSound},
	} {
		if !(f.v > 0) || !math.IsFinite(f.v) {
			return fmt.Errorf("%s: %g must be positive", f.name, f.v)
		}
	}
	if t := u.tropopauseTemperature(); !(t > 0) {
		return fmt.Errorf("tropopause temperature %g K must be positive", t)
	}
	return nil
}

func (u Units) tropopauseTemperature() float64 {
	return u.SeaLevelTemperature - u.LapseRate*u.TropopauseAltitude*u.FeetToMeters
}

// TemperatureRatio returns the ISA temperature ratio theta at the given
// pressure altitude (ft). Negative altitudes are treated as sea level and
// the temperature is constant above the tropopause.
func (u Units) TemperatureRatio(alt float64) float64 {
	alt = math.Clamp(alt, 0, u.TropopauseAltitude)
	t := u.SeaLevelTemperature - u.LapseRate*alt*u.FeetToMeters
	return t / u.SeaLevelTemperature
}

// SpeedOfSound returns the ISA speed of sound (kt) at the given altitude
// (ft).
func (u Units) SpeedOfSound(alt float64) float64 {
	return u.SeaLevelSpeedOfSound * math.Sqrt(u.TemperatureRatio(alt))
}

// MachToKnots converts a Mach number (or a Mach difference) to true
// airspeed in knots at the given altitude.
func (u Units) MachToKnots(mach, alt float64) float64 {
	return mach * u.SpeedOfSound(alt)
}
