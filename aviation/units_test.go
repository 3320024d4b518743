// aviation/units_test.go
// Copyright(c) 2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	gomath "math"
	"testing"
)

func TestStandardAtmosphere(t *testing.T) {
	u := StandardUnits()
	if err := u.Validate(); err != nil {
		t.Fatalf("standard units invalid: %v", err)
	}

	type testcase struct {
		alt        float64
		theta      float64
		speedOfSnd float64
		tolTheta   float64
		tolSpdSnd  float64
	}
	for _, tc := range []testcase{
		{alt: 0, theta: 1, speedOfSnd: 661.48, tolTheta: 1e-12, tolSpdSnd: 0.01},
		{alt: -500, theta: 1, speedOfSnd: 661.48, tolTheta: 1e-12, tolSpdSnd: 0.01},
		{alt: 10000, theta: 0.9312, speedOfSnd: 638.3, tolTheta: 5e-4, tolSpdSnd: 0.5},
		{alt: 36089.24, theta: 0.7519, speedOfSnd: 573.6, tolTheta: 5e-4, tolSpdSnd: 0.5},
		{alt: 40000, theta: 0.7519, speedOfSnd: 573.6, tolTheta: 5e-4, tolSpdSnd: 0.5},
	} {
		if th := u.TemperatureRatio(tc.alt); gomath.Abs(th-tc.theta) > tc.tolTheta {
			t.Errorf("TemperatureRatio(%f) = %f, expected %f", tc.alt, th, tc.theta)
		}
		if a := u.SpeedOfSound(tc.alt); gomath.Abs(a-tc.speedOfSnd) > tc.tolSpdSnd {
			t.Errorf("SpeedOfSound(%f) = %f, expected %f", tc.alt, a, tc.speedOfSnd)
		}
	}
}

func TestTemperatureConstantAboveTropopause(t *testing.T) {
	u := StandardUnits()
	at := u.TemperatureRatio(u.TropopauseAltitude)
	for _, alt := range []float64{u.TropopauseAltitude + 1e-6, 45000, 60000} {
		if th := u.TemperatureRatio(alt); th != at {
			t.Errorf("TemperatureRatio(%f) = %f, expected %f", alt, th, at)
		}
	}
}

func TestMachToKnots(t *testing.T) {
	u := StandardUnits()
	if kt := u.MachToKnots(0.78, 0); gomath.Abs(kt-0.78*661.4788) > 1e-9 {
		t.Errorf("MachToKnots at sea level gave %f", kt)
	}
	if kt := u.MachToKnots(-0.01, 35000); kt >= 0 {
		t.Errorf("negative Mach difference should give negative knots, got %f", kt)
	}
}

func TestUnitsValidate(t *testing.T) {
	u := StandardUnits()
	u.FeetToMeters = 0
	if u.Validate() == nil {
		t.Errorf("expected error for zero feet_to_meters")
	}

	u = StandardUnits()
	u.TropopauseAltitude = 200000
	if u.Validate() == nil {
		t.Errorf("expected error for tropopause colder than absolute zero")
	}
}
