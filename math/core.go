// math/core.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

func Sqrt(a float64) float64 {
	return gomath.Sqrt(a)
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

func Lerp(x, a, b float64) float64 {
	return (1-x)*a + x*b
}

// InvLerp returns the parametric position of x between a and b; the result
// is not clamped.
func InvLerp(x, a, b float64) float64 {
	if a == b {
		return 0
	}
	return (x - a) / (b - a)
}

func IsFinite(x float64) bool {
	return !gomath.IsNaN(x) && !gomath.IsInf(x, 0)
}
