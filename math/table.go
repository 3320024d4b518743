// math/table.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrEmptyTable          = errors.New("table has no breakpoints")
	ErrTableLengthMismatch = errors.New("breakpoint and value counts differ")
	ErrNonIncreasing       = errors.New("breakpoints are not strictly increasing")
	ErrNonFinite           = errors.New("table entry is not finite")
)

// Table is a one-dimensional piecewise-linear lookup table. Lookups
// between adjacent breakpoints interpolate linearly; lookups outside the
// breakpoint range return the nearest endpoint value.
//
// Tables must be checked with Validate before use; Lookup assumes a valid
// table and does no checking of its own.
type Table struct {
	Breakpoints []float64 `json:"breakpoints"`
	Values      []float64 `json:"values"`
}

func MakeTable(breakpoints, values []float64) Table {
	return Table{Breakpoints: breakpoints, Values: values}
}

func (t Table) Validate() error {
	if len(t.Breakpoints) == 0 {
		return ErrEmptyTable
	}
	if len(t.Breakpoints) != len(t.Values) {
		return fmt.Errorf("%d breakpoints, %d values: %w", len(t.Breakpoints), len(t.Values),
			ErrTableLengthMismatch)
	}
	for i := range t.Breakpoints {
		if !IsFinite(t.Breakpoints[i]) || !IsFinite(t.Values[i]) {
			return fmt.Errorf("entry %d: %w", i, ErrNonFinite)
		}
		if i > 0 && t.Breakpoints[i] <= t.Breakpoints[i-1] {
			return fmt.Errorf("breakpoint %d (%g) follows %g: %w", i, t.Breakpoints[i],
				t.Breakpoints[i-1], ErrNonIncreasing)
		}
	}
	return nil
}

// Lookup returns the interpolated table value at x. NaN inputs are
// treated as being below the first breakpoint.
func (t Table) Lookup(x float64) float64 {
	n := len(t.Breakpoints)
	if !(x > t.Breakpoints[0]) {
		return t.Values[0]
	}
	if x >= t.Breakpoints[n-1] {
		return t.Values[n-1]
	}

	// Index of the first breakpoint >= x; it is in [1, n-1] given the
	// checks above.
	i := sort.SearchFloat64s(t.Breakpoints, x)
	x0, x1 := t.Breakpoints[i-1], t.Breakpoints[i]
	return Lerp((x-x0)/(x1-x0), t.Values[i-1], t.Values[i])
}

// Range returns the first and last breakpoints.
func (t Table) Range() (float64, float64) {
	return t.Breakpoints[0], t.Breakpoints[len(t.Breakpoints)-1]
}
