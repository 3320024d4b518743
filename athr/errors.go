// athr/errors.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package athr

import "errors"

var (
	ErrInvalidConfig     = errors.New("invalid autothrust configuration")
	ErrInvalidUnits      = errors.New("invalid unit table")
	ErrNonPositivePeriod = errors.New("cycle period must be positive")
	ErrDetentOrder       = errors.New("lever detents must be strictly increasing")
)
