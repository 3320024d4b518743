// athr/log.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package athr

// Per-cycle trace categories
const (
	AthrLogEngage = "engage"
	AthrLogMode   = "mode"
	AthrLogLimit  = "limit"
	AthrLogShape  = "shape"
)
