// log/race.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

//go:build race

package log

// RaceEnabled is true when the race detector is active; its
// instrumentation allocates, so allocation checks skip themselves.
const RaceEnabled = true
