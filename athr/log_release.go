//go:build !athrlog

// athr/log_release.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package athr

// InitAthrLog is a no-op in release builds
func InitAthrLog(enabled bool, categories string) {}

// AthrLog is a no-op in release builds
func AthrLog(cycle int64, category string, format string, args ...interface{}) {}

// AthrLogEnabled always returns false in release builds
func AthrLogEnabled(category string) bool { return false }
