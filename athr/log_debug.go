//go:build athrlog

// athr/log_debug.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package athr

import (
	"fmt"
	"strings"
)

var (
	athrlogEnabled    bool
	athrlogCategories map[string]bool
)

// InitAthrLog enables per-cycle tracing for the given comma-separated
// categories ("all" or empty selects every category).
func InitAthrLog(enabled bool, categories string) {
	athrlogEnabled = enabled
	athrlogCategories = make(map[string]bool)

	if !enabled {
		return
	}

	if categories == "" || categories == "all" {
		for _, c := range []string{AthrLogEngage, AthrLogMode, AthrLogLimit, AthrLogShape} {
			athrlogCategories[c] = true
		}
	} else {
		for _, cat := range strings.Split(categories, ",") {
			athrlogCategories[strings.TrimSpace(cat)] = true
		}
	}
}

// AthrLog prints a trace line tagged with the cycle number and category.
func AthrLog(cycle int64, category string, format string, args ...interface{}) {
	if !athrlogEnabled || !athrlogCategories[category] {
		return
	}

	// Format: [cycle] [category] message
	fmt.Printf("[%8d] [%s] %s\n", cycle, category, fmt.Sprintf(format, args...))
}

func AthrLogEnabled(category string) bool {
	return athrlogEnabled && athrlogCategories[category]
}
