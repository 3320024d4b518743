// trace/errors.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package trace

import "errors"

var (
	ErrTraceMismatch = errors.New("replay diverges from trace")
	ErrNoFrames      = errors.New("trace has no frames")
	ErrTraceNotFound = errors.New("trace not found")
	ErrBadVersion    = errors.New("unsupported trace version")
)
