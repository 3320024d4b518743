// trace/trace.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package trace records the cycle-by-cycle behavior of the autothrust law
// so that it can be saved as a reference and later replayed against the
// current implementation.
package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/salvapatuel/a32nx/athr"
	av "github.com/salvapatuel/a32nx/aviation"
	"github.com/salvapatuel/a32nx/log"
	"github.com/salvapatuel/a32nx/math"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Version is bumped whenever Frame or Trace change incompatibly.
const Version = 1

// FileSuffix is the extension of saved traces.
const FileSuffix = ".trace.msgpack.zst"

type Frame struct {
	Input  athr.Input
	Output athr.Output
}

// Trace is a named sequence of frames along with the configuration and
// unit table that produced it.
type Trace struct {
	Version int
	Name    string
	Config  athr.Config
	Units   av.Units
	Frames  []Frame
}

// Record runs the inputs through a fresh law built from cfg and units and
// returns the resulting trace.
func Record(name string, cfg *athr.Config, units av.Units, inputs []athr.Input, lg *log.Logger) (*Trace, error) {
	law, err := athr.New(cfg, units, lg)
	if err != nil {
		return nil, err
	}

	t := &Trace{
		Version: Version,
		Name:    name,
		Config:  *law.Config(),
		Units:   units,
		Frames:  make([]Frame, 0, len(inputs)),
	}
	for _, in := range inputs {
		t.Frames = append(t.Frames, Frame{Input: in, Output: law.Step(in)})
	}
	return t, nil
}

// Inputs returns the input sequence of the trace.
func (t *Trace) Inputs() []athr.Input {
	in := make([]athr.Input, len(t.Frames))
	for i, f := range t.Frames {
		in[i] = f.Input
	}
	return in
}

// Save writes the trace msgpack-encoded and zstd-compressed.
func (t *Trace) Save(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()

	if err := msgpack.NewEncoder(zw).Encode(t); err != nil {
		return fmt.Errorf("failed to encode trace: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

// Load reads a trace written by Save.
func Load(r io.Reader) (*Trace, error) {
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var t Trace
	if err := msgpack.NewDecoder(zr).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode trace: %w", err)
	}
	if t.Version != Version {
		return nil, fmt.Errorf("%s: version %d: %w", t.Name, t.Version, ErrBadVersion)
	}
	return &t, nil
}

func SaveFile(path string, t *Trace) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

///////////////////////////////////////////////////////////////////////////
// Comparison

// Mismatch describes a cycle where two output sequences disagree.
type Mismatch struct {
	Cycle    int
	Expected athr.Output
	Got      athr.Output
}

func (m Mismatch) String() string {
	return fmt.Sprintf("cycle %d: expected %s, got %s", m.Cycle, m.Expected, m.Got)
}

// OutputsMatch reports whether two outputs agree: the discrete fields
// exactly and the commands and limits to within tol.
func OutputsMatch(a, b athr.Output, tol float64) bool {
	if a.Status != b.Status || a.Mode != b.Mode || a.Message != b.Message || a.LimitType != b.LimitType {
		return false
	}
	for i := range athr.NumEngines {
		if math.Abs(a.Command[i]-b.Command[i]) > tol || math.Abs(a.Limit[i]-b.Limit[i]) > tol {
			return false
		}
	}
	return true
}

// Compare returns the cycles at which got differs from the expected
// outputs. A length difference is reported as a mismatch at the first
// missing cycle.
func Compare(expected, got []athr.Output, tol float64) []Mismatch {
	var mm []Mismatch
	n := min(len(expected), len(got))
	for i := range n {
		if !OutputsMatch(expected[i], got[i], tol) {
			mm = append(mm, Mismatch{Cycle: i, Expected: expected[i], Got: got[i]})
		}
	}
	if len(expected) != len(got) {
		m := Mismatch{Cycle: n}
		if n < len(expected) {
			m.Expected = expected[n]
		} else {
			m.Got = got[n]
		}
		mm = append(mm, m)
	}
	return mm
}

// Replay runs the trace's inputs through a fresh law built from the
// trace's own configuration and compares the outputs. The returned
// error wraps ErrTraceMismatch if any cycle differs.
func Replay(t *Trace, tol float64, lg *log.Logger) ([]athr.Output, []Mismatch, error) {
	if len(t.Frames) == 0 {
		return nil, nil, ErrNoFrames
	}

	cfg := t.Config
	law, err := athr.New(&cfg, t.Units, lg)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", t.Name, err)
	}

	got := make([]athr.Output, len(t.Frames))
	expected := make([]athr.Output, len(t.Frames))
	for i, f := range t.Frames {
		got[i] = law.Step(f.Input)
		expected[i] = f.Output
	}

	mm := Compare(expected, got, tol)
	if len(mm) > 0 {
		lg.Warn("trace replay diverged", "trace", t.Name, "mismatches", len(mm), "first", mm[0].String())
		return got, mm, fmt.Errorf("%s: %d cycles differ, first at %d: %w", t.Name, len(mm), mm[0].Cycle,
			ErrTraceMismatch)
	}
	return got, nil, nil
}
