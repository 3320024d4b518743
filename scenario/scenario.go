// scenario/scenario.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package scenario provides scripted input sequences for the autothrust
// law. A scenario starts from an initial input and applies partial
// overrides at given cycles; expectations on the outputs may be attached.
package scenario

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/salvapatuel/a32nx/athr"
	"github.com/salvapatuel/a32nx/util"
)

var (
	ErrInvalidScenario   = errors.New("invalid scenario")
	ErrExpectationFailed = errors.New("scenario expectation failed")
)

type Scenario struct {
	Name    string        `json:"name"`
	Cycles  int           `json:"cycles"`
	Initial athr.Input    `json:"initial"`
	Steps   []Step        `json:"steps"`
	Expect  []Expectation `json:"expect"`
}

// Step overrides the fields given in Set from cycle At onward. The
// engage and disengage requests are momentary and only last for the
// cycle they are set in.
type Step struct {
	At  int             `json:"at"`
	Set json.RawMessage `json:"set"`
}

// Expectation checks the output of cycle At; nil fields are not checked.
type Expectation struct {
	At      int           `json:"at"`
	Status  *athr.Status  `json:"status,omitempty"`
	Mode    *athr.Mode    `json:"mode,omitempty"`
	Message *athr.Message `json:"message,omitempty"`
}

func Load(r io.Reader) (*Scenario, error) {
	var s Scenario
	if err := util.UnmarshalJSON(r, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadFile(filename string) (*Scenario, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(path.Base(filename), ".json")
	}
	return s, nil
}

// Validate returns an error wrapping ErrInvalidScenario listing every
// problem found.
func (s *Scenario) Validate() error {
	var e util.ErrorLogger
	if s.Name != "" {
		e.Push(s.Name)
	}

	if s.Cycles <= 0 {
		e.ErrorString("cycles %d must be positive", s.Cycles)
	}
	for i, st := range s.Steps {
		e.Push(fmt.Sprintf("step %d", i))
		if st.At < 0 || st.At >= max(s.Cycles, 1) {
			e.ErrorString("cycle %d outside [0, %d)", st.At, s.Cycles)
		}
		if i > 0 && st.At < s.Steps[i-1].At {
			e.ErrorString("cycle %d precedes previous step at %d", st.At, s.Steps[i-1].At)
		}
		in := s.Initial
		if err := st.apply(&in); err != nil {
			e.Error(err)
		}
		e.Pop()
	}
	for i, x := range s.Expect {
		if x.At < 0 || x.At >= max(s.Cycles, 1) {
			e.ErrorString("expectation %d: cycle %d outside [0, %d)", i, x.At, s.Cycles)
		}
	}

	return e.Err(ErrInvalidScenario)
}

func (st Step) apply(in *athr.Input) error {
	if len(st.Set) == 0 {
		return nil
	}
	return util.UnmarshalJSONBytes(st.Set, in)
}

// Inputs expands the scenario into one input per cycle.
func (s *Scenario) Inputs() ([]athr.Input, error) {
	inputs := make([]athr.Input, 0, s.Cycles)
	in := s.Initial
	steps := s.Steps
	for c := range s.Cycles {
		for len(steps) > 0 && steps[0].At == c {
			if err := steps[0].apply(&in); err != nil {
				return nil, fmt.Errorf("%s: cycle %d: %w", s.Name, c, err)
			}
			steps = steps[1:]
		}
		inputs = append(inputs, in)
		in.Engage, in.Disengage = false, false
	}
	return inputs, nil
}

// Check verifies the scenario's expectations against its outputs.
func (s *Scenario) Check(out []athr.Output) error {
	var e util.ErrorLogger
	e.Push(s.Name)
	for _, x := range s.Expect {
		if x.At >= len(out) {
			e.ErrorString("cycle %d: no output", x.At)
			continue
		}
		o := out[x.At]
		if x.Status != nil && o.Status != *x.Status {
			e.ErrorString("cycle %d: status %s, expected %s", x.At, o.Status, *x.Status)
		}
		if x.Mode != nil && o.Mode != *x.Mode {
			e.ErrorString("cycle %d: mode %s, expected %s", x.At, o.Mode, *x.Mode)
		}
		if x.Message != nil && o.Message != *x.Message {
			e.ErrorString("cycle %d: message %s, expected %s", x.At, o.Message, *x.Message)
		}
	}
	e.Pop()
	return e.Err(ErrExpectationFailed)
}

///////////////////////////////////////////////////////////////////////////
// Builtin scenarios

//go:embed builtin/*.json
var builtinFS embed.FS

// Builtin returns the scenarios shipped with the package, sorted by name.
func Builtin() ([]*Scenario, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}

	var sc []*Scenario
	for _, ent := range entries {
		b, err := builtinFS.ReadFile("builtin/" + ent.Name())
		if err != nil {
			return nil, err
		}
		s, err := Load(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ent.Name(), err)
		}
		if s.Name == "" {
			s.Name = strings.TrimSuffix(ent.Name(), ".json")
		}
		sc = append(sc, s)
	}
	slices.SortFunc(sc, func(a, b *Scenario) int { return strings.Compare(a.Name, b.Name) })
	return sc, nil
}
