// util/json_test.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"strings"
	"testing"
)

type testConfig struct {
	Period float64   `json:"period"`
	Values []float64 `json:"values"`
}

func TestUnmarshalJSONBytes(t *testing.T) {
	var c testConfig
	if err := UnmarshalJSONBytes([]byte(`{"period": 0.05, "values": [1, 2]}`), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Period != 0.05 || len(c.Values) != 2 {
		t.Errorf("decoded %+v", c)
	}

	for _, tc := range []struct {
		json string
		msg  string
	}{
		{"{\n  \"period\": 0.05,\n  \"values\": [1, 2,]\n}", "line 3"},
		{"{\n  \"period\": \"fast\"\n}", "line 2"},
		{`{"perod": 0.05}`, "unknown field"},
	} {
		err := UnmarshalJSONBytes([]byte(tc.json), &c)
		if err == nil {
			t.Errorf("%q: expected error", tc.json)
		} else if !strings.Contains(err.Error(), tc.msg) {
			t.Errorf("%q: error %q does not mention %q", tc.json, err, tc.msg)
		}
	}
}

func TestErrorLogger(t *testing.T) {
	var e ErrorLogger
	if e.HaveErrors() || e.Err(nil) != nil {
		t.Errorf("fresh ErrorLogger reports errors")
	}

	e.Push("limits")
	e.Push("climb_schedule")
	e.ErrorString("breakpoint %d not increasing", 3)
	e.Pop()
	e.Error(errors.New("max below min"))
	e.Pop()

	if e.CurrentDepth() != 0 {
		t.Errorf("depth %d after balanced push/pop", e.CurrentDepth())
	}
	want := "limits / climb_schedule: breakpoint 3 not increasing\nlimits: max below min"
	if e.String() != want {
		t.Errorf("got %q, expected %q", e.String(), want)
	}

	base := errors.New("invalid")
	if err := e.Err(base); !errors.Is(err, base) {
		t.Errorf("Err does not wrap base error: %v", err)
	}
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer[int](3)
	rb.Add(1, 2)
	if rb.Size() != 2 || rb.Get(0) != 1 || rb.Get(1) != 2 {
		t.Errorf("partially filled ring buffer mismatch")
	}
	rb.Add(3, 4, 5)
	if rb.Size() != 3 {
		t.Errorf("size %d, expected 3", rb.Size())
	}
	for i, v := range []int{3, 4, 5} {
		if rb.Get(i) != v {
			t.Errorf("Get(%d) = %d, expected %d", i, rb.Get(i), v)
		}
	}
}
