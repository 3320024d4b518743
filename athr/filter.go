// athr/filter.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package athr

import (
	"github.com/salvapatuel/a32nx/math"
)

// FilterState is the memory of a first-order lag.
type FilterState struct {
	TimeConstant float64 // s; zero passes the input through
	Value        float64
}

// RateLimiterState is the memory of an asymmetric slew limiter. Up and
// Down are per-cycle bounds on the output change; Up >= 0 >= Down.
type RateLimiterState struct {
	Up, Down float64
	Value    float64
}

// Shape runs one cycle of the lag followed by the slew limiter and returns
// the limited output along with the updated memories. A non-finite target
// holds the previous filter value.
func Shape(target float64, f FilterState, r RateLimiterState, dt float64) (float64, FilterState, RateLimiterState) {
	if !math.IsFinite(target) {
		target = f.Value
	}

	if f.TimeConstant > 0 && dt > 0 {
		f.Value += dt / (f.TimeConstant + dt) * (target - f.Value)
	} else {
		f.Value = target
	}

	r.Value += math.Clamp(f.Value-r.Value, r.Down, r.Up)
	return r.Value, f, r
}

// Channel is one lag + slew-limit channel of the shaping bank.
type Channel struct {
	Filter  FilterState
	Limiter RateLimiterState
}

// NewChannel derives the per-cycle slew bounds from the configured rates
// and the cycle period.
func NewChannel(c ChannelConfig, dt float64) Channel {
	return Channel{
		Filter:  FilterState{TimeConstant: c.TimeConstant},
		Limiter: RateLimiterState{Up: c.UpRate * dt, Down: c.DownRate * dt},
	}
}

func (c *Channel) Step(target, dt float64) float64 {
	var out float64
	out, c.Filter, c.Limiter = Shape(target, c.Filter, c.Limiter, dt)
	return out
}

// Reset sets both memories to v so that shaping restarts from v without a
// transient.
func (c *Channel) Reset(v float64) {
	c.Filter.Value = v
	c.Limiter.Value = v
}

func (c Channel) Value() float64 {
	return c.Limiter.Value
}

// Bank holds the per-engine command and limit channels.
type Bank struct {
	Command [NumEngines]Channel
	Limit   [NumEngines]Channel
}

func NewBank(c ChannelsConfig, dt float64) Bank {
	var b Bank
	for i := range NumEngines {
		b.Command[i] = NewChannel(c.Command, dt)
		b.Limit[i] = NewChannel(c.Limit, dt)
	}
	return b
}

// Reset reinitializes the bank on engagement: commands restart from the
// measured N1 and limits from the raw limit.
func (b *Bank) Reset(n1, limit [NumEngines]float64) {
	for i := range NumEngines {
		b.Command[i].Reset(n1[i])
		b.Limit[i].Reset(limit[i])
	}
}

func (b *Bank) Commands() [NumEngines]float64 {
	var c [NumEngines]float64
	for i := range c {
		c[i] = b.Command[i].Value()
	}
	return c
}

