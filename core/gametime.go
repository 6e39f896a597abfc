package core

import "time"

// GameTime tracks the fixed-rate simulation clock layered on top of a
// variable-rate frame loop. One GameTime is shared by the whole
// simulation; Update accumulates real elapsed time into whole ticks at
// the configured rate, and the caller drains them one at a time via
// Advance, running the fixed-tick pipeline once per call, until
// Tick() == TotalTicks().
type GameTime struct {
	hz         float64
	tick       uint64
	totalTicks uint64
	overstep   float64
	lastUpdate time.Duration
}

// NewGameTime creates a clock running at hz fixed ticks per second.
func NewGameTime(hz float64) *GameTime {
	return &GameTime{hz: hz}
}

// Hz returns the configured fixed tick rate.
func (g *GameTime) Hz() float64 { return g.hz }

// Tick returns the number of ticks the fixed-tick pipeline has actually
// run (always <= TotalTicks).
func (g *GameTime) Tick() uint64 { return g.tick }

// TotalTicks returns the number of ticks that real time has accumulated
// so far; NewTicks() of these are still pending a pipeline run.
func (g *GameTime) TotalTicks() uint64 { return g.totalTicks }

// NewTicks returns how many ticks are pending a fixed-tick pipeline run.
func (g *GameTime) NewTicks() uint64 { return g.totalTicks - g.tick }

// Overstep returns the fractional tick accumulated since the last whole
// tick, in [0, 1).
func (g *GameTime) Overstep() float64 { return g.overstep }

// LastUpdate returns the wall-clock duration consumed by the most recent
// Update call.
func (g *GameTime) LastUpdate() time.Duration { return g.lastUpdate }

// Update accumulates the elapsed wall time (now - previous-Update-now)
// into whole ticks. Callers pass the delta directly to keep GameTime
// agnostic of the wall clock source (see engine.SimScheduler, which
// owns a PausableClock and computes the delta).
func (g *GameTime) Update(delta time.Duration) {
	g.lastUpdate = delta
	newTicks := delta.Seconds()*g.hz + g.overstep
	whole := float64(int64(newTicks))
	g.totalTicks += uint64(whole)
	g.overstep = newTicks - whole
}

// Advance runs one fixed tick, incrementing Tick() by one. Callers must
// not call Advance more times than NewTicks() allows between Update
// calls; SimScheduler enforces this by looping while Tick() !=
// TotalTicks().
func (g *GameTime) Advance() {
	g.tick++
}

// Reset rebases the clock without discarding accumulated ticks: overstep
// is zeroed so the next Update does not attribute stale wall time to new
// ticks. Used after a long pause to avoid a tick-debt spike.
func (g *GameTime) Reset() {
	g.overstep = 0
	g.lastUpdate = 0
}
