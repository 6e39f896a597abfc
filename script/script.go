// Package script implements a generic, type-parameterised timed script
// runtime: a tracker/action/run-if model driven once per simulation
// tick, with a playback lifecycle that supports switching the running
// script (or its asset key) mid-play without losing the outgoing
// runtime's stop/slot-disable discipline.
package script

import (
	"log"

	"github.com/lixenwraith/vi-fighter/core"
)

// Result is returned by both Tracker.Update and an Action's Run, and
// aggregated by the driver across a tick's action passes.
type Result uint8

const (
	// ResultNormal: nothing special, continue.
	ResultNormal Result = iota
	// ResultLoop: re-enter Tracker.Update within the same tick.
	ResultLoop
	// ResultFinished: playback completed normally; transitions to Stopping.
	ResultFinished
	// ResultTerminated: playback aborted; transitions to Stopping immediately,
	// skipping any further action processing this tick.
	ResultTerminated
)

// combine folds a new result into an accumulator: Loop requests and
// Finished/Terminated statuses aggregate across the whole pass (used by
// Player.driveTick and Player.runQueue; ExtendedTracker combines its two
// trackers' results with aggregateFinish instead).
func combine(acc, next Result) Result {
	if next == ResultTerminated || acc == ResultTerminated {
		return ResultTerminated
	}
	if next == ResultLoop || acc == ResultLoop {
		return ResultLoop
	}
	if next == ResultFinished || acc == ResultFinished {
		return ResultFinished
	}
	return ResultNormal
}

// Row is one declared action in a script: a trigger predicate, a gate,
// and the payload the caller-supplied Action function consumes.
type Row[A any] struct {
	RunIf  RunIf
	Params ActionParams
	Action A
}

// Context is passed to the caller's ActionFunc for the currently firing row.
type Context struct {
	Entity            core.Entity
	Tick              uint64
	ElapsedMillis     uint64
	PreviousScriptKey string
}

// ActionFunc executes one row's payload and reports how it affects playback.
type ActionFunc[A any] func(ctx *Context, action A) Result

// Tracker is the bookkeeping contract the driver relies on. CommonTracker
// is the concrete realisation; ExtendedTracker composes two trackers.
type Tracker[A any] interface {
	// Init runs once, before the first Update, with the script's rows in
	// declaration order; Tracker assigns ids 0..N-1 by position.
	Init(entity core.Entity, settings Settings, rows []Row[A])
	// Finalize runs once after Init, before the first Update.
	Finalize()
	// Update runs once per tick while Playing; it may append ids into
	// queue and returns the tick's aggregate result.
	Update(tick uint64, nowMillis uint64, queue *[]int) Result
	// ShouldRun gates a candidate id; see CommonTracker.ShouldRun.
	ShouldRun(id int, tick uint64, nowMillis uint64) Result
	// DoStart runs once when the runtime enters Playing.
	DoStart(queue *[]int)
	// DoStop runs once when the runtime leaves Playing, including slot
	// take-back (§4.4.3).
	DoStop(queue *[]int)
	// SetSlot toggles a named slot and enqueues the matching enable/disable ids.
	SetSlot(name string, value bool, queue *[]int)
}

// PlayerState names the lifecycle state of a Player.
type PlayerState uint8

const (
	StateStopped PlayerState = iota
	StatePrePlay
	StateStarting
	StatePlaying
	StateStopping
	StateChangingKey
)

const maxReentryPerTick = 64

// Player drives one entity's script of rows[A] through Tracker[A],
// running ActionFunc for each admitted row. Not goroutine-safe; owned by
// the simulation's script-driver system.
type Player[A any] struct {
	entity  core.Entity
	state   PlayerState
	key     string
	tracker Tracker[A]
	oldTracker Tracker[A] // carried into PrePlay/ChangingKey during a changeover
	run     ActionFunc[A]
	rows    []Row[A]
	settings Settings
}

// NewPlayer creates a stopped player bound to entity and the action runner.
func NewPlayer[A any](entity core.Entity, run ActionFunc[A]) *Player[A] {
	return &Player[A]{entity: entity, state: StateStopped, run: run}
}

// State returns the current lifecycle state.
func (p *Player[A]) State() PlayerState { return p.state }

// Play requests playback of a new script under key. If a script is
// already playing, the switch routes through ChangingKey so the old
// runtime's stop pass and slot-disable discipline fire first.
func (p *Player[A]) Play(key string, settings Settings, rows []Row[A], tracker Tracker[A]) {
	if p.state == StatePlaying || p.state == StateStarting {
		p.oldTracker = p.tracker
		p.state = StateChangingKey
	} else {
		p.state = StatePrePlay
	}
	p.key = key
	p.settings = settings
	p.rows = rows
	p.tracker = tracker
}

// Stop requests the runtime stop; DoStop fires on the next Update.
func (p *Player[A]) Stop() {
	if p.state == StatePlaying || p.state == StateStarting {
		p.state = StateStopping
	} else {
		p.state = StateStopped
	}
}

// Update advances the player by one tick. tick/nowMillis come from the
// shared core.GameTime.
func (p *Player[A]) Update(tick uint64, nowMillis uint64) {
	switch p.state {
	case StateStopped:
		return

	case StatePrePlay:
		p.tracker.Init(p.entity, p.settings, p.rows)
		p.tracker.Finalize()
		p.state = StateStarting
		fallthrough

	case StateChangingKey:
		if p.state == StateChangingKey {
			// Drain the old runtime's stop pass (and slot symmetry) before
			// the new runtime starts.
			var queue []int
			p.oldTracker.DoStop(&queue)
			p.runQueue(queue, tick, nowMillis)
			p.oldTracker = nil
			p.tracker.Init(p.entity, p.settings, p.rows)
			p.tracker.Finalize()
			p.state = StateStarting
		}
		fallthrough

	case StateStarting:
		var queue []int
		p.tracker.DoStart(&queue)
		p.runQueue(queue, tick, nowMillis)
		p.state = StatePlaying
		p.driveTick(tick, nowMillis)

	case StatePlaying:
		p.driveTick(tick, nowMillis)

	case StateStopping:
		var queue []int
		p.tracker.DoStop(&queue)
		p.runQueue(queue, tick, nowMillis)
		p.state = StateStopped
	}
}

// driveTick runs Tracker.Update, admits each queued id through ShouldRun,
// and re-enters on ResultLoop, bounded by maxReentryPerTick so a
// pathological script can't spin the driver forever.
func (p *Player[A]) driveTick(tick uint64, nowMillis uint64) {
	for i := 0; i < maxReentryPerTick; i++ {
		var queue []int
		result := p.tracker.Update(tick, nowMillis, &queue)
		passResult := p.runQueue(queue, tick, nowMillis)
		result = combine(result, passResult)

		switch result {
		case ResultTerminated:
			p.state = StateStopping
			return
		case ResultFinished:
			p.state = StateStopping
			return
		case ResultLoop:
			continue
		default:
			return
		}
	}
	log.Printf("script: entity %d did not converge after %d re-entries in one tick, forcing stop", p.entity, maxReentryPerTick)
	p.state = StateStopping
}

func (p *Player[A]) runQueue(queue []int, tick uint64, nowMillis uint64) Result {
	acc := ResultNormal
	for _, id := range queue {
		gate := p.tracker.ShouldRun(id, tick, nowMillis)
		if gate == ResultTerminated {
			// ShouldRun vetoes by returning Terminated; runQueue discards
			// the sentinel. Any other gate result admits the row.
			continue
		}
		if id < 0 || id >= len(p.rows) {
			continue
		}
		ctx := &Context{Entity: p.entity, Tick: tick, ElapsedMillis: nowMillis}
		res := p.run(ctx, p.rows[id].Action)
		acc = combine(acc, res)
	}
	return acc
}

// SetSlot forwards to the active tracker and runs whatever it enqueues
// immediately — slot transitions are not tick-gated.
func (p *Player[A]) SetSlot(name string, value bool, tick uint64, nowMillis uint64) {
	if p.tracker == nil {
		return
	}
	var queue []int
	p.tracker.SetSlot(name, value, &queue)
	p.runQueue(queue, tick, nowMillis)
}

// TimeBase selects how a tracker's start_tick/start_time are seeded.
type TimeBase uint8

const (
	TimeBaseRelative TimeBase = iota
	TimeBaseLevel
	TimeBaseStartup
)

// Settings are the static per-script parameters shared by every Tracker.
type Settings struct {
	TimeBase TimeBase
	Quant    *core.TickQuant // optional ScriptTickQuant applied to start_tick
	// LevelLoadTick/LevelLoadMillis back TimeBaseLevel; if unset (no
	// level currently loaded), the tracker forces (0,0) with a warning.
	LevelLoadTick   uint64
	LevelLoadMillis uint64
	HasLevelLoad    bool
}
