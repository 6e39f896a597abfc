// Package animation drives tick-indexed sprite playback on top of the
// fixed simulation clock, with an embedded action-script timeline
// identical in shape to the generic script runtime's triggers but scoped
// to a single sprite player.
package animation

import (
	"log"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/vi-fighter/core"
)

// PauseMode controls how much of a player's update still runs while paused.
type PauseMode uint8

const (
	// PlayingMode advances frames and runs every script kind.
	PlayingMode PauseMode = iota
	// PausedWithScripts holds the current frame but still runs tick and
	// tickquant scripts (e.g. so a VFX flash can still fire on a paused
	// cutscene-frozen sprite).
	PausedWithScripts
	// PausedNoScripts skips the player's update entirely.
	PausedNoScripts
)

// TickMode controls how a freshly-started player picks its starting tick.
type TickMode int

const (
	// TickModeRelative starts counting from the current tick.
	TickModeRelative TickMode = iota
	// TickModeRelativeQuantized starts at the quant-aligned current tick.
	TickModeRelativeQuantized
	// TickModeAbsolute always starts counting from tick 0.
	TickModeAbsolute
)

// SpriteTarget is the minimal surface the animation runtime needs from a
// sprite; the renderer (out of scope) implements it over its own sprite
// component.
type SpriteTarget interface {
	FrameIndex() uint32
	SetFrameIndex(uint32)
	SetColor(colorful.Color)
}

// ActionKind distinguishes the five action payloads a script row may carry.
type ActionKind uint8

const (
	ActionStop ActionKind = iota
	ActionSetTicksPerFrame
	ActionSetPaused
	ActionSetFrameNow
	ActionSetFrameNext
	ActionSetSpriteColor
)

// Action is one row of an animation's embedded script.
type Action struct {
	Kind          ActionKind
	TicksPerFrame uint32    // ActionSetTicksPerFrame
	PauseMode     PauseMode // ActionSetPaused
	DurationTicks *uint64   // ActionSetPaused, optional autoresume
	FrameIndex    uint32    // ActionSetFrameNow / ActionSetFrameNext
	Color         colorful.Color // ActionSetSpriteColor
}

// TickTrigger fires once when the relative tick reaches Tick.
type TickTrigger struct {
	Tick   uint64
	Action Action
}

// FrameTrigger fires once when the player's frame counter reaches FrameIndex.
type FrameTrigger struct {
	FrameIndex uint32
	Action     Action
}

// QuantTrigger fires once per quantum crossed.
type QuantTrigger struct {
	Quant  core.TickQuant
	Action Action
}

// Definition is the static, reusable description of a sprite animation.
type Definition struct {
	AtlasKey       string
	FrameIndexStart uint32
	FrameIndexEnd   uint32
	TicksPerFrame   uint32
	TickMode        TickMode
	Quant           core.TickQuant // only used when TickMode == TickModeRelativeQuantized

	Tick  []TickTrigger
	Frame []FrameTrigger
	Quants []QuantTrigger
}

type playerState uint8

const (
	stateStopped playerState = iota
	statePendingPlay
	statePlaying
)

type playScripts struct {
	tick   []TickTrigger
	frame  map[uint32][]Action
	quants []QuantTrigger
}

func importScripts(def *Definition) playScripts {
	ps := playScripts{
		tick:   append([]TickTrigger(nil), def.Tick...),
		frame:  make(map[uint32][]Action, len(def.Frame)),
		quants: append([]QuantTrigger(nil), def.Quants...),
	}
	for _, f := range def.Frame {
		ps.frame[f.FrameIndex] = append(ps.frame[f.FrameIndex], f.Action)
	}
	sort.Slice(ps.tick, func(i, j int) bool { return ps.tick[i].Tick < ps.tick[j].Tick })
	return ps
}

type playState struct {
	startingTick        uint64
	tickLast            uint64
	frameIDLast         uint64
	ticksPerFrame       uint32
	nextIndex           uint32
	nextTickScriptIndex int
	autoresume          *uint64
}

// Player drives one entity's sprite through a Definition. Not
// goroutine-safe; owned exclusively by the simulation's animation system.
type Player struct {
	def     *Definition
	state   playerState
	paused  PauseMode
	scripts playScripts
	play    playState
}

// NewPlayer creates a stopped player.
func NewPlayer() *Player {
	return &Player{state: stateStopped}
}

// Play requests playback of def; actual start happens on the next Update
// once the caller has resolved def. A missing definition leaves the
// player waiting rather than erroring.
func (p *Player) Play(def *Definition) {
	p.def = def
	p.state = statePendingPlay
	p.paused = PlayingMode
}

// Stop halts playback immediately.
func (p *Player) Stop() {
	p.state = stateStopped
}

// Playing reports whether the player is actively advancing frames.
func (p *Player) Playing() bool {
	return p.state == statePlaying && p.paused == PlayingMode
}

// Paused returns the current pause mode.
func (p *Player) Paused() PauseMode {
	if p.state == stateStopped {
		return PausedNoScripts
	}
	return p.paused
}

// SetPaused sets the pause mode directly (bypassing a scripted SetPaused action).
func (p *Player) SetPaused(mode PauseMode) {
	if p.state != stateStopped {
		p.paused = mode
	}
}

// Resume is shorthand for SetPaused(PlayingMode).
func (p *Player) Resume() { p.SetPaused(PlayingMode) }

// Update advances the player by one simulation tick. tick is the
// authoritative GameTime.Tick() for this pass.
func (p *Player) Update(tick uint64, sprite SpriteTarget) {
	if p.state == statePendingPlay {
		if p.def == nil {
			return
		}
		def := p.def
		sprite.SetFrameIndex(def.FrameIndexStart)

		var startingTick uint64
		switch def.TickMode {
		case TickModeRelative:
			startingTick = tick
		case TickModeRelativeQuantized:
			startingTick = def.Quant.Apply(tick)
		case TickModeAbsolute:
			startingTick = 0
		}

		p.scripts = importScripts(def)
		p.play = playState{
			startingTick:  startingTick,
			ticksPerFrame: def.TicksPerFrame,
			nextIndex:     def.FrameIndexStart + 1,
		}
		p.state = statePlaying
	}

	if p.state != statePlaying {
		return
	}

	def := p.def
	relTick := tick - p.play.startingTick
	frameIDNow := relTick / uint64(p.play.ticksPerFrame)

	stop := false

	if p.play.autoresume != nil && relTick >= *p.play.autoresume {
		p.paused = PlayingMode
		p.play.autoresume = nil
	}

	if p.paused == PausedNoScripts {
		return
	}

	// Tick scripts: sorted, cursor-advanced; non-strict break test (entry
	// fires at entry.Tick <= relTick), matching the original runtime's
	// animation-specific cursor semantics -- distinct from the generic
	// script runtime's strict '>' trigger comparison (F).
	for {
		if p.play.nextTickScriptIndex >= len(p.scripts.tick) {
			break
		}
		entry := p.scripts.tick[p.play.nextTickScriptIndex]
		if entry.Tick > relTick {
			break
		}
		if p.runAction(entry.Action, relTick, sprite) {
			stop = true
		}
		p.play.nextTickScriptIndex++
	}

	// Repeating tickquant scripts: count quanta crossed since last tick.
	for _, qt := range p.scripts.quants {
		last := qt.Quant.Convert(p.play.tickLast)
		now := qt.Quant.Convert(relTick)
		for i := last; i < now; i++ {
			if p.runAction(qt.Action, relTick, sprite) {
				stop = true
			}
		}
	}

	if p.paused == PlayingMode {
		if frameIDNow > p.play.frameIDLast {
			if actions, ok := p.scripts.frame[p.play.nextIndex]; ok {
				for _, a := range actions {
					if p.runAction(a, relTick, sprite) {
						stop = true
					}
				}
			}
			if sprite.FrameIndex() != p.play.nextIndex {
				sprite.SetFrameIndex(p.play.nextIndex)
			}
			p.play.nextIndex++
			p.play.frameIDLast = frameIDNow
			if p.play.nextIndex > def.FrameIndexEnd {
				stop = true
			}
		}
	}

	p.play.tickLast = relTick

	if stop {
		log.Printf("animation: player stopped at tick %d", tick)
		p.Stop()
	}
}

func (p *Player) runAction(a Action, relTick uint64, sprite SpriteTarget) (stop bool) {
	switch a.Kind {
	case ActionStop:
		return true
	case ActionSetTicksPerFrame:
		p.play.ticksPerFrame = a.TicksPerFrame
	case ActionSetPaused:
		p.paused = a.PauseMode
		if a.DurationTicks != nil {
			until := relTick + *a.DurationTicks
			p.play.autoresume = &until
		}
	case ActionSetFrameNow:
		sprite.SetFrameIndex(a.FrameIndex)
	case ActionSetFrameNext:
		p.play.nextIndex = a.FrameIndex
	case ActionSetSpriteColor:
		sprite.SetColor(a.Color)
	}
	return false
}
