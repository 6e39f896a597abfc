// Package combat arbitrates a single hit between an attacker and a
// target, wiring together the transition engine (freeze-on-hit marker),
// the animation runtime (pinning the hit entity's frame), a short
// flash/knockback reaction script, and the audio mixer (the hit sound)
// exactly as one tick's worth of combat resolution would in the full
// game.
package combat

import (
	"github.com/lixenwraith/vi-fighter/animation"
	"github.com/lixenwraith/vi-fighter/audio"
	"github.com/lixenwraith/vi-fighter/core"
	"github.com/lixenwraith/vi-fighter/engine"
	"github.com/lixenwraith/vi-fighter/script"
)

var (
	// MarkerHitStun is inserted on a target the tick it is hit and
	// consumed by the animation runtime to pin its sprite frame for the
	// stun's duration (freeze-on-hit).
	MarkerHitStun = engine.RegisterMarker("combat.hit_stun")
	// MarkerInvulnerable suppresses further hit resolution while set,
	// e.g. during a post-hit grace window.
	MarkerInvulnerable = engine.RegisterMarker("combat.invulnerable")
)

// HitKey identifies one attacker/target pairing within a single swing;
// resolving the same key twice is a no-op (single-hit-per-target
// resolution).
type HitKey struct {
	Attacker core.Entity
	Target   core.Entity
	SwingID  uint64
}

// ReactionAction is the payload type A of each hit's reaction script;
// runReaction is the ActionFunc[ReactionAction] that consumes it.
type ReactionAction struct {
	Kind ReactionKind
}

type ReactionKind uint8

const (
	ReactionFlash ReactionKind = iota
	ReactionKnockback
	ReactionEndStun
)

// HitResult reports what a ResolveHit call actually did, for callers
// that want to log or drive additional UI feedback.
type HitResult struct {
	Applied   bool
	Damage    int
	StunTicks uint64
}

// Arbitrator resolves hits for one simulation's entities, holding the
// per-entity reaction state a real combat system would otherwise store
// in component stores.
type Arbitrator struct {
	markers     *engine.MarkerStore
	transitions *engine.TransitionQueue
	mixer       *audio.PrecisionMixerController
	tickRate    float64

	seenHits map[HitKey]bool

	animators map[core.Entity]*animation.Player
	reactions map[core.Entity]*script.Player[ReactionAction]

	hitPoints   map[core.Entity]int
	stunUntil   map[core.Entity]uint64
}

// NewArbitrator creates an arbitrator sharing markers/transitions with
// the rest of the simulation's transition-engine flush and a mixer
// controller for hit sounds.
func NewArbitrator(markers *engine.MarkerStore, transitions *engine.TransitionQueue, mixer *audio.PrecisionMixerController, tickRate float64) *Arbitrator {
	return &Arbitrator{
		markers:     markers,
		transitions: transitions,
		mixer:       mixer,
		tickRate:    tickRate,
		seenHits:    make(map[HitKey]bool),
		animators:   make(map[core.Entity]*animation.Player),
		reactions:   make(map[core.Entity]*script.Player[ReactionAction]),
		hitPoints:   make(map[core.Entity]int),
		stunUntil:   make(map[core.Entity]uint64),
	}
}

// RegisterTarget seeds a target's starting hit points and binds the
// animation player whose frame the stun freezes, so UpdateAnimation can
// pin it in place of calling Player.Update for the duration of the stun.
func (a *Arbitrator) RegisterTarget(e core.Entity, hitPoints int, anim *animation.Player) {
	a.hitPoints[e] = hitPoints
	a.animators[e] = anim
}

// ResetSwing forgets every hit recorded for swingID, called when a new
// swing (e.g. a fresh attack animation) begins and IDs may be reused.
func (a *Arbitrator) ResetSwing(swingID uint64) {
	for k := range a.seenHits {
		if k.SwingID == swingID {
			delete(a.seenHits, k)
		}
	}
}

// ResolveHit applies one hit, deduplicated by HitKey, at the given tick.
// It vetoes if the target currently carries MarkerInvulnerable, inserts
// MarkerHitStun for stunTicks, pushes the freeze-on-hit transition, fires
// the hit sound through the mixer, and (re)starts the target's reaction
// script.
func (a *Arbitrator) ResolveHit(tick uint64, key HitKey, damage int, stunTicks uint64, hitSound audio.Source, soundChannels int) HitResult {
	if a.seenHits[key] {
		return HitResult{}
	}
	if a.markers.Has(key.Target, MarkerInvulnerable) {
		return HitResult{}
	}

	a.seenHits[key] = true

	a.hitPoints[key.Target] -= damage
	a.stunUntil[key.Target] = tick + stunTicks

	insert := MarkerHitStun
	a.transitions.Push(key.Target, engine.Transition{Insert: &insert})

	if a.mixer != nil && hitSound != nil {
		a.mixer.PlayAtTick(tick, 0, hitSound, soundChannels, 1.0, 0.0)
	}

	a.startReaction(key.Target, tick)

	return HitResult{Applied: true, Damage: damage, StunTicks: stunTicks}
}

// Tick advances every target's stun window and reaction script; call
// once per simulation tick, after the transition-engine flush so
// MarkerHitStun insertions from this tick are already visible.
func (a *Arbitrator) Tick(tick uint64, nowMillis uint64) {
	for target, until := range a.stunUntil {
		if tick < until {
			continue
		}
		if !a.markers.Has(target, MarkerHitStun) {
			continue
		}
		a.transitions.Push(target, engine.Transition{Remove: engine.MarkerSet(0).With(MarkerHitStun)})
		delete(a.stunUntil, target)
	}

	for _, player := range a.reactions {
		player.Update(tick, nowMillis)
	}
}

// UpdateAnimation drives a hit target's animation player for the
// current tick, pinning its frame (not calling Update at all) while
// MarkerHitStun is set -- the freeze-on-hit effect.
func (a *Arbitrator) UpdateAnimation(e core.Entity, tick uint64, sprite animation.SpriteTarget) {
	player, ok := a.animators[e]
	if !ok {
		return
	}
	if a.markers.Has(e, MarkerHitStun) {
		return
	}
	player.Update(tick, sprite)
}

func (a *Arbitrator) startReaction(target core.Entity, tick uint64) {
	player, ok := a.reactions[target]
	if !ok {
		player = script.NewPlayer(target, runReaction)
		a.reactions[target] = player
	}

	rows := []script.Row[ReactionAction]{
		{RunIf: script.RunIf{Kind: script.RunIfTick, Tick: 0}, Action: ReactionAction{Kind: ReactionFlash}},
		{RunIf: script.RunIf{Kind: script.RunIfTick, Tick: 2}, Action: ReactionAction{Kind: ReactionKnockback}},
		{RunIf: script.RunIf{Kind: script.RunIfTick, Tick: 6}, Action: ReactionAction{Kind: ReactionEndStun}},
	}
	tracker := script.NewCommonTracker[ReactionAction](nil)
	player.Play("combat.hit_reaction", script.Settings{TimeBase: script.TimeBaseRelative}, rows, tracker)
	player.Update(tick, 0)
}

// runReaction is the ActionFunc driving each reaction row; a real game
// would dispatch these into the render/effects layer, this illustrates
// the wiring point.
func runReaction(ctx *script.Context, action ReactionAction) script.Result {
	switch action.Kind {
	case ReactionEndStun:
		return script.ResultFinished
	default:
		return script.ResultNormal
	}
}
