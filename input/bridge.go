package input

import "sync"

// Action names a single virtual button the game cares about; consumers
// define their own action vocabulary (analogous to an Actionlike enum).
type Action string

// ActionState is a source-agnostic snapshot of one frame/tick's input:
// which actions are currently held, and which edges (just-pressed,
// just-released) happened since the state was last reset.
type ActionState struct {
	pressed      map[Action]bool
	justPressed  map[Action]bool
	justReleased map[Action]bool
}

func newActionState() *ActionState {
	return &ActionState{
		pressed:      make(map[Action]bool),
		justPressed:  make(map[Action]bool),
		justReleased: make(map[Action]bool),
	}
}

// Pressed reports whether a is currently held down.
func (s *ActionState) Pressed(a Action) bool { return s.pressed[a] }

// JustPressed reports whether a transitioned to pressed since the last Tick.
func (s *ActionState) JustPressed(a Action) bool { return s.justPressed[a] }

// JustReleased reports whether a transitioned to released since the last Tick.
func (s *ActionState) JustReleased(a Action) bool { return s.justReleased[a] }

// tick clears the edge sets, keeping `pressed` intact; the reset
// strictly precedes merging new edges.
func (s *ActionState) tick() {
	s.justPressed = make(map[Action]bool)
	s.justReleased = make(map[Action]bool)
}

func (s *ActionState) press(a Action) {
	if !s.pressed[a] {
		s.justPressed[a] = true
	}
	s.pressed[a] = true
}

func (s *ActionState) release(a Action) {
	if s.pressed[a] {
		s.justReleased[a] = true
	}
	s.pressed[a] = false
}

// Bridge re-samples edge-triggered input once per fixed-tick iteration,
// decoupling the frame-rate event pump (tcell.PollEvent, run on its own
// goroutine) from the fixed simulation tick. It holds a queue of raw
// edges that the frame-rate pump appends to, and one ActionState that the
// fixed-tick loop owns and reads from.
type Bridge struct {
	mu    sync.Mutex
	raw   []edge // pending edges from the frame-rate pump, not yet merged
	fixed *ActionState
}

type edge struct {
	action  Action
	pressed bool
}

// NewBridge creates an empty bridge.
func NewBridge() *Bridge {
	return &Bridge{fixed: newActionState()}
}

// ReportKeyDown is called by the frame-rate event pump (e.g. a goroutine
// draining tcell.Screen.PollEvent) whenever a mapped action's key is
// pressed or released. Safe to call from a different goroutine than
// TickUpdate.
func (b *Bridge) ReportKeyDown(a Action)  { b.report(a, true) }
func (b *Bridge) ReportKeyUp(a Action)    { b.report(a, false) }

func (b *Bridge) report(a Action, pressed bool) {
	b.mu.Lock()
	b.raw = append(b.raw, edge{action: a, pressed: pressed})
	b.mu.Unlock()
}

// TickUpdate runs once per fixed-tick iteration, in strict order: reset
// the fixed snapshot's edges (Tick), then merge every raw edge queued
// since the previous call (Update). This guarantees a just-pressed event
// fires exactly once per iteration even if a frame ran several fixed
// ticks, and a key held across iterations does not spuriously re-fire
// just-pressed: only the first TickUpdate call after a raw press edge
// observes JustPressed==true; later calls within
// the same frame (or later frames, while still held) do not re-derive a
// new edge because `pressed` was already true when the raw queue was
// drained on the call that consumed it.
func (b *Bridge) TickUpdate() *ActionState {
	b.fixed.tick()

	b.mu.Lock()
	raw := b.raw
	b.raw = nil
	b.mu.Unlock()

	for _, e := range raw {
		if e.pressed {
			b.fixed.press(e.action)
		} else {
			b.fixed.release(e.action)
		}
	}
	return b.fixed
}
