package script

import (
	"log"
	"math/rand"
	"sort"

	"github.com/lixenwraith/vi-fighter/core"
)

// RunIfKind names which trigger predicate a RunIf value carries.
type RunIfKind uint8

const (
	RunIfTick RunIfKind = iota
	RunIfTickQuant
	RunIfMillis
	RunIfTime
	RunIfSlotEnable
	RunIfSlotDisable
	RunIfPlaybackStart
	RunIfPlaybackStop
)

// RunIf is the declarative trigger predicate attached to a script row.
// Exactly one field group is meaningful per Kind.
type RunIf struct {
	Kind  RunIfKind
	Tick  uint64         // RunIfTick
	Quant core.TickQuant // RunIfTickQuant
	Millis uint64        // RunIfMillis
	Time   core.TimeSpec // RunIfTime
	Slot   string        // RunIfSlotEnable / RunIfSlotDisable
}

// ActionParams are the optional gate conditions checked, in order, before
// an admitted id's action runs.
type ActionParams struct {
	DelayTicks          *uint64
	IfPreviousScriptKey *string
	ForbidSlotsAny      []string
	ForbidSlotsAll      []string
	RequireSlotsAll     []string
	RequireSlotsAny     []string
	RngPct              *float64 // [0,100]
}

type tickEntry struct {
	tick uint64
	id   int
}

type millisEntry struct {
	millis uint64
	id     int
}

type quantEntry struct {
	quant core.TickQuant
	id    int
}

type delayedEntry struct {
	triggerTick uint64
	id          int
}

// CommonTracker is the concrete F realisation of Tracker[A]: tick/time/
// tickquant/slot-based triggers, delayed actions, and slot enable/disable
// with symmetric cleanup.
type CommonTracker[A any] struct {
	entity   core.Entity
	params   []ActionParams
	runIfs   []RunIf

	startTick   uint64
	startMillis uint64

	tickTriggers   []tickEntry
	nextTickIdx    int
	millisTriggers []millisEntry
	nextMillisIdx  int
	quantTriggers  []quantEntry

	slotEnableIDs  map[string][]int
	slotDisableIDs map[string][]int
	slotsEnabled   map[string]bool

	startIDs []int
	stopIDs  []int

	qDelayed     []delayedEntry
	delayPending map[int]bool // id -> a delayed entry is outstanding
	delayArrived map[int]bool // id -> this tick's Update just drained its delayed entry
	previousKey  *string

	rng *rand.Rand
}

// NewCommonTracker creates a tracker with its own RNG source, seeded by
// the caller for determinism in tests.
func NewCommonTracker[A any](rng *rand.Rand) *CommonTracker[A] {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &CommonTracker[A]{rng: rng}
}

// SetPreviousScriptKey records the key of the script this one replaced,
// consulted by the if_previous_script_key gate.
func (t *CommonTracker[A]) SetPreviousScriptKey(key *string) {
	t.previousKey = key
}

// Init assigns ids 0..N-1 in declaration order and buckets each row by
// its RunIf kind.
func (t *CommonTracker[A]) Init(entity core.Entity, settings Settings, rows []Row[A]) {
	t.entity = entity
	t.params = make([]ActionParams, len(rows))
	t.runIfs = make([]RunIf, len(rows))
	t.slotEnableIDs = make(map[string][]int)
	t.slotDisableIDs = make(map[string][]int)
	t.slotsEnabled = make(map[string]bool)
	t.tickTriggers = nil
	t.millisTriggers = nil
	t.quantTriggers = nil
	t.startIDs = nil
	t.stopIDs = nil
	t.qDelayed = nil
	t.delayPending = make(map[int]bool)
	t.delayArrived = make(map[int]bool)
	t.nextTickIdx = 0
	t.nextMillisIdx = 0

	switch settings.TimeBase {
	case TimeBaseLevel:
		if settings.HasLevelLoad {
			t.startTick = settings.LevelLoadTick
			t.startMillis = settings.LevelLoadMillis
		} else {
			log.Printf("script: entity %d uses TimeBaseLevel with no level loaded, forcing (0,0)", entity)
			t.startTick = 0
			t.startMillis = 0
		}
	case TimeBaseStartup:
		t.startTick = 0
		t.startMillis = 0
	case TimeBaseRelative:
		// caller supplies the current tick/millis via the first Update call;
		// seeded to 0 here and rebased lazily on first Update.
	}
	if settings.Quant != nil {
		t.startTick = settings.Quant.Apply(t.startTick)
	}

	for id, row := range rows {
		t.params[id] = row.Params
		t.runIfs[id] = row.RunIf
		switch row.RunIf.Kind {
		case RunIfTick:
			t.tickTriggers = append(t.tickTriggers, tickEntry{tick: row.RunIf.Tick, id: id})
		case RunIfMillis:
			t.millisTriggers = append(t.millisTriggers, millisEntry{millis: row.RunIf.Millis, id: id})
		case RunIfTime:
			t.millisTriggers = append(t.millisTriggers, millisEntry{millis: uint64(row.RunIf.Time.Duration().Milliseconds()), id: id})
		case RunIfTickQuant:
			t.quantTriggers = append(t.quantTriggers, quantEntry{quant: row.RunIf.Quant, id: id})
		case RunIfSlotEnable:
			t.slotEnableIDs[row.RunIf.Slot] = append(t.slotEnableIDs[row.RunIf.Slot], id)
		case RunIfSlotDisable:
			t.slotDisableIDs[row.RunIf.Slot] = append(t.slotDisableIDs[row.RunIf.Slot], id)
		case RunIfPlaybackStart:
			t.startIDs = append(t.startIDs, id)
		case RunIfPlaybackStop:
			t.stopIDs = append(t.stopIDs, id)
		}
	}
}

// Finalize sorts the ordered trigger vectors ascending.
func (t *CommonTracker[A]) Finalize() {
	sort.Slice(t.tickTriggers, func(i, j int) bool { return t.tickTriggers[i].tick < t.tickTriggers[j].tick })
	sort.Slice(t.millisTriggers, func(i, j int) bool { return t.millisTriggers[i].millis < t.millisTriggers[j].millis })
}

// DoStart enqueues every RunIfPlaybackStart id; these ids are only ever
// enqueued during do_start / do_stop, never during update.
func (t *CommonTracker[A]) DoStart(queue *[]int) {
	*queue = append(*queue, t.startIDs...)
}

// DoStop enqueues every RunIfPlaybackStop id, then forces symmetric
// slot cleanup via takeSlots.
func (t *CommonTracker[A]) DoStop(queue *[]int) {
	*queue = append(*queue, t.stopIDs...)
	t.takeSlots(queue)
}

// takeSlots appends the disable-ids of every currently-enabled slot and
// clears the set, guaranteeing enable/disable symmetry even if the
// runtime stops mid-enabled.
func (t *CommonTracker[A]) takeSlots(queue *[]int) {
	for name, enabled := range t.slotsEnabled {
		if !enabled {
			continue
		}
		*queue = append(*queue, t.slotDisableIDs[name]...)
	}
	t.slotsEnabled = make(map[string]bool)
}

// SetSlot toggles a named slot on an edge only, enqueueing exactly one
// extra-action batch per transition.
func (t *CommonTracker[A]) SetSlot(name string, value bool, queue *[]int) {
	was := t.slotsEnabled[name]
	if was == value {
		return
	}
	t.slotsEnabled[name] = value
	if value {
		*queue = append(*queue, t.slotEnableIDs[name]...)
	} else {
		*queue = append(*queue, t.slotDisableIDs[name]...)
	}
}

// Update advances the tick/time/tickquant cursors, enqueueing every
// newly-fired id; returns Finished iff all three cursors are exhausted
// and the tickquant vector is empty.
func (t *CommonTracker[A]) Update(tick uint64, nowMillis uint64, queue *[]int) Result {
	relTick := tick - t.startTick
	relMillis := nowMillis - t.startMillis

	// Tick(t): strict '>', distinct from the animation runtime's
	// non-strict tick-script cursor.
	for t.nextTickIdx < len(t.tickTriggers) {
		entry := t.tickTriggers[t.nextTickIdx]
		if relTick <= entry.tick {
			break
		}
		*queue = append(*queue, entry.id)
		t.nextTickIdx++
	}

	for t.nextMillisIdx < len(t.millisTriggers) {
		entry := t.millisTriggers[t.nextMillisIdx]
		if relMillis <= entry.millis {
			break
		}
		*queue = append(*queue, entry.id)
		t.nextMillisIdx++
	}

	for _, qe := range t.quantTriggers {
		if qe.quant.Check(tick) {
			*queue = append(*queue, qe.id)
		}
	}

	// drain any delayed entries whose trigger tick has arrived
	var remaining []delayedEntry
	for _, d := range t.qDelayed {
		if tick >= d.triggerTick {
			*queue = append(*queue, d.id)
			t.delayArrived[d.id] = true
			delete(t.delayPending, d.id)
		} else {
			remaining = append(remaining, d)
		}
	}
	t.qDelayed = remaining

	if t.nextTickIdx >= len(t.tickTriggers) &&
		t.nextMillisIdx >= len(t.millisTriggers) &&
		len(t.quantTriggers) == 0 &&
		len(t.qDelayed) == 0 {
		return ResultFinished
	}
	return ResultNormal
}

// ShouldRun applies the §4.4.4 gate chain in order, vetoing on first
// failure. delay_ticks is handled specially: the first time a delayed id
// is seen it is pushed into q_delayed and vetoed; it is only admitted
// once Update has matched and removed the delayed entry (i.e. on the
// tick it actually arrives, the id reaches ShouldRun a second time having
// already been drained from q_delayed, so the delay_ticks check is
// skipped thereafter).
func (t *CommonTracker[A]) ShouldRun(id int, tick uint64, nowMillis uint64) Result {
	if id < 0 || id >= len(t.params) {
		return ResultTerminated
	}
	p := t.params[id]

	if p.DelayTicks != nil {
		if t.delayArrived[id] {
			// this id's delayed entry fired and was drained by Update this
			// tick; admit it once, then reset so the next time its RunIf
			// fires the delay is re-armed.
			delete(t.delayArrived, id)
		} else if t.delayPending[id] {
			return ResultTerminated
		} else {
			t.qDelayed = append(t.qDelayed, delayedEntry{triggerTick: tick + *p.DelayTicks, id: id})
			t.delayPending[id] = true
			return ResultTerminated
		}
	}
	if p.IfPreviousScriptKey != nil {
		if t.previousKey == nil || *t.previousKey != *p.IfPreviousScriptKey {
			return ResultTerminated
		}
	}
	for _, s := range p.ForbidSlotsAny {
		if t.slotsEnabled[s] {
			return ResultTerminated
		}
	}
	if len(p.ForbidSlotsAll) > 0 {
		all := true
		for _, s := range p.ForbidSlotsAll {
			if !t.slotsEnabled[s] {
				all = false
				break
			}
		}
		if all {
			return ResultTerminated
		}
	}
	for _, s := range p.RequireSlotsAll {
		if !t.slotsEnabled[s] {
			return ResultTerminated
		}
	}
	if len(p.RequireSlotsAny) > 0 {
		any := false
		for _, s := range p.RequireSlotsAny {
			if t.slotsEnabled[s] {
				any = true
				break
			}
		}
		if !any {
			return ResultTerminated
		}
	}
	if p.RngPct != nil {
		pct := *p.RngPct
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		if t.rng.Float64()*100 >= pct {
			return ResultTerminated
		}
	}
	return ResultNormal
}
