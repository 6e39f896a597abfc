package script

import (
	"testing"

	"github.com/lixenwraith/vi-fighter/core"
)

func u64p(v uint64) *uint64 { return &v }

func TestCommonTrackerTickTriggerFiresStrictlyAfter(t *testing.T) {
	rows := []Row[int]{
		{RunIf: RunIf{Kind: RunIfTick, Tick: 5}, Action: 1},
	}
	tr := NewCommonTracker[int](nil)
	tr.Init(core.Entity(1), Settings{TimeBase: TimeBaseStartup}, rows)
	tr.Finalize()

	var queue []int
	tr.Update(5, 0, &queue)
	if len(queue) != 0 {
		t.Fatalf("expected no fire at tick == trigger tick, got queue %v", queue)
	}

	queue = nil
	tr.Update(6, 0, &queue)
	if len(queue) != 1 || queue[0] != 0 {
		t.Fatalf("expected row 0 to fire at tick 6, got %v", queue)
	}
}

func TestCommonTrackerSlotEnableDisableSymmetry(t *testing.T) {
	rows := []Row[int]{
		{RunIf: RunIf{Kind: RunIfSlotEnable, Slot: "boost"}, Action: 10},
		{RunIf: RunIf{Kind: RunIfSlotDisable, Slot: "boost"}, Action: 11},
	}
	tr := NewCommonTracker[int](nil)
	tr.Init(core.Entity(1), Settings{TimeBase: TimeBaseStartup}, rows)
	tr.Finalize()

	var queue []int
	tr.SetSlot("boost", true, &queue)
	if len(queue) != 1 || queue[0] != 0 {
		t.Fatalf("expected enable id to fire, got %v", queue)
	}

	// stopping while the slot is still enabled must force the disable id,
	// even though SetSlot(false) was never called explicitly.
	queue = nil
	tr.DoStop(&queue)
	if len(queue) != 1 || queue[0] != 1 {
		t.Fatalf("expected takeSlots to force the disable id on stop, got %v", queue)
	}
}

func TestCommonTrackerDelayedActionFiresExactlyOnce(t *testing.T) {
	delay := u64p(3)
	rows := []Row[int]{
		{RunIf: RunIf{Kind: RunIfTick, Tick: 0}, Params: ActionParams{DelayTicks: delay}, Action: 0},
	}
	tr := NewCommonTracker[int](nil)
	tr.Init(core.Entity(1), Settings{TimeBase: TimeBaseStartup}, rows)
	tr.Finalize()

	// RunIf fires at tick 1 (strict '>' over tick 0); ShouldRun sees the
	// delay param for the first time and vetoes, arming q_delayed for tick 4.
	var queue []int
	tr.Update(1, 0, &queue)
	if len(queue) != 1 {
		t.Fatalf("expected RunIf to enqueue the row once, got %v", queue)
	}
	if got := tr.ShouldRun(queue[0], 1, 0); got != ResultTerminated {
		t.Fatalf("expected first ShouldRun to veto pending the delay, got %v", got)
	}

	// Ticks before the delayed trigger tick must not re-admit the id.
	for tick := uint64(2); tick < 4; tick++ {
		queue = nil
		tr.Update(tick, 0, &queue)
		if len(queue) != 0 {
			t.Fatalf("tick %d: expected no drain before the delay elapses, got %v", tick, queue)
		}
	}

	queue = nil
	tr.Update(4, 0, &queue)
	if len(queue) != 1 {
		t.Fatalf("expected the delayed id to drain at tick 4, got %v", queue)
	}
	if got := tr.ShouldRun(queue[0], 4, 0); got != ResultNormal {
		t.Fatalf("expected the drained id to be admitted, got %v", got)
	}

	// admitting it a second time at the same tick (e.g. a stray re-queue)
	// must not be treated as still-arrived.
	if got := tr.ShouldRun(queue[0], 4, 0); got != ResultTerminated {
		t.Fatalf("expected delayArrived to be consumed exactly once, got %v", got)
	}
}

func TestCommonTrackerPlaybackStartStopIDs(t *testing.T) {
	rows := []Row[int]{
		{RunIf: RunIf{Kind: RunIfPlaybackStart}, Action: 0},
		{RunIf: RunIf{Kind: RunIfPlaybackStop}, Action: 1},
	}
	tr := NewCommonTracker[int](nil)
	tr.Init(core.Entity(1), Settings{TimeBase: TimeBaseStartup}, rows)
	tr.Finalize()

	var queue []int
	tr.DoStart(&queue)
	if len(queue) != 1 || queue[0] != 0 {
		t.Fatalf("expected DoStart to enqueue row 0, got %v", queue)
	}

	queue = nil
	tr.DoStop(&queue)
	if len(queue) != 1 || queue[0] != 1 {
		t.Fatalf("expected DoStop to enqueue row 1, got %v", queue)
	}
}
