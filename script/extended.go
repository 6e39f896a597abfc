package script

import "github.com/lixenwraith/vi-fighter/core"

// Extension is a second tracker composed alongside CommonTracker by
// ExtendedTracker. Extensions typically ignore the slot/time machinery
// and only contribute their own Update/ShouldRun logic.
type Extension[A any] interface {
	Tracker[A]
}

// ExtendedTracker dispatches every Tracker operation to both an
// extension and a CommonTracker, aggregating their results per spec
// §4.4.6: Terminated if either terminates; Finished only if both finish;
// Loop if either loops; ids from both are queued together.
type ExtendedTracker[A any] struct {
	Ext    Extension[A]
	Common *CommonTracker[A]
}

// NewExtendedTracker composes ext with the given CommonTracker.
func NewExtendedTracker[A any](ext Extension[A], common *CommonTracker[A]) *ExtendedTracker[A] {
	return &ExtendedTracker[A]{Ext: ext, Common: common}
}

func (e *ExtendedTracker[A]) Init(entity core.Entity, settings Settings, rows []Row[A]) {
	e.Ext.Init(entity, settings, rows)
	e.Common.Init(entity, settings, rows)
}

func (e *ExtendedTracker[A]) Finalize() {
	e.Ext.Finalize()
	e.Common.Finalize()
}

func (e *ExtendedTracker[A]) Update(tick uint64, nowMillis uint64, queue *[]int) Result {
	a := e.Ext.Update(tick, nowMillis, queue)
	b := e.Common.Update(tick, nowMillis, queue)
	return aggregateFinish(a, b)
}

func (e *ExtendedTracker[A]) ShouldRun(id int, tick uint64, nowMillis uint64) Result {
	a := e.Ext.ShouldRun(id, tick, nowMillis)
	if a == ResultTerminated {
		return ResultTerminated
	}
	return e.Common.ShouldRun(id, tick, nowMillis)
}

func (e *ExtendedTracker[A]) DoStart(queue *[]int) {
	e.Ext.DoStart(queue)
	e.Common.DoStart(queue)
}

func (e *ExtendedTracker[A]) DoStop(queue *[]int) {
	e.Ext.DoStop(queue)
	e.Common.DoStop(queue)
}

func (e *ExtendedTracker[A]) SetSlot(name string, value bool, queue *[]int) {
	e.Ext.SetSlot(name, value, queue)
	e.Common.SetSlot(name, value, queue)
}

// aggregateFinish combines two trackers' results: Terminated if either;
// Finished only if both; Loop if either; else Normal.
func aggregateFinish(a, b Result) Result {
	if a == ResultTerminated || b == ResultTerminated {
		return ResultTerminated
	}
	if a == ResultLoop || b == ResultLoop {
		return ResultLoop
	}
	if a == ResultFinished && b == ResultFinished {
		return ResultFinished
	}
	return ResultNormal
}
