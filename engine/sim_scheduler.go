package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/vi-fighter/core"
)

// TickFunc is one stage of the fixed-tick pipeline (transition flush,
// animation/script update, an X-level consumer, ...), run once per
// simulation tick in registration order.
type TickFunc func(tick uint64)

// SimScheduler drives core.GameTime on a fixed wall-clock cadence as a
// pausable goroutine loop (PausableClock, stop channel, a timer re-armed
// with the fixed tick interval after each wake), scoped to the CORE
// simulation pipeline.
type SimScheduler struct {
	clock *PausableClock
	time  *core.GameTime

	tickInterval    time.Duration
	maxTicksPerFrame int // 0 == uncapped; unconsumed debt accrues, never drops

	mu    sync.Mutex
	funcs []TickFunc

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool

	lastWallUpdate time.Time
}

// NewSimScheduler creates a scheduler running the fixed tick at hz,
// paced against clock, capping at most maxTicksPerFrame simulation ticks
// processed per wall-clock wake (0 disables the cap).
func NewSimScheduler(clock *PausableClock, hz float64, maxTicksPerFrame int) *SimScheduler {
	return &SimScheduler{
		clock:            clock,
		time:             core.NewGameTime(hz),
		tickInterval:     time.Duration(float64(time.Second) / hz),
		maxTicksPerFrame: maxTicksPerFrame,
		stopChan:         make(chan struct{}),
	}
}

// GameTime exposes the scheduler's clock for read-only consultation by
// consumers (animation players, script players, the mixer's tick mapping).
func (s *SimScheduler) GameTime() *core.GameTime { return s.time }

// Register appends fn to the per-tick pipeline; registration order is
// run order, so callers should register the transition flush before any
// consumer that depends on its output.
func (s *SimScheduler) Register(fn TickFunc) {
	s.mu.Lock()
	s.funcs = append(s.funcs, fn)
	s.mu.Unlock()
}

// Start begins the scheduler loop in its own goroutine.
func (s *SimScheduler) Start() {
	if s.running.CompareAndSwap(false, true) {
		s.wg.Add(1)
		go s.loop()
	}
}

// Stop halts the scheduler loop and waits for it to exit.
func (s *SimScheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.running.CompareAndSwap(true, false) {
			close(s.stopChan)
			s.wg.Wait()
		}
	})
}

func (s *SimScheduler) loop() {
	defer s.wg.Done()

	s.lastWallUpdate = s.clock.Now()

	timer := time.NewTimer(s.tickInterval)
	defer timer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-timer.C:
		}

		if s.clock.IsPaused() {
			s.onPaused()
			timer.Reset(s.tickInterval)
			continue
		}

		now := s.clock.Now()
		s.time.Update(now.Sub(s.lastWallUpdate))
		s.lastWallUpdate = now

		s.runDueTicks()

		timer.Reset(s.tickInterval)
	}
}

// onPaused re-bases lastWallUpdate to the current (frozen) clock reading
// and resets GameTime's overstep, so that resuming after an arbitrarily
// long pause does not attribute the stall to a burst of newly-due ticks.
func (s *SimScheduler) onPaused() {
	s.lastWallUpdate = s.clock.Now()
	s.time.Reset()
}

// runDueTicks drains every whole tick GameTime.Update made available,
// running the full registered pipeline once per tick, bounded by
// maxTicksPerFrame when set. Debt beyond the cap is left on GameTime's
// tick/totalTicks gap and consumed on a later frame -- a capped frame
// accrues debt rather than dropping it.
func (s *SimScheduler) runDueTicks() {
	ran := 0
	for s.time.Tick() != s.time.TotalTicks() {
		if s.maxTicksPerFrame > 0 && ran >= s.maxTicksPerFrame {
			break
		}
		s.time.Advance()
		tick := s.time.Tick()

		s.mu.Lock()
		funcs := s.funcs
		s.mu.Unlock()
		for _, fn := range funcs {
			fn(tick)
		}
		ran++
	}
}
