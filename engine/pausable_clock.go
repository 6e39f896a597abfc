package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// PausableClock is the wall clock SimScheduler paces its fixed ticks
// against: Now() freezes at the pause point and resumes from there,
// so a paused simulation accumulates no tick debt for the time it was
// paused. Trimmed to exactly what SimScheduler drives (Now, IsPaused,
// Pause, Resume); it has no independent TimeProvider abstraction to
// swap out since nothing needs a non-wall-clock source for it.
type PausableClock struct {
	mu sync.RWMutex

	realStartTime time.Time // when the clock was created (real time)
	gameStartTime time.Time // game time epoch (adjusted for pauses)

	isPaused        atomic.Bool
	pauseStartTime  time.Time     // when the current pause started (real time)
	totalPausedTime time.Duration // cumulative pause duration
}

// NewPausableClock creates a clock whose game time starts now.
func NewPausableClock() *PausableClock {
	now := time.Now()
	return &PausableClock{
		realStartTime: now,
		gameStartTime: now,
	}
}

// Now returns the current game time: wall time minus everything spent
// paused, frozen at the pause point while paused.
func (pc *PausableClock) Now() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.isPaused.Load() {
		return pc.gameStartTime.Add(pc.pauseStartTime.Sub(pc.realStartTime) - pc.totalPausedTime)
	}

	gameElapsed := time.Now().Sub(pc.realStartTime) - pc.totalPausedTime
	return pc.gameStartTime.Add(gameElapsed)
}

// Pause freezes Now() at its current value. A second call while already
// paused is a no-op.
func (pc *PausableClock) Pause() {
	if pc.isPaused.CompareAndSwap(false, true) {
		pc.mu.Lock()
		pc.pauseStartTime = time.Now()
		pc.mu.Unlock()
	}
}

// Resume unfreezes Now(), folding the elapsed pause duration into
// totalPausedTime so game time does not jump forward by the pause
// length. A call while not paused is a no-op.
func (pc *PausableClock) Resume() {
	if pc.isPaused.CompareAndSwap(true, false) {
		pc.mu.Lock()
		if !pc.pauseStartTime.IsZero() {
			pc.totalPausedTime += time.Now().Sub(pc.pauseStartTime)
			pc.pauseStartTime = time.Time{}
		}
		pc.mu.Unlock()
	}
}

// IsPaused reports the current pause state.
func (pc *PausableClock) IsPaused() bool {
	return pc.isPaused.Load()
}
