package core

import (
	"testing"
	"time"
)

func TestGameTimeTickSequence(t *testing.T) {
	gt := NewGameTime(96)
	delta := 10500 * time.Microsecond // 10.5ms

	wantTotals := []uint64{1, 2, 3}
	wantOverstep := []float64{0.008, 0.016, 0.024}

	for i := 0; i < 3; i++ {
		gt.Update(delta)
		if gt.TotalTicks() != wantTotals[i] {
			t.Errorf("iteration %d: TotalTicks() = %d, want %d", i, gt.TotalTicks(), wantTotals[i])
		}
		if diff := gt.Overstep() - wantOverstep[i]; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("iteration %d: Overstep() = %v, want %v", i, gt.Overstep(), wantOverstep[i])
		}
	}
}

func TestGameTimeAdvanceDrainsNewTicks(t *testing.T) {
	gt := NewGameTime(96)
	gt.Update(21 * time.Millisecond) // ~2 ticks

	if gt.NewTicks() == 0 {
		t.Fatal("expected at least one new tick to be pending")
	}
	for gt.Tick() != gt.TotalTicks() {
		gt.Advance()
	}
	if gt.NewTicks() != 0 {
		t.Errorf("NewTicks() = %d after draining, want 0", gt.NewTicks())
	}
}

func TestGameTimeReset(t *testing.T) {
	gt := NewGameTime(96)
	gt.Update(10500 * time.Microsecond)
	gt.Advance()

	tickBefore := gt.Tick()
	totalBefore := gt.TotalTicks()

	gt.Reset()

	if gt.Overstep() != 0 {
		t.Errorf("Overstep() after Reset = %v, want 0", gt.Overstep())
	}
	if gt.LastUpdate() != 0 {
		t.Errorf("LastUpdate() after Reset = %v, want 0", gt.LastUpdate())
	}
	if gt.Tick() != tickBefore || gt.TotalTicks() != totalBefore {
		t.Error("Reset must not change Tick()/TotalTicks()")
	}
}
