package combat

import (
	"testing"

	"github.com/lixenwraith/vi-fighter/audio"
	"github.com/lixenwraith/vi-fighter/core"
	"github.com/lixenwraith/vi-fighter/engine"
)

func newTestArbitrator() *Arbitrator {
	return NewArbitrator(engine.NewMarkerStore(), engine.NewTransitionQueue(), nil, 96)
}

func TestResolveHitAppliesOnce(t *testing.T) {
	a := newTestArbitrator()
	key := HitKey{Attacker: core.Entity(1), Target: core.Entity(2), SwingID: 1}

	res := a.ResolveHit(10, key, 5, 6, nil, 1)
	if !res.Applied || res.Damage != 5 {
		t.Fatalf("expected first hit to apply with damage 5, got %+v", res)
	}

	res2 := a.ResolveHit(10, key, 5, 6, nil, 1)
	if res2.Applied {
		t.Error("expected the same HitKey to be deduplicated within a swing")
	}
}

func TestResolveHitVetoedByInvulnerability(t *testing.T) {
	a := newTestArbitrator()
	target := core.Entity(3)

	insert := MarkerInvulnerable
	a.transitions.Push(target, engine.Transition{Insert: &insert})
	engine.FlushTransitions(a.markers, a.transitions)

	res := a.ResolveHit(0, HitKey{Target: target}, 5, 6, nil, 1)
	if res.Applied {
		t.Error("expected invulnerable target to veto the hit")
	}
}

func TestResetSwingAllowsReResolution(t *testing.T) {
	a := newTestArbitrator()
	key := HitKey{Attacker: core.Entity(1), Target: core.Entity(2), SwingID: 7}

	a.ResolveHit(0, key, 1, 1, nil, 1)
	a.ResetSwing(7)

	res := a.ResolveHit(1, key, 1, 1, nil, 1)
	if !res.Applied {
		t.Error("expected ResetSwing to clear the dedupe entry for its swing id")
	}
}

func TestTickClearsExpiredStun(t *testing.T) {
	a := newTestArbitrator()
	target := core.Entity(4)
	key := HitKey{Target: target}

	a.ResolveHit(0, key, 1, 3, nil, 1)
	engine.FlushTransitions(a.markers, a.transitions)
	if !a.markers.Has(target, MarkerHitStun) {
		t.Fatal("expected hit stun marker to be set after resolving the hit")
	}

	a.Tick(3, 0)
	engine.FlushTransitions(a.markers, a.transitions)
	if a.markers.Has(target, MarkerHitStun) {
		t.Error("expected hit stun marker to be cleared once the stun window elapses")
	}
}

func TestResolveHitSchedulesSynthesizedHitSound(t *testing.T) {
	ctrl := audio.NewPrecisionMixerController(2, 48000, 96)
	a := NewArbitrator(engine.NewMarkerStore(), engine.NewTransitionQueue(), ctrl, 96)
	key := HitKey{Attacker: core.Entity(1), Target: core.Entity(2), SwingID: 1}

	tone := audio.NewToneSource(audio.WaveSquare, 220, 0.05, 48000, 0.001, 0.02, 0)
	res := a.ResolveHit(5, key, 3, 4, tone, 1)
	if !res.Applied {
		t.Fatal("expected hit to apply")
	}

	// Tick 5 at 96Hz maps to sample 2500 at 48kHz: silence before it, the
	// tone audible shortly after.
	mixer := audio.NewPrecisionMixer(ctrl)
	buf := make([][2]float64, 2600)
	mixer.Stream(buf)
	for i := 0; i < 2500; i++ {
		if buf[i] != ([2]float64{}) {
			t.Fatalf("frame %d = %v, want silence before the hit tick's sample", i, buf[i])
		}
	}
	heard := false
	for _, f := range buf[2500:] {
		if f[0] != 0 || f[1] != 0 {
			heard = true
			break
		}
	}
	if !heard {
		t.Error("expected the hit sound to play from the hit tick's sample")
	}
}
