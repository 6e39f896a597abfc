package animation

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

type fakeSprite struct {
	frame uint32
	color colorful.Color
}

func (f *fakeSprite) FrameIndex() uint32          { return f.frame }
func (f *fakeSprite) SetFrameIndex(idx uint32)    { f.frame = idx }
func (f *fakeSprite) SetColor(c colorful.Color)   { f.color = c }

func TestPlayerAdvancesFramesOnSchedule(t *testing.T) {
	def := &Definition{
		FrameIndexStart: 0,
		FrameIndexEnd:   2,
		TicksPerFrame:   2,
		TickMode:        TickModeRelative,
	}
	p := NewPlayer()
	sprite := &fakeSprite{}
	p.Play(def)

	p.Update(100, sprite) // pending -> playing, frame 0
	if sprite.FrameIndex() != 0 {
		t.Fatalf("frame = %d, want 0 right after Play", sprite.FrameIndex())
	}

	p.Update(101, sprite) // relTick 1, frameIDNow 0: no advance yet
	if sprite.FrameIndex() != 0 {
		t.Fatalf("frame = %d, want 0 at relTick 1", sprite.FrameIndex())
	}

	p.Update(102, sprite) // relTick 2, frameIDNow 1: advance to frame 1
	if sprite.FrameIndex() != 1 {
		t.Fatalf("frame = %d, want 1 at relTick 2", sprite.FrameIndex())
	}

	p.Update(104, sprite) // relTick 4, frameIDNow 2: advance to frame 2
	if sprite.FrameIndex() != 2 {
		t.Fatalf("frame = %d, want 2 at relTick 4", sprite.FrameIndex())
	}

	// Advancing to frame 2 moved nextIndex to 3, past FrameIndexEnd == 2,
	// which stopped the player on that same update; it stays stopped.
	p.Update(106, sprite)
	if p.Playing() {
		t.Error("expected player to stop once nextIndex exceeds FrameIndexEnd")
	}
}

func TestPlayerTickScriptFiresAtOrBeforeRelTick(t *testing.T) {
	def := &Definition{
		FrameIndexStart: 0,
		FrameIndexEnd:   5,
		TicksPerFrame:   100, // large enough that frame-advance never interferes
		TickMode:        TickModeRelative,
		Tick: []TickTrigger{
			{Tick: 3, Action: Action{Kind: ActionSetFrameNow, FrameIndex: 9}},
		},
	}
	p := NewPlayer()
	sprite := &fakeSprite{}
	p.Play(def)

	p.Update(50, sprite) // starts; startingTick = 50
	p.Update(52, sprite) // relTick 2: not yet
	if sprite.FrameIndex() == 9 {
		t.Fatal("tick script fired before its relative tick")
	}
	p.Update(53, sprite) // relTick 3: fires (non-strict <=)
	if sprite.FrameIndex() != 9 {
		t.Fatalf("frame = %d, want 9 once relTick reaches the trigger tick", sprite.FrameIndex())
	}
}

func TestPlayerPausedNoScriptsSkipsUpdateEntirely(t *testing.T) {
	def := &Definition{
		FrameIndexStart: 0,
		FrameIndexEnd:   5,
		TicksPerFrame:   1,
		TickMode:        TickModeRelative,
	}
	p := NewPlayer()
	sprite := &fakeSprite{}
	p.Play(def)
	p.Update(10, sprite)

	p.SetPaused(PausedNoScripts)
	p.Update(11, sprite)
	p.Update(12, sprite)

	if sprite.FrameIndex() != 0 {
		t.Errorf("frame = %d, want 0: PausedNoScripts must not advance frames", sprite.FrameIndex())
	}
}
