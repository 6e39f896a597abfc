package audio

import (
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
)

// Source is any beep.Streamer; the mixer's public API accepts decoded
// sound effects, synthesized tones, or anything else satisfying the
// interface.
type Source = beep.Streamer

// pendingTrack is a submission waiting to be promoted into the playing
// list by the audio thread.
type pendingTrack struct {
	startAtSample *int64 // nil == promote at the very next channel-0 boundary
	volume        float64
	pan           float64
	channels      int // 1 or 2; the source's own channel count
	firstSample   [2]float64
	source        Source
}

// activeTrack is a track the audio thread currently mixes.
type activeTrack struct {
	volume         float64
	pan            float64
	channels       int
	currentChannel int // for sourceChannels==2 and mixer mono-downmix bookkeeping
	done           bool
	source         Source
	// pendingFrame/haveFrame buffer one beep stereo frame read ahead so
	// the per-output-sample pull loop can be expressed in terms of
	// beep's frame-oriented Stream call.
	pendingFrame [1][2]float64
	haveFrame    bool
}

// PrecisionMixerController is the cross-thread-safe half of the mixer:
// submissions take a mutex and push into pending; the audio thread
// (PrecisionMixer) promotes them without blocking except to briefly
// acquire that same mutex when has_pending is set.
type PrecisionMixerController struct {
	channels   int // mixer output channel count, 1 or 2
	sampleRate int
	tickRate   float64

	mu      sync.Mutex
	pending []pendingTrack

	hasPending     atomic.Bool
	resetTriggered atomic.Bool
	resetOffset    atomic.Int64
}

// NewPrecisionMixerController creates a controller for a mixer running at
// sampleRate samples/sec, tickRate simulation ticks/sec, with the given
// output channel count (1 or 2).
func NewPrecisionMixerController(channels, sampleRate int, tickRate float64) *PrecisionMixerController {
	if channels > 2 {
		panic("audio: mixer channel count must be 1 or 2")
	}
	return &PrecisionMixerController{
		channels:   channels,
		sampleRate: sampleRate,
		tickRate:   tickRate,
	}
}

// submit is the common tail of every Play* method: it samples the
// source's first frame immediately, pushes into pending, and flags
// has_pending.
func (c *PrecisionMixerController) submit(startAt *int64, vol, pan float64, channels int, src Source) {
	if channels > 2 {
		panic("audio: source channel count must be 1 or 2")
	}

	var buf [1][2]float64
	n, _ := src.Stream(buf[:])
	if n == 0 {
		buf[0] = [2]float64{}
	}

	c.mu.Lock()
	c.pending = append(c.pending, pendingTrack{
		startAtSample: startAt,
		volume:        vol,
		pan:           pan,
		channels:      channels,
		firstSample:   buf[0],
		source:        src,
	})
	c.mu.Unlock()
	c.hasPending.Store(true)
}

// PlayImmediately schedules src to start at the next channel-0 sample
// boundary the mixer reaches.
func (c *PrecisionMixerController) PlayImmediately(src Source, channels int, vol, pan float64) {
	c.submit(nil, vol, pan, channels, src)
}

// PlayAtTime schedules src to start floor(dur*sample_rate) samples from
// the controller's epoch.
func (c *PrecisionMixerController) PlayAtTime(durSeconds float64, src Source, channels int, vol, pan float64) {
	at := int64(durSeconds * float64(c.sampleRate))
	c.submit(&at, vol, pan, channels, src)
}

// PlayAtTick schedules src to start at the sample aligned with tick,
// optionally offset by offsetNs nanoseconds of additional sub-tick
// precision.
func (c *PrecisionMixerController) PlayAtTick(tick uint64, offsetNs int64, src Source, channels int, vol, pan float64) {
	base := int64(float64(tick) * float64(c.sampleRate) / c.tickRate)
	extra := int64(float64(offsetNs) * float64(c.sampleRate) / 1e9)
	at := base + extra
	c.submit(&at, vol, pan, channels, src)
}

// TriggerReset resets sample_count to -delayMs*sample_rate/1000 on the
// next pulled sample.
func (c *PrecisionMixerController) TriggerReset(delayMs float64) {
	offset := -int64(delayMs * float64(c.sampleRate) / 1000.0)
	c.resetOffset.Store(offset)
	c.resetTriggered.Store(true)
}

// PrecisionMixer is the audio-thread-owned streamer; the sole owner of
// sample_count and the active-track list, which keeps the mix
// deterministic for a given submission sequence. It implements
// beep.Streamer so it can be handed straight to beep/speaker.Play.
type PrecisionMixer struct {
	ctrl *PrecisionMixerController

	channels       int
	sampleCount    int64
	currentChannel int
	playing        []activeTrack
}

// NewPrecisionMixer creates a mixer reading submissions from ctrl.
func NewPrecisionMixer(ctrl *PrecisionMixerController) *PrecisionMixer {
	return &PrecisionMixer{ctrl: ctrl, channels: ctrl.channels}
}

// Err always returns nil; the mixer itself never errors (sources that
// error simply stop contributing).
func (m *PrecisionMixer) Err() error { return nil }

// Stream fills samples with one mixed beep stereo frame per slot. A
// beep "frame" (one [2]float64 slot) corresponds directly to one full
// cycle of current_channel (0..channels-1) in the mixer's per-sample
// model: for a stereo mixer that is exactly one L-then-R cycle, so
// promotion and sample_count bookkeeping map onto frame boundaries
// without approximation.
func (m *PrecisionMixer) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		samples[i] = m.pullFrame()
	}
	return len(samples), true
}

func (m *PrecisionMixer) pullFrame() [2]float64 {
	if m.ctrl.resetTriggered.CompareAndSwap(true, false) {
		m.sampleCount = m.ctrl.resetOffset.Load()
	}

	if m.ctrl.hasPending.Load() {
		m.promote()
	}

	var left, right float64
	remaining := m.playing[:0]
	for i := range m.playing {
		t := &m.playing[i]
		l, r, done := mixOne(t, m.channels)
		left += l
		right += r
		if !done {
			remaining = append(remaining, *t)
		}
	}
	m.playing = remaining

	m.sampleCount++

	return [2]float64{left, right}
}

// promote moves every pending entry whose start_at_sample has arrived
// (or is nil) into the playing list, pre-advancing its source by any
// samples that have already elapsed since start_at_sample. Only called
// when current_channel == 0, i.e. at a frame boundary (see Stream's
// comment).
func (m *PrecisionMixer) promote() {
	m.ctrl.mu.Lock()
	pending := m.ctrl.pending
	m.ctrl.pending = nil
	m.ctrl.mu.Unlock()

	var stillPending []pendingTrack
	for _, p := range pending {
		start := m.sampleCount
		if p.startAtSample != nil {
			start = *p.startAtSample
		}
		if start > m.sampleCount {
			stillPending = append(stillPending, p)
			continue
		}

		at := activeTrack{
			volume:       p.volume,
			pan:          p.pan,
			channels:     p.channels,
			source:       p.source,
			pendingFrame: [1][2]float64{p.firstSample},
			haveFrame:    true,
		}

		behind := m.sampleCount - start
		for i := int64(0); i < behind; i++ {
			var buf [1][2]float64
			n, ok := at.source.Stream(buf[:])
			if n == 0 || !ok {
				at.done = true
				break
			}
			at.pendingFrame = buf
			at.haveFrame = true
		}

		if !at.done {
			m.playing = append(m.playing, at)
		}
	}

	m.ctrl.mu.Lock()
	m.ctrl.pending = append(m.ctrl.pending, stillPending...)
	hasMore := len(m.ctrl.pending) > 0
	m.ctrl.mu.Unlock()
	m.ctrl.hasPending.Store(hasMore)
}

// mixOne applies the channel-layout table for one active track,
// returning its L/R contribution for this frame and whether it is
// exhausted. Case naming follows (mixerChannels, sourceChannels)
// ordering.
func mixOne(t *activeTrack, mixerChannels int) (left, right float64, done bool) {
	if !t.haveFrame {
		var buf [1][2]float64
		n, ok := t.source.Stream(buf[:])
		if n == 0 || !ok {
			return 0, 0, true
		}
		t.pendingFrame = buf
		t.haveFrame = true
	}
	frame := t.pendingFrame[0]
	panL, panR := panLR(t.pan)

	switch {
	case mixerChannels == 1 && t.channels == 1:
		// (1,1): emit next*vol; advance.
		left = frame[0] * t.volume
		right = left
		t.haveFrame = false

	case mixerChannels == 2 && t.channels == 1:
		// (2,1): mono source panned across stereo output; advance once
		// both channels have been emitted for this source sample.
		left = frame[0] * t.volume * panL
		right = frame[0] * t.volume * panR
		t.haveFrame = false

	case mixerChannels == 1 && t.channels == 2:
		// (1,2): downmix stereo source to mono: average both channels.
		left = (frame[0] + frame[1]) / 2 * t.volume
		right = left
		t.haveFrame = false

	default:
		// (2,2): stereo source, stereo mixer. beep always hands us a
		// matched L/R pair per frame, so channel parity can never
		// actually drift here -- emitting silence to realign is
		// preserved by construction rather than by a runtime check,
		// since Go's frame-oriented Stream call cannot desynchronise L
		// from R the way a raw interleaved-sample pull loop could.
		left = frame[0] * t.volume * panL
		right = frame[1] * t.volume * panR
		t.haveFrame = false
	}

	return left, right, false
}

// panLR implements a linear pan law: pan==0 -> (1,1); pan==-1 -> (1,0);
// pan==+1 -> (0,1); linear between; out-of-range clamps to 0 on both
// sides.
func panLR(pan float64) (left, right float64) {
	if pan < -1 || pan > 1 {
		return 0, 0
	}
	if pan <= 0 {
		return 1, 1 + pan
	}
	return 1 - pan, 1
}
