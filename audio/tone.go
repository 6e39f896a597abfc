package audio

import (
	"math"
	"math/rand"
)

// Waveform selects the oscillator shape used by a ToneSource.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// ToneSource is a procedurally synthesized beep.Streamer: a single
// enveloped oscillator tone, generated sample-by-sample so it can be
// scheduled through PrecisionMixerController like any decoded sound
// effect. Gameplay code uses it for simple hit/UI tones rather than
// shipping short audio assets for every effect.
type ToneSource struct {
	wave       Waveform
	freq       float64
	sampleRate int

	attackSamples  int
	releaseSamples int
	totalSamples   int

	lowpassCutoff float64 // 0 disables the filter

	phase  float64
	n      int
	lpPrev float64
	rng    *rand.Rand
}

// NewToneSource creates a tone at freq Hz, lasting dur seconds at
// sampleRate, with a linear attack/release envelope and an optional
// one-pole low-pass whose lowpassCutoff is the filter's smoothing
// coefficient per sample (clamped to 0.99; 0 disables it).
func NewToneSource(wave Waveform, freq float64, dur float64, sampleRate int, attackSec, releaseSec, lowpassCutoff float64) *ToneSource {
	total := int(dur * float64(sampleRate))
	if total < 1 {
		total = 1
	}
	return &ToneSource{
		wave:           wave,
		freq:           freq,
		sampleRate:     sampleRate,
		attackSamples:  int(attackSec * float64(sampleRate)),
		releaseSamples: int(releaseSec * float64(sampleRate)),
		totalSamples:   total,
		lowpassCutoff:  lowpassCutoff,
		rng:            rand.New(rand.NewSource(1)),
	}
}

// Stream fills samples with mono tone values duplicated to both
// channels, reporting done once totalSamples have been emitted.
func (s *ToneSource) Stream(samples [][2]float64) (int, bool) {
	if s.n >= s.totalSamples {
		return 0, false
	}

	n := 0
	for n < len(samples) && s.n < s.totalSamples {
		v := s.oscillate()
		v *= s.envelope()
		if s.lowpassCutoff > 0 {
			v = s.lowpass(v)
		}
		samples[n] = [2]float64{v, v}
		s.n++
		n++
	}
	return n, true
}

func (s *ToneSource) Err() error { return nil }

func (s *ToneSource) oscillate() float64 {
	var v float64
	switch s.wave {
	case WaveSine:
		v = math.Sin(2 * math.Pi * s.phase)
	case WaveSquare:
		if s.phase < 0.5 {
			v = 1
		} else {
			v = -1
		}
	case WaveSaw:
		v = 2*s.phase - 1
	case WaveNoise:
		v = s.rng.Float64()*2 - 1
	}
	s.phase += s.freq / float64(s.sampleRate)
	if s.phase >= 1 {
		s.phase -= 1
	}
	return v
}

func (s *ToneSource) envelope() float64 {
	if s.n < s.attackSamples && s.attackSamples > 0 {
		return float64(s.n) / float64(s.attackSamples)
	}
	releaseStart := s.totalSamples - s.releaseSamples
	if s.n >= releaseStart && s.releaseSamples > 0 {
		return float64(s.totalSamples-s.n) / float64(s.releaseSamples)
	}
	return 1
}

func (s *ToneSource) lowpass(v float64) float64 {
	alpha := s.lowpassCutoff
	if alpha > 0.99 {
		alpha = 0.99
	}
	s.lpPrev += alpha * (v - s.lpPrev)
	return s.lpPrev
}

