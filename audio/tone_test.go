package audio

import "testing"

func TestToneSourceStreamsExactDuration(t *testing.T) {
	src := NewToneSource(WaveSine, 440, 0.01, 1000, 0, 0, 0)

	var total int
	buf := make([][2]float64, 3)
	for {
		n, ok := src.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	if total != 10 {
		t.Errorf("total samples = %d, want 10 (0.01s at 1000Hz)", total)
	}
}

func TestToneSourceAttackRampsFromZero(t *testing.T) {
	src := NewToneSource(WaveSquare, 100, 1.0, 1000, 0.01, 0, 0)

	buf := make([][2]float64, 1)
	src.Stream(buf)
	if buf[0][0] != 0 {
		t.Errorf("first sample under attack = %v, want 0", buf[0][0])
	}
}

func TestToneSourceNoiseStaysInRange(t *testing.T) {
	src := NewToneSource(WaveNoise, 0, 0.05, 1000, 0, 0, 0)

	buf := make([][2]float64, 1)
	for {
		n, ok := src.Stream(buf)
		if n > 0 && (buf[0][0] < -1 || buf[0][0] > 1) {
			t.Fatalf("noise sample %v out of [-1,1]", buf[0][0])
		}
		if !ok {
			break
		}
	}
}
