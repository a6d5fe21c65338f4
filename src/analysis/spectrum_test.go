package analysis

import (
	"math"
	"testing"
)

func sine(freq float64, sampleRate int, n int) []float32 {
	x := make([]float32, n)
	for i := range x {
		x[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	return x
}

func TestPeakFrequency(t *testing.T) {
	const sampleRate = 8000
	const n = 4096
	for _, freq := range []float64{100, 440, 1234} {
		got := PeakFrequency(sine(freq, sampleRate, n), sampleRate)
		if math.Abs(got-freq) > BinWidth(n, sampleRate) {
			t.Errorf("expected %v, but got: %v", freq, got)
		}
	}
}

func TestPeakFrequencyOfSilence(t *testing.T) {
	if got := PeakFrequency(make([]float32, 1024), 8000); got != 0 {
		t.Errorf("expected 0, but got: %v", got)
	}
}

func TestSpectrumLength(t *testing.T) {
	s := Spectrum(sine(1000, 8000, 256))
	if len(s) != 129 {
		t.Errorf("expected 129 bins, but got: %v", len(s))
	}
	// a 1000Hz sine sits on bin 32 and keeps roughly half its amplitude under a Hann window
	if math.Abs(s[32]-0.5) > 0.01 {
		t.Errorf("expected about 0.5 at bin 32, but got: %v", s[32])
	}
}
