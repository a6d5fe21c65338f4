package audio

import (
	"math"

	"github.com/viterin/vek/vek32"
)

const (
	a4Note = 69
	a4Freq = 440.0
)

// ----- Utility ----- //

func positiveMod(a float64, b float64) float64 {
	if b <= 0 {
		panic("b should be positive")
	}
	m := math.Mod(a, b)
	if m < 0 {
		m += b
	}
	return m
}

// NoteToFreq maps a MIDI note to equal-temperament frequency (A4 = 69 = 440Hz).
func NoteToFreq(note int) float64 {
	return a4Freq * math.Pow(2, float64(note-a4Note)/12)
}

// FreqToNote returns the nearest MIDI note, clamped to 0-127.
func FreqToNote(freq float64) int {
	if freq <= 0 {
		return 0
	}
	note := int(math.Round(math.Log2(freq/a4Freq)*12)) + a4Note
	if note < 0 {
		note = 0
	}
	if note > 127 {
		note = 127
	}
	return note
}

// squish maps WAVE samples into the AMP range.
func squish(x []float32) {
	vek32.AddNumber_Inplace(x, 1)
	vek32.MulNumber_Inplace(x, 0.5)
}

// peak returns the largest absolute sample.
func peak(x []float32) float32 {
	max := vek32.Max(x)
	min := vek32.Min(x)
	if -min > max {
		return -min
	}
	return max
}

// Normalize scales x by its peak absolute value when that peak exceeds 1.
// It does nothing if x already fits in [-1, 1].
func Normalize(x []float32) {
	p := peak(x)
	if p > 1 {
		vek32.MulNumber_Inplace(x, 1/p)
	}
}

// Clip hard-limits x to [-1, 1].
func Clip(x []float32) {
	for i, v := range x {
		if v > 1 {
			x[i] = 1
		} else if v < -1 {
			x[i] = -1
		} else if v != v {
			x[i] = 0
		}
	}
}
