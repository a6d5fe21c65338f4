package synth

import (
	"math"

	"github.com/jinjor/toysynth/src/audio"
)

// Controller numbers of bank A.
const (
	ccModeToggle  = 20
	ccAllNotesOff = 21
	ccAttack      = 70
	ccDecay       = 71
	ccSustain     = 72
	ccRelease     = 73
	ccCutoff      = 74
	ccCrossfade   = 75
	ccDelayTime   = 76
	ccWetGain     = 77
	ccMono        = 126
	ccPoly        = 127
)

// Gain tags the crossfade controller addresses.
const (
	TagOscA = "osc_a"
	TagOscB = "osc_b"
)

const tableSize = 128

// tables maps controller values 0-127 onto parameter ranges.
type tables struct {
	time   [tableSize]float64 // seconds, log scaled, 0 at the bottom
	level  [tableSize]float64 // linear 0-1
	cutoff [tableSize]float64 // Hz, log scaled
	delay  [tableSize]float64 // seconds, log scaled
}

// logspace returns base^x for x evenly spaced over [start, stop].
func logspace(start float64, stop float64, base float64, out []float64) {
	for i := range out {
		x := start + (stop-start)*float64(i)/float64(len(out)-1)
		out[i] = math.Pow(base, x)
	}
}

func newTables() *tables {
	t := &tables{}
	logspace(-3, math.Log10(9), 10, t.time[:])
	t.time[0] = 0
	for i := range t.level {
		t.level[i] = float64(i) / (tableSize - 1)
	}
	logspace(4, 14, 2, t.cutoff[:])
	logspace(-2, math.Log10(audio.DefaultMaxDelay), 10, t.delay[:])
	t.delay[tableSize-1] = audio.DefaultMaxDelay
	return t
}
