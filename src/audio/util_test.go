package audio

import "testing"

func TestNoteToFreq(t *testing.T) {
	expectNearlyEqual(t, NoteToFreq(69), 440)
	expectNearlyEqual(t, NoteToFreq(81), 880)
	expectNearlyEqual(t, NoteToFreq(57), 220)
	expectNearlyEqual(t, NoteToFreq(60), 261.6256)
	expectEqual(t, FreqToNote(440), 69)
	expectEqual(t, FreqToNote(261.6), 60)
	expectEqual(t, FreqToNote(0), 0)
	expectEqual(t, FreqToNote(1e9), 127)
}

func TestPositiveMod(t *testing.T) {
	expectNearlyEqual(t, positiveMod(-0.25, 1), 0.75)
	expectNearlyEqual(t, positiveMod(2.5, 1), 0.5)
}

func TestNormalize(t *testing.T) {
	x := []float32{0, 2, -4, 1}
	Normalize(x)
	expectEqual(t, x[0], float32(0))
	expectEqual(t, x[1], float32(0.5))
	expectEqual(t, x[2], float32(-1))
	expectEqual(t, x[3], float32(0.25))

	y := []float32{0.5, -0.25}
	Normalize(y)
	expectEqual(t, y[0], float32(0.5))
}

func TestClip(t *testing.T) {
	x := []float32{1.5, -3, 0.25}
	Clip(x)
	expectEqual(t, x[0], float32(1))
	expectEqual(t, x[1], float32(-1))
	expectEqual(t, x[2], float32(0.25))
}

func TestSquish(t *testing.T) {
	x := []float32{-1, 0, 1}
	squish(x)
	expectEqual(t, x[0], float32(0))
	expectEqual(t, x[1], float32(0.5))
	expectEqual(t, x[2], float32(1))
}
