package analysis

import (
	"math/cmplx"

	"github.com/maddyblue/go-dsp/fft"
	"github.com/maddyblue/go-dsp/window"
)

// Spectrum returns the single-sided magnitude spectrum of a Hann-windowed frame.
// Bin i is at i*sampleRate/len(samples) Hz.
func Spectrum(samples []float32) []float64 {
	x := make([]float64, len(samples))
	for i, v := range samples {
		x[i] = float64(v)
	}
	window.Apply(x, window.Hann)
	bins := fft.FFTReal(x)
	out := make([]float64, len(x)/2+1)
	for i := range out {
		out[i] = cmplx.Abs(bins[i]) * 2 / float64(len(x))
	}
	return out
}

// PeakFrequency returns the frequency of the strongest non-DC bin, or 0 for silence.
func PeakFrequency(samples []float32, sampleRate int) float64 {
	if len(samples) < 2 {
		return 0
	}
	spectrum := Spectrum(samples)
	best := 0
	for i := 1; i < len(spectrum); i++ {
		if spectrum[i] > spectrum[best] || best == 0 && spectrum[i] > 0 {
			best = i
		}
	}
	return float64(best) * float64(sampleRate) / float64(len(samples))
}

// BinWidth is the frequency resolution of a frame of n samples.
func BinWidth(n int, sampleRate int) float64 {
	return float64(sampleRate) / float64(n)
}
