package audio

import (
	"log"
	"math"
	"sync/atomic"
)

// ----- Biquad ----- //

// section is one normalized biquad: y = b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2.
type section struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// transposed direct form II; state holds the two delay registers
func (s *section) process(x float64, state *[2]float64) float64 {
	y := s.b0*x + state[0]
	state[0] = s.b1*x - s.a1*y + state[1]
	state[1] = s.b2*x - s.a2*y
	return y
}

// butterworthLowpass designs an order-N Butterworth low-pass as cascaded sections
// (bilinear transform with prewarping). Order 2 equals the RBJ cookbook low-pass with Q = 1/sqrt(2).
func butterworthLowpass(order int, cutoff float64, sampleRate float64) []section {
	k := math.Tan(math.Pi * cutoff / sampleRate)
	sections := make([]section, 0, (order+1)/2)
	for i := 0; i < order/2; i++ {
		q := 1 / (2 * math.Sin(math.Pi*float64(2*i+1)/float64(2*order)))
		norm := 1 / (1 + k/q + k*k)
		b0 := k * k * norm
		sections = append(sections, section{
			b0: b0,
			b1: 2 * b0,
			b2: b0,
			a1: 2 * (k*k - 1) * norm,
			a2: (1 - k/q + k*k) * norm,
		})
	}
	if order%2 == 1 {
		norm := 1 / (1 + k)
		sections = append(sections, section{
			b0: k * norm,
			b1: k * norm,
			a1: (k - 1) * norm,
		})
	}
	return sections
}

func processSections(sections []section, state [][2]float64, in []float32, out []float32) {
	for i, x := range in {
		v := float64(x)
		for j := range sections {
			v = sections[j].process(v, &state[j])
		}
		out[i] = float32(v)
	}
}

// ----- Low Pass Filter ----- //

type filterCoeffs struct {
	sections []section
}

// LowPassFilter is a Butterworth low-pass whose state is carried across chunks,
// so filtering in chunks equals filtering the whole stream at once.
type LowPassFilter struct {
	node
	order  int
	cutoff param
	coeffs atomic.Pointer[filterCoeffs]
	state  [][2]float64
}

var _ Component = (*LowPassFilter)(nil)

// NewLowPassFilter ...
func NewLowPassFilter(cfg Config, logger *log.Logger, cutoff float64, order int, child Component) *LowPassFilter {
	f := &LowPassFilter{}
	f.init(cfg, logger, child.SignalKind(), child)
	if order < 1 {
		f.logger.Printf("invalid filter order %d, using 2\n", order)
		order = 2
	}
	f.order = order
	f.state = make([][2]float64, (order+1)/2)
	f.cutoff.store(cfg.nyquist() / 2)
	f.SetCutoff(cutoff)
	if f.coeffs.Load() == nil {
		f.updateCoeffs(f.cutoff.load())
	}
	return f
}

func (c Config) nyquist() float64 {
	return float64(c.sampleRate) / 2
}

func (f *LowPassFilter) Kind() Kind {
	return KindFilter
}

// Order ...
func (f *LowPassFilter) Order() int {
	return f.order
}

// Cutoff ...
func (f *LowPassFilter) Cutoff() float64 {
	return f.cutoff.load()
}

// SetCutoff recomputes the coefficients only. The filter state is kept to avoid a click.
// Values at or above the Nyquist frequency are pulled just below it.
func (f *LowPassFilter) SetCutoff(cutoff float64) {
	if math.IsNaN(cutoff) || cutoff <= 0 {
		f.logger.Printf("cutoff must be positive: %v (kept %v)\n", cutoff, f.cutoff.load())
		return
	}
	if limit := f.cfg.nyquist() * 0.99; cutoff > limit {
		cutoff = limit
	}
	f.cutoff.store(cutoff)
	f.updateCoeffs(cutoff)
}

func (f *LowPassFilter) updateCoeffs(cutoff float64) {
	f.coeffs.Store(&filterCoeffs{
		sections: butterworthLowpass(f.order, cutoff, float64(f.cfg.sampleRate)),
	})
}

func (f *LowPassFilter) Reset() {
	for i := range f.state {
		f.state[i] = [2]float64{}
	}
	f.node.Reset()
}

func (f *LowPassFilter) Produce() ([]float32, Props) {
	chunk, props := f.children[0].Produce()
	processSections(f.coeffs.Load().sections, f.state, chunk, f.out)
	return f.out, props
}
