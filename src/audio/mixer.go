package audio

import (
	"log"

	"github.com/viterin/vek/vek32"
)

// ----- Mixer ----- //

// Mixer sums its children. The reported amplitude is the mean of the non-zero child
// amplitudes; the waveform is normalized when the summed amplitude exceeds 1.
type Mixer struct {
	node
}

var _ Component = (*Mixer)(nil)

// NewMixer ...
func NewMixer(cfg Config, logger *log.Logger, children ...Component) *Mixer {
	m := &Mixer{}
	m.init(cfg, logger, Wave, children...)
	return m
}

func (m *Mixer) Kind() Kind {
	return KindMixer
}

func (m *Mixer) Produce() ([]float32, Props) {
	clear(m.out)
	var sum float32
	contributing := 0
	for _, child := range m.children {
		chunk, props := child.Produce()
		vek32.Add_Inplace(m.out, chunk)
		if props.Amp != 0 {
			sum += props.Amp
			contributing++
		}
	}
	if contributing == 0 {
		return m.out, Props{}
	}
	if sum > 1 {
		Normalize(m.out)
	}
	return m.out, Props{Amp: sum / float32(contributing)}
}

// ----- Dual Mixer ----- //

// DualMixer blends two signals, each scaled by its own level input.
// WAVE-range level inputs are squished into [0, 1] first.
type DualMixer struct {
	node
	levels [2][]float32
}

var _ Component = (*DualMixer)(nil)

// NewDualMixer ...
func NewDualMixer(cfg Config, logger *log.Logger, a Component, b Component, levelA Component, levelB Component) *DualMixer {
	d := &DualMixer{}
	d.init(cfg, logger, Wave, a, b, levelA, levelB)
	for i := range d.levels {
		d.levels[i] = make([]float32, cfg.framesPerChunk)
	}
	return d
}

func (d *DualMixer) Kind() Kind {
	return KindDualMixer
}

// IsSilent looks at the two signal inputs only.
func (d *DualMixer) IsSilent() bool {
	return !d.Active() || (d.children[0].IsSilent() && d.children[1].IsSilent())
}

func (d *DualMixer) Produce() ([]float32, Props) {
	clear(d.out)
	var amp float32
	for i, level := range d.levels {
		signal, props := d.children[i].Produce()
		control, _ := d.children[i+2].Produce()
		copy(level, control)
		if d.children[i+2].SignalKind() == Wave {
			squish(level)
		}
		amp += props.Amp * vek32.Mean(level)
		vek32.Mul_Inplace(level, signal)
		vek32.Add_Inplace(d.out, level)
	}
	vek32.MulNumber_Inplace(d.out, 0.5)
	return d.out, Props{Amp: amp / 2}
}

// ----- Gain ----- //

// Gain scales its child. The tag lets a Chain find it.
type Gain struct {
	node
	tag  string
	gain param
}

var _ Component = (*Gain)(nil)

// NewGain ...
func NewGain(cfg Config, logger *log.Logger, tag string, gain float64, child Component) *Gain {
	g := &Gain{tag: tag}
	g.init(cfg, logger, child.SignalKind(), child)
	g.gain.store(1)
	g.SetGain(gain)
	return g
}

func (g *Gain) Kind() Kind {
	return KindGain
}

// Tag ...
func (g *Gain) Tag() string {
	return g.tag
}

// Gain ...
func (g *Gain) Gain() float64 {
	return g.gain.load()
}

// SetGain keeps the previous value if gain is outside [0, 1].
func (g *Gain) SetGain(gain float64) {
	g.gain.set(g.logger, "gain "+g.tag, gain, 0, 1)
}

func (g *Gain) Produce() ([]float32, Props) {
	chunk, props := g.children[0].Produce()
	gain := float32(g.gain.load())
	vek32.MulNumber_Into(g.out, chunk, gain)
	return g.out, Props{Amp: props.Amp * gain}
}
