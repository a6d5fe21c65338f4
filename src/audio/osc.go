package audio

import (
	"log"
	"math"
	"math/rand"
	"time"
)

// ----- Wave ----- //

// WaveShape selects the periodic function of an Oscillator.
type WaveShape int

const (
	Sine WaveShape = iota
	Square
	Sawtooth
	Triangle
)

var waveNames = [...]string{
	Sine:     "sine",
	Square:   "square",
	Sawtooth: "sawtooth",
	Triangle: "triangle",
}

func (w WaveShape) String() string {
	if w < 0 || int(w) >= len(waveNames) {
		return "unknown"
	}
	return waveNames[w]
}

// ----- Oscillator ----- //

// Oscillator is a periodic generator. Its time cursor advances by one chunk per Produce,
// active or not, so phase is continuous across chunk boundaries.
type Oscillator struct {
	node
	shape     WaveShape
	frequency param
	phase     param
	amplitude param
	frame     int64
}

var _ Component = (*Oscillator)(nil)

// NewOscillator creates a silent oscillator (frequency 0, amplitude 1).
func NewOscillator(cfg Config, logger *log.Logger, shape WaveShape) *Oscillator {
	o := &Oscillator{shape: shape}
	o.init(cfg, logger, Wave)
	o.amplitude.store(1)
	return o
}

// NewSine ...
func NewSine(cfg Config, logger *log.Logger) *Oscillator {
	return NewOscillator(cfg, logger, Sine)
}

// NewSquare ...
func NewSquare(cfg Config, logger *log.Logger) *Oscillator {
	return NewOscillator(cfg, logger, Square)
}

// NewSawtooth ...
func NewSawtooth(cfg Config, logger *log.Logger) *Oscillator {
	return NewOscillator(cfg, logger, Sawtooth)
}

// NewTriangle ...
func NewTriangle(cfg Config, logger *log.Logger) *Oscillator {
	return NewOscillator(cfg, logger, Triangle)
}

func (o *Oscillator) Kind() Kind {
	return KindOscillator
}

// Shape ...
func (o *Oscillator) Shape() WaveShape {
	return o.shape
}

// Frequency ...
func (o *Oscillator) Frequency() float64 {
	return o.frequency.load()
}

// SetFrequency clamps negative values to 0, which silences the oscillator.
func (o *Oscillator) SetFrequency(freq float64) {
	if math.IsNaN(freq) || math.IsInf(freq, 0) {
		o.logger.Printf("invalid frequency: %v\n", freq)
		return
	}
	if freq < 0 {
		o.logger.Printf("negative frequency clamped to 0: %v\n", freq)
		freq = 0
	}
	o.frequency.store(freq)
}

// SetPhase sets the phase offset in radians.
func (o *Oscillator) SetPhase(phase float64) {
	if math.IsNaN(phase) || math.IsInf(phase, 0) {
		o.logger.Printf("invalid phase: %v\n", phase)
		return
	}
	o.phase.store(phase)
}

// Amplitude ...
func (o *Oscillator) Amplitude() float64 {
	return o.amplitude.load()
}

// SetAmplitude ...
func (o *Oscillator) SetAmplitude(amplitude float64) {
	o.amplitude.set(o.logger, "amplitude", amplitude, 0, 1)
}

func (o *Oscillator) IsSilent() bool {
	return !o.Active() || o.Frequency() <= 0
}

func (o *Oscillator) Reset() {
	o.frame = 0
}

func (o *Oscillator) Produce() ([]float32, Props) {
	start := o.frame
	o.frame += int64(len(o.out))
	freq := o.frequency.load()
	if !o.Active() || freq <= 0 {
		return o.silence()
	}
	amplitude := o.amplitude.load()
	phase := o.phase.load()
	sr := float64(o.cfg.sampleRate)
	for i := range o.out {
		t := float64(start+int64(i)) / sr
		o.out[i] = float32(amplitude * o.step(freq, phase, t))
	}
	return o.out, Props{Amp: float32(amplitude)}
}

func (o *Oscillator) step(freq float64, phase float64, t float64) float64 {
	switch o.shape {
	case Square:
		return sign(math.Sin(phase + 2*math.Pi*freq*t))
	case Sawtooth:
		return sawtooth(freq, phase, t)
	case Triangle:
		return 2 * (math.Abs(sawtooth(freq, phase, t)) - 0.5)
	default:
		return math.Sin(phase + 2*math.Pi*freq*t)
	}
}

// phase is applied as a time shift of phase/(2*pi) periods
func sawtooth(freq float64, phase float64, t float64) float64 {
	return 2*positiveMod(freq*t+phase/(2*math.Pi), 1) - 1
}

func sign(x float64) float64 {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}

// ----- Noise ----- //

// Noise emits uniform random samples in [-amplitude, amplitude].
type Noise struct {
	node
	amplitude param
	rand      *rand.Rand
}

var _ Component = (*Noise)(nil)

// NewNoise ...
func NewNoise(cfg Config, logger *log.Logger) *Noise {
	n := &Noise{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
	n.init(cfg, logger, Wave)
	n.amplitude.store(1)
	return n
}

func (n *Noise) Kind() Kind {
	return KindNoise
}

// SetAmplitude ...
func (n *Noise) SetAmplitude(amplitude float64) {
	n.amplitude.set(n.logger, "amplitude", amplitude, 0, 1)
}

func (n *Noise) IsSilent() bool {
	return !n.Active() || n.amplitude.load() == 0
}

func (n *Noise) Produce() ([]float32, Props) {
	if !n.Active() {
		return n.silence()
	}
	amplitude := n.amplitude.load()
	for i := range n.out {
		n.out[i] = float32(amplitude * (2*n.rand.Float64() - 1))
	}
	return n.out, Props{Amp: float32(amplitude)}
}

// ----- Constant ----- //

// Constant broadcasts one AMP-range value. It drives the level inputs of DualMixer.
type Constant struct {
	node
	value param
}

var _ Component = (*Constant)(nil)

// NewConstant ...
func NewConstant(cfg Config, logger *log.Logger, value float64) *Constant {
	c := &Constant{}
	c.init(cfg, logger, Amp)
	c.value.set(c.logger, "constant", value, 0, 1)
	return c
}

func (c *Constant) Kind() Kind {
	return KindConstant
}

// Value ...
func (c *Constant) Value() float64 {
	return c.value.load()
}

// SetValue ...
func (c *Constant) SetValue(value float64) {
	c.value.set(c.logger, "constant", value, 0, 1)
}

func (c *Constant) IsSilent() bool {
	return !c.Active() || c.value.load() == 0
}

func (c *Constant) Produce() ([]float32, Props) {
	if !c.Active() {
		return c.silence()
	}
	v := float32(c.value.load())
	for i := range c.out {
		c.out[i] = v
	}
	return c.out, Props{Amp: v}
}
