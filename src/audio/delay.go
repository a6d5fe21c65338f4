package audio

import (
	"log"
	"sync/atomic"

	"github.com/viterin/vek/vek32"
)

// ----- Delay ----- //

// Delay feeds its dry+wet output back into a ring buffer sized once for maxTime.
// Changing the delay time only moves the read offset.
type Delay struct {
	node
	maxTime float64
	frames  atomic.Int64 // delay in samples
	wet     param
	buffer  []float32
	cursor  int // write position
	delayed []float32
}

var _ Component = (*Delay)(nil)

// NewDelay ...
func NewDelay(cfg Config, logger *log.Logger, maxTime float64, delayTime float64, wetGain float64, child Component) *Delay {
	d := &Delay{}
	d.init(cfg, logger, child.SignalKind(), child)
	length := cfg.Frames(maxTime)
	if length < cfg.framesPerChunk {
		length = cfg.framesPerChunk
	}
	d.maxTime = float64(length) / float64(cfg.sampleRate)
	d.buffer = make([]float32, length)
	d.delayed = make([]float32, cfg.framesPerChunk)
	d.frames.Store(int64(length))
	d.SetDelayTime(delayTime)
	d.SetWetGain(wetGain)
	return d
}

func (d *Delay) Kind() Kind {
	return KindDelay
}

// MaxTime is the buffer length in seconds.
func (d *Delay) MaxTime() float64 {
	return d.maxTime
}

// DelayTime ...
func (d *Delay) DelayTime() float64 {
	return float64(d.frames.Load()) / float64(d.cfg.sampleRate)
}

// SetDelayTime accepts (0, MaxTime]. The effective delay is at least one chunk.
func (d *Delay) SetDelayTime(seconds float64) {
	if !(seconds > 0 && seconds <= d.maxTime) {
		d.logger.Printf("delay time out of range (0, %v]: %v (kept %v)\n", d.maxTime, seconds, d.DelayTime())
		return
	}
	frames := d.cfg.Frames(seconds)
	if frames < d.cfg.framesPerChunk {
		frames = d.cfg.framesPerChunk
	}
	if frames > len(d.buffer) {
		frames = len(d.buffer)
	}
	d.frames.Store(int64(frames))
}

// WetGain ...
func (d *Delay) WetGain() float64 {
	return d.wet.load()
}

// SetWetGain ...
func (d *Delay) SetWetGain(gain float64) {
	d.wet.set(d.logger, "wet gain", gain, 0, 1)
}

func (d *Delay) Reset() {
	clear(d.buffer)
	d.cursor = 0
	d.node.Reset()
}

func (d *Delay) Produce() ([]float32, Props) {
	dry, props := d.children[0].Produce()
	length := len(d.buffer)
	read := d.cursor - int(d.frames.Load())
	if read < 0 {
		read += length
	}
	n := copy(d.delayed, d.buffer[read:])
	copy(d.delayed[n:], d.buffer)

	wet := float32(d.wet.load())
	vek32.MulNumber_Into(d.out, d.delayed, wet)
	vek32.Add_Inplace(d.out, dry)
	amp := props.Amp + wet
	if amp > 1 {
		vek32.MulNumber_Inplace(d.out, 1/amp)
		amp = 1
	}

	n = copy(d.buffer[d.cursor:], d.out)
	copy(d.buffer, d.out[n:])
	d.cursor = (d.cursor + len(d.out)) % length
	return d.out, Props{Amp: amp}
}
