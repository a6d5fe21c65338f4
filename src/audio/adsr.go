package audio

import (
	"log"
	"math"
	"sync/atomic"
)

// ----- Envelope State ----- //

// EnvelopeState ...
type EnvelopeState int32

const (
	Idle EnvelopeState = iota
	ADS
	Release
)

func (s EnvelopeState) String() string {
	switch s {
	case ADS:
		return "ads"
	case Release:
		return "release"
	default:
		return "idle"
	}
}

// ----- ADSR Envelope ----- //

// AdsrEnvelope shapes its child's amplitude. Unlike other nodes, SetActive does not cascade:
// the child keeps running so the release tail stays audible.
type AdsrEnvelope struct {
	node
	attack  param // seconds
	decay   param // seconds
	sustain param // 0-1
	release param // seconds
	target  param // 0-1

	table atomic.Pointer[ramp]
	gate  atomic.Uint64 // bumped on every activation
	state atomic.Int32  // EnvelopeState, written by Produce

	// render path only
	seenGate    uint64
	pos         int
	level       float64
	releaseFrom float64
	releaseLen  int
}

var _ Component = (*AdsrEnvelope)(nil)

// NewAdsrEnvelope creates an idle envelope with target amplitude 1.
func NewAdsrEnvelope(cfg Config, logger *log.Logger, attack float64, decay float64, sustain float64, release float64, child Component) *AdsrEnvelope {
	e := &AdsrEnvelope{}
	e.init(cfg, logger, child.SignalKind(), child)
	e.active.Store(false)
	e.target.store(1)
	e.sustain.store(1)
	e.attack.set(e.logger, "attack", attack, 0, math.MaxFloat64)
	e.decay.set(e.logger, "decay", decay, 0, math.MaxFloat64)
	e.sustain.set(e.logger, "sustain", sustain, 0, 1)
	e.release.set(e.logger, "release", release, 0, math.MaxFloat64)
	e.rebuild()
	return e
}

func (e *AdsrEnvelope) Kind() Kind {
	return KindEnvelope
}

// SetActive gates the envelope. Every activation restarts the attack.
func (e *AdsrEnvelope) SetActive(active bool) {
	if active {
		e.gate.Add(1)
	}
	e.active.Store(active)
}

// State ...
func (e *AdsrEnvelope) State() EnvelopeState {
	return EnvelopeState(e.state.Load())
}

// IsSilent is true once the release ramp has finished.
func (e *AdsrEnvelope) IsSilent() bool {
	return !e.Active() && e.State() == Idle
}

// Attack ...
func (e *AdsrEnvelope) Attack() float64 {
	return e.attack.load()
}

// Decay ...
func (e *AdsrEnvelope) Decay() float64 {
	return e.decay.load()
}

// Sustain ...
func (e *AdsrEnvelope) Sustain() float64 {
	return e.sustain.load()
}

// Release ...
func (e *AdsrEnvelope) Release() float64 {
	return e.release.load()
}

// SetAttack ...
func (e *AdsrEnvelope) SetAttack(seconds float64) {
	if e.attack.set(e.logger, "attack", seconds, 0, math.MaxFloat64) {
		e.rebuild()
	}
}

// SetDecay ...
func (e *AdsrEnvelope) SetDecay(seconds float64) {
	if e.decay.set(e.logger, "decay", seconds, 0, math.MaxFloat64) {
		e.rebuild()
	}
}

// SetSustain ...
func (e *AdsrEnvelope) SetSustain(level float64) {
	if e.sustain.set(e.logger, "sustain", level, 0, 1) {
		e.rebuild()
	}
}

// SetRelease is read at the next release trigger.
func (e *AdsrEnvelope) SetRelease(seconds float64) {
	e.release.set(e.logger, "release", seconds, 0, math.MaxFloat64)
}

// SetTarget sets the peak amplitude of the attack.
func (e *AdsrEnvelope) SetTarget(level float64) {
	if e.target.set(e.logger, "target", level, 0, 1) {
		e.rebuild()
	}
}

// AttackFrames is the length of the attack ramp in samples.
func (e *AdsrEnvelope) AttackFrames() int {
	return e.table.Load().attackFrames()
}

func (e *AdsrEnvelope) rebuild() {
	e.table.Store(newADSRamp(
		e.cfg.Frames(e.attack.load()),
		e.cfg.Frames(e.decay.load()),
		e.sustain.load(),
		e.target.load(),
		e.cfg.framesPerChunk,
	))
}

func (e *AdsrEnvelope) Reset() {
	e.state.Store(int32(Idle))
	e.seenGate = e.gate.Load()
	e.pos = 0
	e.level = 0
	e.node.Reset()
}

func (e *AdsrEnvelope) Produce() ([]float32, Props) {
	chunk, props := e.children[0].Produce()
	table := e.table.Load()
	state := e.State()
	gate := e.gate.Load()
	if e.Active() {
		if state != ADS || gate != e.seenGate {
			state = ADS
			e.pos = table.positionFor(e.level, e.target.load())
		}
	} else if state == ADS {
		state = Release
		e.pos = 0
		e.releaseFrom = e.level
		e.releaseLen = e.cfg.Frames(e.release.load())
	}
	e.seenGate = gate

	var peak float64
	for i, x := range chunk {
		switch state {
		case ADS:
			e.level = table.at(e.pos)
			if e.pos < table.length {
				e.pos++
			}
		case Release:
			if e.pos >= e.releaseLen {
				e.level = 0
				state = Idle
			} else {
				e.level = e.releaseFrom * (1 - float64(e.pos)/float64(e.releaseLen))
				e.pos++
			}
		default:
			e.level = 0
		}
		e.out[i] = x * float32(e.level)
		if e.level > peak {
			peak = e.level
		}
	}
	if state == Release && e.pos >= e.releaseLen {
		e.level = 0
		state = Idle
	}
	e.state.Store(int32(state))
	return e.out, Props{Amp: props.Amp * float32(peak)}
}
