package audio

import "sync/atomic"

// ----- Parameter ----- //

// Param names a parameter a Chain can set on its nodes.
type Param int

const (
	ParamCutoff Param = iota
	ParamAttack
	ParamDecay
	ParamSustain
	ParamRelease
	ParamDelayTime
	ParamWetGain
)

var paramNames = [...]string{
	ParamCutoff:    "cutoff",
	ParamAttack:    "attack",
	ParamDecay:     "decay",
	ParamSustain:   "sustain",
	ParamRelease:   "release",
	ParamDelayTime: "delay_time",
	ParamWetGain:   "wet_gain",
}

func (p Param) String() string {
	if p < 0 || int(p) >= len(paramNames) {
		return "unknown"
	}
	return paramNames[p]
}

// ----- Chain ----- //

// Chain wraps the root of one graph and applies note and parameter changes to matching nodes.
type Chain struct {
	root   Component
	active atomic.Bool
}

// NewChain ...
func NewChain(root Component) *Chain {
	return &Chain{root: root}
}

// Root ...
func (c *Chain) Root() Component {
	return c.root
}

// Active reports whether the last note event was a note on.
func (c *Chain) Active() bool {
	return c.active.Load()
}

// NoteOn tunes every oscillator to freq, then activates the root.
func (c *Chain) NoteOn(freq float64) {
	Walk(c.root, func(n Component) bool {
		if n.Kind() == KindOscillator {
			n.(*Oscillator).SetFrequency(freq)
		}
		return true
	})
	c.active.Store(true)
	c.root.SetActive(true)
}

// NoteOff deactivates the root. Each node applies its own cascade rule.
func (c *Chain) NoteOff() {
	c.active.Store(false)
	c.root.SetActive(false)
}

// SetParameter applies value to every node the parameter belongs to and returns how many were found.
func (c *Chain) SetParameter(p Param, value float64) int {
	found := 0
	Walk(c.root, func(n Component) bool {
		switch n.Kind() {
		case KindFilter:
			if p == ParamCutoff {
				n.(*LowPassFilter).SetCutoff(value)
				found++
			}
		case KindEnvelope:
			e := n.(*AdsrEnvelope)
			switch p {
			case ParamAttack:
				e.SetAttack(value)
			case ParamDecay:
				e.SetDecay(value)
			case ParamSustain:
				e.SetSustain(value)
			case ParamRelease:
				e.SetRelease(value)
			default:
				return true
			}
			found++
		case KindDelay:
			d := n.(*Delay)
			switch p {
			case ParamDelayTime:
				d.SetDelayTime(value)
			case ParamWetGain:
				d.SetWetGain(value)
			default:
				return true
			}
			found++
		}
		return true
	})
	return found
}

// SetGain sets every Gain tagged tag and returns how many were found.
func (c *Chain) SetGain(tag string, value float64) int {
	found := 0
	Walk(c.root, func(n Component) bool {
		if n.Kind() == KindGain {
			if g := n.(*Gain); g.Tag() == tag {
				g.SetGain(value)
				found++
			}
		}
		return true
	})
	return found
}

// IsSilent asks the root. For an envelope root this turns true once the release tail ends.
func (c *Chain) IsSilent() bool {
	return c.root.IsSilent()
}

// Reset ...
func (c *Chain) Reset() {
	c.root.Reset()
}

// Produce pulls one chunk from the root.
func (c *Chain) Produce() ([]float32, Props) {
	return c.root.Produce()
}
