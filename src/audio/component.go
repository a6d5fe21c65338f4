package audio

import (
	"log"
	"sync/atomic"
)

// ----- Kind ----- //

// Kind identifies the concrete node type behind a Component.
type Kind int

const (
	KindOscillator Kind = iota
	KindNoise
	KindConstant
	KindMixer
	KindDualMixer
	KindGain
	KindFilter
	KindDelay
	KindEnvelope
)

var kindNames = [...]string{
	KindOscillator: "oscillator",
	KindNoise:      "noise",
	KindConstant:   "constant",
	KindMixer:      "mixer",
	KindDualMixer:  "dual_mixer",
	KindGain:       "gain",
	KindFilter:     "filter",
	KindDelay:      "delay",
	KindEnvelope:   "envelope",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// SignalKind tells the range a node's samples live in.
type SignalKind int

const (
	Wave SignalKind = iota // [-1, 1]
	Amp                    // [0, 1]
)

// ----- Component ----- //

// Props describes one produced chunk.
type Props struct {
	Amp float32
}

// Component is a node of the signal graph.
//
// Produce returns a buffer owned by the node. It stays valid until the next call to Produce.
// Produce and Reset belong to the render path; setters and SetActive belong to the control loop.
type Component interface {
	Kind() Kind
	SignalKind() SignalKind
	Children() []Component
	Active() bool
	SetActive(active bool)
	IsSilent() bool
	Reset()
	Produce() ([]float32, Props)
}

// node carries the state every Component shares.
type node struct {
	cfg      Config
	logger   *log.Logger
	signal   SignalKind
	active   atomic.Bool
	children []Component
	out      []float32
}

func (n *node) init(cfg Config, logger *log.Logger, signal SignalKind, children ...Component) {
	cfg.mustBeValid()
	if logger == nil {
		logger = log.Default()
	}
	n.cfg = cfg
	n.logger = logger
	n.signal = signal
	n.children = children
	n.out = make([]float32, cfg.framesPerChunk)
	n.active.Store(true)
}

func (n *node) SignalKind() SignalKind {
	return n.signal
}

func (n *node) Children() []Component {
	return n.children
}

func (n *node) Active() bool {
	return n.active.Load()
}

// SetActive cascades to every child.
func (n *node) SetActive(active bool) {
	n.active.Store(active)
	for _, child := range n.children {
		child.SetActive(active)
	}
}

func (n *node) IsSilent() bool {
	if !n.Active() {
		return true
	}
	for _, child := range n.children {
		if !child.IsSilent() {
			return false
		}
	}
	return true
}

func (n *node) Reset() {
	for _, child := range n.children {
		child.Reset()
	}
}

func (n *node) silence() ([]float32, Props) {
	clear(n.out)
	return n.out, Props{}
}

// Walk visits c and its descendants depth-first. Returning false from f skips the subtree.
func Walk(c Component, f func(Component) bool) {
	if !f(c) {
		return
	}
	for _, child := range c.Children() {
		Walk(child, f)
	}
}
