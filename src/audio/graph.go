package audio

import (
	"errors"
	"fmt"
	"log"
	"sort"
)

// ErrInvalidSpec is returned by Build for a malformed NodeSpec.
var ErrInvalidSpec = errors.New("invalid node spec")

// NodeSpec declares one node and its children. Build turns it into a fresh graph,
// so every voice owns its own nodes.
type NodeSpec struct {
	Kind     Kind
	Shape    WaveShape          // oscillator only
	Tag      string             // gain only
	Params   map[string]float64 // see paramKeys
	Children []NodeSpec
}

var paramKeys = map[Kind][]string{
	KindOscillator: {"frequency", "phase", "amplitude"},
	KindNoise:      {"amplitude"},
	KindConstant:   {"value"},
	KindMixer:      {},
	KindDualMixer:  {},
	KindGain:       {"gain"},
	KindFilter:     {"cutoff", "order"},
	KindDelay:      {"max_time", "time", "wet"},
	KindEnvelope:   {"attack", "decay", "sustain", "release", "target"},
}

// Defaults for keys a NodeSpec leaves out.
const (
	DefaultCutoff      = 8000.0
	DefaultFilterOrder = 2
	DefaultMaxDelay    = 4.0
	DefaultDelayTime   = 0.1
	DefaultWetGain     = 0.5
	DefaultAttack      = 0.5
	DefaultDecay       = 0.8
	DefaultSustain     = 0.6
	DefaultRelease     = 0.5
)

func (s NodeSpec) get(key string, fallback float64) float64 {
	if v, ok := s.Params[key]; ok {
		return v
	}
	return fallback
}

func (s NodeSpec) validate() error {
	keys, ok := paramKeys[s.Kind]
	if !ok {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidSpec, s.Kind)
	}
	unknown := make([]string, 0)
	for key := range s.Params {
		found := false
		for _, k := range keys {
			if k == key {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s does not take %v", ErrInvalidSpec, s.Kind, unknown)
	}
	want := -1
	switch s.Kind {
	case KindOscillator, KindNoise, KindConstant:
		want = 0
	case KindGain, KindFilter, KindDelay, KindEnvelope:
		want = 1
	case KindDualMixer:
		want = 4
	case KindMixer:
		if len(s.Children) == 0 {
			return fmt.Errorf("%w: mixer needs children", ErrInvalidSpec)
		}
	}
	if want >= 0 && len(s.Children) != want {
		return fmt.Errorf("%w: %s needs %d children, got %d", ErrInvalidSpec, s.Kind, want, len(s.Children))
	}
	if s.Kind == KindFilter && s.get("order", DefaultFilterOrder) < 1 {
		return fmt.Errorf("%w: filter order must be >= 1", ErrInvalidSpec)
	}
	return nil
}

// Build constructs a new graph from spec. Out-of-range parameter values are logged
// and the node keeps its default. Structural problems are errors.
func Build(cfg Config, logger *log.Logger, spec NodeSpec) (Component, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	children := make([]Component, len(spec.Children))
	for i, childSpec := range spec.Children {
		child, err := Build(cfg, logger, childSpec)
		if err != nil {
			return nil, fmt.Errorf("%s child %d: %w", spec.Kind, i, err)
		}
		children[i] = child
	}
	switch spec.Kind {
	case KindOscillator:
		o := NewOscillator(cfg, logger, spec.Shape)
		o.SetFrequency(spec.get("frequency", 0))
		o.SetPhase(spec.get("phase", 0))
		o.SetAmplitude(spec.get("amplitude", 1))
		return o, nil
	case KindNoise:
		n := NewNoise(cfg, logger)
		n.SetAmplitude(spec.get("amplitude", 1))
		return n, nil
	case KindConstant:
		return NewConstant(cfg, logger, spec.get("value", 1)), nil
	case KindMixer:
		return NewMixer(cfg, logger, children...), nil
	case KindDualMixer:
		return NewDualMixer(cfg, logger, children[0], children[1], children[2], children[3]), nil
	case KindGain:
		return NewGain(cfg, logger, spec.Tag, spec.get("gain", 1), children[0]), nil
	case KindFilter:
		return NewLowPassFilter(cfg, logger, spec.get("cutoff", DefaultCutoff), int(spec.get("order", DefaultFilterOrder)), children[0]), nil
	case KindDelay:
		return NewDelay(cfg, logger,
			spec.get("max_time", DefaultMaxDelay),
			spec.get("time", DefaultDelayTime),
			spec.get("wet", DefaultWetGain),
			children[0],
		), nil
	case KindEnvelope:
		e := NewAdsrEnvelope(cfg, logger,
			spec.get("attack", DefaultAttack),
			spec.get("decay", DefaultDecay),
			spec.get("sustain", DefaultSustain),
			spec.get("release", DefaultRelease),
			children[0],
		)
		if target, ok := spec.Params["target"]; ok {
			e.SetTarget(target)
		}
		return e, nil
	}
	return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidSpec, spec.Kind)
}

// BuildChain builds spec and wraps it in a reset Chain.
func BuildChain(cfg Config, logger *log.Logger, spec NodeSpec) (*Chain, error) {
	root, err := Build(cfg, logger, spec)
	if err != nil {
		return nil, err
	}
	chain := NewChain(root)
	chain.Reset()
	return chain, nil
}
