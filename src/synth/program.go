package synth

import "github.com/jinjor/toysynth/src/audio"

// Program is a voice graph selectable with program_change.
type Program struct {
	Name string
	Spec audio.NodeSpec
}

func osc(shape audio.WaveShape) audio.NodeSpec {
	return audio.NodeSpec{Kind: audio.KindOscillator, Shape: shape}
}

func tagged(tag string, gain float64, child audio.NodeSpec) audio.NodeSpec {
	return audio.NodeSpec{
		Kind:     audio.KindGain,
		Tag:      tag,
		Params:   map[string]float64{"gain": gain},
		Children: []audio.NodeSpec{child},
	}
}

// Programs are the built-in programs, indexed by program number.
var Programs = []Program{
	{
		Name: "dual",
		Spec: audio.NodeSpec{
			Kind: audio.KindEnvelope,
			Children: []audio.NodeSpec{{
				Kind: audio.KindFilter,
				Children: []audio.NodeSpec{{
					Kind:   audio.KindDelay,
					Params: map[string]float64{"wet": 0.3},
					Children: []audio.NodeSpec{{
						Kind: audio.KindMixer,
						Children: []audio.NodeSpec{
							tagged(TagOscA, 0.5, osc(audio.Sine)),
							tagged(TagOscB, 0.5, osc(audio.Sawtooth)),
						},
					}},
				}},
			}},
		},
	},
	{
		Name: "pulse",
		Spec: audio.NodeSpec{
			Kind:   audio.KindEnvelope,
			Params: map[string]float64{"attack": 0.01, "decay": 0.2, "sustain": 0.7, "release": 0.3},
			Children: []audio.NodeSpec{{
				Kind:   audio.KindFilter,
				Params: map[string]float64{"cutoff": 4000},
				Children: []audio.NodeSpec{{
					Kind: audio.KindDualMixer,
					Children: []audio.NodeSpec{
						tagged(TagOscA, 1, osc(audio.Square)),
						tagged(TagOscB, 1, osc(audio.Triangle)),
						{Kind: audio.KindConstant, Params: map[string]float64{"value": 0.6}},
						{Kind: audio.KindConstant, Params: map[string]float64{"value": 0.8}},
					},
				}},
			}},
		},
	},
	{
		Name: "perc",
		Spec: audio.NodeSpec{
			Kind:   audio.KindEnvelope,
			Params: map[string]float64{"attack": 0.002, "decay": 0.25, "sustain": 0, "release": 0.15},
			Children: []audio.NodeSpec{{
				Kind:   audio.KindFilter,
				Params: map[string]float64{"cutoff": 3000, "order": 4},
				Children: []audio.NodeSpec{{
					Kind: audio.KindMixer,
					Children: []audio.NodeSpec{
						tagged(TagOscA, 0.4, audio.NodeSpec{Kind: audio.KindNoise}),
						tagged(TagOscB, 1, osc(audio.Sine)),
					},
				}},
			}},
		},
	},
}
