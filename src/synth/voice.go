package synth

import "github.com/jinjor/toysynth/src/audio"

const noNote = -1

// noteID identifies a (note, channel) pair, so a note off finds the voice sounding it.
func noteID(note int, channel int) int {
	return channel<<7 | note
}

// Voice is one chain plus the note it was last triggered with.
type Voice struct {
	chain *audio.Chain
	id    int
}

func newVoice(chain *audio.Chain) *Voice {
	return &Voice{chain: chain, id: noNote}
}

// Active is true until the chain falls silent, including the release tail.
func (v *Voice) Active() bool {
	return !v.chain.IsSilent()
}

// ID is the note id the voice is holding, or -1.
func (v *Voice) ID() int {
	return v.id
}

// Chain ...
func (v *Voice) Chain() *audio.Chain {
	return v.chain
}

func (v *Voice) noteOn(id int, freq float64) {
	v.id = id
	v.chain.NoteOn(freq)
}

func (v *Voice) noteOff() {
	v.id = noNote
	v.chain.NoteOff()
}
