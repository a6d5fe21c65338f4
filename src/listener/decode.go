package listener

import (
	"github.com/jinjor/toysynth/src/synth"
	"gitlab.com/gomidi/midi/v2"
)

// CommandFromMIDI decodes a raw channel message. Note on with velocity 0 is a note off.
// Other message types are ignored.
func CommandFromMIDI(data []byte) (synth.Command, bool) {
	if len(data) < 2 {
		return synth.Command{}, false
	}
	msg := midi.Message(data)
	var channel, key, velocity, controller, value, program uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		if velocity == 0 {
			return synth.NoteOff(int(key), int(channel)), true
		}
		return synth.NoteOn(int(key), int(channel)), true
	case msg.GetNoteOff(&channel, &key, &velocity):
		return synth.NoteOff(int(key), int(channel)), true
	case msg.GetControlChange(&channel, &controller, &value):
		return synth.ControlChange(int(channel), int(controller), int(value)), true
	case msg.GetProgramChange(&channel, &program):
		return synth.ProgramChange(int(channel), int(program)), true
	}
	return synth.Command{}, false
}
