package synth

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedCommand is returned for lines that do not match the control grammar.
var ErrMalformedCommand = errors.New("malformed command")

// ----- Command ----- //

// CommandKind ...
type CommandKind int

const (
	CmdNoteOnFreq CommandKind = iota + 1
	CmdNoteOn
	CmdNoteOff
	CmdControlChange
	CmdProgramChange
	CmdExit
)

// Command is one parsed control message.
//
//	note_on -f <freq>
//	note_on -n <note> -c <channel>
//	note_off -n <note> -c <channel>
//	control_change -c <channel> -n <cc> -v <value>
//	program_change -c <channel> -n <program>
//	exit
type Command struct {
	Kind    CommandKind
	Freq    float64 // CmdNoteOnFreq
	Channel int
	Number  int // note, controller or program
	Value   int // CmdControlChange
}

// NoteOn ...
func NoteOn(note int, channel int) Command {
	return Command{Kind: CmdNoteOn, Number: note, Channel: channel}
}

// NoteOff ...
func NoteOff(note int, channel int) Command {
	return Command{Kind: CmdNoteOff, Number: note, Channel: channel}
}

// ControlChange ...
func ControlChange(channel int, controller int, value int) Command {
	return Command{Kind: CmdControlChange, Channel: channel, Number: controller, Value: value}
}

// ProgramChange ...
func ProgramChange(channel int, program int) Command {
	return Command{Kind: CmdProgramChange, Channel: channel, Number: program}
}

func (c Command) String() string {
	switch c.Kind {
	case CmdNoteOnFreq:
		return "note_on -f " + strconv.FormatFloat(c.Freq, 'f', -1, 64)
	case CmdNoteOn:
		return fmt.Sprintf("note_on -n %d -c %d", c.Number, c.Channel)
	case CmdNoteOff:
		return fmt.Sprintf("note_off -n %d -c %d", c.Number, c.Channel)
	case CmdControlChange:
		return fmt.Sprintf("control_change -c %d -n %d -v %d", c.Channel, c.Number, c.Value)
	case CmdProgramChange:
		return fmt.Sprintf("program_change -c %d -n %d", c.Channel, c.Number)
	case CmdExit:
		return "exit"
	}
	return ""
}

// ParseCommand ...
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty line", ErrMalformedCommand)
	}
	args := fields[1:]
	switch fields[0] {
	case "exit":
		if len(args) != 0 {
			return Command{}, fmt.Errorf("%w: exit takes no arguments", ErrMalformedCommand)
		}
		return Command{Kind: CmdExit}, nil
	case "note_on":
		if len(args) == 2 && args[0] == "-f" {
			freq, err := strconv.ParseFloat(args[1], 64)
			// negative frequencies pass through and are clamped by the oscillator
			if err != nil || math.IsInf(freq, 0) || math.IsNaN(freq) {
				return Command{}, fmt.Errorf("%w: bad frequency %q", ErrMalformedCommand, args[1])
			}
			return Command{Kind: CmdNoteOnFreq, Freq: freq}, nil
		}
		v, err := parseFlags(args, "-n", "-c")
		if err != nil {
			return Command{}, err
		}
		return NoteOn(v["-n"], v["-c"]), nil
	case "note_off":
		v, err := parseFlags(args, "-n", "-c")
		if err != nil {
			return Command{}, err
		}
		return NoteOff(v["-n"], v["-c"]), nil
	case "control_change":
		v, err := parseFlags(args, "-c", "-n", "-v")
		if err != nil {
			return Command{}, err
		}
		return ControlChange(v["-c"], v["-n"], v["-v"]), nil
	case "program_change":
		v, err := parseFlags(args, "-c", "-n")
		if err != nil {
			return Command{}, err
		}
		return ProgramChange(v["-c"], v["-n"]), nil
	}
	return Command{}, fmt.Errorf("%w: unknown command %q", ErrMalformedCommand, fields[0])
}

// parseFlags reads exactly the given flags, each once, in any order.
// -c must be 0-15, everything else 0-127.
func parseFlags(args []string, names ...string) (map[string]int, error) {
	if len(args) != 2*len(names) {
		return nil, fmt.Errorf("%w: expected flags %v", ErrMalformedCommand, names)
	}
	values := make(map[string]int, len(names))
	for i := 0; i < len(args); i += 2 {
		name := args[i]
		known := false
		for _, n := range names {
			if n == name {
				known = true
			}
		}
		if !known {
			return nil, fmt.Errorf("%w: unexpected flag %q", ErrMalformedCommand, name)
		}
		if _, dup := values[name]; dup {
			return nil, fmt.Errorf("%w: duplicated flag %q", ErrMalformedCommand, name)
		}
		value, err := strconv.Atoi(args[i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCommand, name, err)
		}
		max := 127
		if name == "-c" {
			max = 15
		}
		if value < 0 || value > max {
			return nil, fmt.Errorf("%w: %s out of range 0-%d: %d", ErrMalformedCommand, name, max, value)
		}
		values[name] = value
	}
	return values, nil
}
