package synth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/jinjor/toysynth/src/audio"
	"github.com/viterin/vek/vek32"
)

// ErrExit is returned by Run after an exit command.
var ErrExit = errors.New("exit requested")

const commandQueueSize = 256

// Mode ...
type Mode int

const (
	Poly Mode = iota
	Mono
)

func (m Mode) String() string {
	if m == Mono {
		return "mono"
	}
	return "poly"
}

// Options ...
type Options struct {
	Voices   int
	Mode     Mode
	Program  int
	Programs []Program // nil means the built-in Programs
	Logger   *log.Logger
}

// pool is what the render path sees. It is replaced, never mutated.
type pool struct {
	chains []*audio.Chain
}

type stackedNote struct {
	note int
	freq float64
}

// ----- Synthesizer ----- //

// Synthesizer owns a fixed pool of voices. The control loop (Run, Handle, Apply) and the
// render path (Render) may run on different goroutines; CommandCh is the only thing they share
// besides lock-free parameter cells.
type Synthesizer struct {
	CommandCh chan string

	cfg      audio.Config
	logger   *log.Logger
	programs []Program
	pool     atomic.Pointer[pool]

	// control loop only
	voices  []*Voice // pool order
	order   []*Voice // least recently triggered first
	stacks  [][]stackedNote
	mode    Mode
	program int
	tables  *tables
	applied map[int]int // last value of each parameter controller

	// render path only
	mix []float32
}

// NewSynthesizer ...
func NewSynthesizer(cfg audio.Config, opts Options) (*Synthesizer, error) {
	if opts.Voices < 1 {
		return nil, fmt.Errorf("voice count must be positive: %d", opts.Voices)
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Programs == nil {
		opts.Programs = Programs
	}
	s := &Synthesizer{
		CommandCh: make(chan string, commandQueueSize),
		cfg:       cfg,
		logger:    opts.Logger,
		programs:  opts.Programs,
		mode:      opts.Mode,
		tables:    newTables(),
		applied:   make(map[int]int),
		mix:       make([]float32, cfg.FramesPerChunk()),
	}
	if err := s.load(opts.Program, opts.Voices); err != nil {
		return nil, err
	}
	return s, nil
}

// load builds a fresh voice pool for program and publishes it to the render path.
func (s *Synthesizer) load(program int, voices int) error {
	if program < 0 || program >= len(s.programs) {
		return fmt.Errorf("unknown program %d", program)
	}
	p := &pool{chains: make([]*audio.Chain, voices)}
	built := make([]*Voice, voices)
	for i := range built {
		chain, err := audio.BuildChain(s.cfg, s.logger, s.programs[program].Spec)
		if err != nil {
			return fmt.Errorf("program %d (%s): %w", program, s.programs[program].Name, err)
		}
		p.chains[i] = chain
		built[i] = newVoice(chain)
	}
	s.voices = built
	s.order = append([]*Voice(nil), built...)
	s.stacks = make([][]stackedNote, voices)
	s.program = program
	s.pool.Store(p)
	return nil
}

// Config ...
func (s *Synthesizer) Config() audio.Config {
	return s.cfg
}

// Mode ...
func (s *Synthesizer) Mode() Mode {
	return s.mode
}

// Program ...
func (s *Synthesizer) Program() int {
	return s.program
}

// Voices returns the voices in pool order.
func (s *Synthesizer) Voices() []*Voice {
	return s.voices
}

// Send queues a command line without blocking. It reports false if the queue is full.
func (s *Synthesizer) Send(line string) bool {
	select {
	case s.CommandCh <- line:
		return true
	default:
		s.logger.Printf("command queue full, dropped: %s\n", line)
		return false
	}
}

// Run consumes CommandCh until ctx is done or an exit command arrives.
func (s *Synthesizer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.logger.Println("Run() interrupted")
			return nil
		case line := <-s.CommandCh:
			if err := s.Handle(line); errors.Is(err, ErrExit) {
				s.logger.Println("exit command received")
				return err
			}
		}
	}
}

// Handle parses and applies one command line. Malformed lines are logged and dropped.
func (s *Synthesizer) Handle(line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		s.logger.Printf("dropped command %q: %v\n", line, err)
		return err
	}
	return s.Apply(cmd)
}

// Apply ...
func (s *Synthesizer) Apply(cmd Command) error {
	switch cmd.Kind {
	case CmdExit:
		return ErrExit
	case CmdNoteOnFreq:
		note := audio.FreqToNote(cmd.Freq)
		s.noteOn(note, 0, cmd.Freq)
	case CmdNoteOn:
		s.noteOn(cmd.Number, cmd.Channel, audio.NoteToFreq(cmd.Number))
	case CmdNoteOff:
		s.noteOff(cmd.Number, cmd.Channel)
	case CmdControlChange:
		s.controlChange(cmd.Number, cmd.Value)
	case CmdProgramChange:
		s.programChange(cmd.Number)
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrMalformedCommand, cmd.Kind)
	}
	return nil
}

// ----- Allocation ----- //

func (s *Synthesizer) noteOn(note int, channel int, freq float64) {
	if s.mode == Mono {
		s.monoNoteOn(note, channel, freq)
		return
	}
	s.polyNoteOn(noteID(note, channel), freq)
}

func (s *Synthesizer) noteOff(note int, channel int) {
	if s.mode == Mono {
		s.monoNoteOff(note, channel)
		return
	}
	id := noteID(note, channel)
	for _, v := range s.voices {
		if v.id == id {
			v.noteOff()
			return
		}
	}
}

func (s *Synthesizer) polyNoteOn(id int, freq float64) {
	for i, v := range s.order {
		if v.id == id {
			s.trigger(i, id, freq)
			return
		}
	}
	for i, v := range s.order {
		if !v.Active() {
			s.trigger(i, id, freq)
			return
		}
	}
	stolen := s.order[0]
	s.logger.Printf("all %d voices busy, stealing note %d\n", len(s.order), stolen.id)
	stolen.noteOff()
	s.trigger(0, id, freq)
}

// trigger starts a note on order[i] and moves that voice to the back.
func (s *Synthesizer) trigger(i int, id int, freq float64) {
	v := s.order[i]
	copy(s.order[i:], s.order[i+1:])
	s.order[len(s.order)-1] = v
	v.noteOn(id, freq)
}

func (s *Synthesizer) monoIndex(channel int) int {
	return channel % len(s.voices)
}

func (s *Synthesizer) monoNoteOn(note int, channel int, freq float64) {
	i := s.monoIndex(channel)
	s.stacks[i] = append(removeNote(s.stacks[i], note), stackedNote{note: note, freq: freq})
	s.voices[i].noteOn(noteID(note, channel), freq)
}

func (s *Synthesizer) monoNoteOff(note int, channel int) {
	i := s.monoIndex(channel)
	stack := s.stacks[i]
	if len(stack) == 0 {
		return
	}
	sounding := stack[len(stack)-1].note == note
	stack = removeNote(stack, note)
	s.stacks[i] = stack
	if !sounding {
		return
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		s.voices[i].noteOn(noteID(top.note, channel), top.freq)
	} else {
		s.voices[i].noteOff()
	}
}

func removeNote(stack []stackedNote, note int) []stackedNote {
	removed := 0
	for i := 0; i < len(stack); i++ {
		if stack[i].note == note {
			removed++
		} else {
			stack[i-removed] = stack[i]
		}
	}
	return stack[:len(stack)-removed]
}

func (s *Synthesizer) allNotesOff() {
	for i, v := range s.voices {
		v.noteOff()
		s.stacks[i] = s.stacks[i][:0]
	}
}

func (s *Synthesizer) setMode(mode Mode) {
	if s.mode == mode {
		return
	}
	s.allNotesOff()
	s.mode = mode
	s.logger.Printf("mode: %s\n", mode)
}

// ----- Controls ----- //

func (s *Synthesizer) controlChange(controller int, value int) {
	switch controller {
	case ccModeToggle:
		if value >= 64 {
			if s.mode == Mono {
				s.setMode(Poly)
			} else {
				s.setMode(Mono)
			}
		}
		return
	case ccAllNotesOff:
		s.allNotesOff()
		return
	case ccMono:
		s.setMode(Mono)
		return
	case ccPoly:
		s.setMode(Poly)
		return
	}
	if !s.applyParameter(controller, value) {
		s.logger.Printf("unmapped controller %d\n", controller)
		return
	}
	s.applied[controller] = value
}

// applyParameter sets the parameter behind controller on every voice.
func (s *Synthesizer) applyParameter(controller int, value int) bool {
	t := s.tables
	for _, v := range s.voices {
		c := v.chain
		switch controller {
		case ccAttack:
			c.SetParameter(audio.ParamAttack, t.time[value])
		case ccDecay:
			c.SetParameter(audio.ParamDecay, t.time[value])
		case ccSustain:
			c.SetParameter(audio.ParamSustain, t.level[value])
		case ccRelease:
			c.SetParameter(audio.ParamRelease, t.time[value])
		case ccCutoff:
			c.SetParameter(audio.ParamCutoff, t.cutoff[value])
		case ccCrossfade:
			c.SetGain(TagOscA, t.level[value])
			c.SetGain(TagOscB, 1-t.level[value])
		case ccDelayTime:
			c.SetParameter(audio.ParamDelayTime, t.delay[value])
		case ccWetGain:
			c.SetParameter(audio.ParamWetGain, t.level[value])
		default:
			return false
		}
	}
	return true
}

func (s *Synthesizer) programChange(program int) {
	if program == s.program {
		return
	}
	if err := s.load(program, len(s.voices)); err != nil {
		s.logger.Printf("program change ignored: %v\n", err)
		return
	}
	for controller, value := range s.applied {
		s.applyParameter(controller, value)
	}
	s.logger.Printf("program: %d (%s)\n", program, s.programs[program].Name)
}

// ----- Render ----- //

// Render pulls one chunk from every voice and mixes them. The result always lies in [-1, 1]
// and stays valid until the next call.
func (s *Synthesizer) Render() []float32 {
	p := s.pool.Load()
	clear(s.mix)
	var amp float32
	for _, chain := range p.chains {
		chunk, props := chain.Produce()
		vek32.Add_Inplace(s.mix, chunk)
		amp += props.Amp
	}
	if amp > 1 {
		audio.Normalize(s.mix)
	}
	audio.Clip(s.mix)
	return s.mix
}
