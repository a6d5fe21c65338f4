package synth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// Cue is a command line scheduled at an offset from the start of a render.
type Cue struct {
	At   time.Duration
	Line string
}

// ParseScript reads one command per line. "wait <seconds>" advances the clock;
// blank lines and lines starting with # are skipped. It returns the cues and the total length.
// An exit line ends the rendered stream when it is reached.
func ParseScript(r io.Reader) ([]Cue, time.Duration, error) {
	var cues []Cue
	var at time.Duration
	scanner := bufio.NewScanner(r)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "wait "); ok {
			seconds, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
			if err != nil || seconds < 0 {
				return nil, 0, fmt.Errorf("line %d: bad wait %q", lineNum, rest)
			}
			at += time.Duration(seconds * float64(time.Second))
			continue
		}
		if _, err := ParseCommand(line); err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", lineNum, err)
		}
		cues = append(cues, Cue{At: at, Line: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return cues, at, nil
}

// ----- Streamer ----- //

// Streamer adapts a Synthesizer to beep. Cues are applied on the control side between chunks,
// at the first chunk boundary at or after their offset. An exit cue drains the streamer.
type Streamer struct {
	synth   *Synthesizer
	cues    []Cue
	pending []float32
	frames  int64
	exited  bool
}

var _ beep.Streamer = (*Streamer)(nil)

// NewStreamer ...
func NewStreamer(s *Synthesizer, cues ...Cue) *Streamer {
	return &Streamer{synth: s, cues: cues}
}

// Stream drains only after an exit cue. Wrap it with beep.Take to bound it.
func (st *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		if len(st.pending) == 0 {
			st.applyCues()
			if st.exited {
				return n, n > 0
			}
			st.pending = st.synth.Render()
			st.frames += int64(len(st.pending))
		}
		m := copyMono(samples[n:], st.pending)
		st.pending = st.pending[m:]
		n += m
	}
	return n, true
}

func (st *Streamer) applyCues() {
	if st.exited {
		return
	}
	now := time.Duration(st.frames) * time.Second / time.Duration(st.synth.Config().SampleRate())
	for len(st.cues) > 0 && st.cues[0].At <= now {
		err := st.synth.Handle(st.cues[0].Line)
		st.cues = st.cues[1:]
		if errors.Is(err, ErrExit) {
			st.exited = true
			st.cues = nil
			return
		}
	}
}

func copyMono(dst [][2]float64, src []float32) int {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		v := float64(src[i])
		dst[i] = [2]float64{v, v}
	}
	return n
}

// Err ...
func (st *Streamer) Err() error {
	return nil
}

// Format is the WAV format RenderWAV writes.
func Format(s *Synthesizer) beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(s.Config().SampleRate()),
		NumChannels: 1,
		Precision:   2,
	}
}

// RenderWAV renders length of audio, applying cues, and encodes it as 16-bit mono WAV.
func RenderWAV(w io.WriteSeeker, s *Synthesizer, length time.Duration, cues ...Cue) error {
	format := Format(s)
	return RenderStreamWAV(w, format, beep.Take(format.SampleRate.N(length), NewStreamer(s, cues...)))
}

// RenderStreamWAV encodes an already bounded streamer.
func RenderStreamWAV(w io.WriteSeeker, format beep.Format, streamer beep.Streamer) error {
	if err := wav.Encode(w, streamer, format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}
