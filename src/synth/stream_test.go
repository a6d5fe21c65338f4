package synth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/jinjor/toysynth/src/audio"
)

const script = `
# a short phrase
note_on -n 60 -c 0
wait 0.25
control_change -c 0 -n 74 -v 90

note_off -n 60 -c 0
wait 0.5
`

func TestParseScript(t *testing.T) {
	cues, total, err := ParseScript(strings.NewReader(script))
	expectNoError(t, err)
	expectEqual(t, len(cues), 3)
	expectEqual(t, cues[0], Cue{At: 0, Line: "note_on -n 60 -c 0"})
	expectEqual(t, cues[1], Cue{At: 250 * time.Millisecond, Line: "control_change -c 0 -n 74 -v 90"})
	expectEqual(t, cues[2].At, 250*time.Millisecond)
	expectEqual(t, total, 750*time.Millisecond)
}

func TestParseScriptErrors(t *testing.T) {
	for _, text := range []string{
		"wait soon",
		"wait -1",
		"note_on -n 60\n",
		"exit\nplay",
	} {
		if _, _, err := ParseScript(strings.NewReader(text)); err == nil {
			t.Errorf("expected error for %q", text)
		}
	}
	_, _, err := ParseScript(strings.NewReader("note_on -n 200 -c 0"))
	expectEqual(t, errors.Is(err, ErrMalformedCommand), true)
}

func TestStreamerAppliesCues(t *testing.T) {
	cfg, err := audio.NewConfig(1000, 100)
	expectNoError(t, err)
	s, err := NewSynthesizer(cfg, Options{Voices: 2, Logger: quiet})
	expectNoError(t, err)
	st := NewStreamer(s,
		Cue{At: 0, Line: "note_on -n 60 -c 0"},
		Cue{At: 150 * time.Millisecond, Line: "note_on -n 62 -c 0"},
	)
	samples := make([][2]float64, 150)
	n, ok := st.Stream(samples)
	expectEqual(t, n, 150)
	expectEqual(t, ok, true)
	// the second cue waits for the chunk boundary at 200ms
	expectIDs(t, s, 60, noNote)
	n, _ = st.Stream(samples[:50])
	expectEqual(t, n, 50)
	expectIDs(t, s, 60, noNote)
	st.Stream(samples[:1])
	expectIDs(t, s, 60, 62)
	expectNoError(t, st.Err())
	for _, frame := range samples {
		expectEqual(t, frame[0], frame[1])
	}
}

func TestStreamerStopsAtExit(t *testing.T) {
	cfg, err := audio.NewConfig(1000, 100)
	expectNoError(t, err)
	s, err := NewSynthesizer(cfg, Options{Voices: 2, Logger: quiet})
	expectNoError(t, err)
	st := NewStreamer(s,
		Cue{At: 0, Line: "note_on -n 60 -c 0"},
		Cue{At: 150 * time.Millisecond, Line: "exit"},
		Cue{At: 150 * time.Millisecond, Line: "note_on -n 62 -c 0"},
	)
	samples := make([][2]float64, 300)
	n, ok := st.Stream(samples)
	expectEqual(t, n, 200)
	expectEqual(t, ok, true)
	// nothing after the exit is applied
	expectIDs(t, s, 60, noNote)
	n, ok = st.Stream(samples)
	expectEqual(t, n, 0)
	expectEqual(t, ok, false)
}

func TestRenderWAV(t *testing.T) {
	cfg, err := audio.NewConfig(8000, 128)
	expectNoError(t, err)
	s, err := NewSynthesizer(cfg, Options{Voices: 2, Logger: quiet})
	expectNoError(t, err)
	cues, total, err := ParseScript(strings.NewReader(script))
	expectNoError(t, err)

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	expectNoError(t, err)
	expectNoError(t, RenderWAV(f, s, total, cues...))
	expectNoError(t, f.Close())

	f, err = os.Open(path)
	expectNoError(t, err)
	defer f.Close()
	streamer, format, err := wav.Decode(f)
	expectNoError(t, err)
	defer streamer.Close()
	expectEqual(t, format.SampleRate, beep.SampleRate(8000))
	expectEqual(t, format.NumChannels, 1)
	expectEqual(t, format.Precision, 2)
	expectEqual(t, streamer.Len(), 6000)
}

func TestRenderWAVStopsAtExit(t *testing.T) {
	cfg, err := audio.NewConfig(8000, 128)
	expectNoError(t, err)
	s, err := NewSynthesizer(cfg, Options{Voices: 2, Logger: quiet})
	expectNoError(t, err)
	cues, total, err := ParseScript(strings.NewReader("note_on -n 60 -c 0\nwait 0.25\nexit\nwait 0.5\n"))
	expectNoError(t, err)
	expectEqual(t, total, 750*time.Millisecond)

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	expectNoError(t, err)
	expectNoError(t, RenderWAV(f, s, total, cues...))
	expectNoError(t, f.Close())

	f, err = os.Open(path)
	expectNoError(t, err)
	defer f.Close()
	streamer, _, err := wav.Decode(f)
	expectNoError(t, err)
	defer streamer.Close()
	// the exit lands on the chunk boundary at 2048 frames
	expectEqual(t, streamer.Len(), 2048)
}
