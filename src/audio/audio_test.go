package audio

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"testing"
	"time"
)

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func expectEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNearlyEqual(t *testing.T, actual, expected float64) {
	t.Helper()
	if math.Abs(actual-expected) > 0.0001 {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

var quiet = log.New(io.Discard, "", 0)

func testConfig(t *testing.T, sampleRate int, framesPerChunk int) Config {
	t.Helper()
	cfg, err := NewConfig(sampleRate, framesPerChunk)
	expectNoError(t, err)
	return cfg
}

// sequence plays back fixed samples chunk by chunk, then silence.
type sequence struct {
	node
	samples []float32
	amp     float32
	pos     int
}

func newSequence(cfg Config, amp float32, samples []float32) *sequence {
	s := &sequence{samples: samples, amp: amp}
	s.init(cfg, quiet, Wave)
	return s
}

func (s *sequence) Kind() Kind { return KindConstant }

func (s *sequence) IsSilent() bool { return !s.Active() }

func (s *sequence) Reset() { s.pos = 0 }

func (s *sequence) Produce() ([]float32, Props) {
	clear(s.out)
	if s.pos < len(s.samples) {
		copy(s.out, s.samples[s.pos:])
	}
	s.pos += len(s.out)
	return s.out, Props{Amp: s.amp}
}

func collect(c Component, chunks int) []float32 {
	var out []float32
	for i := 0; i < chunks; i++ {
		chunk, _ := c.Produce()
		out = append(out, chunk...)
	}
	return out
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(0, 512)
	expectEqual(t, errors.Is(err, ErrInvalidConfig), true)
	_, err = NewConfig(44100, -1)
	expectEqual(t, errors.Is(err, ErrInvalidConfig), true)
	cfg := testConfig(t, 48000, 480)
	expectEqual(t, cfg.ChunkDuration(), 10*time.Millisecond)
	expectEqual(t, cfg.Frames(0.5), 24000)
}

func TestZeroConfigPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic")
		}
	}()
	NewSine(Config{}, quiet)
}

func TestBenchmark(t *testing.T) {
	polyphony := 10
	times := 1000

	cfg := testConfig(t, 48000, 1024)
	chains := make([]*Chain, polyphony)
	for n := range chains {
		chain, err := BuildChain(cfg, quiet, NodeSpec{
			Kind:   KindEnvelope,
			Params: map[string]float64{"attack": 0.01},
			Children: []NodeSpec{{
				Kind:   KindFilter,
				Params: map[string]float64{"cutoff": 2000},
				Children: []NodeSpec{{
					Kind: KindDelay,
					Children: []NodeSpec{{
						Kind: KindMixer,
						Children: []NodeSpec{
							{Kind: KindOscillator, Shape: Sawtooth},
							{Kind: KindOscillator, Shape: Square},
						},
					}},
				}},
			}},
		})
		expectNoError(t, err)
		chain.NoteOn(NoteToFreq(60 + n))
		chains[n] = chain
	}
	start := time.Now()
	for n := 0; n < times; n++ {
		for _, chain := range chains {
			chain.Produce()
		}
	}
	averageProcessTime := float64(time.Since(start).Microseconds()) / float64(times) / 1000
	fmt.Printf("average process time: %.2fms\n", averageProcessTime)
}
