package synth

import (
	"context"
	"io"
	"testing"

	"github.com/jinjor/toysynth/src/audio"
)

func TestWriteBuffer(t *testing.T) {
	buf := make([]byte, 3*bytesPerSample)
	in := []float32{0.5, -1, 1}
	writeBuffer(in, buf, 0)
	writeBuffer(in, buf, 1)
	expected := []int16{16383, 16383, -32767, -32767, 32767, 32767}
	for i, v := range expected {
		actual := int16(uint16(buf[2*i]) | uint16(buf[2*i+1])<<8)
		expectEqual(t, actual, v)
	}
}

func TestReaderKeepsRestOfChunk(t *testing.T) {
	cfg, err := audio.NewConfig(48000, 4)
	expectNoError(t, err)
	s, err := NewSynthesizer(cfg, Options{Voices: 1, Logger: quiet})
	expectNoError(t, err)
	r := NewReader(context.Background(), s)

	buf := make([]byte, 6*bytesPerSample)
	n, err := r.Read(buf)
	expectNoError(t, err)
	expectEqual(t, n, len(buf))
	expectEqual(t, len(r.pending), 2)

	// odd trailing bytes are left alone
	n, err = r.Read(make([]byte, 2*bytesPerSample+1))
	expectNoError(t, err)
	expectEqual(t, n, 2*bytesPerSample)
	expectEqual(t, len(r.pending), 0)

	n, err = r.Read(make([]byte, 1))
	expectEqual(t, err, io.ErrShortBuffer)
	expectEqual(t, n, 0)

	n, err = r.Read(nil)
	expectNoError(t, err)
	expectEqual(t, n, 0)
}

func TestReaderPlaysNotes(t *testing.T) {
	cfg, err := audio.NewConfig(48000, 256)
	expectNoError(t, err)
	s, err := NewSynthesizer(cfg, Options{Voices: 2, Logger: quiet})
	expectNoError(t, err)
	expectNoError(t, s.Handle("note_on -n 69 -c 0"))
	r := NewReader(context.Background(), s)
	buf := make([]byte, 4096)
	nonZero := false
	for i := 0; i < 8; i++ {
		_, err := io.ReadFull(r, buf)
		expectNoError(t, err)
		for f := 0; f < len(buf); f += bytesPerSample {
			left := int16(uint16(buf[f]) | uint16(buf[f+1])<<8)
			right := int16(uint16(buf[f+2]) | uint16(buf[f+3])<<8)
			expectEqual(t, left, right)
			if left != 0 {
				nonZero = true
			}
		}
	}
	expectEqual(t, nonZero, true)
}

func TestReaderStopsWithContext(t *testing.T) {
	cfg, err := audio.NewConfig(48000, 64)
	expectNoError(t, err)
	s, err := NewSynthesizer(cfg, Options{Voices: 1, Logger: quiet})
	expectNoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	r := NewReader(ctx, s)
	_, err = r.Read(make([]byte, 64))
	expectNoError(t, err)
	cancel()
	n, err := r.Read(make([]byte, 64))
	expectEqual(t, n, 0)
	expectEqual(t, err, io.EOF)
}
