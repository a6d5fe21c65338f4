package synth

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/hajimehoshi/oto"
)

const (
	channelNum      = 2
	bitDepthInBytes = 2
	bytesPerSample  = bitDepthInBytes * channelNum
	minBufferSize   = 4096
)

// ----- Reader ----- //

// Reader encodes the synthesizer output as 16-bit little-endian stereo PCM.
// Chunks are consumed whole: the rest of a chunk is kept for the next Read.
type Reader struct {
	ctx     context.Context
	synth   *Synthesizer
	pending []float32
}

var _ io.Reader = (*Reader)(nil)

// NewReader returns a Reader that reports io.EOF once ctx is done.
func NewReader(ctx context.Context, s *Synthesizer) *Reader {
	return &Reader{ctx: ctx, synth: s}
}

func (r *Reader) Read(buf []byte) (int, error) {
	select {
	case <-r.ctx.Done():
		return 0, io.EOF
	default:
	}
	if len(buf) == 0 {
		return 0, nil
	}
	frames := len(buf) / bytesPerSample
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}
	for n := 0; n < frames; {
		if len(r.pending) == 0 {
			r.pending = r.synth.Render()
		}
		m := len(r.pending)
		if m > frames-n {
			m = frames - n
		}
		out := buf[n*bytesPerSample : (n+m)*bytesPerSample]
		for ch := 0; ch < channelNum; ch++ {
			writeBuffer(r.pending[:m], out, ch)
		}
		r.pending = r.pending[m:]
		n += m
	}
	return frames * bytesPerSample, nil
}

func writeBuffer(in []float32, buf []byte, ch int) {
	const max = 32767
	for i, value := range in {
		b := int16(value * max)
		buf[bytesPerSample*i+2*ch] = byte(b)
		buf[bytesPerSample*i+2*ch+1] = byte(b >> 8)
	}
}

// ----- Player ----- //

// Player plays a Synthesizer on the default audio device.
type Player struct {
	otoContext *oto.Context
	synth      *Synthesizer
	bufferSize int
	logger     *log.Logger
}

// NewPlayer opens the audio device. Only one Player may exist per process.
func NewPlayer(s *Synthesizer, logger *log.Logger) (*Player, error) {
	if logger == nil {
		logger = log.Default()
	}
	cfg := s.Config()
	bufferSize := cfg.FramesPerChunk() * bytesPerSample
	if bufferSize < minBufferSize {
		bufferSize = minBufferSize
	}
	otoContext, err := oto.NewContext(cfg.SampleRate(), channelNum, bitDepthInBytes, bufferSize)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	return &Player{
		otoContext: otoContext,
		synth:      s,
		bufferSize: bufferSize,
		logger:     logger,
	}, nil
}

// Start blocks until ctx is done or the device fails.
func (p *Player) Start(ctx context.Context) error {
	player := p.otoContext.NewPlayer()
	defer func() {
		if err := player.Close(); err != nil {
			p.logger.Printf("error while closing player: %v\n", err)
		}
	}()
	if _, err := io.CopyBuffer(player, NewReader(ctx, p.synth), make([]byte, p.bufferSize)); err != nil {
		return fmt.Errorf("audio output: %w", err)
	}
	p.logger.Println("Start() ended.")
	return nil
}

// Close ...
func (p *Player) Close() error {
	p.logger.Println("Closing Player...")
	return p.otoContext.Close()
}
