package audio

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig is returned when a graph is configured with a non-positive sample rate or chunk size.
var ErrInvalidConfig = errors.New("invalid graph config")

// Config is shared by every node of one graph. The zero value is not usable; use NewConfig.
type Config struct {
	sampleRate     int
	framesPerChunk int
}

// NewConfig ...
func NewConfig(sampleRate int, framesPerChunk int) (Config, error) {
	if sampleRate <= 0 {
		return Config{}, fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, sampleRate)
	}
	if framesPerChunk <= 0 {
		return Config{}, fmt.Errorf("%w: frames per chunk %d", ErrInvalidConfig, framesPerChunk)
	}
	return Config{sampleRate: sampleRate, framesPerChunk: framesPerChunk}, nil
}

// SampleRate ...
func (c Config) SampleRate() int {
	return c.sampleRate
}

// FramesPerChunk ...
func (c Config) FramesPerChunk() int {
	return c.framesPerChunk
}

// ChunkDuration is the render period of one chunk.
func (c Config) ChunkDuration() time.Duration {
	return time.Duration(c.framesPerChunk) * time.Second / time.Duration(c.sampleRate)
}

// Frames converts seconds to a whole number of samples.
func (c Config) Frames(seconds float64) int {
	return int(math.Round(seconds * float64(c.sampleRate)))
}

func (c Config) mustBeValid() {
	if c.sampleRate <= 0 || c.framesPerChunk <= 0 {
		panic("audio: node constructed with a zero Config")
	}
}
