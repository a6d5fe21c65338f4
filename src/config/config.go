package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings mirrors the YAML settings file.
type Settings struct {
	Synthesis Synthesis `yaml:"synthesis"`
	MIDI      MIDI      `yaml:"midi"`
	MQTT      MQTT      `yaml:"mqtt"`
	Socket    Socket    `yaml:"socket"`
}

// Synthesis ...
type Synthesis struct {
	SampleRate     int    `yaml:"sample_rate"`
	FramesPerChunk int    `yaml:"frames_per_chunk"`
	Voices         int    `yaml:"voices"`
	Mode           string `yaml:"mode"`
	Program        int    `yaml:"program"`
}

// MIDI ...
type MIDI struct {
	Enabled bool `yaml:"enabled"`
	// Port selects the first input whose name contains it. Empty means the first input.
	Port string `yaml:"port"`
}

// MQTT ...
type MQTT struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
	Topics   Topics `yaml:"topics"`
}

// Topics ...
type Topics struct {
	Command string `yaml:"command"`
	Exit    string `yaml:"exit"`
}

// Socket ...
type Socket struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Broker is the paho broker URL.
func (m MQTT) Broker() string {
	return fmt.Sprintf("tcp://%s:%d", m.Host, m.Port)
}

// Default ...
func Default() *Settings {
	return &Settings{
		Synthesis: Synthesis{
			SampleRate:     44100,
			FramesPerChunk: 512,
			Voices:         8,
			Mode:           "poly",
			Program:        0,
		},
		MIDI: MIDI{Enabled: true},
		MQTT: MQTT{
			Host:     "localhost",
			Port:     1883,
			ClientID: "toysynth",
			Topics: Topics{
				Command: "toy/synth/test/command",
				Exit:    "toy/exit",
			},
		},
		Socket: Socket{Enabled: true, Path: "/tmp/toysynth.sock"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse ...
func Parse(data []byte) (*Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate ...
func (s *Settings) Validate() error {
	if s.Synthesis.SampleRate <= 0 {
		return fmt.Errorf("synthesis.sample_rate must be positive: %d", s.Synthesis.SampleRate)
	}
	if s.Synthesis.FramesPerChunk <= 0 {
		return fmt.Errorf("synthesis.frames_per_chunk must be positive: %d", s.Synthesis.FramesPerChunk)
	}
	if s.Synthesis.Voices < 1 {
		return fmt.Errorf("synthesis.voices must be at least 1: %d", s.Synthesis.Voices)
	}
	if s.Synthesis.Mode != "poly" && s.Synthesis.Mode != "mono" {
		return fmt.Errorf("synthesis.mode must be poly or mono: %q", s.Synthesis.Mode)
	}
	if s.MQTT.Enabled && (s.MQTT.Port < 1 || s.MQTT.Port > 65535) {
		return fmt.Errorf("mqtt.port out of range: %d", s.MQTT.Port)
	}
	if s.Socket.Enabled && s.Socket.Path == "" {
		return errors.New("socket.path is required")
	}
	return nil
}
