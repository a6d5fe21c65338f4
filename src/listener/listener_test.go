package listener

import (
	"context"
	"io"
	"log"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jinjor/toysynth/src/config"
	"github.com/jinjor/toysynth/src/synth"
	"gitlab.com/gomidi/midi/v2"
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

var quiet = log.New(io.Discard, "", 0)

type chanSink chan string

func (s chanSink) Send(line string) bool {
	select {
	case s <- line:
		return true
	default:
		return false
	}
}

func expectLines(t *testing.T, sink chanSink, expected ...string) {
	t.Helper()
	for _, want := range expected {
		select {
		case got := <-sink:
			expectEqual(t, got, want)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestCommandFromMIDI(t *testing.T) {
	for _, c := range []struct {
		msg      midi.Message
		expected synth.Command
	}{
		{midi.NoteOn(0, 60, 100), synth.NoteOn(60, 0)},
		{midi.NoteOn(3, 61, 0), synth.NoteOff(61, 3)},
		{midi.NoteOff(15, 62), synth.NoteOff(62, 15)},
		{midi.ControlChange(1, 74, 127), synth.ControlChange(1, 74, 127)},
		{midi.ProgramChange(2, 1), synth.ProgramChange(2, 1)},
	} {
		cmd, ok := CommandFromMIDI(c.msg)
		expectEqual(t, ok, true)
		expectEqual(t, cmd, c.expected)
	}
	_, ok := CommandFromMIDI(midi.Pitchbend(0, 100))
	expectEqual(t, ok, false)
	_, ok = CommandFromMIDI(nil)
	expectEqual(t, ok, false)
}

type fakeMessage struct {
	topic   string
	payload []byte
}

var _ mqtt.Message = fakeMessage{}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func TestTopicHandler(t *testing.T) {
	sink := make(chanSink, 16)
	h := &topicHandler{
		topics: config.Default().MQTT.Topics,
		sink:   sink,
		logger: quiet,
	}
	h.handle(nil, fakeMessage{topic: "toy/synth/test/command", payload: []byte("note_on -n 60 -c 0")})
	h.handle(nil, fakeMessage{topic: "toy/synth/test/command", payload: []byte("\ncontrol_change -c 0 -n 74 -v 3\r\n\nnote_off -n 60 -c 0\n")})
	h.handle(nil, fakeMessage{topic: "somewhere/else", payload: []byte("note_on -n 61 -c 0")})
	h.handle(nil, fakeMessage{topic: "toy/synth/test/command", payload: []byte(strings.Repeat("x", payloadLimit+1))})
	h.handle(nil, fakeMessage{topic: "toy/exit", payload: []byte("anything")})
	expectLines(t, sink,
		"note_on -n 60 -c 0",
		"control_change -c 0 -n 74 -v 3",
		"note_off -n 60 -c 0",
		"exit",
	)
	expectEqual(t, len(sink), 0)
}

func dialSocket(t *testing.T, path string) net.Conn {
	t.Helper()
	var conn net.Conn
	var err error
	for i := 0; i < 100; i++ {
		if conn, err = net.Dial("unix", path); err == nil {
			return conn
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("failed to connect: %v", err)
	return nil
}

func TestListenToSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synth.sock")
	sink := make(chanSink, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- ListenToSocket(ctx, quiet, path, sink)
	}()

	conn := dialSocket(t, path)
	_, err := conn.Write([]byte("note_on -n 60 -c 0\n\n  program_change -c 0 -n 1 \nexit\n"))
	expectNoError(t, err)
	expectLines(t, sink, "note_on -n 60 -c 0", "program_change -c 0 -n 1", "exit")

	second, err := net.Dial("unix", path)
	expectNoError(t, err)
	_, err = second.Write([]byte("note_off -n 60 -c 0\n"))
	expectNoError(t, err)
	expectLines(t, sink, "note_off -n 60 -c 0")
	expectNoError(t, second.Close())

	cancel()
	select {
	case err := <-done:
		expectNoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ListenToSocket did not stop")
	}
	conn.Close()
}

func TestListenToSocketDropsLongLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synth.sock")
	sink := make(chanSink, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- ListenToSocket(ctx, quiet, path, sink)
	}()

	conn := dialSocket(t, path)
	long := "note_on " + strings.Repeat("-n 60 ", maxLineLength)
	_, err := conn.Write([]byte(long + "\nnote_on -n 61 -c 0\n"))
	expectNoError(t, err)
	expectLines(t, sink, "note_on -n 61 -c 0")
	expectNoError(t, conn.Close())

	// a closed client leaves the listener running
	second := dialSocket(t, path)
	_, err = second.Write([]byte("note_off -n 61 -c 0\n"))
	expectNoError(t, err)
	expectLines(t, sink, "note_off -n 61 -c 0")
	expectNoError(t, second.Close())

	cancel()
	select {
	case err := <-done:
		expectNoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ListenToSocket did not stop")
	}
	expectEqual(t, len(sink), 0)
}
