package listener

import (
	"context"
	"log"
	"strings"

	"gitlab.com/gomidi/midi"
	"gitlab.com/gomidi/rtmididrv"
)

// ListenToMidiIn forwards messages from a MIDI input port to sink until ctx is done.
// port selects the first input whose name contains it. A missing driver or port is logged, not fatal.
func ListenToMidiIn(ctx context.Context, logger *log.Logger, port string, sink Sink) error {
	if logger == nil {
		logger = log.Default()
	}
	drv, err := rtmididrv.New()
	if err != nil {
		logger.Printf("failed to initialize MIDI driver: %v\n", err)
		return nil
	}
	defer func() {
		if err := drv.Close(); err != nil {
			logger.Printf("failed to close MIDI driver: %v\n", err)
		}
	}()
	in, err := findIn(drv, port)
	if err != nil {
		logger.Printf("failed to get MIDI IN: %v\n", err)
		return nil
	}
	if in == nil {
		logger.Printf("WARN: MIDI IN not found (port %q)\n", port)
		return nil
	}
	if err := in.Open(); err != nil {
		logger.Printf("failed to open MIDI IN: %v\n", err)
		return nil
	}
	logger.Println("opened " + in.String())
	defer func() {
		if err := in.Close(); err != nil {
			logger.Printf("failed to close MIDI IN: %v\n", err)
		}
	}()
	if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
		if cmd, ok := CommandFromMIDI(data); ok {
			sink.Send(cmd.String())
		}
	}); err != nil {
		logger.Printf("failed to set listener: %v\n", err)
		return nil
	}
	defer func() {
		logger.Println("stop listening MIDI IN...")
		if err := in.StopListening(); err != nil {
			logger.Printf("failed to stop listening: %v\n", err)
		}
	}()
	logger.Println("start listening MIDI IN...")
	<-ctx.Done()
	return nil
}

func findIn(drv midi.Driver, port string) (midi.In, error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, err
	}
	for _, in := range ins {
		if strings.Contains(in.String(), port) {
			return in, nil
		}
	}
	return nil, nil
}
