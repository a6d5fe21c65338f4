package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jinjor/toysynth/src/audio"
	"github.com/jinjor/toysynth/src/config"
	"github.com/jinjor/toysynth/src/listener"
	"github.com/jinjor/toysynth/src/synth"
	"golang.org/x/sync/errgroup"
)

var settingsPath = flag.String("config", "settings.yaml", "path to the settings file")

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	log.Printf("NumCPU: %v\n", runtime.NumCPU())
	logger := log.Default()

	settings, err := config.Load(*settingsPath)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	cfg, err := audio.NewConfig(settings.Synthesis.SampleRate, settings.Synthesis.FramesPerChunk)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	mode := synth.Poly
	if settings.Synthesis.Mode == "mono" {
		mode = synth.Mono
	}
	s, err := synth.NewSynthesizer(cfg, synth.Options{
		Voices:  settings.Synthesis.Voices,
		Mode:    mode,
		Program: settings.Synthesis.Program,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	player, err := synth.NewPlayer(s, logger)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer player.Close()

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		select {
		case sig := <-signalCh:
			log.Printf("Caught signal %s: shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return player.Start(ctx)
	})
	g.Go(func() error {
		// exit ends the group, which stops the player and every listener
		return s.Run(ctx)
	})
	if settings.MIDI.Enabled {
		g.Go(func() error {
			return listener.ListenToMidiIn(ctx, logger, settings.MIDI.Port, s)
		})
	}
	if settings.MQTT.Enabled {
		g.Go(func() error {
			return listener.ListenToMQTT(ctx, logger, settings.MQTT, s)
		})
	}
	if settings.Socket.Enabled {
		g.Go(func() error {
			return listener.ListenToSocket(ctx, logger, settings.Socket.Path, s)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, synth.ErrExit) {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}
