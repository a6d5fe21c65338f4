// Command render plays command scripts through the synthesizer offline and writes one WAV file per script.
//
//	render -o out/ -voices 4 phrase.txt chords.txt
//
// A script holds one command per line; "wait <seconds>" advances the clock.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/jinjor/toysynth/src/analysis"
	"github.com/jinjor/toysynth/src/audio"
	"github.com/jinjor/toysynth/src/synth"
	"golang.org/x/sync/errgroup"
)

const (
	tail        = time.Second // rendered after the last cue
	analysisLen = 1 << 14
)

var (
	outDir         = flag.String("o", ".", "output directory")
	sampleRate     = flag.Int("rate", 44100, "sample rate")
	framesPerChunk = flag.Int("chunk", 512, "frames per chunk")
	voices         = flag.Int("voices", 8, "voice count")
	program        = flag.Int("program", 0, "initial program")
	mono           = flag.Bool("mono", false, "start in mono mode")
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatalln("no script is passed")
	}
	log.SetFlags(log.Lshortfile)

	cfg, err := audio.NewConfig(*sampleRate, *framesPerChunk)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	var g errgroup.Group
	for _, script := range flag.Args() {
		g.Go(func() error {
			return render(cfg, script)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("Successfully rendered scripts.")
}

func render(cfg audio.Config, script string) error {
	f, err := os.Open(script)
	if err != nil {
		return err
	}
	defer f.Close()
	cues, length, err := synth.ParseScript(f)
	if err != nil {
		return fmt.Errorf("%s: %w", script, err)
	}
	mode := synth.Poly
	if *mono {
		mode = synth.Mono
	}
	s, err := synth.NewSynthesizer(cfg, synth.Options{
		Voices:  *voices,
		Mode:    mode,
		Program: *program,
		Logger:  log.New(os.Stderr, filepath.Base(script)+": ", log.Lshortfile),
	})
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(script), filepath.Ext(script))
	path := filepath.Join(*outDir, base+".wav")
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	format := synth.Format(s)
	var captured []float32
	inner := beep.Take(format.SampleRate.N(length+tail), synth.NewStreamer(s, cues...))
	streamer := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := inner.Stream(samples)
		for _, frame := range samples[:n] {
			captured = append(captured, float32(frame[0]))
		}
		return n, ok
	})
	if err := synth.RenderStreamWAV(out, format, streamer); err != nil {
		return fmt.Errorf("%s: %w", script, err)
	}
	log.Printf("saved %s (%v, peak %.1f Hz)\n", path, format.SampleRate.D(len(captured)), analysis.PeakFrequency(firstFrame(captured), cfg.SampleRate()))
	return nil
}

// firstFrame is the longest power-of-two prefix of samples, up to analysisLen.
func firstFrame(samples []float32) []float32 {
	if len(samples) == 0 {
		return nil
	}
	n := 1
	for n*2 <= len(samples) && n*2 <= analysisLen {
		n *= 2
	}
	return samples[:n]
}
