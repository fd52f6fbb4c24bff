// ABOUTME: Test tone generator for pcmscope
// ABOUTME: Writes 16 kHz mono 16-bit sine files into the data directory
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/pcmscope/pcmscope-go/internal/catalog"
	"github.com/pcmscope/pcmscope-go/internal/tone"
	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

var (
	outDir    = flag.String("out", "data", "Output directory")
	frequency = flag.Float64("freq", 0, "Tone frequency in Hz (default: write the stock 440/880/220 Hz set)")
	seconds   = flag.Float64("seconds", tone.DefaultSeconds, "Tone length in seconds")
	amplitude = flag.Float64("amp", tone.DefaultAmplitude, "Amplitude 0-1")
	name      = flag.String("name", "", "Output file name for -freq (default: test_<freq>hz.pcm)")
)

func main() {
	flag.Parse()

	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	if *frequency <= 0 {
		paths, err := tone.WriteDefaults(*outDir)
		if err != nil {
			log.Fatalf("Failed to write test tones: %v", err)
		}
		for _, p := range paths {
			report(ok, p)
		}
		return
	}

	if *amplitude <= 0 || *amplitude > 1 {
		warn.Printf("Amplitude %.2f outside (0, 1], clipping may occur\n", *amplitude)
	}

	fileName := *name
	if fileName == "" {
		fileName = fmt.Sprintf("test_%.0fhz%s", *frequency, catalog.Extension)
	}
	if err := catalog.ValidateName(fileName); err != nil {
		log.Fatalf("Invalid file name: %v", err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create %s: %v", *outDir, err)
	}

	path := filepath.Join(*outDir, fileName)
	if err := tone.WriteFile(path, *frequency, *seconds, *amplitude); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
	report(ok, path)
}

func report(c *color.Color, path string) {
	info, err := os.Stat(path)
	if err != nil {
		log.Printf("Cannot stat %s: %v", path, err)
		return
	}
	duration := float64(info.Size()/audio.BytesPerSample) / audio.SampleRate
	c.Printf("created ")
	fmt.Printf("%s (%s, %s)\n", path, audio.FormatSize(info.Size()), audio.FormatTime(duration))
}
