// ABOUTME: Entry point for the pcmscope terminal player
// ABOUTME: Parses CLI flags, builds the playback session and runs the TUI or a subcommand
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/pcmscope/pcmscope-go/internal/analysis"
	"github.com/pcmscope/pcmscope-go/internal/catalog"
	"github.com/pcmscope/pcmscope-go/internal/config"
	"github.com/pcmscope/pcmscope-go/internal/discovery"
	"github.com/pcmscope/pcmscope-go/internal/session"
	"github.com/pcmscope/pcmscope-go/internal/ui"
	"github.com/pcmscope/pcmscope-go/internal/version"
	"github.com/pcmscope/pcmscope-go/pkg/audio"
	"github.com/pcmscope/pcmscope-go/pkg/audio/decode"
	"github.com/pcmscope/pcmscope-go/pkg/audio/output"
	"github.com/pcmscope/pcmscope-go/pkg/playback"
	"github.com/pcmscope/pcmscope-go/pkg/waveform"
	"golang.org/x/term"
)

var (
	configPath  = flag.String("config", "", "YAML config file")
	dataDir     = flag.String("data", "", "Directory holding .pcm files (default: data)")
	backendName = flag.String("backend", "", "Audio backend: oto, portaudio or null")
	volume      = flag.Int("volume", -1, "Initial volume 0-100")
	strict      = flag.Bool("strict", false, "Reject empty and odd-length files")
	logFile     = flag.String("log-file", "", "Log file path (default: pcmscope.log)")
	noTUI       = flag.Bool("no-tui", false, "Play -play headlessly with streaming logs")
	playName    = flag.String("play", "", "File to play in -no-tui mode")
	listFiles   = flag.Bool("list", false, "List .pcm files and exit")
	infoName    = flag.String("info", "", "Print signal statistics for a file and exit")
	discover    = flag.Bool("discover", false, "Browse the LAN for pcmscope servers and exit")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	useTUI := !*noTUI && !*listFiles && *infoName == "" && !*discover

	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	switch {
	case *discover:
		err = runDiscover()
	case *listFiles:
		err = runList(cfg)
	case *infoName != "":
		err = runInfo(cfg, *infoName)
	default:
		err = runPlayer(cfg, useTUI)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

// loadConfig layers defaults, the YAML file, .env and PCMSCOPE_* variables, then flags
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if err := config.LoadDotEnv(); err != nil {
		return cfg, err
	}
	config.ApplyEnv(&cfg)

	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *backendName != "" {
		cfg.Backend = *backendName
	}
	if *volume >= 0 {
		cfg.Volume = *volume
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *strict {
		cfg.StrictDecode = true
	}

	return cfg, config.Validate(cfg)
}

func runPlayer(cfg config.Config, useTUI bool) error {
	cat, err := catalog.New(cfg.DataDir)
	if err != nil {
		return err
	}

	backend, err := output.New(cfg.Backend)
	if err != nil {
		return err
	}
	if err := backend.Open(); err != nil {
		return fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}
	backend.SetVolume(cfg.Volume)

	var opts []decode.Option
	if cfg.StrictDecode {
		opts = append(opts, decode.WithValidator(decode.Strict))
	}
	dec, err := decode.NewPCM(audio.PCM16Mono, opts...)
	if err != nil {
		return err
	}

	sess, err := session.New(session.Config{
		Catalog:  cat,
		Decoder:  dec,
		Backend:  backend,
		Interval: cfg.RefreshInterval,
		Width:    cfg.WaveformWidth,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Printf("Error closing session: %v", err)
		}
	}()

	log.Printf("Starting %s (session %s, backend %s, data %s)", version.String(), sess.ID(), cfg.Backend, cat.Dir())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if useTUI {
		// The TUI ticks the session itself
		return ui.Run(sess, cat)
	}

	go func() {
		if err := sess.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Refresh loop stopped: %v", err)
		}
	}()
	return playHeadless(ctx, sess, *playName)
}

// playHeadless plays one file to the end, logging progress once per second
func playHeadless(ctx context.Context, sess *session.Session, name string) error {
	if name == "" {
		return fmt.Errorf("-no-tui requires -play <file>")
	}

	updates, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	if err := sess.Load(name); err != nil {
		return err
	}
	if err := sess.Play(); err != nil {
		return err
	}
	log.Printf("Playing %s (%s)", name, sess.Status().Total)

	var lastLogged time.Time
	for {
		select {
		case <-ctx.Done():
			log.Printf("Shutdown signal received")
			return nil
		case st := <-updates:
			if st.State == playback.Stopped {
				log.Printf("Playback finished")
				return nil
			}
			if time.Since(lastLogged) >= time.Second {
				log.Printf("%s %s / %s", st.State, st.Elapsed, st.Total)
				lastLogged = time.Now()
			}
		}
	}
}

func runList(cfg config.Config) error {
	cat, err := catalog.New(cfg.DataDir)
	if err != nil {
		return err
	}
	assets, err := cat.List()
	if err != nil {
		return err
	}

	header := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)

	header.Printf("%d file(s) in %s\n", len(assets), cat.Dir())
	for _, a := range assets {
		duration := float64(a.Size/audio.BytesPerSample) / audio.SampleRate
		fmt.Printf("  %-32s %10s  %s  ", a.Name, audio.FormatSize(a.Size), audio.FormatTime(duration))
		dim.Println(a.ModTime.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runInfo(cfg config.Config, name string) error {
	cat, err := catalog.New(cfg.DataDir)
	if err != nil {
		return err
	}
	data, err := cat.ReadAll(name)
	if err != nil {
		return err
	}

	buf := decode.Decode(data)
	report := analysis.Analyze(buf)

	label := color.New(color.FgCyan).SprintFunc()
	fmt.Printf("%s %s\n", label("File:     "), name)
	fmt.Printf("%s %d bytes (%s)\n", label("Size:     "), len(data), audio.FormatSize(int64(len(data))))
	fmt.Printf("%s %d\n", label("Samples:  "), report.Samples)
	fmt.Printf("%s %s (%.3fs)\n", label("Duration: "), audio.FormatTime(report.Duration), report.Duration)
	fmt.Printf("%s %.4f\n", label("Peak:     "), report.Peak)
	fmt.Printf("%s %.4f\n", label("RMS:      "), report.RMS)
	fmt.Printf("%s %.1f Hz\n", label("Dominant: "), report.DominantHz)
	if report.Truncated {
		color.New(color.FgYellow).Println("Trailing odd byte dropped")
	}

	width := 72
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 8 {
			width = w - 2
		}
	}
	env, err := waveform.Summarize(buf, width)
	if err != nil {
		return err
	}
	fmt.Println(sparkline(env))
	return nil
}

// sparkline renders an envelope as one row of block characters
func sparkline(env waveform.Envelope) string {
	levels := []rune("▁▂▃▄▅▆▇█")
	var b strings.Builder
	for _, p := range env {
		amp := max(-p.Min, p.Max)
		i := int(amp * float32(len(levels)-1))
		i = min(max(i, 0), len(levels)-1)
		b.WriteRune(levels[i])
	}
	return b.String()
}

func runDiscover() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("Browsing for %s services...", discovery.ServiceType)
	servers, err := discovery.Discover(ctx, 3*time.Second)
	if err != nil {
		return err
	}

	if len(servers) == 0 {
		color.New(color.FgYellow).Println("No servers found")
		return nil
	}
	for _, s := range servers {
		color.New(color.FgGreen).Printf("%s", s.Name)
		fmt.Printf("  %s\n", s.URL())
	}
	return nil
}
