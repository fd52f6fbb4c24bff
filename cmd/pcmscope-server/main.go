// ABOUTME: Entry point for the pcmscope HTTP server
// ABOUTME: Serves the file and session APIs, advertises over mDNS and drives the session clock
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pcmscope/pcmscope-go/internal/catalog"
	"github.com/pcmscope/pcmscope-go/internal/config"
	"github.com/pcmscope/pcmscope-go/internal/discovery"
	"github.com/pcmscope/pcmscope-go/internal/metrics"
	"github.com/pcmscope/pcmscope-go/internal/server"
	"github.com/pcmscope/pcmscope-go/internal/session"
	"github.com/pcmscope/pcmscope-go/internal/version"
	"github.com/pcmscope/pcmscope-go/pkg/audio"
	"github.com/pcmscope/pcmscope-go/pkg/audio/decode"
	"github.com/pcmscope/pcmscope-go/pkg/audio/output"
	"golang.org/x/sync/errgroup"
)

var (
	configPath  = flag.String("config", "", "YAML config file")
	host        = flag.String("host", "", "Listen host (default: all interfaces)")
	port        = flag.Int("port", -1, "HTTP port (0 scans 8000-8099)")
	name        = flag.String("name", "", "Server friendly name (default: hostname-pcmscope)")
	dataDir     = flag.String("data", "", "Directory holding .pcm files (default: data)")
	backendName = flag.String("backend", "", "Audio backend for server-side playback: oto, portaudio or null")
	logFile     = flag.String("log-file", "", "Log file path (default: pcmscope.log)")
	noMDNS      = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	useTUI      = flag.Bool("tui", false, "Show the server status TUI")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	if *useTUI {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	if err := run(cfg); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

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

	if *host != "" {
		cfg.Host = *host
	}
	if *port >= 0 {
		cfg.Port = *port
	}
	if *name != "" {
		cfg.Name = *name
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *backendName != "" {
		cfg.Backend = *backendName
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *noMDNS {
		cfg.Discovery = false
	}

	return cfg, config.Validate(cfg)
}

// openBackend opens the configured backend, falling back to the null backend on hosts without audio
func openBackend(name string) output.Backend {
	backend, err := output.New(name)
	if err == nil {
		err = backend.Open()
	}
	if err != nil {
		log.Printf("Audio backend %s unavailable (%v), using null backend", name, err)
		backend = output.NewNull()
		backend.Open()
	}
	return backend
}

func run(cfg config.Config) error {
	log.Printf("Starting %s: %s", version.String(), cfg.Name)

	cat, err := catalog.New(cfg.DataDir)
	if err != nil {
		return err
	}

	var opts []decode.Option
	if cfg.StrictDecode {
		opts = append(opts, decode.WithValidator(decode.Strict))
	}
	dec, err := decode.NewPCM(audio.PCM16Mono, opts...)
	if err != nil {
		return err
	}

	backend := openBackend(cfg.Backend)
	backend.SetVolume(cfg.Volume)

	met := metrics.New()
	sess, err := session.New(session.Config{
		Catalog:  cat,
		Decoder:  dec,
		Backend:  backend,
		Metrics:  met,
		Interval: cfg.RefreshInterval,
		Width:    cfg.WaveformWidth,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	srv, err := server.New(server.Config{
		Host:          cfg.Host,
		Port:          cfg.Port,
		Name:          cfg.Name,
		WaveformWidth: cfg.WaveformWidth,
		Decoder:       dec,
		UseTUI:        *useTUI,
	}, cat, sess, met)
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}
	log.Printf("Serving %s on http://%s", cat.Dir(), srv.Addr())

	if cfg.Discovery {
		mdnsManager := discovery.NewManager(discovery.Config{
			ServiceName: cfg.Name,
			Port:        srv.Port(),
			Version:     version.Version,
		})
		if err := mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			log.Printf("mDNS advertisement started")
			defer mdnsManager.Stop()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	serverDone := make(chan struct{})

	g.Go(func() error {
		defer close(serverDone)
		return srv.Start()
	})

	g.Go(func() error {
		select {
		case <-ctx.Done():
			log.Printf("Shutdown signal received")
			srv.Stop()
		case <-serverDone:
		}
		return nil
	})

	g.Go(func() error {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			<-serverDone
			cancel()
		}()
		if err := sess.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	return g.Wait()
}
