// ABOUTME: HTTP server exposing the PCM catalog and a shared playback session
// ABOUTME: Manages the listener, chi routes, websocket clients and shutdown
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/pcmscope/pcmscope-go/internal/catalog"
	"github.com/pcmscope/pcmscope-go/internal/config"
	"github.com/pcmscope/pcmscope-go/internal/metrics"
	"github.com/pcmscope/pcmscope-go/internal/session"
	"github.com/pcmscope/pcmscope-go/pkg/audio"
	"github.com/pcmscope/pcmscope-go/pkg/audio/decode"
)

const shutdownTimeout = 5 * time.Second

// Config holds server configuration
type Config struct {
	Host          string
	Port          int // 0 scans [config.PortRangeStart, config.PortRangeEnd)
	Name          string
	WaveformWidth int
	MaxWidth      int            // upper bound for ?width=, 0 means config.MaxWaveformWidth
	Decoder       decode.Decoder // nil means a permissive 16 kHz mono decoder
	UseTUI        bool
}

// Server serves the file API, the session API and the status websocket
type Server struct {
	config   Config
	catalog  *catalog.Catalog
	session  *session.Session
	metrics  *metrics.Metrics
	decoder  decode.Decoder
	router   chi.Router
	upgrader websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener

	// Websocket clients keyed by remote address
	clients   map[string]time.Time
	clientsMu sync.RWMutex

	tui       *ServerTUI
	startTime time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a server. sess and m may be nil; session routes then return 503.
func New(cfg Config, cat *catalog.Catalog, sess *session.Session, m *metrics.Metrics) (*Server, error) {
	if cat == nil {
		return nil, errors.New("server requires a catalog")
	}
	if cfg.WaveformWidth <= 0 {
		cfg.WaveformWidth = config.Default().WaveformWidth
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = config.MaxWaveformWidth
	}

	dec := cfg.Decoder
	if dec == nil {
		var err error
		if dec, err = decode.NewPCM(audio.PCM16Mono); err != nil {
			return nil, err
		}
	}

	s := &Server{
		config:  cfg,
		catalog: cat,
		session: sess,
		metrics: m,
		decoder: dec,
		upgrader: websocket.Upgrader{
			// Local network tool; browsers on any origin may watch status
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[string]time.Time),
		startTime: time.Now(),
		stopChan:  make(chan struct{}),
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the server's router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen binds the listening socket, scanning for a free port when none is configured
func (s *Server) Listen() error {
	ln, err := listen(s.config.Host, s.config.Port)
	if err != nil {
		return err
	}
	s.listener = ln
	s.config.Port = ln.Addr().(*net.TCPAddr).Port
	return nil
}

// Port returns the bound port, or the configured one before Listen
func (s *Server) Port() int {
	return s.config.Port
}

// Addr returns the bound address
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start listens if needed and serves until Stop is called
func (s *Server) Start() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	if s.config.UseTUI {
		s.tui = NewServerTUI()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.tui.Start(s.config.Name, s.config.Port); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.feedTUI()
		}()
	}

	log.Printf("Server starting: %s on http://%s", s.config.Name, s.Addr())

	s.httpServer = &http.Server{Handler: s.router}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var tuiQuitChan <-chan struct{}
	if s.tui != nil {
		tuiQuitChan = s.tui.QuitChan()
	}

	var serverErr error
	select {
	case <-s.stopChan:
		log.Printf("Server shutting down...")
	case <-tuiQuitChan:
		log.Printf("TUI quit requested, shutting down...")
		s.Stop()
	case err := <-errChan:
		log.Printf("HTTP server error: %v", err)
		serverErr = err
		s.Stop()
	}

	if s.tui != nil {
		s.tui.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	s.wg.Wait()
	log.Printf("Server stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// ClientCount returns the number of connected websocket clients
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// listen binds host:port, or the first free port in the scan range when port is 0
func listen(host string, port int) (net.Listener, error) {
	if port != 0 {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			return nil, fmt.Errorf("failed to listen on port %d: %w", port, err)
		}
		return ln, nil
	}

	for p := config.PortRangeStart; p < config.PortRangeEnd; p++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(p)))
		if err == nil {
			return ln, nil
		}
	}
	return nil, fmt.Errorf("no free port in range %d-%d", config.PortRangeStart, config.PortRangeEnd-1)
}
