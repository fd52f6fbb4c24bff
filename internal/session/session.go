// ABOUTME: Playback session tying catalog, decoder, clock and audio backend together
// ABOUTME: Relays user intents and drives the position refresh loop
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pcmscope/pcmscope-go/internal/catalog"
	"github.com/pcmscope/pcmscope-go/internal/metrics"
	"github.com/pcmscope/pcmscope-go/pkg/audio"
	"github.com/pcmscope/pcmscope-go/pkg/audio/decode"
	"github.com/pcmscope/pcmscope-go/pkg/audio/output"
	"github.com/pcmscope/pcmscope-go/pkg/playback"
	"github.com/pcmscope/pcmscope-go/pkg/waveform"
)

// ErrNothingLoaded is returned by transport operations before any file is loaded
var ErrNothingLoaded = errors.New("no file loaded")

// DefaultInterval is the position refresh cadence
const DefaultInterval = 100 * time.Millisecond

// Config holds session dependencies
type Config struct {
	Catalog  *catalog.Catalog // Optional; required for Load by name
	Decoder  decode.Decoder   // Defaults to a permissive PCM decoder
	Backend  output.Backend   // Required
	Metrics  *metrics.Metrics // Optional
	Interval time.Duration    // Refresh cadence, default 100ms
	Width    int              // Envelope width, default 800
	Now      func() time.Time // Time source, default time.Now
}

// Session owns one loaded buffer and its playback clock
type Session struct {
	id       string
	catalog  *catalog.Catalog
	decoder  decode.Decoder
	backend  output.Backend
	metrics  *metrics.Metrics
	clock    *playback.Clock
	interval time.Duration
	width    int
	now      func() time.Time

	// mu serializes intents so clock and backend stay in step
	mu   sync.Mutex
	name string
	buf  *audio.SampleBuffer

	envelope atomic.Pointer[waveform.Envelope]

	subsMu  sync.Mutex
	subs    map[int]chan Status
	nextSub int

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a session
func New(cfg Config) (*Session, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("session requires an audio backend")
	}
	if cfg.Decoder == nil {
		dec, err := decode.NewPCM(audio.PCM16Mono)
		if err != nil {
			return nil, err
		}
		cfg.Decoder = dec
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		id:       uuid.New().String(),
		catalog:  cfg.Catalog,
		decoder:  cfg.Decoder,
		backend:  cfg.Backend,
		metrics:  cfg.Metrics,
		clock:    playback.NewClock(playback.WithNow(cfg.Now)),
		interval: cfg.Interval,
		width:    cfg.Width,
		now:      cfg.Now,
		subs:     make(map[int]chan Status),
		ctx:      ctx,
		cancel:   cancel,
	}
	empty := make(waveform.Envelope, cfg.Width)
	s.envelope.Store(&empty)

	return s, nil
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Load reads, decodes and summarizes a catalog file, replacing any loaded buffer
func (s *Session) Load(name string) error {
	if s.catalog == nil {
		return fmt.Errorf("session has no catalog")
	}

	data, err := s.catalog.ReadAll(name)
	if err != nil {
		return err
	}

	buf, err := s.decoder.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	if buf.Truncated {
		log.Printf("Dropped trailing partial frame from %s (%d bytes)", name, len(data))
	}
	s.metrics.ObserveLoad(len(data), buf.Truncated)

	return s.LoadBuffer(name, buf)
}

// LoadBuffer installs an already decoded buffer under the given name
func (s *Session) LoadBuffer(name string, buf *audio.SampleBuffer) error {
	if buf == nil {
		return fmt.Errorf("nil buffer")
	}

	// Summarize outside the lock; the result is swapped in whole
	env, err := waveform.Summarize(buf, s.width)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.backend.Stop(); err != nil {
		log.Printf("Warning: backend stop failed: %v", err)
	}
	if err := s.clock.Load(buf.Duration()); err != nil {
		s.mu.Unlock()
		return err
	}
	s.name = name
	s.buf = buf
	s.envelope.Store(&env)
	s.mu.Unlock()

	log.Printf("Loaded %s: %d samples, %s", name, buf.Len(), audio.FormatTime(buf.Duration()))
	s.publish(s.Status())
	return nil
}

// Play starts or resumes playback
func (s *Session) Play() error {
	s.mu.Lock()
	err := s.playLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.publish(s.Status())
	return nil
}

func (s *Session) playLocked() error {
	if s.buf == nil {
		return ErrNothingLoaded
	}
	if s.clock.State() == playback.Playing {
		return nil
	}

	gen := s.clock.Play()
	from := s.clock.Snapshot().Position
	if err := s.backend.Start(s.buf, from, gen, s.onStreamEnded); err != nil {
		s.clock.Pause()
		return fmt.Errorf("failed to start playback: %w", err)
	}
	s.metrics.IncRunsStarted()
	return nil
}

// Pause freezes playback at the current position
func (s *Session) Pause() error {
	s.mu.Lock()
	err := s.pauseLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.publish(s.Status())
	return nil
}

func (s *Session) pauseLocked() error {
	if s.buf == nil {
		return ErrNothingLoaded
	}
	if s.clock.State() != playback.Playing {
		return nil
	}
	s.clock.Pause()
	return s.backend.Stop()
}

// Toggle pauses while playing and plays otherwise
func (s *Session) Toggle() error {
	s.mu.Lock()
	var err error
	if s.clock.State() == playback.Playing {
		err = s.pauseLocked()
	} else {
		err = s.playLocked()
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.publish(s.Status())
	return nil
}

// Stop halts playback and rewinds to the start
func (s *Session) Stop() error {
	s.mu.Lock()
	err := s.backend.Stop()
	s.clock.Stop()
	s.mu.Unlock()

	s.publish(s.Status())
	return err
}

// Seek moves to seconds, clamped to the buffer. While playing the
// backend restarts from the new position.
func (s *Session) Seek(seconds float64) (float64, error) {
	s.mu.Lock()
	pos, err := s.seekLocked(seconds)
	s.mu.Unlock()

	if err != nil {
		return pos, err
	}
	s.publish(s.Status())
	return pos, nil
}

func (s *Session) seekLocked(seconds float64) (float64, error) {
	if s.buf == nil {
		return 0, ErrNothingLoaded
	}

	pos := s.clock.Seek(seconds)
	if s.clock.State() != playback.Playing {
		return pos, nil
	}

	gen := s.clock.Generation()
	if err := s.backend.Start(s.buf, pos, gen, s.onStreamEnded); err != nil {
		s.clock.Pause()
		return pos, fmt.Errorf("failed to restart playback: %w", err)
	}
	s.metrics.IncRunsStarted()
	return pos, nil
}

// SeekFraction seeks to a fraction (0-1) of the duration, as from a click on the waveform
func (s *Session) SeekFraction(fraction float64) (float64, error) {
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	s.mu.Lock()
	duration := s.clock.Snapshot().Duration
	pos, err := s.seekLocked(fraction * duration)
	s.mu.Unlock()

	if err != nil {
		return pos, err
	}
	s.publish(s.Status())
	return pos, nil
}

// SeekBy moves relative to the current position
func (s *Session) SeekBy(delta float64) (float64, error) {
	s.mu.Lock()
	current := s.clock.Tick(s.now())
	pos, err := s.seekLocked(current + delta)
	s.mu.Unlock()

	if err != nil {
		return pos, err
	}
	s.publish(s.Status())
	return pos, nil
}

// SetVolume sets the output volume (0-100)
func (s *Session) SetVolume(volume int) {
	s.backend.SetVolume(volume)
	s.publish(s.Status())
}

// ToggleMute flips the mute state and returns the new state
func (s *Session) ToggleMute() bool {
	muted := !s.backend.IsMuted()
	s.backend.SetMuted(muted)
	s.publish(s.Status())
	return muted
}

// onStreamEnded receives end-of-run reports from the backend goroutine
func (s *Session) onStreamEnded(gen uint64, elapsed float64) {
	if s.clock.OnStreamEnded(gen, elapsed) {
		s.metrics.IncRunsCompleted()
		log.Printf("Playback finished (gen=%d, %.2fs)", gen, elapsed)
	} else {
		s.metrics.IncStaleEnds()
	}
	s.publish(s.Status())
}

// Tick advances the clock to now and returns the resulting status
func (s *Session) Tick(now time.Time) Status {
	s.clock.Tick(now)
	st := s.Status()
	s.metrics.SetPlayback(int(st.State), st.Position)
	return st
}

// Run refreshes the position every interval until ctx is cancelled or the
// session is closed, publishing status to subscribers while playing
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ctx.Done():
			return nil
		case <-ticker.C:
			st := s.Tick(s.now())
			if st.State == playback.Playing {
				s.publish(st)
			}
		}
	}
}

// Status returns the current session status
func (s *Session) Status() Status {
	s.mu.Lock()
	name := s.name
	s.mu.Unlock()

	return newStatus(s.id, name, s.clock.Snapshot(), s.backend.GetVolume(), s.backend.IsMuted())
}

// FileName returns the loaded file name, or "" if nothing is loaded
func (s *Session) FileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Buffer returns the loaded buffer, or nil
func (s *Session) Buffer() *audio.SampleBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf
}

// Envelope returns the envelope of the loaded buffer at the session width
func (s *Session) Envelope() waveform.Envelope {
	return *s.envelope.Load()
}

// EnvelopeAt summarizes the loaded buffer at another width
func (s *Session) EnvelopeAt(width int) (waveform.Envelope, error) {
	if width == s.width {
		return s.Envelope(), nil
	}
	return waveform.Summarize(s.Buffer(), width)
}

// ClockStats returns the playback clock counters
func (s *Session) ClockStats() playback.Stats {
	return s.clock.Stats()
}

// Subscribe returns a channel of status updates and a function to cancel it.
// Slow subscribers miss updates rather than blocking playback.
func (s *Session) Subscribe() (<-chan Status, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Status, 16)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

func (s *Session) publish(st Status) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- st:
		default:
		}
	}
}

// Close stops playback, ends Run and releases the backend
func (s *Session) Close() error {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock.Stop()
	if err := s.backend.Stop(); err != nil {
		log.Printf("Warning: backend stop failed: %v", err)
	}
	return s.backend.Close()
}
