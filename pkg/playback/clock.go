// ABOUTME: Generation-guarded playback clock
// ABOUTME: Derives position from wall-clock anchors under a single mutex
package playback

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"
)

// ErrInvalidArgument is returned by Load for a negative or NaN duration
var ErrInvalidArgument = errors.New("invalid argument")

// DefaultEndTolerance is how far short of the duration a reported run may end
// and still count as having reached the end
const DefaultEndTolerance = 0.25

// Snapshot is a consistent read of the clock state
type Snapshot struct {
	State      State   `json:"state"`
	Position   float64 `json:"position"`
	Duration   float64 `json:"duration"`
	Generation uint64  `json:"generation"`
}

// Stats counts clock operations
type Stats struct {
	Loads          int64
	Plays          int64
	Completions    int64 // Stream ends accepted
	StaleCallbacks int64 // Stream ends ignored
}

// Clock tracks playback position across play, pause, stop and seek
type Clock struct {
	mu        sync.Mutex
	now       func() time.Time
	tolerance float64

	state    State
	position float64
	duration float64

	// Anchor for position while Playing
	refWall time.Time
	refPos  float64

	generation uint64
	stats      Stats
}

// Option configures a Clock
type Option func(*Clock)

// WithNow sets the time source used by Play, Pause and Seek
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		c.now = now
	}
}

// WithEndTolerance sets the end-of-stream tolerance in seconds
func WithEndTolerance(seconds float64) Option {
	return func(c *Clock) {
		if seconds >= 0 {
			c.tolerance = seconds
		}
	}
}

// NewClock creates a stopped clock with zero duration
func NewClock(opts ...Option) *Clock {
	c := &Clock{
		now:       time.Now,
		tolerance: DefaultEndTolerance,
		state:     Stopped,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load resets the clock for a new buffer of the given duration.
// A negative duration is clamped to 0 and reported as ErrInvalidArgument.
func (c *Clock) Load(duration float64) error {
	var err error
	if duration < 0 || math.IsNaN(duration) {
		err = fmt.Errorf("duration %v must be non-negative: %w", duration, ErrInvalidArgument)
		duration = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Stopped
	c.position = 0
	c.duration = duration
	c.refPos = 0
	c.generation++
	c.stats.Loads++

	return err
}

// Play starts or resumes playback from the current position and returns
// the generation the audio backend must report completion with. Each new
// run gets its own generation; Play while playing returns the current one.
func (c *Clock) Play() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Playing {
		c.state = Playing
		c.anchor(c.position)
		c.generation++
		c.stats.Plays++
	}
	return c.generation
}

// Pause freezes the position at the current time
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Playing {
		return
	}
	c.position = c.positionAt(c.now())
	c.state = Paused
}

// Stop returns to the start and invalidates any in-flight completion
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Stopped
	c.position = 0
	c.refPos = 0
	c.generation++
}

// Seek moves to the given position, clamped to [0, duration], and returns it.
// While playing, ticks continue from the new position and the generation
// advances, since the backend restarts from there as a new run.
func (c *Clock) Seek(seconds float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.position = c.clamp(seconds)
	if c.state == Playing {
		c.anchor(c.position)
		c.generation++
	}
	return c.position
}

// Tick advances the position to now while playing and returns it.
// In any other state it returns the last known position unchanged.
func (c *Clock) Tick(now time.Time) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Playing {
		c.position = c.positionAt(now)
	}
	return c.position
}

// OnStreamEnded handles a natural end of playback reported by the audio backend.
// elapsed is the seconds of audio played since the run started. The report is
// applied only when playing, gen is current, and the run reached the end.
func (c *Clock) OnStreamEnded(gen uint64, elapsed float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Playing || gen != c.generation {
		c.stats.StaleCallbacks++
		log.Printf("Ignoring stale stream end: gen=%d current=%d state=%s", gen, c.generation, c.state)
		return false
	}

	if c.refPos+elapsed < c.duration-c.tolerance {
		c.stats.StaleCallbacks++
		log.Printf("Ignoring early stream end: started=%.3fs elapsed=%.3fs duration=%.3fs",
			c.refPos, elapsed, c.duration)
		return false
	}

	c.state = Stopped
	c.position = 0
	c.refPos = 0
	c.stats.Completions++
	return true
}

// Snapshot returns the state, last computed position, duration and generation
func (c *Clock) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		State:      c.state,
		Position:   c.position,
		Duration:   c.duration,
		Generation: c.generation,
	}
}

// State returns the current transport state
func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Generation returns the current generation
func (c *Clock) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Stats returns operation counters
func (c *Clock) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// anchor must be called with mu held
func (c *Clock) anchor(position float64) {
	c.refWall = c.now()
	c.refPos = position
}

// positionAt must be called with mu held
func (c *Clock) positionAt(now time.Time) float64 {
	elapsed := now.Sub(c.refWall).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return c.clamp(c.refPos + elapsed)
}

func (c *Clock) clamp(seconds float64) float64 {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	if seconds > c.duration {
		return c.duration
	}
	return seconds
}
