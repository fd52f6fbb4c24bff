// ABOUTME: Playback clock package
// ABOUTME: Authoritative play/pause/stop/seek position tracking for one session
// Package playback tracks the current playback position of a loaded buffer.
//
// Position is derived from wall-clock deltas against an anchor taken at
// play or seek time, never from the audio backend, so UI refresh cadence
// and backend callback latency do not affect it.
//
// Every Load and Stop increments a generation counter, and so does every
// backend run: Play from Stopped or Paused, and Seek while Playing. Play
// returns the run's generation; the audio backend tags its end-of-stream
// report with it, and OnStreamEnded ignores reports from earlier generations.
//
// All methods are safe for concurrent use.
//
// Example:
//
//	clock := playback.NewClock()
//	clock.Load(buf.Duration())
//	gen := clock.Play()
//	pos := clock.Tick(time.Now())
//	// later, from the audio goroutine:
//	clock.OnStreamEnded(gen, elapsed)
package playback
