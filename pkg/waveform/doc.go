// ABOUTME: Waveform summarization package
// ABOUTME: Reduces a sample buffer to one min/max pair per display column
// Package waveform builds renderable amplitude envelopes.
//
// Summarize splits a buffer into width contiguous chunks of
// ceil(n/width) samples and keeps the min and max of each. The envelope
// always has exactly width pairs; columns past the end of a short buffer
// are flat (0, 0).
//
// Summarize is a pure function and may run on any goroutine.
//
// Example:
//
//	env, err := waveform.Summarize(buf, 120)
//	x := waveform.PlayheadX(position, buf.Duration(), 120)
package waveform
