// ABOUTME: Audio type definitions
// ABOUTME: Defines the fixed PCM format and decoded sample buffers
package audio

import (
	"math"
	"time"
)

const (
	// Fixed PCM layout of every playable file
	SampleRate     = 16000
	BitDepth       = 16
	Channels       = 1
	BytesPerSample = BitDepth / 8

	// Normalization divisor for 16-bit samples (2^15)
	int16Scale = 32768.0
)

// Format describes a PCM stream layout
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// PCM16Mono is the only format pcmscope decodes
var PCM16Mono = Format{
	SampleRate: SampleRate,
	Channels:   Channels,
	BitDepth:   BitDepth,
}

// ByteRate returns the number of bytes per second of audio
func (f Format) ByteRate() int {
	return f.SampleRate * f.Channels * f.BitDepth / 8
}

// SampleBuffer holds decoded, normalized mono samples
type SampleBuffer struct {
	Samples    []float32 // Normalized samples in [-1.0, 1.0)
	SampleRate int
	Truncated  bool // A trailing partial frame was dropped while decoding
}

// Len returns the number of samples in the buffer
func (b *SampleBuffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Samples)
}

// Duration returns the buffer length in seconds
func (b *SampleBuffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// DurationTime returns the buffer length as a time.Duration
func (b *SampleBuffer) DurationTime() time.Duration {
	return SecondsToDuration(b.Duration())
}

// SampleIndex converts a position in seconds to a sample offset clamped to the buffer
func (b *SampleBuffer) SampleIndex(seconds float64) int {
	if b == nil || seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	idx := int(seconds * float64(b.SampleRate))
	if idx > len(b.Samples) {
		idx = len(b.Samples)
	}
	return idx
}

// SampleFromInt16 normalizes a 16-bit sample by 32768.
// -32768 maps to exactly -1.0; 32767 maps to just under 1.0.
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / int16Scale
}

// SampleToInt16 converts a normalized sample back to 16-bit with clipping
func SampleToInt16(sample float32) int16 {
	scaled := math.Round(float64(sample) * int16Scale)
	if scaled > math.MaxInt16 {
		return math.MaxInt16
	}
	if scaled < math.MinInt16 {
		return math.MinInt16
	}
	return int16(scaled)
}

// SecondsToDuration converts fractional seconds to a time.Duration
func SecondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
