// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines the fixed PCM format, SampleBuffer and sample conversions
// Package audio provides the fundamental types shared by the pcmscope packages.
//
// Every file pcmscope plays is raw, headerless PCM in one fixed format:
// 16 kHz, 16-bit signed, mono, little-endian. The format is a convention and
// is never read from the file itself.
//
// This package defines:
//   - Format: describes the PCM layout (always PCM16Mono in practice)
//   - SampleBuffer: normalized float32 samples plus the sample rate
//
// It also provides sample conversions and display helpers:
//   - int16 <-> normalized float32 ([-1.0, 1.0))
//   - FormatTime / FormatSize for player displays
//
// Example:
//
//	buf := &audio.SampleBuffer{
//	    Samples:    []float32{0, 0.5, -1},
//	    SampleRate: audio.SampleRate,
//	}
//	fmt.Println(audio.FormatTime(buf.Duration()))
package audio
