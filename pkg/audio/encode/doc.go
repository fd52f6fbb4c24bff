// ABOUTME: Audio encoder package for re-encoding decoded samples
// ABOUTME: Provides 16-bit PCM and WAV container output
// Package encode turns normalized samples back into bytes.
//
// Supports: 16-bit little-endian PCM, and WAV (RIFF header + PCM data)
// for handing raw files to players that need a container.
//
// Example:
//
//	pcm := encode.EncodePCM16(buf.Samples)
//	wav, err := encode.EncodeWAV(raw)
package encode
