// ABOUTME: Raw PCM decoder package
// ABOUTME: Turns headerless 16-bit little-endian mono bytes into normalized samples
// Package decode turns raw PCM bytes into an audio.SampleBuffer.
//
// The input is assumed to be 16 kHz, 16-bit signed, mono, little-endian PCM.
// Nothing in the bytes identifies the format, so any even-length input decodes
// without error. A trailing odd byte is a partial frame and is dropped.
//
// Stricter checks can be plugged in with a Validator when the caller wants
// them; the default decoder accepts everything.
//
// Example:
//
//	buf := decode.Decode(data)
//
//	dec, err := decode.NewPCM(audio.PCM16Mono, decode.WithValidator(decode.RequireNonEmpty))
//	buf, err := dec.Decode(data)
package decode
