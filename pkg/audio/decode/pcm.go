// ABOUTME: PCM audio decoder
// ABOUTME: Decodes 16-bit little-endian mono PCM into float32 samples
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

// Decode converts 16-bit little-endian PCM bytes into a SampleBuffer.
// A trailing odd byte is discarded, never padded. Empty input yields an empty buffer.
func Decode(data []byte) *audio.SampleBuffer {
	numSamples := len(data) / audio.BytesPerSample
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}

	return &audio.SampleBuffer{
		Samples:    samples,
		SampleRate: audio.SampleRate,
		Truncated:  len(data)%audio.BytesPerSample != 0,
	}
}

// PCMDecoder decodes PCM audio with optional input validation
type PCMDecoder struct {
	validate Validator
}

// Option configures a PCMDecoder
type Option func(*PCMDecoder)

// WithValidator runs v on every input before decoding
func WithValidator(v Validator) Option {
	return func(d *PCMDecoder) {
		d.validate = v
	}
}

// NewPCM creates a new PCM decoder for the given format
func NewPCM(format audio.Format, opts ...Option) (Decoder, error) {
	if format != audio.PCM16Mono {
		return nil, fmt.Errorf("unsupported format: %dHz %dch %d-bit (supported: %dHz %dch %d-bit)",
			format.SampleRate, format.Channels, format.BitDepth,
			audio.SampleRate, audio.Channels, audio.BitDepth)
	}

	d := &PCMDecoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Decode validates (if configured) and decodes PCM bytes
func (d *PCMDecoder) Decode(data []byte) (*audio.SampleBuffer, error) {
	if d.validate != nil {
		if err := d.validate(data); err != nil {
			return nil, err
		}
	}
	return Decode(data), nil
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}
