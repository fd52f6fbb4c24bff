// ABOUTME: PCM audio encoder
// ABOUTME: Encodes float32 samples to 16-bit little-endian PCM bytes
package encode

import (
	"encoding/binary"
	"fmt"

	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

// EncodePCM16 quantizes normalized samples to 16-bit little-endian PCM with clipping
func EncodePCM16(samples []float32) []byte {
	output := make([]byte, len(samples)*audio.BytesPerSample)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(audio.SampleToInt16(sample)))
	}
	return output
}

// PCMEncoder encodes PCM audio
type PCMEncoder struct{}

// NewPCM creates a new PCM encoder
func NewPCM(format audio.Format) (Encoder, error) {
	if format.BitDepth != audio.BitDepth {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: %d)", format.BitDepth, audio.BitDepth)
	}
	return &PCMEncoder{}, nil
}

// Encode converts samples to PCM bytes
func (e *PCMEncoder) Encode(samples []float32) ([]byte, error) {
	return EncodePCM16(samples), nil
}

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}
