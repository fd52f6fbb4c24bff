// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for PCM decoders
package decode

import "github.com/pcmscope/pcmscope-go/pkg/audio"

// Decoder decodes raw audio bytes to a normalized sample buffer
type Decoder interface {
	// Decode converts raw bytes to samples
	Decode(data []byte) (*audio.SampleBuffer, error)

	// Close releases decoder resources
	Close() error
}
