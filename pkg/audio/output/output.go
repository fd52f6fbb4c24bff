// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends
package output

import (
	"fmt"

	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

// EndedFunc receives the natural end of a run: the generation passed to
// Start and the seconds of audio played since Start
type EndedFunc func(gen uint64, elapsed float64)

// Backend represents an audio output device
type Backend interface {
	// Open initializes the output device
	Open() error

	// Start plays buf from the given position, replacing any current run
	Start(buf *audio.SampleBuffer, from float64, gen uint64, onEnded EndedFunc) error

	// Stop ends the current run without reporting it
	Stop() error

	// Close releases output resources
	Close() error

	// SetVolume sets the volume (0-100)
	SetVolume(volume int)

	// SetMuted sets mute state
	SetMuted(muted bool)

	// GetVolume returns current volume
	GetVolume() int

	// IsMuted returns mute state
	IsMuted() bool
}

// Names of the available backends
const (
	BackendOto       = "oto"
	BackendPortAudio = "portaudio"
	BackendNull      = "null"
)

// New creates a backend by name
func New(name string) (Backend, error) {
	switch name {
	case "", BackendOto:
		return NewOto(), nil
	case BackendPortAudio:
		return NewPortAudio(), nil
	case BackendNull:
		return NewNull(), nil
	default:
		return nil, fmt.Errorf("unknown audio backend: %q (supported: %s, %s, %s)",
			name, BackendOto, BackendPortAudio, BackendNull)
	}
}
