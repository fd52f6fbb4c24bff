//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"

	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

var errPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio output implementation (stub)
type PortAudio struct {
	gain *volumeControl
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Backend {
	return &PortAudio{gain: newVolumeControl()}
}

// Open initializes PortAudio
func (p *PortAudio) Open() error {
	return errPortAudioDisabled
}

// Start plays audio
func (p *PortAudio) Start(buf *audio.SampleBuffer, from float64, gen uint64, onEnded EndedFunc) error {
	return errPortAudioDisabled
}

// Stop ends playback
func (p *PortAudio) Stop() error {
	return nil
}

// Close releases resources
func (p *PortAudio) Close() error {
	return nil
}

// SetVolume sets the volume (0-100)
func (p *PortAudio) SetVolume(volume int) {
	p.gain.set(volume)
}

// SetMuted sets mute state
func (p *PortAudio) SetMuted(muted bool) {
	p.gain.setMuted(muted)
}

// GetVolume returns current volume
func (p *PortAudio) GetVolume() int {
	volume, _ := p.gain.get()
	return volume
}

// IsMuted returns mute state
func (p *PortAudio) IsMuted() bool {
	_, muted := p.gain.get()
	return muted
}
