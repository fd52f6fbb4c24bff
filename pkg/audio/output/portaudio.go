//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform callback-driven audio output using PortAudio
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

// PortAudio output implementation
type PortAudio struct {
	mu          sync.Mutex
	initialized bool
	stream      *portaudio.Stream
	current     *run
	gain        *volumeControl
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Backend {
	return &PortAudio{
		gain: newVolumeControl(),
	}
}

// Open initializes PortAudio
func (p *PortAudio) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	p.initialized = true

	log.Printf("Audio output initialized: %dHz, %d channel (portaudio)", audio.SampleRate, audio.Channels)
	return nil
}

// Start opens a stream that plays buf from the given position
func (p *PortAudio) Start(buf *audio.SampleBuffer, from float64, gen uint64, onEnded EndedFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return fmt.Errorf("output not opened")
	}

	p.stopLocked()

	reader := newSampleReader(buf, from, p.gain)
	drained := make(chan struct{})
	var drainOnce sync.Once

	stream, err := portaudio.OpenDefaultStream(0, audio.Channels, float64(audio.SampleRate), 0, func(out []int16) {
		if reader.ReadInt16(out) < len(out) {
			drainOnce.Do(func() { close(drained) })
		}
	})
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start stream: %w", err)
	}

	r := newRun(gen, onEnded)
	p.stream = stream
	p.current = r

	go func() {
		select {
		case <-r.done():
		case <-drained:
			p.mu.Lock()
			if p.current == r {
				p.closeStreamLocked()
				p.current = nil
			}
			p.mu.Unlock()
			r.finish(reader.Consumed())
		}
	}()

	return nil
}

// Stop ends the current run
func (p *PortAudio) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	return nil
}

func (p *PortAudio) stopLocked() {
	if p.current != nil {
		p.current.abort()
		p.current = nil
	}
	p.closeStreamLocked()
}

func (p *PortAudio) closeStreamLocked() {
	if p.stream == nil {
		return
	}
	if err := p.stream.Stop(); err != nil {
		log.Printf("Warning: portaudio stream stop error: %v", err)
	}
	if err := p.stream.Close(); err != nil {
		log.Printf("Warning: portaudio stream close error: %v", err)
	}
	p.stream = nil
}

// Close releases resources
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	if !p.initialized {
		return nil
	}
	p.initialized = false
	return portaudio.Terminate()
}

// SetVolume sets the volume (0-100)
func (p *PortAudio) SetVolume(volume int) {
	volume = p.gain.set(volume)
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state
func (p *PortAudio) SetMuted(muted bool) {
	p.gain.setMuted(muted)
	log.Printf("Muted: %v", muted)
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
