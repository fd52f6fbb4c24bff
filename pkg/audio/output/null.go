// ABOUTME: Silent real-time audio output
// ABOUTME: Times runs with a timer so headless sessions and tests behave like a device
package output

import (
	"log"
	"sync"
	"time"

	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

// Null output plays nothing but ends each run after its real duration
type Null struct {
	mu      sync.Mutex
	current *run
	gain    *volumeControl
	speed   float64
}

// NewNull creates a new null output running in real time
func NewNull() Backend {
	return &Null{
		gain:  newVolumeControl(),
		speed: 1.0,
	}
}

// NewNullWithSpeed creates a null output that runs speed times faster than real time
func NewNullWithSpeed(speed float64) Backend {
	if speed <= 0 {
		speed = 1.0
	}
	return &Null{
		gain:  newVolumeControl(),
		speed: speed,
	}
}

// Open does nothing
func (n *Null) Open() error {
	log.Printf("Audio output initialized: %dHz, %d channel (null)", audio.SampleRate, audio.Channels)
	return nil
}

// Start times a run for the rest of buf after from
func (n *Null) Start(buf *audio.SampleBuffer, from float64, gen uint64, onEnded EndedFunc) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current != nil {
		n.current.abort()
	}

	length := newSampleReader(buf, from, n.gain).Remaining()
	r := newRun(gen, onEnded)
	n.current = r

	wait := audio.SecondsToDuration(length / n.speed)
	go func() {
		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-r.done():
		case <-timer.C:
			n.mu.Lock()
			if n.current == r {
				n.current = nil
			}
			n.mu.Unlock()
			r.finish(length)
		}
	}()

	return nil
}

// Stop ends the current run
func (n *Null) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current != nil {
		n.current.abort()
		n.current = nil
	}
	return nil
}

// Close releases resources
func (n *Null) Close() error {
	return n.Stop()
}

// SetVolume sets the volume (0-100)
func (n *Null) SetVolume(volume int) {
	n.gain.set(volume)
}

// SetMuted sets mute state
func (n *Null) SetMuted(muted bool) {
	n.gain.setMuted(muted)
}

// GetVolume returns current volume
func (n *Null) GetVolume() int {
	volume, _ := n.gain.get()
	return volume
}

// IsMuted returns mute state
func (n *Null) IsMuted() bool {
	_, muted := n.gain.get()
	return muted
}
