// ABOUTME: Oto-based audio output implementation
// ABOUTME: Plays sample buffers through oto with live software volume
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

// otoPollInterval is how often a run checks whether the device has drained
const otoPollInterval = 20 * time.Millisecond

// Oto output implementation using oto library
type Oto struct {
	mu      sync.Mutex
	otoCtx  *oto.Context
	player  *oto.Player
	current *run
	gain    *volumeControl
}

// NewOto creates a new Oto output
func NewOto() Backend {
	return &Oto{
		gain: newVolumeControl(),
	}
}

// Open initializes the output device for 16 kHz mono 16-bit audio
func (o *Oto) Open() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	// oto allows one context per process; reuse it after Close
	if o.otoCtx != nil {
		if err := o.otoCtx.Resume(); err != nil {
			return fmt.Errorf("failed to resume oto context: %w", err)
		}
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   audio.SampleRate,
		ChannelCount: audio.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx

	log.Printf("Audio output initialized: %dHz, %d channel (oto)", audio.SampleRate, audio.Channels)

	return nil
}

// Start plays buf from the given position
func (o *Oto) Start(buf *audio.SampleBuffer, from float64, gen uint64, onEnded EndedFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx == nil {
		return fmt.Errorf("output not initialized")
	}

	o.stopLocked()

	reader := newSampleReader(buf, from, o.gain)
	player := o.otoCtx.NewPlayer(reader)
	r := newRun(gen, onEnded)

	o.player = player
	o.current = r
	player.Play()

	go o.watch(r, player, reader)

	return nil
}

// watch waits for the player to drain and reports the end of the run
func (o *Oto) watch(r *run, player *oto.Player, reader *sampleReader) {
	ticker := time.NewTicker(otoPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done():
			return
		case <-ticker.C:
			if err := player.Err(); err != nil {
				log.Printf("Oto player error: %v", err)
				r.abort()
				return
			}
			if player.IsPlaying() || !reader.Exhausted() {
				continue
			}

			o.mu.Lock()
			if o.current == r {
				o.current = nil
				o.player = nil
				if err := player.Close(); err != nil {
					log.Printf("Warning: oto player close error: %v", err)
				}
			}
			o.mu.Unlock()

			r.finish(reader.Consumed())
			return
		}
	}
}

// Stop ends the current run
func (o *Oto) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopLocked()
	return nil
}

// stopLocked must be called with o.mu held
func (o *Oto) stopLocked() {
	if o.current != nil {
		o.current.abort()
		o.current = nil
	}
	if o.player != nil {
		o.player.Pause()
		if err := o.player.Close(); err != nil {
			log.Printf("Warning: oto player close error: %v", err)
		}
		o.player = nil
	}
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopLocked()
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			return fmt.Errorf("failed to suspend oto context: %w", err)
		}
	}
	return nil
}

// SetVolume sets the volume (0-100)
func (o *Oto) SetVolume(volume int) {
	volume = o.gain.set(volume)
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state
func (o *Oto) SetMuted(muted bool) {
	o.gain.setMuted(muted)
	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume
func (o *Oto) GetVolume() int {
	volume, _ := o.gain.get()
	return volume
}

// IsMuted returns mute state
func (o *Oto) IsMuted() bool {
	_, muted := o.gain.get()
	return muted
}
