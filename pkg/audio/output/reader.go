// ABOUTME: Streaming view over a sample buffer with live volume
// ABOUTME: Feeds 16-bit PCM to audio devices and counts frames consumed
package output

import (
	"encoding/binary"
	"io"
	"sync"
	"sync/atomic"

	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

// volumeControl holds software gain shared by a backend and its readers
type volumeControl struct {
	mu     sync.RWMutex
	volume int
	muted  bool
}

func newVolumeControl() *volumeControl {
	return &volumeControl{volume: 100}
}

func (v *volumeControl) set(volume int) int {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	v.mu.Lock()
	v.volume = volume
	v.mu.Unlock()
	return volume
}

func (v *volumeControl) setMuted(muted bool) {
	v.mu.Lock()
	v.muted = muted
	v.mu.Unlock()
}

func (v *volumeControl) get() (int, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.volume, v.muted
}

func (v *volumeControl) multiplier() float32 {
	volume, muted := v.get()
	return getVolumeMultiplier(volume, muted)
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float32 {
	if muted {
		return 0.0
	}
	return float32(volume) / 100.0
}

// sampleReader streams samples as 16-bit little-endian PCM
type sampleReader struct {
	samples []float32
	pos     atomic.Int64
	gain    *volumeControl
}

func newSampleReader(buf *audio.SampleBuffer, from float64, gain *volumeControl) *sampleReader {
	var samples []float32
	if buf != nil {
		samples = buf.Samples[buf.SampleIndex(from):]
	}
	return &sampleReader{samples: samples, gain: gain}
}

// Read implements io.Reader for oto
func (r *sampleReader) Read(p []byte) (int, error) {
	pos := int(r.pos.Load())
	if pos >= len(r.samples) {
		return 0, io.EOF
	}

	n := len(p) / audio.BytesPerSample
	if remaining := len(r.samples) - pos; n > remaining {
		n = remaining
	}

	mult := r.gain.multiplier()
	for i := 0; i < n; i++ {
		s := audio.SampleToInt16(r.samples[pos+i] * mult)
		binary.LittleEndian.PutUint16(p[i*2:], uint16(s))
	}
	r.pos.Add(int64(n))

	return n * audio.BytesPerSample, nil
}

// ReadInt16 fills out with samples for callback-driven devices.
// The tail past the end of the buffer is zero-filled.
func (r *sampleReader) ReadInt16(out []int16) int {
	pos := int(r.pos.Load())
	n := len(out)
	if remaining := len(r.samples) - pos; n > remaining {
		n = remaining
	}
	if n < 0 {
		n = 0
	}

	mult := r.gain.multiplier()
	for i := 0; i < n; i++ {
		out[i] = audio.SampleToInt16(r.samples[pos+i] * mult)
	}
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	r.pos.Add(int64(n))

	return n
}

// Consumed returns the seconds of audio handed to the device so far
func (r *sampleReader) Consumed() float64 {
	return float64(r.pos.Load()) / audio.SampleRate
}

// Remaining returns the seconds of audio not yet handed to the device
func (r *sampleReader) Remaining() float64 {
	return float64(int64(len(r.samples))-r.pos.Load()) / audio.SampleRate
}

// Exhausted reports whether every sample has been read
func (r *sampleReader) Exhausted() bool {
	return int(r.pos.Load()) >= len(r.samples)
}
