// ABOUTME: Min/max envelope computation
// ABOUTME: Fixed-width summary of a sample buffer for waveform display
package waveform

import (
	"errors"
	"fmt"

	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

// ErrInvalidArgument is returned for a non-positive target width
var ErrInvalidArgument = errors.New("invalid argument")

// Pair is the amplitude range of one display column
type Pair struct {
	Min float32 `json:"min"`
	Max float32 `json:"max"`
}

// Envelope holds one Pair per display column. It is never mutated after Summarize returns it.
type Envelope []Pair

// Width returns the number of columns
func (e Envelope) Width() int {
	return len(e)
}

// Peak returns the largest absolute amplitude across all columns
func (e Envelope) Peak() float32 {
	var peak float32
	for _, p := range e {
		if -p.Min > peak {
			peak = -p.Min
		}
		if p.Max > peak {
			peak = p.Max
		}
	}
	return peak
}

// Summarize partitions buf into width chunks and returns their min/max pairs.
func Summarize(buf *audio.SampleBuffer, width int) (Envelope, error) {
	if width <= 0 {
		return nil, fmt.Errorf("target width %d must be positive: %w", width, ErrInvalidArgument)
	}

	env := make(Envelope, width)

	var samples []float32
	if buf != nil {
		samples = buf.Samples
	}
	n := len(samples)
	if n == 0 {
		return env, nil
	}

	chunk := (n + width - 1) / width
	for i := 0; i < width; i++ {
		start := i * chunk
		if start >= n {
			// Remaining columns stay (0, 0)
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}

		lo, hi := samples[start], samples[start]
		for _, s := range samples[start+1 : end] {
			if s < lo {
				lo = s
			}
			if s > hi {
				hi = s
			}
		}
		env[i] = Pair{Min: lo, Max: hi}
	}

	return env, nil
}
