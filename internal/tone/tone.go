// ABOUTME: Sine test tone generator
// ABOUTME: Produces raw 16 kHz mono 16-bit PCM tones for manual and automated testing
package tone

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

const (
	// DefaultAmplitude is 50% of full scale
	DefaultAmplitude = 0.5

	// DefaultSeconds is the length of generated test files
	DefaultSeconds = 3.0
)

// Preset names a tone written by WriteDefaults
type Preset struct {
	Name      string
	Frequency float64
}

// Defaults are the stock test files: A4, A5 and A3
var Defaults = []Preset{
	{Name: "test_440hz.pcm", Frequency: 440},
	{Name: "test_880hz.pcm", Frequency: 880},
	{Name: "test_220hz.pcm", Frequency: 220},
}

// Source generates a continuous sine tone
type Source struct {
	sampleIndex uint64
	sampleMu    sync.Mutex
	frequency   float64
	amplitude   float64
}

// NewSource creates a sine generator at the given frequency and amplitude (0-1)
func NewSource(frequency, amplitude float64) *Source {
	return &Source{
		frequency: frequency,
		amplitude: amplitude,
	}
}

// Read fills samples with the next stretch of the tone
func (s *Source) Read(samples []int16) (int, error) {
	s.sampleMu.Lock()
	defer s.sampleMu.Unlock()

	for i := range samples {
		t := float64(s.sampleIndex+uint64(i)) / float64(audio.SampleRate)
		sample := s.amplitude * math.Sin(2*math.Pi*s.frequency*t)
		samples[i] = int16(sample * 32767.0)
	}

	s.sampleIndex += uint64(len(samples))

	return len(samples), nil
}

// Generate returns seconds of tone as raw little-endian PCM bytes
func Generate(frequency, seconds, amplitude float64) []byte {
	n := int(seconds * audio.SampleRate)
	if n < 0 {
		n = 0
	}

	samples := make([]int16, n)
	NewSource(frequency, amplitude).Read(samples)

	data := make([]byte, n*audio.BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return data
}

// Buffer returns seconds of tone as a decoded sample buffer
func Buffer(frequency, seconds, amplitude float64) *audio.SampleBuffer {
	n := int(seconds * audio.SampleRate)
	if n < 0 {
		n = 0
	}

	samples := make([]int16, n)
	NewSource(frequency, amplitude).Read(samples)

	buf := &audio.SampleBuffer{
		Samples:    make([]float32, n),
		SampleRate: audio.SampleRate,
	}
	for i, s := range samples {
		buf.Samples[i] = audio.SampleFromInt16(s)
	}
	return buf
}

// WriteFile writes a raw PCM tone to path
func WriteFile(path string, frequency, seconds, amplitude float64) error {
	if err := os.WriteFile(path, Generate(frequency, seconds, amplitude), 0o644); err != nil {
		return fmt.Errorf("failed to write tone: %w", err)
	}
	return nil
}

// WriteDefaults writes the stock test files into dir and returns their paths
func WriteDefaults(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	paths := make([]string, 0, len(Defaults))
	for _, p := range Defaults {
		path := filepath.Join(dir, p.Name)
		if err := WriteFile(path, p.Frequency, DefaultSeconds, DefaultAmplitude); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
