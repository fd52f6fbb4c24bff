// ABOUTME: Tests for waveform summarization
// ABOUTME: Verifies envelope width, chunking and empty-chunk handling
package waveform

import (
	"errors"
	"math"
	"testing"

	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

func bufferOf(samples ...float32) *audio.SampleBuffer {
	return &audio.SampleBuffer{Samples: samples, SampleRate: audio.SampleRate}
}

func TestSummarizeLengthMatchesWidth(t *testing.T) {
	lengths := []int{0, 1, 3, 9, 10, 11, 99, 1000, 16001}
	widths := []int{1, 2, 7, 10, 64, 333, 1024}

	for _, n := range lengths {
		samples := make([]float32, n)
		for i := range samples {
			samples[i] = float32(math.Sin(float64(i) / 7))
		}
		buf := bufferOf(samples...)

		for _, w := range widths {
			env, err := Summarize(buf, w)
			if err != nil {
				t.Fatalf("n=%d width=%d: unexpected error: %v", n, w, err)
			}
			if len(env) != w {
				t.Errorf("n=%d width=%d: expected %d pairs, got %d", n, w, w, len(env))
			}
		}
	}
}

func TestSummarizeEmptyBuffer(t *testing.T) {
	env, err := Summarize(bufferOf(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env) != 10 {
		t.Fatalf("expected 10 pairs, got %d", len(env))
	}
	for i, p := range env {
		if p.Min != 0 || p.Max != 0 {
			t.Errorf("column %d: expected (0, 0), got (%f, %f)", i, p.Min, p.Max)
		}
	}

	env, err = Summarize(nil, 4)
	if err != nil {
		t.Fatalf("unexpected error for nil buffer: %v", err)
	}
	if len(env) != 4 {
		t.Errorf("expected 4 pairs, got %d", len(env))
	}
}

func TestSummarizeInvalidWidth(t *testing.T) {
	for _, w := range []int{0, -1, -100} {
		env, err := Summarize(bufferOf(0.1, 0.2), w)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("width %d: expected ErrInvalidArgument, got %v", w, err)
		}
		if env != nil {
			t.Errorf("width %d: expected nil envelope, got %v", w, env)
		}
	}
}

func TestSummarizeChunks(t *testing.T) {
	// 7 samples, width 3 -> chunk size 3: [0,3) [3,6) [6,7)
	buf := bufferOf(0.1, -0.4, 0.3, 0.9, 0.2, -0.1, -0.7)
	env, err := Summarize(buf, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := Envelope{
		{Min: -0.4, Max: 0.3},
		{Min: -0.1, Max: 0.9},
		{Min: -0.7, Max: -0.7},
	}
	for i, want := range expected {
		if env[i] != want {
			t.Errorf("column %d: expected %+v, got %+v", i, want, env[i])
		}
	}
}

func TestSummarizeShortBufferTail(t *testing.T) {
	// 3 samples across 5 columns -> chunk size 1, last two columns empty
	buf := bufferOf(0.5, -0.5, 0.25)
	env, err := Summarize(buf, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := Envelope{
		{Min: 0.5, Max: 0.5},
		{Min: -0.5, Max: -0.5},
		{Min: 0.25, Max: 0.25},
		{},
		{},
	}
	for i, want := range expected {
		if env[i] != want {
			t.Errorf("column %d: expected %+v, got %+v", i, want, env[i])
		}
	}
}

func TestSummarizeUnevenTail(t *testing.T) {
	// 10 samples, width 4 -> chunk size 3: last chunk is [9,10)
	samples := make([]float32, 10)
	for i := range samples {
		samples[i] = float32(i) / 10
	}
	env, err := Summarize(bufferOf(samples...), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env[3].Min != 0.9 || env[3].Max != 0.9 {
		t.Errorf("expected last column (0.9, 0.9), got (%f, %f)", env[3].Min, env[3].Max)
	}
}

func TestSummarizeDoesNotAliasInput(t *testing.T) {
	buf := bufferOf(0.2, -0.2)
	env, _ := Summarize(buf, 1)
	buf.Samples[0] = 0.9
	if env[0].Max != 0.2 {
		t.Errorf("expected envelope to be independent of buffer, got max %f", env[0].Max)
	}
}

func TestEnvelopePeak(t *testing.T) {
	env := Envelope{{Min: -0.3, Max: 0.2}, {Min: -0.8, Max: 0.5}, {}}
	if peak := env.Peak(); peak != 0.8 {
		t.Errorf("expected peak 0.8, got %f", peak)
	}
	if env.Width() != 3 {
		t.Errorf("expected width 3, got %d", env.Width())
	}
}
