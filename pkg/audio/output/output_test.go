// ABOUTME: Audio output backend tests
// ABOUTME: Verifies run completion semantics, streaming reader and volume control
package output

import (
	"encoding/binary"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

func TestBackendsImplementInterface(t *testing.T) {
	var _ Backend = (*Oto)(nil)
	var _ Backend = (*PortAudio)(nil)
	var _ Backend = (*Null)(nil)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"", false},
		{BackendOto, false},
		{BackendPortAudio, false},
		{BackendNull, false},
		{"alsa", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out == nil {
				t.Fatal("expected backend, got nil")
			}
		})
	}
}

// samplesOf returns a buffer of n samples at a constant level
func samplesOf(n int, level float32) *audio.SampleBuffer {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = level
	}
	return &audio.SampleBuffer{Samples: samples, SampleRate: audio.SampleRate}
}

type endRecorder struct {
	mu    sync.Mutex
	calls []uint64
	last  float64
	ch    chan struct{}
}

func newEndRecorder() *endRecorder {
	return &endRecorder{ch: make(chan struct{}, 10)}
}

func (e *endRecorder) onEnded(gen uint64, elapsed float64) {
	e.mu.Lock()
	e.calls = append(e.calls, gen)
	e.last = elapsed
	e.mu.Unlock()
	e.ch <- struct{}{}
}

func (e *endRecorder) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func TestNullReportsEnd(t *testing.T) {
	out := NewNullWithSpeed(10)
	if err := out.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer out.Close()

	rec := newEndRecorder()
	// 0.5s of audio at 10x speed
	if err := out.Start(samplesOf(8000, 0.1), 0, 7, rec.onEnded); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case <-rec.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for end of run")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) != 1 || rec.calls[0] != 7 {
		t.Errorf("expected one call with generation 7, got %v", rec.calls)
	}
	if rec.last != 0.5 {
		t.Errorf("expected elapsed 0.5, got %f", rec.last)
	}
}

func TestNullStartFromOffset(t *testing.T) {
	out := NewNullWithSpeed(10)
	rec := newEndRecorder()

	// 1s buffer started at 0.75s leaves 0.25s
	if err := out.Start(samplesOf(16000, 0), 0.75, 1, rec.onEnded); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case <-rec.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for end of run")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.last != 0.25 {
		t.Errorf("expected elapsed 0.25, got %f", rec.last)
	}
}

func TestNullStopSuppressesEnd(t *testing.T) {
	out := NewNullWithSpeed(10)
	rec := newEndRecorder()

	if err := out.Start(samplesOf(1600, 0), 0, 1, rec.onEnded); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := out.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Errorf("expected no end callback after stop, got %d", n)
	}
}

func TestNullRestartReplacesRun(t *testing.T) {
	out := NewNullWithSpeed(10)
	rec := newEndRecorder()

	if err := out.Start(samplesOf(1600, 0), 0, 1, rec.onEnded); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := out.Start(samplesOf(1600, 0), 0, 2, rec.onEnded); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case <-rec.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for end of run")
	}
	time.Sleep(50 * time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) != 1 || rec.calls[0] != 2 {
		t.Errorf("expected only generation 2 to end, got %v", rec.calls)
	}
}

func TestRunFinishOnce(t *testing.T) {
	calls := 0
	r := newRun(3, func(gen uint64, elapsed float64) { calls++ })

	r.finish(1)
	r.finish(1)
	r.abort()

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}

	aborted := newRun(4, func(gen uint64, elapsed float64) { calls++ })
	aborted.abort()
	aborted.finish(1)
	if calls != 1 {
		t.Errorf("expected aborted run not to report, got %d calls", calls)
	}

	select {
	case <-aborted.done():
	default:
		t.Error("expected aborted run to be done")
	}
}

func TestSampleReaderRead(t *testing.T) {
	gain := newVolumeControl()
	buf := &audio.SampleBuffer{Samples: []float32{0.5, -0.5, -1.0}, SampleRate: audio.SampleRate}
	r := newSampleReader(buf, 0, gain)

	p := make([]byte, 4)
	n, err := r.Read(p)
	if err != nil || n != 4 {
		t.Fatalf("expected 4 bytes, got %d (%v)", n, err)
	}
	if s := int16(binary.LittleEndian.Uint16(p[0:])); s != 16384 {
		t.Errorf("expected 16384, got %d", s)
	}
	if s := int16(binary.LittleEndian.Uint16(p[2:])); s != -16384 {
		t.Errorf("expected -16384, got %d", s)
	}

	n, err = r.Read(p)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 bytes, got %d (%v)", n, err)
	}
	if !r.Exhausted() {
		t.Error("expected reader to be exhausted")
	}

	if _, err := r.Read(p); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
	if c := r.Consumed(); c != 3.0/audio.SampleRate {
		t.Errorf("expected %f seconds consumed, got %f", 3.0/audio.SampleRate, c)
	}
}

func TestSampleReaderReadInt16(t *testing.T) {
	gain := newVolumeControl()
	gain.set(50)
	buf := &audio.SampleBuffer{Samples: []float32{0.5, 0.5}, SampleRate: audio.SampleRate}
	r := newSampleReader(buf, 0, gain)

	out := []int16{9, 9, 9, 9}
	if n := r.ReadInt16(out); n != 2 {
		t.Fatalf("expected 2 samples, got %d", n)
	}
	expected := []int16{8192, 8192, 0, 0}
	for i, want := range expected {
		if out[i] != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, out[i])
		}
	}
	if n := r.ReadInt16(out); n != 0 {
		t.Errorf("expected 0 samples after end, got %d", n)
	}
}

func TestSampleReaderOffset(t *testing.T) {
	buf := samplesOf(16000, 0)
	r := newSampleReader(buf, 0.25, newVolumeControl())
	if rem := r.Remaining(); rem != 0.75 {
		t.Errorf("expected 0.75s remaining, got %f", rem)
	}

	r = newSampleReader(buf, 5, newVolumeControl())
	if !r.Exhausted() {
		t.Error("expected reader past the end to be exhausted")
	}

	r = newSampleReader(nil, 0, newVolumeControl())
	if !r.Exhausted() {
		t.Error("expected nil buffer reader to be exhausted")
	}
}

func TestVolumeControl(t *testing.T) {
	tests := []struct {
		name     string
		volume   int
		muted    bool
		expected float32
	}{
		{"full", 100, false, 1.0},
		{"half", 50, false, 0.5},
		{"silent", 0, false, 0.0},
		{"muted", 100, true, 0.0},
		{"clamped high", 150, false, 1.0},
		{"clamped low", -20, false, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewNull()
			out.SetVolume(tt.volume)
			out.SetMuted(tt.muted)

			n := out.(*Null)
			if got := n.gain.multiplier(); got != tt.expected {
				t.Errorf("expected multiplier %f, got %f", tt.expected, got)
			}
			if out.IsMuted() != tt.muted {
				t.Errorf("expected muted=%v, got %v", tt.muted, out.IsMuted())
			}
		})
	}
}

func TestOtoStartRequiresOpen(t *testing.T) {
	out := NewOto()
	if err := out.Start(samplesOf(10, 0), 0, 1, nil); err == nil {
		t.Error("expected error starting unopened output")
	}
	if err := out.Stop(); err != nil {
		t.Errorf("unexpected stop error: %v", err)
	}
}
