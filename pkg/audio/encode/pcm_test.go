// ABOUTME: Unit tests for PCM encoder
// ABOUTME: Tests 16-bit quantization and clipping
package encode

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

func TestNewPCM(t *testing.T) {
	tests := []struct {
		name        string
		format      audio.Format
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid 16-bit PCM",
			format:  audio.PCM16Mono,
			wantErr: false,
		},
		{
			name:        "unsupported bit depth",
			format:      audio.Format{SampleRate: 16000, Channels: 1, BitDepth: 24},
			wantErr:     true,
			errContains: "unsupported bit depth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoder, err := NewPCM(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewPCM() expected error, got nil")
				} else if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewPCM() error = %v, want error containing %v", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("NewPCM() unexpected error = %v", err)
			}
			if encoder == nil {
				t.Errorf("NewPCM() returned nil encoder")
			}
		})
	}
}

func TestEncodePCM16(t *testing.T) {
	samples := []float32{
		0,    // silence
		-1.0, // full scale negative
		0.5,
		-0.5,
		1.5,  // clips
		-1.5, // clips
	}
	expected := []int16{0, -32768, 16384, -16384, 32767, -32768}

	output := EncodePCM16(samples)
	if len(output) != len(samples)*2 {
		t.Fatalf("expected %d bytes, got %d", len(samples)*2, len(output))
	}

	for i, want := range expected {
		actual := int16(binary.LittleEndian.Uint16(output[i*2:]))
		if actual != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, actual)
		}
	}
}

func TestPCMEncoder_Encode(t *testing.T) {
	encoder, err := NewPCM(audio.PCM16Mono)
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}
	defer encoder.Close()

	output, err := encoder.Encode([]float32{0.25})
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if got := int16(binary.LittleEndian.Uint16(output)); got != 8192 {
		t.Errorf("expected 8192, got %d", got)
	}
}
