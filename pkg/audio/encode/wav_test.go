// ABOUTME: Unit tests for WAV encoder
// ABOUTME: Verifies RIFF header layout and data chunk contents
package encode

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/go-audio/wav"

	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

func TestWAVHeader(t *testing.T) {
	out, err := EncodeWAV(make([]byte, 32000))
	if err != nil {
		t.Fatalf("EncodeWAV() failed: %v", err)
	}
	if len(out) != WAVHeaderSize+32000 {
		t.Fatalf("expected %d bytes, got %d", WAVHeaderSize+32000, len(out))
	}
	h := out[:WAVHeaderSize]

	checks := []struct {
		name     string
		got      uint32
		expected uint32
	}{
		{"riff size", binary.LittleEndian.Uint32(h[4:8]), 36 + 32000},
		{"fmt size", binary.LittleEndian.Uint32(h[16:20]), 16},
		{"audio format", uint32(binary.LittleEndian.Uint16(h[20:22])), 1},
		{"channels", uint32(binary.LittleEndian.Uint16(h[22:24])), 1},
		{"sample rate", binary.LittleEndian.Uint32(h[24:28]), 16000},
		{"byte rate", binary.LittleEndian.Uint32(h[28:32]), 32000},
		{"block align", uint32(binary.LittleEndian.Uint16(h[32:34])), 2},
		{"bits", uint32(binary.LittleEndian.Uint16(h[34:36])), 16},
		{"data size", binary.LittleEndian.Uint32(h[40:44]), 32000},
	}
	for _, c := range checks {
		if c.got != c.expected {
			t.Errorf("%s: expected %d, got %d", c.name, c.expected, c.got)
		}
	}

	for _, tag := range []struct {
		offset int
		value  string
	}{{0, "RIFF"}, {8, "WAVE"}, {12, "fmt "}, {36, "data"}} {
		if got := string(h[tag.offset : tag.offset+4]); got != tag.value {
			t.Errorf("expected %q at offset %d, got %q", tag.value, tag.offset, got)
		}
	}
}

func TestEncodeWAV(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5}
	wav, err := EncodeWAV(raw)
	if err != nil {
		t.Fatalf("EncodeWAV() failed: %v", err)
	}

	if len(wav) != WAVHeaderSize+4 {
		t.Fatalf("expected %d bytes, got %d", WAVHeaderSize+4, len(wav))
	}
	if !bytes.Equal(wav[WAVHeaderSize:], raw[:4]) {
		t.Errorf("expected data %v, got %v", raw[:4], wav[WAVHeaderSize:])
	}
	if size := binary.LittleEndian.Uint32(wav[40:44]); size != 4 {
		t.Errorf("expected data size 4, got %d", size)
	}
}

func TestWAVEncoder(t *testing.T) {
	encoder, err := NewWAV(audio.PCM16Mono)
	if err != nil {
		t.Fatalf("NewWAV() failed: %v", err)
	}
	defer encoder.Close()

	out, err := encoder.Encode([]float32{0, -1.0})
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if len(out) != WAVHeaderSize+4 {
		t.Fatalf("expected %d bytes, got %d", WAVHeaderSize+4, len(out))
	}
	if got := int16(binary.LittleEndian.Uint16(out[WAVHeaderSize+2:])); got != -32768 {
		t.Errorf("expected -32768, got %d", got)
	}
}

func TestEncodeWAVEmpty(t *testing.T) {
	out, err := EncodeWAV(nil)
	if err != nil {
		t.Fatalf("EncodeWAV() failed: %v", err)
	}
	if len(out) != WAVHeaderSize {
		t.Fatalf("expected bare %d byte header, got %d", WAVHeaderSize, len(out))
	}
	if size := binary.LittleEndian.Uint32(out[4:8]); size != 36 {
		t.Errorf("expected riff size 36, got %d", size)
	}
}

func TestEncodeWAVReadsBack(t *testing.T) {
	raw := make([]byte, 3200)
	binary.LittleEndian.PutUint16(raw[2:], uint16(0x1234))
	out, err := EncodeWAV(raw)
	if err != nil {
		t.Fatalf("EncodeWAV() failed: %v", err)
	}

	dec := wav.NewDecoder(bytes.NewReader(out))
	if !dec.IsValidFile() {
		t.Fatal("expected a valid WAV file")
	}
	if dec.SampleRate != 16000 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("expected 16000 Hz mono 16-bit, got %d Hz %d ch %d-bit", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
}

func TestSeekBuffer(t *testing.T) {
	s := &seekBuffer{}
	s.Write([]byte("abcdef"))
	if _, err := s.Seek(2, 0); err != nil {
		t.Fatal(err)
	}
	s.Write([]byte("XY"))
	if pos, _ := s.Seek(0, 2); pos != 6 {
		t.Errorf("expected end at 6, got %d", pos)
	}
	if string(s.buf) != "abXYef" {
		t.Errorf("expected abXYef, got %s", s.buf)
	}
	if _, err := s.Seek(-1, 0); err == nil {
		t.Error("expected error for negative seek")
	}
}
