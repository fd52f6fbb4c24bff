// ABOUTME: WAV container encoder
// ABOUTME: Wraps PCM data in a RIFF/WAVE file using go-audio/wav
package encode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

// WAVHeaderSize is the size of a canonical PCM WAV header
const WAVHeaderSize = 44

const wavFormatPCM = 1

// WriteWAV writes 16-bit samples as a complete WAV file to w
func WriteWAV(w io.WriteSeeker, samples []int, format audio.Format) error {
	enc := wav.NewEncoder(w, format.SampleRate, format.BitDepth, format.Channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
		Data:           samples,
		SourceBitDepth: format.BitDepth,
	}
	// Write always runs so an empty file still gets its header.
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// EncodeWAV wraps raw 16 kHz mono PCM in a WAV container.
// A trailing odd byte is dropped so the data chunk holds whole frames.
func EncodeWAV(raw []byte) ([]byte, error) {
	n := len(raw) / audio.BytesPerSample
	samples := make([]int, n)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(raw[i*2:])))
	}

	out := &seekBuffer{buf: make([]byte, 0, WAVHeaderSize+n*audio.BytesPerSample)}
	if err := WriteWAV(out, samples, audio.PCM16Mono); err != nil {
		return nil, err
	}
	return out.buf, nil
}

// WAVEncoder encodes samples as a complete WAV file
type WAVEncoder struct {
	format audio.Format
}

// NewWAV creates a new WAV encoder
func NewWAV(format audio.Format) (Encoder, error) {
	if _, err := NewPCM(format); err != nil {
		return nil, err
	}
	return &WAVEncoder{format: format}, nil
}

// Encode converts samples to a WAV file
func (e *WAVEncoder) Encode(samples []float32) ([]byte, error) {
	ints := make([]int, len(samples))
	for i, s := range samples {
		ints[i] = int(audio.SampleToInt16(s))
	}
	out := &seekBuffer{}
	if err := WriteWAV(out, ints, e.format); err != nil {
		return nil, err
	}
	return out.buf, nil
}

// Close releases resources
func (e *WAVEncoder) Close() error {
	return nil
}

var errNegativeSeek = errors.New("negative seek position")

// seekBuffer is an in-memory io.WriteSeeker; the wav encoder seeks back
// to patch chunk sizes on Close.
type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	if end := s.pos + len(p); end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}
	copy(s.buf[s.pos:], p)
	s.pos += len(p)
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(s.pos)
	case io.SeekEnd:
		base = int64(len(s.buf))
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	next := base + offset
	if next < 0 {
		return 0, errNegativeSeek
	}
	s.pos = int(next)
	return next, nil
}
