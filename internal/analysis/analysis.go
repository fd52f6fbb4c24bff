// ABOUTME: Signal statistics for loaded buffers
// ABOUTME: Peak, RMS and dominant frequency via FFT for file info displays
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/pcmscope/pcmscope-go/pkg/audio"
)

// maxWindow caps the FFT length used for frequency estimation
const maxWindow = 16384

// Report summarizes a sample buffer
type Report struct {
	Samples    int     `json:"samples"`
	Duration   float64 `json:"duration"`
	Peak       float32 `json:"peak"`
	RMS        float64 `json:"rms"`
	DominantHz float64 `json:"dominant_hz"`
	Truncated  bool    `json:"truncated"`
}

// Analyze computes a Report for buf
func Analyze(buf *audio.SampleBuffer) Report {
	r := Report{
		Samples:  buf.Len(),
		Duration: buf.Duration(),
	}
	if buf == nil || len(buf.Samples) == 0 {
		return r
	}
	r.Truncated = buf.Truncated

	var sumSquares float64
	for _, s := range buf.Samples {
		if a := float32(math.Abs(float64(s))); a > r.Peak {
			r.Peak = a
		}
		sumSquares += float64(s) * float64(s)
	}
	r.RMS = math.Sqrt(sumSquares / float64(len(buf.Samples)))
	r.DominantHz = DominantFrequency(buf.Samples, buf.SampleRate)

	return r
}

// DominantFrequency estimates the strongest frequency in the leading
// power-of-two window of samples. It returns 0 for fewer than 2 samples.
func DominantFrequency(samples []float32, sampleRate int) float64 {
	n := 1
	for n*2 <= len(samples) && n*2 <= maxWindow {
		n *= 2
	}
	if n < 2 || sampleRate <= 0 {
		return 0
	}

	// Hann window
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		x[i] = float64(samples[i]) * w
	}

	spectrum := fft.FFTReal(x)

	best, bestMag := 0, 0.0
	for k := 1; k <= n/2; k++ {
		if mag := cmplx.Abs(spectrum[k]); mag > bestMag {
			best, bestMag = k, mag
		}
	}

	return float64(best) * float64(sampleRate) / float64(n)
}
