package vad

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// DefaultFrameSize is the analysis window used when none is given.
const DefaultFrameSize = 1024

// Detector tracks the magnitude spectrum of consecutive frames.
type Detector struct {
	frameSize    int
	lastSpectrum []float64
}

func New(frameSize int) *Detector {
	if frameSize <= 0 {
		frameSize = DefaultFrameSize
	}

	return &Detector{frameSize: frameSize}
}

// Flux returns the spectral flux of frame relative to the previous frame:
// the mean positive increase of the magnitude spectrum. Samples are scaled
// to [-1, 1] and the frame is zero padded or truncated to the frame size.
func (d *Detector) Flux(frame []int16) float64 {
	input := make([]float64, d.frameSize)
	for i := 0; i < len(frame) && i < d.frameSize; i++ {
		input[i] = float64(frame[i]) / math.MaxInt16
	}

	return d.flux(input)
}

func (d *Detector) flux(input []float64) float64 {
	coeffs := fft.FFTReal(input)

	// only the first half of a real signal's spectrum is unique
	bins := len(coeffs) / 2
	spectrum := make([]float64, bins)

	for i := 0; i < bins; i++ {
		spectrum[i] = cmplx.Abs(coeffs[i])
	}

	if d.lastSpectrum == nil {
		d.lastSpectrum = make([]float64, bins)
	}

	var sum float64

	for i, m := range spectrum {
		if diff := m - d.lastSpectrum[i]; diff > 0 {
			sum += diff
		}
	}

	d.lastSpectrum = spectrum

	return sum / float64(bins)
}

// Reset forgets the previous frame.
func (d *Detector) Reset() {
	d.lastSpectrum = nil
}

// ContainsSpeech reports whether any frame of samples has a spectral flux of
// at least threshold.
func ContainsSpeech(samples []int, frameSize int, threshold float64) bool {
	d := New(frameSize)
	frame := make([]int16, 0, d.frameSize)

	for start := 0; start < len(samples); start += d.frameSize {
		frame = frame[:0]

		for i := start; i < len(samples) && i < start+d.frameSize; i++ {
			frame = append(frame, clamp16(samples[i]))
		}

		if d.Flux(frame) >= threshold {
			return true
		}
	}

	return false
}

func clamp16(s int) int16 {
	if s > math.MaxInt16 {
		return math.MaxInt16
	}

	if s < math.MinInt16 {
		return math.MinInt16
	}

	return int16(s)
}
