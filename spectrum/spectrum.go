// Package spectrum synthesizes a noisy sine wave and computes its
// single-sided amplitude spectrum.
package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/dsp/fourier"
)

// MaxSamples caps SampleRate*Duration.
const MaxSamples = 1 << 20

var (
	ErrTooFewSamples  = errors.New("need at least 2 samples")
	ErrTooManySamples = fmt.Errorf("more than %d samples", MaxSamples)
)

// Error reports invalid parameters.
type Error struct {
	Params Params
	Err    error
}

func (e *Error) Error() string { return "spectrum: " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Params describes the test signal sin(2*pi*Frequency*t) plus Gaussian
// noise scaled by NoiseLevel. Seed makes the noise reproducible.
type Params struct {
	Frequency  float64 `json:"frequency" validate:"gte=0"`
	Duration   float64 `json:"duration" validate:"gt=0"`
	SampleRate float64 `json:"sample_rate" validate:"gt=0"`
	NoiseLevel float64 `json:"noise_level" validate:"gte=0"`
	Seed       uint64  `json:"seed"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Spectrum holds the sampled signal and its amplitude spectrum for bins
// 0 <= k < n/2.
type Spectrum struct {
	Time       []float64 `json:"time"`
	Signal     []float64 `json:"signal"`
	Freqs      []float64 `json:"freqs"`
	Amplitudes []float64 `json:"amplitudes"`
}

// Compute samples the signal at t_i = i/SampleRate and transforms it.
func Compute(p Params) (*Spectrum, error) {
	if err := validate.Struct(p); err != nil {
		return nil, &Error{Params: p, Err: err}
	}
	total := p.SampleRate * p.Duration
	if math.IsInf(total, 0) || total > MaxSamples {
		return nil, &Error{Params: p, Err: ErrTooManySamples}
	}
	n := int(total)
	if n < 2 {
		return nil, &Error{Params: p, Err: ErrTooFewSamples}
	}

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	s := &Spectrum{Time: make([]float64, n), Signal: make([]float64, n)}
	for i := range s.Time {
		t := float64(i) / p.SampleRate
		s.Time[i] = t
		s.Signal[i] = math.Sin(2*math.Pi*p.Frequency*t) + p.NoiseLevel*rng.NormFloat64()
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, s.Signal)
	half := n / 2
	s.Freqs = make([]float64, half)
	s.Amplitudes = make([]float64, half)
	for k := 0; k < half; k++ {
		s.Freqs[k] = float64(k) * p.SampleRate / float64(n)
		s.Amplitudes[k] = 2 / float64(n) * cmplx.Abs(coeffs[k])
	}
	return s, nil
}

// Peak returns the bin with the largest amplitude.
func (s *Spectrum) Peak() (bin int, freq, amplitude float64) {
	for k, a := range s.Amplitudes {
		if a > amplitude {
			bin, freq, amplitude = k, s.Freqs[k], a
		}
	}
	return bin, freq, amplitude
}
