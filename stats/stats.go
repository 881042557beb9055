// Package stats parses numeric series, summarizes them and fits
// polynomials to paired samples.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmpty     = errors.New("no data")
	ErrNotNumber = errors.New("not a number")
)

// ParseError reports the first token of a series that is not a finite
// number, or an empty series (Index -1).
type ParseError struct {
	Token string
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return "parse series: " + e.Err.Error()
	}
	return fmt.Sprintf("parse series: value %d %q: %v", e.Index+1, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseSeries splits text on commas and parses every trimmed token as a
// float.
func ParseSeries(text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Index: -1, Err: ErrEmpty}
	}
	parts := strings.Split(text, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		tok := strings.TrimSpace(p)
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ParseError{Token: tok, Index: i, Err: ErrNotNumber}
		}
		out[i] = v
	}
	return out, nil
}

// Summary holds descriptive statistics of a sample. Std and Variance are
// population values; Q1, Median and Q3 interpolate linearly between order
// statistics.
type Summary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Std      float64 `json:"std"`
	Variance float64 `json:"var"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Q1       float64 `json:"q1"`
	Q3       float64 `json:"q3"`
}

// CV is the coefficient of variation, 0 when the mean is 0.
func (s Summary) CV() float64 {
	if s.Mean == 0 {
		return 0
	}
	return s.Std / s.Mean
}

func (s Summary) Range() float64 { return s.Max - s.Min }
func (s Summary) IQR() float64   { return s.Q3 - s.Q1 }

// ComputeStatistics summarizes sample, which is not modified.
func ComputeStatistics(sample []float64) (Summary, error) {
	if len(sample) == 0 {
		return Summary{}, &ParseError{Index: -1, Err: ErrEmpty}
	}
	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	mean, variance := stat.PopMeanVariance(sample, nil)
	return Summary{
		Count:    len(sample),
		Mean:     mean,
		Median:   percentile(sorted, 0.5),
		Std:      math.Sqrt(variance),
		Variance: variance,
		Min:      floats.Min(sample),
		Max:      floats.Max(sample),
		Q1:       percentile(sorted, 0.25),
		Q3:       percentile(sorted, 0.75),
	}, nil
}

// Describe parses text and summarizes it.
func Describe(text string) (Summary, error) {
	sample, err := ParseSeries(text)
	if err != nil {
		return Summary{}, err
	}
	return ComputeStatistics(sample)
}

// percentile interpolates at rank p*(n-1) of sorted data.
func percentile(sorted []float64, p float64) float64 {
	h := p * float64(len(sorted)-1)
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}
