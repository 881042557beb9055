package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocalc/stats"
)

func TestParseSeries(t *testing.T) {
	got, err := stats.ParseSeries(" 1, 2.5 ,-3,1e2")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, -3, 100}, got)
}

func TestParseSeries_Errors(t *testing.T) {
	_, err := stats.ParseSeries("")
	var pe *stats.ParseError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, stats.ErrEmpty)
	assert.Equal(t, -1, pe.Index)

	_, err = stats.ParseSeries("1, two, 3")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "two", pe.Token)
	assert.Equal(t, 1, pe.Index)
	assert.ErrorIs(t, err, stats.ErrNotNumber)

	_, err = stats.ParseSeries("1,,2")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Index)

	_, err = stats.ParseSeries("NaN")
	assert.ErrorIs(t, err, stats.ErrNotNumber)
}

func TestComputeStatistics(t *testing.T) {
	s, err := stats.Describe("1,2,3,4,5,6,7,8,9,10")
	require.NoError(t, err)
	assert.Equal(t, 10, s.Count)
	assert.Equal(t, 5.5, s.Mean)
	assert.Equal(t, 5.5, s.Median)
	assert.InDelta(t, 2.87228, s.Std, 1e-5)
	assert.InDelta(t, 8.25, s.Variance, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 10.0, s.Max)
	assert.InDelta(t, 3.25, s.Q1, 1e-12)
	assert.InDelta(t, 7.75, s.Q3, 1e-12)
	assert.InDelta(t, 9.0, s.Range(), 1e-12)
	assert.InDelta(t, 4.5, s.IQR(), 1e-12)
	assert.InDelta(t, 2.87228/5.5, s.CV(), 1e-5)
}

func TestComputeStatistics_Unsorted(t *testing.T) {
	sample := []float64{9, 1, 5}
	s, err := stats.ComputeStatistics(sample)
	require.NoError(t, err)
	assert.Equal(t, 5.0, s.Median)
	assert.Equal(t, 3.0, s.Q1)
	assert.Equal(t, 7.0, s.Q3)
	assert.Equal(t, []float64{9, 1, 5}, sample, "input must not be reordered")
}

func TestComputeStatistics_Single(t *testing.T) {
	s, err := stats.ComputeStatistics([]float64{4})
	require.NoError(t, err)
	assert.Equal(t, 4.0, s.Median)
	assert.Equal(t, 4.0, s.Q1)
	assert.Equal(t, 0.0, s.Std)
}

func TestComputeStatistics_Empty(t *testing.T) {
	_, err := stats.ComputeStatistics(nil)
	assert.ErrorIs(t, err, stats.ErrEmpty)
}

func TestSummary_CVZeroMean(t *testing.T) {
	s, err := stats.Describe("-1, 1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.CV())
}
