package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram(t *testing.T) {
	h, err := Histogram([]float64{0, 0.5, 1, 2.9, 3}, 1)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 2, 3}, h.Edges)
	assert.Equal(t, []int{2, 1, 2}, h.Counts)
	assert.Equal(t, 5, h.Total())
}

func TestHistogramSingleValue(t *testing.T) {
	h, err := Histogram([]float64{4, 4}, 0.5)
	require.NoError(t, err)

	assert.Equal(t, []float64{4, 4.5}, h.Edges)
	assert.Equal(t, []int{2}, h.Counts)
}

func TestHistogramErrors(t *testing.T) {
	_, err := Histogram([]float64{1}, 0)
	assert.ErrorIs(t, err, ErrBinWidth)

	_, err = Histogram([]float64{1}, math.Inf(1))
	assert.ErrorIs(t, err, ErrBinWidth)

	h, err := Histogram(nil, 1)
	assert.NoError(t, err)
	assert.Zero(t, h.Total())
	assert.Empty(t, h.Edges)

	_, err = Histogram([]float64{1, math.NaN()}, 1)
	assert.Error(t, err)
}

func TestHistogramTooManyBins(t *testing.T) {
	_, err := Histogram([]float64{0, 1e15}, 1e-3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBinWidth)

	_, err = Histogram([]float64{0, MaxBins}, 1)
	assert.ErrorIs(t, err, ErrBinWidth)

	h, err := Histogram([]float64{0, 1e5}, 1)
	require.NoError(t, err)
	assert.Len(t, h.Edges, 100001)
	assert.Len(t, h.Counts, 100000)
	assert.Equal(t, 2, h.Total())
	assert.Equal(t, 1, h.Counts[len(h.Counts)-1])
}

func TestAcquisitions(t *testing.T) {
	times := []float64{0.35, 0.01, 0.02, 0.30, 0.61}
	got := Acquisitions(times, DefaultGap, 0.05)

	require.Len(t, got, 3)
	assert.InDelta(t, 0.02, got[0].End, 1e-12)
	assert.InDelta(t, -0.03, got[0].Start, 1e-12)
	assert.InDelta(t, 0.35, got[1].End, 1e-12)
	assert.InDelta(t, 0.61, got[2].End, 1e-12)
	assert.True(t, got[1].Contains(0.31))
	assert.False(t, got[1].Contains(0.36))

	assert.Nil(t, Acquisitions(nil, DefaultGap, 0.05))
}

func TestEfficiency(t *testing.T) {
	assert.Equal(t, 50.0, Efficiency(2, 4))
	assert.Equal(t, 0.0, Efficiency(3, 0))
}
