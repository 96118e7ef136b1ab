package timematch

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareFirstMatchWins(t *testing.T) {
	events := []float64{1.0, 1.5}
	refs := []float64{1.0004, 2.0}

	// 1.0 and 1.0004 are 4e-4 apart: outside the default window...
	got, err := Compare(events, refs, DefaultTolerance)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())

	// ...and inside a 5e-4 one. 1.5 never finds a partner.
	got, err = Compare(events, refs, 5e-4)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, got.Events)
	assert.Equal(t, []int{0}, got.References)
}

func TestCompareTiesUseScanOrder(t *testing.T) {
	events := []float64{10}
	refs := []float64{10.5, 9.9, 10.0}

	got, err := Compare(events, refs, 1)
	require.NoError(t, err)
	// 10.0 is closer but 10.5 comes first in scan order.
	assert.Equal(t, []int{0}, got.References)
}

func TestCompareReferenceReused(t *testing.T) {
	events := []float64{1.0, 1.05}
	refs := []float64{1.02}

	got, err := Compare(events, refs, 0.1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got.Events)
	assert.Equal(t, []int{0, 0}, got.References)

	u := Unique(got)
	assert.Equal(t, []int{0}, u.Events)
	assert.Equal(t, []int{0}, u.References)
}

func TestCompareEmpty(t *testing.T) {
	got, err := Compare(nil, []float64{1, 2}, 1)
	require.NoError(t, err)
	assert.Zero(t, got.Len())

	got, err = Compare([]float64{1, 2}, nil, 1)
	require.NoError(t, err)
	assert.Zero(t, got.Len())
}

func TestCompareRejectsBadInput(t *testing.T) {
	for _, tol := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Compare([]float64{1}, []float64{1}, tol)
		assert.ErrorIs(t, err, ErrInvalidTolerance, "tol=%v", tol)
	}

	_, err := Compare([]float64{math.NaN()}, []float64{1}, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Compare([]float64{1}, []float64{math.Inf(-1)}, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestComparePairsWithinTolerance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		events := randomTimes(rng, 40)
		refs := randomTimes(rng, 60)
		tol := 0.001 + rng.Float64()*0.02

		got, err := Compare(events, refs, tol)
		require.NoError(t, err)
		require.Equal(t, len(got.Events), len(got.References))
		for k := range got.Events {
			d := math.Abs(events[got.Events[k]] - refs[got.References[k]])
			assert.Less(t, d, tol)
		}
	}
}

func TestIndexMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 100; round++ {
		events := randomTimes(rng, 1+rng.Intn(50))
		refs := randomTimes(rng, rng.Intn(80))
		// duplicate a few references so ties by index are exercised
		if len(refs) > 3 {
			refs = append(refs, refs[1], refs[0])
		}
		tol := 0.0005 + rng.Float64()*0.05

		want, err := Compare(events, refs, tol)
		require.NoError(t, err)

		idx, err := NewIndex(refs, tol)
		require.NoError(t, err)
		assert.Equal(t, len(refs), idx.Len())

		got, err := idx.Compare(events)
		require.NoError(t, err)
		assert.Equal(t, want, got, "round %d", round)
	}
}

func TestIndexFirst(t *testing.T) {
	idx, err := NewIndex([]float64{5.0, 3.0, 3.05, 9.0}, 0.1)
	require.NoError(t, err)

	j, ok := idx.First(3.02)
	assert.True(t, ok)
	assert.Equal(t, 1, j)

	_, ok = idx.First(7)
	assert.False(t, ok)

	_, err = NewIndex(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidTolerance)
}

func TestSelect(t *testing.T) {
	vals := []string{"a", "b", "c"}
	assert.Equal(t, []string{"c", "a"}, Select(vals, []int{2, 0}))
	assert.Empty(t, Select(vals, nil))
}

func randomTimes(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64() * 0.5
	}
	return out
}
