package stablematch

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	exampleProposers = []float64{5, 0, 5, 10}
	exampleAcceptors = []float64{3, 6}
)

func TestMatchInclusiveExample(t *testing.T) {
	res, err := Match(exampleProposers, exampleAcceptors, DefaultOptions(2))
	require.NoError(t, err)

	assert.Equal(t, []Pair{{Proposer: 0, Acceptor: 1}, {Proposer: 2, Acceptor: 0}}, res.Pairs())
	assert.Equal(t, []int{1, 3}, res.UnmatchedProposers())
	assert.Empty(t, res.UnmatchedAcceptors())
	assert.Equal(t, Matched(1), res.ProposerState(0))
	assert.Equal(t, Unmatched, res.ProposerState(1))
	assert.Equal(t, 3, res.Proposals)
	assert.False(t, res.Swapped)
	assert.NoError(t, res.Verify())
}

func TestMatchExclusiveExample(t *testing.T) {
	opts := DefaultOptions(2)
	opts.Bound = Exclusive

	res, err := Match(exampleProposers, exampleAcceptors, opts)
	require.NoError(t, err)

	// diff 2 to acceptor 3 is no longer acceptable, so the second 5 loses
	// acceptor 6 to the first one and has nowhere left to go.
	assert.Equal(t, []Pair{{Proposer: 0, Acceptor: 1}}, res.Pairs())
	assert.Equal(t, []int{1, 2, 3}, res.UnmatchedProposers())
	assert.Equal(t, []int{0}, res.UnmatchedAcceptors())
	assert.NoError(t, res.Verify())
}

func TestMatchSmallerProposes(t *testing.T) {
	opts := DefaultOptions(2)
	opts.Orientation = SmallerProposes

	res, err := Match(exampleProposers, exampleAcceptors, opts)
	require.NoError(t, err)

	assert.True(t, res.Swapped)
	assert.Equal(t, []Pair{{Proposer: 0, Acceptor: 1}, {Proposer: 2, Acceptor: 0}}, res.Pairs())
	assert.NoError(t, res.Verify())
}

func TestMatchRequireProposerMinority(t *testing.T) {
	opts := DefaultOptions(2)
	opts.RequireProposerMinority = true

	_, err := Match(exampleProposers, exampleAcceptors, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)

	var iie *InvalidInputError
	require.True(t, errors.As(err, &iie))
	assert.Contains(t, iie.Reason, "4 proposers exceed 2 acceptors")

	_, err = Match(exampleAcceptors, exampleProposers, opts)
	assert.NoError(t, err)
}

func TestMatchRejectsBadValues(t *testing.T) {
	_, err := Match([]float64{1, math.NaN()}, []float64{1}, DefaultOptions(1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Match([]float64{1}, []float64{math.Inf(1)}, DefaultOptions(1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Match([]float64{1}, []float64{1}, DefaultOptions(-1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Match([]float64{1}, []float64{1}, DefaultOptions(0))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewPreferences([]float64{1}, []float64{1}, 0, Exclusive)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMatchEmpty(t *testing.T) {
	res, err := Match(nil, []float64{1, 2}, DefaultOptions(1))
	require.NoError(t, err)
	assert.Zero(t, res.Len())
	assert.Equal(t, []int{0, 1}, res.UnmatchedAcceptors())

	res, err = Match([]float64{1}, nil, DefaultOptions(1))
	require.NoError(t, err)
	assert.Equal(t, []int{0}, res.UnmatchedProposers())
}

func TestMatchDisplacement(t *testing.T) {
	// Proposer 0 grabs acceptor 0 first, then proposer 1 (a closer fit for
	// acceptor 0) displaces it and proposer 0 falls back to acceptor 1.
	res, err := Match([]float64{1.4, 1.1}, []float64{1.0, 2.0}, DefaultOptions(1))
	require.NoError(t, err)

	assert.Equal(t, []Pair{{Proposer: 0, Acceptor: 1}, {Proposer: 1, Acceptor: 0}}, res.Pairs())
	assert.Equal(t, 3, res.Proposals)
	assert.NoError(t, res.Verify())
}

func TestMatchRandomIsValidStableAndDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 200; round++ {
		proposers := randomValues(rng, rng.Intn(12))
		acceptors := randomValues(rng, rng.Intn(12))
		opts := Options{
			Tolerance:   0.1 + rng.Float64()*3,
			Bound:       Bound(rng.Intn(2)),
			Orientation: Orientation(rng.Intn(2)),
		}

		res, err := Match(proposers, acceptors, opts)
		require.NoError(t, err)
		require.NoError(t, res.Verify(), "round %d", round)

		seenP := map[int]bool{}
		seenA := map[int]bool{}
		for _, pr := range res.Pairs() {
			assert.False(t, seenP[pr.Proposer], "proposer %d used twice", pr.Proposer)
			assert.False(t, seenA[pr.Acceptor], "acceptor %d used twice", pr.Acceptor)
			seenP[pr.Proposer], seenA[pr.Acceptor] = true, true
			d := math.Abs(proposers[pr.Proposer] - acceptors[pr.Acceptor])
			assert.LessOrEqual(t, d, opts.Tolerance)
		}

		again, err := Match(proposers, acceptors, opts)
		require.NoError(t, err)
		assert.Equal(t, res.Pairs(), again.Pairs())
	}
}

func TestPreferencesStableTies(t *testing.T) {
	prefs, err := NewPreferences([]float64{5}, []float64{6, 4, 9}, 1, Inclusive)
	require.NoError(t, err)

	row := prefs.Proposers[0]
	require.Len(t, row, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{row[0].Partner, row[1].Partner, row[2].Partner})
	assert.True(t, row[0].Eligible)
	assert.True(t, row[1].Eligible)
	assert.False(t, row[2].Eligible)
	assert.True(t, prefs.ProposerPrefers(0, 0, 1))
	assert.False(t, prefs.Eligible(0, 2))
}

func TestPreferencesIneligibleIsNotZero(t *testing.T) {
	// An out-of-range pair must never look like an exact hit.
	prefs, err := NewPreferences([]float64{0}, []float64{10, 0}, 1, Inclusive)
	require.NoError(t, err)

	row := prefs.Proposers[0]
	assert.Equal(t, 1, row[0].Partner)
	assert.Equal(t, 0.0, row[0].Diff)
	assert.True(t, row[0].Eligible)
	assert.Equal(t, 10.0, row[1].Diff)
	assert.False(t, row[1].Eligible)
}

func TestParseBound(t *testing.T) {
	b, err := ParseBound("exclusive")
	require.NoError(t, err)
	assert.Equal(t, Exclusive, b)
	assert.Equal(t, "exclusive", b.String())

	_, err = ParseBound("sideways")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMatchSetOperations(t *testing.T) {
	m := NewMatchSet(2, 2)
	require.NoError(t, m.Match(0, 1))

	err := m.Match(0, 0)
	assert.ErrorIs(t, err, ErrAlreadyMatched)
	err = m.Match(1, 1)
	assert.ErrorIs(t, err, ErrAlreadyMatched)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, Unmatched, m.Acceptor(0))

	err = m.Unmatch(1, 0)
	assert.ErrorIs(t, err, ErrNotMatched)

	require.NoError(t, m.Match(1, 0))
	err = m.Unmatch(0, 0)
	assert.ErrorIs(t, err, ErrNotPartners)
	assert.Equal(t, []Pair{{0, 1}, {1, 0}}, m.Pairs())

	require.NoError(t, m.Unmatch(0, 1))
	assert.Equal(t, []int{0}, m.UnmatchedProposers())
	assert.Equal(t, []int{1}, m.UnmatchedAcceptors())

	assert.ErrorIs(t, m.Match(2, 0), ErrIndexOutOfRange)
	assert.ErrorIs(t, m.Unmatch(0, -1), ErrIndexOutOfRange)
}

func TestResultMatchSetIsCopy(t *testing.T) {
	res, err := Match([]float64{1}, []float64{1}, DefaultOptions(0.5))
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())

	set := res.MatchSet()
	require.NoError(t, set.Unmatch(0, 0))
	assert.Equal(t, 1, res.Len())
	assert.Equal(t, Matched(0), res.AcceptorState(0))
}

func TestVerifyFindsBlockingPair(t *testing.T) {
	prefs, err := NewPreferences([]float64{1, 2}, []float64{1, 2}, 5, Inclusive)
	require.NoError(t, err)

	set := NewMatchSet(2, 2)
	require.NoError(t, set.Match(0, 1))
	require.NoError(t, set.Match(1, 0))

	err = Verify(prefs, set)
	var bp *BlockingPairError
	require.True(t, errors.As(err, &bp), "got %v", err)
	assert.Equal(t, 0, bp.Proposer)
	assert.Equal(t, 0, bp.Acceptor)
}

func TestVerifyRejectsIneligiblePair(t *testing.T) {
	prefs, err := NewPreferences([]float64{0}, []float64{10}, 1, Inclusive)
	require.NoError(t, err)

	set := NewMatchSet(1, 1)
	require.NoError(t, set.Match(0, 0))
	assert.ErrorContains(t, Verify(prefs, set), "outside the tolerance")

	assert.ErrorIs(t, Verify(prefs, NewMatchSet(2, 1)), ErrInvalidInput)
}

func TestRenderPreferences(t *testing.T) {
	res, err := Match(exampleProposers, exampleAcceptors, DefaultOptions(2))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.Preferences().Render(&buf))

	out := buf.String()
	assert.Contains(t, out, "Proposer preferences")
	assert.Contains(t, out, "Acceptor preferences")
	assert.Contains(t, out, "6 (1)")
	assert.Contains(t, out, "3 (3) x")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unmatched", Unmatched.String())
	assert.Equal(t, "matched(4)", Matched(4).String())
	p, ok := Matched(4).Partner()
	assert.True(t, ok)
	assert.Equal(t, 4, p)
}

func randomValues(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Round(rng.Float64()*200) / 10
	}
	return out
}
