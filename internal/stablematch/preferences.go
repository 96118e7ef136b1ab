package stablematch

import (
	"math"
	"slices"
)

// Bound selects how the tolerance is compared against a difference.
type Bound int

const (
	// Inclusive accepts |p-a| <= tolerance.
	Inclusive Bound = iota
	// Exclusive accepts |p-a| < tolerance, the nearest-time matcher's rule.
	Exclusive
)

func (b Bound) String() string {
	switch b {
	case Inclusive:
		return "inclusive"
	case Exclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}

// ParseBound maps "inclusive"/"exclusive" to a Bound.
func ParseBound(s string) (Bound, error) {
	switch s {
	case "inclusive", "":
		return Inclusive, nil
	case "exclusive":
		return Exclusive, nil
	default:
		return Inclusive, invalid("unknown tolerance bound %q", s)
	}
}

func (b Bound) accepts(diff, tol float64) bool {
	if b == Exclusive {
		return diff < tol
	}
	return diff <= tol
}

// Rank is one entry of a preference list.
type Rank struct {
	Partner  int     // index on the other side
	Diff     float64 // |self - partner|
	Eligible bool    // false when Diff is outside the tolerance
}

// Preferences holds both sides' rankings. It is built once per matching call
// and never modified afterwards.
type Preferences struct {
	ProposerValues []float64
	AcceptorValues []float64
	Tolerance      float64
	Bound          Bound

	// Proposers[p] lists every acceptor, closest first.
	Proposers [][]Rank
	// Acceptors[a] lists every proposer, closest first.
	Acceptors [][]Rank

	// acceptorRank[a][p] is p's position in Acceptors[a].
	acceptorRank [][]int
	// proposerRank[p][a] is a's position in Proposers[p].
	proposerRank [][]int
}

// NewPreferences ranks proposers and acceptors against each other.
func NewPreferences(proposers, acceptors []float64, tol float64, bound Bound) (*Preferences, error) {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol <= 0 {
		return nil, invalid("tolerance must be finite and > 0, got %v", tol)
	}
	if err := checkValues("proposers", proposers); err != nil {
		return nil, err
	}
	if err := checkValues("acceptors", acceptors); err != nil {
		return nil, err
	}

	P, A := len(proposers), len(acceptors)
	diff := make([][]float64, P)
	for p := range P {
		diff[p] = make([]float64, A)
		for a := range A {
			diff[p][a] = math.Abs(proposers[p] - acceptors[a])
		}
	}

	prefs := &Preferences{
		ProposerValues: slices.Clone(proposers),
		AcceptorValues: slices.Clone(acceptors),
		Tolerance:      tol,
		Bound:          bound,
		Proposers:      make([][]Rank, P),
		Acceptors:      make([][]Rank, A),
	}

	for p := range P {
		row := make([]Rank, A)
		for a := range A {
			row[a] = Rank{Partner: a, Diff: diff[p][a], Eligible: bound.accepts(diff[p][a], tol)}
		}
		sortRanks(row)
		prefs.Proposers[p] = row
	}
	for a := range A {
		row := make([]Rank, P)
		for p := range P {
			row[p] = Rank{Partner: p, Diff: diff[p][a], Eligible: bound.accepts(diff[p][a], tol)}
		}
		sortRanks(row)
		prefs.Acceptors[a] = row
	}

	prefs.proposerRank = positions(prefs.Proposers, A)
	prefs.acceptorRank = positions(prefs.Acceptors, P)
	return prefs, nil
}

// sortRanks orders by ascending difference; SortStableFunc keeps input order
// among equal differences so runs are reproducible.
func sortRanks(row []Rank) {
	slices.SortStableFunc(row, func(x, y Rank) int {
		switch {
		case x.Diff < y.Diff:
			return -1
		case x.Diff > y.Diff:
			return 1
		default:
			return 0
		}
	})
}

func positions(lists [][]Rank, width int) [][]int {
	out := make([][]int, len(lists))
	for i, list := range lists {
		pos := make([]int, width)
		for k, r := range list {
			pos[r.Partner] = k
		}
		out[i] = pos
	}
	return out
}

// Eligible reports whether proposer p and acceptor a may be matched.
func (pr *Preferences) Eligible(p, a int) bool {
	return pr.Proposers[p][pr.proposerRank[p][a]].Eligible
}

// ProposerPrefers reports whether proposer p ranks acceptor x above acceptor y.
func (pr *Preferences) ProposerPrefers(p, x, y int) bool {
	return pr.proposerRank[p][x] < pr.proposerRank[p][y]
}

// AcceptorPrefers reports whether acceptor a ranks proposer x above proposer y.
func (pr *Preferences) AcceptorPrefers(a, x, y int) bool {
	return pr.acceptorRank[a][x] < pr.acceptorRank[a][y]
}

// swapped returns the same rankings seen from the other side.
func (pr *Preferences) swapped() *Preferences {
	return &Preferences{
		ProposerValues: pr.AcceptorValues,
		AcceptorValues: pr.ProposerValues,
		Tolerance:      pr.Tolerance,
		Bound:          pr.Bound,
		Proposers:      pr.Acceptors,
		Acceptors:      pr.Proposers,
		acceptorRank:   pr.proposerRank,
		proposerRank:   pr.acceptorRank,
	}
}

func checkValues(side string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid("%s[%d] is not finite (%v)", side, i, v)
		}
	}
	return nil
}
