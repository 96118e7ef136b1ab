package stablematch

import "fmt"

// Orientation decides which input set proposes.
type Orientation int

const (
	// AsGiven lets the first argument propose, whatever the sizes.
	AsGiven Orientation = iota
	// SmallerProposes swaps the sides when the first set is larger and maps
	// the pairs back, so results are always reported in argument order.
	SmallerProposes
)

// Options configures Match.
type Options struct {
	// Tolerance is the largest acceptable |proposer - acceptor|.
	Tolerance float64
	// Bound chooses between <= (Inclusive, default) and < (Exclusive).
	Bound Bound
	// Orientation picks the proposing side.
	Orientation Orientation
	// RequireProposerMinority rejects inputs with more proposers than
	// acceptors instead of running the generalized protocol.
	RequireProposerMinority bool
}

// DefaultOptions returns inclusive, as-given options for tol.
func DefaultOptions(tol float64) Options {
	return Options{Tolerance: tol}
}

// Result is an immutable view of a finished matching.
type Result struct {
	prefs *Preferences
	set   *MatchSet
	// Proposals counts every proposal made, accepted or not.
	Proposals int
	// Swapped is true when SmallerProposes made the acceptors propose.
	Swapped bool
}

// Match runs deferred acceptance with proposers proposing to acceptors.
func Match(proposers, acceptors []float64, opts Options) (*Result, error) {
	if opts.RequireProposerMinority && len(proposers) > len(acceptors) {
		return nil, invalid("%d proposers exceed %d acceptors; the smaller set must propose",
			len(proposers), len(acceptors))
	}

	prefs, err := NewPreferences(proposers, acceptors, opts.Tolerance, opts.Bound)
	if err != nil {
		return nil, err
	}

	if opts.Orientation == SmallerProposes && len(proposers) > len(acceptors) {
		set, n, err := deferredAcceptance(prefs.swapped())
		if err != nil {
			return nil, err
		}
		back := NewMatchSet(len(proposers), len(acceptors))
		for _, pr := range set.Pairs() {
			if err := back.Match(pr.Acceptor, pr.Proposer); err != nil {
				return nil, err
			}
		}
		return &Result{prefs: prefs, set: back, Proposals: n, Swapped: true}, nil
	}

	set, n, err := deferredAcceptance(prefs)
	if err != nil {
		return nil, err
	}
	return &Result{prefs: prefs, set: set, Proposals: n}, nil
}

// deferredAcceptance is the Gale-Shapley loop. Free proposers wait in a FIFO
// queue seeded in index order; next[p] is p's cursor into its ranking.
func deferredAcceptance(prefs *Preferences) (*MatchSet, int, error) {
	P, A := len(prefs.Proposers), len(prefs.Acceptors)
	set := NewMatchSet(P, A)
	next := make([]int, P)
	proposals := 0

	free := make([]int, P)
	for p := range free {
		free[p] = p
	}

	for len(free) > 0 {
		p := free[0]
		free = free[1:]

		for next[p] < len(prefs.Proposers[p]) {
			r := prefs.Proposers[p][next[p]]
			next[p]++
			if !r.Eligible {
				continue
			}
			a := r.Partner
			proposals++

			held, taken := set.Acceptor(a).Partner()
			if !taken {
				if err := set.Match(p, a); err != nil {
					return nil, 0, err
				}
				break
			}
			if !prefs.AcceptorPrefers(a, p, held) {
				continue
			}
			if err := set.Unmatch(held, a); err != nil {
				return nil, 0, fmt.Errorf("displace proposer %d: %w", held, err)
			}
			if err := set.Match(p, a); err != nil {
				return nil, 0, err
			}
			free = append(free, held)
			break
		}
	}
	return set, proposals, nil
}

// Preferences returns the rankings the run used, in argument order.
func (r *Result) Preferences() *Preferences { return r.prefs }

// Pairs lists the assignment ordered by proposer index.
func (r *Result) Pairs() []Pair { return r.set.Pairs() }

// Len returns the number of pairs.
func (r *Result) Len() int { return r.set.Len() }

// ProposerState returns proposer p's final state.
func (r *Result) ProposerState(p int) State { return r.set.Proposer(p) }

// AcceptorState returns acceptor a's final state.
func (r *Result) AcceptorState(a int) State { return r.set.Acceptor(a) }

// UnmatchedProposers lists proposers left without a partner.
func (r *Result) UnmatchedProposers() []int { return r.set.UnmatchedProposers() }

// UnmatchedAcceptors lists acceptors left without a partner.
func (r *Result) UnmatchedAcceptors() []int { return r.set.UnmatchedAcceptors() }

// MatchSet returns a copy of the final match set; changing it does not
// affect the result.
func (r *Result) MatchSet() *MatchSet { return r.set.clone() }
