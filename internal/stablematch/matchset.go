package stablematch

import "fmt"

// State is an element's membership in a MatchSet: unmatched, or matched to
// one partner on the other side.
type State struct {
	matched bool
	partner int
}

// Unmatched is the zero State.
var Unmatched = State{}

// Matched returns the state of an element paired with partner.
func Matched(partner int) State { return State{matched: true, partner: partner} }

// IsMatched reports whether the element has a partner.
func (s State) IsMatched() bool { return s.matched }

// Partner returns the partner index, if any.
func (s State) Partner() (int, bool) { return s.partner, s.matched }

func (s State) String() string {
	if !s.matched {
		return "unmatched"
	}
	return fmt.Sprintf("matched(%d)", s.partner)
}

// Pair is one (proposer, acceptor) assignment, by index.
type Pair struct {
	Proposer int
	Acceptor int
}

// MatchSet is the only mutable state of a matching run. Each element is used
// at most once; failed operations leave the set untouched.
type MatchSet struct {
	proposers []State
	acceptors []State
	size      int
}

// NewMatchSet returns an empty set over nProposers and nAcceptors elements.
func NewMatchSet(nProposers, nAcceptors int) *MatchSet {
	return &MatchSet{
		proposers: make([]State, nProposers),
		acceptors: make([]State, nAcceptors),
	}
}

func (m *MatchSet) check(p, a int) error {
	if p < 0 || p >= len(m.proposers) {
		return fmt.Errorf("%w: proposer %d of %d", ErrIndexOutOfRange, p, len(m.proposers))
	}
	if a < 0 || a >= len(m.acceptors) {
		return fmt.Errorf("%w: acceptor %d of %d", ErrIndexOutOfRange, a, len(m.acceptors))
	}
	return nil
}

// Match pairs p with a. It fails with ErrAlreadyMatched if either is taken.
func (m *MatchSet) Match(p, a int) error {
	if err := m.check(p, a); err != nil {
		return err
	}
	if m.proposers[p].matched || m.acceptors[a].matched {
		return fmt.Errorf("%w: proposer %d is %s, acceptor %d is %s",
			ErrAlreadyMatched, p, m.proposers[p], a, m.acceptors[a])
	}
	m.proposers[p] = Matched(a)
	m.acceptors[a] = Matched(p)
	m.size++
	return nil
}

// Unmatch dissolves the pair (p, a). Both must be matched, to each other.
func (m *MatchSet) Unmatch(p, a int) error {
	if err := m.check(p, a); err != nil {
		return err
	}
	ps, as := m.proposers[p], m.acceptors[a]
	if !ps.matched || !as.matched {
		return fmt.Errorf("%w: proposer %d is %s, acceptor %d is %s", ErrNotMatched, p, ps, a, as)
	}
	if ps.partner != a || as.partner != p {
		return fmt.Errorf("%w: proposer %d is %s, acceptor %d is %s", ErrNotPartners, p, ps, a, as)
	}
	m.proposers[p] = Unmatched
	m.acceptors[a] = Unmatched
	m.size--
	return nil
}

// Len returns the number of pairs.
func (m *MatchSet) Len() int { return m.size }

// Proposer returns proposer p's state.
func (m *MatchSet) Proposer(p int) State { return m.proposers[p] }

// Acceptor returns acceptor a's state.
func (m *MatchSet) Acceptor(a int) State { return m.acceptors[a] }

// Pairs lists the pairs ordered by proposer index.
func (m *MatchSet) Pairs() []Pair {
	out := make([]Pair, 0, m.size)
	for p, s := range m.proposers {
		if s.matched {
			out = append(out, Pair{Proposer: p, Acceptor: s.partner})
		}
	}
	return out
}

// UnmatchedProposers lists free proposers in index order.
func (m *MatchSet) UnmatchedProposers() []int { return unmatched(m.proposers) }

// UnmatchedAcceptors lists free acceptors in index order.
func (m *MatchSet) UnmatchedAcceptors() []int { return unmatched(m.acceptors) }

func unmatched(states []State) []int {
	out := make([]int, 0)
	for i, s := range states {
		if !s.matched {
			out = append(out, i)
		}
	}
	return out
}

func (m *MatchSet) clone() *MatchSet {
	c := &MatchSet{
		proposers: make([]State, len(m.proposers)),
		acceptors: make([]State, len(m.acceptors)),
		size:      m.size,
	}
	copy(c.proposers, m.proposers)
	copy(c.acceptors, m.acceptors)
	return c
}
