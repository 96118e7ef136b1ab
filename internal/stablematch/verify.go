package stablematch

import "fmt"

// Verify checks that set is a valid matching under prefs (every pair eligible,
// every element used once) and that no eligible pair blocks it.
func Verify(prefs *Preferences, set *MatchSet) error {
	P, A := len(prefs.Proposers), len(prefs.Acceptors)
	if len(set.proposers) != P || len(set.acceptors) != A {
		return invalid("match set is %dx%d, preferences are %dx%d",
			len(set.proposers), len(set.acceptors), P, A)
	}

	for p, s := range set.proposers {
		a, ok := s.Partner()
		if !ok {
			continue
		}
		if back, ok := set.acceptors[a].Partner(); !ok || back != p {
			return fmt.Errorf("stablematch: proposer %d points at acceptor %d which is %s", p, a, set.acceptors[a])
		}
		if !prefs.Eligible(p, a) {
			return fmt.Errorf("stablematch: pair (%d, %d) is outside the tolerance", p, a)
		}
	}

	for p := range P {
		pa, pMatched := set.proposers[p].Partner()
		for a := range A {
			if !prefs.Eligible(p, a) || (pMatched && pa == a) {
				continue
			}
			if pMatched && !prefs.ProposerPrefers(p, a, pa) {
				continue
			}
			ap, aMatched := set.acceptors[a].Partner()
			if aMatched && !prefs.AcceptorPrefers(a, p, ap) {
				continue
			}
			return &BlockingPairError{Proposer: p, Acceptor: a}
		}
	}
	return nil
}

// Verify checks the result against its own preferences.
func (r *Result) Verify() error {
	return Verify(r.prefs, r.set)
}
