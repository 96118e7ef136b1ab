package timematch

import (
	"math"

	"github.com/tidwall/btree"
)

type refPoint struct {
	time float64
	idx  int
}

// Index is an ordered index over the reference times. Its Compare gives the
// same answer as the package-level Compare without scanning every reference
// for every event.
type Index struct {
	tol  float64
	tree *btree.BTreeG[refPoint]
}

// NewIndex builds an index over refs for the given tolerance.
func NewIndex(refs []float64, tol float64) (*Index, error) {
	if err := validTolerance(tol); err != nil {
		return nil, err
	}
	if err := finite("reference", refs); err != nil {
		return nil, err
	}

	tree := btree.NewBTreeG(func(a, b refPoint) bool {
		if a.time != b.time {
			return a.time < b.time
		}
		return a.idx < b.idx
	})
	for i, t := range refs {
		tree.Set(refPoint{time: t, idx: i})
	}
	return &Index{tol: tol, tree: tree}, nil
}

// Len returns the number of indexed references.
func (x *Index) Len() int { return x.tree.Len() }

// First returns the smallest reference index j with |t - refs[j]| < tol.
func (x *Index) First(t float64) (int, bool) {
	// Scan [t-2tol, t+2tol]; within has the final say.
	lo := refPoint{time: t - 2*x.tol, idx: math.MinInt}
	hi := t + 2*x.tol

	best := -1
	x.tree.Ascend(lo, func(p refPoint) bool {
		if p.time > hi {
			return false
		}
		if within(t, p.time, x.tol) && (best < 0 || p.idx < best) {
			best = p.idx
		}
		return true
	})
	return best, best >= 0
}

// Compare matches every event against the index.
func (x *Index) Compare(events []float64) (Pairs, error) {
	var out Pairs
	if err := finite("event", events); err != nil {
		return out, err
	}
	for i, et := range events {
		if j, ok := x.First(et); ok {
			out.add(i, j)
		}
	}
	return out, nil
}
