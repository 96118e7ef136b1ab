// Package timematch correlates two timestamp sets by nearest time within a
// tolerance window.
//
// For every event time (in order) the reference times are scanned in order and
// the first reference strictly closer than the tolerance is taken. A reference
// may be claimed by several events; use Unique to keep only its first claimant.
// Events with no reference in range are dropped without error.
package timematch

import (
	"errors"
	"fmt"
	"math"
)

// DefaultTolerance is the egg/pitch correlation window in seconds.
const DefaultTolerance = 2e-4

var (
	// ErrInvalidTolerance is returned for a tolerance that is not finite and positive.
	ErrInvalidTolerance = errors.New("timematch: tolerance must be finite and > 0")
	// ErrInvalidInput is returned when a timestamp is NaN or infinite.
	ErrInvalidInput = errors.New("timematch: timestamps must be finite")
)

// Pairs holds index correspondences: Events[k] matched References[k].
type Pairs struct {
	Events     []int
	References []int
}

// Len returns the number of matched pairs.
func (p Pairs) Len() int { return len(p.Events) }

func (p *Pairs) add(event, ref int) {
	p.Events = append(p.Events, event)
	p.References = append(p.References, ref)
}

// Compare returns, for each event in order, the first reference (in scan order)
// with |event - reference| < tol.
func Compare(events, refs []float64, tol float64) (Pairs, error) {
	var out Pairs
	if err := validate(events, refs, tol); err != nil {
		return out, err
	}

	for i, et := range events {
		for j, rt := range refs {
			if within(et, rt, tol) {
				out.add(i, j)
				break
			}
		}
	}
	return out, nil
}

// Unique drops pairs whose reference was already claimed by an earlier event.
func Unique(p Pairs) Pairs {
	var out Pairs
	seen := make(map[int]struct{}, len(p.References))
	for k, ref := range p.References {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out.add(p.Events[k], ref)
	}
	return out
}

// Select returns the values at the given indices, in index order.
func Select[T any](values []T, idx []int) []T {
	out := make([]T, 0, len(idx))
	for _, i := range idx {
		out = append(out, values[i])
	}
	return out
}

func within(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func validTolerance(tol float64) error {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidTolerance, tol)
	}
	return nil
}

func validate(events, refs []float64, tol float64) error {
	if err := validTolerance(tol); err != nil {
		return err
	}
	if err := finite("event", events); err != nil {
		return err
	}
	return finite("reference", refs)
}

func finite(name string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s[%d] = %v", ErrInvalidInput, name, i, v)
		}
	}
	return nil
}
