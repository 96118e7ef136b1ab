// Package stats holds the small numeric helpers behind detection reports
// and histograms.
package stats

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// DefaultGap is the spacing between simulated acquisitions, in seconds.
const DefaultGap = 0.1

// MaxBins bounds the number of histogram bins.
const MaxBins = 1 << 24

// ErrBinWidth rejects a bin width that is not positive and finite, or that
// would split the value range into more than MaxBins bins.
var ErrBinWidth = errors.New("stats: bin width must be positive and finite")

// Hist is a fixed-width histogram. Edges has one more entry than Counts;
// bin i covers [Edges[i], Edges[i+1]) except the last, which is closed.
type Hist struct {
	Edges  []float64
	Counts []int
}

// Total returns the number of values binned.
func (h Hist) Total() int {
	n := 0
	for _, c := range h.Counts {
		n += c
	}
	return n
}

// Histogram bins values with edges starting at the minimum and stepping by
// binwidth until the edge passes max+binwidth. No values give an empty Hist.
func Histogram(values []float64, binwidth float64) (Hist, error) {
	if !(binwidth > 0) || math.IsInf(binwidth, 0) {
		return Hist{}, ErrBinWidth
	}
	if len(values) == 0 {
		return Hist{}, nil
	}
	lo, hi := slices.Min(values), slices.Max(values)
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return Hist{}, errors.New("stats: values must be finite")
	}

	nf := math.Ceil((hi+binwidth-lo)/binwidth - 1e-9)
	if nf > MaxBins {
		return Hist{}, fmt.Errorf("%w: %g over [%g, %g] needs more than %d bins", ErrBinWidth, binwidth, lo, hi, MaxBins)
	}
	n := int(nf)
	edges := make([]float64, n)
	for i := range edges {
		edges[i] = lo + float64(i)*binwidth
	}
	if n < 2 {
		edges = append(edges, lo+binwidth)
	}

	h := Hist{Edges: edges, Counts: make([]int, len(edges)-1)}
	last := len(h.Counts) - 1
	for _, v := range values {
		i := int((v - lo) / binwidth)
		if i > last {
			i = last
		}
		h.Counts[i]++
	}
	return h, nil
}

// Window is one acquisition interval.
type Window struct {
	Start, End float64
}

// Contains reports whether t falls in [Start, End].
func (w Window) Contains(t float64) bool {
	return t >= w.Start && t <= w.End
}

// Acquisitions reconstructs acquisition windows from sorted event times.
// A jump larger than gap between neighbours closes a window; each window
// ends at its last event time and spans length seconds back from there.
func Acquisitions(times []float64, gap, length float64) []Window {
	if len(times) == 0 {
		return nil
	}
	sorted := slices.Clone(times)
	slices.Sort(sorted)

	var out []Window
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] > gap {
			out = append(out, Window{Start: sorted[i-1] - length, End: sorted[i-1]})
		}
	}
	last := sorted[len(sorted)-1]
	return append(out, Window{Start: last - length, End: last})
}

// Efficiency returns detected/simulated as a percentage, or 0 when nothing
// was simulated.
func Efficiency(detected, simulated int) float64 {
	if simulated == 0 {
		return 0
	}
	return 100 * float64(detected) / float64(simulated)
}
