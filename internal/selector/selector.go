// Package selector fills unresolved operand placeholders from a pool of
// previously cached values. Selection is target-aware (values wildly out
// of range for the target are filtered first) and diversity-seeking
// (picks spread across the surviving value range, never collapsing to
// one repeated value unless the pool genuinely has nothing else).
package selector

import (
	"math"
	"sort"
)

// valueEpsilon under which two pool values collapse into one.
const valueEpsilon = 1e-9

// Selector chooses placeholder fills. Stateless; safe for concurrent use.
type Selector struct{}

func New() *Selector {
	return &Selector{}
}

// Select picks count values from pool. When target is non-nil the pool
// is first narrowed to values plausible for that target's magnitude.
// A short pool relaxes the target filter before it ever repeats values;
// an empty pool returns nil.
func (s *Selector) Select(pool []float64, count int, target *float64) []float64 {
	if count <= 0 {
		return nil
	}
	distinct := dedupe(pool)
	if len(distinct) == 0 {
		return nil
	}

	filtered := distinct
	if target != nil {
		filtered = filterForTarget(distinct, *target)
	}
	if len(filtered) < count {
		// Not enough survivors: drop the target filter before repeating.
		filtered = distinct
	}

	picks := distribute(filtered, count)
	for len(picks) < count {
		picks = append(picks, picks[len(picks)%len(filtered)])
	}
	return picks
}

// dedupe sorts the pool and collapses values equal within epsilon.
func dedupe(pool []float64) []float64 {
	vals := make([]float64, 0, len(pool))
	for _, v := range pool {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	sort.Float64s(vals)

	out := vals[:0]
	for _, v := range vals {
		if len(out) == 0 || math.Abs(v-out[len(out)-1]) > valueEpsilon {
			out = append(out, v)
		}
	}
	return out
}

// filterForTarget narrows a sorted pool by the target's magnitude class.
// Small targets exclude values that overshoot, medium targets keep a
// symmetric window, and large targets keep small multipliers alongside
// large bases to favor multiplicative compositions.
func filterForTarget(sorted []float64, target float64) []float64 {
	abs := math.Abs(target)
	keep := func(v float64) bool {
		av := math.Abs(v)
		switch {
		case abs < 100:
			return av < 2*abs
		case abs <= 1000:
			return av >= 2 && av <= 2*abs
		default:
			multiplier := av >= 2 && av <= 20
			base := av > 20 && av <= 1.5*abs
			return multiplier || base
		}
	}

	out := make([]float64, 0, len(sorted))
	for _, v := range sorted {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// distribute spreads count picks across a sorted pool by rank: one pick
// takes the median, two take the extremes, three or more take the
// extremes plus evenly spaced interior ranks. Never returns more than
// len(sorted) values; the caller pads if repeats are unavoidable.
func distribute(sorted []float64, count int) []float64 {
	n := len(sorted)
	if n == 0 {
		return nil
	}
	if count >= n {
		out := make([]float64, n)
		copy(out, sorted)
		return out
	}
	switch count {
	case 1:
		return []float64{sorted[n/2]}
	case 2:
		return []float64{sorted[0], sorted[n-1]}
	}

	out := make([]float64, 0, count)
	step := float64(n-1) / float64(count-1)
	prev := -1
	for i := 0; i < count; i++ {
		rank := int(math.Round(float64(i) * step))
		if rank <= prev {
			rank = prev + 1
		}
		out = append(out, sorted[rank])
		prev = rank
	}
	return out
}
