// Package solver enumerates expression templates over small operand sets
// and selects the candidate closest to a numeric target. The search is
// exhaustive, single-threaded, and deterministic: reproducibility of
// which equation gets found matters more than throughput at this size
// (hundreds of candidates).
package solver

import (
	"errors"
	"math"

	"github.com/seekerlab/seeker/internal/evaluate"
	"github.com/seekerlab/seeker/internal/models"
)

// ErrInsufficientInputs is returned when a solve is requested with no
// operands at all.
var ErrInsufficientInputs = errors.New("solver: at least one operand is required")

// exactRelEpsilon is the relative tolerance below which a candidate
// counts as an exact match and the search stops early.
const exactRelEpsilon = 1e-9

// Solver searches the template space. It carries no state between calls.
type Solver struct{}

// New returns a ready Solver.
func New() *Solver {
	return &Solver{}
}

// candidate tracks the running best during enumeration together with the
// tie-break weights: operator count, then total operand magnitude.
type candidate struct {
	result    models.SolutionResult
	operators int
	magnitude float64
	valid     bool
}

// Solve searches every applicable template over every ordered selection
// of operands (order matters for non-commutative operators) and returns
// the best exact or approximate match. Domain errors exclude individual
// candidates and are never solver failures.
func (s *Solver) Solve(target float64, operands []float64) (models.SolutionResult, error) {
	usable := make([]float64, 0, len(operands))
	for _, v := range operands {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			usable = append(usable, v)
		}
	}
	if len(usable) == 0 {
		return models.SolutionResult{}, ErrInsufficientInputs
	}

	best := candidate{}
	maxArity := len(usable)
	if maxArity > 3 {
		maxArity = 3
	}

	for arity := 1; arity <= maxArity; arity++ {
		if s.enumerate(target, usable, arity, &best) {
			break
		}
	}
	return best.result, nil
}

// enumerate walks all ordered index selections of the given arity and
// all templates of that arity. Returns true once an exact match ends the
// search.
func (s *Solver) enumerate(target float64, operands []float64, arity int, best *candidate) bool {
	templates := evaluate.ByArity(arity)
	vals := make([]float64, arity)

	for _, idx := range orderedSelections(len(operands), arity) {
		for i, j := range idx {
			vals[i] = operands[j]
		}
		for _, tmpl := range templates {
			value, err := tmpl.Eval(vals)
			if err != nil {
				continue // outside the operator's domain: skip the candidate
			}
			acc := Accuracy(value, target)
			next := candidate{
				result: models.SolutionResult{
					EquationText: tmpl.Render(vals),
					Value:        value,
					AccuracyPct:  acc,
					Exact:        isExact(value, target),
				},
				operators: tmpl.OperatorCount,
				magnitude: totalMagnitude(vals),
				valid:     true,
			}
			if next.betterThan(*best) {
				*best = next
			}
			if best.result.Exact {
				return true
			}
		}
	}
	return false
}

// betterThan orders candidates by accuracy, then fewer operators, then
// lower total operand magnitude. Strict ordering keeps the first-found
// candidate on true ties, which makes the search reproducible.
func (c candidate) betterThan(old candidate) bool {
	if !old.valid {
		return true
	}
	if c.result.AccuracyPct != old.result.AccuracyPct {
		return c.result.AccuracyPct > old.result.AccuracyPct
	}
	if c.operators != old.operators {
		return c.operators < old.operators
	}
	return c.magnitude < old.magnitude
}

// Accuracy reports how close value lands to target as a percentage in
// [0, 100]. A zero target has no usable magnitude, so closeness is
// measured against an absolute unit window instead.
func Accuracy(value, target float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	if target == 0 {
		return clampPct(100 * (1 - math.Abs(value)))
	}
	ref := math.Max(math.Abs(target), 1)
	return clampPct(100 * (1 - math.Abs(value-target)/ref))
}

func isExact(value, target float64) bool {
	tol := exactRelEpsilon * math.Max(math.Abs(target), 1)
	return math.Abs(value-target) <= tol
}

func clampPct(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

func totalMagnitude(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += math.Abs(v)
	}
	return sum
}

// orderedSelections returns every ordered selection of k distinct
// indices from n, in lexicographic order of the index tuples.
func orderedSelections(n, k int) [][]int {
	var out [][]int
	sel := make([]int, k)
	used := make([]bool, n)

	var walk func(depth int)
	walk = func(depth int) {
		if depth == k {
			tuple := make([]int, k)
			copy(tuple, sel)
			out = append(out, tuple)
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			sel[depth] = i
			walk(depth + 1)
			used[i] = false
		}
	}
	walk(0)
	return out
}
