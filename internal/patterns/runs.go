package patterns

import (
	"context"
	"math"

	"github.com/seekerlab/seeker/internal/profile"
)

// checkEvery is how many inner iterations pass between context checks.
const checkEvery = 64

func ctxAlive(ctx context.Context, step uint32) error {
	if step%checkEvery == 0 {
		return ctx.Err()
	}
	return nil
}

func found(v float64, iterations uint32) Execution {
	return Execution{Iterations: iterations, Correctness: 1, FoundValue: &v}
}

// runCountLoop scales the first input by a rising counter. Cheap and
// only succeeds when the target is a small multiple of that input.
func runCountLoop(ctx context.Context, v Variant, target float64, inputs []float64) (Execution, error) {
	max := v.MaxIterations
	if max > 100 {
		max = 100
	}
	for i := uint32(0); i < max; i++ {
		if err := ctxAlive(ctx, i); err != nil {
			return Execution{}, err
		}
		test := float64(i)
		if len(inputs) > 0 {
			test = inputs[0] * (float64(i) + 1)
		}
		if math.Abs(test-target) < v.Tolerance {
			return found(test, i+1), nil
		}
	}
	return Execution{Iterations: max, Correctness: 0.5}, nil
}

// runRangeLoop multiplies every input by a bounded rising multiplier.
func runRangeLoop(ctx context.Context, v Variant, target float64, inputs []float64) (Execution, error) {
	max := v.MaxIterations
	if max > 500 {
		max = 500
	}
	for i := uint32(0); i < max; i++ {
		if err := ctxAlive(ctx, i); err != nil {
			return Execution{}, err
		}
		multiplier := float64(i) + 1
		for _, input := range inputs {
			if test := input * multiplier; math.Abs(test-target) < v.Tolerance {
				return found(test, i+1), nil
			}
		}
	}
	return Execution{Iterations: max, Correctness: 0.6}, nil
}

// runWhileLoop sweeps pairwise sums and products until the target is
// hit or the best accuracy stops being worth improving.
func runWhileLoop(ctx context.Context, v Variant, target float64, inputs []float64) (Execution, error) {
	var iterations uint32
	bestAccuracy := 0.0
	bestVal := 0.0

	ref := math.Max(math.Abs(target), 1)
	consider := func(test float64) bool {
		if acc := 1 - math.Abs(test-target)/ref; acc > bestAccuracy {
			bestAccuracy = acc
			bestVal = test
		}
		return math.Abs(test-target) < v.Tolerance
	}

	for iterations < v.MaxIterations {
		iterations++
		if err := ctxAlive(ctx, iterations); err != nil {
			return Execution{}, err
		}
		for _, a := range inputs {
			for _, b := range inputs {
				if consider(a + b) {
					val := a + b
					return found(val, iterations), nil
				}
				if consider(a * b) {
					val := a * b
					return found(val, iterations), nil
				}
			}
		}
		if bestAccuracy > 0.95 {
			break
		}
	}

	exec := Execution{Iterations: iterations, Correctness: math.Max(bestAccuracy, 0)}
	if bestAccuracy > 0.5 {
		exec.FoundValue = &bestVal
	}
	return exec, nil
}

// runNested tries a batch of operations per input pair.
func runNested(ctx context.Context, v Variant, target float64, inputs []float64) (Execution, error) {
	var iterations uint32
	for _, a := range inputs {
		for _, b := range inputs {
			iterations++
			if iterations > v.MaxIterations {
				return Execution{Iterations: iterations - 1, Correctness: 0.7}, nil
			}
			if err := ctxAlive(ctx, iterations); err != nil {
				return Execution{}, err
			}
			candidates := []float64{a + b, a * b, a - b, b - a}
			if b != 0 {
				candidates = append(candidates, a/b)
			}
			for _, test := range candidates {
				if math.Abs(test-target) < v.Tolerance {
					return found(test, iterations), nil
				}
			}
		}
	}
	return Execution{Iterations: iterations, Correctness: 0.7}, nil
}

// runConditionalChain picks one operation family from the target's
// magnitude: sums for small targets, products for medium, grouped
// sum-then-product for large.
func runConditionalChain(ctx context.Context, v Variant, target float64, inputs []float64) (Execution, error) {
	var iterations uint32
	abs := math.Abs(target)

	try := func(test float64) (Execution, bool) {
		if math.Abs(test-target) < v.Tolerance {
			return found(test, iterations), true
		}
		return Execution{}, false
	}

	switch {
	case abs < 100:
		for _, a := range inputs {
			for _, b := range inputs {
				iterations++
				if err := ctxAlive(ctx, iterations); err != nil {
					return Execution{}, err
				}
				if exec, ok := try(a + b); ok {
					return exec, nil
				}
			}
		}
	case abs < 1000:
		for _, a := range inputs {
			for _, b := range inputs {
				iterations++
				if err := ctxAlive(ctx, iterations); err != nil {
					return Execution{}, err
				}
				if exec, ok := try(a * b); ok {
					return exec, nil
				}
			}
		}
	default:
		for _, a := range inputs {
			for _, b := range inputs {
				for _, c := range inputs {
					iterations++
					if err := ctxAlive(ctx, iterations); err != nil {
						return Execution{}, err
					}
					if exec, ok := try((a + b) * c); ok {
						return exec, nil
					}
				}
			}
		}
	}
	return Execution{Iterations: iterations, Correctness: 0.75}, nil
}

// runCacheFirst answers instantly when a pattern for this profile is
// already cached, otherwise falls back to the while-loop sweep.
func runCacheFirst(prof profile.Profile, lookup patternLookup) RunFunc {
	return func(ctx context.Context, v Variant, target float64, inputs []float64) (Execution, error) {
		if lookup != nil && lookup(prof.Signature()) {
			return found(target, 0), nil
		}
		return runWhileLoop(ctx, v, target, inputs)
	}
}

// runAdaptiveDeep searches in progressively deeper multiplier rounds,
// paying for depth only when shallow rounds fail.
func runAdaptiveDeep(ctx context.Context, v Variant, target float64, inputs []float64) (Execution, error) {
	var iterations uint32
	for _, depth := range []uint32{10, 100, 1000, v.MaxIterations} {
		if depth > v.MaxIterations {
			depth = v.MaxIterations
		}
		for i := uint32(0); i < depth; i++ {
			iterations++
			if err := ctxAlive(ctx, iterations); err != nil {
				return Execution{}, err
			}
			multiplier := float64(i) + 1
			for _, input := range inputs {
				if test := input * multiplier; math.Abs(test-target) < v.Tolerance {
					return found(test, iterations), nil
				}
				if test := input*multiplier + input; math.Abs(test-target) < v.Tolerance {
					return found(test, iterations), nil
				}
			}
		}
	}
	return Execution{Iterations: iterations, Correctness: 0.65}, nil
}
