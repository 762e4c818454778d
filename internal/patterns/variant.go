// Package patterns learns which control-flow strategy solves a class of
// problems fastest. A learning round generates a menu of strategy
// variants, races them concurrently over the same problem, scores the
// outcomes, and caches the winner keyed by the problem's coarse profile
// signature so similar problems skip the round entirely.
package patterns

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/seekerlab/seeker/internal/models"
	"github.com/seekerlab/seeker/internal/profile"
)

// defaultTolerance is the absolute closeness at which a strategy counts
// a value as found.
const defaultTolerance = 0.001

// Execution is what one strategy run reports back.
type Execution struct {
	Iterations uint32
	// Correctness in [0, 1]; 1 means the target was hit exactly within
	// tolerance.
	Correctness float64
	FoundValue  *float64
}

// RunFunc executes one strategy against a problem. Implementations must
// honor ctx and return its error when cancelled mid-search.
type RunFunc func(ctx context.Context, v Variant, target float64, inputs []float64) (Execution, error)

// Variant is one independently runnable strategy in a learning round.
type Variant struct {
	Name          string
	Type          models.PatternType
	Description   string
	MaxIterations uint32
	Tolerance     float64
	UsesCache     bool

	run RunFunc
}

// Tuning overrides a variant's knobs from configuration.
type Tuning struct {
	MaxIterations uint32  `mapstructure:"max_iterations"`
	Tolerance     float64 `mapstructure:"tolerance"`
}

// DecodeTuning decodes a raw per-variant tuning map, rejecting unknown
// keys so config typos surface instead of silently doing nothing.
func DecodeTuning(raw map[string]any) (Tuning, error) {
	var t Tuning
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &t,
		ErrorUnused: true,
	})
	if err != nil {
		return Tuning{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Tuning{}, fmt.Errorf("decoding variant tuning: %w", err)
	}
	return t, nil
}

// patternLookup reports whether a cached pattern already exists for a
// signature. The cache-first variant uses it during its run.
type patternLookup func(signature string) bool

// menu builds the variant list for one problem profile. Complex
// problems get an extra progressive-deepening strategy with a much
// larger iteration budget.
func menu(prof profile.Profile, lookup patternLookup, tuning map[string]Tuning) []Variant {
	variants := []Variant{
		{
			Name:          "count_loop_fixed",
			Type:          models.PatternCountLoop,
			Description:   "Fixed iteration count loop",
			MaxIterations: 100,
			run:           runCountLoop,
		},
		{
			Name:          "range_loop_bounded",
			Type:          models.PatternRangeLoop,
			Description:   "Range-based iteration with bounds",
			MaxIterations: 500,
			run:           runRangeLoop,
		},
		{
			Name:          "while_loop_condition",
			Type:          models.PatternWhileLoop,
			Description:   "Condition-driven loop with early exit",
			MaxIterations: 1000,
			run:           runWhileLoop,
		},
		{
			Name:          "conditional_chain_branch",
			Type:          models.PatternConditionalChain,
			Description:   "Operation chain branched on target size",
			MaxIterations: 300,
			run:           runConditionalChain,
		},
		{
			Name:          "nested_conditional",
			Type:          models.PatternNestedStructure,
			Description:   "Nested loops with conditional branching",
			MaxIterations: 200,
			run:           runNested,
		},
		{
			Name:          "cached_lookup_first",
			Type:          models.PatternHybrid,
			Description:   "Check cache first, then iterate if needed",
			MaxIterations: 50,
			UsesCache:     true,
			run:           runCacheFirst(prof, lookup),
		},
	}
	if prof.Complexity == profile.ComplexityComplex {
		variants = append(variants, Variant{
			Name:          "adaptive_deep_search",
			Type:          models.PatternHybrid,
			Description:   "Progressive deepening over widening bounds",
			MaxIterations: 2000,
			UsesCache:     true,
			run:           runAdaptiveDeep,
		})
	}

	for i := range variants {
		variants[i].Tolerance = defaultTolerance
		t, ok := tuning[variants[i].Name]
		if !ok {
			continue
		}
		if t.MaxIterations > 0 {
			variants[i].MaxIterations = t.MaxIterations
		}
		if t.Tolerance > 0 {
			variants[i].Tolerance = t.Tolerance
		}
	}
	return variants
}

// variantByName finds a menu entry so a cached winner can be re-probed.
func variantByName(variants []Variant, name string) (Variant, bool) {
	for _, v := range variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}
