package patterns

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seekerlab/seeker/internal/models"
	"github.com/seekerlab/seeker/internal/profile"
	"github.com/seekerlab/seeker/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	return store.Open(filepath.Join(t.TempDir(), "cache.json"), nil)
}

func TestMenuSize(t *testing.T) {
	simple := profile.Classify(56, 2)
	assert.Len(t, menu(simple, nil, nil), 6)

	complexProf := profile.Classify(50000, 3)
	variants := menu(complexProf, nil, nil)
	assert.Len(t, variants, 7)

	deep, ok := variantByName(variants, "adaptive_deep_search")
	require.True(t, ok)
	assert.Equal(t, models.PatternHybrid, deep.Type)
	assert.True(t, deep.UsesCache)
}

func TestMenuAppliesTuning(t *testing.T) {
	tuning := map[string]Tuning{
		"while_loop_condition": {MaxIterations: 42, Tolerance: 0.5},
	}
	variants := menu(profile.Classify(56, 2), nil, tuning)

	v, ok := variantByName(variants, "while_loop_condition")
	require.True(t, ok)
	assert.Equal(t, uint32(42), v.MaxIterations)
	assert.Equal(t, 0.5, v.Tolerance)

	other, ok := variantByName(variants, "count_loop_fixed")
	require.True(t, ok)
	assert.Equal(t, uint32(100), other.MaxIterations)
	assert.Equal(t, defaultTolerance, other.Tolerance)
}

func TestDecodeTuning(t *testing.T) {
	got, err := DecodeTuning(map[string]any{"max_iterations": 250, "tolerance": 0.01})
	require.NoError(t, err)
	assert.Equal(t, uint32(250), got.MaxIterations)
	assert.Equal(t, 0.01, got.Tolerance)

	_, err = DecodeTuning(map[string]any{"max_iters": 250})
	assert.Error(t, err, "unknown keys must not pass silently")
}

func TestScore(t *testing.T) {
	r := Result{Correctness: 1, ExecutionTimeMs: 8, Iterations: 0}
	assert.InDelta(t, 99.2, r.Score(), 1e-9)

	slow := Result{Correctness: 1, ExecutionTimeMs: 100, Iterations: 50}
	assert.InDelta(t, 65.0, slow.Score(), 1e-9)
}

func TestBestPicksHybridWinner(t *testing.T) {
	hybrid := Result{
		Variant:     Variant{Name: "cached_lookup_first", Type: models.PatternHybrid},
		Correctness: 1, ExecutionTimeMs: 8, Iterations: 0,
	}
	results := []Result{
		{Variant: Variant{Name: "count_loop_fixed", Type: models.PatternCountLoop}, Correctness: 0.5, ExecutionTimeMs: 3, Iterations: 100},
		{Variant: Variant{Name: "range_loop_bounded", Type: models.PatternRangeLoop}, Correctness: 0.6, ExecutionTimeMs: 12, Iterations: 500},
		{Variant: Variant{Name: "while_loop_condition", Type: models.PatternWhileLoop}, Correctness: 0.93, ExecutionTimeMs: 40, Iterations: 1000},
		{Variant: Variant{Name: "conditional_chain_branch", Type: models.PatternConditionalChain}, Correctness: 0.75, ExecutionTimeMs: 2, Iterations: 9},
		{Variant: Variant{Name: "nested_conditional", Type: models.PatternNestedStructure}, Correctness: 0.7, ExecutionTimeMs: 2, Iterations: 9},
		hybrid,
	}

	best, ok := Best(results)
	require.True(t, ok)
	assert.Equal(t, "cached_lookup_first", best.Variant.Name)
	assert.Equal(t, models.PatternHybrid, best.Variant.Type)
}

func TestBestBreaksTiesByTime(t *testing.T) {
	// Both score 89, but b paid for it with runtime.
	a := Result{Variant: Variant{Name: "a"}, Correctness: 0.90, ExecutionTimeMs: 10}
	b := Result{Variant: Variant{Name: "b"}, Correctness: 0.95, ExecutionTimeMs: 60}

	best, ok := Best([]Result{b, a})
	require.True(t, ok)
	assert.Equal(t, "a", best.Variant.Name)
}

func TestLearnFreshRoundCachesWinner(t *testing.T) {
	st := testStore(t)
	c := NewCoordinator(st, Options{Workers: 2})

	rec, hit, err := c.Learn(context.Background(), 56, []float64{1, 55})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "small/pair/simple", rec.ProblemSignature)
	assert.Equal(t, 100.0, rec.SuccessRate)

	cached, ok := st.GetPattern("small/pair/simple")
	require.True(t, ok)
	assert.Equal(t, rec.Structure, cached.Structure)
	assert.Equal(t, uint32(1), cached.TimesUsed)
}

func TestLearnServesCacheHit(t *testing.T) {
	st := testStore(t)
	c := NewCoordinator(st, Options{Workers: 2})

	_, hit, err := c.Learn(context.Background(), 56, []float64{1, 55})
	require.NoError(t, err)
	require.False(t, hit)

	rec, hit, err := c.Learn(context.Background(), 56, []float64{1, 55})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, uint32(2), rec.TimesUsed)
}

func TestLearnRefreshesFailedVerification(t *testing.T) {
	st := testStore(t)
	sig := profile.Classify(770, 1).Signature()

	// A stale winner whose strategy can no longer hit the target within
	// its iteration budget: 770 = 7 * 110 needs 110 counter steps but
	// the count loop caps at 100.
	require.NoError(t, st.PutPattern(models.PatternRecord{
		ProblemSignature: sig,
		PatternType:      models.PatternCountLoop,
		Structure:        "count_loop_fixed",
		SuccessRate:      100,
	}))

	c := NewCoordinator(st, Options{Workers: 2})
	rec, hit, err := c.Learn(context.Background(), 770, []float64{7})
	require.NoError(t, err)
	assert.False(t, hit, "failed probe must trigger a fresh round")
	assert.Equal(t, 100.0, rec.SuccessRate)
	assert.NotEqual(t, "count_loop_fixed", rec.Structure)
}

func TestLearnFuzzyMatchServesNeighborProfile(t *testing.T) {
	st := testStore(t)

	// Winner cached under small/many/complex. A target of 500 with five
	// operands profiles as medium/many/complex: an exact miss, one
	// magnitude step away from the cached profile.
	require.NoError(t, st.PutPattern(models.PatternRecord{
		ProblemSignature: "small/many/complex",
		PatternType:      models.PatternWhileLoop,
		Structure:        "while_loop_condition",
		SuccessRate:      100,
		LastUsed:         time.Now().UTC(),
	}))

	c := NewCoordinator(st, Options{Workers: 2})
	rec, hit, err := c.Learn(context.Background(), 500, []float64{100, 150, 250, 250, 400})
	require.NoError(t, err)

	assert.True(t, hit)
	assert.Equal(t, "small/many/complex", rec.ProblemSignature)
	assert.Equal(t, uint32(1), rec.TimesUsed)
}

func TestRunRoundCacheFirstWinsWhenPatternKnown(t *testing.T) {
	st := testStore(t)
	c := NewCoordinator(st, Options{Workers: 4})

	prof := profile.Classify(56, 2)
	variants := menu(prof, func(string) bool { return true }, nil)

	rec, err := c.runRound(context.Background(), prof.Signature(), variants, 56, []float64{1, 55})
	require.NoError(t, err)
	assert.Equal(t, "cached_lookup_first", rec.Structure)
	assert.Equal(t, models.PatternHybrid, rec.PatternType)
	assert.Equal(t, 0.0, rec.AvgIterations)
	assert.Equal(t, 100.0, rec.SuccessRate)
}

func TestRunOneScoresTimeoutAsZero(t *testing.T) {
	st := testStore(t)
	c := NewCoordinator(st, Options{VariantTimeout: 10 * time.Millisecond})

	stuck := Variant{
		Name: "stuck",
		Type: models.PatternWhileLoop,
		run: func(ctx context.Context, v Variant, target float64, inputs []float64) (Execution, error) {
			<-ctx.Done()
			return Execution{}, ctx.Err()
		},
	}

	res := c.runOne(context.Background(), stuck, 56, []float64{1, 55})
	assert.Equal(t, 0.0, res.Correctness)
	assert.False(t, res.Success)
	assert.Nil(t, res.FoundValue)
}

func TestRunVariantsHonorTolerance(t *testing.T) {
	v := Variant{Name: "range", MaxIterations: 500, Tolerance: defaultTolerance}

	exec, err := runRangeLoop(context.Background(), v, 770, []float64{7})
	require.NoError(t, err)
	assert.Equal(t, 1.0, exec.Correctness)
	require.NotNil(t, exec.FoundValue)
	assert.Equal(t, 770.0, *exec.FoundValue)
	assert.Equal(t, uint32(110), exec.Iterations)
}
