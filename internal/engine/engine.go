// Package engine is the facade over the solving pipeline: it resolves
// placeholder operands from cached history, runs the equation search,
// persists results, and exposes pattern learning for complex problems.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/seekerlab/seeker/internal/memory"
	"github.com/seekerlab/seeker/internal/models"
	"github.com/seekerlab/seeker/internal/patterns"
	"github.com/seekerlab/seeker/internal/selector"
	"github.com/seekerlab/seeker/internal/solver"
	"github.com/seekerlab/seeker/internal/statistics"
	"github.com/seekerlab/seeker/internal/store"
)

// DefaultScope names the cache scope used when callers do not set one.
const DefaultScope = "main"

// ErrUnresolvable is returned when placeholders cannot be filled
// because the cache holds no usable values yet.
var ErrUnresolvable = errors.New("engine: no cached values available to fill placeholders")

// Options configure an Engine.
type Options struct {
	// Scope names the cache scope all keys are created under.
	Scope string
	// Patterns configures the learning coordinator.
	Patterns patterns.Options
	Logger   *slog.Logger
}

// Engine owns one store plus its in-memory accelerator.
type Engine struct {
	store  *store.Store
	mem    *memory.Tiered
	solver *solver.Solver
	sel    *selector.Selector
	coord  *patterns.Coordinator
	scope  string
	log    *slog.Logger
}

// New builds an engine over st, warming the memory tier from the
// store's current contents.
func New(st *store.Store, opts Options) (*Engine, error) {
	if opts.Scope == "" {
		opts.Scope = DefaultScope
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Patterns.Logger == nil {
		opts.Patterns.Logger = log
	}

	records := st.Solutions()
	mem, err := memory.New(len(records) + memory.HotTierSize)
	if err != nil {
		return nil, fmt.Errorf("building memory tier: %w", err)
	}
	mem.Warm(records)

	return &Engine{
		store:  st,
		mem:    mem,
		solver: solver.New(),
		sel:    selector.New(),
		coord:  patterns.NewCoordinator(st, opts.Patterns),
		scope:  opts.Scope,
		log:    log,
	}, nil
}

// Store exposes the backing store for reporting commands.
func (e *Engine) Store() *store.Store {
	return e.store
}

// MemoryStats reports accelerator counters.
func (e *Engine) MemoryStats() memory.Stats {
	return e.mem.Stats()
}

// ResolveAndSolve fills any unresolved operands from cached history,
// runs the equation search, and persists the outcome. An exact cached
// record for the same problem short-circuits the search entirely.
func (e *Engine) ResolveAndSolve(ctx context.Context, problem models.ProblemSpec) (models.SolutionRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.SolutionRecord{}, err
	}

	resolved, err := e.resolve(problem)
	if err != nil {
		return models.SolutionRecord{}, err
	}
	values := resolved.KnownValues()
	key := models.NewCacheKey(e.scope, resolved.Target, values)

	if rec, ok := e.cachedExact(key); ok {
		if err := e.store.TouchSolution(key); err != nil {
			return models.SolutionRecord{}, err
		}
		rec, _ = e.store.GetSolution(key)
		e.mem.Insert(rec)
		e.log.Debug("solution cache hit", "key", key.String(), "equation", rec.EquationText)
		return rec, nil
	}

	start := time.Now()
	res, err := e.solver.Solve(resolved.Target, values)
	if err != nil {
		return models.SolutionRecord{}, err
	}
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	rec := models.SolutionRecord{
		Key:             key,
		EquationText:    res.EquationText,
		ResultValue:     res.Value,
		AccuracyPct:     res.AccuracyPct,
		DiscoveryTimeMs: elapsed,
		Operands:        values,
	}
	accepted, err := e.store.PutSolution(rec)
	if err != nil {
		return models.SolutionRecord{}, err
	}
	current, _ := e.store.GetSolution(key)
	e.mem.Insert(current)
	e.log.Debug("solved", "key", key.String(), "equation", current.EquationText,
		"accuracy", current.AccuracyPct, "accepted", accepted)
	return current, nil
}

// resolve fills unresolved operands via the diversity selector.
func (e *Engine) resolve(problem models.ProblemSpec) (models.ProblemSpec, error) {
	missing := problem.UnresolvedCount()
	if missing == 0 {
		return problem, nil
	}

	pool := e.solutionPool()
	target := problem.Target
	fills := e.sel.Select(pool, missing, &target)
	if len(fills) < missing {
		return models.ProblemSpec{}, ErrUnresolvable
	}
	resolved, err := problem.Resolve(fills)
	if err != nil {
		return models.ProblemSpec{}, err
	}
	e.log.Debug("resolved placeholders", "count", missing, "fills", fills)
	return resolved, nil
}

// solutionPool collects cached result values worth offering as operand
// fills. Trivial values at or below 1 compose into nothing useful and
// only crowd out real history.
func (e *Engine) solutionPool() []float64 {
	var pool []float64
	for _, rec := range e.store.Solutions() {
		if v := rec.ResultValue; v > 1 && !math.IsInf(v, 0) && !math.IsNaN(v) {
			pool = append(pool, v)
		}
	}
	return pool
}

// cachedExact returns a cached record only when it is already perfect:
// anything less re-enters the search, which may do better now that the
// cache has grown.
func (e *Engine) cachedExact(key models.CacheKey) (models.SolutionRecord, bool) {
	if rec, ok := e.mem.Lookup(key); ok && rec.AccuracyPct >= 100 {
		return rec, true
	}
	if !e.mem.MightContain(key.Target) {
		return models.SolutionRecord{}, false
	}
	if rec, ok := e.store.GetSolution(key); ok && rec.AccuracyPct >= 100 {
		return rec, true
	}
	return models.SolutionRecord{}, false
}

// LearnPattern runs (or serves from cache) a pattern learning round for
// the problem class.
func (e *Engine) LearnPattern(ctx context.Context, target float64, inputs []float64) (models.PatternRecord, bool, error) {
	return e.coord.Learn(ctx, target, inputs)
}

// Improve re-runs the search for key up to attempts times, keeping the
// best outcome and reporting accuracy stability across attempts.
func (e *Engine) Improve(key models.CacheKey, attempts int) (models.SolutionRecord, statistics.ConfidenceInterval, error) {
	rec, ci, err := e.store.Improve(key, attempts, func(target float64, operands []float64) (models.SolutionRecord, error) {
		start := time.Now()
		res, err := e.solver.Solve(target, operands)
		if err != nil {
			return models.SolutionRecord{}, err
		}
		return models.SolutionRecord{
			Key:             key,
			EquationText:    res.EquationText,
			ResultValue:     res.Value,
			AccuracyPct:     res.AccuracyPct,
			DiscoveryTimeMs: float64(time.Since(start).Microseconds()) / 1000,
			Operands:        operands,
		}, nil
	})
	if err != nil {
		return models.SolutionRecord{}, statistics.ConfidenceInterval{}, err
	}
	e.mem.Insert(rec)
	return rec, ci, nil
}

// IsComplex reports whether a problem warrants pattern learning:
// a target beyond 100 in magnitude, or three or more operands.
func IsComplex(target float64, operandCount int) bool {
	return math.Abs(target) > 100 || operandCount >= 3
}
