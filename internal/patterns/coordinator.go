package patterns

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seekerlab/seeker/internal/models"
	"github.com/seekerlab/seeker/internal/profile"
	"github.com/seekerlab/seeker/internal/store"
)

// Result is one variant's outcome in a learning round.
type Result struct {
	Variant         Variant
	Success         bool
	Iterations      uint32
	ExecutionTimeMs float64
	Correctness     float64
	FoundValue      *float64
}

// Score trades correctness off against cost: every 10ms of runtime or
// every 2 iterations cancels one correctness point.
func (r Result) Score() float64 {
	return r.Correctness*100 - r.ExecutionTimeMs*0.1 - float64(r.Iterations)*0.5
}

// Best picks the round winner: maximum score, ties broken by lowest
// execution time.
func Best(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Score() > best.Score() ||
			(r.Score() == best.Score() && r.ExecutionTimeMs < best.ExecutionTimeMs) {
			best = r
		}
	}
	return best, true
}

// Options configure a Coordinator. Zero values take defaults.
type Options struct {
	// Workers bounds how many variants run at once.
	Workers int
	// VariantTimeout is the per-variant execution budget. A variant
	// that exceeds it scores zero correctness; the round continues.
	VariantTimeout time.Duration
	// VerifyThreshold is the success-rate percentage a cached winner
	// must reach on a verification probe to be served without a fresh
	// round.
	VerifyThreshold float64
	// Tuning holds per-variant overrides keyed by variant name.
	Tuning map[string]Tuning
	Logger *slog.Logger
}

// Coordinator drives learning rounds and serves cached winners.
type Coordinator struct {
	store *store.Store
	opts  Options
	log   *slog.Logger
}

// NewCoordinator wires a coordinator to its backing store.
func NewCoordinator(st *store.Store, opts Options) *Coordinator {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.VariantTimeout <= 0 {
		opts.VariantTimeout = 250 * time.Millisecond
	}
	if opts.VerifyThreshold <= 0 {
		opts.VerifyThreshold = 100
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{store: st, opts: opts, log: log}
}

// Learn returns the winning pattern for the problem's profile, either
// from cache (second return true) or by racing a fresh round. Cached
// winners are verified with a single probe run first; a winner whose
// probe success rate falls below the configured threshold triggers a
// fresh round instead of being served stale.
func (c *Coordinator) Learn(ctx context.Context, target float64, inputs []float64) (models.PatternRecord, bool, error) {
	prof := profile.Classify(target, len(inputs))
	sig := prof.Signature()

	lookup := func(s string) bool {
		_, ok := c.store.GetPattern(s)
		return ok
	}
	variants := menu(prof, lookup, c.opts.Tuning)

	if rec, ok := c.store.GetPattern(sig); ok {
		if c.verify(ctx, rec, variants, target, inputs) {
			if err := c.store.TouchPattern(sig); err != nil {
				return models.PatternRecord{}, false, err
			}
			rec, _ = c.store.GetPattern(sig)
			c.log.Debug("pattern cache hit", "signature", sig, "structure", rec.Structure)
			return rec, true, nil
		}
		c.log.Debug("cached pattern failed verification, relearning",
			"signature", sig, "structure", rec.Structure)
	} else if rec, ok := profile.FindSimilar(prof, c.store.Patterns()); ok {
		if c.verify(ctx, rec, variants, target, inputs) {
			if err := c.store.TouchPattern(rec.ProblemSignature); err != nil {
				return models.PatternRecord{}, false, err
			}
			rec, _ = c.store.GetPattern(rec.ProblemSignature)
			c.log.Debug("similar pattern cache hit",
				"signature", sig, "matched", rec.ProblemSignature, "structure", rec.Structure)
			return rec, true, nil
		}
	}

	rec, err := c.runRound(ctx, sig, variants, target, inputs)
	if err != nil {
		return models.PatternRecord{}, false, err
	}
	return rec, false, nil
}

// verify re-runs a cached winner once and checks its success rate
// against the threshold. An unknown structure name fails verification,
// forcing a refresh.
func (c *Coordinator) verify(ctx context.Context, rec models.PatternRecord, variants []Variant, target float64, inputs []float64) bool {
	v, ok := variantByName(variants, rec.Structure)
	if !ok {
		return false
	}
	probe := c.runOne(ctx, v, target, inputs)
	return probe.Correctness*100 >= c.opts.VerifyThreshold
}

// runRound races all variants, scores them, and caches the winner.
func (c *Coordinator) runRound(ctx context.Context, sig string, variants []Variant, target float64, inputs []float64) (models.PatternRecord, error) {
	c.log.Debug("pattern round generated",
		"signature", sig, "variants", len(variants), "target", target)

	results := make([]Result, len(variants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for i, v := range variants {
		g.Go(func() error {
			results[i] = c.runOne(gctx, v, target, inputs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.PatternRecord{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.PatternRecord{}, err
	}

	best, _ := Best(results)
	c.log.Debug("pattern round scored",
		"signature", sig, "winner", best.Variant.Name, "score", best.Score(),
		"correctness", best.Correctness, "time_ms", best.ExecutionTimeMs,
		"iterations", best.Iterations)

	rec := models.PatternRecord{
		ProblemSignature: sig,
		PatternType:      best.Variant.Type,
		Structure:        best.Variant.Name,
		SuccessRate:      best.Correctness * 100,
		AvgIterations:    float64(best.Iterations),
		ExecutionTimeMs:  best.ExecutionTimeMs,
		TimesUsed:        1,
	}
	// Losing rounds below the quality gate still report a winner, they
	// just never pollute the cache.
	if best.Correctness >= 0.8 {
		if err := c.store.PutPattern(rec); err != nil {
			return models.PatternRecord{}, err
		}
		c.log.Debug("pattern round cached", "signature", sig, "structure", rec.Structure)
	}
	return rec, nil
}

// runOne executes a single variant under its timeout. Exceeding the
// budget scores zero correctness; the partial execution is discarded.
func (c *Coordinator) runOne(ctx context.Context, v Variant, target float64, inputs []float64) Result {
	vctx, cancel := context.WithTimeout(ctx, c.opts.VariantTimeout)
	defer cancel()

	start := time.Now()
	exec, err := v.run(vctx, v, target, inputs)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		c.log.Debug("pattern variant timed out", "variant", v.Name, "error", err)
		return Result{Variant: v, ExecutionTimeMs: elapsed}
	}
	return Result{
		Variant:         v,
		Success:         exec.Correctness >= 1,
		Iterations:      exec.Iterations,
		ExecutionTimeMs: elapsed,
		Correctness:     exec.Correctness,
		FoundValue:      exec.FoundValue,
	}
}
