package models

import "time"

// SolutionRecord is a cached equation search result. At most one live
// record exists per CacheKey; Better decides replacement.
type SolutionRecord struct {
	Key             CacheKey  `json:"key"`
	EquationText    string    `json:"equation_text"`
	ResultValue     float64   `json:"result_value"`
	AccuracyPct     float64   `json:"accuracy_pct"`
	DiscoveryTimeMs float64   `json:"discovery_time_ms"`
	// Operands keeps the resolved inputs so improvement cycles can re-run
	// the identical search without reconstructing them from the signature.
	Operands  []float64 `json:"operands"`
	TimesUsed uint32    `json:"times_used"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
}

// Better reports whether r should replace old: strictly higher accuracy,
// or equal accuracy with a strictly lower discovery time.
func (r SolutionRecord) Better(old SolutionRecord) bool {
	if r.AccuracyPct != old.AccuracyPct {
		return r.AccuracyPct > old.AccuracyPct
	}
	return r.DiscoveryTimeMs < old.DiscoveryTimeMs
}

// PatternType names a control-flow strategy shape.
type PatternType string

const (
	PatternCountLoop        PatternType = "count_loop"
	PatternRangeLoop        PatternType = "range_loop"
	PatternWhileLoop        PatternType = "while_loop"
	PatternConditionalChain PatternType = "conditional_chain"
	PatternNestedStructure  PatternType = "nested_structure"
	PatternHybrid           PatternType = "hybrid"
)

// Valid reports whether t is one of the known pattern types.
func (t PatternType) Valid() bool {
	switch t {
	case PatternCountLoop, PatternRangeLoop, PatternWhileLoop,
		PatternConditionalChain, PatternNestedStructure, PatternHybrid:
		return true
	}
	return false
}

// PatternRecord is the cached winner of one pattern-learning round,
// keyed by a coarse problem signature so similar problems share it.
type PatternRecord struct {
	ProblemSignature string      `json:"problem_signature"`
	PatternType      PatternType `json:"pattern_type"`
	Structure        string      `json:"structure"`
	SuccessRate      float64     `json:"success_rate"`
	AvgIterations    float64     `json:"avg_iterations"`
	ExecutionTimeMs  float64     `json:"execution_time_ms"`
	TimesUsed        uint32      `json:"times_used"`
	CreatedAt        time.Time   `json:"created_at"`
	LastUsed         time.Time   `json:"last_used"`
}
