// Package models holds the shared data model for the solver core:
// problem specifications, cache keys, and the records persisted by the
// cache store.
package models

import "fmt"

// Operand is a single input slot in a ProblemSpec. A slot is either a
// known value or an unresolved placeholder to be filled by the selector
// before solving.
type Operand struct {
	Known bool    `json:"known"`
	Value float64 `json:"value,omitempty"`
}

// Known returns an operand carrying a concrete value.
func KnownOperand(v float64) Operand {
	return Operand{Known: true, Value: v}
}

// UnresolvedOperand returns a placeholder operand.
func UnresolvedOperand() Operand {
	return Operand{}
}

// ProblemSpec is a single solve request: a numeric target and an ordered
// list of operands, some of which may still be placeholders.
type ProblemSpec struct {
	Target   float64   `json:"target"`
	Operands []Operand `json:"operands"`
}

// NewProblem builds a fully-resolved ProblemSpec from concrete values.
func NewProblem(target float64, values ...float64) ProblemSpec {
	ops := make([]Operand, 0, len(values))
	for _, v := range values {
		ops = append(ops, KnownOperand(v))
	}
	return ProblemSpec{Target: target, Operands: ops}
}

// KnownValues returns the values of all resolved operands, in order.
func (p ProblemSpec) KnownValues() []float64 {
	vals := make([]float64, 0, len(p.Operands))
	for _, op := range p.Operands {
		if op.Known {
			vals = append(vals, op.Value)
		}
	}
	return vals
}

// UnresolvedCount reports how many placeholder operands remain.
func (p ProblemSpec) UnresolvedCount() int {
	n := 0
	for _, op := range p.Operands {
		if !op.Known {
			n++
		}
	}
	return n
}

// Resolved reports whether every operand carries a concrete value.
func (p ProblemSpec) Resolved() bool {
	return p.UnresolvedCount() == 0
}

// Resolve returns a copy of the spec with placeholders filled from fills,
// in order. It is an error to supply fewer fills than placeholders.
func (p ProblemSpec) Resolve(fills []float64) (ProblemSpec, error) {
	if len(fills) < p.UnresolvedCount() {
		return ProblemSpec{}, fmt.Errorf("resolving problem: need %d values for placeholders, have %d",
			p.UnresolvedCount(), len(fills))
	}
	out := ProblemSpec{Target: p.Target, Operands: make([]Operand, len(p.Operands))}
	next := 0
	for i, op := range p.Operands {
		if op.Known {
			out.Operands[i] = op
			continue
		}
		out.Operands[i] = KnownOperand(fills[next])
		next++
	}
	return out, nil
}

// SolutionResult is the outcome of one equation search.
type SolutionResult struct {
	EquationText string  `json:"equation_text"`
	Value        float64 `json:"value"`
	AccuracyPct  float64 `json:"accuracy_pct"`
	Exact        bool    `json:"exact"`
}
