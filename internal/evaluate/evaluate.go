// Package evaluate applies fixed-arity operator templates to concrete
// operand values. Templates are pure: the same inputs always produce the
// same value, and inputs outside an operator's domain produce a
// DomainError rather than a result.
package evaluate

import (
	"fmt"
	"math"
	"strconv"
)

// epsilon below which a divisor or modulus is treated as zero.
const epsilon = 1e-9

// DomainError reports an operator applied outside its valid domain, for
// example a negative square root or division by zero. Enumeration code
// consumes these by skipping the candidate; they never surface to callers.
type DomainError struct {
	Op     string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain error in %s: %s", e.Op, e.Reason)
}

// Template is one expression shape of fixed arity. OperatorCount is the
// tie-break weight used by the solver: simpler templates win ties.
type Template struct {
	ID            string
	Arity         int
	OperatorCount int

	apply func(vals []float64) (float64, error)
	print func(args []string) string
}

// Eval applies the template to vals. Non-finite results are reported as
// domain errors so enumeration can discard them uniformly.
func (t Template) Eval(vals []float64) (float64, error) {
	if len(vals) != t.Arity {
		return 0, fmt.Errorf("template %s: want %d operands, got %d", t.ID, t.Arity, len(vals))
	}
	v, err := t.apply(vals)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &DomainError{Op: t.ID, Reason: "non-finite result"}
	}
	return v, nil
}

// Render formats the equation text for vals, e.g. "121 * 6 + 51".
func (t Template) Render(vals []float64) string {
	args := make([]string, len(vals))
	for i, v := range vals {
		args[i] = FormatOperand(v)
	}
	return t.print(args)
}

// FormatOperand renders an operand value the way it appears in equation
// text: shortest round-trip form, no trailing zeros.
func FormatOperand(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ByArity returns the registered templates of the given arity, in a
// stable order. The returned slice must not be modified.
func ByArity(arity int) []Template {
	switch arity {
	case 1:
		return unaryTemplates
	case 2:
		return binaryTemplates
	case 3:
		return ternaryTemplates
	}
	return nil
}
