package evaluate

import (
	"fmt"
	"math"
)

// binaryOp is one of the six primitive operators. Precedence drives
// parenthesization when operators are composed into ternary templates.
type binaryOp struct {
	name string
	sym  string
	prec int
	eval func(a, b float64) (float64, error)
}

var primitiveOps = []binaryOp{
	{name: "add", sym: "+", prec: 1, eval: func(a, b float64) (float64, error) { return a + b, nil }},
	{name: "sub", sym: "-", prec: 1, eval: func(a, b float64) (float64, error) { return a - b, nil }},
	{name: "mul", sym: "*", prec: 2, eval: func(a, b float64) (float64, error) { return a * b, nil }},
	{name: "div", sym: "/", prec: 2, eval: divide},
	{name: "pow", sym: "^", prec: 3, eval: power},
	{name: "mod", sym: "%", prec: 2, eval: modulo},
}

func divide(a, b float64) (float64, error) {
	if math.Abs(b) < epsilon {
		return 0, &DomainError{Op: "div", Reason: "division by zero"}
	}
	return a / b, nil
}

// power keeps the original search bounds: bases above 100 in magnitude or
// exponents outside [0, 10] explode the value range without ever helping
// a bounded target search.
func power(a, b float64) (float64, error) {
	if math.Abs(a) > 100 {
		return 0, &DomainError{Op: "pow", Reason: "base out of range"}
	}
	if b < 0 || b > 10 {
		return 0, &DomainError{Op: "pow", Reason: "exponent out of range"}
	}
	return math.Pow(a, b), nil
}

func modulo(a, b float64) (float64, error) {
	if math.Abs(b) < epsilon {
		return 0, &DomainError{Op: "mod", Reason: "modulo by zero"}
	}
	return math.Mod(a, b), nil
}

func factorial(a float64) (float64, error) {
	n := math.Round(a)
	if math.Abs(a-n) > epsilon {
		return 0, &DomainError{Op: "fact", Reason: "non-integer input"}
	}
	if n < 0 || n > 12 {
		return 0, &DomainError{Op: "fact", Reason: "input outside 0..12"}
	}
	out := 1.0
	for i := 2.0; i <= n; i++ {
		out *= i
	}
	return out, nil
}

var unaryTemplates = []Template{
	{
		ID: "identity", Arity: 1, OperatorCount: 0,
		apply: func(v []float64) (float64, error) { return v[0], nil },
		print: func(a []string) string { return a[0] },
	},
	{
		ID: "sqrt", Arity: 1, OperatorCount: 1,
		apply: func(v []float64) (float64, error) {
			if v[0] < 0 {
				return 0, &DomainError{Op: "sqrt", Reason: "negative input"}
			}
			return math.Sqrt(v[0]), nil
		},
		print: func(a []string) string { return fmt.Sprintf("sqrt(%s)", a[0]) },
	},
	{
		ID: "abs", Arity: 1, OperatorCount: 1,
		apply: func(v []float64) (float64, error) { return math.Abs(v[0]), nil },
		print: func(a []string) string { return fmt.Sprintf("abs(%s)", a[0]) },
	},
	{
		ID: "square", Arity: 1, OperatorCount: 1,
		apply: func(v []float64) (float64, error) { return v[0] * v[0], nil },
		print: func(a []string) string { return fmt.Sprintf("%s ^ 2", a[0]) },
	},
	{
		ID: "cube", Arity: 1, OperatorCount: 1,
		apply: func(v []float64) (float64, error) { return v[0] * v[0] * v[0], nil },
		print: func(a []string) string { return fmt.Sprintf("%s ^ 3", a[0]) },
	},
	{
		ID: "fact", Arity: 1, OperatorCount: 1,
		apply: func(v []float64) (float64, error) { return factorial(v[0]) },
		print: func(a []string) string { return fmt.Sprintf("%s!", a[0]) },
	},
	{
		ID: "ceil", Arity: 1, OperatorCount: 1,
		apply: func(v []float64) (float64, error) { return math.Ceil(v[0]), nil },
		print: func(a []string) string { return fmt.Sprintf("ceil(%s)", a[0]) },
	},
	{
		ID: "floor", Arity: 1, OperatorCount: 1,
		apply: func(v []float64) (float64, error) { return math.Floor(v[0]), nil },
		print: func(a []string) string { return fmt.Sprintf("floor(%s)", a[0]) },
	},
}

var binaryTemplates = buildBinaryTemplates()

func buildBinaryTemplates() []Template {
	out := make([]Template, 0, len(primitiveOps)+2)
	for _, op := range primitiveOps {
		op := op
		out = append(out, Template{
			ID: op.name, Arity: 2, OperatorCount: 1,
			apply: func(v []float64) (float64, error) { return op.eval(v[0], v[1]) },
			print: func(a []string) string { return fmt.Sprintf("%s %s %s", a[0], op.sym, a[1]) },
		})
	}
	out = append(out, Template{
		ID: "avg2", Arity: 2, OperatorCount: 1,
		apply: func(v []float64) (float64, error) { return (v[0] + v[1]) / 2, nil },
		print: func(a []string) string { return fmt.Sprintf("avg(%s, %s)", a[0], a[1]) },
	})
	out = append(out, Template{
		ID: "gmean2", Arity: 2, OperatorCount: 1,
		apply: func(v []float64) (float64, error) {
			if v[0] < 0 || v[1] < 0 {
				return 0, &DomainError{Op: "gmean2", Reason: "negative input"}
			}
			return math.Sqrt(v[0] * v[1]), nil
		},
		print: func(a []string) string { return fmt.Sprintf("gmean(%s, %s)", a[0], a[1]) },
	})
	return out
}

var ternaryTemplates = buildTernaryTemplates()

// buildTernaryTemplates composes every pair of primitive operators in
// both association orders: (a op1 b) op2 c and a op1 (b op2 c).
// Rendering adds parentheses only where operator precedence would
// otherwise change the reading.
func buildTernaryTemplates() []Template {
	var out []Template
	for _, first := range primitiveOps {
		for _, second := range primitiveOps {
			first, second := first, second
			out = append(out, Template{
				ID: fmt.Sprintf("ltr_%s_%s", first.name, second.name), Arity: 3, OperatorCount: 2,
				apply: func(v []float64) (float64, error) {
					left, err := first.eval(v[0], v[1])
					if err != nil {
						return 0, err
					}
					return second.eval(left, v[2])
				},
				print: func(a []string) string {
					if first.prec < second.prec {
						return fmt.Sprintf("(%s %s %s) %s %s", a[0], first.sym, a[1], second.sym, a[2])
					}
					return fmt.Sprintf("%s %s %s %s %s", a[0], first.sym, a[1], second.sym, a[2])
				},
			})
			out = append(out, Template{
				ID: fmt.Sprintf("grp_%s_%s", first.name, second.name), Arity: 3, OperatorCount: 2,
				apply: func(v []float64) (float64, error) {
					right, err := second.eval(v[1], v[2])
					if err != nil {
						return 0, err
					}
					return first.eval(v[0], right)
				},
				print: func(a []string) string {
					if second.prec > first.prec {
						return fmt.Sprintf("%s %s %s %s %s", a[0], first.sym, a[1], second.sym, a[2])
					}
					return fmt.Sprintf("%s %s (%s %s %s)", a[0], first.sym, a[1], second.sym, a[2])
				},
			})
		}
	}
	out = append(out, Template{
		ID: "avg3", Arity: 3, OperatorCount: 1,
		apply: func(v []float64) (float64, error) { return (v[0] + v[1] + v[2]) / 3, nil },
		print: func(a []string) string { return fmt.Sprintf("avg(%s, %s, %s)", a[0], a[1], a[2]) },
	})
	out = append(out, Template{
		ID: "gmean3", Arity: 3, OperatorCount: 1,
		apply: func(v []float64) (float64, error) {
			if v[0] < 0 || v[1] < 0 || v[2] < 0 {
				return 0, &DomainError{Op: "gmean3", Reason: "negative input"}
			}
			return math.Cbrt(v[0] * v[1] * v[2]), nil
		},
		print: func(a []string) string { return fmt.Sprintf("gmean(%s, %s, %s)", a[0], a[1], a[2]) },
	})
	return out
}
