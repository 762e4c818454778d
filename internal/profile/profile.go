// Package profile classifies problems into coarse buckets so pattern
// records learned on one problem can be reused on similar ones. The
// classification is deliberately lossy: two different problems that
// land in the same profile share a single cached pattern.
package profile

import (
	"fmt"
	"strings"
)

// MagnitudeBucket classifies the target by magnitude.
type MagnitudeBucket string

const (
	MagnitudeSmall  MagnitudeBucket = "small"  // |target| < 100
	MagnitudeMedium MagnitudeBucket = "medium" // 100 <= |target| <= 1000
	MagnitudeLarge  MagnitudeBucket = "large"  // |target| > 1000
)

// step gives the ordinal of a magnitude bucket for adjacency checks.
func (m MagnitudeBucket) step() int {
	switch m {
	case MagnitudeSmall:
		return 0
	case MagnitudeMedium:
		return 1
	case MagnitudeLarge:
		return 2
	}
	return -1
}

// OperandBucket classifies how many operands a problem carries.
type OperandBucket string

const (
	OperandsNone OperandBucket = "none"
	OperandsOne  OperandBucket = "one"
	OperandsPair OperandBucket = "pair"
	OperandsMany OperandBucket = "many" // three or more
)

// Complexity is a coarse difficulty label combining target size and
// operand count.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"  // target < 100 and at most 2 operands
	ComplexityMedium  Complexity = "medium"  // target < 1000 and at most 4 operands
	ComplexityComplex Complexity = "complex"
)

// Profile is the bucketed description of one problem class.
type Profile struct {
	Magnitude  MagnitudeBucket
	Operands   OperandBucket
	Complexity Complexity
}

// Classify buckets a concrete target and operand count.
func Classify(target float64, operandCount int) Profile {
	return Profile{
		Magnitude:  magnitudeOf(target),
		Operands:   operandsOf(operandCount),
		Complexity: complexityOf(target, operandCount),
	}
}

func magnitudeOf(target float64) MagnitudeBucket {
	abs := target
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs < 100:
		return MagnitudeSmall
	case abs <= 1000:
		return MagnitudeMedium
	default:
		return MagnitudeLarge
	}
}

func operandsOf(count int) OperandBucket {
	switch count {
	case 0:
		return OperandsNone
	case 1:
		return OperandsOne
	case 2:
		return OperandsPair
	default:
		return OperandsMany
	}
}

func complexityOf(target float64, operandCount int) Complexity {
	abs := target
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs < 100 && operandCount <= 2:
		return ComplexitySimple
	case abs < 1000 && operandCount <= 4:
		return ComplexityMedium
	default:
		return ComplexityComplex
	}
}

// Signature renders the profile as the string form pattern records are
// keyed by, e.g. "medium/pair/simple".
func (p Profile) Signature() string {
	return fmt.Sprintf("%s/%s/%s", p.Magnitude, p.Operands, p.Complexity)
}

// ParseSignature rebuilds a Profile from its Signature form.
func ParseSignature(sig string) (Profile, error) {
	parts := strings.Split(sig, "/")
	if len(parts) != 3 {
		return Profile{}, fmt.Errorf("malformed profile signature %q", sig)
	}
	p := Profile{
		Magnitude:  MagnitudeBucket(parts[0]),
		Operands:   OperandBucket(parts[1]),
		Complexity: Complexity(parts[2]),
	}
	if p.Magnitude.step() < 0 {
		return Profile{}, fmt.Errorf("unknown magnitude bucket %q", parts[0])
	}
	switch p.Operands {
	case OperandsNone, OperandsOne, OperandsPair, OperandsMany:
	default:
		return Profile{}, fmt.Errorf("unknown operand bucket %q", parts[1])
	}
	switch p.Complexity {
	case ComplexitySimple, ComplexityMedium, ComplexityComplex:
	default:
		return Profile{}, fmt.Errorf("unknown complexity %q", parts[2])
	}
	return p, nil
}

// Similar reports whether a pattern learned under other can stand in
// for p: identical operand bucket, identical complexity, and target
// magnitude at most one bucket apart.
func (p Profile) Similar(other Profile) bool {
	if p.Operands != other.Operands {
		return false
	}
	if p.Complexity != other.Complexity {
		return false
	}
	diff := p.Magnitude.step() - other.Magnitude.step()
	return diff >= -1 && diff <= 1
}
