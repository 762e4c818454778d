package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CacheKey identifies a cached solution: the owning scope, the target,
// and a signature of the sorted operand values. Two solves over the same
// operands in a different order share a key.
type CacheKey struct {
	Scope      string  `json:"scope"`
	Target     float64 `json:"target"`
	OperandSig string  `json:"operand_sig"`
}

// NewCacheKey builds a key from concrete operand values. Operands are
// sorted so the signature is order-insensitive.
func NewCacheKey(scope string, target float64, operands []float64) CacheKey {
	return CacheKey{
		Scope:      scope,
		Target:     target,
		OperandSig: OperandSignature(operands),
	}
}

// OperandSignature renders sorted operand values as a stable string.
// Values are formatted at full precision; values equal within floating
// epsilon format identically, so they collapse in the signature.
func OperandSignature(operands []float64) string {
	sorted := make([]float64, len(operands))
	copy(sorted, operands)
	sort.Float64s(sorted)

	parts := make([]string, 0, len(sorted))
	for _, v := range sorted {
		parts = append(parts, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return strings.Join(parts, ",")
}

// String renders the key in its canonical scope|target|operands form.
func (k CacheKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.Scope, strconv.FormatFloat(k.Target, 'g', -1, 64), k.OperandSig)
}

// MarshalText lets CacheKey serve directly as a JSON map key.
func (k CacheKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the canonical scope|target|operands form.
func (k *CacheKey) UnmarshalText(text []byte) error {
	parts := strings.SplitN(string(text), "|", 3)
	if len(parts) != 3 {
		return fmt.Errorf("malformed cache key %q", text)
	}
	target, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return fmt.Errorf("malformed cache key target %q: %w", parts[1], err)
	}
	k.Scope = parts[0]
	k.Target = target
	k.OperandSig = parts[2]
	return nil
}
