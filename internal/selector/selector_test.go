package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestSelectSpreadsAcrossRange(t *testing.T) {
	s := New()

	got := s.Select([]float64{5, 80, 121, 123, 300}, 3, ptr(777))
	require.Len(t, got, 3)

	// Picks are distinct and anchored at the pool extremes.
	assert.Equal(t, []float64{5, 121, 300}, got)
}

func TestSelectSinglePickTakesMedian(t *testing.T) {
	s := New()

	got := s.Select([]float64{10, 20, 30, 40, 50}, 1, nil)
	assert.Equal(t, []float64{30}, got)
}

func TestSelectTwoPicksTakeExtremes(t *testing.T) {
	s := New()

	got := s.Select([]float64{7, 3, 99, 42}, 2, nil)
	assert.Equal(t, []float64{3, 99}, got)
}

func TestSelectDeduplicatesNearEqualValues(t *testing.T) {
	s := New()

	got := s.Select([]float64{10, 10 + 1e-12, 20}, 2, nil)
	assert.Equal(t, []float64{10, 20}, got)
}

func TestSelectSmallTargetDropsOvershoots(t *testing.T) {
	s := New()

	// Target 50: only values under 100 survive the filter.
	got := s.Select([]float64{5, 30, 250, 900}, 2, ptr(50))
	assert.Equal(t, []float64{5, 30}, got)
}

func TestSelectLargeTargetKeepsMultipliersAndBases(t *testing.T) {
	s := New()

	// Target 5000: 3 survives as a multiplier, 400 as a base; 0.5 is too
	// small and 9000 overshoots 1.5x the target.
	got := s.Select([]float64{0.5, 3, 400, 9000}, 2, ptr(5000))
	assert.Equal(t, []float64{3, 400}, got)
}

func TestSelectRelaxesFilterBeforeRepeating(t *testing.T) {
	s := New()

	// Only one value passes the small-target filter, but two distinct
	// values exist: the filter is dropped rather than repeating 30.
	got := s.Select([]float64{30, 500}, 2, ptr(50))
	assert.Equal(t, []float64{30, 500}, got)
}

func TestSelectRepeatsOnlyAsLastResort(t *testing.T) {
	s := New()

	got := s.Select([]float64{8}, 3, ptr(20))
	assert.Equal(t, []float64{8, 8, 8}, got)
}

func TestSelectEmptyPool(t *testing.T) {
	s := New()

	assert.Nil(t, s.Select(nil, 2, ptr(10)))
	assert.Nil(t, s.Select([]float64{1, 2}, 0, nil))
}

func TestDistributeInteriorRanksAreEven(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	got := distribute(sorted, 5)
	assert.Equal(t, []float64{1, 3, 5, 7, 9}, got)
}
