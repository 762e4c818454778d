package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seekerlab/seeker/internal/models"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "cache.json"), nil)
}

func record(scope string, target float64, operands []float64, eq string, acc, ms float64) models.SolutionRecord {
	return models.SolutionRecord{
		Key:             models.NewCacheKey(scope, target, operands),
		EquationText:    eq,
		ResultValue:     target,
		AccuracyPct:     acc,
		DiscoveryTimeMs: ms,
		Operands:        operands,
	}
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	s := tempStore(t)
	assert.Empty(t, s.Solutions())
	assert.Empty(t, s.Patterns())
}

func TestOpenCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := Open(path, nil)
	assert.Empty(t, s.Solutions())

	// The store stays usable after the bad load.
	accepted, err := s.PutSolution(record("main", 56, []float64{1, 55}, "1 + 55", 100, 2))
	require.NoError(t, err)
	assert.True(t, accepted)
}

func TestOpenSchemaInvalidFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	// Valid JSON, wrong shape: accuracy out of range.
	bad := `{"version":1,"patterns":{},"solutions":{"main|56|1,55":{"key":"main|56|1,55","equation_text":"1 + 55","result_value":56,"accuracy_pct":250}}}`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0644))

	s := Open(path, nil)
	assert.Empty(t, s.Solutions())
}

func TestPutSolutionReplaceOnlyIfBetter(t *testing.T) {
	s := tempStore(t)

	r1 := record("main", 56, []float64{1, 55}, "1 + 55", 100, 5)
	accepted, err := s.PutSolution(r1)
	require.NoError(t, err)
	require.True(t, accepted)

	// Lower accuracy is rejected.
	worse := record("main", 56, []float64{1, 55}, "55", 98, 1)
	accepted, err = s.PutSolution(worse)
	require.NoError(t, err)
	assert.False(t, accepted)

	got, ok := s.GetSolution(r1.Key)
	require.True(t, ok)
	assert.Equal(t, "1 + 55", got.EquationText)

	// Equal accuracy with lower discovery time replaces.
	faster := record("main", 56, []float64{1, 55}, "1 + 55", 100, 2)
	accepted, err = s.PutSolution(faster)
	require.NoError(t, err)
	assert.True(t, accepted)

	got, ok = s.GetSolution(r1.Key)
	require.True(t, ok)
	assert.Equal(t, 2.0, got.DiscoveryTimeMs)
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s := Open(path, nil)

	_, err := s.PutSolution(record("main", 56, []float64{1, 2, 3, 55}, "1 + 55", 100, 3))
	require.NoError(t, err)
	_, err = s.PutSolution(record("main", 777, []float64{121, 6, 51}, "121 * 6 + 51", 100, 7))
	require.NoError(t, err)
	require.NoError(t, s.PutPattern(models.PatternRecord{
		ProblemSignature: "medium/many/medium",
		PatternType:      models.PatternHybrid,
		Structure:        "cache_lookup+fallback",
		SuccessRate:      100,
	}))

	reloaded := Open(path, nil)
	assert.Equal(t, s.Solutions(), reloaded.Solutions())
	assert.Equal(t, s.Patterns(), reloaded.Patterns())
}

func TestTouchSolution(t *testing.T) {
	s := tempStore(t)
	r := record("main", 56, []float64{1, 55}, "1 + 55", 100, 3)
	_, err := s.PutSolution(r)
	require.NoError(t, err)

	before, _ := s.GetSolution(r.Key)
	require.NoError(t, s.TouchSolution(r.Key))

	after, ok := s.GetSolution(r.Key)
	require.True(t, ok)
	assert.Equal(t, before.TimesUsed+1, after.TimesUsed)
	assert.False(t, after.LastUsed.Before(before.LastUsed))

	err = s.TouchSolution(models.NewCacheKey("main", 1, []float64{1}))
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestPutPatternRejectsUnknownType(t *testing.T) {
	s := tempStore(t)
	err := s.PutPattern(models.PatternRecord{
		ProblemSignature: "small/pair/simple",
		PatternType:      "spiral_loop",
	})
	assert.Error(t, err)
}

func TestImproveKeepsBest(t *testing.T) {
	s := tempStore(t)
	r := record("main", 90, []float64{9, 10}, "9 * 10", 95, 8)
	_, err := s.PutSolution(r)
	require.NoError(t, err)

	calls := 0
	got, ci, err := s.Improve(r.Key, 3, func(target float64, operands []float64) (models.SolutionRecord, error) {
		calls++
		assert.Equal(t, 90.0, target)
		assert.Equal(t, []float64{9, 10}, operands)
		return record("main", 90, operands, "9 * 10", 100, float64(10-calls)), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 100.0, got.AccuracyPct)
	assert.Equal(t, 7.0, got.DiscoveryTimeMs)
	assert.Equal(t, 100.0, ci.Mean)

	_, _, err = s.Improve(models.NewCacheKey("main", 5, []float64{5}), 2, nil)
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestImproveNeverDowngrades(t *testing.T) {
	s := tempStore(t)
	r := record("main", 90, []float64{9, 10}, "9 * 10", 100, 2)
	_, err := s.PutSolution(r)
	require.NoError(t, err)

	got, _, err := s.Improve(r.Key, 2, func(target float64, operands []float64) (models.SolutionRecord, error) {
		return record("main", 90, operands, "9 + 10", 50, 1), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "9 * 10", got.EquationText)
	assert.Equal(t, 100.0, got.AccuracyPct)
}

func TestClear(t *testing.T) {
	s := tempStore(t)
	_, err := s.PutSolution(record("main", 56, []float64{1, 55}, "1 + 55", 100, 3))
	require.NoError(t, err)

	require.NoError(t, s.Clear())
	assert.Empty(t, s.Solutions())

	reloaded := Open(s.Path(), nil)
	assert.Empty(t, reloaded.Solutions())
}

func TestSummarize(t *testing.T) {
	s := tempStore(t)
	_, err := s.PutSolution(record("main", 56, []float64{1, 55}, "1 + 55", 100, 3))
	require.NoError(t, err)
	_, err = s.PutSolution(record("main", 90, []float64{9, 10}, "9 * 10", 80, 3))
	require.NoError(t, err)
	require.NoError(t, s.TouchSolution(models.NewCacheKey("main", 56, []float64{1, 55})))

	st := s.Summarize()
	assert.Equal(t, 2, st.Solutions)
	assert.Equal(t, 0, st.Patterns)
	assert.Equal(t, uint64(1), st.TotalHits)
	assert.InDelta(t, 90.0, st.MeanAccuracy, 1e-9)
	assert.Positive(t, st.FileSizeBytes)
}

func TestExportImportArchive(t *testing.T) {
	src := tempStore(t)
	_, err := src.PutSolution(record("main", 777, []float64{121, 6, 51}, "121 * 6 + 51", 100, 7))
	require.NoError(t, err)
	require.NoError(t, src.PutPattern(models.PatternRecord{
		ProblemSignature: "medium/many/medium",
		PatternType:      models.PatternHybrid,
		SuccessRate:      100,
		LastUsed:         time.Now().UTC(),
	}))

	var buf bytes.Buffer
	require.NoError(t, src.ExportArchive(&buf))

	dst := tempStore(t)
	merged, err := dst.ImportArchive(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, merged)
	assert.Equal(t, src.Solutions(), dst.Solutions())
}

func TestImportArchiveKeepsBetterLocalRecord(t *testing.T) {
	src := tempStore(t)
	_, err := src.PutSolution(record("main", 90, []float64{9, 10}, "9 + 10", 50, 1))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.ExportArchive(&buf))

	dst := tempStore(t)
	local := record("main", 90, []float64{9, 10}, "9 * 10", 100, 2)
	_, err = dst.PutSolution(local)
	require.NoError(t, err)

	merged, err := dst.ImportArchive(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 0, merged)

	got, ok := dst.GetSolution(local.Key)
	require.True(t, ok)
	assert.Equal(t, "9 * 10", got.EquationText)
}

func TestImportArchiveRejectsGarbage(t *testing.T) {
	dst := tempStore(t)
	_, err := dst.ImportArchive(bytes.NewReader([]byte("not a zstd stream")))
	assert.Error(t, err)
}
