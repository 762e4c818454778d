// Package store persists solution and pattern records in a single JSON
// file. The whole document is rewritten through a temp-file rename after
// every accepted mutation, so readers observe either the previous or the
// new store, never a partial write. A corrupt or missing file at open is
// downgraded to an empty store with a logged warning.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/seekerlab/seeker/internal/models"
	"github.com/seekerlab/seeker/internal/statistics"
)

// documentVersion identifies the on-disk layout.
const documentVersion = 1

// ErrUnknownKey is returned when an operation references a key with no
// live record.
var ErrUnknownKey = errors.New("store: no record for key")

// document is the on-disk shape: two top-level mappings plus a version.
type document struct {
	Version   int                                       `json:"version"`
	Solutions map[models.CacheKey]models.SolutionRecord `json:"solutions"`
	Patterns  map[string]models.PatternRecord           `json:"patterns"`
}

func emptyDocument() document {
	return document{
		Version:   documentVersion,
		Solutions: map[models.CacheKey]models.SolutionRecord{},
		Patterns:  map[string]models.PatternRecord{},
	}
}

// Store is the persistent solution/pattern cache. Single writer,
// multiple readers; all methods are safe for concurrent use.
type Store struct {
	path string
	log  *slog.Logger

	mu  sync.RWMutex
	doc document
}

// Open loads the store file at path, or starts empty when the file is
// missing, unreadable, or fails schema validation. Load problems are
// warnings, never errors: losing a cache is recoverable, crashing on
// startup is not.
func Open(path string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{path: path, log: log, doc: emptyDocument()}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("cache file unreadable, starting empty", "path", path, "error", err)
		}
		return s
	}
	if problems := validateDocumentBytes(data); len(problems) > 0 {
		log.Warn("cache file failed validation, starting empty",
			"path", path, "problems", problems)
		return s
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn("cache file corrupt, starting empty", "path", path, "error", err)
		return s
	}
	if doc.Solutions == nil {
		doc.Solutions = map[models.CacheKey]models.SolutionRecord{}
	}
	if doc.Patterns == nil {
		doc.Patterns = map[string]models.PatternRecord{}
	}
	doc.Version = documentVersion
	s.doc = doc
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// GetSolution returns the live record for key, if any.
func (s *Store) GetSolution(key models.CacheKey) (models.SolutionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.doc.Solutions[key]
	return rec, ok
}

// PutSolution stores rec under its key if no record exists yet or rec
// beats the existing one (strictly higher accuracy, or equal accuracy
// with lower discovery time). Returns whether rec was accepted. An
// accepted put is flushed to disk before returning.
func (s *Store) PutSolution(rec models.SolutionRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.doc.Solutions[rec.Key]; ok {
		if !rec.Better(old) {
			return false, nil
		}
		// Replacement keeps the original discovery date and use count.
		rec.CreatedAt = old.CreatedAt
		rec.TimesUsed = old.TimesUsed
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.LastUsed.IsZero() {
		rec.LastUsed = rec.CreatedAt
	}
	s.doc.Solutions[rec.Key] = rec
	if err := s.persistLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// TouchSolution records a cache hit: bumps the use count and last-used
// time, then flushes.
func (s *Store) TouchSolution(key models.CacheKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.doc.Solutions[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	rec.TimesUsed++
	rec.LastUsed = time.Now().UTC()
	s.doc.Solutions[key] = rec
	return s.persistLocked()
}

// Solutions returns all live solution records ordered by key.
func (s *Store) Solutions() []models.SolutionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SolutionRecord, 0, len(s.doc.Solutions))
	for _, rec := range s.doc.Solutions {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.String() < out[j].Key.String()
	})
	return out
}

// GetPattern returns the cached pattern for an exact signature.
func (s *Store) GetPattern(signature string) (models.PatternRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.doc.Patterns[signature]
	return rec, ok
}

// PutPattern stores the winner of a learning round under its signature,
// replacing any previous winner, and flushes.
func (s *Store) PutPattern(rec models.PatternRecord) error {
	if !rec.PatternType.Valid() {
		return fmt.Errorf("store: invalid pattern type %q", rec.PatternType)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.doc.Patterns[rec.ProblemSignature]; ok {
		rec.CreatedAt = old.CreatedAt
		rec.TimesUsed = old.TimesUsed
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.LastUsed.IsZero() {
		rec.LastUsed = rec.CreatedAt
	}
	s.doc.Patterns[rec.ProblemSignature] = rec
	return s.persistLocked()
}

// TouchPattern records a pattern cache hit and flushes.
func (s *Store) TouchPattern(signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.doc.Patterns[signature]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, signature)
	}
	rec.TimesUsed++
	rec.LastUsed = time.Now().UTC()
	s.doc.Patterns[signature] = rec
	return s.persistLocked()
}

// Patterns returns all cached pattern records ordered by signature.
func (s *Store) Patterns() []models.PatternRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PatternRecord, 0, len(s.doc.Patterns))
	for _, rec := range s.doc.Patterns {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProblemSignature < out[j].ProblemSignature
	})
	return out
}

// SolveFunc re-runs an equation search during an improvement cycle.
type SolveFunc func(target float64, operands []float64) (models.SolutionRecord, error)

// Improve re-runs the search for key attempts times and keeps the best
// outcome, recording the best discovery time. The returned interval
// summarizes accuracy stability across the attempts. The record under
// key only changes if an attempt beats it.
func (s *Store) Improve(key models.CacheKey, attempts int, run SolveFunc) (models.SolutionRecord, statistics.ConfidenceInterval, error) {
	existing, ok := s.GetSolution(key)
	if !ok {
		return models.SolutionRecord{}, statistics.ConfidenceInterval{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if attempts < 1 {
		attempts = 1
	}

	samples := make([]float64, 0, attempts)
	best := existing
	for i := 0; i < attempts; i++ {
		rec, err := run(key.Target, existing.Operands)
		if err != nil {
			return models.SolutionRecord{}, statistics.ConfidenceInterval{}, fmt.Errorf("improve attempt %d: %w", i+1, err)
		}
		rec.Key = key
		samples = append(samples, rec.AccuracyPct)
		if rec.Better(best) {
			best = rec
		}
	}

	ci := statistics.BootstrapCI(samples, 0.95)
	if best.Better(existing) {
		if _, err := s.PutSolution(best); err != nil {
			return models.SolutionRecord{}, ci, err
		}
	}
	current, _ := s.GetSolution(key)
	return current, ci, nil
}

// Stats summarizes the store for reporting.
type Stats struct {
	Solutions     int
	Patterns      int
	TotalHits     uint64
	MeanAccuracy  float64
	FileSizeBytes int64
}

// Summarize computes store-level statistics.
func (s *Store) Summarize() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Solutions: len(s.doc.Solutions), Patterns: len(s.doc.Patterns)}
	accs := make([]float64, 0, len(s.doc.Solutions))
	for _, rec := range s.doc.Solutions {
		st.TotalHits += uint64(rec.TimesUsed)
		accs = append(accs, rec.AccuracyPct)
	}
	for _, rec := range s.doc.Patterns {
		st.TotalHits += uint64(rec.TimesUsed)
	}
	st.MeanAccuracy = statistics.Mean(accs)
	if info, err := os.Stat(s.path); err == nil {
		st.FileSizeBytes = info.Size()
	}
	return st
}

// Clear drops every record and rewrites the file as an empty store.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = emptyDocument()
	return s.persistLocked()
}

// persistLocked rewrites the whole document atomically. Callers hold mu.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		os.Remove(tmpName)
		return fmt.Errorf("writing store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing store file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}
