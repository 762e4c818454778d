package store

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// ExportArchive writes a zstd-compressed snapshot of the store document
// to w. The snapshot is the same JSON shape as the backing file, so an
// archive from one machine imports cleanly on another.
func (s *Store) ExportArchive(w io.Writer) error {
	s.mu.RLock()
	data, err := json.Marshal(s.doc)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("opening zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close() //nolint:errcheck
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return enc.Close()
}

// ImportArchive merges a snapshot produced by ExportArchive into the
// store. Solutions merge under the replace-only-if-better rule;
// patterns merge keeping whichever record was used more recently. The
// merged store is flushed once at the end.
func (s *Store) ImportArchive(r io.Reader) (int, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("opening zstd reader: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return 0, fmt.Errorf("reading snapshot: %w", err)
	}
	if problems := validateDocumentBytes(data); len(problems) > 0 {
		return 0, fmt.Errorf("snapshot failed validation: %v", problems)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("decoding snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := 0
	for key, rec := range doc.Solutions {
		if old, ok := s.doc.Solutions[key]; ok && !rec.Better(old) {
			continue
		}
		s.doc.Solutions[key] = rec
		merged++
	}
	for sig, rec := range doc.Patterns {
		if old, ok := s.doc.Patterns[sig]; ok && old.LastUsed.After(rec.LastUsed) {
			continue
		}
		s.doc.Patterns[sig] = rec
		merged++
	}
	if merged == 0 {
		return 0, nil
	}
	if err := s.persistLocked(); err != nil {
		return 0, err
	}
	return merged, nil
}
