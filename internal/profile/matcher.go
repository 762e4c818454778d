package profile

import (
	"github.com/seekerlab/seeker/internal/models"
)

// FindSimilar scans cached pattern records for the closest profile when
// no exact signature match exists. Records whose signature fails to
// parse are skipped rather than treated as errors: old store files may
// carry signatures from a previous scheme.
//
// Among qualifying records the most recently used wins; ties fall back
// to highest use count, then lowest signature, so the result is stable
// for a given record set.
func FindSimilar(want Profile, records []models.PatternRecord) (models.PatternRecord, bool) {
	var best models.PatternRecord
	found := false

	for _, rec := range records {
		got, err := ParseSignature(rec.ProblemSignature)
		if err != nil {
			continue
		}
		if got == want {
			continue // exact matches are the caller's fast path, not ours
		}
		if !want.Similar(got) {
			continue
		}
		if !found || moreRecent(rec, best) {
			best = rec
			found = true
		}
	}
	return best, found
}

func moreRecent(a, b models.PatternRecord) bool {
	if !a.LastUsed.Equal(b.LastUsed) {
		return a.LastUsed.After(b.LastUsed)
	}
	if a.TimesUsed != b.TimesUsed {
		return a.TimesUsed > b.TimesUsed
	}
	return a.ProblemSignature < b.ProblemSignature
}
