// Package memory is a two-level read accelerator in front of the
// persistent store: a bloom filter for fast rejection of targets never
// solved before, and a small LRU of the most recently touched records.
// Both levels only cache; the store on disk remains authoritative.
package memory

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/seekerlab/seeker/internal/models"
)

// HotTierSize is how many records the LRU keeps resident.
const HotTierSize = 100

// falsePositiveRate for the bloom filter. At 1% a miss is answered
// without touching the LRU or the store 99 times out of 100.
const falsePositiveRate = 0.01

// Tiered fronts the store with a bloom filter and an LRU hot tier.
// Safe for concurrent use.
type Tiered struct {
	mu     sync.Mutex
	hot    *lru.Cache[models.CacheKey, models.SolutionRecord]
	filter *bloom.BloomFilter

	hotHits  uint64
	rejected uint64
	misses   uint64
	inserted uint64
}

// New sizes the bloom filter for the expected number of cached targets.
func New(expectedTargets int) (*Tiered, error) {
	if expectedTargets < 1 {
		expectedTargets = 1
	}
	hot, err := lru.New[models.CacheKey, models.SolutionRecord](HotTierSize)
	if err != nil {
		return nil, err
	}
	return &Tiered{
		hot:    hot,
		filter: bloom.NewWithEstimates(uint(expectedTargets), falsePositiveRate),
	}, nil
}

// Warm seeds the accelerator from existing records, typically the
// store's contents at startup. Only the bloom filter is seeded; the hot
// tier fills on use.
func (t *Tiered) Warm(records []models.SolutionRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range records {
		t.filter.Add(targetFingerprint(rec.Key.Target))
	}
}

// Lookup checks the bloom filter first, then the hot tier. A bloom
// rejection is definitive; a hot-tier miss only means the caller should
// fall through to the store.
func (t *Tiered) Lookup(key models.CacheKey) (models.SolutionRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.filter.Test(targetFingerprint(key.Target)) {
		t.rejected++
		return models.SolutionRecord{}, false
	}
	if rec, ok := t.hot.Get(key); ok {
		t.hotHits++
		return rec, true
	}
	t.misses++
	return models.SolutionRecord{}, false
}

// MightContain reports whether any record for the target could exist.
// False means certainly absent.
func (t *Tiered) MightContain(target float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filter.Test(targetFingerprint(target))
}

// Insert records rec in both tiers.
func (t *Tiered) Insert(rec models.SolutionRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filter.Add(targetFingerprint(rec.Key.Target))
	t.hot.Add(rec.Key, rec)
	t.inserted++
}

// Stats reports accelerator effectiveness counters.
type Stats struct {
	HotHits       uint64
	BloomRejected uint64
	Misses        uint64
	Inserted      uint64
	HotResident   int
}

func (t *Tiered) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		HotHits:       t.hotHits,
		BloomRejected: t.rejected,
		Misses:        t.misses,
		Inserted:      t.inserted,
		HotResident:   t.hot.Len(),
	}
}

// targetFingerprint collapses a target to a centi-precision fingerprint
// for the bloom filter. Targets closer than 0.01 share a fingerprint,
// which only costs an occasional extra store read.
func targetFingerprint(target float64) []byte {
	v := uint32(int64(math.Round(target * 100)))
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}
