package uniqueness

import (
	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"

	"chat-proof-oracle/pkgs/fingerprint"
	"chat-proof-oracle/pkgs/models"
)

// Stats is the new/seen split for one submission
type Stats struct {
	NewCount   int
	TotalCount int
	// LocalHits counts fingerprints already observed by this process,
	// cheaper to detect than a filter probe. Observability only; the
	// historical filter stays authoritative.
	LocalHits int
}

// Ratio is the uniqueness dimension: new over total, 0.0 for an empty
// submission so the score is always defined
func (s Stats) Ratio() float64 {
	if s.TotalCount == 0 {
		return 0.0
	}
	return float64(s.NewCount) / float64(s.TotalCount)
}

// Accountant classifies every content fingerprint of a submission against
// the historical filter and merges them in
type Accountant struct {
	hasher     *fingerprint.Hasher
	localCache *lru.Cache[string, struct{}]
}

// NewAccountant creates an accountant with a process-local LRU fast path.
// localCacheSize <= 0 disables the local cache.
func NewAccountant(hasher *fingerprint.Hasher, localCacheSize int) (*Accountant, error) {
	a := &Accountant{hasher: hasher}
	if localCacheSize > 0 {
		cache, err := lru.New[string, struct{}](localCacheSize)
		if err != nil {
			return nil, err
		}
		a.localCache = cache
	}
	return a, nil
}

// Process walks every content item of every chat in submission order,
// classifies each fingerprint as new or seen against the filter, and inserts
// all of them. Repeats of the same text within one submission count as seen
// after the first occurrence.
func (a *Accountant) Process(data *models.SourceData, filter *Filter) Stats {
	var stats Stats

	for _, chat := range data.Chats {
		for _, item := range chat.Contents {
			fp := a.hasher.Fingerprint(item.Text)
			stats.TotalCount++

			if a.localCache != nil {
				key := fp.Hex()
				if a.localCache.Contains(key) {
					stats.LocalHits++
				} else {
					a.localCache.Add(key, struct{}{})
				}
			}

			if !filter.Contains(fp) {
				stats.NewCount++
			}
			filter.Insert(fp)
		}
	}

	log.Debugf("Uniqueness accounting: new=%d total=%d local_hits=%d fp_rate=%.6f",
		stats.NewCount, stats.TotalCount, stats.LocalHits, filter.EstimatedFPRate())
	return stats
}
