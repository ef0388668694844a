package memory

import (
	"context"
	"sync"
	"time"

	"pricechart/pkg/storage/postgres"
)

// BucketStore keeps archived buckets in memory, keyed like the postgres
// unique index. Used when no database is configured and in tests.
type BucketStore struct {
	mu      sync.Mutex
	buckets map[bucketKey]postgres.BucketRecord
}

type bucketKey struct {
	symbol   string
	interval string
	start    int64
}

func NewBucketStore() *BucketStore {
	return &BucketStore{
		buckets: make(map[bucketKey]postgres.BucketRecord),
	}
}

// InsertBuckets upserts records.
func (m *BucketStore) InsertBuckets(_ context.Context, records []*postgres.BucketRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.buckets[bucketKey{r.Symbol, r.Interval, r.Start.UnixMilli()}] = *r
	}
	return nil
}

// DeleteOldBuckets removes buckets that started before the cutoff.
func (m *BucketStore) DeleteOldBuckets(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, r := range m.buckets {
		if r.Start.Before(before) {
			delete(m.buckets, k)
			n++
		}
	}
	return n, nil
}

// Buckets returns a copy of every stored record.
func (m *BucketStore) Buckets() []postgres.BucketRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]postgres.BucketRecord, 0, len(m.buckets))
	for _, r := range m.buckets {
		out = append(out, r)
	}
	return out
}

func (m *BucketStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}
