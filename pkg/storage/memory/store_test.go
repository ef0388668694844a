package memory

import (
	"context"
	"testing"
	"time"

	"pricechart/pkg/storage/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestBucketStoreUpsert
func TestBucketStoreUpsert(t *testing.T) {
	store := NewBucketStore()
	ctx := context.Background()
	start := time.UnixMilli(60000).UTC()

	require.NoError(t, store.InsertBuckets(ctx, []*postgres.BucketRecord{
		{Symbol: "AAPL", Interval: "1m", Start: start, AvgPrice: 100, Samples: 1},
	}))
	require.NoError(t, store.InsertBuckets(ctx, []*postgres.BucketRecord{
		{Symbol: "AAPL", Interval: "1m", Start: start, AvgPrice: 101, Samples: 2},
		{Symbol: "AAPL", Interval: "5m", Start: start, AvgPrice: 101, Samples: 2},
	}))

	assert.Equal(t, 2, store.Len())

	n, err := store.DeleteOldBuckets(ctx, start.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Empty(t, store.Buckets())
}
