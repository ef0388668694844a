package postgres_test

import (
	"context"
	"testing"
	"time"

	"pricechart/pkg/storage/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestBucketUpsert
func TestBucketUpsert(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	start := time.Now().UTC().Truncate(time.Minute).Add(-time.Hour)
	record := &postgres.BucketRecord{
		Symbol:   "TEST:UPSERT",
		Interval: "1m",
		Start:    start,
		AvgPrice: 101,
		Samples:  2,
	}
	require.NoError(t, client.InsertBuckets(ctx, []*postgres.BucketRecord{record}))

	again := &postgres.BucketRecord{
		Symbol:   "TEST:UPSERT",
		Interval: "1m",
		Start:    start,
		AvgPrice: 102,
		Samples:  3,
	}
	require.NoError(t, client.InsertBuckets(ctx, []*postgres.BucketRecord{again}))

	got, err := client.GetBucket(ctx, "TEST:UPSERT", "1m", start)
	require.NoError(t, err)
	assert.Equal(t, 102.0, got.AvgPrice)
	assert.Equal(t, 3, got.Samples)

	deleted, err := client.DeleteOldBuckets(ctx, start.Add(time.Minute))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))

	_, err = client.GetBucket(ctx, "TEST:UPSERT", "1m", start)
	assert.Error(t, err)
}

// go test -v --run TestInsertBucketsEmpty
func TestInsertBucketsEmpty(t *testing.T) {
	client := testClient(t)
	require.NoError(t, client.InsertBuckets(context.Background(), nil))
}
