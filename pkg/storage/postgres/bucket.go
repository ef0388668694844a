package postgres

import (
	"context"
	"time"

	"gorm.io/gorm/clause"
)

// InsertBuckets upserts records; a bucket seen again gets its average and
// sample count replaced.
func (p *PostgresClient) InsertBuckets(ctx context.Context, records []*BucketRecord) error {
	if len(records) == 0 {
		return nil
	}

	return p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "symbol"},
			{Name: "interval"},
			{Name: "start"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"avg_price", "samples", "updated_at"}),
	}).Create(records).Error
}

func (p *PostgresClient) GetBucket(ctx context.Context, symbol, interval string, start time.Time) (*BucketRecord, error) {
	var bucket BucketRecord
	err := p.DB.WithContext(ctx).
		Where("symbol = ? AND interval = ? AND start = ?", symbol, interval, start).
		First(&bucket).Error

	if err != nil {
		return nil, err
	}
	return &bucket, nil
}

// DeleteOldBuckets removes buckets that started before the cutoff.
func (p *PostgresClient) DeleteOldBuckets(ctx context.Context, before time.Time) (int64, error) {
	tx := p.DB.WithContext(ctx).
		Where("start < ?", before).
		Delete(&BucketRecord{})
	return tx.RowsAffected, tx.Error
}
