package postgres

import "time"

// BucketRecord is a closed aggregation bucket written by the archive.
type BucketRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	Symbol   string    `gorm:"type:text;not null;index:idx_bucket_symbol;index:idx_symbol_interval_start,unique"`
	Interval string    `gorm:"type:varchar(10);not null;index:idx_symbol_interval_start,unique"`
	Start    time.Time `gorm:"not null;index:idx_symbol_interval_start,unique"`

	AvgPrice float64 `gorm:"type:numeric;not null"`
	Samples  int     `gorm:"not null"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the default table name for GORM.
func (BucketRecord) TableName() string {
	return "price_bucket"
}
