// Package archive writes closed buckets to a store. It never reads them back;
// the chart always starts empty.
package archive

import (
	"context"
	"time"

	"pricechart/internal/chart/aggregate"
	"pricechart/pkg/storage/postgres"

	"go.uber.org/zap"
)

// Writer persists bucket records. *postgres.PostgresClient implements it.
type Writer interface {
	InsertBuckets(ctx context.Context, records []*postgres.BucketRecord) error
	DeleteOldBuckets(ctx context.Context, before time.Time) (int64, error)
}

type Config struct {
	BufferSize int           // queued batches before new ones are dropped
	Timeout    time.Duration // per write
	Retention  time.Duration // 0 keeps everything
}

// Archiver queues buckets from the subscription loop and writes them on its
// own goroutine.
type Archiver struct {
	writer Writer
	cfg    Config
	logger *zap.Logger
	queue  chan []*postgres.BucketRecord

	// written only from Observe, which runs on the subscription loop
	marks map[string]int64
}

func New(writer Writer, cfg Config, logger *zap.Logger) *Archiver {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}

	return &Archiver{
		writer: writer,
		cfg:    cfg,
		logger: logger,
		queue:  make(chan []*postgres.BucketRecord, cfg.BufferSize),
		marks:  make(map[string]int64),
	}
}

// Observe queues every bucket that closed since the previous call for the
// same symbol and interval. The newest point is still open and is skipped.
func (a *Archiver) Observe(symbol string, interval aggregate.Interval, points []aggregate.Point) {
	if len(points) < 2 {
		return
	}
	closed := points[:len(points)-1]

	key := symbol + "|" + interval.String()
	mark, seen := a.marks[key]

	var records []*postgres.BucketRecord
	for _, p := range closed {
		if seen && p.BucketStart <= mark {
			continue
		}
		records = append(records, ToBucketRecord(symbol, interval, p))
	}
	if len(records) == 0 {
		return
	}
	a.marks[key] = closed[len(closed)-1].BucketStart

	select {
	case a.queue <- records:
	default:
		a.logger.Warn("archive queue full, dropping buckets",
			zap.String("symbol", symbol), zap.Int("count", len(records)))
	}
}

// Run drains the queue until ctx is done, then flushes what is left.
func (a *Archiver) Run(ctx context.Context) error {
	var prune <-chan time.Time
	if a.cfg.Retention > 0 {
		ticker := time.NewTicker(pruneEvery(a.cfg.Retention))
		defer ticker.Stop()
		prune = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			a.flush()
			return nil
		case records := <-a.queue:
			a.write(records)
		case now := <-prune:
			a.prune(now)
		}
	}
}

func (a *Archiver) flush() {
	for {
		select {
		case records := <-a.queue:
			a.write(records)
		default:
			return
		}
	}
}

func (a *Archiver) write(records []*postgres.BucketRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Timeout)
	defer cancel()

	if err := a.writer.InsertBuckets(ctx, records); err != nil {
		a.logger.Warn("failed to archive buckets", zap.Int("count", len(records)), zap.Error(err))
		return
	}
	a.logger.Debug("archived buckets", zap.Int("count", len(records)))
}

func (a *Archiver) prune(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Timeout)
	defer cancel()

	n, err := a.writer.DeleteOldBuckets(ctx, now.Add(-a.cfg.Retention))
	if err != nil {
		a.logger.Warn("failed to prune archived buckets", zap.Error(err))
		return
	}
	if n > 0 {
		a.logger.Info("pruned archived buckets", zap.Int64("count", n))
	}
}

func pruneEvery(retention time.Duration) time.Duration {
	if every := retention / 10; every > time.Minute {
		return every
	}
	return time.Minute
}

// ToBucketRecord converts an aggregated point into a BucketRecord for DB insertion.
func ToBucketRecord(symbol string, interval aggregate.Interval, p aggregate.Point) *postgres.BucketRecord {
	return &postgres.BucketRecord{
		Symbol:   symbol,
		Interval: interval.String(),
		Start:    time.UnixMilli(p.BucketStart).UTC(),
		AvgPrice: p.AvgPrice,
		Samples:  p.Samples,
	}
}
