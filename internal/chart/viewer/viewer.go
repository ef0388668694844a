// Package viewer wires the feed, the subscription manager and the optional
// bucket archive into one running chart.
package viewer

import (
	"context"
	"fmt"
	"time"

	"pricechart/config"
	"pricechart/internal/chart/aggregate"
	"pricechart/internal/chart/archive"
	"pricechart/internal/chart/series"
	"pricechart/internal/chart/subscription"
	"pricechart/pkg/finnhub"
	"pricechart/pkg/storage/memory"
	"pricechart/pkg/storage/postgres"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Viewer struct {
	cfg      *config.Config
	logger   *zap.Logger
	manager  *subscription.Manager
	archiver *archive.Archiver
	closeDB  func() error
}

// New builds the viewer from cfg. Nothing connects until Run.
func New(cfg *config.Config, logger *zap.Logger) (*Viewer, error) {
	interval, err := aggregate.ParseInterval(cfg.Chart.Interval)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Chart.TimeLocation()
	if err != nil {
		return nil, err
	}

	endpoint, err := cfg.Feed.Endpoint(cfg.Log.Environment)
	if err != nil {
		return nil, err
	}

	v := &Viewer{cfg: cfg, logger: logger}

	var opts []subscription.Option
	if cfg.Archive.Enabled {
		writer, err := v.openArchive()
		if err != nil {
			return nil, err
		}
		v.archiver = archive.New(writer, archive.Config{
			BufferSize: cfg.Archive.BufferSize,
			Timeout:    cfg.Archive.Timeout,
			Retention:  cfg.Archive.Retention,
		}, logger.Named("archive"))
		opts = append(opts, subscription.WithRecorder(v.archiver))
	}

	newTransport := func() subscription.Transport {
		return finnhub.NewWSClient(endpoint, cfg.Feed.HandshakeTimeout, logger.Named("feed"))
	}

	v.manager = subscription.New(series.Config{
		Interval:  interval,
		MaxPoints: cfg.Chart.MaxPoints,
		Location:  loc,
	}, newTransport, logger, opts...)

	return v, nil
}

func (v *Viewer) openArchive() (archive.Writer, error) {
	switch v.cfg.Archive.Backend {
	case "memory":
		return memory.NewBucketStore(), nil
	case "", "postgres":
		client, err := postgres.InitializeAndMigrateBucketRecord(v.cfg.Postgres, v.cfg.Log.Environment, v.cfg.Archive.CreateDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		v.closeDB = client.Close
		return client, nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", v.cfg.Archive.Backend)
	}
}

// Manager exposes the subscription commands, e.g. to the console.
func (v *Viewer) Manager() *subscription.Manager {
	return v.manager
}

// Run subscribes to the configured symbol and blocks until ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	if v.closeDB != nil {
		defer func() {
			if err := v.closeDB(); err != nil {
				v.logger.Warn("failed to close DB", zap.Error(err))
			}
		}()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return v.manager.Run(ctx)
	})

	if v.archiver != nil {
		g.Go(func() error {
			return v.archiver.Run(ctx)
		})
	}

	if v.cfg.Chart.ReportEvery > 0 {
		g.Go(func() error {
			v.report(ctx, v.cfg.Chart.ReportEvery)
			return nil
		})
	}

	if symbol := v.cfg.Chart.Symbol; symbol != "" {
		g.Go(func() error {
			v.manager.Subscribe(symbol)
			return nil
		})
	}

	return g.Wait()
}

// report periodically logs the newest chart point for visibility.
func (v *Viewer) report(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		st := v.manager.State()
		if st.Symbol == "" {
			continue
		}

		label, price, ok := st.Chart.Last()
		if !ok {
			v.logger.Info("waiting for trades",
				zap.String("symbol", st.Symbol), zap.Bool("connected", st.Connected))
			continue
		}
		v.logger.Info("current price",
			zap.String("symbol", st.Symbol),
			zap.Stringer("interval", st.Interval),
			zap.String("time", label),
			zap.Float64("avg", price),
			zap.Int("points", len(st.Points)),
			zap.Int("raw", st.RawLen),
		)
	}
}
