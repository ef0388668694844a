// Package series holds the chart state owned by one subscription: the raw
// buffer, the aggregated points and the projection derived from them.
package series

import (
	"time"

	"pricechart/internal/chart/aggregate"
	"pricechart/internal/chart/memorystore"
	"pricechart/internal/chart/projection"
)

// DefaultMaxPoints is the number of buckets kept when Config.MaxPoints is zero.
const DefaultMaxPoints = 50

// rawPerPoint bounds raw retention relative to the output size.
const rawPerPoint = 10

type Config struct {
	Interval  aggregate.Interval // defaults to aggregate.DefaultInterval
	MaxPoints int                // defaults to DefaultMaxPoints
	Location  *time.Location     // label zone, defaults to time.Local
}

// Series is not safe for concurrent use.
type Series struct {
	interval  aggregate.Interval
	maxPoints int
	loc       *time.Location

	symbol  string
	history *memorystore.History
	points  []aggregate.Point
	chart   projection.Chart
}

func New(cfg Config) *Series {
	if !cfg.Interval.IsValid() {
		cfg.Interval = aggregate.DefaultInterval
	}
	if cfg.MaxPoints <= 0 {
		cfg.MaxPoints = DefaultMaxPoints
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Series{
		interval:  cfg.Interval,
		maxPoints: cfg.MaxPoints,
		loc:       cfg.Location,
		history:   memorystore.NewHistory(rawPerPoint * cfg.MaxPoints),
		points:    []aggregate.Point{},
		chart:     projection.Chart{Labels: []string{}, Datasets: []projection.Dataset{}},
	}
}

// Reset starts a fresh history for symbol with an empty chart.
func (s *Series) Reset(symbol string) {
	s.symbol = symbol
	s.history.Reset()
	s.points = []aggregate.Point{}
	s.chart = projection.Empty(symbol, s.interval)
}

// ApplyTick records the tick and rebuilds the points.
func (s *Series) ApplyTick(t memorystore.Tick) []aggregate.Point {
	s.history.Add(t.Sample())
	return s.Recompute()
}

// Recompute rebuilds points and chart from the raw history.
func (s *Series) Recompute() []aggregate.Point {
	s.points = aggregate.Aggregate(s.history.Samples(), s.interval, s.maxPoints, s.loc)
	s.chart = projection.Project(s.points, s.symbol, s.interval)
	return s.Points()
}

// SetInterval changes the bucket width and re-buckets the raw history.
func (s *Series) SetInterval(iv aggregate.Interval) error {
	if !iv.IsValid() {
		return aggregate.ErrInvalidInterval
	}
	s.interval = iv
	if s.symbol == "" && s.history.Len() == 0 {
		// nothing subscribed yet, the chart stays blank
		return nil
	}
	s.Recompute()
	return nil
}

// ClearSymbol detaches the series from its symbol. Buffers and the current
// chart are kept; the next rebuild is labeled without a symbol.
func (s *Series) ClearSymbol() {
	s.symbol = ""
}

func (s *Series) Symbol() string { return s.symbol }

func (s *Series) Interval() aggregate.Interval { return s.interval }

func (s *Series) MaxPoints() int { return s.maxPoints }

func (s *Series) RawLen() int { return s.history.Len() }

// Points returns a copy of the aggregated points.
func (s *Series) Points() []aggregate.Point {
	cp := make([]aggregate.Point, len(s.points))
	copy(cp, s.points)
	return cp
}

// Chart returns a deep copy of the projection.
func (s *Series) Chart() projection.Chart {
	out := projection.Chart{
		Labels:   append([]string{}, s.chart.Labels...),
		Datasets: make([]projection.Dataset, len(s.chart.Datasets)),
	}
	for i, ds := range s.chart.Datasets {
		ds.Data = append([]float64{}, ds.Data...)
		out.Datasets[i] = ds
	}
	return out
}
