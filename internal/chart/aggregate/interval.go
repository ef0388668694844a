package aggregate

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInterval is returned for bucket widths other than 1 or 5 minutes.
var ErrInvalidInterval = errors.New("invalid interval")

// Interval is the bucket width in minutes.
type Interval int

const (
	Interval1Min Interval = 1
	Interval5Min Interval = 5

	// DefaultInterval is used when no interval is configured.
	DefaultInterval = Interval1Min
)

// ParseInterval accepts only the supported widths.
func ParseInterval(minutes int) (Interval, error) {
	iv := Interval(minutes)
	if !iv.IsValid() {
		return 0, fmt.Errorf("%w: %d minutes", ErrInvalidInterval, minutes)
	}
	return iv, nil
}

// IsValid checks if the interval is one of the supported widths.
func (i Interval) IsValid() bool {
	return i == Interval1Min || i == Interval5Min
}

func (i Interval) Minutes() int { return int(i) }

func (i Interval) Duration() time.Duration { return time.Duration(i) * time.Minute }

func (i Interval) Millis() int64 { return i.Duration().Milliseconds() }

// String returns "1m" or "5m".
func (i Interval) String() string { return fmt.Sprintf("%dm", int(i)) }
