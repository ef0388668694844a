package aggregate

import (
	"sort"
	"time"

	"pricechart/internal/chart/memorystore"
)

// DisplayLayout is the hour:minute label format.
const DisplayLayout = "15:04"

// Point is the average price of one bucket.
type Point struct {
	BucketStart int64   `json:"bucketStart"` // ms since epoch, multiple of the interval
	DisplayTime string  `json:"displayTime"`
	AvgPrice    float64 `json:"avgPrice"`
	Samples     int     `json:"samples"`
}

// BucketStart maps a timestamp to the start of its bucket. Division floors,
// so negative timestamps land in the bucket below them. A non-positive width
// returns timestamp unchanged.
func BucketStart(timestamp, intervalMillis int64) int64 {
	if intervalMillis <= 0 {
		return timestamp
	}
	q := timestamp / intervalMillis
	if timestamp%intervalMillis < 0 {
		q--
	}
	return q * intervalMillis
}

// Aggregate groups samples into buckets of the given interval and averages
// each bucket. The result is ascending by BucketStart and holds at most
// maxPoints of the newest buckets. A nil loc formats labels in time.Local.
// An invalid interval yields no points.
func Aggregate(samples []memorystore.RawSample, interval Interval, maxPoints int, loc *time.Location) []Point {
	if len(samples) == 0 || !interval.IsValid() {
		return []Point{}
	}
	if loc == nil {
		loc = time.Local
	}

	type sum struct {
		total float64
		n     int
	}

	width := interval.Millis()
	grouped := make(map[int64]*sum)
	for _, s := range samples {
		key := BucketStart(s.Timestamp, width)
		b, ok := grouped[key]
		if !ok {
			b = &sum{}
			grouped[key] = b
		}
		b.total += s.Price
		b.n++
	}

	points := make([]Point, 0, len(grouped))
	for key, b := range grouped {
		points = append(points, Point{
			BucketStart: key,
			DisplayTime: time.UnixMilli(key).In(loc).Format(DisplayLayout),
			AvgPrice:    b.total / float64(b.n),
			Samples:     b.n,
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].BucketStart < points[j].BucketStart })

	if maxPoints > 0 && len(points) > maxPoints {
		points = points[len(points)-maxPoints:]
	}

	return points
}
