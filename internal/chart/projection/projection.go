package projection

import (
	"fmt"

	"pricechart/internal/chart/aggregate"
)

const lineColor = "#06b6d4"

// Chart is the labeled series handed to the renderer.
type Chart struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one line on the chart.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	Fill            bool      `json:"fill"`
	BorderColor     string    `json:"borderColor"`
	BackgroundColor string    `json:"backgroundColor"`
	Tension         float64   `json:"tension"`
	PointRadius     int       `json:"pointRadius"`
}

// Label returns the dataset title, e.g. "AAPL Price (5min intervals)".
func Label(symbol string, interval aggregate.Interval) string {
	return fmt.Sprintf("%s Price (%dmin intervals)", symbol, interval.Minutes())
}

// Empty is the chart shown right after a (re)subscribe.
func Empty(symbol string, interval aggregate.Interval) Chart {
	return Project(nil, symbol, interval)
}

// Project maps points positionally to labels and values.
func Project(points []aggregate.Point, symbol string, interval aggregate.Interval) Chart {
	labels := make([]string, len(points))
	data := make([]float64, len(points))
	for i, p := range points {
		labels[i] = p.DisplayTime
		data[i] = p.AvgPrice
	}

	return Chart{
		Labels: labels,
		Datasets: []Dataset{{
			Label:           Label(symbol, interval),
			Data:            data,
			Fill:            false,
			BorderColor:     lineColor,
			BackgroundColor: lineColor,
			Tension:         0.4,
			PointRadius:     2,
		}},
	}
}

// Last returns the newest label and value, ok is false for an empty chart.
func (c Chart) Last() (label string, value float64, ok bool) {
	if len(c.Labels) == 0 || len(c.Datasets) == 0 || len(c.Datasets[0].Data) == 0 {
		return "", 0, false
	}
	return c.Labels[len(c.Labels)-1], c.Datasets[0].Data[len(c.Datasets[0].Data)-1], true
}
