package models

import (
	"fmt"
	"time"
)

// Interval is the chart span selected by a rendering client.
type Interval string

const (
	Interval1D  Interval = "1D"
	Interval1W  Interval = "1W"
	Interval1M  Interval = "1M"
	Interval1Y  Interval = "1Y"
	IntervalAll Interval = "ALL"
)

// ParseInterval validates a client-supplied interval string.
func ParseInterval(s string) (Interval, error) {
	switch Interval(s) {
	case Interval1D, Interval1W, Interval1M, Interval1Y, IntervalAll:
		return Interval(s), nil
	}
	return "", fmt.Errorf("unknown interval: %q", s)
}

// Days returns the upstream "days" query value for the interval.
// ALL maps to "max" per the CoinGecko market_chart contract.
func (i Interval) Days() string {
	switch i {
	case Interval1D:
		return "1"
	case Interval1W:
		return "7"
	case Interval1M:
		return "30"
	case Interval1Y:
		return "365"
	default:
		return "max"
	}
}

// PricePoint is a single (timestamp, price) observation. Immutable once
// produced by a provider.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// PerformanceSnapshot carries every derived metric for one screen. It is
// recomputed wholesale on each successful fetch cycle and replaced as a unit,
// never mutated field by field.
type PerformanceSnapshot struct {
	CurrentPrice        float64 `json:"current_price"`
	PreviousPrice       float64 `json:"previous_price"`
	PriceChange         float64 `json:"price_change"`
	PriceChangePercent  float64 `json:"price_change_percent"`
	High24h             float64 `json:"high_24h"`
	Low24h              float64 `json:"low_24h"`
	Volume24h           float64 `json:"volume_24h"`
	MarketCap           float64 `json:"market_cap"`
	YearlyChange        float64 `json:"yearly_change"`
	YearlyChangePercent float64 `json:"yearly_change_percent"`
	PriceOneYearAgo     float64 `json:"price_one_year_ago"`
}

// ChartSeries is a display-ready downsampled series. Labels and Values are
// always the same length, values ordered oldest to newest.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Validate checks the labels/values length invariant.
func (c *ChartSeries) Validate() error {
	if len(c.Labels) != len(c.Values) {
		return fmt.Errorf("chart series mismatch: %d labels, %d values", len(c.Labels), len(c.Values))
	}
	return nil
}

// FlashState is the transient delta-direction cue shown after a price move.
type FlashState string

const (
	FlashNone      FlashState = "none"
	FlashIncreased FlashState = "increased"
	FlashDecreased FlashState = "decreased"
)

// ScreenState is the complete read-only record a rendering client consumes
// for one screen. A new value is published atomically each fetch cycle so a
// renderer never observes a half-updated snapshot.
type ScreenState struct {
	Screen      string              `json:"screen"`
	Symbol      string              `json:"symbol"`
	Price       float64             `json:"price"`
	Snapshot    PerformanceSnapshot `json:"snapshot"`
	Chart       ChartSeries         `json:"chart"`
	Interval    Interval            `json:"interval"`
	Flash       FlashState          `json:"flash"`
	Loading     bool                `json:"loading"`
	Error       string              `json:"error,omitempty"`
	ChartError  string              `json:"chart_error,omitempty"`
	LastUpdated time.Time           `json:"last_updated"`
}

// HasChart reports whether the chart region is renderable.
func (s *ScreenState) HasChart() bool {
	return s.ChartError == "" && len(s.Chart.Values) > 0
}
