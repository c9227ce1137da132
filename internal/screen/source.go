package screen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tickerdeck/internal/provider"
	"github.com/tickerdeck/internal/series"
	"github.com/tickerdeck/pkg/models"
)

// DataSource is one upstream strategy backing a screen. Fetch runs every
// price tick; Chart runs on interval changes and piggybacked on price ticks.
type DataSource interface {
	Name() string
	Symbol() string
	Fetch(ctx context.Context) (price float64, snap models.PerformanceSnapshot, err error)
	Chart(ctx context.Context, interval models.Interval, points int) (models.ChartSeries, error)
}

// SpotSource polls the simple price endpoint and self-derives every metric
// from a single 365-day series, trading approximate 24h windows for one
// fewer call against a rate-limited API.
type SpotSource struct {
	gecko  *provider.CoinGeckoClient
	hourly *provider.HourlyTickerClient
	logger *logrus.Entry
}

// NewSpotSource creates the self-derived crypto source.
func NewSpotSource(gecko *provider.CoinGeckoClient, hourly *provider.HourlyTickerClient, log *logrus.Logger) *SpotSource {
	return &SpotSource{
		gecko:  gecko,
		hourly: hourly,
		logger: log.WithField("component", "source-spot"),
	}
}

func (s *SpotSource) Name() string   { return "spot" }
func (s *SpotSource) Symbol() string { return "BTC" }

func (s *SpotSource) Fetch(ctx context.Context) (float64, models.PerformanceSnapshot, error) {
	price, err := s.gecko.SimplePrice(ctx)
	if err != nil {
		return 0, models.PerformanceSnapshot{}, fmt.Errorf("spot price: %w", err)
	}

	year, err := s.gecko.MarketChart(ctx, models.Interval1Y)
	if err != nil {
		// The spot price alone is still a valid cycle; metrics degrade to
		// just the current price.
		s.logger.WithError(err).Warn("Yearly series unavailable, snapshot degraded")
		return price, models.PerformanceSnapshot{CurrentPrice: price}, nil
	}

	return price, series.SnapshotFromSeries(year, price), nil
}

// Chart builds the display series. For the 1-day span the hourly ticker is
// preferred; the stride-sampled market chart is the fallback. First success
// wins.
func (s *SpotSource) Chart(ctx context.Context, interval models.Interval, points int) (models.ChartSeries, error) {
	if interval == models.Interval1D {
		if raw, err := s.hourly.Last24Hours(ctx); err == nil {
			return series.BuildChart(raw, interval, len(raw)), nil
		} else {
			s.logger.WithError(err).Warn("Hourly ticker failed, falling back to market chart")
		}
	}

	raw, err := s.gecko.MarketChart(ctx, interval)
	if err != nil {
		return models.ChartSeries{}, fmt.Errorf("market chart: %w", err)
	}
	return series.BuildChart(raw, interval, points), nil
}

// DetailSource polls the detailed coin endpoint: 24h figures come straight
// from provider-precomputed market data, only the yearly figures are derived
// from a series fetch.
type DetailSource struct {
	gecko  *provider.CoinGeckoClient
	logger *logrus.Entry
}

// NewDetailSource creates the provider-detailed crypto source.
func NewDetailSource(gecko *provider.CoinGeckoClient, log *logrus.Logger) *DetailSource {
	return &DetailSource{
		gecko:  gecko,
		logger: log.WithField("component", "source-detail"),
	}
}

func (s *DetailSource) Name() string   { return "detail" }
func (s *DetailSource) Symbol() string { return "BTC" }

func (s *DetailSource) Fetch(ctx context.Context) (float64, models.PerformanceSnapshot, error) {
	detail, err := s.gecko.Detail(ctx)
	if err != nil {
		return 0, models.PerformanceSnapshot{}, fmt.Errorf("coin detail: %w", err)
	}

	cur := s.gecko.Currency()
	d := series.Detail{
		CurrentPrice:         detail.MarketData.CurrentPrice[cur],
		High24h:              detail.MarketData.High24h[cur],
		Low24h:               detail.MarketData.Low24h[cur],
		Volume24h:            detail.MarketData.TotalVolume[cur],
		MarketCap:            detail.MarketData.MarketCap[cur],
		PriceChange24h:       detail.MarketData.PriceChange24h,
		PriceChangePercent24: detail.MarketData.PriceChangePercentage24h,
	}

	year, err := s.gecko.MarketChart(ctx, models.Interval1Y)
	if err != nil {
		s.logger.WithError(err).Warn("Yearly series unavailable, yearly metrics omitted")
		year = nil
	}

	return d.CurrentPrice, series.SnapshotFromDetail(d, year), nil
}

func (s *DetailSource) Chart(ctx context.Context, interval models.Interval, points int) (models.ChartSeries, error) {
	raw, err := s.gecko.MarketChart(ctx, interval)
	if err != nil {
		return models.ChartSeries{}, fmt.Errorf("market chart: %w", err)
	}
	return series.BuildChart(raw, interval, points), nil
}

// EquitySource polls a daily-resolution equity series keyed by calendar
// date. One upstream call per cycle feeds both the snapshot and the chart;
// the fetched series is kept for the chart to reuse within the cycle.
type EquitySource struct {
	alpha  *provider.AlphaVantageClient
	logger *logrus.Entry

	mu        sync.Mutex
	lastDaily []models.PricePoint
	fetchedAt time.Time
}

// NewEquitySource creates the daily equity source.
func NewEquitySource(alpha *provider.AlphaVantageClient, log *logrus.Logger) *EquitySource {
	return &EquitySource{
		alpha:  alpha,
		logger: log.WithField("component", "source-equity"),
	}
}

func (s *EquitySource) Name() string   { return "equity" }
func (s *EquitySource) Symbol() string { return s.alpha.Symbol() }

func (s *EquitySource) Fetch(ctx context.Context) (float64, models.PerformanceSnapshot, error) {
	daily, err := s.alpha.DailySeries(ctx)
	if err != nil {
		return 0, models.PerformanceSnapshot{}, err
	}

	s.mu.Lock()
	s.lastDaily = daily
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	snap := series.SnapshotFromDaily(daily)
	return snap.CurrentPrice, snap, nil
}

func (s *EquitySource) Chart(ctx context.Context, interval models.Interval, points int) (models.ChartSeries, error) {
	daily, err := s.cachedDaily()
	if err != nil {
		daily, err = s.alpha.DailySeries(ctx)
		if err != nil {
			return models.ChartSeries{}, err
		}
		s.mu.Lock()
		s.lastDaily = daily
		s.fetchedAt = time.Now()
		s.mu.Unlock()
	}

	return series.BuildChart(clipDaily(daily, interval), interval, points), nil
}

// cachedDaily returns the series fetched earlier in the same cycle, sparing
// a second call against the 5-per-minute free tier.
func (s *EquitySource) cachedDaily() ([]models.PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lastDaily) == 0 || time.Since(s.fetchedAt) > time.Minute {
		return nil, errors.New("no fresh daily series")
	}
	return s.lastDaily, nil
}

// clipDaily trims a daily series to the selected span, counting back from
// the most recent session.
func clipDaily(daily []models.PricePoint, interval models.Interval) []models.PricePoint {
	if len(daily) == 0 {
		return daily
	}
	var back time.Duration
	switch interval {
	case models.Interval1D, models.Interval1W:
		back = 7 * 24 * time.Hour
	case models.Interval1M:
		back = 30 * 24 * time.Hour
	case models.Interval1Y:
		back = 365 * 24 * time.Hour
	default:
		return daily
	}

	cutoff := daily[len(daily)-1].Timestamp.Add(-back)
	for i, p := range daily {
		if !p.Timestamp.Before(cutoff) {
			return daily[i:]
		}
	}
	return daily
}
