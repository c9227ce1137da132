package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tickerdeck/pkg/config"
	"github.com/tickerdeck/pkg/models"
)

// HourlyTickerClient fetches the secondary high-resolution 24h series. It is
// preferred over the stride-sampled market chart for the 1-day span because
// it delivers exactly one point per hour.
type HourlyTickerClient struct {
	httpClient *http.Client
	baseURL    string
	pair       string
	logger     *logrus.Entry
	limiter    *limiter

	// now is swappable so tests get deterministic label timestamps.
	now func() time.Time
}

// NewHourlyTickerClient creates a new hourly ticker client
func NewHourlyTickerClient(cfg *config.HourlyTickerConfig, log *logrus.Logger) *HourlyTickerClient {
	return &HourlyTickerClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		pair:       cfg.Pair,
		logger:     log.WithField("component", "hourly-ticker"),
		limiter:    newLimiter(cfg.RateInterval),
		now:        time.Now,
	}
}

// Close releases the rate limiter.
func (c *HourlyTickerClient) Close() {
	c.limiter.close()
}

// Last24Hours fetches the hourly price changes for the last day. The upstream
// payload is ordered newest-first; points are reversed to ascending and each
// is assigned a synthetic top-of-hour timestamp counting back from now.
func (c *HourlyTickerClient) Last24Hours(ctx context.Context) ([]models.PricePoint, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/ticker/%s", c.baseURL, c.pair)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Changes []float64 `json:"changes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(payload.Changes) == 0 {
		return nil, ErrEmptySeries
	}

	end := c.now().Truncate(time.Hour)
	points := make([]models.PricePoint, len(payload.Changes))
	for i, price := range payload.Changes {
		// Changes[0] is the most recent hour; fill the slice back to front.
		idx := len(payload.Changes) - 1 - i
		points[idx] = models.PricePoint{
			Timestamp: end.Add(-time.Duration(i) * time.Hour),
			Price:     price,
		}
	}

	c.logger.WithField("points", len(points)).Debug("Fetched hourly ticker series")
	return points, nil
}
