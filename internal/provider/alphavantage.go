package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tickerdeck/pkg/config"
	"github.com/tickerdeck/pkg/models"
)

// AlphaVantageClient fetches daily equity time series from Alpha Vantage.
//
// The API reports its own failures inside HTTP 200 bodies: an unknown symbol
// comes back as {"Error Message": ...} and a throttled key as {"Note": ...}
// or {"Information": ...}. Detection is by key presence only.
type AlphaVantageClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	symbol     string
	logger     *logrus.Entry
	limiter    *limiter
}

// dailyBar is one date entry of a TIME_SERIES_DAILY payload. All numeric
// fields arrive as strings.
type dailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// NewAlphaVantageClient creates a new Alpha Vantage client
func NewAlphaVantageClient(cfg *config.AlphaVantageConfig, log *logrus.Logger) *AlphaVantageClient {
	return &AlphaVantageClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		symbol:     cfg.Symbol,
		logger:     log.WithField("component", "alpha-vantage"),
		limiter:    newLimiter(cfg.RateInterval),
	}
}

// Close releases the rate limiter.
func (c *AlphaVantageClient) Close() {
	c.limiter.close()
}

// Symbol returns the configured equity symbol.
func (c *AlphaVantageClient) Symbol() string {
	return c.symbol
}

// DailySeries fetches the daily close series for the configured symbol,
// ascending by calendar date.
func (c *AlphaVantageClient) DailySeries(ctx context.Context) ([]models.PricePoint, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s?function=TIME_SERIES_DAILY&symbol=%s&apikey=%s",
		c.baseURL, c.symbol, c.apiKey)

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

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if err := softError(payload); err != nil {
		c.logger.WithError(err).WithField("symbol", c.symbol).Warn("Alpha Vantage soft error")
		return nil, err
	}

	raw, ok := payload["Time Series (Daily)"]
	if !ok {
		return nil, ErrMalformedSeries
	}

	var series map[string]dailyBar
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSeries, err)
	}
	if len(series) == 0 {
		return nil, ErrMalformedSeries
	}

	dates := make([]string, 0, len(series))
	for d := range series {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	points := make([]models.PricePoint, 0, len(dates))
	for _, d := range dates {
		ts, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date key %q", ErrMalformedSeries, d)
		}
		closePrice, err := strconv.ParseFloat(series[d].Close, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad close %q on %s", ErrMalformedSeries, series[d].Close, d)
		}
		points = append(points, models.PricePoint{Timestamp: ts, Price: closePrice})
	}

	c.logger.WithFields(logrus.Fields{
		"symbol": c.symbol,
		"points": len(points),
	}).Debug("Fetched daily series")

	return points, nil
}

// softError maps embedded error payloads to their sentinel errors.
func softError(payload map[string]json.RawMessage) error {
	if _, ok := payload["Error Message"]; ok {
		return ErrSymbolNotFound
	}
	if _, ok := payload["Note"]; ok {
		return ErrRateLimited
	}
	if _, ok := payload["Information"]; ok {
		return ErrRateLimited
	}
	return nil
}
