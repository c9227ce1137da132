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

// CoinGeckoClient handles CoinGecko API interactions
type CoinGeckoClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	coinID     string
	vsCurrency string
	logger     *logrus.Entry
	limiter    *limiter
}

// CoinDetail represents the market_data subset of a coin detail response.
type CoinDetail struct {
	MarketData struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		High24h                  map[string]float64 `json:"high_24h"`
		Low24h                   map[string]float64 `json:"low_24h"`
		TotalVolume              map[string]float64 `json:"total_volume"`
		MarketCap                map[string]float64 `json:"market_cap"`
		PriceChange24h           float64            `json:"price_change_24h"`
		PriceChangePercentage24h float64            `json:"price_change_percentage_24h"`
	} `json:"market_data"`
}

// NewCoinGeckoClient creates a new CoinGecko client
func NewCoinGeckoClient(cfg *config.CoinGeckoConfig, log *logrus.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		coinID:     cfg.CoinID,
		vsCurrency: cfg.VsCurrency,
		logger:     log.WithField("component", "coingecko"),
		limiter:    newLimiter(cfg.RateInterval),
	}
}

// Close releases the rate limiter.
func (c *CoinGeckoClient) Close() {
	c.limiter.close()
}

// SimplePrice fetches the current spot price.
func (c *CoinGeckoClient) SimplePrice(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", c.baseURL, c.coinID, c.vsCurrency)

	var payload map[string]map[string]float64
	if err := c.get(ctx, url, &payload); err != nil {
		return 0, err
	}

	quote, ok := payload[c.coinID]
	if !ok {
		return 0, fmt.Errorf("simple price response missing coin %q", c.coinID)
	}
	price, ok := quote[c.vsCurrency]
	if !ok {
		return 0, fmt.Errorf("simple price response missing currency %q", c.vsCurrency)
	}

	c.logger.WithField("price", price).Debug("Fetched spot price")
	return price, nil
}

// Detail fetches the precomputed market-data fields for the coin.
func (c *CoinGeckoClient) Detail(ctx context.Context) (*CoinDetail, error) {
	url := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&market_data=true&community_data=false&developer_data=false",
		c.baseURL, c.coinID)

	var detail CoinDetail
	if err := c.get(ctx, url, &detail); err != nil {
		return nil, err
	}
	if len(detail.MarketData.CurrentPrice) == 0 {
		return nil, fmt.Errorf("coin detail response missing market_data")
	}

	return &detail, nil
}

// MarketChart fetches the historical price series for a chart interval.
// Points are returned ascending by timestamp, as the API delivers them.
func (c *CoinGeckoClient) MarketChart(ctx context.Context, interval models.Interval) ([]models.PricePoint, error) {
	url := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=%s&days=%s",
		c.baseURL, c.coinID, c.vsCurrency, interval.Days())

	var payload struct {
		Prices [][2]float64 `json:"prices"`
	}
	if err := c.get(ctx, url, &payload); err != nil {
		return nil, err
	}
	if len(payload.Prices) == 0 {
		return nil, ErrEmptySeries
	}

	points := make([]models.PricePoint, 0, len(payload.Prices))
	for _, pair := range payload.Prices {
		points = append(points, models.PricePoint{
			Timestamp: time.UnixMilli(int64(pair[0])),
			Price:     pair[1],
		})
	}

	c.logger.WithFields(logrus.Fields{
		"interval": interval,
		"points":   len(points),
	}).Debug("Fetched market chart")

	return points, nil
}

// Currency returns the quote currency used in all requests.
func (c *CoinGeckoClient) Currency() string {
	return c.vsCurrency
}

func (c *CoinGeckoClient) get(ctx context.Context, url string, out interface{}) error {
	if err := c.limiter.wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
