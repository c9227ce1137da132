package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tickerdeck/pkg/config"
	"github.com/tickerdeck/pkg/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newGecko(t *testing.T, handler http.HandlerFunc) *CoinGeckoClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.CoinGeckoConfig{
		BaseURL:      srv.URL,
		CoinID:       "bitcoin",
		VsCurrency:   "usd",
		Timeout:      5 * time.Second,
		RateInterval: time.Millisecond,
	}
	c := NewCoinGeckoClient(cfg, testLogger())
	t.Cleanup(c.Close)
	return c
}

func TestSimplePrice(t *testing.T) {
	c := newGecko(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"bitcoin":{"usd":51000.5}}`))
	})

	price, err := c.SimplePrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 51000.5, price)
}

func TestSimplePrice_MissingCoin(t *testing.T) {
	c := newGecko(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := c.SimplePrice(context.Background())
	assert.Error(t, err)
}

func TestSimplePrice_MalformedJSON(t *testing.T) {
	c := newGecko(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin":`))
	})

	_, err := c.SimplePrice(context.Background())
	assert.Error(t, err)
}

func TestSimplePrice_RateLimitedStatus(t *testing.T) {
	c := newGecko(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.SimplePrice(context.Background())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestDetail(t *testing.T) {
	c := newGecko(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("market_data"))
		w.Write([]byte(`{"market_data":{
			"current_price":{"usd":51000},
			"high_24h":{"usd":51500},
			"low_24h":{"usd":49800},
			"total_volume":{"usd":123},
			"market_cap":{"usd":456},
			"price_change_24h":1000,
			"price_change_percentage_24h":2.0}}`))
	})

	detail, err := c.Detail(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 51000.0, detail.MarketData.CurrentPrice["usd"])
	assert.Equal(t, 1000.0, detail.MarketData.PriceChange24h)
	assert.Equal(t, 2.0, detail.MarketData.PriceChangePercentage24h)
}

func TestDetail_MissingMarketData(t *testing.T) {
	c := newGecko(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"bitcoin"}`))
	})

	_, err := c.Detail(context.Background())
	assert.Error(t, err)
}

func TestMarketChart(t *testing.T) {
	c := newGecko(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "365", r.URL.Query().Get("days"))
		w.Write([]byte(`{"prices":[[1700000000000,30000],[1700003600000,30100]],"market_caps":[],"total_volumes":[]}`))
	})

	points, err := c.MarketChart(context.Background(), models.Interval1Y)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 30000.0, points[0].Price)
	assert.Equal(t, 30100.0, points[1].Price)
	assert.True(t, points[0].Timestamp.Before(points[1].Timestamp))
}

func TestMarketChart_DaysMapping(t *testing.T) {
	var gotDays string
	c := newGecko(t, func(w http.ResponseWriter, r *http.Request) {
		gotDays = r.URL.Query().Get("days")
		w.Write([]byte(`{"prices":[[1700000000000,1]]}`))
	})

	cases := map[models.Interval]string{
		models.Interval1D:  "1",
		models.Interval1W:  "7",
		models.Interval1M:  "30",
		models.Interval1Y:  "365",
		models.IntervalAll: "max",
	}
	for interval, want := range cases {
		_, err := c.MarketChart(context.Background(), interval)
		require.NoError(t, err)
		assert.Equal(t, want, gotDays, "interval %s", interval)
	}
}

func TestMarketChart_Empty(t *testing.T) {
	c := newGecko(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prices":[]}`))
	})

	_, err := c.MarketChart(context.Background(), models.Interval1D)
	assert.ErrorIs(t, err, ErrEmptySeries)
}
