package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tickerdeck/pkg/config"
)

func newAlpha(t *testing.T, handler http.HandlerFunc) *AlphaVantageClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.AlphaVantageConfig{
		BaseURL:      srv.URL,
		APIKey:       "test",
		Symbol:       "MSTR",
		Timeout:      5 * time.Second,
		RateInterval: time.Millisecond,
	}
	c := NewAlphaVantageClient(cfg, testLogger())
	t.Cleanup(c.Close)
	return c
}

func TestDailySeries(t *testing.T) {
	c := newAlpha(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TIME_SERIES_DAILY", r.URL.Query().Get("function"))
		assert.Equal(t, "MSTR", r.URL.Query().Get("symbol"))
		// Keys arrive descending by date, the client must sort ascending.
		w.Write([]byte(`{
			"Meta Data": {"2. Symbol": "MSTR"},
			"Time Series (Daily)": {
				"2025-08-27": {"1. open":"1510","2. high":"1550","3. low":"1490","4. close":"1520.5","5. volume":"100"},
				"2025-08-26": {"1. open":"1480","2. high":"1515","3. low":"1470","4. close":"1500.0","5. volume":"90"}
			}}`))
	})

	points, err := c.DailySeries(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 1500.0, points[0].Price)
	assert.Equal(t, 1520.5, points[1].Price)
	assert.True(t, points[0].Timestamp.Before(points[1].Timestamp))
}

func TestDailySeries_SoftErrors(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"symbol not found", `{"Error Message": "Invalid API call."}`, ErrSymbolNotFound},
		{"rate limited via Note", `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`, ErrRateLimited},
		{"rate limited via Information", `{"Information": "API rate limit reached."}`, ErrRateLimited},
		{"missing series key", `{"Meta Data": {}}`, ErrMalformedSeries},
		{"empty series", `{"Time Series (Daily)": {}}`, ErrMalformedSeries},
		{"non-numeric close", `{"Time Series (Daily)": {"2025-08-27": {"4. close":"oops"}}}`, ErrMalformedSeries},
		{"bad date key", `{"Time Series (Daily)": {"not-a-date": {"4. close":"100"}}}`, ErrMalformedSeries},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newAlpha(t, func(w http.ResponseWriter, r *http.Request) {
				// Soft errors ride on HTTP 200; status must not matter.
				w.Write([]byte(tc.body))
			})

			_, err := c.DailySeries(context.Background())
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestDailySeries_TransportError(t *testing.T) {
	c := newAlpha(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.DailySeries(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSymbolNotFound)
	assert.NotErrorIs(t, err, ErrRateLimited)
}
