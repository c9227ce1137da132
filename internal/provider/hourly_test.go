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

func newHourly(t *testing.T, handler http.HandlerFunc) *HourlyTickerClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.HourlyTickerConfig{
		BaseURL:      srv.URL,
		Pair:         "btcusd",
		Timeout:      5 * time.Second,
		RateInterval: time.Millisecond,
	}
	c := NewHourlyTickerClient(cfg, testLogger())
	t.Cleanup(c.Close)
	return c
}

func TestLast24Hours_ReversesToAscending(t *testing.T) {
	c := newHourly(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ticker/btcusd", r.URL.Path)
		// Newest first upstream: 51000 is the most recent hour.
		w.Write([]byte(`{"changes":[51000,50900,50800]}`))
	})
	c.now = func() time.Time {
		return time.Date(2025, 8, 28, 12, 30, 0, 0, time.UTC)
	}

	points, err := c.Last24Hours(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, 50800.0, points[0].Price)
	assert.Equal(t, 51000.0, points[2].Price)

	// Synthetic timestamps count back hourly from the truncated now.
	assert.Equal(t, time.Date(2025, 8, 28, 12, 0, 0, 0, time.UTC), points[2].Timestamp)
	assert.Equal(t, time.Date(2025, 8, 28, 10, 0, 0, 0, time.UTC), points[0].Timestamp)
	assert.True(t, points[0].Timestamp.Before(points[1].Timestamp))
}

func TestLast24Hours_Empty(t *testing.T) {
	c := newHourly(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"changes":[]}`))
	})

	_, err := c.Last24Hours(context.Background())
	assert.ErrorIs(t, err, ErrEmptySeries)
}

func TestLast24Hours_TransportError(t *testing.T) {
	c := newHourly(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Last24Hours(context.Background())
	assert.Error(t, err)
}
