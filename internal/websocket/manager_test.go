package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tickerdeck/internal/hub"
	"github.com/tickerdeck/internal/screen"
	"github.com/tickerdeck/pkg/config"
	"github.com/tickerdeck/pkg/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type stubSource struct{}

func (stubSource) Name() string   { return "stub" }
func (stubSource) Symbol() string { return "BTC" }
func (stubSource) Fetch(ctx context.Context) (float64, models.PerformanceSnapshot, error) {
	return 50000, models.PerformanceSnapshot{CurrentPrice: 50000}, nil
}
func (stubSource) Chart(ctx context.Context, interval models.Interval, points int) (models.ChartSeries, error) {
	return models.ChartSeries{Labels: []string{"12:00"}, Values: []float64{50000}}, nil
}

func TestWebSocket_SeedsAndBroadcasts(t *testing.T) {
	log := testLogger()
	h := hub.New(log)

	scr := screen.New(screen.Options{
		ID:            "btc",
		PollInterval:  time.Hour,
		FlashDuration: time.Second,
		ChartPoints:   12,
	}, stubSource{}, h.Publish, log)
	require.NoError(t, h.Register(scr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, h.Start(ctx))
	defer h.Stop()

	cfg := &config.WebSocketConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  16,
		PingInterval:    time.Second,
		PongTimeout:     5 * time.Second,
		WriteTimeout:    time.Second,
	}
	m := NewManager(h, cfg, log)
	go m.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(m.HandleWebSocket))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// On connect the client is seeded with every screen's current record.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type  string             `json:"type"`
		State models.ScreenState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "screen_state", msg.Type)
	assert.Equal(t, "btc", msg.State.Screen)
	assert.Equal(t, 50000.0, msg.State.Price)

	// A published update reaches the connected client.
	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	h.Publish(models.ScreenState{Screen: "btc", Price: 51000})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, 51000.0, msg.State.Price)
}

func TestClientCount_Empty(t *testing.T) {
	cfg := &config.WebSocketConfig{SendBufferSize: 1}
	m := NewManager(hub.New(testLogger()), cfg, testLogger())
	assert.Equal(t, 0, m.ClientCount())
}
