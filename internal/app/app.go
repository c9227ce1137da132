package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tickerdeck/internal/api"
	"github.com/tickerdeck/internal/hub"
	"github.com/tickerdeck/internal/provider"
	"github.com/tickerdeck/internal/screen"
	"github.com/tickerdeck/internal/websocket"
	"github.com/tickerdeck/pkg/config"
	"github.com/tickerdeck/pkg/models"
)

// App wires providers, screens, the hub and the transports together.
type App struct {
	cfg    *config.Config
	logger *logrus.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	coingecko    *provider.CoinGeckoClient
	hourlyTicker *provider.HourlyTickerClient
	alphaVantage *provider.AlphaVantageClient

	hub       *hub.Hub
	wsManager *websocket.Manager
	apiServer *api.Server
}

// New creates a new application instance
func New(cfg *config.Config, logger *logrus.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Initialize builds every component. Nothing fetches yet.
func (a *App) Initialize() error {
	a.coingecko = provider.NewCoinGeckoClient(&a.cfg.CoinGecko, a.logger)
	a.hourlyTicker = provider.NewHourlyTickerClient(&a.cfg.HourlyTicker, a.logger)
	a.alphaVantage = provider.NewAlphaVantageClient(&a.cfg.AlphaVantage, a.logger)

	a.hub = hub.New(a.logger)

	if err := a.registerScreens(); err != nil {
		return fmt.Errorf("failed to register screens: %w", err)
	}

	a.wsManager = websocket.NewManager(a.hub, &a.cfg.WebSocket, a.logger)
	a.apiServer = api.NewServer(a.cfg, a.logger, a.hub, a.wsManager)

	return nil
}

func (a *App) registerScreens() error {
	defaultInterval, err := models.ParseInterval(a.cfg.Screens.DefaultInterval)
	if err != nil {
		return err
	}

	common := screen.Options{
		FlashDuration: a.cfg.Screens.FlashDuration,
		ChartPoints:   a.cfg.Screens.ChartPoints,
		ChartInterval: defaultInterval,
	}

	spotOpts := common
	spotOpts.ID = "btc"
	spotOpts.PollInterval = a.cfg.Screens.SpotInterval

	detailOpts := common
	detailOpts.ID = "btc-detail"
	detailOpts.PollInterval = a.cfg.Screens.DetailInterval

	equityOpts := common
	equityOpts.ID = "mstr"
	equityOpts.PollInterval = a.cfg.Screens.EquityInterval

	screens := []*screen.Screen{
		screen.New(spotOpts, screen.NewSpotSource(a.coingecko, a.hourlyTicker, a.logger), a.hub.Publish, a.logger),
		screen.New(detailOpts, screen.NewDetailSource(a.coingecko, a.logger), a.hub.Publish, a.logger),
		screen.New(equityOpts, screen.NewEquitySource(a.alphaVantage, a.logger), a.hub.Publish, a.logger),
	}

	for _, s := range screens {
		if err := a.hub.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Start starts the application
func (a *App) Start() error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.wsManager.Run(a.ctx)
	}()

	if err := a.hub.Start(a.ctx); err != nil {
		return fmt.Errorf("failed to start hub: %w", err)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Error("API server error")
		}
	}()

	return nil
}

// Stop gracefully stops the application
func (a *App) Stop() error {
	a.logger.Info("Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.apiServer.Stop(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("Error stopping API server")
	}

	a.hub.Stop()
	a.cancel()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		a.logger.Warn("Timeout waiting for goroutines to finish")
	}

	a.coingecko.Close()
	a.hourlyTicker.Close()
	a.alphaVantage.Close()

	a.logger.Info("Application stopped")
	return nil
}
