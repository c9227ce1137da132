package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `env:", prefix=SERVER_"`
	CoinGecko    CoinGeckoConfig    `env:", prefix=COINGECKO_"`
	HourlyTicker HourlyTickerConfig `env:", prefix=HOURLY_TICKER_"`
	AlphaVantage AlphaVantageConfig `env:", prefix=ALPHAVANTAGE_"`
	Screens      ScreensConfig      `env:", prefix=SCREEN_"`
	Security     SecurityConfig     `env:", prefix=SECURITY_"`
	WebSocket    WebSocketConfig    `env:", prefix=WEBSOCKET_"`
	Logging      LoggingConfig      `env:", prefix=LOG_"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `env:"HOST, default=0.0.0.0"`
	Port         int           `env:"PORT, default=8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT, default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT, default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT, default=120s"`
}

// CoinGeckoConfig holds CoinGecko API configuration
type CoinGeckoConfig struct {
	BaseURL    string        `env:"BASE_URL, default=https://api.coingecko.com/api/v3"`
	APIKey     string        `env:"API_KEY"`
	CoinID     string        `env:"COIN_ID, default=bitcoin"`
	VsCurrency string        `env:"VS_CURRENCY, default=usd"`
	Timeout    time.Duration `env:"TIMEOUT, default=10s"`
	// Free tier allows ~30 calls/min; one call per 2s keeps headroom.
	RateInterval time.Duration `env:"RATE_INTERVAL, default=2s"`
}

// HourlyTickerConfig holds the secondary hourly ticker source configuration
type HourlyTickerConfig struct {
	BaseURL      string        `env:"BASE_URL, default=https://www.bitstamp.net/api/v2"`
	Pair         string        `env:"PAIR, default=btcusd"`
	Timeout      time.Duration `env:"TIMEOUT, default=10s"`
	RateInterval time.Duration `env:"RATE_INTERVAL, default=2s"`
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	BaseURL string        `env:"BASE_URL, default=https://www.alphavantage.co/query"`
	APIKey  string        `env:"API_KEY, default=demo"`
	Symbol  string        `env:"SYMBOL, default=MSTR"`
	Timeout time.Duration `env:"TIMEOUT, default=15s"`
	// Free tier allows 5 calls/min, one call per 12s.
	RateInterval time.Duration `env:"RATE_INTERVAL, default=12s"`
}

// ScreensConfig holds per-screen polling cadences
type ScreensConfig struct {
	SpotInterval    time.Duration `env:"SPOT_INTERVAL, default=30s"`
	DetailInterval  time.Duration `env:"DETAIL_INTERVAL, default=120s"`
	EquityInterval  time.Duration `env:"EQUITY_INTERVAL, default=120s"`
	FlashDuration   time.Duration `env:"FLASH_DURATION, default=2s"`
	ChartPoints     int           `env:"CHART_POINTS, default=12"`
	DefaultInterval string        `env:"DEFAULT_CHART_INTERVAL, default=1D"`
}

// SecurityConfig holds CORS configuration for rendering clients
type SecurityConfig struct {
	CORSEnabled bool     `env:"CORS_ENABLED, default=true"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`
	CORSMethods []string `env:"CORS_METHODS, default=GET,PUT,OPTIONS"`
	CORSHeaders []string `env:"CORS_HEADERS, default=*"`
}

// WebSocketConfig holds WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `env:"READ_BUFFER_SIZE, default=1024"`
	WriteBufferSize int           `env:"WRITE_BUFFER_SIZE, default=1024"`
	SendBufferSize  int           `env:"SEND_BUFFER_SIZE, default=64"`
	PingInterval    time.Duration `env:"PING_INTERVAL, default=30s"`
	PongTimeout     time.Duration `env:"PONG_TIMEOUT, default=60s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT, default=10s"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `env:"LEVEL, default=info"`
	Format string `env:"FORMAT, default=text"`
	Output string `env:"OUTPUT, default=stdout"`
}

// Load loads configuration from environment variables using go-envconfig
func Load() (*Config, error) {
	ctx := context.Background()
	var cfg Config

	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.CoinGecko.BaseURL == "" {
		return fmt.Errorf("CoinGecko base URL is required")
	}
	if c.AlphaVantage.BaseURL == "" {
		return fmt.Errorf("Alpha Vantage base URL is required")
	}
	if c.Screens.SpotInterval <= 0 || c.Screens.DetailInterval <= 0 || c.Screens.EquityInterval <= 0 {
		return fmt.Errorf("screen polling intervals must be positive")
	}
	if c.Screens.ChartPoints <= 0 {
		return fmt.Errorf("chart points must be positive")
	}
	if c.Screens.FlashDuration <= 0 {
		return fmt.Errorf("flash duration must be positive")
	}
	return nil
}

// GetServerAddr returns server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
