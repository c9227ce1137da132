package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tickerdeck/internal/provider"
	"github.com/tickerdeck/internal/series"
	"github.com/tickerdeck/pkg/config"
	"github.com/tickerdeck/pkg/logger"
	"github.com/tickerdeck/pkg/models"
)

// quoteCmd fetches one spot quote and exits. Useful for checking API
// connectivity and keys without starting the server.
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Fetch a single spot quote and exit",
	RunE:  runQuote,
}

var quoteTimeout time.Duration

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.Flags().DurationVar(&quoteTimeout, "timeout", 30*time.Second, "Overall fetch timeout")
}

func runQuote(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Printf("Note: .env file not loaded: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Logging.Level = "warn"

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	gecko := provider.NewCoinGeckoClient(&cfg.CoinGecko, log)
	defer gecko.Close()

	ctx, cancel := context.WithTimeout(context.Background(), quoteTimeout)
	defer cancel()

	price, err := gecko.SimplePrice(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch spot price: %w", err)
	}

	fmt.Printf("%s: %s %s\n", cfg.CoinGecko.CoinID,
		humanize.CommafWithDigits(price, 2), cfg.CoinGecko.VsCurrency)

	year, err := gecko.MarketChart(ctx, models.Interval1Y)
	if err != nil {
		fmt.Printf("yearly series unavailable: %v\n", err)
		return nil
	}

	snap := series.SnapshotFromSeries(year, price)
	fmt.Printf("24h:  %+.2f (%+.2f%%)  high %s  low %s\n",
		snap.PriceChange, snap.PriceChangePercent,
		humanize.CommafWithDigits(snap.High24h, 2),
		humanize.CommafWithDigits(snap.Low24h, 2))
	fmt.Printf("1y:   %+.2f (%+.2f%%)  from %s\n",
		snap.YearlyChange, snap.YearlyChangePercent,
		humanize.CommafWithDigits(snap.PriceOneYearAgo, 2))

	return nil
}
