package series

import "github.com/tickerdeck/pkg/models"

// DayWindowPoints approximates "24 hours ago" on a roughly-hourly 365-day
// series. Slicing the trailing 48 points spares a second request against a
// rate-limited API; it assumes even timestamp spacing and is not a
// timestamp-exact lookup.
const DayWindowPoints = 48

// Detail carries precomputed market-data fields from an upstream detail
// endpoint, already reduced to the quote currency.
type Detail struct {
	CurrentPrice         float64
	High24h              float64
	Low24h               float64
	Volume24h            float64
	MarketCap            float64
	PriceChange24h       float64
	PriceChangePercent24 float64
}

// SnapshotFromSeries derives every metric from a single long series plus the
// latest spot price: the 24h figures come from the trailing DayWindowPoints
// window, the yearly figures from the series head.
func SnapshotFromSeries(yearSeries []models.PricePoint, currentPrice float64) models.PerformanceSnapshot {
	snap := models.PerformanceSnapshot{CurrentPrice: currentPrice}
	if len(yearSeries) == 0 {
		return snap
	}

	window := Window(yearSeries, DayWindowPoints)
	previous := window[0].Price
	high, low := window[0].Price, window[0].Price
	for _, p := range window {
		if p.Price > high {
			high = p.Price
		}
		if p.Price < low {
			low = p.Price
		}
	}

	snap.PreviousPrice = previous
	snap.PriceChange = currentPrice - previous
	snap.PriceChangePercent = percentChange(snap.PriceChange, previous)
	snap.High24h = high
	snap.Low24h = low

	applyYearly(&snap, yearSeries, currentPrice)
	return snap
}

// SnapshotFromDetail uses provider-precomputed 24h fields and derives only
// the yearly figures from the series.
func SnapshotFromDetail(d Detail, yearSeries []models.PricePoint) models.PerformanceSnapshot {
	snap := models.PerformanceSnapshot{
		CurrentPrice:       d.CurrentPrice,
		PreviousPrice:      d.CurrentPrice - d.PriceChange24h,
		PriceChange:        d.PriceChange24h,
		PriceChangePercent: d.PriceChangePercent24,
		High24h:            d.High24h,
		Low24h:             d.Low24h,
		Volume24h:          d.Volume24h,
		MarketCap:          d.MarketCap,
	}
	applyYearly(&snap, yearSeries, d.CurrentPrice)
	return snap
}

// SnapshotFromDaily derives metrics from a date-keyed daily close series:
// previous price is the prior session close, the yearly reference is the
// earliest close within one calendar year of the last session.
func SnapshotFromDaily(daily []models.PricePoint) models.PerformanceSnapshot {
	var snap models.PerformanceSnapshot
	if len(daily) == 0 {
		return snap
	}

	last := daily[len(daily)-1]
	snap.CurrentPrice = last.Price

	if len(daily) > 1 {
		previous := daily[len(daily)-2].Price
		snap.PreviousPrice = previous
		snap.PriceChange = last.Price - previous
		snap.PriceChangePercent = percentChange(snap.PriceChange, previous)
	}

	yearStart := last.Timestamp.AddDate(-1, 0, 0)
	ref := daily[0]
	for _, p := range daily {
		if !p.Timestamp.Before(yearStart) {
			ref = p
			break
		}
	}
	snap.PriceOneYearAgo = ref.Price
	snap.YearlyChange = last.Price - ref.Price
	snap.YearlyChangePercent = percentChange(snap.YearlyChange, ref.Price)

	return snap
}

func applyYearly(snap *models.PerformanceSnapshot, yearSeries []models.PricePoint, currentPrice float64) {
	if len(yearSeries) == 0 {
		return
	}
	yearAgo := yearSeries[0].Price
	snap.PriceOneYearAgo = yearAgo
	snap.YearlyChange = currentPrice - yearAgo
	snap.YearlyChangePercent = percentChange(snap.YearlyChange, yearAgo)
}

// percentChange guards the zero-denominator edge: a zero or absent previous
// price makes the percent not computable, so it is reported as zero rather
// than dividing by zero.
func percentChange(change, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return change / previous * 100
}
