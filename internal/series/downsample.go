package series

import (
	"math"

	"github.com/tickerdeck/pkg/models"
)

// Downsample reduces a series to at most target points by keeping every
// step-th element, step = ceil(len/target). A fixed stride, not averaging or
// interpolation: spikes between kept points are skipped, which is the
// accepted fidelity tradeoff for a small display chart.
func Downsample(points []models.PricePoint, target int) []models.PricePoint {
	if target <= 0 || len(points) == 0 {
		return nil
	}
	if len(points) <= target {
		out := make([]models.PricePoint, len(points))
		copy(out, points)
		return out
	}

	step := int(math.Ceil(float64(len(points)) / float64(target)))
	out := make([]models.PricePoint, 0, target)
	for i := 0; i < len(points); i += step {
		out = append(out, points[i])
	}
	return out
}

// LabelFormat returns the time layout used for chart labels at a span.
func LabelFormat(interval models.Interval) string {
	switch interval {
	case models.Interval1D:
		return "15:04"
	case models.Interval1W, models.Interval1M:
		return "Jan 2"
	case models.Interval1Y:
		return "Jan 2006"
	default:
		return "2006"
	}
}

// BuildChart downsamples a raw series and renders human-readable labels for
// the given span. Labels and values always come out the same length.
func BuildChart(points []models.PricePoint, interval models.Interval, target int) models.ChartSeries {
	sampled := Downsample(points, target)
	layout := LabelFormat(interval)

	chart := models.ChartSeries{
		Labels: make([]string, len(sampled)),
		Values: make([]float64, len(sampled)),
	}
	for i, p := range sampled {
		chart.Labels[i] = p.Timestamp.Format(layout)
		chart.Values[i] = p.Price
	}
	return chart
}

// Window returns the trailing n points of a series, or the whole series when
// it is shorter than n.
func Window(points []models.PricePoint, n int) []models.PricePoint {
	if n <= 0 {
		return nil
	}
	if len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}
