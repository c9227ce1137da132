package series

import (
	"math"
	"testing"
	"time"

	"github.com/tickerdeck/pkg/models"
)

func makeSeries(n int, start float64) []models.PricePoint {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, n)
	for i := range points {
		points[i] = models.PricePoint{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Price:     start + float64(i),
		}
	}
	return points
}

func TestDownsample_StrideLength(t *testing.T) {
	cases := []struct {
		length, target int
	}{
		{365, 12},
		{100, 15},
		{24, 24},
		{7, 12},
		{1, 10},
		{48, 10},
	}

	for _, c := range cases {
		out := Downsample(makeSeries(c.length, 0), c.target)

		if c.length <= c.target {
			if len(out) != c.length {
				t.Errorf("len=%d target=%d: expected all %d points, got %d", c.length, c.target, c.length, len(out))
			}
			continue
		}

		step := int(math.Ceil(float64(c.length) / float64(c.target)))
		want := int(math.Ceil(float64(c.length) / float64(step)))
		if len(out) != want {
			t.Errorf("len=%d target=%d: expected %d points, got %d", c.length, c.target, want, len(out))
		}
	}
}

func TestDownsample_OrderPreservingSubsequence(t *testing.T) {
	in := makeSeries(365, 1000)
	out := Downsample(in, 12)

	j := 0
	for _, p := range out {
		found := false
		for ; j < len(in); j++ {
			if in[j].Price == p.Price && in[j].Timestamp.Equal(p.Timestamp) {
				found = true
				j++
				break
			}
		}
		if !found {
			t.Fatalf("output point %v is not an in-order element of the input", p)
		}
	}

	if out[0].Price != in[0].Price {
		t.Errorf("stride sampling must keep the first element, got %v", out[0])
	}
}

func TestDownsample_Degenerate(t *testing.T) {
	if out := Downsample(nil, 10); out != nil {
		t.Errorf("nil input: expected nil, got %v", out)
	}
	if out := Downsample(makeSeries(5, 0), 0); out != nil {
		t.Errorf("zero target: expected nil, got %v", out)
	}
}

func TestBuildChart_LabelsMatchValues(t *testing.T) {
	for _, interval := range []models.Interval{
		models.Interval1D, models.Interval1W, models.Interval1M, models.Interval1Y, models.IntervalAll,
	} {
		for _, n := range []int{0, 1, 24, 365} {
			chart := BuildChart(makeSeries(n, 100), interval, 12)
			if err := chart.Validate(); err != nil {
				t.Errorf("%s with %d points: %v", interval, n, err)
			}
		}
	}
}

func TestBuildChart_LabelFormats(t *testing.T) {
	points := []models.PricePoint{
		{Timestamp: time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC), Price: 1},
	}

	cases := []struct {
		interval models.Interval
		want     string
	}{
		{models.Interval1D, "14:30"},
		{models.Interval1W, "Mar 15"},
		{models.Interval1M, "Mar 15"},
		{models.Interval1Y, "Mar 2025"},
		{models.IntervalAll, "2025"},
	}
	for _, c := range cases {
		chart := BuildChart(points, c.interval, 10)
		if chart.Labels[0] != c.want {
			t.Errorf("%s: expected label %q, got %q", c.interval, c.want, chart.Labels[0])
		}
	}
}

func TestWindow(t *testing.T) {
	in := makeSeries(100, 0)

	out := Window(in, 48)
	if len(out) != 48 {
		t.Fatalf("expected 48 points, got %d", len(out))
	}
	if out[0].Price != in[52].Price {
		t.Errorf("window must be the trailing slice, starts at %v", out[0].Price)
	}

	if got := Window(in, 200); len(got) != 100 {
		t.Errorf("short series: expected all 100 points, got %d", len(got))
	}
	if got := Window(in, 0); got != nil {
		t.Errorf("zero n: expected nil, got %v", got)
	}
}
