package screen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tickerdeck/internal/provider"
	"github.com/tickerdeck/pkg/models"
)

// Options configures one screen instance.
type Options struct {
	ID            string
	PollInterval  time.Duration
	FlashDuration time.Duration
	ChartPoints   int
	ChartInterval models.Interval
}

// Screen runs the fetch-transform-publish cycle for one display surface. It
// owns its periodic ticker, its one-shot flash timer, and a single
// atomically replaced state record; all three are torn down by Stop so no
// timer outlives the screen.
type Screen struct {
	opts   Options
	source DataSource
	logger *logrus.Entry

	mu    sync.RWMutex
	state models.ScreenState

	flashMu    sync.Mutex
	flashTimer *time.Timer

	// onUpdate receives every published state, in publish order.
	onUpdate func(models.ScreenState)

	inFlight atomic.Bool
	running  atomic.Bool
	stopped  atomic.Bool
	runCtx   context.Context
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a screen around a data source. onUpdate may be nil.
func New(opts Options, source DataSource, onUpdate func(models.ScreenState), log *logrus.Logger) *Screen {
	if opts.ChartInterval == "" {
		opts.ChartInterval = models.Interval1D
	}
	s := &Screen{
		opts:     opts,
		source:   source,
		logger:   log.WithField("component", "screen").WithField("screen", opts.ID),
		onUpdate: onUpdate,
		stopChan: make(chan struct{}),
	}
	s.state = models.ScreenState{
		Screen:   opts.ID,
		Symbol:   source.Symbol(),
		Interval: opts.ChartInterval,
		Flash:    models.FlashNone,
		Loading:  true,
	}
	return s
}

// ID returns the screen identifier.
func (s *Screen) ID() string { return s.opts.ID }

// State returns a copy of the current display record.
func (s *Screen) State() models.ScreenState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Start performs the initial blocking-indicator fetch and begins the
// periodic poll loop.
func (s *Screen) Start(ctx context.Context) error {
	if s.stopped.Load() {
		return fmt.Errorf("screen %s has been stopped", s.opts.ID)
	}
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("screen %s already running", s.opts.ID)
	}

	s.runCtx = ctx
	s.logger.WithField("interval", s.opts.PollInterval).Info("Starting screen")

	// First cycle runs with the loading flag up; every later cycle updates
	// silently so the display does not flicker.
	s.refresh(ctx, true)

	s.wg.Add(1)
	go s.pollLoop(ctx)

	return nil
}

// Stop cancels the poll ticker and any pending flash timer.
func (s *Screen) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	s.stopped.Store(true)
	close(s.stopChan)
	s.wg.Wait()

	s.flashMu.Lock()
	if s.flashTimer != nil {
		s.flashTimer.Stop()
		s.flashTimer = nil
	}
	s.flashMu.Unlock()

	s.logger.Info("Screen stopped")
}

// SetInterval switches the chart span and refetches the chart immediately.
// The price poll cadence is unaffected. The refetch runs against the
// screen's own lifecycle context, not the caller's.
func (s *Screen) SetInterval(interval models.Interval) {
	if !s.running.Load() {
		s.mu.Lock()
		s.state.Interval = interval
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.state.Interval = interval
	s.mu.Unlock()

	ctx := s.runCtx
	if ctx == nil {
		ctx = context.Background()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.refreshChart(ctx, interval)
	}()
}

func (s *Screen) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refresh(ctx, false)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// refresh runs one full fetch cycle. A tick that fires while the previous
// cycle is still in flight is skipped rather than queued.
func (s *Screen) refresh(ctx context.Context, initial bool) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug("Previous fetch still in flight, skipping tick")
		return
	}
	defer s.inFlight.Store(false)

	price, snap, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Fetch cycle failed")
		s.publish(func(st *models.ScreenState) {
			st.Loading = false
			st.Error = userMessage(err)
		})
		return
	}

	previous := s.State().Price
	flash := models.FlashNone
	if !initial && previous != 0 && price != previous {
		if price > previous {
			flash = models.FlashIncreased
		} else {
			flash = models.FlashDecreased
		}
	}

	chart, chartErr := s.source.Chart(ctx, s.State().Interval, s.opts.ChartPoints)

	s.publish(func(st *models.ScreenState) {
		st.Loading = false
		st.Error = ""
		st.Price = price
		st.Snapshot = snap
		st.LastUpdated = time.Now()
		if flash != models.FlashNone {
			st.Flash = flash
		}
		if chartErr != nil {
			st.ChartError = userMessage(chartErr)
		} else {
			st.Chart = chart
			st.ChartError = ""
		}
	})

	if flash != models.FlashNone {
		s.scheduleFlashClear()
	}
}

// refreshChart updates only the chart region; failures there never blank the
// rest of the screen.
func (s *Screen) refreshChart(ctx context.Context, interval models.Interval) {
	chart, err := s.source.Chart(ctx, interval, s.opts.ChartPoints)

	s.publish(func(st *models.ScreenState) {
		if err != nil {
			s.logger.WithError(err).Warn("Chart refresh failed")
			st.ChartError = userMessage(err)
			return
		}
		st.Chart = chart
		st.ChartError = ""
	})
}

// scheduleFlashClear arms the one-shot neutralizing timer. A newer delta
// simply rearms it; only one flash timer is ever pending per screen.
func (s *Screen) scheduleFlashClear() {
	s.flashMu.Lock()
	defer s.flashMu.Unlock()

	if s.flashTimer != nil {
		s.flashTimer.Stop()
	}
	s.flashTimer = time.AfterFunc(s.opts.FlashDuration, func() {
		s.publish(func(st *models.ScreenState) {
			st.Flash = models.FlashNone
		})
	})
}

// publish applies a mutation to a copy of the state and swaps the whole
// record in one write, so readers never observe a half-updated snapshot.
func (s *Screen) publish(mutate func(*models.ScreenState)) {
	s.mu.Lock()
	next := s.state
	mutate(&next)
	s.state = next
	s.mu.Unlock()

	if s.onUpdate != nil {
		s.onUpdate(next)
	}
}

// userMessage maps upstream failures onto the distinct messages a renderer
// shows. The next scheduled tick is the actual retry.
func userMessage(err error) string {
	switch {
	case errors.Is(err, provider.ErrSymbolNotFound):
		return "Symbol not found"
	case errors.Is(err, provider.ErrRateLimited):
		return "Rate limit exceeded, retrying on the next refresh"
	case errors.Is(err, provider.ErrMalformedSeries):
		return "Market data unavailable"
	case errors.Is(err, provider.ErrEmptySeries):
		return "Chart data unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Request timed out, retrying on the next refresh"
	default:
		return "Failed to load price data, retrying on the next refresh"
	}
}
