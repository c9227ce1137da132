package hub

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tickerdeck/internal/screen"
	"github.com/tickerdeck/pkg/models"
)

// Hub owns every screen and fans published states out to subscribers. It is
// the single point a transport layer talks to.
type Hub struct {
	logger *logrus.Entry

	mu      sync.RWMutex
	screens map[string]*screen.Screen

	subMu       sync.RWMutex
	subscribers map[chan models.ScreenState]struct{}
}

// New creates an empty hub.
func New(log *logrus.Logger) *Hub {
	return &Hub{
		logger:      log.WithField("component", "hub"),
		screens:     make(map[string]*screen.Screen),
		subscribers: make(map[chan models.ScreenState]struct{}),
	}
}

// Register adds a screen. Must be called before Start.
func (h *Hub) Register(s *screen.Screen) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.screens[s.ID()]; exists {
		return fmt.Errorf("screen %s already registered", s.ID())
	}
	h.screens[s.ID()] = s
	return nil
}

// Start starts every registered screen.
func (h *Hub) Start(ctx context.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, s := range h.screens {
		if err := s.Start(ctx); err != nil {
			return fmt.Errorf("start screen %s: %w", id, err)
		}
	}
	h.logger.WithField("screens", len(h.screens)).Info("Hub started")
	return nil
}

// Stop stops every screen and closes all subscriber channels.
func (h *Hub) Stop() {
	h.mu.RLock()
	for _, s := range h.screens {
		s.Stop()
	}
	h.mu.RUnlock()

	h.subMu.Lock()
	for ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = make(map[chan models.ScreenState]struct{})
	h.subMu.Unlock()

	h.logger.Info("Hub stopped")
}

// Screen looks up a screen by id.
func (h *Hub) Screen(id string) (*screen.Screen, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.screens[id]
	return s, ok
}

// States returns the current record of every screen.
func (h *Hub) States() []models.ScreenState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	states := make([]models.ScreenState, 0, len(h.screens))
	for _, s := range h.screens {
		states = append(states, s.State())
	}
	return states
}

// Subscribe returns a channel receiving every published screen state. The
// returned cancel func must be called when the consumer goes away.
func (h *Hub) Subscribe(buffer int) (<-chan models.ScreenState, func()) {
	ch := make(chan models.ScreenState, buffer)

	h.subMu.Lock()
	h.subscribers[ch] = struct{}{}
	h.subMu.Unlock()

	cancel := func() {
		h.subMu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.subMu.Unlock()
	}
	return ch, cancel
}

// Publish distributes one state to all subscribers. A subscriber with a full
// buffer is skipped, never blocked on: slow renderers get the next update.
func (h *Hub) Publish(state models.ScreenState) {
	h.subMu.RLock()
	defer h.subMu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- state:
		default:
		}
	}
}
