package provider

import (
	"context"
	"time"
)

// limiter releases one request token per interval. Free API tiers here are
// strict enough that a single in-process token channel is all the
// coordination needed.
type limiter struct {
	tokens chan struct{}
	stop   chan struct{}
}

func newLimiter(interval time.Duration) *limiter {
	l := &limiter{
		tokens: make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	// First request should not wait a full interval.
	l.tokens <- struct{}{}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case l.tokens <- struct{}{}:
				default:
				}
			case <-l.stop:
				return
			}
		}
	}()

	return l
}

// wait blocks until a token is available or the context is done.
func (l *limiter) wait(ctx context.Context) error {
	select {
	case <-l.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops the refill goroutine.
func (l *limiter) close() {
	close(l.stop)
}
