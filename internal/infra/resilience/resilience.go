// Package resilience wraps upstream CRM API calls with retry, circuit
// breaking, and a bulkhead. Every dashboard read can degrade to an empty
// collection or local aggregation, so the tuning here favors failing fast
// over waiting out a sick upstream.
package resilience

import (
	"context"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
)

// maxBackoff caps the per-attempt wait; a dashboard request that retries
// longer than this should give up and let the fallback render.
const maxBackoff = 2 * time.Second

// Config holds resilience parameters.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int
}

// RetryWithBackoff runs fn up to MaxRetries+1 times with exponential
// backoff and jitter, stopping early on context cancellation.
func RetryWithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt >= cfg.MaxRetries {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffFor(cfg.InitialBackoff, attempt)):
		}
	}
}

// backoffFor doubles the initial backoff per attempt, caps it, and adds up
// to 50% jitter so the concurrent record fetches don't retry in lockstep.
func backoffFor(initial time.Duration, attempt int) time.Duration {
	if initial <= 0 {
		initial = 50 * time.Millisecond
	}
	backoff := initial << uint(attempt)
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff + time.Duration(rand.Int63n(int64(backoff/2)+1))
}

// NewCircuitBreaker trips after a short run of consecutive upstream
// failures. While open, record fetches fail immediately and the dashboard
// is served from whatever the fallback produces.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 2,                // half-open: 2 trial requests
		Interval:    time.Minute,      // closed: reset counters every minute
		Timeout:     15 * time.Second, // open -> half-open
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 4
		},
	})
}

// Bulkhead caps in-flight upstream fetches across all dashboard requests.
// Each of the four record sources holds one slot for the duration of its
// HTTP call.
type Bulkhead struct {
	slots chan struct{}
}

// NewBulkhead creates a bulkhead with the given max concurrency.
func NewBulkhead(maxConcurrency int) *Bulkhead {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Bulkhead{slots: make(chan struct{}, maxConcurrency)}
}

// Acquire takes a slot, blocking until one frees up or ctx is done.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot taken by Acquire.
func (b *Bulkhead) Release() {
	<-b.slots
}
