package translate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("translation circuit breaker open")

// BreakerState is the circuit breaker state.
type BreakerState uint32

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker stops calling an unreachable translation service for a cooldown period, so a
// dead backend costs one timeout per cooldown instead of one per sentence.
type Breaker struct {
	next      Translator
	threshold int32
	cooldown  time.Duration
	now       func() time.Time

	state    atomic.Uint32
	failures atomic.Int32
	openedAt atomic.Int64
}

// NewBreaker wraps next. threshold consecutive failures open the circuit for cooldown.
func NewBreaker(next Translator, threshold int, cooldown time.Duration) *Breaker {
	if threshold < 1 {
		threshold = 1
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{next: next, threshold: int32(threshold), cooldown: cooldown, now: time.Now}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	return BreakerState(b.state.Load())
}

// Translate forwards to the wrapped translator unless the circuit is open.
func (b *Breaker) Translate(ctx context.Context, text, source, target string) (string, error) {
	if err := b.allow(); err != nil {
		return "", err
	}
	out, err := b.next.Translate(ctx, text, source, target)
	if err != nil {
		if serviceUnhealthy(err) {
			b.failure()
		} else {
			// The service answered; only this request was rejected.
			b.success()
		}
		return "", err
	}
	b.success()
	return out, nil
}

// serviceUnhealthy reports whether err says the service itself is failing: transport
// errors, timeouts, 5xx, 408 and 429. Other 4xx answers are request errors, such as an
// unsupported language pair, and cancellation comes from the caller.
func serviceUnhealthy(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		code := httpErr.StatusCode
		return code >= 500 || code == http.StatusRequestTimeout || code == http.StatusTooManyRequests
	}
	return true
}

func (b *Breaker) allow() error {
	if b.State() != BreakerOpen {
		return nil
	}
	if b.now().UnixNano()-b.openedAt.Load() >= b.cooldown.Nanoseconds() {
		b.transition(BreakerHalfOpen)
		return nil
	}
	return ErrCircuitOpen
}

func (b *Breaker) success() {
	b.failures.Store(0)
	if b.State() == BreakerHalfOpen {
		b.transition(BreakerClosed)
	}
}

func (b *Breaker) failure() {
	count := b.failures.Add(1)
	switch b.State() {
	case BreakerHalfOpen:
		b.open()
	case BreakerClosed:
		if count >= b.threshold {
			b.open()
		}
	}
}

func (b *Breaker) open() {
	b.openedAt.Store(b.now().UnixNano())
	b.transition(BreakerOpen)
}

func (b *Breaker) transition(to BreakerState) {
	from := BreakerState(b.state.Swap(uint32(to)))
	if from == to {
		return
	}
	if to == BreakerClosed {
		b.failures.Store(0)
	}
	breakerState.Set(float64(to))
	slog.Info("Translation breaker state changed", "from", from.String(), "to", to.String())
}
