package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	mock := NewMockTranslator(nil)
	mock.SetFail(true)
	b := NewBreaker(mock, 2, time.Minute)
	ctx := context.Background()

	_, err := b.Translate(ctx, "a", "en", "de")
	require.ErrorIs(t, err, ErrMockFailure)
	assert.Equal(t, BreakerClosed, b.State())

	_, err = b.Translate(ctx, "b", "en", "de")
	require.ErrorIs(t, err, ErrMockFailure)
	assert.Equal(t, BreakerOpen, b.State())

	_, err = b.Translate(ctx, "c", "en", "de")
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Len(t, mock.Calls(), 2, "open breaker does not reach the backend")
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	mock := NewMockTranslator(nil)
	mock.SetFail(true)
	b := NewBreaker(mock, 1, time.Minute)
	now := time.Now()
	b.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = b.Translate(ctx, "a", "en", "de")
	require.Equal(t, BreakerOpen, b.State())

	// Cooldown elapsed, the trial call fails and re-opens.
	now = now.Add(2 * time.Minute)
	_, err := b.Translate(ctx, "b", "en", "de")
	require.ErrorIs(t, err, ErrMockFailure)
	assert.Equal(t, BreakerOpen, b.State())

	// Next trial call succeeds and closes the circuit.
	now = now.Add(2 * time.Minute)
	mock.SetFail(false)
	out, err := b.Translate(ctx, "c", "en", "de")
	require.NoError(t, err)
	assert.Equal(t, "C", out)
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_WithCacheFailsOpen(t *testing.T) {
	mock := NewMockTranslator(nil)
	mock.SetFail(true)
	cache := NewCache(NewBreaker(mock, 1, time.Minute))

	assert.Equal(t, "one", cache.Translate(context.Background(), "one", "en", "de"))
	assert.Equal(t, "two", cache.Translate(context.Background(), "two", "en", "de"))
	assert.Len(t, mock.Calls(), 1)
}

func TestBreaker_RequestErrorsDoNotOpen(t *testing.T) {
	status := http.StatusBadRequest
	calls := 0
	backend := TranslatorFunc(func(ctx context.Context, text, source, target string) (string, error) {
		calls++
		return "", &HTTPError{StatusCode: status, Body: `{"error":"zz is not supported"}`}
	})
	b := NewBreaker(backend, 2, time.Minute)
	ctx := context.Background()

	for range 5 {
		_, err := b.Translate(ctx, "a", "en", "zz")
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
	}
	assert.Equal(t, BreakerClosed, b.State())
	assert.Equal(t, 5, calls)

	status = http.StatusServiceUnavailable
	_, _ = b.Translate(ctx, "a", "en", "de")
	_, _ = b.Translate(ctx, "b", "en", "de")
	assert.Equal(t, BreakerOpen, b.State())
}

func TestServiceUnhealthy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "transport", err: errors.New("connection refused"), want: true},
		{name: "timeout", err: fmt.Errorf("post: %w", context.DeadlineExceeded), want: true},
		{name: "canceled", err: fmt.Errorf("post: %w", context.Canceled), want: false},
		{name: "server error", err: &HTTPError{StatusCode: 502}, want: true},
		{name: "rate limited", err: &HTTPError{StatusCode: 429}, want: true},
		{name: "request timeout", err: &HTTPError{StatusCode: 408}, want: true},
		{name: "bad request", err: &HTTPError{StatusCode: 400}, want: false},
		{name: "forbidden", err: fmt.Errorf("translate: %w", &HTTPError{StatusCode: 403}), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serviceUnhealthy(tt.err))
		})
	}
}

func TestBreakerStateString(t *testing.T) {
	assert.Equal(t, "closed", BreakerClosed.String())
	assert.Equal(t, "open", BreakerOpen.String())
	assert.Equal(t, "half-open", BreakerHalfOpen.String())
	assert.Equal(t, "unknown", BreakerState(9).String())
}
