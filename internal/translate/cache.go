package translate

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Cache memoizes translations for the lifetime of the process and fails open: whenever
// the backend cannot answer, the original text is returned unchanged.
type Cache struct {
	backend Translator
	store   Store
	timeout time.Duration

	hits     atomic.Int64
	misses   atomic.Int64
	failures atomic.Int64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithStore replaces the default in-memory store.
func WithStore(s Store) CacheOption {
	return func(c *Cache) {
		if s != nil {
			c.store = s
		}
	}
}

// WithTimeout bounds every backend call. Zero disables the extra deadline.
func WithTimeout(d time.Duration) CacheOption {
	return func(c *Cache) { c.timeout = d }
}

// NewCache wraps backend with an unbounded cache.
func NewCache(backend Translator, opts ...CacheOption) *Cache {
	c := &Cache{
		backend: backend,
		store:   NewMemoryStore(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Translate resolves text from source to target. Blank input yields "" without touching
// the store or the backend.
func (c *Cache) Translate(ctx context.Context, text, source, target string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	key := CacheKey{Text: text, Source: source, Target: target}

	cached, ok, err := c.store.Get(ctx, key)
	if err != nil {
		slog.Warn("Translation cache lookup failed", "error", err)
	}
	if ok {
		c.hits.Add(1)
		translationLookups.WithLabelValues("hit").Inc()
		return cached
	}
	c.misses.Add(1)

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	translated, err := c.backend.Translate(callCtx, text, source, target)
	translationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.failures.Add(1)
		translationLookups.WithLabelValues("fallback").Inc()
		slog.Warn("Translation failed, showing original text",
			"error", err, "source", source, "target", target, "chars", len(text))
		return text
	}
	translationLookups.WithLabelValues("miss").Inc()

	if err := c.store.Set(ctx, key, translated); err != nil {
		slog.Warn("Translation cache store failed", "error", err)
	}
	return translated
}

// CacheStats is a point-in-time view of cache counters.
type CacheStats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Failures int64 `json:"failures"`
	Entries  int   `json:"entries"`
}

// Stats returns the current counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Failures: c.failures.Load(),
		Entries:  c.store.Len(),
	}
}
