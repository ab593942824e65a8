package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_BlankInputSkipsEverything(t *testing.T) {
	mock := NewMockTranslator(nil)
	cache := NewCache(mock)

	for _, in := range []string{"", "   ", "\n\t"} {
		assert.Empty(t, cache.Translate(context.Background(), in, "ja", "en"))
	}
	assert.Empty(t, mock.Calls())
	assert.Equal(t, CacheStats{}, cache.Stats())
}

func TestCache_SecondCallIsServedFromCache(t *testing.T) {
	mock := NewMockTranslator(map[string]string{"こんにちは": "hello"})
	cache := NewCache(mock)
	ctx := context.Background()

	first := cache.Translate(ctx, "こんにちは", "ja", "en")
	second := cache.Translate(ctx, "こんにちは", "ja", "en")

	assert.Equal(t, "hello", first)
	assert.Equal(t, first, second)
	assert.Len(t, mock.Calls(), 1)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestCache_KeyIsExactTuple(t *testing.T) {
	mock := NewMockTranslator(nil)
	cache := NewCache(mock)
	ctx := context.Background()

	cache.Translate(ctx, "hello", "en", "es")
	cache.Translate(ctx, "hello", "en", "de")
	cache.Translate(ctx, "hello ", "en", "es")
	cache.Translate(ctx, "Hello", "en", "es")

	assert.Len(t, mock.Calls(), 4)
	assert.Equal(t, 4, cache.Stats().Entries)
}

func TestCache_FailureReturnsOriginal(t *testing.T) {
	mock := NewMockTranslator(nil)
	mock.SetFail(true)
	cache := NewCache(mock)

	got := cache.Translate(context.Background(), "untranslatable", "en", "es")

	assert.Equal(t, "untranslatable", got)
	assert.Equal(t, int64(1), cache.Stats().Failures)
	assert.Equal(t, 0, cache.Stats().Entries, "failures are not cached")

	// The next call retries the backend.
	mock.SetFail(false)
	assert.Equal(t, "UNTRANSLATABLE", cache.Translate(context.Background(), "untranslatable", "en", "es"))
}

func TestCache_TimeoutFallsBack(t *testing.T) {
	slow := TranslatorFunc(func(ctx context.Context, text, _, _ string) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
			return "late", nil
		}
	})
	cache := NewCache(slow, WithTimeout(20*time.Millisecond))

	start := time.Now()
	got := cache.Translate(context.Background(), "slow text", "en", "es")

	assert.Equal(t, "slow text", got)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

type failingStore struct{ *MemoryStore }

func (f *failingStore) Get(context.Context, CacheKey) (string, bool, error) {
	return "", false, errors.New("store down")
}

func TestCache_StoreErrorsDoNotBlockTranslation(t *testing.T) {
	mock := NewMockTranslator(nil)
	cache := NewCache(mock, WithStore(&failingStore{MemoryStore: NewMemoryStore()}))

	assert.Equal(t, "ABC", cache.Translate(context.Background(), "abc", "en", "de"))
}

func TestCache_AgainstHTTPBackend(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translatedText":"hola"}`))
	}))
	defer srv.Close()

	cache := NewCache(NewLibreClient(LibreOptions{URL: srv.URL}))
	for range 3 {
		require.Equal(t, "hola", cache.Translate(context.Background(), "hello", "en", "es"))
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestNormalizeSentence(t *testing.T) {
	assert.Equal(t, "line one line two", NormalizeSentence("  line one\nline two\r\n"))
	assert.Empty(t, NormalizeSentence("\n\n"))
}
