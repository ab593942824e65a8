package cmd

import (
	"context"
	"fmt"

	"github.com/MeKo-Tech/pogo-lens/internal/config"
	"github.com/MeKo-Tech/pogo-lens/internal/translate"
	"github.com/spf13/cobra"
)

// newTranslator builds the configured translation backend, wrapped in a circuit
// breaker when a threshold is set.
func newTranslator(cfg *config.Config) translate.Translator {
	var backend translate.Translator
	switch cfg.Translation.Engine {
	case config.TranslationMock:
		backend = translate.NewMockTranslator(nil)
	default:
		backend = translate.NewLibreClient(cfg.ToLibreOptions())
	}
	if cfg.Translation.BreakerThreshold > 0 {
		backend = translate.NewBreaker(backend, cfg.Translation.BreakerThreshold, cfg.Translation.BreakerCooldown)
	}
	return backend
}

// newCache builds the translation cache. With cache.redis_url set, entries are shared
// through Redis; the returned closer releases the connection.
func newCache(ctx context.Context, cfg *config.Config) (*translate.Cache, func() error, error) {
	opts := []translate.CacheOption{translate.WithTimeout(cfg.Translation.Timeout)}
	closer := func() error { return nil }

	if cfg.Cache.RedisURL != "" {
		store, err := translate.NewRedisStore(ctx, cfg.Cache.RedisURL, cfg.Cache.Prefix)
		if err != nil {
			return nil, nil, fmt.Errorf("translation cache: %w", err)
		}
		opts = append(opts, translate.WithStore(store))
		closer = store.Close
	}
	return translate.NewCache(newTranslator(cfg), opts...), closer, nil
}

// addLanguageFlags registers --pair, --from and --to.
func addLanguageFlags(cmd *cobra.Command) {
	cmd.Flags().String("pair", config.DefaultPair, "language pair preset (see `lens languages`)")
	cmd.Flags().String("from", "", "source language code, overrides the pair")
	cmd.Flags().String("to", "", "target language code, overrides the pair")
}

// applyLanguageFlags copies --pair/--from/--to overrides into cfg.
func applyLanguageFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("pair") {
		cfg.Language.Pair, _ = flags.GetString("pair")
	}
	if flags.Changed("from") {
		cfg.Language.Source, _ = flags.GetString("from")
	}
	if flags.Changed("to") {
		cfg.Language.Target, _ = flags.GetString("to")
	}
}
