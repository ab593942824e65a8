package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MeKo-Tech/pogo-lens/internal/config"
	"github.com/MeKo-Tech/pogo-lens/internal/translate"
	"github.com/spf13/cobra"
)

func newTranslateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <text>...",
		Short: "Translate text through the lens translation cache",
		Long: `Translate one sentence the way the lens does: newlines are folded into spaces,
the result is cached and a failing backend yields the original text.

Examples:
  lens translate "こんにちは"
  lens translate --pair de-en "Guten Morgen"
  lens translate --engine mock hello`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config()
			applyLanguageFlags(cmd, &cfg)
			if cmd.Flags().Changed("engine") {
				cfg.Translation.Engine, _ = cmd.Flags().GetString("engine")
			}
			if cmd.Flags().Changed("url") {
				cfg.Translation.URL, _ = cmd.Flags().GetString("url")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			pair, err := cfg.ResolveLanguage()
			if err != nil {
				return err
			}

			text := translate.NormalizeSentence(strings.Join(args, " "))
			if text == "" {
				return errors.New("nothing to translate")
			}

			cache, closeCache, err := newCache(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeCache() }()

			out := cache.Translate(cmd.Context(), text, pair.Source, pair.Target)
			stats := cache.Stats()
			slog.Debug("Translation finished", "source", pair.Source, "target", pair.Target,
				"hits", stats.Hits, "misses", stats.Misses, "failures", stats.Failures)
			if stats.Failures > 0 {
				slog.Warn("Translation backend failed, showing original text")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	addLanguageFlags(cmd)
	cmd.Flags().String("engine", config.TranslationLibre, "translation engine (libre, mock)")
	cmd.Flags().String("url", "", "LibreTranslate URL, overrides translation.url")
	return cmd
}
