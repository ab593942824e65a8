package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/MeKo-Tech/pogo-lens/internal/config"
	"github.com/MeKo-Tech/pogo-lens/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	cfgFile string
	loader  *config.Loader
	cfg     *config.Config
}

// NewRootCommand builds the lens command tree on a fresh viper instance.
func NewRootCommand() *cobra.Command {
	a := &app{loader: config.NewLoaderWithViper(viper.New())}

	rootCmd := &cobra.Command{
		Use:   "lens",
		Short: "Live screen translation lens",
		Long: `lens watches a rectangle of the screen, recognizes the text under it and
overlays a translation in place.

Each cycle hides the overlay, grabs the region, runs OCR, groups the words into
sentences, translates them through a cache and pushes the result to the overlay
renderer over a local websocket.

Examples:
  lens run --pair ja-en --region 100,100,600,200
  lens image screenshot.png --format json --render overlay.png
  lens translate "こんにちは"
  lens languages`,
		Version:      version.String(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is search in ., $XDG_CONFIG_HOME/pogo-lens, $HOME/.config/pogo-lens, /etc/pogo-lens)")
	flags.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	v := a.loader.Viper()
	_ = v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := a.initConfig(); err != nil {
			return err
		}
		setupLogging(cmd.ErrOrStderr(), a.cfg)
		return nil
	}

	rootCmd.AddCommand(
		newRunCommand(a),
		newImageCommand(a),
		newTranslateCommand(a),
		newLanguagesCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig loads .env, then the config file, environment and defaults.
func (a *app) initConfig() error {
	if a.cfg != nil {
		return nil
	}
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	var err error
	if a.cfgFile != "" {
		a.cfg, err = a.loader.LoadWithFile(a.cfgFile)
	} else {
		a.cfg, err = a.loader.Load()
	}
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	return nil
}

// config returns a copy that commands may override with their flags.
func (a *app) config() config.Config {
	return *a.cfg
}

func setupLogging(w io.Writer, cfg *config.Config) {
	var level slog.Level
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch strings.ToLower(cfg.LogLevel) {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}
