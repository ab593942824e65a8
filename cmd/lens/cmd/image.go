package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/MeKo-Tech/pogo-lens/internal/batch"
	"github.com/MeKo-Tech/pogo-lens/internal/config"
	"github.com/MeKo-Tech/pogo-lens/internal/overlay"
	"github.com/MeKo-Tech/pogo-lens/internal/pipeline"
	"github.com/MeKo-Tech/pogo-lens/internal/recognizer"
	"github.com/MeKo-Tech/pogo-lens/internal/utils"
	"github.com/spf13/cobra"
)

func newImageCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image <file|dir>...",
		Short: "Run one lens cycle on image files",
		Long: `Run recognition, aggregation and translation once on an image file instead of
the live screen. Box coordinates in the output are relative to the image.

Several files or a directory are processed as a batch; the output then names the
file of every result and a file that fails does not stop the others.

Supported formats: JPEG, PNG, BMP

Recognition uses Tesseract, which is only linked into binaries built with
-tags=tesseract. Other builds stop here with a hint unless recognizer.engine is
set to mock (answering from recognizer.mock_tokens).

Examples:
  lens image screenshot.png
  lens image screenshot.png --format json --output result.json
  lens image screenshot.png --render overlay.png --pair zh-en
  lens image shots/ --recursive --exclude '*_overlay.png' --overlay-dir overlays`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config()
			applyLanguageFlags(cmd, &cfg)
			if cmd.Flags().Changed("scale") {
				cfg.Capture.Scale, _ = cmd.Flags().GetFloat64("scale")
			}
			if cmd.Flags().Changed("detect-regions") {
				cfg.Recognizer.DetectRegions, _ = cmd.Flags().GetBool("detect-regions")
			}
			if cmd.Flags().Changed("engine") {
				cfg.Recognizer.Engine, _ = cmd.Flags().GetString("engine")
			}
			if cmd.Flags().Changed("min-conf") {
				cfg.Aggregation.MinConfidence, _ = cmd.Flags().GetFloat64("min-conf")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			validFormats := []string{outputFormatText, outputFormatJSON, outputFormatCSV}
			if !slices.Contains(validFormats, format) {
				return fmt.Errorf("invalid output format: %s (must be one of: %s)", format, strings.Join(validFormats, ", "))
			}

			if isBatch(args) {
				return runImageBatch(cmd, &cfg, args, format)
			}

			img, err := utils.LoadImage(args[0])
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}
			frame, err := pipeline.FrameFromImage(img, cfg.Capture.Scale)
			if err != nil {
				return err
			}

			p, closeAll, err := buildOneShotPipeline(cmd, &cfg)
			if err != nil {
				return err
			}
			defer closeAll()

			res, err := p.Process(cmd.Context(), frame)
			if err != nil {
				return fmt.Errorf("processing %s: %w", args[0], err)
			}
			slog.Info("Image processed", "file", args[0], "tokens", res.Tokens, "blocks", len(res.Blocks),
				"total_ms", res.Timing[pipeline.StageTotal])

			if renderPath, _ := cmd.Flags().GetString("render"); renderPath != "" {
				out := overlay.RenderOverlay(img, res.Blocks, overlay.DefaultRenderOptions())
				if err := utils.SaveImage(out, renderPath); err != nil {
					return err
				}
				slog.Info("Overlay rendered", "path", renderPath)
			}

			return writeResult(cmd, res, format)
		},
	}
	addLanguageFlags(cmd)
	cmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json, csv)")
	cmd.Flags().StringP("output", "o", "", "write the result to a file instead of stdout")
	cmd.Flags().String("render", "", "write the image with the translated overlay to this path")
	cmd.Flags().Float64("scale", 2, "upscale factor applied before recognition")
	cmd.Flags().Bool("detect-regions", false, "detect text regions first and recognize each one")
	cmd.Flags().String("engine", recognizer.EngineTesseract, "recognizer engine (tesseract, mock)")
	cmd.Flags().Float64("min-conf", 30, "minimum token confidence (0-100)")
	cmd.Flags().Bool("recursive", false, "descend into subdirectories (batch)")
	cmd.Flags().StringSlice("include", nil, "only process files matching these glob patterns (batch)")
	cmd.Flags().StringSlice("exclude", nil, "skip files matching these glob patterns (batch)")
	cmd.Flags().String("overlay-dir", "", "write <name>_overlay.png per file into this directory (batch)")
	return cmd
}

// isBatch reports whether args name more than a single file.
func isBatch(args []string) bool {
	if len(args) != 1 {
		return true
	}
	info, err := os.Stat(args[0])
	return err == nil && info.IsDir()
}

func runImageBatch(cmd *cobra.Command, cfg *config.Config, args []string, format string) error {
	if render, _ := cmd.Flags().GetString("render"); render != "" {
		return errors.New("--render takes a single file; use --overlay-dir for batches")
	}
	flags := cmd.Flags()
	bcfg := batch.Config{Scale: cfg.Capture.Scale}
	bcfg.OverlayDir, _ = flags.GetString("overlay-dir")
	bcfg.Discovery.Recursive, _ = flags.GetBool("recursive")
	bcfg.Discovery.Include, _ = flags.GetStringSlice("include")
	bcfg.Discovery.Exclude, _ = flags.GetStringSlice("exclude")

	p, closeAll, err := buildOneShotPipeline(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeAll()

	res, err := batch.Process(cmd.Context(), p, args, bcfg)
	if err != nil {
		return err
	}
	out, err := res.Format(format)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, out); err != nil {
		return err
	}
	if n := res.Failed(); n > 0 {
		return fmt.Errorf("%d of %d files failed", n, len(res.Items))
	}
	return nil
}

// buildOneShotPipeline assembles a pipeline without scheduler.
func buildOneShotPipeline(cmd *cobra.Command, cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	pcfg, err := cfg.ToPipelineConfig(false)
	if err != nil {
		return nil, nil, err
	}
	// A single frame has nothing to compare against.
	pcfg.SkipUnchanged = false

	rec, err := recognizer.New(cfg.ToRecognizerConfig())
	if err != nil {
		return nil, nil, err
	}
	cache, closeCache, err := newCache(cmd.Context(), cfg)
	if err != nil {
		_ = recognizer.Close(rec)
		return nil, nil, err
	}
	p, err := pipeline.NewBuilder().WithConfig(pcfg).WithRecognizer(rec).WithCache(cache).Build()
	if err != nil {
		_ = recognizer.Close(rec)
		_ = closeCache()
		return nil, nil, err
	}
	return p, func() {
		_ = p.Close()
		_ = closeCache()
	}, nil
}

func writeResult(cmd *cobra.Command, res *pipeline.CycleResult, format string) error {
	var (
		out string
		err error
	)
	switch format {
	case outputFormatJSON:
		out, err = pipeline.ToJSON(res)
	case outputFormatCSV:
		out, err = pipeline.ToCSV(res)
	default:
		out, err = pipeline.ToPlainText(res)
	}
	if err != nil {
		return err
	}
	return writeOutput(cmd, out)
}

// writeOutput prints out, or writes it to the --output file.
func writeOutput(cmd *cobra.Command, out string) error {
	if !strings.HasSuffix(out, "\n") && out != "" {
		out += "\n"
	}

	if file, _ := cmd.Flags().GetString("output"); file != "" {
		if err := os.WriteFile(file, []byte(out), 0o644); err != nil { //nolint:gosec // result file is not secret
			return fmt.Errorf("failed to write output file: %w", err)
		}
		slog.Info("Result written", "path", file)
		return nil
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
