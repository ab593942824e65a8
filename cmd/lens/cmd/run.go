package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/capture"
	"github.com/MeKo-Tech/pogo-lens/internal/config"
	"github.com/MeKo-Tech/pogo-lens/internal/overlay"
	"github.com/MeKo-Tech/pogo-lens/internal/pipeline"
	"github.com/MeKo-Tech/pogo-lens/internal/recognizer"
	"github.com/MeKo-Tech/pogo-lens/internal/server"
	"github.com/spf13/cobra"
)

func newRunCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the live translation lens",
		Long: `Start the live loop: every interval the overlay is hidden, the region under the
lens is captured and recognized, and the translated blocks are pushed to the overlay
renderer connected to the lens server.

The lens server listens on server.host:server.port and provides:
  GET  /health       - Health check
  GET  /overlay      - Current translated blocks
  GET  /overlay.png  - Last frame with the overlay drawn on it
  GET  /geometry     - Lens rectangle and drag state
  POST /geometry     - Move or resize the lens
  GET  /stats        - Pipeline, scheduler and cache counters
  GET  /ws           - Renderer websocket
  GET  /metrics      - Prometheus metrics

Stop with Ctrl+C.

Recognition uses Tesseract, which is only linked into binaries built with
-tags=tesseract. Other builds stop here with a hint unless recognizer.engine is
set to mock (answering from recognizer.mock_tokens).

Examples:
  lens run
  lens run --pair zh-en --region 0,0,800,300 --fast
  lens run --no-server --source screenshot.png --cycles 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config()
			if err := applyRunFlags(cmd, &cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fast, _ := cmd.Flags().GetBool("fast")
			noServer, _ := cmd.Flags().GetBool("no-server")
			cycles, _ := cmd.Flags().GetInt("cycles")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runLens(ctx, cmd.OutOrStdout(), &cfg, fast, noServer, cycles)
		},
	}
	addLanguageFlags(cmd)
	cmd.Flags().String("region", "", "lens rectangle as x,y,width,height")
	cmd.Flags().Duration("interval", capture.DefaultInterval, "capture interval")
	cmd.Flags().Bool("fast", false, "use the fast interval (capture.fast_interval)")
	cmd.Flags().String("source", config.SourceScreen, "capture source: screen or an image file")
	cmd.Flags().IntP("port", "p", 8765, "lens server port")
	cmd.Flags().Bool("no-server", false, "run headless without the lens server; results are printed")
	cmd.Flags().Int("cycles", 0, "stop after this many processed frames (0 runs until interrupted)")
	return cmd
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	applyLanguageFlags(cmd, cfg)
	flags := cmd.Flags()
	if flags.Changed("region") {
		s, _ := flags.GetString("region")
		r, err := parseRegion(s)
		if err != nil {
			return err
		}
		cfg.Capture.Region = config.RegionConfig{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
	}
	if flags.Changed("interval") {
		cfg.Capture.Interval, _ = flags.GetDuration("interval")
	}
	if flags.Changed("source") {
		cfg.Capture.Source, _ = flags.GetString("source")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	return nil
}

// parseRegion reads "x,y,width,height".
func parseRegion(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("invalid region %q (want x,y,width,height)", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("invalid region %q: width and height must be positive", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

func newGrabber(cfg *config.Config) (capture.Grabber, func() error, error) {
	if cfg.Capture.Source == "" || cfg.Capture.Source == config.SourceScreen {
		g := capture.NewCommandGrabber()
		return g, g.Close, nil
	}
	g, err := capture.NewFileGrabber(cfg.Capture.Source)
	if err != nil {
		return nil, nil, err
	}
	return g, func() error { return nil }, nil
}

// runLens wires grabber, surface, scheduler and pipeline and runs the loop until ctx
// ends or the requested number of frames was processed.
func runLens(ctx context.Context, out io.Writer, cfg *config.Config, fast, noServer bool, cycles int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pcfg, err := cfg.ToPipelineConfig(fast)
	if err != nil {
		return err
	}

	if err := recognizer.CheckEngine(cfg.Recognizer.Engine); err != nil {
		return err
	}
	grabber, closeGrabber, err := newGrabber(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeGrabber() }()

	rec, err := recognizer.New(cfg.ToRecognizerConfig())
	if err != nil {
		return err
	}
	cache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		_ = recognizer.Close(rec)
		return err
	}
	defer func() { _ = closeCache() }()

	var (
		srv     *server.Server
		surface overlay.Surface
		target  capture.Target
	)
	if noServer {
		surface = overlay.NewRecorder()
		target = capture.FixedTarget(cfg.RegionRect())
	} else {
		srv, err = server.NewServer(server.Config{
			Host:            cfg.Server.Host,
			Port:            cfg.Server.Port,
			CORSOrigin:      cfg.Server.CORSOrigin,
			BlinkTimeout:    cfg.Server.BlinkTimeout,
			ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout) * time.Second,
			Region:          cfg.RegionRect(),
		})
		if err != nil {
			_ = recognizer.Close(rec)
			return err
		}
		surface = srv.Surface()
		target = srv.Surface()
	}

	scheduler := capture.NewScheduler(grabber, surface, target, cfg.ToSchedulerOptions())
	results := make(chan *pipeline.CycleResult, 8)

	p, err := pipeline.NewBuilder().
		WithConfig(pcfg).
		WithRecognizer(rec).
		WithCache(cache).
		WithScheduler(scheduler, surface).
		WithObserver(func(res *pipeline.CycleResult) {
			if srv != nil && res.Frame != nil && res.Status == pipeline.StatusOK {
				f := res.Frame
				srv.Surface().RecordFrame(res.ID, f.Image, f.Scale, f.Inset, f.Region)
			}
			select {
			case results <- res:
			default:
			}
		}).
		Build()
	if err != nil {
		_ = recognizer.Close(rec)
		return err
	}
	defer func() { _ = p.Close() }()

	errCh := make(chan error, 2)
	if srv != nil {
		srv.SetInfoProvider(func() any { return p.Info() })
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	processed := 0
	for {
		select {
		case res := <-results:
			report(out, res, srv == nil)
			if res.Status == pipeline.StatusOK || res.Status == pipeline.StatusUnchanged {
				processed++
			}
			if cycles > 0 && processed >= cycles {
				cancel()
			}
		case err := <-errCh:
			cancel()
			<-done
			return err
		case <-done:
			slog.Info("Lens stopped", "frames", processed)
			select {
			case err := <-errCh:
				if !errors.Is(err, context.Canceled) {
					return err
				}
			default:
			}
			return nil
		}
	}
}

// report logs a finished cycle; headless runs also print the translated lines.
func report(out io.Writer, res *pipeline.CycleResult, echo bool) {
	switch res.Status {
	case pipeline.StatusOK:
		slog.Debug("Cycle finished", "cycle_id", res.ID, "blocks", len(res.Blocks), "timing_ms", res.Timing)
		if echo {
			text, _ := pipeline.ToPlainText(res)
			if text != "" {
				_, _ = fmt.Fprintln(out, text)
			}
		}
	case pipeline.StatusError:
		slog.Warn("Cycle failed", "frame_id", res.FrameID, "error", res.Error)
	default:
		slog.Debug("Cycle skipped", "frame_id", res.FrameID, "status", res.Status)
	}
}
