package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/capture"
	"github.com/corona10/goimagehash"
)

// Run drives the live loop until ctx is cancelled: every interval the scheduler gets a
// chance to capture, and each captured frame is processed on its own goroutine. The
// scheduler gate keeps at most one frame in flight. On shutdown Run waits for the
// in-flight frame to finish before returning.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.scheduler == nil || p.surface == nil {
		return errors.New("pipeline has no scheduler; use WithScheduler")
	}

	slog.Info("Lens loop started",
		"interval_ms", p.cfg.Interval.Milliseconds(),
		"source", p.cfg.SourceLang,
		"target", p.cfg.TargetLang,
		"detect_regions", p.cfg.DetectRegions)

	var wg sync.WaitGroup
	defer wg.Wait()

	// In-flight cycles are never cancelled; translation has its own timeout.
	cycleCtx := context.WithoutCancel(ctx)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Lens loop stopping", "scheduler", p.scheduler.Stats())
			return nil
		case <-ticker.C:
			frame, ok := p.scheduler.Tick(ctx)
			if !ok {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.HandleFrame(cycleCtx, frame)
			}()
		}
	}
}

// HandleFrame processes a captured frame and delivers the overlay. It always releases
// the scheduler gate, whatever the outcome.
func (p *Pipeline) HandleFrame(ctx context.Context, frame *capture.Frame) *CycleResult {
	if p.scheduler != nil {
		defer p.scheduler.MarkReady()
	}

	var hash *goimagehash.ImageHash
	if p.skip != nil {
		var unchanged bool
		unchanged, hash = p.skip.check(frame)
		if unchanged {
			p.profiler.FramesSkipped.Add(1)
			res := &CycleResult{FrameID: frame.ID, Status: StatusUnchanged, Region: RegionOf(frame.Region)}
			p.finish(res, frame)
			return res
		}
	}

	res, err := p.process(ctx, frame)
	if err != nil {
		slog.Warn("Recognition failed", "frame_id", frame.ID, "error", err)
		if p.skip != nil {
			p.skip.reset()
		}
		res = &CycleResult{FrameID: frame.ID, Status: StatusError, Error: err.Error(), Region: RegionOf(frame.Region)}
	} else {
		res.Status = StatusOK
	}

	if p.scheduler != nil && p.scheduler.Stale(frame) {
		slog.Debug("Dropping result of a frame captured before the lens moved", "frame_id", frame.ID)
		if p.skip != nil {
			p.skip.reset()
		}
		res.Status = StatusStale
		res.Blocks = nil
		p.finish(res, frame)
		return res
	}

	if p.surface != nil {
		p.surface.SetOverlay(res.Blocks)
	}
	if res.Status == StatusOK && p.skip != nil && hash != nil {
		p.skip.remember(frame, hash)
	}
	p.finish(res, frame)
	return res
}

func (p *Pipeline) finish(res *CycleResult, frame *capture.Frame) {
	res.Frame = frame
	cyclesTotal.WithLabelValues(res.Status).Inc()
	for _, o := range p.observers {
		o(res)
	}
}
