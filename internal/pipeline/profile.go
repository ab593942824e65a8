package pipeline

import (
	"sync/atomic"

	"github.com/MeKo-Tech/pogo-lens/internal/common"
)

// Profiler aggregates stage timers across cycles.
type Profiler struct {
	DetectionTimeNs   atomic.Int64
	RecognitionTimeNs atomic.Int64
	TranslationTimeNs atomic.Int64
	FramesProcessed   atomic.Int64
	FramesSkipped     atomic.Int64
	TokensRecognized  atomic.Int64
	BlocksEmitted     atomic.Int64
}

// Record adds one processed frame.
func (p *Profiler) Record(t *common.StageTimer, tokens, blocks int) {
	p.DetectionTimeNs.Add(t.Stage(StageDetect).Nanoseconds())
	p.RecognitionTimeNs.Add(t.Stage(StageRecognize).Nanoseconds())
	p.TranslationTimeNs.Add(t.Stage(StageTranslate).Nanoseconds())
	p.FramesProcessed.Add(1)
	p.TokensRecognized.Add(int64(tokens))
	p.BlocksEmitted.Add(int64(blocks))
}

// Snapshot returns cumulative metrics in milliseconds for readability.
func (p *Profiler) Snapshot() map[string]any {
	frames := p.FramesProcessed.Load()
	det := p.DetectionTimeNs.Load()
	rec := p.RecognitionTimeNs.Load()
	tr := p.TranslationTimeNs.Load()
	out := map[string]any{
		"frames":       frames,
		"skipped":      p.FramesSkipped.Load(),
		"tokens":       p.TokensRecognized.Load(),
		"blocks":       p.BlocksEmitted.Load(),
		"det_ms_total": det / 1_000_000,
		"rec_ms_total": rec / 1_000_000,
		"tr_ms_total":  tr / 1_000_000,
	}
	if frames > 0 {
		out["rec_ms_per_frame"] = float64(rec) / 1_000_000.0 / float64(frames)
		out["tr_ms_per_frame"] = float64(tr) / 1_000_000.0 / float64(frames)
	}
	return out
}
