package synth

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/jedib0t/go-pretty/v6/progress"

	"dubsync/internal/logging"
	"dubsync/internal/services"
	"dubsync/internal/subtitle"
)

// Prober measures the duration of a clip on disk.
type Prober func(ctx context.Context, path string) (float64, error)

// ClipPath returns the canonical path for one synthesized piece of a
// line.
func ClipPath(dir string, lineIndex, clipIndex int) string {
	return filepath.Join(dir, fmt.Sprintf("%d_%d.wav", lineIndex, clipIndex))
}

// Pool synthesizes clips for a batch of planned lines. The first few
// lines run serially to let the engine warm up before the workers fan
// out. A line that fails transiently after warmup is marked with the
// failure sentinel and the batch continues; fatal errors and warmup
// failures abort the run because they usually mean the engine is not
// up at all or the workspace is misconfigured.
type Pool struct {
	Engine   Engine
	Probe    Prober
	Workers  int
	Warmup   int
	TempDir  string
	Logger   *slog.Logger
	Progress progress.Writer
}

type lineResult struct {
	idx int
	dur float64
	err error
}

// Run synthesizes every line and fills in RealDur, the measured total
// duration of the line's clips. The input slice is not modified.
func (p *Pool) Run(ctx context.Context, lines []subtitle.Line) ([]subtitle.Line, error) {
	out := make([]subtitle.Line, len(lines))
	copy(out, lines)
	if len(out) == 0 {
		return out, nil
	}

	var tracker *progress.Tracker
	if p.Progress != nil {
		tracker = &progress.Tracker{Message: "synthesizing", Total: int64(len(out))}
		p.Progress.AppendTracker(tracker)
	}
	advance := func() {
		if tracker != nil {
			tracker.Increment(1)
		}
	}

	warmup := p.Warmup
	if warmup > len(out) {
		warmup = len(out)
	}
	for i := 0; i < warmup; i++ {
		dur, err := p.synthesizeLine(ctx, out[i])
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "synth", "warmup",
				fmt.Sprintf("line %d failed during warmup", out[i].Index), err)
		}
		out[i].RealDur = dur
		advance()
	}

	if warmup < len(out) {
		workers := p.Workers
		if workers < 1 {
			workers = 1
		}
		jobs := make(chan int)
		results := make(chan lineResult)

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for idx := range jobs {
					dur, err := p.synthesizeLine(ctx, out[idx])
					if err != nil {
						err = services.Wrap(services.ErrTransient, "synth", "synthesize",
							fmt.Sprintf("line %d", out[idx].Index), err)
					}
					results <- lineResult{idx: idx, dur: dur, err: err}
				}
			}()
		}
		go func() {
			for i := warmup; i < len(out); i++ {
				jobs <- i
			}
			close(jobs)
			wg.Wait()
			close(results)
		}()

		failed := 0
		var fatal error
		for res := range results {
			if res.err != nil {
				out[res.idx].RealDur = subtitle.FailedDuration
				failed++
				if fatal == nil && services.IsFatal(res.err) {
					fatal = res.err
				}
				p.Logger.Error("synthesis failed, marking line and continuing",
					logging.Int("line", out[res.idx].Index),
					logging.Error(res.err))
			} else {
				out[res.idx].RealDur = res.dur
			}
			advance()
		}
		if fatal != nil {
			return nil, fatal
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if failed > 0 {
			p.Logger.Warn("batch finished with failures",
				logging.Int("failed", failed),
				logging.Int("lines", len(out)))
		}
	}

	if tracker != nil {
		tracker.MarkAsDone()
	}
	return out, nil
}

// synthesizeLine renders every clip of a line and returns their summed
// duration.
func (p *Pool) synthesizeLine(ctx context.Context, line subtitle.Line) (float64, error) {
	pieces := line.Clips
	if len(pieces) == 0 {
		pieces = []string{line.Translation}
	}
	total := 0.0
	for j, text := range pieces {
		dest := ClipPath(p.TempDir, line.Index, j)
		if err := p.Engine.Synthesize(ctx, text, dest); err != nil {
			return 0, err
		}
		dur, err := p.Probe(ctx, dest)
		if err != nil {
			return 0, err
		}
		total += dur
	}
	return total, nil
}
