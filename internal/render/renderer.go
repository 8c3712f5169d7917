package render

import (
	"context"
	"fmt"
	"log/slog"

	"dubsync/internal/logging"
	"dubsync/internal/pacing"
	"dubsync/internal/services"
	"dubsync/internal/subtitle"
	"dubsync/internal/synth"
)

// chunkOverflowLimit is the worst chunk overrun the renderer repairs by
// trimming the final clip. Anything larger is reported and left alone.
const chunkOverflowLimit = 0.6

// SpeedAdjuster retimes clips on disk.
type SpeedAdjuster interface {
	AdjustSpeed(ctx context.Context, input, output string, speed float64) error
	Trim(ctx context.Context, path string, duration float64) error
}

// Renderer lays synthesized clips onto the video timeline. Each chunk
// gets one speed factor from the solver, its clips are retimed from the
// temp dir into the segments dir, and a fresh start/end pair is recorded
// per clip as the cursor walks the chunk.
type Renderer struct {
	Adjuster    SpeedAdjuster
	Probe       synth.Prober
	Accept      float64
	MinSpeed    float64
	TempDir     string
	SegmentsDir string
	Logger      *slog.Logger
}

// Render processes every chunk in lines and returns a copy with
// NewTimes populated. Chunks containing a line whose synthesis failed
// are skipped so one bad line cannot poison its neighbors' timing.
func (r *Renderer) Render(ctx context.Context, lines []subtitle.Line) ([]subtitle.Line, error) {
	out := make([]subtitle.Line, len(lines))
	copy(out, lines)

	for _, chunk := range subtitle.Chunks(out) {
		if failed := failedLine(chunk); failed >= 0 {
			r.Logger.Warn("skipping chunk with failed synthesis",
				logging.Int("first_line", chunk[0].Index),
				logging.Int("failed_line", chunk[failed].Index))
			continue
		}
		if err := r.renderChunk(ctx, chunk); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func failedLine(chunk []subtitle.Line) int {
	for i := range chunk {
		if chunk[i].SynthesisFailed() {
			return i
		}
	}
	return -1
}

func (r *Renderer) renderChunk(ctx context.Context, chunk []subtitle.Line) error {
	speed, keepGaps := pacing.Solve(chunk, r.Accept, r.MinSpeed)

	last := &chunk[len(chunk)-1]
	chunkStart := chunk[0].Start
	chunkEnd := last.End + last.Tolerance
	cur := chunkStart

	for i := range chunk {
		line := &chunk[i]
		if i != 0 && keepGaps {
			cur += chunk[i-1].Gap / speed
		}

		clips := line.Clips
		if len(clips) == 0 {
			clips = []string{line.Translation}
		}
		line.NewTimes = nil
		for j := range clips {
			temp := synth.ClipPath(r.TempDir, line.Index, j)
			output := synth.ClipPath(r.SegmentsDir, line.Index, j)
			if err := r.Adjuster.AdjustSpeed(ctx, temp, output, speed); err != nil {
				return services.Wrap(services.ErrExternalTool, "render", "adjust speed",
					fmt.Sprintf("line %d clip %d", line.Index, j), err)
			}
			adjusted, err := r.Probe(ctx, output)
			if err != nil {
				return services.Wrap(services.ErrExternalTool, "render", "probe clip",
					fmt.Sprintf("line %d clip %d", line.Index, j), err)
			}
			line.NewTimes = append(line.NewTimes, [2]float64{cur, cur + adjusted})
			cur += adjusted
		}
	}

	level := slog.LevelInfo
	if speed > r.Accept {
		level = slog.LevelWarn
	}
	r.Logger.Log(ctx, level, "chunk rendered",
		logging.Int("first_line", chunk[0].Index),
		logging.Int("last_line", last.Index),
		logging.Float64("speed", speed),
		logging.Bool("keep_gaps", keepGaps))

	if cur <= chunkEnd {
		return nil
	}
	overflow := cur - chunkEnd
	if overflow > chunkOverflowLimit {
		r.Logger.Warn("chunk overruns its slot beyond repair, leaving it long",
			logging.Int("last_line", last.Index),
			logging.Float64("overflow", overflow))
		return nil
	}

	// Shave the overrun off the chunk's final clip and pin its end to
	// the slot boundary.
	lastClip := len(last.NewTimes) - 1
	lastPath := synth.ClipPath(r.SegmentsDir, last.Index, lastClip)
	lastDur := last.NewTimes[lastClip][1] - last.NewTimes[lastClip][0]
	r.Logger.Warn("trimming final clip to fit chunk slot",
		logging.Int("last_line", last.Index),
		logging.Float64("overflow", overflow))
	if err := r.Adjuster.Trim(ctx, lastPath, lastDur-overflow); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "trim clip",
			fmt.Sprintf("line %d clip %d", last.Index, lastClip), err)
	}
	last.NewTimes[lastClip][1] = chunkEnd
	return nil
}
