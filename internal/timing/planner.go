package timing

import (
	"log/slog"

	"dubsync/internal/logging"
	"dubsync/internal/subtitle"
)

// PlanParams carries the tunables for chunk planning.
type PlanParams struct {
	// Tolerance is the gap length that forces a chunk boundary.
	Tolerance float64
	// Accept is the fastest playback ratio considered acceptable.
	Accept float64
	// MaxMerge bounds how many lines one merge pass may absorb.
	MaxMerge int
}

// PlanChunks marks chunk boundaries on analyzed lines. A line with
// CutOff set ends a chunk. Boundaries are seeded at gaps of at least
// the tolerance, then fast lines are merged with their successors
// until the combined estimate fits, up to the merge limit. The last
// line always ends a chunk. The input slice is not modified.
func PlanChunks(lines []subtitle.Line, params PlanParams, logger *slog.Logger) []subtitle.Line {
	out := make([]subtitle.Line, len(lines))
	copy(out, lines)

	for i := range out {
		out[i].CutOff = 0
		if out[i].Gap >= params.Tolerance {
			out[i].CutOff = 1
		}
	}

	idx := 0
	for idx < len(out) {
		if out[idx].CutOff == 1 {
			if out[idx].SpeedFlag == subtitle.SpeedUnfixable {
				logger.Warn("line too fast to fix by speedup",
					logging.Int("line", out[idx].Index),
					logging.Float64("est_dur", out[idx].EstDur),
					logging.Float64("tol_dur", out[idx].TolDur))
			}
			idx++
			continue
		}
		if idx+1 >= len(out) {
			out[idx].CutOff = 1
			break
		}
		if out[idx].SpeedFlag <= subtitle.SpeedNormal && out[idx+1].SpeedFlag <= subtitle.SpeedNormal {
			// Both this line and the next fit their slots, so this
			// line can stand alone.
			out[idx].CutOff = 1
			idx++
			continue
		}
		idx += mergeLines(out, idx, params)
	}

	chunks := 0
	for i := range out {
		if out[i].CutOff == 1 {
			chunks++
		}
	}
	logger.Info("chunk plan complete",
		logging.Int("lines", len(out)),
		logging.Int("chunks", chunks))
	return out
}

// mergeLines absorbs lines after start until the combined estimate fits
// the combined slot or the merge limit is hit, marks the boundary, and
// returns how many lines were consumed.
func mergeLines(lines []subtitle.Line, start int, params PlanParams) int {
	estDur := lines[start].EstDur
	tolDur := lines[start].TolDur
	duration := lines[start].Duration

	count := 1
	for count < params.MaxMerge && start+count < len(lines) {
		next := lines[start+count]
		estDur += next.EstDur
		tolDur += next.TolDur
		duration += next.Duration

		flag := classifySpeed(estDur, tolDur, duration, next.Tolerance, params.Accept)
		// Stop early after absorbing two lines even if still fast;
		// longer merges trade too much sync for too little pace.
		if flag <= subtitle.SpeedNormal || count == 2 {
			lines[start+count].CutOff = 1
			return count + 1
		}
		count++
	}
	lines[start+count-1].CutOff = 1
	return count
}
