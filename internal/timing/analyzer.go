package timing

import (
	"log/slog"
	"math"

	"dubsync/internal/logging"
	"dubsync/internal/subtitle"
)

// Estimator predicts spoken duration for a line of text.
type Estimator interface {
	Estimate(text string) float64
}

// AnalyzeParams carries the tunables for timing analysis.
type AnalyzeParams struct {
	// Tolerance caps how much of the following gap a line may borrow.
	Tolerance float64
	// Accept is the fastest playback ratio considered acceptable.
	Accept float64
}

// Analyze computes, for every line, the gap to its successor, the
// tolerable duration (slot plus borrowable gap), the estimated spoken
// duration, and a speed flag classifying how the estimate fits the slot.
// The last line's gap runs to the end of the source audio. The input
// slice is not modified.
func Analyze(lines []subtitle.Line, audioDuration float64, params AnalyzeParams, est Estimator, logger *slog.Logger) []subtitle.Line {
	out := make([]subtitle.Line, len(lines))
	copy(out, lines)
	if len(out) == 0 {
		return out
	}

	for i := range out {
		if i < len(out)-1 {
			out[i].Gap = out[i+1].Start - out[i].End
		} else {
			out[i].Gap = audioDuration - out[i].End
		}
		out[i].Tolerance = math.Min(out[i].Gap, params.Tolerance)
		out[i].TolDur = out[i].Duration + out[i].Tolerance
		out[i].EstDur = est.Estimate(out[i].Translation)
		out[i].SpeedFlag = classifySpeed(out[i].EstDur, out[i].TolDur, out[i].Duration, out[i].Tolerance, params.Accept)
	}

	fast := 0
	for i := range out {
		if out[i].SpeedFlag > 0 {
			fast++
		}
	}
	logger.Info("timing analysis complete",
		logging.Int("lines", len(out)),
		logging.Int("fast_lines", fast))
	return out
}

// classifySpeed grades how the estimated spoken duration fits the slot.
// 2 means it overruns even at the fastest acceptable speed, 1 means it
// fits only with speedup, -1 means it runs well short, 0 is normal.
func classifySpeed(estDur, tolDur, duration, tolerance, accept float64) int {
	switch {
	case estDur/accept > tolDur:
		return subtitle.SpeedUnfixable
	case estDur > tolDur:
		return subtitle.SpeedFast
	case estDur < duration-tolerance:
		return subtitle.SpeedSlow
	default:
		return subtitle.SpeedNormal
	}
}
