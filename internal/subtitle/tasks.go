package subtitle

import (
	"fmt"
	"log/slog"
	"strings"

	"dubsync/internal/logging"
)

// shortMergeGap is the largest silence across which an under-length line is
// merged into its successor instead of being extended in place.
const shortMergeGap = 0.5

// BuildLines pairs translated cues with their source cues by cue index and
// seeds one line per translated cue. Duration normalization is a separate
// pass, NormalizeDurations, applied after the lines have been snapped to the
// recognizer word stream so the normalized spans survive into analysis.
func BuildLines(translated, source []Cue) ([]Line, error) {
	if len(translated) == 0 {
		return nil, fmt.Errorf("no translated cues")
	}

	sourceByIndex := make(map[int]string, len(source))
	for _, cue := range source {
		sourceByIndex[cue.Index] = cue.Text
	}

	lines := make([]Line, 0, len(translated))
	for i, cue := range translated {
		lines = append(lines, Line{
			Index:       i,
			Source:      sourceByIndex[cue.Index],
			Translation: cue.Text,
			Clips:       []string{cue.Text},
			Start:       cue.Start,
			End:         cue.End,
			Duration:    cue.End - cue.Start,
		})
	}
	return lines, nil
}

// NormalizeDurations returns a new slice in which lines shorter than
// minDuration are merged into the following line when the silence between
// them is small, otherwise extended in place to the minimum. Merged lines
// keep their original text pieces as separate clips so synthesis granularity
// is preserved.
func NormalizeDurations(lines []Line, minDuration float64, logger *slog.Logger) []Line {
	if logger == nil {
		logger = logging.NewNop()
	}

	merged := make([]Line, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		current := lines[i]
		if current.Duration < minDuration {
			if i < len(lines)-1 && lines[i+1].Start-current.End < shortMergeGap {
				next := lines[i+1]
				logger.Debug("merging under-length line into successor",
					logging.Int("line", len(merged)),
					logging.Float64("duration", current.Duration),
				)
				current.Translation = strings.TrimSpace(current.Translation + " " + next.Translation)
				current.Source = strings.TrimSpace(current.Source + " " + next.Source)
				current.Clips = append(current.Clips, next.Clips...)
				current.End = next.End
				current.Duration = current.End - current.Start
				i++
			} else {
				logger.Debug("extending under-length line",
					logging.Int("line", len(merged)),
					logging.Float64("duration", current.Duration),
					logging.Float64("min_duration", minDuration),
				)
				current.End = current.Start + minDuration
				current.Duration = minDuration
			}
		}
		merged = append(merged, current)
	}

	for i := range merged {
		merged[i].Index = i
	}
	return merged
}
