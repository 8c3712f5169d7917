package pacing

import (
	"math"

	"dubsync/internal/subtitle"
)

// speedMargin keeps the computed factor off the exact boundary so a
// hairline rounding error cannot push the chunk past its slot.
const speedMargin = 0.1

// Solve picks one playback speed for a whole chunk and decides whether
// the silent gaps between its lines survive. It tries, in order, the
// gentlest plan that fits: keep gaps inside the lines' own slots, drop
// gaps inside the slots, keep gaps while borrowing the tolerable
// extension, and finally drop gaps and borrow everything. The speed
// floor applies to the first three plans only; the last one must hit
// its target even below the floor.
func Solve(chunk []subtitle.Line, accept, minSpeed float64) (speed float64, keepGaps bool) {
	var chunkDurs, tolDurs, gapSum float64
	for i := range chunk {
		chunkDurs += chunk[i].RealDur
		tolDurs += chunk[i].TolDur
		gapSum += chunk[i].Gap
	}
	last := chunk[len(chunk)-1]
	durations := tolDurs - last.Tolerance
	allGaps := gapSum - last.Gap

	keepGaps = true
	switch {
	case (chunkDurs+allGaps)/accept < durations:
		speed = math.Max(minSpeed, (chunkDurs+allGaps)/(durations-speedMargin))
	case chunkDurs/accept < durations:
		speed = math.Max(minSpeed, chunkDurs/(durations-speedMargin))
		keepGaps = false
	case (chunkDurs+allGaps)/accept < tolDurs:
		speed = math.Max(minSpeed, (chunkDurs+allGaps)/(tolDurs-speedMargin))
	default:
		speed = chunkDurs / (tolDurs - speedMargin)
		keepGaps = false
	}
	return math.Round(speed*1000) / 1000, keepGaps
}
