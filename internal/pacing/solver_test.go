package pacing

import (
	"math"
	"testing"

	"dubsync/internal/subtitle"
)

func TestSolveKeepsGapsAtRelaxedPace(t *testing.T) {
	chunk := []subtitle.Line{
		{RealDur: 3.0, TolDur: 3.0, Gap: 1.0, Tolerance: 1.0},
		{RealDur: 2.0, TolDur: 3.0, Gap: 2.0, Tolerance: 0.5},
	}
	// Speech plus gaps fits the base slots at normal pace, so the gaps
	// survive and the speed spreads 6.0s over the 5.4s margin-adjusted slot.
	speed, keepGaps := Solve(chunk, 1.2, 1.0)
	if math.Abs(speed-1.111) > 1e-9 {
		t.Errorf("speed = %v, want 1.111", speed)
	}
	if !keepGaps {
		t.Error("expected gaps to be kept")
	}
}

func TestSolveDropsGapsAndFloorsSpeed(t *testing.T) {
	chunk := []subtitle.Line{
		{RealDur: 3.0, TolDur: 3.0, Gap: 3.0, Tolerance: 1.0},
		{RealDur: 2.0, TolDur: 3.0, Gap: 2.0, Tolerance: 0.5},
	}
	// With gaps the chunk overruns, without them it fits with room to
	// spare, so gaps go and the floor stops the speed dropping below 1.0.
	speed, keepGaps := Solve(chunk, 1.2, 1.0)
	if math.Abs(speed-1.0) > 1e-9 {
		t.Errorf("speed = %v, want 1.0 (floored)", speed)
	}
	if keepGaps {
		t.Error("expected gaps to be dropped")
	}
}

func TestSolveBorrowsToleranceKeepingGaps(t *testing.T) {
	chunk := []subtitle.Line{
		{RealDur: 3.0, TolDur: 2.5, Gap: 0.5, Tolerance: 0.5},
		{RealDur: 3.5, TolDur: 3.5, Gap: 2.0, Tolerance: 1.0},
	}
	// The base slots are too small even without gaps, but speech plus
	// gaps fits the extended slots, so gaps stay and the speed targets
	// the full tolerable duration.
	speed, keepGaps := Solve(chunk, 1.2, 1.0)
	if math.Abs(speed-1.186) > 1e-9 {
		t.Errorf("speed = %v, want 1.186", speed)
	}
	if !keepGaps {
		t.Error("expected gaps to be kept")
	}
}

func TestSolveLastResortIgnoresFloor(t *testing.T) {
	chunk := []subtitle.Line{
		{RealDur: 1.0, TolDur: 1.0, Gap: 10.0, Tolerance: 0.5},
		{RealDur: 1.0, TolDur: 1.0, Gap: 1.0, Tolerance: 0.5},
	}
	// Nothing fits with gaps, so they go and the speed must land the
	// speech exactly in the extended slots even when that is below the
	// configured floor.
	speed, keepGaps := Solve(chunk, 1.2, 1.2)
	if math.Abs(speed-1.053) > 1e-9 {
		t.Errorf("speed = %v, want 1.053 (unfloored)", speed)
	}
	if keepGaps {
		t.Error("expected gaps to be dropped")
	}
}
