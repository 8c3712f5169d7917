package timing

import (
	"testing"

	"dubsync/internal/logging"
	"dubsync/internal/subtitle"
)

func cutFlags(lines []subtitle.Line) []int {
	flags := make([]int, len(lines))
	for i := range lines {
		flags[i] = lines[i].CutOff
	}
	return flags
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlanChunksSeedsLongGaps(t *testing.T) {
	lines := []subtitle.Line{
		{Index: 1, Gap: 2.0, SpeedFlag: subtitle.SpeedNormal},
		{Index: 2, Gap: 0.2, SpeedFlag: subtitle.SpeedNormal},
		{Index: 3, Gap: 0.1, SpeedFlag: subtitle.SpeedNormal},
	}
	params := PlanParams{Tolerance: 1.5, Accept: 1.2, MaxMerge: 5}
	out := PlanChunks(lines, params, logging.NewNop())

	// Line 1 ends a chunk at its long gap, line 2 stands alone because
	// its neighbor fits, and the last line always ends a chunk.
	want := []int{1, 1, 1}
	if got := cutFlags(out); !equalInts(got, want) {
		t.Errorf("cut flags = %v, want %v", got, want)
	}
}

func TestPlanChunksMergesFastLine(t *testing.T) {
	lines := []subtitle.Line{
		{Index: 1, Duration: 1.2, Gap: 0.3, Tolerance: 0.3, TolDur: 1.5, EstDur: 1.7, SpeedFlag: subtitle.SpeedFast},
		{Index: 2, Duration: 1.2, Gap: 0.3, Tolerance: 0.3, TolDur: 1.5, EstDur: 0.4, SpeedFlag: subtitle.SpeedSlow},
		{Index: 3, Duration: 1.0, Gap: 0.1, Tolerance: 0.1, TolDur: 1.1, EstDur: 1.0, SpeedFlag: subtitle.SpeedNormal},
	}
	params := PlanParams{Tolerance: 1.5, Accept: 1.2, MaxMerge: 5}
	out := PlanChunks(lines, params, logging.NewNop())

	// The fast first line absorbs the slow second line; their combined
	// estimate fits the combined slot, so the boundary lands on line 2.
	want := []int{0, 1, 1}
	if got := cutFlags(out); !equalInts(got, want) {
		t.Errorf("cut flags = %v, want %v", got, want)
	}
}

func TestPlanChunksMergeStopsAfterTwoAbsorbed(t *testing.T) {
	mk := func(idx int) subtitle.Line {
		return subtitle.Line{Index: idx, Duration: 0.8, Gap: 0.2, Tolerance: 0.2, TolDur: 1.0, EstDur: 5.0, SpeedFlag: subtitle.SpeedUnfixable}
	}
	lines := []subtitle.Line{mk(1), mk(2), mk(3), mk(4), mk(5)}
	params := PlanParams{Tolerance: 1.5, Accept: 1.2, MaxMerge: 5}
	out := PlanChunks(lines, params, logging.NewNop())

	// Nothing ever fits, so the first merge gives up after absorbing
	// two lines, and the second runs out of input at the last line.
	want := []int{0, 0, 1, 0, 1}
	if got := cutFlags(out); !equalInts(got, want) {
		t.Errorf("cut flags = %v, want %v", got, want)
	}
}

func TestPlanChunksDoesNotModifyInput(t *testing.T) {
	lines := []subtitle.Line{
		{Index: 1, Gap: 2.0, SpeedFlag: subtitle.SpeedNormal},
		{Index: 2, Gap: 0.1, SpeedFlag: subtitle.SpeedNormal},
	}
	PlanChunks(lines, PlanParams{Tolerance: 1.5, Accept: 1.2, MaxMerge: 5}, logging.NewNop())
	if lines[0].CutOff != 0 || lines[1].CutOff != 0 {
		t.Errorf("input slice was modified: %v", cutFlags(lines))
	}
}

func TestChunksSplitOnCutOff(t *testing.T) {
	lines := []subtitle.Line{
		{Index: 1, CutOff: 0},
		{Index: 2, CutOff: 1},
		{Index: 3, CutOff: 1},
		{Index: 4, CutOff: 0},
		{Index: 5, CutOff: 1},
	}
	chunks := subtitle.Chunks(lines)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	wantSizes := []int{2, 1, 2}
	for i, c := range chunks {
		if len(c) != wantSizes[i] {
			t.Errorf("chunk %d has %d lines, want %d", i, len(c), wantSizes[i])
		}
	}
}
