package render

import (
	"context"
	"math"
	"testing"

	"dubsync/internal/logging"
	"dubsync/internal/subtitle"
)

type adjustCall struct {
	input  string
	output string
	speed  float64
}

type trimCall struct {
	path     string
	duration float64
}

type fakeAdjuster struct {
	adjusts []adjustCall
	trims   []trimCall
}

func (f *fakeAdjuster) AdjustSpeed(ctx context.Context, input, output string, speed float64) error {
	f.adjusts = append(f.adjusts, adjustCall{input: input, output: output, speed: speed})
	return nil
}

func (f *fakeAdjuster) Trim(ctx context.Context, path string, duration float64) error {
	f.trims = append(f.trims, trimCall{path: path, duration: duration})
	return nil
}

func newRenderer(adj *fakeAdjuster, durs map[string]float64) *Renderer {
	return &Renderer{
		Adjuster: adj,
		Probe: func(ctx context.Context, path string) (float64, error) {
			return durs[path], nil
		},
		Accept:      1.2,
		MinSpeed:    1.0,
		TempDir:     "/w/tmp",
		SegmentsDir: "/w/segs",
		Logger:      logging.NewNop(),
	}
}

func TestRenderWalksCursorWithGaps(t *testing.T) {
	lines := []subtitle.Line{
		{Index: 1, Clips: []string{"a"}, Start: 0.0, End: 2.5, Duration: 2.5, Gap: 0.5, Tolerance: 0.5, TolDur: 3.0, RealDur: 1.0},
		{Index: 2, Clips: []string{"b"}, Start: 3.0, End: 4.0, Duration: 1.0, Gap: 2.0, Tolerance: 1.5, TolDur: 2.5, RealDur: 1.0, CutOff: 1},
	}
	adj := &fakeAdjuster{}
	r := newRenderer(adj, map[string]float64{
		"/w/segs/1_0.wav": 1.0,
		"/w/segs/2_0.wav": 1.0,
	})

	out, err := r.Render(context.Background(), lines)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	// The chunk fits at normal pace, so the solver keeps the gap and
	// floors the speed at 1.0. The cursor covers clip, gap, clip.
	if len(adj.adjusts) != 2 || adj.adjusts[0].speed != 1.0 {
		t.Fatalf("adjust calls = %+v", adj.adjusts)
	}
	if got := out[0].NewTimes[0]; math.Abs(got[0]-0.0) > 1e-9 || math.Abs(got[1]-1.0) > 1e-9 {
		t.Errorf("line 1 times = %v, want [0 1]", got)
	}
	if got := out[1].NewTimes[0]; math.Abs(got[0]-1.5) > 1e-9 || math.Abs(got[1]-2.5) > 1e-9 {
		t.Errorf("line 2 times = %v, want [1.5 2.5]", got)
	}
	if len(adj.trims) != 0 {
		t.Errorf("unexpected trims: %+v", adj.trims)
	}
}

func TestRenderTrimsSmallChunkOverflow(t *testing.T) {
	lines := []subtitle.Line{
		{Index: 1, Clips: []string{"a"}, Start: 0.0, End: 2.0, Duration: 2.0, Gap: 0.0, Tolerance: 0.0, TolDur: 2.0, RealDur: 2.4, CutOff: 1},
	}
	adj := &fakeAdjuster{}
	r := newRenderer(adj, map[string]float64{"/w/segs/1_0.wav": 2.3})

	out, err := r.Render(context.Background(), lines)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	// The slot ends at 2.0 but the clip came out 2.3s long, so the
	// final clip is cut back and its end pinned to the slot boundary.
	if len(adj.trims) != 1 {
		t.Fatalf("trim calls = %+v", adj.trims)
	}
	if adj.trims[0].path != "/w/segs/1_0.wav" || math.Abs(adj.trims[0].duration-2.0) > 1e-9 {
		t.Errorf("trim = %+v, want 1_0.wav to 2.0s", adj.trims[0])
	}
	if got := out[0].NewTimes[0][1]; math.Abs(got-2.0) > 1e-9 {
		t.Errorf("clamped end = %v, want 2.0", got)
	}
}

func TestRenderLeavesLargeOverflowAlone(t *testing.T) {
	lines := []subtitle.Line{
		{Index: 1, Clips: []string{"a"}, Start: 0.0, End: 2.0, Duration: 2.0, Gap: 0.0, Tolerance: 0.0, TolDur: 2.0, RealDur: 2.4, CutOff: 1},
	}
	adj := &fakeAdjuster{}
	r := newRenderer(adj, map[string]float64{"/w/segs/1_0.wav": 2.7})

	out, err := r.Render(context.Background(), lines)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(adj.trims) != 0 {
		t.Errorf("overflow past the repair limit must not be trimmed: %+v", adj.trims)
	}
	if got := out[0].NewTimes[0][1]; math.Abs(got-2.7) > 1e-9 {
		t.Errorf("end = %v, want untouched 2.7", got)
	}
}

func TestRenderSkipsChunkWithFailedLine(t *testing.T) {
	lines := []subtitle.Line{
		{Index: 1, Clips: []string{"a"}, RealDur: subtitle.FailedDuration},
		{Index: 2, Clips: []string{"b"}, RealDur: 1.0, CutOff: 1},
		{Index: 3, Clips: []string{"c"}, Start: 5.0, End: 6.0, Duration: 1.0, TolDur: 1.1, Tolerance: 0.1, RealDur: 0.8, CutOff: 1},
	}
	adj := &fakeAdjuster{}
	r := newRenderer(adj, map[string]float64{"/w/segs/3_0.wav": 0.8})

	out, err := r.Render(context.Background(), lines)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out[0].NewTimes != nil || out[1].NewTimes != nil {
		t.Error("failed chunk must not receive new times")
	}
	if out[2].NewTimes == nil {
		t.Error("healthy chunk after a failed one must still render")
	}
	if len(adj.adjusts) != 1 || adj.adjusts[0].input != "/w/tmp/3_0.wav" {
		t.Errorf("adjust calls = %+v", adj.adjusts)
	}
}
