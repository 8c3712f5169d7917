package subtitle

// Word is a single recognizer token with its time interval in seconds.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// FailedDuration is the sentinel RealDur value marking a line whose synthesis
// exhausted its retries. Chunks containing such a line are excluded from
// solving and rendering.
const FailedDuration = -1.0

// Speed flags assigned by the timing analyzer.
const (
	// SpeedUnfixable marks a line too long to fit even at the fastest
	// comfortable pace.
	SpeedUnfixable = 2
	// SpeedFast marks a line that fits only with speed-up within budget.
	SpeedFast = 1
	// SpeedNormal marks a line whose estimated duration fits its slot.
	SpeedNormal = 0
	// SpeedSlow marks a line comfortably shorter than its slot.
	SpeedSlow = -1
)

// Line is one subtitle line flowing through the pipeline. Timing fields are
// seconds. Clips holds the translated text pieces synthesized independently
// for this line; most lines carry exactly one.
type Line struct {
	Index       int
	Source      string
	Translation string
	Clips       []string

	Start    float64
	End      float64
	Duration float64

	// Analyzer outputs.
	Gap       float64
	Tolerance float64
	TolDur    float64
	EstDur    float64
	SpeedFlag int

	// Planner output: 1 marks the last line of a chunk.
	CutOff int

	// Synthesis output: measured clip duration sum, or FailedDuration.
	RealDur float64

	// Renderer output: one [start, end] pair per clip.
	NewTimes [][2]float64
}

// SynthesisFailed reports whether this line carries the failure sentinel.
func (l Line) SynthesisFailed() bool {
	return l.RealDur == FailedDuration
}

// Chunks splits lines into contiguous chunks, each ending at its CutOff line.
// The planner guarantees the final line closes the last chunk, so the result
// partitions the input with no gaps or overlaps.
func Chunks(lines []Line) [][]Line {
	var chunks [][]Line
	start := 0
	for i := range lines {
		if lines[i].CutOff == 1 {
			chunks = append(chunks, lines[start:i+1])
			start = i + 1
		}
	}
	if start < len(lines) {
		chunks = append(chunks, lines[start:])
	}
	return chunks
}
