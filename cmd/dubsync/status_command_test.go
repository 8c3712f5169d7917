package main

import (
	"strings"
	"testing"

	"dubsync/internal/subtitle"
)

func TestStatusLineRows(t *testing.T) {
	lines := []subtitle.Line{
		{
			Index: 0, Start: 0.1, End: 1.1, Gap: 2.3, TolDur: 2.5,
			EstDur: 0.9, RealDur: 1.05, SpeedFlag: subtitle.SpeedNormal, CutOff: 1,
			NewTimes: [][2]float64{{0.1, 0.62}, {0.62, 1.15}},
		},
		{
			Index: 1, Start: 3.2, End: 4.2, RealDur: subtitle.FailedDuration,
			SpeedFlag: subtitle.SpeedFast,
		},
		{Index: 2, Start: 5.0, End: 6.0},
	}
	rows := statusLineRows(lines)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if len(rows[0]) != len(statusLineHeaders()) {
		t.Fatalf("row has %d cells, want %d", len(rows[0]), len(statusLineHeaders()))
	}
	if rows[0][6] != "1.05" {
		t.Errorf("real column = %q, want 1.05", rows[0][6])
	}
	if got := rows[0][9]; !strings.Contains(got, "0.10..0.62") || !strings.Contains(got, "0.62..1.15") {
		t.Errorf("new times column = %q", got)
	}
	if rows[1][6] != "failed" {
		t.Errorf("failed line real column = %q, want failed", rows[1][6])
	}
	if rows[1][7] != "1" {
		t.Errorf("failed line flag column = %q, want 1", rows[1][7])
	}
	if rows[2][6] != "-" {
		t.Errorf("unsynthesized line real column = %q, want -", rows[2][6])
	}
}
