package workflow

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"

	"dubsync/internal/logging"
	"dubsync/internal/services"
	"dubsync/internal/testsupport"
)

const (
	testSourceSRT = `1
00:00:00,000 --> 00:00:02,000
Hello world

2
00:00:03,000 --> 00:00:05,000
Good morning
`
	testTranslationSRT = `1
00:00:00,000 --> 00:00:02,000
Bonjour le monde

2
00:00:03,000 --> 00:00:05,000
Bon matin
`
	testWordsJSON = `[
        {"text": "Hello", "start": 0.1, "end": 0.5},
        {"text": "world", "start": 0.6, "end": 1.0},
        {"text": "Good", "start": 3.2, "end": 3.5},
        {"text": "morning", "start": 3.6, "end": 4.1}
    ]`
)

func TestAlignHandlerPrepareRequiresInputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	h := newAlignHandler(cfg, logging.NewNop())
	if err := h.Prepare(context.Background()); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Prepare error = %v, want not-found marker", err)
	}
}

func TestAlignHandlerExecuteBuildsAlignedLines(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeInput := func(path, content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeInput(cfg.WordsFile(), testWordsJSON)
	writeInput(cfg.SourceSRT(), testSourceSRT)
	writeInput(cfg.TranslationSRT(), testTranslationSRT)

	h := newAlignHandler(cfg, logging.NewNop())
	if err := h.Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	lines, err := h.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Translation != "Bonjour le monde" || lines[0].Source != "Hello world" {
		t.Errorf("line 1 text = %q / %q", lines[0].Source, lines[0].Translation)
	}
	// Timestamps snap to the recognizer words, then the 0.9s spans are
	// extended to the 1.0s minimum before leaving the stage.
	if math.Abs(lines[0].Start-0.1) > 1e-9 || math.Abs(lines[0].End-1.1) > 1e-9 {
		t.Errorf("line 1 interval = [%v %v], want [0.1 1.1]", lines[0].Start, lines[0].End)
	}
	if math.Abs(lines[1].Start-3.2) > 1e-9 || math.Abs(lines[1].End-4.2) > 1e-9 {
		t.Errorf("line 2 interval = [%v %v], want [3.2 4.2]", lines[1].Start, lines[1].End)
	}
}

func TestAlignHandlerKeepsMinDurationAfterSnapping(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeInput := func(path, content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// The matched words span only 0.4s, well under the 1.0s floor. The
	// floor must be applied to the snapped interval, not the cue one.
	writeInput(cfg.WordsFile(), `[
        {"text": "Wow", "start": 0.1, "end": 0.5},
        {"text": "anyway", "start": 5.0, "end": 5.6},
        {"text": "moving", "start": 5.7, "end": 6.1},
        {"text": "on", "start": 6.2, "end": 6.5}
    ]`)
	writeInput(cfg.SourceSRT(), `1
00:00:00,000 --> 00:00:02,000
Wow

2
00:00:05,000 --> 00:00:07,000
Anyway moving on
`)
	writeInput(cfg.TranslationSRT(), `1
00:00:00,000 --> 00:00:02,000
Ouah

2
00:00:05,000 --> 00:00:07,000
Bref on continue
`)

	h := newAlignHandler(cfg, logging.NewNop())
	lines, err := h.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Duration < cfg.Timing.MinLineDuration {
		t.Errorf("short line duration = %v, want at least %v", lines[0].Duration, cfg.Timing.MinLineDuration)
	}
	if math.Abs(lines[0].Start-0.1) > 1e-9 || math.Abs(lines[0].End-1.1) > 1e-9 {
		t.Errorf("short line interval = [%v %v], want [0.1 1.1]", lines[0].Start, lines[0].End)
	}
}

func TestPlanHandlerRequiresLines(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeAudio := func() {
		if err := os.WriteFile(cfg.AudioFile(), []byte("riff"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeAudio()
	h := newPlanHandler(cfg, logging.NewNop())
	if err := h.Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, err := h.Execute(context.Background(), nil); !errors.Is(err, services.ErrValidation) {
		t.Errorf("Execute error = %v, want validation marker", err)
	}
}

func TestSynthHandlerPrepareRequiresCommand(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Synth.Command = nil
	m := &Manager{cfg: cfg, logger: logging.NewNop()}
	h := newSynthHandler(m)
	if err := h.Prepare(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Errorf("Prepare error = %v, want configuration marker", err)
	}
}
