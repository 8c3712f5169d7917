package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubsync/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	workspace := t.TempDir()
	t.Setenv("DUBSYNC_WORKSPACE", workspace)
	t.Setenv("HOME", t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.WorkspaceDir != workspace {
		t.Fatalf("unexpected workspace dir: got %q want %q", cfg.Paths.WorkspaceDir, workspace)
	}
	if cfg.Paths.LogDir != filepath.Join(workspace, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Timing.Tolerance != 1.5 {
		t.Fatalf("unexpected tolerance: %v", cfg.Timing.Tolerance)
	}
	if cfg.Timing.MaxMergeCount != 5 {
		t.Fatalf("unexpected max merge count: %d", cfg.Timing.MaxMergeCount)
	}
	if cfg.Speed.Accept != 1.2 || cfg.Speed.Min != 1.0 {
		t.Fatalf("unexpected speed defaults: accept=%v min=%v", cfg.Speed.Accept, cfg.Speed.Min)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.TempDir(), cfg.SegmentsDir(), cfg.Paths.LogDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
	if cfg.DatabasePath() != filepath.Join(workspace, "dubsync.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
}

func TestLoadParsesFileOverrides(t *testing.T) {
	dir := t.TempDir()
	workspace := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
workspace_dir = "` + workspace + `"

[timing]
tolerance = 0.8
max_merge_count = 3

[speed]
accept = 1.4
min = 1.1

[synth]
engine = "GPT-SoVITS"
command = ["tts", "--out", "{{output}}", "{{text}}"]
workers = 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Timing.Tolerance != 0.8 {
		t.Fatalf("unexpected tolerance: %v", cfg.Timing.Tolerance)
	}
	if cfg.Speed.Accept != 1.4 {
		t.Fatalf("unexpected accept speed: %v", cfg.Speed.Accept)
	}
	if cfg.Synth.Engine != "gpt-sovits" {
		t.Fatalf("expected engine lowered, got %q", cfg.Synth.Engine)
	}
	if got := cfg.SynthWorkers(); got != 1 {
		t.Fatalf("expected serial engine to force 1 worker, got %d", got)
	}
}

func TestValidateRejectsBadSpeeds(t *testing.T) {
	cfg := config.Default()
	cfg.Speed.Min = 1.5
	cfg.Speed.Accept = 1.2
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "speed.min") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSampleConfigMentionsEverySection(t *testing.T) {
	sample := config.SampleConfig()
	for _, section := range []string{"[paths]", "[timing]", "[speed]", "[synth]", "[logging]"} {
		if !strings.Contains(sample, section) {
			t.Fatalf("sample config missing section %s", section)
		}
	}
}
