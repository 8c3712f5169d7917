package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains workspace layout configuration.
type Paths struct {
	// WorkspaceDir holds the pipeline inputs (words.json, source.srt,
	// translation.srt) and receives all generated artifacts.
	WorkspaceDir string `toml:"workspace_dir"`
	// LogDir receives run logs. Defaults to <workspace>/logs.
	LogDir string `toml:"log_dir"`
}

// Timing contains line analysis and chunk planning settings.
type Timing struct {
	// Tolerance is the trailing silence, in seconds, a line may borrow
	// before its successor starts.
	Tolerance float64 `toml:"tolerance"`
	// MaxMergeCount caps how many lines a single merge pass may absorb.
	MaxMergeCount int `toml:"max_merge_count"`
	// MinLineDuration is the floor applied when building lines from SRT
	// cues; shorter lines are merged forward or extended.
	MinLineDuration float64 `toml:"min_line_duration"`
}

// Speed contains pacing limits for the chunk solver.
type Speed struct {
	// Accept is the fastest pace considered comfortable.
	Accept float64 `toml:"accept"`
	// Min is the slowest pace the solver will emit outside the most
	// time-constrained regime.
	Min float64 `toml:"min"`
}

// Synth contains synthesis engine and worker pool settings.
type Synth struct {
	// Engine names the synthesis backend, used for logging and to decide
	// whether parallel dispatch is safe.
	Engine string `toml:"engine"`
	// Command is the argv template invoked per clip. The placeholders
	// {{text}} and {{output}} are substituted before execution.
	Command []string `toml:"command"`
	// Workers bounds parallel synthesis. Forced to 1 for serial engines.
	Workers int `toml:"workers"`
	// Warmup is the number of clips synthesized serially before parallel
	// dispatch begins.
	Warmup int `toml:"warmup"`
	// Retries bounds per-clip synthesis attempts.
	Retries int `toml:"retries"`
	// SerialEngines lists backends that are unstable under parallel load.
	SerialEngines []string `toml:"serial_engines"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dubsync.
//
// Configuration sections by subsystem:
//   - Paths: workspace layout and log directory
//   - Timing: gap tolerance, merge limits, minimum line duration
//   - Speed: comfortable/minimum pace multipliers
//   - Synth: synthesis command template and worker pool sizing
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Timing  Timing  `toml:"timing"`
	Speed   Speed   `toml:"speed"`
	Synth   Synth   `toml:"synth"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dubsync/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dubsync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the workspace subdirectories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkspaceDir, c.Paths.LogDir, c.TempDir(), c.SegmentsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WordsFile returns the path of the recognizer word-stream input.
func (c *Config) WordsFile() string {
	return filepath.Join(c.Paths.WorkspaceDir, "words.json")
}

// SourceSRT returns the path of the source-language subtitle input.
func (c *Config) SourceSRT() string {
	return filepath.Join(c.Paths.WorkspaceDir, "source.srt")
}

// TranslationSRT returns the path of the translated subtitle input.
func (c *Config) TranslationSRT() string {
	return filepath.Join(c.Paths.WorkspaceDir, "translation.srt")
}

// AudioFile returns the path of the original full-length audio track.
func (c *Config) AudioFile() string {
	return filepath.Join(c.Paths.WorkspaceDir, "audio.wav")
}

// DatabasePath returns the SQLite line-table location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.WorkspaceDir, "dubsync.db")
}

// TempDir returns the directory holding raw synthesized clips.
func (c *Config) TempDir() string {
	return filepath.Join(c.Paths.WorkspaceDir, "tmp")
}

// SegmentsDir returns the directory holding speed-adjusted output clips.
func (c *Config) SegmentsDir() string {
	return filepath.Join(c.Paths.WorkspaceDir, "segs")
}

// FFmpegBinary returns the ffmpeg executable name used for speed changes and trims.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for duration measurement.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// SynthWorkers returns the effective worker count, honouring serial engines.
func (c *Config) SynthWorkers() int {
	for _, engine := range c.Synth.SerialEngines {
		if strings.EqualFold(strings.TrimSpace(engine), c.Synth.Engine) {
			return 1
		}
	}
	if c.Synth.Workers < 1 {
		return 1
	}
	return c.Synth.Workers
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}

// SetWorkspace points the configuration at a different workspace
// directory, moving the log directory along when it lived under the old
// workspace.
func (c *Config) SetWorkspace(dir string) {
	oldLogs := filepath.Join(c.Paths.WorkspaceDir, "logs")
	c.Paths.WorkspaceDir = dir
	if c.Paths.LogDir == "" || c.Paths.LogDir == oldLogs {
		c.Paths.LogDir = filepath.Join(dir, "logs")
	}
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
