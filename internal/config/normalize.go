package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTiming()
	c.normalizeSynth()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if c.Paths.WorkspaceDir == "" {
		if value, ok := os.LookupEnv("DUBSYNC_WORKSPACE"); ok {
			c.Paths.WorkspaceDir = strings.TrimSpace(value)
		}
	}
	if c.Paths.WorkspaceDir == "" {
		c.Paths.WorkspaceDir = defaultWorkspaceDir
	}
	var err error
	if c.Paths.WorkspaceDir, err = expandPath(c.Paths.WorkspaceDir); err != nil {
		return fmt.Errorf("paths.workspace_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.WorkspaceDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTiming() {
	if c.Timing.Tolerance <= 0 {
		c.Timing.Tolerance = defaultTolerance
	}
	if c.Timing.MaxMergeCount <= 0 {
		c.Timing.MaxMergeCount = defaultMaxMergeCount
	}
	if c.Timing.MinLineDuration <= 0 {
		c.Timing.MinLineDuration = defaultMinLineDuration
	}
}

func (c *Config) normalizeSynth() {
	c.Synth.Engine = strings.ToLower(strings.TrimSpace(c.Synth.Engine))
	if c.Synth.Workers <= 0 {
		c.Synth.Workers = defaultSynthWorkers
	}
	if c.Synth.Warmup < 0 {
		c.Synth.Warmup = defaultSynthWarmup
	}
	if c.Synth.Retries <= 0 {
		c.Synth.Retries = defaultSynthRetries
	}
	engines := make([]string, 0, len(c.Synth.SerialEngines))
	seen := make(map[string]struct{}, len(c.Synth.SerialEngines))
	for _, engine := range c.Synth.SerialEngines {
		normalized := strings.ToLower(strings.TrimSpace(engine))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		engines = append(engines, normalized)
	}
	c.Synth.SerialEngines = engines
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
