package config

const (
	defaultWorkspaceDir    = "."
	defaultTolerance       = 1.5
	defaultMaxMergeCount   = 5
	defaultMinLineDuration = 1.0
	defaultAcceptSpeed     = 1.2
	defaultMinSpeed        = 1.0
	defaultSynthWorkers    = 4
	defaultSynthWarmup     = 5
	defaultSynthRetries    = 3
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
		},
		Timing: Timing{
			Tolerance:       defaultTolerance,
			MaxMergeCount:   defaultMaxMergeCount,
			MinLineDuration: defaultMinLineDuration,
		},
		Speed: Speed{
			Accept: defaultAcceptSpeed,
			Min:    defaultMinSpeed,
		},
		Synth: Synth{
			Workers:       defaultSynthWorkers,
			Warmup:        defaultSynthWarmup,
			Retries:       defaultSynthRetries,
			SerialEngines: []string{"gpt-sovits"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
