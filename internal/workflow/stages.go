package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"dubsync/internal/align"
	"dubsync/internal/config"
	"dubsync/internal/estimate"
	"dubsync/internal/ffmpeg"
	"dubsync/internal/media/ffprobe"
	"dubsync/internal/render"
	"dubsync/internal/services"
	"dubsync/internal/subtitle"
	"dubsync/internal/synth"
	"dubsync/internal/timing"
)

func requireFile(stageName, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, stageName, "check input",
				fmt.Sprintf("missing %s", path), nil)
		}
		return services.Wrap(services.ErrValidation, stageName, "check input", path, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, stageName, "check input",
			fmt.Sprintf("%s is a directory", path), nil)
	}
	return nil
}

func requireLines(stageName string, lines []subtitle.Line) error {
	if len(lines) == 0 {
		return services.Wrap(services.ErrValidation, stageName, "check input",
			"line table is empty, run earlier stages first", nil)
	}
	return nil
}

// alignHandler builds the line table from the subtitle inputs and snaps
// each line onto the recognizer word stream.
type alignHandler struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newAlignHandler(cfg *config.Config, logger *slog.Logger) *alignHandler {
	return &alignHandler{cfg: cfg, logger: logger}
}

func (h *alignHandler) Name() string { return StageAlign }

func (h *alignHandler) Prepare(ctx context.Context) error {
	for _, path := range []string{h.cfg.WordsFile(), h.cfg.SourceSRT(), h.cfg.TranslationSRT()} {
		if err := requireFile(StageAlign, path); err != nil {
			return err
		}
	}
	return nil
}

func (h *alignHandler) Execute(ctx context.Context, _ []subtitle.Line) ([]subtitle.Line, error) {
	words, err := subtitle.LoadWords(h.cfg.WordsFile())
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, StageAlign, "load words", "", err)
	}
	source, err := subtitle.ParseSRT(h.cfg.SourceSRT())
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, StageAlign, "parse source srt", "", err)
	}
	translated, err := subtitle.ParseSRT(h.cfg.TranslationSRT())
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, StageAlign, "parse translation srt", "", err)
	}

	lines, err := subtitle.BuildLines(translated, source)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, StageAlign, "build lines", "", err)
	}
	aligned, err := align.Align(words, lines, h.logger)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, StageAlign, "align timestamps", "", err)
	}
	// Normalization runs on the snapped intervals so the extended spans
	// survive into gap and speed-flag analysis.
	return subtitle.NormalizeDurations(aligned, h.cfg.Timing.MinLineDuration, h.logger), nil
}

// planHandler analyzes line timing against the source audio and marks
// chunk boundaries.
type planHandler struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newPlanHandler(cfg *config.Config, logger *slog.Logger) *planHandler {
	return &planHandler{cfg: cfg, logger: logger}
}

func (h *planHandler) Name() string { return StagePlan }

func (h *planHandler) Prepare(ctx context.Context) error {
	return requireFile(StagePlan, h.cfg.AudioFile())
}

func (h *planHandler) Execute(ctx context.Context, lines []subtitle.Line) ([]subtitle.Line, error) {
	if err := requireLines(StagePlan, lines); err != nil {
		return nil, err
	}
	probe, err := ffprobe.Inspect(ctx, h.cfg.FFprobeBinary(), h.cfg.AudioFile())
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, StagePlan, "probe audio", "", err)
	}
	if probe.AudioStreamCount() == 0 {
		return nil, services.Wrap(services.ErrValidation, StagePlan, "probe audio",
			fmt.Sprintf("%s has no audio streams", h.cfg.AudioFile()), nil)
	}
	audioDuration := probe.DurationSeconds()
	if audioDuration <= 0 {
		return nil, services.Wrap(services.ErrValidation, StagePlan, "probe audio",
			fmt.Sprintf("%s reports no duration", h.cfg.AudioFile()), nil)
	}

	analyzed := timing.Analyze(lines, audioDuration, timing.AnalyzeParams{
		Tolerance: h.cfg.Timing.Tolerance,
		Accept:    h.cfg.Speed.Accept,
	}, estimate.New(), h.logger)

	return timing.PlanChunks(analyzed, timing.PlanParams{
		Tolerance: h.cfg.Timing.Tolerance,
		Accept:    h.cfg.Speed.Accept,
		MaxMerge:  h.cfg.Timing.MaxMergeCount,
	}, h.logger), nil
}

// synthHandler renders raw speech clips for every line through the
// configured engine.
type synthHandler struct {
	manager *Manager
}

func newSynthHandler(m *Manager) *synthHandler {
	return &synthHandler{manager: m}
}

func (h *synthHandler) Name() string { return StageSynth }

func (h *synthHandler) Prepare(ctx context.Context) error {
	cfg := h.manager.cfg
	if len(cfg.Synth.Command) == 0 {
		return services.Wrap(services.ErrConfiguration, StageSynth, "check engine",
			"synth.command is not configured", nil)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, StageSynth, "create directories", "", err)
	}
	return nil
}

func (h *synthHandler) Execute(ctx context.Context, lines []subtitle.Line) ([]subtitle.Line, error) {
	cfg := h.manager.cfg
	if err := requireLines(StageSynth, lines); err != nil {
		return nil, err
	}
	engine := &synth.CommandEngine{
		Name:    cfg.Synth.Engine,
		Command: cfg.Synth.Command,
		Retries: cfg.Synth.Retries,
	}
	pool := &synth.Pool{
		Engine: engine,
		Probe: func(ctx context.Context, path string) (float64, error) {
			return ffprobe.Duration(ctx, cfg.FFprobeBinary(), path)
		},
		Workers:  cfg.SynthWorkers(),
		Warmup:   cfg.Synth.Warmup,
		TempDir:  cfg.TempDir(),
		Logger:   h.manager.logger,
		Progress: h.manager.progress,
	}
	return pool.Run(ctx, lines)
}

// renderHandler lays the synthesized clips onto the video timeline.
type renderHandler struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRenderHandler(cfg *config.Config, logger *slog.Logger) *renderHandler {
	return &renderHandler{cfg: cfg, logger: logger}
}

func (h *renderHandler) Name() string { return StageRender }

func (h *renderHandler) Prepare(ctx context.Context) error {
	if err := h.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, StageRender, "create directories", "", err)
	}
	return nil
}

func (h *renderHandler) Execute(ctx context.Context, lines []subtitle.Line) ([]subtitle.Line, error) {
	if err := requireLines(StageRender, lines); err != nil {
		return nil, err
	}
	renderer := &render.Renderer{
		Adjuster: &ffmpeg.Client{
			Binary:      h.cfg.FFmpegBinary(),
			ProbeBinary: h.cfg.FFprobeBinary(),
		},
		Probe: func(ctx context.Context, path string) (float64, error) {
			return ffprobe.Duration(ctx, h.cfg.FFprobeBinary(), path)
		},
		Accept:      h.cfg.Speed.Accept,
		MinSpeed:    h.cfg.Speed.Min,
		TempDir:     h.cfg.TempDir(),
		SegmentsDir: h.cfg.SegmentsDir(),
		Logger:      h.logger,
	}
	return renderer.Render(ctx, lines)
}
