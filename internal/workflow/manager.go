package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/progress"

	"dubsync/internal/config"
	"dubsync/internal/logging"
	"dubsync/internal/services"
	"dubsync/internal/stage"
	"dubsync/internal/store"
	"dubsync/internal/subtitle"
)

// Stage names in execution order.
const (
	StageAlign  = "align"
	StagePlan   = "plan"
	StageSynth  = "synth"
	StageRender = "render"
)

// StageNames returns the pipeline stages in execution order.
func StageNames() []string {
	return []string{StageAlign, StagePlan, StageSynth, StageRender}
}

// Manager drives the pipeline stages sequentially over one workspace.
// Each completed stage checkpoints its output in the store, so an
// interrupted run resumes at the first stage without a checkpoint.
type Manager struct {
	cfg      *config.Config
	store    *store.Store
	logger   *slog.Logger
	progress progress.Writer

	handlers []stage.Handler
}

// NewManager wires the standard stage chain for the given workspace.
func NewManager(cfg *config.Config, st *store.Store, logger *slog.Logger) *Manager {
	m := &Manager{cfg: cfg, store: st, logger: logger}
	m.handlers = []stage.Handler{
		newAlignHandler(cfg, logger),
		newPlanHandler(cfg, logger),
		newSynthHandler(m),
		newRenderHandler(cfg, logger),
	}
	return m
}

// SetProgress attaches a progress writer for long-running stages. Call
// before Run.
func (m *Manager) SetProgress(w progress.Writer) {
	m.progress = w
}

// Run executes every stage that has no checkpoint yet, in order.
func (m *Manager) Run(ctx context.Context) error {
	unlock, err := m.lockWorkspace()
	if err != nil {
		return err
	}
	defer unlock()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := m.logger.With(logging.String(logging.FieldRunID, runID))
	if err := m.store.StartRun(ctx, runID); err != nil {
		return err
	}

	lines, err := m.store.Lines(ctx)
	if err != nil {
		return err
	}
	for _, handler := range m.handlers {
		done, err := m.store.StageComplete(ctx, handler.Name())
		if err != nil {
			return err
		}
		if done {
			logger.Info("stage already complete, skipping",
				logging.String(logging.FieldStage, handler.Name()))
			continue
		}
		lines, err = m.runHandler(ctx, handler, lines, runID, logger)
		if err != nil {
			return err
		}
	}
	logger.Info("pipeline complete", logging.Int("lines", len(lines)))
	return nil
}

// RunStage executes one named stage regardless of its checkpoint, then
// clears the checkpoints of every later stage since their inputs are
// now stale.
func (m *Manager) RunStage(ctx context.Context, name string) error {
	unlock, err := m.lockWorkspace()
	if err != nil {
		return err
	}
	defer unlock()

	var target stage.Handler
	var downstream []string
	for i, handler := range m.handlers {
		if handler.Name() == name {
			target = handler
			for _, later := range m.handlers[i+1:] {
				downstream = append(downstream, later.Name())
			}
			break
		}
	}
	if target == nil {
		return services.Wrap(services.ErrValidation, "workflow", "run stage",
			fmt.Sprintf("unknown stage %q", name), nil)
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := m.logger.With(logging.String(logging.FieldRunID, runID))
	if err := m.store.StartRun(ctx, runID); err != nil {
		return err
	}

	lines, err := m.store.Lines(ctx)
	if err != nil {
		return err
	}
	if _, err := m.runHandler(ctx, target, lines, runID, logger); err != nil {
		return err
	}
	if len(downstream) > 0 {
		if err := m.store.ClearStagesFrom(ctx, downstream...); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops every stage checkpoint so the next Run starts from align.
func (m *Manager) Reset(ctx context.Context) error {
	return m.store.ResetStages(ctx)
}

func (m *Manager) runHandler(ctx context.Context, handler stage.Handler, lines []subtitle.Line, runID string, logger *slog.Logger) ([]subtitle.Line, error) {
	name := handler.Name()
	ctx = services.WithStage(ctx, name)
	stageLogger := logger.With(logging.String(logging.FieldStage, name))

	stageLogger.Info("stage starting", logging.Int("lines", len(lines)))
	started := time.Now()
	if err := handler.Prepare(ctx); err != nil {
		return nil, err
	}
	out, err := handler.Execute(ctx, lines)
	if err != nil {
		return nil, err
	}
	if err := m.store.ReplaceLines(ctx, out); err != nil {
		return nil, err
	}
	if err := m.store.MarkStageComplete(ctx, name, runID); err != nil {
		return nil, err
	}
	stageLogger.Info("stage complete",
		logging.Int("lines", len(out)),
		logging.Duration("elapsed", time.Since(started)))
	return out, nil
}

func (m *Manager) lockWorkspace() (func(), error) {
	lockPath := filepath.Join(m.cfg.Paths.WorkspaceDir, "dubsync.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire workspace lock: %w", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "workflow", "lock",
			fmt.Sprintf("workspace %s is locked by another run", m.cfg.Paths.WorkspaceDir), nil)
	}
	return func() { _ = lock.Unlock() }, nil
}
