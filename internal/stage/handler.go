package stage

import (
	"context"

	"dubsync/internal/subtitle"
)

// Handler describes the contract the workflow manager needs from each stage.
// Stages transform the shared line table; the manager owns loading it from
// and persisting it back to the store around each Execute call.
type Handler interface {
	// Name identifies the stage in logs and checkpoints.
	Name() string
	// Prepare validates the stage's inputs before Execute runs.
	Prepare(ctx context.Context) error
	// Execute transforms the line table and returns the new version.
	Execute(ctx context.Context, lines []subtitle.Line) ([]subtitle.Line, error)
}
