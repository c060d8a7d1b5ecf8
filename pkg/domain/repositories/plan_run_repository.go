package repositories

import (
	"context"
	"errors"

	"github.com/vsinha/procureplan/pkg/domain/entities"
)

// ErrRunNotFound is returned when no plan run exists for an id
var ErrRunNotFound = errors.New("plan run not found")

// PlanRunRepository persists completed pipeline runs
type PlanRunRepository interface {
	// Save inserts or replaces a run keyed by its RunID
	Save(ctx context.Context, run *entities.PlanRun) error
	Get(ctx context.Context, runID string) (*entities.PlanRun, error)
	// List returns runs newest first
	List(ctx context.Context) ([]*entities.PlanRun, error)
}
