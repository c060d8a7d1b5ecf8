package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/procureplan/pkg/domain/entities"
	"github.com/vsinha/procureplan/pkg/domain/repositories"
)

// PlanRunRepository provides in-memory plan run storage
type PlanRunRepository struct {
	mu   sync.RWMutex
	runs map[string]entities.PlanRun
}

// NewPlanRunRepository creates a new in-memory plan run repository
func NewPlanRunRepository() *PlanRunRepository {
	return &PlanRunRepository{runs: make(map[string]entities.PlanRun)}
}

// Verify interface compliance
var _ repositories.PlanRunRepository = (*PlanRunRepository)(nil)

// Save stores a copy of the run, replacing any run with the same id
func (r *PlanRunRepository) Save(ctx context.Context, run *entities.PlanRun) error {
	if run == nil {
		return fmt.Errorf("plan run cannot be nil")
	}
	if run.RunID == "" {
		return fmt.Errorf("plan run id cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.RunID] = *run
	return nil
}

// Get returns the run with the given id
func (r *PlanRunRepository) Get(ctx context.Context, runID string) (*entities.PlanRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, exists := r.runs[runID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", repositories.ErrRunNotFound, runID)
	}
	return &run, nil
}

// List returns all runs, newest first
func (r *PlanRunRepository) List(ctx context.Context) ([]*entities.PlanRun, error) {
	r.mu.RLock()
	runs := make([]*entities.PlanRun, 0, len(r.runs))
	for id := range r.runs {
		run := r.runs[id]
		runs = append(runs, &run)
	}
	r.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].RunID < runs[j].RunID
	})
	return runs, nil
}
