package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vsinha/procureplan/pkg/domain/entities"
	"github.com/vsinha/procureplan/pkg/domain/repositories"
)

const schema = `
CREATE TABLE IF NOT EXISTS plan_runs (
	run_id     TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL
)`

// PlanRunRepository stores each run as a JSONB document in plan_runs
type PlanRunRepository struct {
	pool *pgxpool.Pool
}

// NewPlanRunRepository creates a repository backed by the given pool
func NewPlanRunRepository(pool *pgxpool.Pool) *PlanRunRepository {
	return &PlanRunRepository{pool: pool}
}

// Verify interface compliance
var _ repositories.PlanRunRepository = (*PlanRunRepository)(nil)

// EnsureSchema creates the plan_runs table when it does not exist
func (r *PlanRunRepository) EnsureSchema(ctx context.Context) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create plan_runs table: %w", err)
	}
	return nil
}

// Save upserts the run keyed by run id
func (r *PlanRunRepository) Save(ctx context.Context, run *entities.PlanRun) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}
	if run == nil || run.RunID == "" {
		return fmt.Errorf("plan run id cannot be empty")
	}

	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal plan run: %w", err)
	}

	query := `
		INSERT INTO plan_runs (run_id, created_at, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id)
		DO UPDATE SET
			created_at = EXCLUDED.created_at,
			payload = EXCLUDED.payload
	`
	if _, err := r.pool.Exec(ctx, query, run.RunID, run.CreatedAt, payload); err != nil {
		return fmt.Errorf("failed to save plan run %s: %w", run.RunID, err)
	}
	return nil
}

// Get loads the run with the given id
func (r *PlanRunRepository) Get(ctx context.Context, runID string) (*entities.PlanRun, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	var payload []byte
	err := r.pool.QueryRow(ctx, "SELECT payload FROM plan_runs WHERE run_id = $1", runID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repositories.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan run %s: %w", runID, err)
	}
	return decodeRun(payload)
}

// List returns all runs, newest first
func (r *PlanRunRepository) List(ctx context.Context) ([]*entities.PlanRun, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	rows, err := r.pool.Query(ctx, "SELECT payload FROM plan_runs ORDER BY created_at DESC, run_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list plan runs: %w", err)
	}
	payloads, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("failed to scan plan runs: %w", err)
	}

	runs := make([]*entities.PlanRun, 0, len(payloads))
	for _, payload := range payloads {
		run, err := decodeRun(payload)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func decodeRun(payload []byte) (*entities.PlanRun, error) {
	var run entities.PlanRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, fmt.Errorf("failed to decode plan run: %w", err)
	}
	return &run, nil
}
