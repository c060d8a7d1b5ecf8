package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vsinha/procureplan/pkg/application/services/critique"
	"github.com/vsinha/procureplan/pkg/application/services/orchestration"
	"github.com/vsinha/procureplan/pkg/domain/repositories"
	"github.com/vsinha/procureplan/pkg/infrastructure/config"
	"github.com/vsinha/procureplan/pkg/infrastructure/events"
	"github.com/vsinha/procureplan/pkg/infrastructure/llm"
	"github.com/vsinha/procureplan/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/procureplan/pkg/infrastructure/repositories/postgres"
)

// Runtime holds the services a command needs, built from settings
type Runtime struct {
	Settings     config.Settings
	Logger       *slog.Logger
	Critic       *critique.Critic
	Orchestrator *orchestration.PlanningOrchestrator

	closers []func()
}

// NewRuntime wires the planner. An empty DatabaseURL keeps plan runs in memory.
func NewRuntime(ctx context.Context, settings config.Settings, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{Settings: settings, Logger: logger}

	repo, err := rt.openRepository(ctx)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(settings.LLM, logger)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create %s provider: %w", settings.LLM.Provider, err)
	}
	rt.Critic = critique.NewCritic(provider)

	// Events stay in process memory even when runs are stored in postgres: after a
	// restart GET /plans/{id}/events is empty for earlier runs, and a long-running
	// serve keeps every event until exit.
	store := events.NewInMemoryEventStore(logger)
	degraded := events.NewLogHandler(logger, events.DegradedEventTypes()...)
	if err := store.Subscribe(degraded.Types, degraded); err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to subscribe event log: %w", err)
	}
	rt.closers = append(rt.closers, func() {
		if err := store.Unsubscribe(degraded); err != nil {
			logger.Warn("event_unsubscribe_failed", "error", err)
		}
	})

	rt.Orchestrator, err = orchestration.NewPlanningOrchestrator(
		orchestration.Options{
			Horizon:       settings.Horizon,
			Seed:          settings.Seed,
			Weights:       settings.Weights,
			StageVersions: settings.StageVersions,
		},
		repo,
		store,
		rt.Critic,
		logger,
	)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	return rt, nil
}

func (rt *Runtime) openRepository(ctx context.Context) (repositories.PlanRunRepository, error) {
	if rt.Settings.DatabaseURL == "" {
		return memory.NewPlanRunRepository(), nil
	}

	pool, err := postgres.Connect(ctx, rt.Settings.DatabaseURL)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, pool.Close)

	repo := postgres.NewPlanRunRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		rt.Close()
		return nil, err
	}
	rt.Logger.Info("plan_store_connected", "backend", "postgres")
	return repo, nil
}

// Close releases any database connections
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
