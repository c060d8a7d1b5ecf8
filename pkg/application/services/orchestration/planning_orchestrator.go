package orchestration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vsinha/procureplan/pkg/application/dto"
	"github.com/vsinha/procureplan/pkg/application/services/allocation"
	"github.com/vsinha/procureplan/pkg/application/services/critique"
	"github.com/vsinha/procureplan/pkg/application/services/features"
	"github.com/vsinha/procureplan/pkg/application/services/forecast"
	"github.com/vsinha/procureplan/pkg/application/services/goals"
	"github.com/vsinha/procureplan/pkg/application/services/policy"
	"github.com/vsinha/procureplan/pkg/application/services/provenance"
	"github.com/vsinha/procureplan/pkg/application/services/scoring"
	"github.com/vsinha/procureplan/pkg/application/services/voi"
	"github.com/vsinha/procureplan/pkg/domain/entities"
	"github.com/vsinha/procureplan/pkg/domain/repositories"
	"github.com/vsinha/procureplan/pkg/infrastructure/events"
)

// ErrCritiqueUnavailable is returned by Critique when no critic is configured
var ErrCritiqueUnavailable = errors.New("critique provider not configured")

// Options configures the numeric pipeline
type Options struct {
	Horizon       int
	Seed          uint64
	Weights       entities.Weights
	StageVersions map[string]string
}

// DefaultOptions returns a 30 day horizon, seed 42, default weights and the built-in stage versions
func DefaultOptions() Options {
	return Options{
		Horizon: 30,
		Seed:    42,
		Weights: entities.DefaultWeights(),
		StageVersions: map[string]string{
			entities.StageForecaster: forecast.Version,
			entities.StageOptimizer:  allocation.Version,
			entities.StagePolicies:   policy.Version,
			entities.StageScoring:    scoring.Version,
		},
	}
}

// PlanningOrchestrator runs the planning stages in order and records the outcome
type PlanningOrchestrator struct {
	forecaster *forecast.Forecaster
	scorer     *scoring.Scorer
	versions   map[string]string
	critic     *critique.Critic
	repo       repositories.PlanRunRepository
	eventStore events.EventStore
	validate   *validator.Validate
	logger     *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewPlanningOrchestrator creates a new planning orchestrator. critic may be nil, in
// which case Critique returns ErrCritiqueUnavailable.
func NewPlanningOrchestrator(
	opts Options,
	repo repositories.PlanRunRepository,
	eventStore events.EventStore,
	critic *critique.Critic,
	logger *slog.Logger,
) (*PlanningOrchestrator, error) {
	if repo == nil {
		return nil, fmt.Errorf("plan run repository cannot be nil")
	}
	if eventStore == nil {
		return nil, fmt.Errorf("event store cannot be nil")
	}
	forecaster, err := forecast.NewForecaster(forecast.Config{Horizon: opts.Horizon, Seed: opts.Seed})
	if err != nil {
		return nil, fmt.Errorf("failed to create forecaster: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PlanningOrchestrator{
		forecaster: forecaster,
		scorer:     scoring.NewScorer(opts.Weights),
		versions:   opts.StageVersions,
		critic:     critic,
		repo:       repo,
		eventStore: eventStore,
		validate:   newGoalValidator(),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}, nil
}

// RunPipeline builds features, forecasts, allocates against the goal's service target
// and budget, removes suppliers the goal excludes, scores the plan and assembles its
// evidence graph. The run is recorded as events and saved before returning.
func (po *PlanningOrchestrator) RunPipeline(
	ctx context.Context,
	goal entities.Goal,
	tables dto.Tables,
) (*dto.PipelineResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	goal.Normalize()
	if err := po.ValidateGoal(goal); err != nil {
		return nil, err
	}

	runID := po.newID()
	logger := po.logger.With("run_id", runID)
	result := &dto.PipelineResult{
		RunID:     runID,
		CreatedAt: po.now(),
		Goal:      goal,
	}

	// Step 1: Features
	feats := features.BuildFeatures(tables)
	result.Features = feats
	logger.Info("pipeline_stage_completed",
		"stage", "features",
		"daily_rows", len(feats.DailyDemand),
		"items", len(feats.ItemClasses),
		"offers", len(feats.EnrichedOffers),
	)

	// Step 2: Forecast
	points := po.forecaster.Forecast(feats.DailyDemand)
	result.Forecast = points
	forecastItems := len(allocation.TotalDemand(points))
	if err := po.record(runID, events.NewPlanForecastedEvent(runID, forecastItems, len(points), po.forecaster.Horizon())); err != nil {
		return nil, err
	}
	logger.Info("pipeline_stage_completed", "stage", entities.StageForecaster, "items", forecastItems, "points", len(points))

	// Step 3: Allocate
	plan := allocation.Allocate(points, feats.EnrichedOffers, goal.ServiceLevelTarget, goal.MonthlyBudgetGBP)
	if err := plan.CheckCostInvariant(); err != nil {
		return nil, fmt.Errorf("allocation broke cost invariant: %w", err)
	}
	if err := po.record(runID, events.NewPlanAllocatedEvent(runID, plan)); err != nil {
		return nil, err
	}
	logger.Info("pipeline_stage_completed",
		"stage", entities.StageOptimizer,
		"rows", len(plan.Allocation),
		"total_cost", plan.Summary.TotalCost,
		"within_budget", plan.Summary.WithinBudget,
	)

	// Step 4: Policies
	banned := goal.BannedSuppliers()
	adjusted, report := policy.Enforce(plan, policy.Constraints{BannedSuppliers: banned})
	if err := adjusted.CheckCostInvariant(); err != nil {
		return nil, fmt.Errorf("policy enforcement broke cost invariant: %w", err)
	}
	result.Plan = adjusted
	result.Allocation = adjusted.Allocation
	result.Summary = adjusted.Summary
	result.Adjustments = dto.PolicyAdjustments{
		BannedSuppliers: banned,
		Removed:         nonNil(report.Removed),
		Reassigned:      nonNil(report.Reassigned),
		Dropped:         nonNilItems(report.Dropped),
	}
	if err := po.record(runID, events.NewPlanPoliciesAppliedEvent(runID, events.PlanPoliciesApplied{
		BannedSuppliers: banned,
		Removed:         len(report.Removed),
		Reassigned:      len(report.Reassigned),
		Dropped:         report.Dropped,
		Summary:         adjusted.Summary,
	})); err != nil {
		return nil, err
	}
	logger.Info("pipeline_stage_completed",
		"stage", entities.StagePolicies,
		"banned", len(banned),
		"removed", len(report.Removed),
		"reassigned", len(report.Reassigned),
		"dropped", len(report.Dropped),
		"total_cost", adjusted.Summary.TotalCost,
	)

	// Step 5: Score
	result.Scored = po.scorer.Score(adjusted, points, nil)
	if err := po.record(runID, events.NewPlanScoredEvent(runID, result.Scored)); err != nil {
		return nil, err
	}
	logger.Info("pipeline_stage_completed",
		"stage", entities.StageScoring,
		"score", result.Scored.Score,
		"service_level", result.Scored.KPIs.ServiceLevel,
	)

	// Step 6: Evidence, shortages and follow-up questions
	summary := adjusted.Summary
	result.Evidence = provenance.BuildGraph(goal, tables.Presence(), po.versions, &summary)
	result.Shortages = FindShortages(points, adjusted, report, goal.ServiceLevelTarget)
	for _, shortage := range result.Shortages {
		if err := po.record(runID, events.NewShortageIdentifiedEvent(runID, shortage)); err != nil {
			return nil, err
		}
	}
	result.Questions = po.NextQuestions(tables.Presence(), feats.DailyDemand)

	if err := po.repo.Save(ctx, result.Run()); err != nil {
		return nil, fmt.Errorf("failed to save plan run: %w", err)
	}
	logger.Info("pipeline_completed",
		"shortages", len(result.Shortages),
		"questions", len(result.Questions),
		"total_cost", result.Summary.TotalCost,
	)
	return result, nil
}

// ValidateGoal checks the goal's field bounds, reporting the first violation as an
// *entities.ValidationError
func (po *PlanningOrchestrator) ValidateGoal(goal entities.Goal) error {
	err := po.validate.Struct(goal)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &entities.ValidationError{
			Table:  "goal",
			Field:  fe.Field(),
			Reason: fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param()),
		}
	}
	return fmt.Errorf("failed to validate goal: %w", err)
}

// NextQuestions ranks the inputs still missing. When daily demand is available its
// variability replaces the sales prior.
func (po *PlanningOrchestrator) NextQuestions(
	provided map[entities.InputID]bool,
	daily []entities.DailyDemand,
) []entities.VoIQuestion {
	if cv, ok := voi.DemandVariability(daily); ok {
		return voi.RankQuestions(provided, &cv)
	}
	return voi.RankQuestions(provided, nil)
}

// PlanOptions returns the cost-focused, balanced and quality-focused variants of a goal
func (po *PlanningOrchestrator) PlanOptions(goal entities.Goal) []entities.PlanOption {
	return goals.BuildPlanOptions(goal)
}

// GetRun returns a saved run
func (po *PlanningOrchestrator) GetRun(ctx context.Context, runID string) (*entities.PlanRun, error) {
	return po.repo.Get(ctx, runID)
}

// ListRuns returns saved runs, newest first
func (po *PlanningOrchestrator) ListRuns(ctx context.Context) ([]*entities.PlanRun, error) {
	return po.repo.List(ctx)
}

// Events returns the events recorded for a run
func (po *PlanningOrchestrator) Events(runID string) ([]events.Event, error) {
	return po.eventStore.ReadEvents(runID, 0)
}

// AllEvents returns events of every run in append order, starting at position from
func (po *PlanningOrchestrator) AllEvents(from int) ([]events.Event, error) {
	return po.eventStore.ReadAllEvents(from)
}

// Critique asks the configured provider to critique a saved run. On success the
// critique is attached to the run and saved. On failure the run is left as it was and
// the provider error is returned.
func (po *PlanningOrchestrator) Critique(ctx context.Context, runID string) (entities.Critique, error) {
	if po.critic == nil {
		return entities.Critique{}, ErrCritiqueUnavailable
	}
	run, err := po.repo.Get(ctx, runID)
	if err != nil {
		return entities.Critique{}, err
	}

	goalText, dataText, planText, err := critiqueInputs(run)
	if err != nil {
		return entities.Critique{}, err
	}

	logger := po.logger.With("run_id", runID, "provider", po.critic.Provider())
	result, err := po.critic.Critique(ctx, goalText, dataText, planText)
	if err != nil {
		logger.Warn("critique_failed", "error", err)
		if recErr := po.record(runID, events.NewPlanCritiqueFailedEvent(runID, po.critic.Provider(), err)); recErr != nil {
			logger.Error("event_record_failed", "error", recErr)
		}
		return entities.Critique{}, err
	}

	run.Critique = &result
	if err := po.repo.Save(ctx, run); err != nil {
		return entities.Critique{}, fmt.Errorf("failed to save critique: %w", err)
	}
	if err := po.record(runID, events.NewPlanCritiquedEvent(runID, po.critic.Provider(), result)); err != nil {
		return entities.Critique{}, err
	}
	logger.Info("critique_completed",
		"assumptions", len(result.Assumptions),
		"risks", len(result.Risks),
		"tweak_actions", len(result.TweakActions),
	)
	return result, nil
}

// FindShortages reports each forecast item whose final allocation falls short of
// demand x target. The reason distinguishes a missing offer, a supplier removed by
// policy with no alternative, and a purchase below the target.
func FindShortages(
	points []entities.ForecastPoint,
	plan *entities.Plan,
	report policy.Report,
	serviceTarget float64,
) []entities.Shortage {
	demand := allocation.TotalDemand(points)
	bought := make(map[entities.ItemID]entities.Quantity)
	offered := make(map[entities.ItemID]bool)
	if plan != nil {
		for _, row := range plan.Allocation {
			bought[row.ItemID] += row.Quantity
		}
		for _, offer := range plan.Offers {
			offered[offer.ItemID] = true
		}
	}
	dropped := make(map[entities.ItemID]bool, len(report.Dropped))
	for _, id := range report.Dropped {
		dropped[id] = true
	}

	items := make([]entities.ItemID, 0, len(demand))
	for id := range demand {
		items = append(items, id)
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })

	shortages := []entities.Shortage{}
	for _, id := range items {
		d := demand[id]
		if d <= 0 {
			continue
		}
		var reason string
		switch {
		case dropped[id]:
			reason = entities.ShortagePolicyBanned
		case !offered[id]:
			reason = entities.ShortageNoOffer
		case float64(bought[id]) < float64(d)*serviceTarget-1e-9:
			reason = entities.ShortageUnderServed
		default:
			continue
		}
		shortages = append(shortages, entities.Shortage{
			ItemID: id,
			Demand: entities.Quantity(entities.Round(float64(d), 3)),
			Bought: bought[id],
			Reason: reason,
		})
	}
	return shortages
}

// newGoalValidator reports fields by their JSON names
func newGoalValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (po *PlanningOrchestrator) record(runID string, event events.Event) error {
	if err := po.eventStore.AppendEvent(runID, event); err != nil {
		return fmt.Errorf("failed to record %s event: %w", event.Type(), err)
	}
	return nil
}

// critiqueInputs renders the goal, a data summary and the plan as JSON prompt sections
func critiqueInputs(run *entities.PlanRun) (goal, data, plan string, err error) {
	inputs := make(map[string]bool)
	for _, node := range run.Evidence.Nodes {
		if node.Kind != entities.NodeData {
			continue
		}
		present, _ := node.Attributes["present"].(bool)
		inputs[node.ID] = present
	}
	dataSummary := map[string]any{
		"inputs":    inputs,
		"rows":      len(run.Allocation),
		"shortages": run.Shortages,
	}
	planSummary := map[string]any{
		"allocation": run.Allocation,
		"summary":    run.Summary,
		"kpis":       run.Scored.KPIs,
		"score":      run.Scored.Score,
	}

	rendered := make([]string, 0, 3)
	for _, v := range []any{run.Goal, dataSummary, planSummary} {
		b, mErr := json.Marshal(v)
		if mErr != nil {
			return "", "", "", fmt.Errorf("failed to render critique input: %w", mErr)
		}
		rendered = append(rendered, string(b))
	}
	return rendered[0], rendered[1], rendered[2], nil
}

func nonNil(rows []entities.AllocationRow) []entities.AllocationRow {
	if rows == nil {
		return []entities.AllocationRow{}
	}
	return rows
}

func nonNilItems(ids []entities.ItemID) []entities.ItemID {
	if ids == nil {
		return []entities.ItemID{}
	}
	return ids
}
