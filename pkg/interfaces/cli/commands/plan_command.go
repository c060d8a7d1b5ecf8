package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vsinha/procureplan/pkg/application/services/goals"
	"github.com/vsinha/procureplan/pkg/domain/entities"
	"github.com/vsinha/procureplan/pkg/interfaces/cli/output"
)

// GoalInput describes a goal either as free text or as explicit values. Explicit
// values, when set, override what the text yields.
type GoalInput struct {
	Text          string
	Budget        float64
	BudgetSet     bool
	ServiceTarget float64
	TargetSet     bool
	Excludes      []string
}

// Resolve builds the goal
func (g GoalInput) Resolve() entities.Goal {
	goal := entities.Goal{ServiceLevelTarget: goals.DefaultServiceTarget}
	if g.Text != "" {
		goal = goals.ParseGoal(g.Text)
	}
	if g.BudgetSet {
		goal.MonthlyBudgetGBP = g.Budget
	}
	if g.TargetSet {
		goal.ServiceLevelTarget = g.ServiceTarget
	}
	goal.Excludes = append(goal.Excludes, g.Excludes...)
	goal.Normalize()
	return goal
}

// PlanConfig holds configuration for the plan command
type PlanConfig struct {
	Inputs    InputFiles
	Goal      GoalInput
	Format    string
	OutputDir string
	Critique  bool
	Verbose   bool
	Stdout    io.Writer
}

// PlanCommand runs the planning pipeline over CSV inputs
type PlanCommand struct {
	config  PlanConfig
	runtime *Runtime
}

// NewPlanCommand creates a new plan command with the given configuration
func NewPlanCommand(config PlanConfig, runtime *Runtime) *PlanCommand {
	return &PlanCommand{config: config, runtime: runtime}
}

// Execute runs the plan command
func (c *PlanCommand) Execute(ctx context.Context) error {
	if c.config.Inputs.Empty() {
		return fmt.Errorf("validation error: provide --data-dir or at least one of --sales, --inventory, --offers")
	}

	tables, err := c.config.Inputs.Load()
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := c.runtime.Orchestrator.RunPipeline(ctx, c.config.Goal.Resolve(), tables)
	if err != nil {
		return fmt.Errorf("failed to run pipeline: %w", err)
	}

	if c.config.Critique {
		critique, err := c.runtime.Orchestrator.Critique(ctx, result.RunID)
		if err != nil {
			// The numeric plan stands without a critique
			c.runtime.Logger.Warn("critique_skipped", "run_id", result.RunID, "error", err)
		} else {
			result.Critique = &critique
		}
	}

	return output.Generate(c.config.Stdout, result, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		RunTime:   time.Since(start),
	})
}
