package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vsinha/procureplan/pkg/application/services/goals"
	"github.com/vsinha/procureplan/pkg/interfaces/cli/output"
)

// OptionsConfig holds configuration for the options command
type OptionsConfig struct {
	Goal   GoalInput
	Format string
	Stdout io.Writer
}

// OptionsCommand prints the plan variants for a goal
type OptionsCommand struct {
	config OptionsConfig
}

// NewOptionsCommand creates a new options command
func NewOptionsCommand(config OptionsConfig) *OptionsCommand {
	return &OptionsCommand{config: config}
}

// Execute runs the options command
func (c *OptionsCommand) Execute(ctx context.Context) error {
	options := goals.BuildPlanOptions(c.config.Goal.Resolve())

	switch c.config.Format {
	case output.FormatJSON:
		return writeJSON(c.config.Stdout, options)
	case output.FormatText, "":
		fmt.Fprintf(c.config.Stdout, "%-16s %-12s %-8s %s\n", "Option", "Cost", "Service", "Tradeoffs")
		fmt.Fprintf(c.config.Stdout, "%-16s %-12s %-8s %s\n", "----------------", "------------", "--------", "---------")
		for _, o := range options {
			fmt.Fprintf(c.config.Stdout, "%-16s %-12.2f %-8.4f %s\n", o.Name, o.EstimatedMonthlyCost, o.ExpectedServiceLevel, o.Tradeoffs)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", c.config.Format)
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
