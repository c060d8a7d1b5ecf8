package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/vsinha/procureplan/pkg/application/services/features"
	"github.com/vsinha/procureplan/pkg/domain/entities"
	"github.com/vsinha/procureplan/pkg/interfaces/cli/output"
)

// QuestionsConfig holds configuration for the questions command
type QuestionsConfig struct {
	Inputs   InputFiles
	Provided []string
	Format   string
	Stdout   io.Writer
}

// QuestionsCommand ranks the inputs worth asking for next
type QuestionsCommand struct {
	config  QuestionsConfig
	runtime *Runtime
}

// NewQuestionsCommand creates a new questions command
func NewQuestionsCommand(config QuestionsConfig, runtime *Runtime) *QuestionsCommand {
	return &QuestionsCommand{config: config, runtime: runtime}
}

// Execute runs the questions command. Loaded tables mark their inputs provided and
// sales history feeds the variability estimate.
func (c *QuestionsCommand) Execute(ctx context.Context) error {
	provided := make(map[entities.InputID]bool)
	for _, id := range c.config.Provided {
		provided[entities.InputID(id)] = true
	}

	var daily []entities.DailyDemand
	if !c.config.Inputs.Empty() {
		tables, err := c.config.Inputs.Load()
		if err != nil {
			return err
		}
		for id, present := range tables.Presence() {
			if present {
				provided[id] = true
			}
		}
		daily = features.AggregateDailyDemand(tables.Sales)
	}

	questions := c.runtime.Orchestrator.NextQuestions(provided, daily)

	switch c.config.Format {
	case output.FormatJSON:
		return writeJSON(c.config.Stdout, questions)
	case output.FormatText, "":
		if len(questions) == 0 {
			fmt.Fprintln(c.config.Stdout, "All inputs provided.")
			return nil
		}
		for _, q := range questions {
			fmt.Fprintf(c.config.Stdout, "[%.3f] %s\n        %s\n", q.VoIScore, q.Prompt, q.Rationale)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", c.config.Format)
	}
}
