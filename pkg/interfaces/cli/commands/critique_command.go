package commands

import (
	"context"
	"fmt"
	"io"
	"os"
)

// CritiqueConfig holds configuration for the critique command
type CritiqueConfig struct {
	Inputs InputFiles
	Goal   GoalInput
	Stdout io.Writer
}

// CritiqueCommand plans from the inputs and asks the provider to critique the result
type CritiqueCommand struct {
	config  CritiqueConfig
	runtime *Runtime
}

// NewCritiqueCommand creates a new critique command
func NewCritiqueCommand(config CritiqueConfig, runtime *Runtime) *CritiqueCommand {
	return &CritiqueCommand{config: config, runtime: runtime}
}

// Execute runs the critique command
func (c *CritiqueCommand) Execute(ctx context.Context) error {
	tables, err := c.config.Inputs.Load()
	if err != nil {
		return err
	}
	result, err := c.runtime.Orchestrator.RunPipeline(ctx, c.config.Goal.Resolve(), tables)
	if err != nil {
		return fmt.Errorf("failed to run pipeline: %w", err)
	}

	critique, err := c.runtime.Orchestrator.Critique(ctx, result.RunID)
	if err != nil {
		return fmt.Errorf("failed to critique plan %s: %w", result.RunID, err)
	}
	return writeJSON(c.config.Stdout, critique)
}

// EvalConfig holds configuration for the eval-llm command
type EvalConfig struct {
	DataFile string
	Stdout   io.Writer
}

// EvalCommand measures how often the provider returns a schema-conforming critique
type EvalCommand struct {
	config  EvalConfig
	runtime *Runtime
}

// NewEvalCommand creates a new eval-llm command
func NewEvalCommand(config EvalConfig, runtime *Runtime) *EvalCommand {
	return &EvalCommand{config: config, runtime: runtime}
}

// Execute runs the eval-llm command
func (c *EvalCommand) Execute(ctx context.Context) error {
	if c.config.DataFile == "" {
		return fmt.Errorf("validation error: --data is required")
	}
	file, err := os.Open(c.config.DataFile)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.config.DataFile, err)
	}
	defer file.Close()

	report, err := c.runtime.Critic.Evaluate(ctx, file)
	if err != nil {
		return err
	}
	c.runtime.Logger.Info("llm_eval_completed",
		"provider", c.runtime.Critic.Provider(),
		"n", report.N,
		"json_valid", report.JSONValid,
	)
	return writeJSON(c.config.Stdout, report)
}
