package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/vsinha/procureplan/pkg/application/services/goals"
)

// GoalParseCommand prints the structured goal extracted from text
type GoalParseCommand struct {
	text   string
	stdout io.Writer
}

// NewGoalParseCommand creates a new goal parse command
func NewGoalParseCommand(text string, stdout io.Writer) *GoalParseCommand {
	return &GoalParseCommand{text: text, stdout: stdout}
}

// Execute runs the goal parse command
func (c *GoalParseCommand) Execute(ctx context.Context) error {
	if c.text == "" {
		return fmt.Errorf("validation error: goal text is required")
	}
	return writeJSON(c.stdout, goals.ParseGoal(c.text))
}
