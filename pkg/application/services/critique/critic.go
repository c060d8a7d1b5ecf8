// Package critique asks a text-completion provider to review a plan.
package critique

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vsinha/procureplan/pkg/domain/entities"
	"github.com/vsinha/procureplan/pkg/infrastructure/llm"
)

// SystemPrompt instructs the model to answer with schema-conforming JSON
const SystemPrompt = "You are a helpful assistant that outputs valid JSON conforming to a schema."

// Schema is the JSON schema of a plan critique
var Schema = llm.Schema{
	"type": "object",
	"properties": map[string]any{
		"assumptions":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"risks":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"tweak_actions": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []any{"assumptions", "risks", "tweak_actions"},
}

// BuildPrompt renders the critique prompt for a goal, a data summary and a plan summary
func BuildPrompt(goal, data, plan string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "System: %s\n", SystemPrompt)
	b.WriteString("User: Analyze the following goal, data summary, and plan.\n")
	fmt.Fprintf(&b, "Goal: %s\n", goal)
	fmt.Fprintf(&b, "Data: %s\n", data)
	fmt.Fprintf(&b, "Plan: %s\n", plan)
	b.WriteString("Return JSON with keys: assumptions, risks, tweak_actions.")
	return b.String()
}

type response struct {
	Assumptions  []string `json:"assumptions" validate:"required"`
	Risks        []string `json:"risks" validate:"required"`
	TweakActions []string `json:"tweak_actions" validate:"required"`
}

// Critic reviews plans through a provider
type Critic struct {
	provider llm.Provider
	validate *validator.Validate
}

// NewCritic creates a critic backed by provider
func NewCritic(provider llm.Provider) *Critic {
	return &Critic{provider: provider, validate: validator.New()}
}

// Provider returns the name of the backing provider
func (c *Critic) Provider() string {
	return c.provider.Name()
}

// Critique requests a critique and checks it against the schema. Any failure is
// returned as an *llm.ProviderError.
func (c *Critic) Critique(ctx context.Context, goal, data, plan string) (entities.Critique, error) {
	obj, err := c.provider.CompleteJSON(ctx, BuildPrompt(goal, data, plan), Schema)
	if err != nil {
		return entities.Critique{}, err
	}

	parsed, err := c.conform(obj)
	if err != nil {
		return entities.Critique{}, &llm.ProviderError{Provider: c.provider.Name(), Op: "validate", Err: err}
	}
	return parsed, nil
}

func (c *Critic) conform(obj map[string]any) (entities.Critique, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return entities.Critique{}, fmt.Errorf("failed to encode response: %w", err)
	}
	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return entities.Critique{}, fmt.Errorf("response does not match critique schema: %w", err)
	}
	if err := c.validate.Struct(r); err != nil {
		return entities.Critique{}, fmt.Errorf("response missing required keys: %w", err)
	}
	return entities.Critique{
		Assumptions:  r.Assumptions,
		Risks:        r.Risks,
		TweakActions: r.TweakActions,
	}, nil
}

// EvalReport summarizes how often a provider produced a conforming critique
type EvalReport struct {
	N         int     `json:"n"`
	JSONValid float64 `json:"json_valid"`
}

type example struct {
	Goal        json.RawMessage `json:"goal"`
	DataSummary json.RawMessage `json:"data_summary"`
	BasePlan    json.RawMessage `json:"base_plan"`
}

// Evaluate runs one critique per JSONL example of {goal, data_summary, base_plan} and
// reports the fraction that conformed. Blank lines are skipped; a malformed line fails.
func (c *Critic) Evaluate(ctx context.Context, r io.Reader) (EvalReport, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var total, valid int
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var ex example
		if err := json.Unmarshal([]byte(text), &ex); err != nil {
			return EvalReport{}, fmt.Errorf("failed to parse example on line %d: %w", line, err)
		}
		total++
		if _, err := c.Critique(ctx, field(ex.Goal), field(ex.DataSummary), field(ex.BasePlan)); err == nil {
			valid++
		}
	}
	if err := scanner.Err(); err != nil {
		return EvalReport{}, fmt.Errorf("failed to read examples: %w", err)
	}

	return EvalReport{N: total, JSONValid: float64(valid) / float64(max(1, total))}, nil
}

// field renders a JSON string as its text and any other value as compact JSON
func field(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
