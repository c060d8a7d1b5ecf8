package critique

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vsinha/procureplan/pkg/infrastructure/llm"
)

type stubProvider struct {
	response map[string]any
	err      error
	prompts  []string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) CompleteJSON(ctx context.Context, prompt string, schema llm.Schema) (map[string]any, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("g", "d", "p")

	expected := "System: You are a helpful assistant that outputs valid JSON conforming to a schema.\n" +
		"User: Analyze the following goal, data summary, and plan.\n" +
		"Goal: g\nData: d\nPlan: p\n" +
		"Return JSON with keys: assumptions, risks, tweak_actions."
	if prompt != expected {
		t.Errorf("Unexpected prompt:\n%s", prompt)
	}
}

func TestCritique_MockProvider(t *testing.T) {
	critic := NewCritic(llm.NewMockProvider())

	result, err := critic.Critique(context.Background(), "goal", "data", "plan")
	if err != nil {
		t.Fatalf("Critique failed: %v", err)
	}
	if len(result.Assumptions) != 1 || result.Assumptions[0] != "prices stable" {
		t.Errorf("Unexpected assumptions %v", result.Assumptions)
	}
	if len(result.TweakActions) != 1 || result.TweakActions[0] != "increase safety stock for A SKUs" {
		t.Errorf("Unexpected tweak actions %v", result.TweakActions)
	}
}

func TestCritique_NonConformingResponses(t *testing.T) {
	tests := []struct {
		name     string
		response map[string]any
	}{
		{"missing key", map[string]any{"assumptions": []any{}, "risks": []any{}}},
		{"wrong type", map[string]any{"assumptions": "none", "risks": []any{}, "tweak_actions": []any{}}},
		{"non-string items", map[string]any{"assumptions": []any{1}, "risks": []any{}, "tweak_actions": []any{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			critic := NewCritic(&stubProvider{response: tt.response})
			_, err := critic.Critique(context.Background(), "g", "d", "p")
			var perr *llm.ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("Expected ProviderError, got %v", err)
			}
			if perr.Op != "validate" {
				t.Errorf("Expected validate op, got %s", perr.Op)
			}
		})
	}
}

func TestCritique_EmptyListsConform(t *testing.T) {
	critic := NewCritic(&stubProvider{response: map[string]any{
		"assumptions": []any{}, "risks": []any{}, "tweak_actions": []any{},
	}})

	if _, err := critic.Critique(context.Background(), "g", "d", "p"); err != nil {
		t.Errorf("Expected empty lists to conform, got %v", err)
	}
}

func TestCritique_ProviderErrorPassesThrough(t *testing.T) {
	failure := &llm.ProviderError{Provider: "stub", Op: "complete", Err: errors.New("connection refused")}
	critic := NewCritic(&stubProvider{err: failure})

	_, err := critic.Critique(context.Background(), "g", "d", "p")
	if !errors.Is(err, failure) {
		t.Errorf("Expected provider error, got %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	dataset := strings.Join([]string{
		`{"goal": "cut costs", "data_summary": "3 skus", "base_plan": {"total_cost": 100}}`,
		``,
		`{"goal": {"monthly_budget_gbp": 8000}}`,
	}, "\n")
	stub := &stubProvider{response: map[string]any{
		"assumptions": []any{"a"}, "risks": []any{"r"}, "tweak_actions": []any{"t"},
	}}

	report, err := NewCritic(stub).Evaluate(context.Background(), strings.NewReader(dataset))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if report.N != 2 {
		t.Errorf("Expected 2 examples, got %d", report.N)
	}
	if report.JSONValid != 1.0 {
		t.Errorf("Expected json_valid 1.0, got %f", report.JSONValid)
	}
	if !strings.Contains(stub.prompts[0], "Goal: cut costs\n") {
		t.Errorf("Expected string goal in prompt, got %q", stub.prompts[0])
	}
	if !strings.Contains(stub.prompts[0], `Plan: {"total_cost": 100}`) {
		t.Errorf("Expected raw JSON plan in prompt, got %q", stub.prompts[0])
	}
}

func TestEvaluate_FailingProvider(t *testing.T) {
	stub := &stubProvider{err: errors.New("down")}

	report, err := NewCritic(stub).Evaluate(context.Background(), strings.NewReader(`{"goal":"g"}`+"\n"+`{"goal":"h"}`))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if report.N != 2 || report.JSONValid != 0 {
		t.Errorf("Expected 2 examples with none valid, got %+v", report)
	}
}

func TestEvaluate_MalformedLine(t *testing.T) {
	_, err := NewCritic(llm.NewMockProvider()).Evaluate(context.Background(), strings.NewReader("{not json"))
	if err == nil {
		t.Error("Expected error for malformed example")
	}
}
