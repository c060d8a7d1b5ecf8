package llm

import "context"

// MockProvider returns a fixed critique without any network access
type MockProvider struct{}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a mock provider
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Name returns the provider name
func (p *MockProvider) Name() string {
	return "mock"
}

// CompleteJSON returns the same object for every prompt
func (p *MockProvider) CompleteJSON(ctx context.Context, prompt string, schema Schema) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, newProviderError(p.Name(), "complete", err)
	}
	return map[string]any{
		"assumptions":   []any{"prices stable"},
		"risks":         []any{"supplier delay"},
		"tweak_actions": []any{"increase safety stock for A SKUs"},
	}, nil
}
