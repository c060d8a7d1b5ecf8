// Package llm adapts text-completion backends to a single JSON completion interface.
package llm

import (
	"context"
	"fmt"
)

// Schema is a JSON schema document describing the expected response object
type Schema = map[string]any

// Provider completes a prompt into a JSON object conforming to schema
type Provider interface {
	Name() string
	CompleteJSON(ctx context.Context, prompt string, schema Schema) (map[string]any, error)
}

// ProviderError reports a failed completion
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newProviderError(provider, op string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}
