package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/llms/openai"
)

// lmStudioToken satisfies the client for local servers that ignore authentication
const lmStudioToken = "lm-studio"

// OpenAIProvider completes prompts with an OpenAI-compatible chat endpoint.
// It serves both OpenAI and LM Studio.
type OpenAIProvider struct {
	name    string
	client  *openai.LLM
	missing string
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a provider against the OpenAI API
func NewOpenAIProvider(apiKey, baseURL, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return &OpenAIProvider{name: "openai", missing: "OPENAI_API_KEY not set"}, nil
	}
	return newOpenAICompatible("openai", apiKey, baseURL, model)
}

// NewLMStudioProvider creates a provider against a local LM Studio server
func NewLMStudioProvider(baseURL, model string) (*OpenAIProvider, error) {
	if baseURL == "" {
		return &OpenAIProvider{name: "lmstudio", missing: "LMSTUDIO_BASE not set"}, nil
	}
	base := strings.TrimSuffix(baseURL, "/")
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return newOpenAICompatible("lmstudio", lmStudioToken, base, model)
}

func newOpenAICompatible(name, token, baseURL, model string) (*OpenAIProvider, error) {
	opts := []openai.Option{openai.WithToken(token)}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, newProviderError(name, "init", err)
	}
	return &OpenAIProvider{name: name, client: client}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// CompleteJSON sends the prompt in JSON mode and decodes the response object
func (p *OpenAIProvider) CompleteJSON(ctx context.Context, prompt string, schema Schema) (map[string]any, error) {
	if p.client == nil {
		return nil, newProviderError(p.name, "complete", errors.New(p.missing))
	}
	return completeWithLangchain(ctx, p.name, p.client, prompt)
}
