package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider completes prompts with Google's Gemini models
type GeminiProvider struct {
	apiKey string
	model  string
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini provider
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{apiKey: apiKey, model: model}
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// CompleteJSON requests a JSON response and decodes it
func (p *GeminiProvider) CompleteJSON(ctx context.Context, prompt string, schema Schema) (map[string]any, error) {
	if p.apiKey == "" {
		return nil, newProviderError(p.Name(), "complete", errors.New("GEMINI_API_KEY not set"))
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, newProviderError(p.Name(), "init", fmt.Errorf("failed to create GenAI client: %w", err))
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
	}

	result, err := client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), config)
	if err != nil {
		return nil, newProviderError(p.Name(), "complete", err)
	}

	obj, err := DecodeObject(result.Text())
	if err != nil {
		return nil, newProviderError(p.Name(), "decode", err)
	}
	return obj, nil
}
