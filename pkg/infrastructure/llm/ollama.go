package llm

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaProvider completes prompts with a local Ollama server in JSON format
type OllamaProvider struct {
	client *ollama.LLM
	model  string
}

var _ Provider = (*OllamaProvider)(nil)

// NewOllamaProvider creates an Ollama provider. An empty base URL yields a provider
// whose completions fail until one is configured.
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	p := &OllamaProvider{model: model}
	if baseURL == "" {
		return p, nil
	}

	opts := []ollama.Option{
		ollama.WithServerURL(baseURL),
		ollama.WithFormat("json"),
	}
	if model != "" {
		opts = append(opts, ollama.WithModel(model))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, newProviderError("ollama", "init", err)
	}
	p.client = client
	return p, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// CompleteJSON sends the prompt and decodes the response object
func (p *OllamaProvider) CompleteJSON(ctx context.Context, prompt string, schema Schema) (map[string]any, error) {
	if p.client == nil {
		return nil, newProviderError(p.Name(), "complete", errors.New("OLLAMA_BASE not set"))
	}
	return completeWithLangchain(ctx, p.Name(), p.client, prompt)
}

func completeWithLangchain(ctx context.Context, name string, model llms.Model, prompt string) (map[string]any, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, model, prompt, llms.WithTemperature(0.1), llms.WithJSONMode())
	if err != nil {
		return nil, newProviderError(name, "complete", err)
	}
	obj, err := DecodeObject(text)
	if err != nil {
		return nil, newProviderError(name, "decode", err)
	}
	return obj, nil
}
