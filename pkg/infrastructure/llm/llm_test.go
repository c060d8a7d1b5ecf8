package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/procureplan/pkg/infrastructure/config"
	"github.com/vsinha/procureplan/pkg/infrastructure/logging"
)

func TestMockProvider_Deterministic(t *testing.T) {
	p := NewMockProvider()

	first, err := p.CompleteJSON(context.Background(), "anything", nil)
	require.NoError(t, err)
	second, err := p.CompleteJSON(context.Background(), "something else", nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []any{"supplier delay"}, first["risks"])
}

func TestMockProvider_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockProvider().CompleteJSON(ctx, "p", nil)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "mock", perr.Provider)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProvider_Selection(t *testing.T) {
	logger := logging.Discard()
	tests := []struct {
		provider string
		expected string
	}{
		{"", "mock"},
		{"mock", "mock"},
		{"OLLAMA", "ollama"},
		{"lmstudio", "lmstudio"},
		{"openai", "openai"},
		{"gemini", "gemini"},
		{"hf", "mock"},
		{"azure", "mock"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewProvider(config.LLMSettings{Provider: tt.provider}, logger)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.Name())
		})
	}
}

func TestUnconfiguredProviders_FailWithProviderError(t *testing.T) {
	providers := []Provider{}
	ollama, err := NewOllamaProvider("", "llama3")
	require.NoError(t, err)
	lmstudio, err := NewLMStudioProvider("", "")
	require.NoError(t, err)
	openai, err := NewOpenAIProvider("", "", "")
	require.NoError(t, err)
	providers = append(providers, ollama, lmstudio, openai, NewGeminiProvider("", ""))

	for _, p := range providers {
		_, err := p.CompleteJSON(context.Background(), "prompt", nil)
		var perr *ProviderError
		if assert.True(t, errors.As(err, &perr), p.Name()) {
			assert.Equal(t, p.Name(), perr.Provider)
			assert.Contains(t, perr.Error(), "not set")
		}
	}
}

func TestDecodeObject(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"strict", `{"risks": ["late delivery"]}`},
		{"fenced", "```json\n{\"risks\": [\"late delivery\"]}\n```"},
		{"trailing comma", `{"risks": ["late delivery",],}`},
		{"single quotes", `{'risks': ['late delivery']}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := DecodeObject(tt.text)
			require.NoError(t, err)
			assert.Equal(t, []any{"late delivery"}, obj["risks"])
		})
	}
}

func TestDecodeObject_NotAnObject(t *testing.T) {
	_, err := DecodeObject("   ")
	assert.ErrorIs(t, err, ErrNotObject)
}
