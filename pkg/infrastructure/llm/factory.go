package llm

import (
	"log/slog"
	"strings"

	"github.com/vsinha/procureplan/pkg/infrastructure/config"
)

// NewProvider builds the provider named by settings. Unknown names fall back to the
// mock provider with a warning.
func NewProvider(settings config.LLMSettings, logger *slog.Logger) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(settings.Provider))
	switch name {
	case "", "mock":
		return NewMockProvider(), nil
	case "ollama":
		return NewOllamaProvider(settings.OllamaBase, settings.OllamaModel)
	case "lmstudio":
		return NewLMStudioProvider(settings.LMStudioBase, settings.LMStudioModel)
	case "openai":
		return NewOpenAIProvider(settings.OpenAIAPIKey, settings.OpenAIBase, settings.OpenAIModel)
	case "gemini":
		return NewGeminiProvider(settings.GeminiAPIKey, settings.GeminiModel), nil
	default:
		if logger != nil {
			logger.Warn("llm_provider_unknown", "provider", settings.Provider, "fallback", "mock")
		}
		return NewMockProvider(), nil
	}
}
