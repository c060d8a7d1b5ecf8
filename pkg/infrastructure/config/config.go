// Package config provides runtime configuration values for the planner.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/procureplan/pkg/domain/entities"
)

// DefaultEnvFile is read when LoadOptions.EnvFile is empty
const DefaultEnvFile = ".env"

// LLMSettings selects and configures the text-completion provider
type LLMSettings struct {
	Provider      string        `yaml:"provider"`
	OllamaBase    string        `yaml:"ollama_base"`
	OllamaModel   string        `yaml:"ollama_model"`
	LMStudioBase  string        `yaml:"lmstudio_base"`
	LMStudioModel string        `yaml:"lmstudio_model"`
	OpenAIAPIKey  string        `yaml:"openai_api_key"`
	OpenAIBase    string        `yaml:"openai_base"`
	OpenAIModel   string        `yaml:"openai_model"`
	GeminiAPIKey  string        `yaml:"gemini_api_key"`
	GeminiModel   string        `yaml:"gemini_model"`
	Timeout       time.Duration `yaml:"timeout"`
}

// Settings holds every configuration knob of the planner
type Settings struct {
	Seed          uint64            `yaml:"seed"`
	Horizon       int               `yaml:"horizon"`
	HTTPAddr      string            `yaml:"http_addr"`
	DatabaseURL   string            `yaml:"database_url"`
	LogLevel      string            `yaml:"log_level"`
	LogFormat     string            `yaml:"log_format"`
	Weights       entities.Weights  `yaml:"weights"`
	StageVersions map[string]string `yaml:"stage_versions"`
	LLM           LLMSettings       `yaml:"llm"`
}

// LoadOptions names the optional configuration files
type LoadOptions struct {
	ConfigPath string
	EnvFile    string
}

// Defaults returns the built-in settings
func Defaults() Settings {
	return Settings{
		Seed:      42,
		Horizon:   30,
		HTTPAddr:  ":8000",
		LogLevel:  "info",
		LogFormat: "json",
		Weights:   entities.DefaultWeights(),
		StageVersions: map[string]string{
			entities.StageForecaster: "fallback-0.1",
			entities.StageOptimizer:  "greedy-0.1",
			entities.StagePolicies:   "simple-0.1",
			entities.StageScoring:    "v0.1",
		},
		LLM: LLMSettings{
			Provider:      "mock",
			OllamaModel:   "llama3",
			LMStudioModel: "lmstudio-community/Qwen2-1.5B-Instruct-GGUF",
			OpenAIModel:   "gpt-4o-mini",
			GeminiModel:   "gemini-2.0-flash",
			Timeout:       60 * time.Second,
		},
	}
}

// Load collects settings from defaults, the optional YAML file, the .env file and the
// process environment, in increasing precedence. A missing .env file is not an error.
func Load(opts LoadOptions) (Settings, error) {
	settings := Defaults()

	if opts.ConfigPath != "" {
		data, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			return Settings{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return Settings{}, fmt.Errorf("failed to parse config file %s: %w", opts.ConfigPath, err)
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
		dotenv = map[string]string{}
	}

	env := lookup{dotenv: dotenv}
	if err := env.apply(&settings); err != nil {
		return Settings{}, err
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate rejects settings the planner cannot run with
func (s Settings) Validate() error {
	if s.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", s.Horizon)
	}
	if s.Weights.Cost < 0 || s.Weights.Service < 0 || s.Weights.Diversity < 0 {
		return fmt.Errorf("weights cannot be negative, got %+v", s.Weights)
	}
	switch s.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format: %s (expected json or text)", s.LogFormat)
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return err
	}
	if s.LLM.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be positive, got %s", s.LLM.Timeout)
	}
	return nil
}

// ParseLevel maps debug, info, warn or error to a slog level
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
	return l, nil
}

type lookup struct {
	dotenv map[string]string
}

func (l lookup) get(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, true
	}
	v, ok := l.dotenv[key]
	return v, ok && v != ""
}

func (l lookup) str(key string, dst *string) {
	if v, ok := l.get(key); ok {
		*dst = v
	}
}

func (l lookup) apply(s *Settings) error {
	l.str("HTTP_ADDR", &s.HTTPAddr)
	l.str("DATABASE_URL", &s.DatabaseURL)
	l.str("LOG_LEVEL", &s.LogLevel)
	l.str("LOG_FORMAT", &s.LogFormat)

	l.str("LLM_PROVIDER", &s.LLM.Provider)
	l.str("OLLAMA_BASE", &s.LLM.OllamaBase)
	l.str("OLLAMA_MODEL", &s.LLM.OllamaModel)
	l.str("LMSTUDIO_BASE", &s.LLM.LMStudioBase)
	l.str("LMSTUDIO_MODEL", &s.LLM.LMStudioModel)
	l.str("OPENAI_API_KEY", &s.LLM.OpenAIAPIKey)
	l.str("OPENAI_BASE", &s.LLM.OpenAIBase)
	l.str("OPENAI_MODEL", &s.LLM.OpenAIModel)
	l.str("GEMINI_API_KEY", &s.LLM.GeminiAPIKey)
	l.str("GEMINI_MODEL", &s.LLM.GeminiModel)

	if v, ok := l.get("SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SEED %q: %w", v, err)
		}
		s.Seed = seed
	}
	if v, ok := l.get("HORIZON"); ok {
		horizon, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HORIZON %q: %w", v, err)
		}
		s.Horizon = horizon
	}
	if v, ok := l.get("LLM_TIMEOUT_SECONDS"); ok {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LLM_TIMEOUT_SECONDS %q: %w", v, err)
		}
		s.LLM.Timeout = time.Duration(secs) * time.Second
	}

	weights := map[string]*float64{
		"WEIGHT_COST":      &s.Weights.Cost,
		"WEIGHT_SERVICE":   &s.Weights.Service,
		"WEIGHT_DIVERSITY": &s.Weights.Diversity,
	}
	for key, dst := range weights {
		if v, ok := l.get(key); ok {
			w, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = w
		}
	}
	return nil
}
