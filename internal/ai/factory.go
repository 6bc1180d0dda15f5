package ai

import (
	"fmt"
	"strings"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/ai/openai"
	"github.com/Ronnakrit11/nextai-ytsummary/internal/config"
	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

// NewProvider constructs the appropriate AI provider based on config.
// Called once at server startup. Ollama and vLLM are reached through their
// OpenAI-compatible /v1 endpoints.
func NewProvider(cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider(openai.Options{
			Name:    "openai",
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		}), nil
	case "ollama":
		return openai.NewProvider(openai.Options{
			Name:    "ollama",
			APIKey:  "ollama",
			BaseURL: compatBaseURL(cfg.Ollama.BaseURL),
			Model:   cfg.Ollama.Model,
		}), nil
	case "vllm":
		return openai.NewProvider(openai.Options{
			Name:    "vllm",
			BaseURL: compatBaseURL(cfg.VLLM.BaseURL),
			Model:   cfg.VLLM.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of openai, ollama, vllm", cfg.Provider)
	}
}

// compatBaseURL appends the /v1 prefix that OpenAI-compatible servers expose.
func compatBaseURL(base string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, "/v1") {
		return base
	}
	return base + "/v1"
}
