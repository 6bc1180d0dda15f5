package ai

import (
	"testing"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Ollama(t *testing.T) {
	cfg := config.AIConfig{
		Provider: "ollama",
		Ollama:   config.OllamaConfig{BaseURL: "http://localhost:11434", Model: "llama3"},
	}
	p, err := NewProvider(cfg)
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())
}

func TestNewProvider_VLLM(t *testing.T) {
	cfg := config.AIConfig{
		Provider: "vllm",
		VLLM:     config.VLLMConfig{BaseURL: "http://localhost:8000", Model: "mistral-7b"},
	}
	p, err := NewProvider(cfg)
	require.NoError(t, err)
	assert.Equal(t, "vllm", p.Name())
}

func TestNewProvider_OpenAI(t *testing.T) {
	cfg := config.AIConfig{
		Provider: "openai",
		OpenAI:   config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"},
	}
	p, err := NewProvider(cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider(config.AIConfig{Provider: "anthropic"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown AI provider")
}

func TestCompatBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:11434/v1", compatBaseURL("http://localhost:11434"))
	assert.Equal(t, "http://localhost:11434/v1", compatBaseURL("http://localhost:11434/"))
	assert.Equal(t, "http://vllm:8000/v1", compatBaseURL("http://vllm:8000/v1"))
}
