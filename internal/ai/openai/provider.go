// Package openai implements models.AIProvider over any OpenAI-compatible
// chat completion API (OpenAI itself, Ollama, vLLM).
package openai

import (
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/ai/prompt"
	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

const defaultMaxTokens = 2048

// Options configures a Provider.
type Options struct {
	Name      string // reported by Name(), e.g. "openai" or "ollama"
	APIKey    string
	BaseURL   string // empty means the public OpenAI endpoint
	Model     string
	MaxTokens int
}

// Provider implements models.AIProvider using the go-openai client.
type Provider struct {
	client    *goopenai.Client
	name      string
	model     string
	maxTokens int
}

func NewProvider(opts Options) *Provider {
	clientCfg := goopenai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		clientCfg.BaseURL = opts.BaseURL
	}

	name := opts.Name
	if name == "" {
		name = "openai"
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Provider{
		client:    goopenai.NewClientWithConfig(clientCfg),
		name:      name,
		model:     opts.Model,
		maxTokens: maxTokens,
	}
}

func (p *Provider) Name() string { return p.name }

// Model returns the configured model name.
func (p *Provider) Model() string { return p.model }

func (p *Provider) Analyze(ctx context.Context, transcript string) (models.Analysis, error) {
	req := goopenai.ChatCompletionRequest{
		Model: p.model,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(transcript)},
		},
	}
	// Reasoning models reject max_tokens.
	if isReasoningModel(p.model) {
		req.MaxCompletionTokens = p.maxTokens
	} else {
		req.MaxTokens = p.maxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return models.Analysis{}, fmt.Errorf("%s chat completion: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return models.Analysis{}, fmt.Errorf("%s chat completion returned no choices", p.name)
	}

	analysis, err := prompt.ParseAnalysis(resp.Choices[0].Message.Content)
	if err != nil {
		return models.Analysis{}, fmt.Errorf("%s reply: %w", p.name, err)
	}
	return analysis, nil
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

var _ models.AIProvider = (*Provider)(nil)
