package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yanqian/wearcast/internal/domain/weather"
)

// Config describes one OpenAI-compatible backend (OpenAI, Groq, OpenRouter, ...).
type Config struct {
	Name         string
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float32
	MaxTokens    int
	Timeout      time.Duration
	SystemPrompt string
}

// Provider adapts a chat completions backend to advice generation.
type Provider struct {
	cfg    Config
	client *Client
}

// NewProvider builds a provider. Without an API key the provider stays
// unconfigured and Generate reports absence.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	p := &Provider{cfg: cfg}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return p, nil
	}
	client, err := NewClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	p.client = client
	return p, nil
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Generate(ctx context.Context, _ weather.Snapshot, prompt string) (string, error) {
	if p.client == nil {
		return "", nil
	}
	messages := make([]Message, 0, 2)
	if p.cfg.SystemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: p.cfg.SystemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})

	resp, err := p.client.CreateChatCompletion(ctx, ChatCompletionRequest{
		Model:       p.cfg.Model,
		Messages:    messages,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("chat completion returned empty content")
	}
	return content, nil
}
