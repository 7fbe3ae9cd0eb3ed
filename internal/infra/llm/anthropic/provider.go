// Package anthropic adapts the Anthropic Messages API to advice generation.
package anthropic

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/yanqian/wearcast/internal/domain/weather"
)

const (
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 512
	defaultTimeout   = 30 * time.Second
)

// Config describes the Anthropic backend.
type Config struct {
	Name         string
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
	SystemPrompt string
}

// Provider calls Claude once per Generate. SDK retries are disabled.
type Provider struct {
	cfg    Config
	client *anthropic.Client
}

// NewProvider builds a provider; an empty API key leaves it unconfigured.
func NewProvider(cfg Config) *Provider {
	if cfg.Name == "" {
		cfg.Name = "anthropic"
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	p := &Provider{cfg: cfg}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return p
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	p.client = &client
	return p
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Generate(ctx context.Context, _ weather.Snapshot, prompt string) (string, error) {
	if p.client == nil {
		return "", nil
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.cfg.Model),
		MaxTokens:   int64(p.cfg.MaxTokens),
		Temperature: anthropic.Float(p.cfg.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if p.cfg.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: p.cfg.SystemPrompt}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	for _, block := range resp.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", errors.New("anthropic response has no text content")
}
