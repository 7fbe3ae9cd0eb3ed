// Package llm assembles the ordered list of advice providers from configuration.
package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/wearcast/internal/domain/advice"
	"github.com/yanqian/wearcast/internal/infra/llm/anthropic"
	"github.com/yanqian/wearcast/internal/infra/llm/gemini"
	"github.com/yanqian/wearcast/internal/infra/llm/openai"
)

// Supported provider kinds.
const (
	KindOpenAI    = "openai"
	KindAnthropic = "anthropic"
	KindGemini    = "gemini"
)

// ProviderConfig is one entry of the priority-ordered provider list.
type ProviderConfig struct {
	Name        string
	Kind        string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// KnownKind reports whether kind names an adapter this package can build.
func KnownKind(kind string) bool {
	switch strings.ToLower(kind) {
	case KindOpenAI, KindAnthropic, KindGemini:
		return true
	}
	return false
}

// NewProviders builds providers in the order given. Entries without credentials
// are still returned; they report themselves as not configured at call time.
func NewProviders(cfgs []ProviderConfig, systemPrompt string) ([]advice.Provider, error) {
	out := make([]advice.Provider, 0, len(cfgs))
	for _, cfg := range cfgs {
		name := cfg.Name
		if name == "" {
			name = cfg.Kind
		}
		switch strings.ToLower(cfg.Kind) {
		case KindOpenAI:
			p, err := openai.NewProvider(openai.Config{
				Name:         name,
				APIKey:       cfg.APIKey,
				BaseURL:      cfg.BaseURL,
				Model:        cfg.Model,
				Temperature:  float32(cfg.Temperature),
				MaxTokens:    cfg.MaxTokens,
				Timeout:      cfg.Timeout,
				SystemPrompt: systemPrompt,
			})
			if err != nil {
				return nil, fmt.Errorf("provider %s: %w", name, err)
			}
			out = append(out, p)
		case KindAnthropic:
			out = append(out, anthropic.NewProvider(anthropic.Config{
				Name:         name,
				APIKey:       cfg.APIKey,
				BaseURL:      cfg.BaseURL,
				Model:        cfg.Model,
				Temperature:  cfg.Temperature,
				MaxTokens:    cfg.MaxTokens,
				Timeout:      cfg.Timeout,
				SystemPrompt: systemPrompt,
			}))
		case KindGemini:
			out = append(out, gemini.NewProvider(gemini.Config{
				Name:         name,
				APIKey:       cfg.APIKey,
				BaseURL:      cfg.BaseURL,
				Model:        cfg.Model,
				Temperature:  cfg.Temperature,
				MaxTokens:    cfg.MaxTokens,
				Timeout:      cfg.Timeout,
				SystemPrompt: systemPrompt,
			}))
		default:
			return nil, fmt.Errorf("provider %s: unknown kind %q", name, cfg.Kind)
		}
	}
	return out, nil
}
