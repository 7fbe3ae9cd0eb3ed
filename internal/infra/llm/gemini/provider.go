// Package gemini adapts the Google Gemini generateContent API to advice generation.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yanqian/wearcast/internal/domain/weather"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
	defaultTimeout = 30 * time.Second
)

// Config describes the Gemini backend.
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

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Provider calls generateContent once per Generate.
type Provider struct {
	cfg  Config
	http *resty.Client
}

// NewProvider builds a provider; an empty API key leaves it unconfigured.
func NewProvider(cfg Config) *Provider {
	if cfg.Name == "" {
		cfg.Name = "gemini"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json")
	return &Provider{cfg: cfg, http: httpClient}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Generate(ctx context.Context, _ weather.Snapshot, prompt string) (string, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return "", nil
	}
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      p.cfg.Temperature,
			MaxOutputTokens:  p.cfg.MaxTokens,
			ResponseMIMEType: "application/json",
		},
	}
	if p.cfg.SystemPrompt != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: p.cfg.SystemPrompt}}}
	}

	var out generateResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", p.cfg.APIKey).
		SetPathParam("model", p.cfg.Model).
		SetBody(body).
		SetResult(&out).
		Post("/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if !resp.IsSuccess() {
		raw := resp.Body()
		if len(raw) > 4<<10 {
			raw = raw[:4<<10]
		}
		return "", fmt.Errorf("gemini request failed: status=%d body=%s", resp.StatusCode(), string(raw))
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini response has no candidates")
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini response text is empty")
	}
	return text, nil
}
