package advice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/yanqian/wearcast/internal/domain/weather"
	"github.com/yanqian/wearcast/pkg/cache"
	apperrors "github.com/yanqian/wearcast/pkg/errors"
	"github.com/yanqian/wearcast/pkg/metrics"
)

// Service produces outfit advice for a weather snapshot. It never fails: when
// no provider can answer it degrades to a static message.
type Service interface {
	Advise(ctx context.Context, snap weather.Snapshot) Result
}

type service struct {
	cfg       Config
	providers []Provider
	prompts   *PromptBuilder
	tokens    TokenCounter
	loader    *cache.Loader
	logger    *slog.Logger
}

// cachedAdvice is the stored form; Advice is kept as the canonical JSON text.
type cachedAdvice struct {
	Advice   json.RawMessage    `json:"advice"`
	Provider string             `json:"provider"`
	Usage    metrics.TokenUsage `json:"usage"`
}

// NewService wires up the advice domain. providers are tried in slice order.
func NewService(cfg Config, providers []Provider, prompts *PromptBuilder, tokens TokenCounter, store cache.Store, logger *slog.Logger) Service {
	logger = logger.With("component", "advice.service")
	return &service{
		cfg:       cfg.withDefaults(),
		providers: providers,
		prompts:   prompts,
		tokens:    tokens,
		loader:    cache.NewLoader(store, logger),
		logger:    logger,
	}
}

func (s *service) Advise(ctx context.Context, snap weather.Snapshot) Result {
	key := CacheKey(snap)
	payload, hit, err := s.loader.GetOrLoad(ctx, key, func(ctx context.Context) ([]byte, cache.Policy, error) {
		return s.generate(ctx, snap)
	})
	if err != nil {
		// only a cancelled caller gets here; answer without touching the cache
		s.logger.Warn("advice lookup aborted", "key", key, "error", err)
		return Result{Advice: fallbackAdvice(snap.City), Provider: FallbackProvider}
	}

	stored, out, err := decodeCached(payload)
	if err != nil {
		s.logger.Error("cached advice unreadable", "key", key, "error", err)
		return Result{Advice: fallbackAdvice(snap.City), Provider: FallbackProvider}
	}
	return Result{Advice: out, Provider: stored.Provider, Cached: hit, Usage: stored.Usage}
}

func (s *service) generate(ctx context.Context, snap weather.Snapshot) ([]byte, cache.Policy, error) {
	prompt := s.prompts.Build(ctx, snap)
	usage := s.countPrompt(prompt)

	for _, provider := range s.providers {
		raw, err := provider.Generate(ctx, snap, prompt)
		if err != nil {
			s.logger.Warn("advice provider failed", "provider", provider.Name(), "error", err)
			continue
		}
		if strings.TrimSpace(raw) == "" {
			s.logger.Debug("advice provider not configured", "provider", provider.Name())
			continue
		}
		parsed, err := parseAdvice(raw)
		if err != nil {
			s.logger.Warn("advice provider returned malformed output",
				"provider", provider.Name(),
				"code", apperrors.CodeOf(err),
				"error", err,
			)
			continue
		}
		s.logger.Info("advice generated",
			"provider", provider.Name(),
			"city", snap.City,
			"promptTokens", usage.PromptTokens,
		)
		encoded, err := encodeCached(parsed, provider.Name(), usage)
		if err != nil {
			return nil, cache.Policy{}, err
		}
		return encoded, cache.Policy{TTL: s.cfg.CacheTTL, Sliding: s.cfg.CacheSliding}, nil
	}

	s.logger.Warn("all advice providers failed, serving fallback", "city", snap.City, "providers", len(s.providers))
	encoded, err := encodeCached(fallbackAdvice(snap.City), FallbackProvider, usage)
	if err != nil {
		return nil, cache.Policy{}, err
	}
	return encoded, cache.Policy{TTL: s.cfg.FallbackTTL}, nil
}

func (s *service) countPrompt(prompt string) metrics.TokenUsage {
	if s.tokens == nil {
		return metrics.TokenUsage{}
	}
	n, estimated := s.tokens.Count(prompt)
	return metrics.PromptOnly(n, estimated)
}

func encodeCached(a Advice, provider string, usage metrics.TokenUsage) ([]byte, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cachedAdvice{Advice: body, Provider: provider, Usage: usage})
}

func decodeCached(payload []byte) (cachedAdvice, Advice, error) {
	var stored cachedAdvice
	if err := json.Unmarshal(payload, &stored); err != nil {
		return cachedAdvice{}, Advice{}, err
	}
	var out Advice
	if err := json.Unmarshal(stored.Advice, &out); err != nil {
		return cachedAdvice{}, Advice{}, err
	}
	return stored, out, nil
}

func fallbackAdvice(city string) Advice {
	if strings.TrimSpace(city) == "" {
		city = "your area"
	}
	return Advice{
		Summary: fmt.Sprintf("Personalized advice for %s is temporarily unavailable.", city),
		Outfit:  fmt.Sprintf("Dress in comfortable layers for %s and adjust as the day changes.", city),
		Safety:  "Check local forecasts before heading out and stay hydrated.",
	}
}

// CacheKey groups snapshots by city, condition and temperature rounded to 5 degrees.
func CacheKey(snap weather.Snapshot) string {
	bucket := int(math.Round(snap.Temperature/5) * 5)
	return fmt.Sprintf("advice:%s:%s:%d",
		strings.ToLower(strings.TrimSpace(snap.City)),
		strings.ToLower(strings.TrimSpace(snap.Condition)),
		bucket,
	)
}
