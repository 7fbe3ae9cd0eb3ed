package advice

import (
	"context"

	"github.com/yanqian/wearcast/internal/domain/weather"
	"github.com/yanqian/wearcast/pkg/metrics"
)

// FallbackProvider names the synthesized advice used when every provider fails.
const FallbackProvider = "fallback"

// Advice is the fixed wire schema returned to callers.
type Advice struct {
	Summary string `json:"summary"`
	Outfit  string `json:"outfit"`
	Safety  string `json:"safety"`
}

// Result is what the aggregator hands back for one snapshot.
type Result struct {
	Advice   Advice
	Provider string
	Cached   bool
	Usage    metrics.TokenUsage
}

// Provider is one text-completion backend. Generate returns ("", nil) when the
// provider is not configured, which callers treat as a silent skip.
type Provider interface {
	Name() string
	Generate(ctx context.Context, snap weather.Snapshot, prompt string) (string, error)
}

// TokenCounter sizes prompts. estimated is true when the count is a heuristic.
type TokenCounter interface {
	Count(text string) (tokens int, estimated bool)
}

// TemplateSource supplies the raw prompt template.
type TemplateSource interface {
	Load(ctx context.Context) (string, error)
}
