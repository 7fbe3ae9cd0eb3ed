package advice

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/yanqian/wearcast/internal/domain/weather"
)

// DefaultTemplate is used whenever no external template can be loaded.
const DefaultTemplate = `You are a friendly stylist. Suggest what to wear today in {{city}}, {{country}}.

Current conditions: {{temperature}}°C, {{condition}} ({{description}}), humidity {{humidity}}%, wind {{wind}} m/s.
Air quality index: {{aqi}} ({{aqi_label}}). Expected range today: {{min_temp}}°C to {{max_temp}}°C.
Later today: {{day_parts}}

Reply with a single JSON object with exactly these string fields:
"summary" (one sentence about the day), "outfit" (what to wear), "safety" (health or safety tips).`

// SystemInstruction is sent to every provider alongside the rendered prompt.
const SystemInstruction = `You write concise clothing advice. Respond only with a JSON object containing the string fields "summary", "outfit" and "safety". Do not nest objects and do not add any other text.`

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_]+)\s*\}\}`)

// PromptBuilder fills the template with snapshot values. The template is loaded
// on first use and reused afterwards.
type PromptBuilder struct {
	source   TemplateSource
	logger   *slog.Logger
	once     sync.Once
	template string
}

// NewPromptBuilder builds a prompt builder. A nil source means DefaultTemplate.
func NewPromptBuilder(source TemplateSource, logger *slog.Logger) *PromptBuilder {
	return &PromptBuilder{source: source, logger: logger.With("component", "advice.prompt")}
}

// Build renders the prompt for snap.
func (b *PromptBuilder) Build(ctx context.Context, snap weather.Snapshot) string {
	tmpl := b.load(ctx)
	values := promptValues(snap)
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := strings.ToLower(placeholderPattern.FindStringSubmatch(match)[1])
		if value, ok := values[name]; ok {
			return value
		}
		b.logger.Warn("unknown prompt placeholder", "name", name)
		return "[missing:" + name + "]"
	})
}

func (b *PromptBuilder) load(ctx context.Context) string {
	b.once.Do(func() {
		b.template = DefaultTemplate
		if b.source == nil {
			return
		}
		tmpl, err := b.source.Load(ctx)
		if err != nil {
			b.logger.Warn("prompt template unavailable, using built-in", "error", err)
			return
		}
		if strings.TrimSpace(tmpl) == "" {
			b.logger.Warn("prompt template empty, using built-in")
			return
		}
		b.template = tmpl
	})
	return b.template
}

func promptValues(snap weather.Snapshot) map[string]string {
	return map[string]string{
		"city":        snap.City,
		"country":     snap.Country,
		"temperature": formatNumber(snap.Temperature),
		"condition":   snap.Condition,
		"description": snap.Description,
		"humidity":    strconv.Itoa(snap.Humidity),
		"wind":        formatNumber(snap.WindSpeed),
		"aqi":         strconv.Itoa(snap.AQI),
		"aqi_label":   weather.AQILabel(snap.AQI),
		"min_temp":    formatNumber(snap.MinTemp),
		"max_temp":    formatNumber(snap.MaxTemp),
		"day_parts":   formatDayParts(snap.DayParts),
	}
}

func formatDayParts(parts []weather.DayPart) string {
	if len(parts) == 0 {
		return "no forecast available"
	}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, fmt.Sprintf("%s %s°C %s", part.Label, formatNumber(part.Temperature), part.Condition))
	}
	return strings.Join(out, "; ")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
