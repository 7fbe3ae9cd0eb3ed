package advice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/wearcast/internal/domain/weather"
)

type stubSource struct {
	template string
	err      error
	loads    int
}

func (s *stubSource) Load(context.Context) (string, error) {
	s.loads++
	return s.template, s.err
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestPromptBuilderFillsPlaceholders(t *testing.T) {
	source := &stubSource{template: "{{city}}/{{ country }}: {{temperature}} {{condition}} aqi={{aqi}} ({{aqi_label}}) {{unknown}} | {{day_parts}}"}
	builder := NewPromptBuilder(source, discard())
	snap := weather.Snapshot{
		City: "Dubai", Country: "AE", Temperature: 30.5, Condition: "Clear", AQI: 2,
		DayParts: []weather.DayPart{{Label: "Morning", Temperature: 28, Condition: "Clear"}},
	}

	out := builder.Build(context.Background(), snap)
	require.Equal(t, "Dubai/AE: 30.5 Clear aqi=2 (fair) [missing:unknown] | Morning 28.0°C Clear", out)

	builder.Build(context.Background(), snap)
	require.Equal(t, 1, source.loads)
}

func TestPromptBuilderFallsBackToDefault(t *testing.T) {
	builder := NewPromptBuilder(&stubSource{err: errors.New("bucket missing")}, discard())
	out := builder.Build(context.Background(), weather.Snapshot{City: "Lima", Country: "PE"})
	require.Contains(t, out, "Lima, PE")
	require.Contains(t, out, "no forecast available")
	require.NotContains(t, out, "{{")

	builder = NewPromptBuilder(nil, discard())
	require.Contains(t, builder.Build(context.Background(), weather.Snapshot{City: "Rome"}), "Rome")
}
