package llm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProvidersKeepsOrder(t *testing.T) {
	providers, err := NewProviders([]ProviderConfig{
		{Name: "groq", Kind: "openai", APIKey: "k"},
		{Kind: "anthropic"},
		{Name: "backup", Kind: "Gemini"},
	}, "json only")
	require.NoError(t, err)
	require.Len(t, providers, 3)
	require.Equal(t, "groq", providers[0].Name())
	require.Equal(t, "anthropic", providers[1].Name())
	require.Equal(t, "backup", providers[2].Name())
}

func TestNewProvidersRejectsUnknownKind(t *testing.T) {
	_, err := NewProviders([]ProviderConfig{{Name: "x", Kind: "cohere"}}, "")
	require.ErrorContains(t, err, "unknown kind")
	require.False(t, KnownKind("cohere"))
	require.True(t, KnownKind("OpenAI"))
}
