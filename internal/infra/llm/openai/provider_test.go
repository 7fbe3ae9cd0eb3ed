package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/wearcast/internal/domain/weather"
)

func TestProviderGenerate(t *testing.T) {
	var got ChatCompletionRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" {\"summary\":\"ok\"} "}}]}`))
	}))
	defer server.Close()

	p, err := NewProvider(Config{Name: "groq", APIKey: "secret", BaseURL: server.URL + "/", Model: "llama", Temperature: 0.4, SystemPrompt: "json only"})
	require.NoError(t, err)
	require.Equal(t, "groq", p.Name())

	out, err := p.Generate(context.Background(), weather.Snapshot{}, "what to wear")
	require.NoError(t, err)
	require.Equal(t, `{"summary":"ok"}`, out)
	require.Equal(t, "Bearer secret", auth)
	require.Equal(t, "llama", got.Model)
	require.Len(t, got.Messages, 2)
	require.Equal(t, "system", got.Messages[0].Role)
	require.Equal(t, "what to wear", got.Messages[1].Content)
}

func TestProviderGenerateErrors(t *testing.T) {
	status := http.StatusTooManyRequests
	body := `{"error":"slow down"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	p, err := NewProvider(Config{APIKey: "secret", BaseURL: server.URL})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), weather.Snapshot{}, "prompt")
	require.ErrorContains(t, err, "status=429")

	status, body = http.StatusOK, `{"choices":[]}`
	_, err = p.Generate(context.Background(), weather.Snapshot{}, "prompt")
	require.ErrorContains(t, err, "no choices")
}

func TestProviderWithoutKeyIsAbsent(t *testing.T) {
	p, err := NewProvider(Config{})
	require.NoError(t, err)
	require.Equal(t, "openai", p.Name())
	out, err := p.Generate(context.Background(), weather.Snapshot{}, "prompt")
	require.NoError(t, err)
	require.Empty(t, out)
}
