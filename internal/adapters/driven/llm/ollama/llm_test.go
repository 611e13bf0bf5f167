package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

type capturedGenerate struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  *bool          `json:"stream"`
	Options map[string]any `json:"options"`
}

func fakeOllama(t *testing.T, captured *capturedGenerate) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generate":
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
			if captured.Model == "missing" {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"model 'missing' not found"}`))
				return
			}
			_, _ = w.Write([]byte(`{"model":"llama3.2","response":"The answer is 42.","done":true}` + "\n"))
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{BaseURL: "http://localhost:11434"})

	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.NoError(t, svc.Close())
}

func TestGenerate(t *testing.T) {
	var captured capturedGenerate
	server := fakeOllama(t, &captured)
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{BaseURL: server.URL})
	require.NoError(t, err)

	answer, err := svc.Generate(context.Background(), "What is the answer?", driven.GenerateOptions{
		MaxTokens:   128,
		Temperature: 0.5,
	})

	require.NoError(t, err)
	assert.Equal(t, "The answer is 42.", answer)
	assert.Equal(t, "llama3.2", captured.Model)
	assert.Equal(t, "What is the answer?", captured.Prompt)
	require.NotNil(t, captured.Stream)
	assert.False(t, *captured.Stream)
	assert.InDelta(t, 0.5, captured.Options["temperature"], 1e-9)
	assert.InDelta(t, 128, captured.Options["num_predict"], 1e-9)
}

func TestGenerate_ModelNotFound(t *testing.T) {
	var captured capturedGenerate
	server := fakeOllama(t, &captured)
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "missing"})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "hi", driven.GenerateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "not found")
}

func TestGenerateOptions(t *testing.T) {
	t.Run("zero temperature is sent", func(t *testing.T) {
		opts := generateOptions(driven.GenerateOptions{})
		assert.Equal(t, map[string]any{"temperature": 0.0}, opts)
	})

	t.Run("all fields", func(t *testing.T) {
		opts := generateOptions(driven.GenerateOptions{MaxTokens: 10, Temperature: 0.2, StopWords: []string{"\n\n"}})
		assert.Equal(t, 10, opts["num_predict"])
		assert.Equal(t, []string{"\n\n"}, opts["stop"])
	})
}

func TestPing(t *testing.T) {
	var captured capturedGenerate
	server := fakeOllama(t, &captured)

	svc, err := NewLLMService(LLMConfig{BaseURL: server.URL})
	require.NoError(t, err)
	assert.NoError(t, svc.Ping(context.Background()))

	server.Close()
	assert.Error(t, svc.Ping(context.Background()))
}
