package anthropic

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

func fakeAnthropic(t *testing.T, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		if r.Header.Get("x-api-key") != "sk-ant-test" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
			return
		}
		switch r.URL.Path {
		case "/v1/messages":
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
			_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Twenty "},{"type":"text","text":"five days."}],"stop_reason":"end_turn"}`))
		case "/v1/models":
			_, _ = w.Write([]byte(`{"data":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestNewLLMService(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		_, err := NewLLMService(Config{})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("defaults", func(t *testing.T) {
		svc, err := NewLLMService(Config{APIKey: "sk-ant-test"})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, svc.ModelName())
	})
}

func TestGenerate(t *testing.T) {
	var captured map[string]any
	server := fakeAnthropic(t, &captured)
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "sk-ant-test", BaseURL: server.URL})
	require.NoError(t, err)

	answer, err := svc.Generate(context.Background(), "How many days?", driven.GenerateOptions{Temperature: 0.5})

	require.NoError(t, err)
	assert.Equal(t, "Twenty five days.", answer)
	assert.InDelta(t, DefaultMaxTokens, captured["max_tokens"], 1e-9)
	assert.InDelta(t, 0.5, captured["temperature"], 1e-9)
	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"role": "user", "content": "How many days?"}, messages[0])
}

func TestGenerate_CustomMaxTokens(t *testing.T) {
	var captured map[string]any
	server := fakeAnthropic(t, &captured)
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "sk-ant-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "q", driven.GenerateOptions{MaxTokens: 300, StopWords: []string{"END"}})

	require.NoError(t, err)
	assert.InDelta(t, 300, captured["max_tokens"], 1e-9)
	assert.Equal(t, []any{"END"}, captured["stop_sequences"])
}

func TestGenerate_AuthError(t *testing.T) {
	var captured map[string]any
	server := fakeAnthropic(t, &captured)
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "sk-ant-wrong", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "q", driven.GenerateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "invalid x-api-key")
}

func TestPing(t *testing.T) {
	var captured map[string]any
	server := fakeAnthropic(t, &captured)
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "sk-ant-test", BaseURL: server.URL})
	require.NoError(t, err)
	assert.NoError(t, svc.Ping(context.Background()))
}
