package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		assert.NotPanics(t, result.Close)
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantModel   string
		wantDims    int
		errContains string
	}{
		{
			name:        "nil settings",
			errContains: "embedding settings are required",
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
			wantModel: "nomic-embed-text",
			wantDims:  768,
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
			wantModel: "text-embedding-3-small",
			wantDims:  1536,
		},
		{
			name: "openai without key",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
			},
			errContains: "API key is required",
		},
		{
			name: "anthropic provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			errContains: "anthropic does not support embeddings",
		},
		{
			name: "unknown provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: "unknown",
			},
			errContains: "unsupported embedding provider: unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)

			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			defer svc.Close()
			assert.Equal(t, tt.wantModel, svc.ModelName())
			assert.Equal(t, tt.wantDims, svc.Dimensions())
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.LLMSettings
		wantModel   string
		errContains string
	}{
		{
			name:        "nil settings",
			errContains: "llm settings are required",
		},
		{
			name: "ollama provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
			},
			wantModel: "llama3.2",
		},
		{
			name: "openai provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-4o-mini",
			},
			wantModel: "gpt-4o-mini",
		},
		{
			name: "anthropic provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			wantModel: "claude-3-5-sonnet-latest",
		},
		{
			name: "anthropic without key",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
			},
			errContains: "API key is required",
		},
		{
			name: "unknown provider returns error",
			settings: &domain.LLMSettings{
				Provider: "mystery",
			},
			errContains: "unsupported LLM provider: mystery",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)

			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			defer svc.Close()
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestCreateVectorIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend", func(t *testing.T) {
		index, err := CreateVectorIndex(ctx, domain.IndexSettings{Backend: domain.IndexBackendMemory}, 3)
		require.NoError(t, err)
		defer index.Close()
		assert.IsType(t, &memory.VectorIndex{}, index)
	})

	t.Run("sqlite backend", func(t *testing.T) {
		dir := t.TempDir()
		index, err := CreateVectorIndex(ctx, domain.IndexSettings{Backend: domain.IndexBackendSQLite, Path: dir}, 3)
		require.NoError(t, err)
		defer index.Close()

		store, ok := index.(*sqlite.Store)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(dir, "docqa.db"), store.Path())
	})

	t.Run("postgres backend rejects invalid dimensions", func(t *testing.T) {
		_, err := CreateVectorIndex(ctx, domain.IndexSettings{
			Backend: domain.IndexBackendPostgres,
			DSN:     "postgres://localhost/docqa",
		}, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := CreateVectorIndex(ctx, domain.IndexSettings{Backend: "redis"}, 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported index backend")
	})
}

func TestInitialise(t *testing.T) {
	t.Run("builds every provider", func(t *testing.T) {
		cfg := domain.DefaultConfig()
		cfg.Embedding.APIKey = "test-key"
		cfg.LLM.APIKey = "test-key"
		cfg.Index = domain.IndexSettings{Backend: domain.IndexBackendMemory}

		result, err := Initialise(context.Background(), cfg)

		require.NoError(t, err)
		defer result.Close()
		assert.Equal(t, "text-embedding-ada-002", result.EmbeddingService.ModelName())
		assert.Equal(t, "gpt-3.5-turbo", result.LLMService.ModelName())
		assert.NotNil(t, result.VectorIndex)
	})

	t.Run("embedding failure", func(t *testing.T) {
		cfg := domain.DefaultConfig()
		cfg.Index = domain.IndexSettings{Backend: domain.IndexBackendMemory}

		_, err := Initialise(context.Background(), cfg)

		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("llm failure", func(t *testing.T) {
		cfg := domain.DefaultConfig()
		cfg.Embedding.APIKey = "test-key"
		cfg.Index = domain.IndexSettings{Backend: domain.IndexBackendMemory}

		_, err := Initialise(context.Background(), cfg)

		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("index failure", func(t *testing.T) {
		cfg := domain.DefaultConfig()
		cfg.Embedding.APIKey = "test-key"
		cfg.LLM.APIKey = "test-key"
		cfg.Index = domain.IndexSettings{Backend: "redis"}

		_, err := Initialise(context.Background(), cfg)

		assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
	})
}

func TestCreateAndValidateLLMService(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models", r.URL.Path)
			_, _ = w.Write([]byte(`{"data":[]}`))
		}))
		defer server.Close()

		svc, err := CreateAndValidateLLMService(&domain.LLMSettings{
			Provider: domain.AIProviderOpenAI,
			APIKey:   "test-key",
			BaseURL:  server.URL,
		})

		require.NoError(t, err)
		svc.Close()
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := CreateAndValidateLLMService(&domain.LLMSettings{
			Provider: domain.AIProviderOpenAI,
			APIKey:   "bad-key",
			BaseURL:  server.URL,
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.Contains(t, err.Error(), "service unreachable")
	})
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  server.URL,
	})

	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", svc.ModelName())
	svc.Close()

	_, err = CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestValidateLLMConfig(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		}))
		defer server.Close()

		err := ValidateLLMConfig(&domain.LLMSettings{
			Provider: domain.AIProviderOpenAI,
			APIKey:   "test-key",
			BaseURL:  server.URL,
		})

		assert.NoError(t, err)
	})

	t.Run("unreachable names the settings section", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		err := ValidateLLMConfig(&domain.LLMSettings{
			Provider: domain.AIProviderOpenAI,
			APIKey:   "bad-key",
			BaseURL:  server.URL,
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.Contains(t, err.Error(), "Check the [llm] settings")
	})
}

func TestValidateEmbeddingConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := ValidateEmbeddingConfig(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
		BaseURL:  server.URL,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "Check the [embedding] settings")
}

func TestValidateConfig_Unconfigured(t *testing.T) {
	assert.NoError(t, ValidateEmbeddingConfig(nil))
	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}))
	assert.NoError(t, ValidateLLMConfig(nil))
	assert.NoError(t, ValidateLLMConfig(&domain.LLMSettings{Provider: domain.AIProviderAnthropic}))
}
