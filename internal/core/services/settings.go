package services

import (
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedBatchSize = "embedding.batch_size"
	keyEmbedRPS       = "embedding.requests_per_second"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMTemperature = "llm.temperature"
	keyLLMMaxTokens   = "llm.max_tokens"
	keyIndexBackend   = "index.backend"
	keyIndexPath      = "index.path"
	keyIndexDSN       = "index.dsn"
	keyChunkSize      = "chunking.size"
	keyChunkOverlap   = "chunking.overlap"
	keyTopK           = "retrieval.top_k"
	keyServerAddr     = "server.addr"
	keyMaxUploadMB    = "server.max_upload_mb"
	keyPromptsDir     = "prompts.dir"
)

// SettingsService resolves configuration from a ConfigStore over the defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Load resolves the configuration and validates it.
func (s *SettingsService) Load() (domain.Config, error) {
	cfg := domain.DefaultConfig()
	if s.configStore == nil {
		return cfg, cfg.Validate()
	}

	// Changing the provider without naming a model selects that provider's default model.
	if p := s.getProvider(keyEmbedProvider, cfg.Embedding.Provider); p != cfg.Embedding.Provider {
		cfg.Embedding.Provider = p
		cfg.Embedding.Model = domain.DefaultEmbeddingModels()[p]
	}
	cfg.Embedding.Model = s.getString(keyEmbedModel, cfg.Embedding.Model)
	cfg.Embedding.BaseURL = s.getString(keyEmbedBaseURL, cfg.Embedding.BaseURL)
	cfg.Embedding.APIKey = s.getString(keyEmbedAPIKey, cfg.Embedding.APIKey)
	cfg.Embedding.BatchSize = s.getInt(keyEmbedBatchSize, cfg.Embedding.BatchSize)
	cfg.Embedding.RequestsPerSecond = s.getFloat(keyEmbedRPS, cfg.Embedding.RequestsPerSecond)

	if p := s.getProvider(keyLLMProvider, cfg.LLM.Provider); p != cfg.LLM.Provider {
		cfg.LLM.Provider = p
		cfg.LLM.Model = domain.DefaultLLMModels()[p]
	}
	cfg.LLM.Model = s.getString(keyLLMModel, cfg.LLM.Model)
	cfg.LLM.BaseURL = s.getString(keyLLMBaseURL, cfg.LLM.BaseURL)
	cfg.LLM.APIKey = s.getString(keyLLMAPIKey, cfg.LLM.APIKey)
	cfg.LLM.Temperature = s.getFloat(keyLLMTemperature, cfg.LLM.Temperature)
	cfg.LLM.MaxTokens = s.getInt(keyLLMMaxTokens, cfg.LLM.MaxTokens)

	cfg.Index.Backend = domain.IndexBackend(s.getString(keyIndexBackend, string(cfg.Index.Backend)))
	cfg.Index.Path = s.getString(keyIndexPath, cfg.Index.Path)
	cfg.Index.DSN = s.getString(keyIndexDSN, cfg.Index.DSN)

	cfg.Chunking.Size = s.getInt(keyChunkSize, cfg.Chunking.Size)
	cfg.Chunking.Overlap = s.getInt(keyChunkOverlap, cfg.Chunking.Overlap)
	cfg.Retrieval.TopK = s.getInt(keyTopK, cfg.Retrieval.TopK)

	cfg.Server.Addr = s.getString(keyServerAddr, cfg.Server.Addr)
	cfg.Server.MaxUploadMB = s.getInt(keyMaxUploadMB, cfg.Server.MaxUploadMB)
	cfg.Prompts.Dir = s.getString(keyPromptsDir, cfg.Prompts.Dir)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ValidateEmbeddingConfig validates the embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig(cfg domain.Config) error {
	if s.aiValidator == nil {
		return nil
	}
	if err := s.aiValidator.ValidateEmbedding(&cfg.Embedding); err != nil {
		return fmt.Errorf("embedding provider %s: %w", cfg.Embedding.Provider, err)
	}
	return nil
}

// ValidateLLMConfig validates the LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig(cfg domain.Config) error {
	if s.aiValidator == nil {
		return nil
	}
	if err := s.aiValidator.ValidateLLM(&cfg.LLM); err != nil {
		return fmt.Errorf("llm provider %s: %w", cfg.LLM.Provider, err)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// getProvider keeps unknown values so that Validate can report them.
func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return domain.AIProvider(val)
}
