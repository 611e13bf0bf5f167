package driving

import "github.com/custodia-labs/docqa/internal/core/domain"

// SettingsService resolves the application configuration.
type SettingsService interface {
	// Load resolves the configuration over the defaults and validates it.
	// Returns a *domain.ConfigurationError for invalid settings.
	Load() (domain.Config, error)

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig(cfg domain.Config) error

	// ValidateLLMConfig pings the configured LLM provider.
	ValidateLLMConfig(cfg domain.Config) error
}
