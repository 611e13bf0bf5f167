package domain

import "fmt"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// SupportsEmbeddings returns true if this provider can generate embeddings.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// BatchSize is the maximum number of texts sent per embedding request.
	BatchSize int

	// RequestsPerSecond throttles embedding requests. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature controls randomness of generated answers.
	Temperature float64

	// MaxTokens caps the answer length. Zero uses the provider default.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IndexBackend selects the vector index implementation.
type IndexBackend string

// Available vector index backends.
const (
	// IndexBackendSQLite persists passages in a local SQLite database.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendMemory keeps passages in process memory only.
	IndexBackendMemory IndexBackend = "memory"

	// IndexBackendPostgres stores passages in PostgreSQL with pgvector.
	IndexBackendPostgres IndexBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendMemory, IndexBackendPostgres:
		return true
	default:
		return false
	}
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	// Backend selects the index implementation.
	Backend IndexBackend

	// Path is the data directory for the sqlite backend.
	Path string

	// DSN is the connection string for the postgres backend.
	DSN string
}

// ChunkingSettings controls how page text is split into passages.
type ChunkingSettings struct {
	// Size is the maximum passage length in characters.
	Size int

	// Overlap is the number of characters shared by consecutive passages.
	Overlap int
}

// RetrievalSettings controls question answering.
type RetrievalSettings struct {
	// TopK is the number of passages retrieved per question.
	TopK int
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address (e.g. ":8000").
	Addr string

	// MaxUploadMB caps the size of an ingest request body in megabytes.
	MaxUploadMB int
}

// PromptSettings locates user-editable prompt templates.
type PromptSettings struct {
	// Dir is the directory holding prompt files. Empty disables overrides.
	Dir string
}

// Config holds every setting the service needs. It is loaded once at
// startup and passed by value to constructors.
type Config struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Index     IndexSettings
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	Server    ServerSettings
	Prompts   PromptSettings
}

// DefaultConfig returns settings with sensible defaults.
// API keys are left empty and must come from the environment.
func DefaultConfig() Config {
	return Config{
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOpenAI,
			Model:     DefaultEmbeddingModels()[AIProviderOpenAI],
			BatchSize: 100,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       DefaultLLMModels()[AIProviderOpenAI],
			Temperature: 0.5,
		},
		Index: IndexSettings{
			Backend: IndexBackendSQLite,
			Path:    "./docqa_data",
		},
		Chunking: ChunkingSettings{
			Size:    1000,
			Overlap: 200,
		},
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
		Server: ServerSettings{
			Addr:        ":8000",
			MaxUploadMB: 32,
		},
	}
}

// Validate checks the configuration and returns a *ConfigurationError
// describing the first problem found.
func (c Config) Validate() error {
	if !c.Embedding.Provider.SupportsEmbeddings() {
		return &ConfigurationError{
			Setting: "embedding.provider",
			Reason:  fmt.Sprintf("%q cannot generate embeddings, use ollama or openai", c.Embedding.Provider),
		}
	}
	if c.Embedding.Provider.RequiresAPIKey() && c.Embedding.APIKey == "" {
		return &ConfigurationError{
			Setting: "embedding.api_key",
			Reason:  apiKeyReason(c.Embedding.Provider),
		}
	}
	if !c.LLM.Provider.IsValid() {
		return &ConfigurationError{
			Setting: "llm.provider",
			Reason:  fmt.Sprintf("unsupported provider %q", c.LLM.Provider),
		}
	}
	if c.LLM.Provider.RequiresAPIKey() && c.LLM.APIKey == "" {
		return &ConfigurationError{
			Setting: "llm.api_key",
			Reason:  apiKeyReason(c.LLM.Provider),
		}
	}
	if c.Chunking.Size <= 0 {
		return &ConfigurationError{Setting: "chunking.size", Reason: "must be positive"}
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return &ConfigurationError{Setting: "chunking.overlap", Reason: "must be between 0 and chunking.size"}
	}
	if c.Retrieval.TopK < 1 {
		return &ConfigurationError{Setting: "retrieval.top_k", Reason: "must be at least 1"}
	}
	switch c.Index.Backend {
	case IndexBackendPostgres:
		if c.Index.DSN == "" {
			return &ConfigurationError{Setting: "index.dsn", Reason: "required for the postgres backend"}
		}
	case IndexBackendSQLite, IndexBackendMemory:
	default:
		return &ConfigurationError{
			Setting: "index.backend",
			Reason:  fmt.Sprintf("unsupported backend %q", c.Index.Backend),
		}
	}
	return nil
}

func apiKeyReason(p AIProvider) string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY is not set"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY is not set"
	default:
		return "API key is not set"
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-ada-002",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-3.5-turbo",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
