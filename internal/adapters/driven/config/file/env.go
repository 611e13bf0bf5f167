package file

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure EnvStore implements the interface.
var _ driven.ConfigStore = (*EnvStore)(nil)

// envBindings maps configuration keys to the environment variables that
// override them. The first variable that is set wins.
//
//nolint:gosec // G101: These are variable names, not credentials.
var envBindings = map[string][]string{
	"embedding.provider":            {"DOCQA_EMBEDDING_PROVIDER"},
	"embedding.model":               {"DOCQA_EMBEDDING_MODEL"},
	"embedding.base_url":            {"DOCQA_EMBEDDING_BASE_URL"},
	"embedding.batch_size":          {"DOCQA_EMBEDDING_BATCH_SIZE"},
	"embedding.requests_per_second": {"DOCQA_EMBEDDING_REQUESTS_PER_SECOND"},
	"llm.provider":                  {"DOCQA_LLM_PROVIDER"},
	"llm.model":                     {"DOCQA_LLM_MODEL"},
	"llm.base_url":                  {"DOCQA_LLM_BASE_URL"},
	"llm.temperature":               {"DOCQA_LLM_TEMPERATURE"},
	"llm.max_tokens":                {"DOCQA_LLM_MAX_TOKENS"},
	"index.backend":                 {"DOCQA_INDEX_BACKEND"},
	"index.path":                    {"DOCQA_INDEX_PATH"},
	"index.dsn":                     {"DOCQA_INDEX_DSN", "DATABASE_URL"},
	"chunking.size":                 {"DOCQA_CHUNK_SIZE"},
	"chunking.overlap":              {"DOCQA_CHUNK_OVERLAP"},
	"retrieval.top_k":               {"DOCQA_TOP_K"},
	"server.addr":                   {"DOCQA_ADDR"},
	"server.max_upload_mb":          {"DOCQA_MAX_UPLOAD_MB"},
	"prompts.dir":                   {"DOCQA_PROMPTS_DIR"},
}

// providerKeyVars names the API key variable of each cloud provider.
var providerKeyVars = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// EnvStore overlays environment variables on a file-based ConfigStore.
// API keys follow the selected provider: llm.api_key reads ANTHROPIC_API_KEY
// when llm.provider is anthropic and OPENAI_API_KEY when it is openai.
type EnvStore struct {
	base driven.ConfigStore
}

// NewEnvStore creates an environment overlay on base.
func NewEnvStore(base driven.ConfigStore) *EnvStore {
	return &EnvStore{base: base}
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables that are already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// lookup returns the environment override for key.
func (s *EnvStore) lookup(key string) (string, bool) {
	vars := envBindings[key]
	switch key {
	case "embedding.api_key":
		vars = s.apiKeyVars("DOCQA_EMBEDDING_API_KEY", s.provider("embedding.provider", domain.DefaultConfig().Embedding.Provider))
	case "llm.api_key":
		vars = s.apiKeyVars("DOCQA_LLM_API_KEY", s.provider("llm.provider", domain.DefaultConfig().LLM.Provider))
	}

	for _, name := range vars {
		if val, ok := os.LookupEnv(name); ok && strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val), true
		}
	}
	return "", false
}

func (s *EnvStore) apiKeyVars(explicit string, provider domain.AIProvider) []string {
	vars := []string{explicit}
	if name, ok := providerKeyVars[provider]; ok {
		vars = append(vars, name)
	}
	return vars
}

func (s *EnvStore) provider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	if val := s.GetString(key); val != "" {
		return domain.AIProvider(val)
	}
	return defaultVal
}

// Get retrieves a configuration value by key, environment first.
func (s *EnvStore) Get(key string) (any, bool) {
	if val, ok := s.lookup(key); ok {
		return val, true
	}
	return s.base.Get(key)
}

// GetString retrieves a string configuration value.
func (s *EnvStore) GetString(key string) string {
	if val, ok := s.lookup(key); ok {
		return val
	}
	return s.base.GetString(key)
}

// GetInt retrieves an integer configuration value.
// Unparseable environment values read as 0.
func (s *EnvStore) GetInt(key string) int {
	if val, ok := s.lookup(key); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0
		}
		return n
	}
	return s.base.GetInt(key)
}

// GetFloat retrieves a floating point configuration value.
func (s *EnvStore) GetFloat(key string) float64 {
	if val, ok := s.lookup(key); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return s.base.GetFloat(key)
}

// GetBool retrieves a boolean configuration value.
func (s *EnvStore) GetBool(key string) bool {
	if val, ok := s.lookup(key); ok {
		b, err := strconv.ParseBool(val)
		return err == nil && b
	}
	return s.base.GetBool(key)
}

// Load reloads the underlying file.
func (s *EnvStore) Load() error {
	return s.base.Load()
}

// Path returns the underlying configuration file path.
func (s *EnvStore) Path() string {
	return s.base.Path()
}
