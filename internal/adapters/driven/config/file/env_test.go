package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// clearEnv unsets every variable EnvStore reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	names := []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "DOCQA_EMBEDDING_API_KEY", "DOCQA_LLM_API_KEY"}
	for _, vars := range envBindings {
		names = append(names, vars...)
	}
	for _, name := range names {
		t.Setenv(name, "")
	}
}

func newEnvStore(t *testing.T, content string) *EnvStore {
	t.Helper()
	base, err := NewConfigStore(writeConfig(t, content))
	require.NoError(t, err)
	return NewEnvStore(base)
}

func TestEnvStore_ImplementsInterface(t *testing.T) {
	var _ driven.ConfigStore = (*EnvStore)(nil)
}

func TestEnvStore_FallsThroughToFile(t *testing.T) {
	clearEnv(t)
	store := newEnvStore(t, "[llm]\nmodel = \"gpt-4o-mini\"\ntemperature = 0.2\n[retrieval]\ntop_k = 3\n")

	assert.Equal(t, "gpt-4o-mini", store.GetString("llm.model"))
	assert.InDelta(t, 0.2, store.GetFloat("llm.temperature"), 1e-9)
	assert.Equal(t, 3, store.GetInt("retrieval.top_k"))
	_, ok := store.Get("llm.provider")
	assert.False(t, ok)
}

func TestEnvStore_EnvironmentWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCQA_LLM_MODEL", "gpt-4o")
	t.Setenv("DOCQA_TOP_K", "8")
	t.Setenv("DOCQA_LLM_TEMPERATURE", "0")
	t.Setenv("DOCQA_CHUNK_SIZE", " 500 ")
	store := newEnvStore(t, "[llm]\nmodel = \"gpt-4o-mini\"\ntemperature = 0.2\n[retrieval]\ntop_k = 3\n")

	assert.Equal(t, "gpt-4o", store.GetString("llm.model"))
	assert.Equal(t, 8, store.GetInt("retrieval.top_k"))
	assert.Equal(t, 500, store.GetInt("chunking.size"))

	val, ok := store.Get("llm.temperature")
	assert.True(t, ok)
	assert.Equal(t, "0", val)
	assert.InDelta(t, 0.0, store.GetFloat("llm.temperature"), 1e-9)
}

func TestEnvStore_BlankVariablesAreIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCQA_LLM_MODEL", "   ")
	store := newEnvStore(t, "[llm]\nmodel = \"gpt-4o-mini\"\n")

	assert.Equal(t, "gpt-4o-mini", store.GetString("llm.model"))
}

func TestEnvStore_InvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCQA_TOP_K", "many")
	t.Setenv("DOCQA_LLM_TEMPERATURE", "warm")
	store := newEnvStore(t, "")

	assert.Equal(t, 0, store.GetInt("retrieval.top_k"))
	assert.InDelta(t, 0.0, store.GetFloat("llm.temperature"), 1e-9)
}

func TestEnvStore_APIKeys(t *testing.T) {
	t.Run("openai key serves both by default", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-openai")
		store := newEnvStore(t, "")

		assert.Equal(t, "sk-openai", store.GetString("embedding.api_key"))
		assert.Equal(t, "sk-openai", store.GetString("llm.api_key"))
	})

	t.Run("anthropic llm reads anthropic key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-openai")
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
		t.Setenv("DOCQA_LLM_PROVIDER", "anthropic")
		store := newEnvStore(t, "")

		assert.Equal(t, "sk-ant", store.GetString("llm.api_key"))
		assert.Equal(t, "sk-openai", store.GetString("embedding.api_key"))
	})

	t.Run("provider from file selects key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
		store := newEnvStore(t, "[llm]\nprovider = \"anthropic\"\n")

		assert.Equal(t, "sk-ant", store.GetString("llm.api_key"))
	})

	t.Run("ollama has no key variable", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-openai")
		store := newEnvStore(t, "[embedding]\nprovider = \"ollama\"\n")

		assert.Empty(t, store.GetString("embedding.api_key"))
	})

	t.Run("explicit docqa variable wins", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-openai")
		t.Setenv("DOCQA_LLM_API_KEY", "sk-gateway")
		store := newEnvStore(t, "")

		assert.Equal(t, "sk-gateway", store.GetString("llm.api_key"))
	})

	t.Run("file key is used when environment is empty", func(t *testing.T) {
		clearEnv(t)
		store := newEnvStore(t, "[llm]\napi_key = \"sk-file\"\n")

		assert.Equal(t, "sk-file", store.GetString("llm.api_key"))
	})
}

func TestEnvStore_DelegatesPathAndLoad(t *testing.T) {
	clearEnv(t)
	base, err := NewConfigStore(writeConfig(t, ""))
	require.NoError(t, err)
	store := NewEnvStore(base)

	assert.Equal(t, base.Path(), store.Path())
	assert.NoError(t, store.Load())
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("sets unset variables only", func(t *testing.T) {
		t.Setenv("DOCQA_LLM_MODEL", "from-shell")
		os.Unsetenv("DOCQA_TEST_DOTENV")
		t.Cleanup(func() { os.Unsetenv("DOCQA_TEST_DOTENV") })

		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("DOCQA_TEST_DOTENV=loaded\nDOCQA_LLM_MODEL=from-file\n"), 0600))

		require.NoError(t, LoadDotEnv(path))

		assert.Equal(t, "loaded", os.Getenv("DOCQA_TEST_DOTENV"))
		assert.Equal(t, "from-shell", os.Getenv("DOCQA_LLM_MODEL"))
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("DOCQA-BAD=value\n"), 0600))

		assert.Error(t, LoadDotEnv(path))
	})
}
