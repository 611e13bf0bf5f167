package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"unicode"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockExtractor implements driven.PageExtractor for testing.
type mockExtractor struct {
	pages []domain.Page
	err   error
	read  bool
}

func (m *mockExtractor) Extract(_ context.Context, r io.Reader) ([]domain.Page, error) {
	if r != nil {
		_, _ = io.ReadAll(r)
		m.read = true
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.pages, nil
}

// letterEmbedder implements driven.EmbeddingService with a deterministic
// letter-frequency vector so similar texts land close together.
type letterEmbedder struct {
	embedErr   error
	batchErr   error
	shortBatch bool
	batchCalls int
	queries    []string
}

func letterVector(text string) []float32 {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	// Keep the vector non-zero for texts without letters.
	if !strings.ContainsFunc(text, unicode.IsLetter) {
		vec[0] = 1
	}
	return vec
}

func (m *letterEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.queries = append(m.queries, text)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return letterVector(text), nil
}

func (m *letterEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, letterVector(text))
	}
	if m.shortBatch && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *letterEmbedder) Dimensions() int              { return 26 }
func (m *letterEmbedder) ModelName() string            { return "letters" }
func (m *letterEmbedder) Ping(_ context.Context) error { return nil }
func (m *letterEmbedder) Close() error                 { return nil }

// mockLLM implements driven.LLMService and records the prompt it receives.
type mockLLM struct {
	answer  string
	err     error
	calls   int
	prompts []string
	opts    []driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	docs      []domain.IndexedDocument
	searchErr error
	addErr    error
	resetErr  error
	docsErr   error
	added     []domain.Passage
	lastK     int
	resets    int
}

func (m *mockVectorIndex) Add(_ context.Context, passages []domain.Passage) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, passages...)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Reset(_ context.Context) error {
	m.resets++
	return m.resetErr
}

func (m *mockVectorIndex) Documents(_ context.Context) ([]domain.IndexedDocument, error) {
	if m.docsErr != nil {
		return nil, m.docsErr
	}
	return m.docs, nil
}

func (m *mockVectorIndex) Close() error { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error
}

func (m *mockAIValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return m.llmErr
}

func hit(doc string, page int, text string, similarity float64) driven.VectorHit {
	return driven.VectorHit{
		Passage: domain.Passage{
			ID:             doc + text,
			SourceDocument: doc,
			Page:           page,
			Text:           text,
			Embedding:      letterVector(text),
		},
		Similarity: similarity,
	}
}

var _ driven.ConfigStore = (*mockConfigStore)(nil)

// mockConfigStore is a map-backed driven.ConfigStore.
type mockConfigStore struct {
	values map[string]any
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Set(key string, value any) { m.values[key] = value }

func (m *mockConfigStore) Get(key string) (any, bool) {
	val, ok := m.values[key]
	return val, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func (m *mockConfigStore) GetBool(key string) bool {
	b, _ := m.values[key].(bool)
	return b
}

func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return ":memory:" }
