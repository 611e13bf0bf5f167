package cli

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Print the configuration after defaults, the config file, .env and
environment variables have been applied. API keys are masked.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// configView is the TOML rendering of the resolved configuration.
type configView struct {
	Embedding struct {
		Provider          string  `toml:"provider"`
		Model             string  `toml:"model"`
		BaseURL           string  `toml:"base_url,omitempty"`
		APIKey            string  `toml:"api_key"`
		BatchSize         int     `toml:"batch_size"`
		RequestsPerSecond float64 `toml:"requests_per_second"`
	} `toml:"embedding"`
	LLM struct {
		Provider    string  `toml:"provider"`
		Model       string  `toml:"model"`
		BaseURL     string  `toml:"base_url,omitempty"`
		APIKey      string  `toml:"api_key"`
		Temperature float64 `toml:"temperature"`
		MaxTokens   int     `toml:"max_tokens"`
	} `toml:"llm"`
	Index struct {
		Backend string `toml:"backend"`
		Path    string `toml:"path"`
	} `toml:"index"`
	Chunking struct {
		Size    int `toml:"size"`
		Overlap int `toml:"overlap"`
	} `toml:"chunking"`
	Retrieval struct {
		TopK int `toml:"top_k"`
	} `toml:"retrieval"`
	Server struct {
		Addr        string `toml:"addr"`
		MaxUploadMB int    `toml:"max_upload_mb"`
	} `toml:"server"`
	Prompts struct {
		Dir string `toml:"dir,omitempty"`
	} `toml:"prompts"`
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg := appConfig

	var v configView
	v.Embedding.Provider = cfg.Embedding.Provider.String()
	v.Embedding.Model = cfg.Embedding.Model
	v.Embedding.BaseURL = cfg.Embedding.BaseURL
	v.Embedding.APIKey = maskKey(cfg.Embedding.APIKey)
	v.Embedding.BatchSize = cfg.Embedding.BatchSize
	v.Embedding.RequestsPerSecond = cfg.Embedding.RequestsPerSecond
	v.LLM.Provider = cfg.LLM.Provider.String()
	v.LLM.Model = cfg.LLM.Model
	v.LLM.BaseURL = cfg.LLM.BaseURL
	v.LLM.APIKey = maskKey(cfg.LLM.APIKey)
	v.LLM.Temperature = cfg.LLM.Temperature
	v.LLM.MaxTokens = cfg.LLM.MaxTokens
	v.Index.Backend = string(cfg.Index.Backend)
	v.Index.Path = displayPath(cfg)
	v.Chunking.Size = cfg.Chunking.Size
	v.Chunking.Overlap = cfg.Chunking.Overlap
	v.Retrieval.TopK = cfg.Retrieval.TopK
	v.Server.Addr = cfg.Server.Addr
	v.Server.MaxUploadMB = cfg.Server.MaxUploadMB
	v.Prompts.Dir = cfg.Prompts.Dir

	data, err := toml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	cmd.Print(string(data))
	return nil
}

// maskKey hides all but the last four characters of an API key.
func maskKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 8:
		return "****"
	default:
		return "****" + key[len(key)-4:]
	}
}

// displayPath returns path, or a placeholder when the setting is unused.
func displayPath(cfg domain.Config) string {
	switch cfg.Index.Backend {
	case domain.IndexBackendPostgres:
		return "(dsn configured)"
	case domain.IndexBackendMemory:
		return "(in memory)"
	default:
		return cfg.Index.Path
	}
}
