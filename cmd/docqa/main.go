// Command docqa answers questions about PDF documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/chunker"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/extractors/pdf"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := file.LoadDotEnv(""); err != nil {
		logger.Warn("ignoring .env: %v", err)
	}

	cli.SetVersion(version)
	cli.SetInitialiser(buildServices)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Fprintln(os.Stderr, "configuration error:", cfgErr)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// buildServices resolves the configuration at configPath and wires the
// application services on top of the configured providers.
func buildServices(ctx context.Context, configPath string) (*cli.Services, error) {
	path, err := file.ResolvePath(configPath)
	if err != nil {
		return nil, err
	}
	fileStore, err := file.NewConfigStore(path)
	if err != nil {
		return nil, err
	}

	settings := services.NewSettingsService(file.NewEnvStore(fileStore), ai.NewConfigValidator())
	cfg, err := settings.Load()
	if err != nil {
		return nil, err
	}
	logger.Debug("config: %s, embedding %s/%s, llm %s/%s, index %s",
		path, cfg.Embedding.Provider, cfg.Embedding.Model, cfg.LLM.Provider, cfg.LLM.Model, cfg.Index.Backend)

	providers, err := ai.Initialise(ctx, cfg)
	if err != nil {
		return nil, err
	}

	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.Size),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)
	answer := services.NewAnswerService(providers.EmbeddingService, providers.VectorIndex, providers.LLMService,
		services.AnswerConfig{
			TopK:        cfg.Retrieval.TopK,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		})

	if cfg.Prompts.Dir != "" {
		prompts, err := file.NewPromptStore(cfg.Prompts.Dir, map[string]string{
			driven.PromptGrounding: services.DefaultGroundingPrompt,
		})
		if err != nil {
			providers.Close()
			return nil, fmt.Errorf("prompts: %w", err)
		}
		answer.SetPromptStore(prompts)
	}

	return &cli.Services{
		Indexing: services.NewIndexingService(pdf.New(), splitter, providers.EmbeddingService, providers.VectorIndex),
		Answer:   answer,
		Catalog:  services.NewCatalogService(providers.VectorIndex),
		Settings: settings,
		Config:   cfg,
		Close: func() error {
			providers.Close()
			return nil
		},
	}, nil
}
