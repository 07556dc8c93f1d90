package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ragqa/config"
	"ragqa/internal/adapter/cache"
	"ragqa/internal/adapter/chunker"
	"ragqa/internal/adapter/collector"
	"ragqa/internal/adapter/embedding"
	"ragqa/internal/adapter/index"
	"ragqa/internal/adapter/llm"
	"ragqa/internal/port"
	"ragqa/internal/usecase"
)

// Wiring helpers shared by the commands. Env vars are resolved here so
// the adapters stay free of ambient state.

func buildEmbedder(cfg *config.Config) (port.Embedder, error) {
	if cfg.Embedding.Provider == "hash" {
		return embedding.NewHashEmbedder(cfg.Embedding.Dimension), nil
	}
	return embedding.NewOpenAIEmbedder(embedding.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		APIKey:    os.Getenv(cfg.Embedding.APIKeyEnv),
		BaseURL:   cfg.Embedding.BaseURL,
		Dimension: cfg.Embedding.Dimension,
		BatchSize: cfg.Embedding.BatchSize,
	})
}

func buildLLM(cfg *config.Config) (port.LLM, error) {
	if cfg.LLM.Provider == "scripted" {
		return llm.NewScriptedLLM(nil), nil
	}
	return llm.NewOpenAILLM(llm.Config{
		Provider:     cfg.LLM.Provider,
		Model:        cfg.LLM.Model,
		APIKey:       os.Getenv(cfg.LLM.APIKeyEnv),
		BaseURL:      cfg.LLM.BaseURL,
		MaxTokens:    cfg.LLM.MaxTokens,
		Temperature:  cfg.LLM.Temperature,
		TopP:         cfg.LLM.TopP,
		SystemPrompt: cfg.RAG.SystemPrompt,
	})
}

func buildPipeline(cfg *config.Config, embedder port.Embedder) (*usecase.Ingest, error) {
	dimension := cfg.VectorDB.Dimension
	if d := embedder.Dimension(); d > 0 {
		dimension = d
	}

	idx, err := index.NewFlatIndex(index.Config{
		IndexType:           cfg.VectorDB.IndexType,
		Dimension:           dimension,
		TopK:                cfg.VectorDB.TopK,
		SimilarityThreshold: cfg.VectorDB.SimilarityThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	chk := chunker.NewSentenceChunker(
		cfg.Processing.ChunkSize,
		cfg.Processing.ChunkOverlap,
		cfg.Processing.MinChunkSize,
		cfg.Processing.MaxChunkSize,
	)

	return usecase.NewIngest(chk, embedder, idx), nil
}

// loadIndexIfPresent restores a saved index; a missing file is fine.
func loadIndexIfPresent(pipeline *usecase.Ingest, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path + ".json"); os.IsNotExist(err) {
		return nil
	}
	return pipeline.LoadIndex(path)
}

func buildAnswerer(cfg *config.Config, pipeline *usecase.Ingest) (*usecase.Answerer, error) {
	model, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	answerer := usecase.NewAnswerer(pipeline, model, cfg.RAG.MaxContextLength)
	if cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
		answerer.SetCache(cache.NewAnswerCache(cfg.Cache.MaxEntries, ttl))
	}
	return answerer, nil
}

func buildManager(ctx context.Context, cfg *config.Config, logger *slog.Logger) *collector.Manager {
	var collectors []port.Collector

	if len(cfg.Sources.Documentation.Sites) > 0 || len(cfg.Sources.Documentation.LocalGlobs) > 0 {
		collectors = append(collectors, collector.NewDocs(cfg.Sources.Documentation))
	}
	if len(cfg.Sources.Wikipedia.Topics) > 0 {
		collectors = append(collectors, collector.NewWikipedia(cfg.Sources.Wikipedia))
	}
	if len(cfg.Sources.News.Feeds) > 0 {
		collectors = append(collectors, collector.NewNews(cfg.Sources.News))
	}
	if len(cfg.Sources.GitHub.Topics) > 0 {
		ghCfg := cfg.Sources.GitHub
		ghCfg.Token = os.Getenv(cfg.Sources.GitHubTokenEnv)
		collectors = append(collectors, collector.NewGitHub(ctx, ghCfg))
	}

	return collector.NewManager(cfg.Storage.RawDataDir, logger, collectors...)
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
