package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httptransport "ragqa/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the question-answering API. A saved index is loaded at startup
when present.

Example:
  ragqa serve --config ragqa.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	logger := newLogger(cfg)

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	pipeline, err := buildPipeline(cfg, embedder)
	if err != nil {
		return err
	}
	if err := loadIndexIfPresent(pipeline, cfg.Storage.IndexPath); err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	answerer, err := buildAnswerer(cfg, pipeline)
	if err != nil {
		return err
	}
	manager := buildManager(cmd.Context(), cfg, logger)

	server := httptransport.NewServer(httptransport.RouterDeps{
		Answerer:  answerer,
		Pipeline:  pipeline,
		Manager:   manager,
		RawDir:    cfg.Storage.RawDataDir,
		IndexPath: cfg.Storage.IndexPath,
		GinMode:   cfg.Server.GinMode,
	}, cfg.Server.Host, cfg.Server.Port, cfg.Server.TimeoutSeconds)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", server.Addr,
			"indexed", pipeline.IndexStats().TotalDocuments)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
