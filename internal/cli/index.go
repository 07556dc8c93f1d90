package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ragqa/internal/adapter/collector"
)

var (
	indexRebuild bool
	indexNoSave  bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from collected data",
	Long: `Chunk and embed every persisted collection batch and add it to the
vector index, then save the index under the configured path.

Examples:
  ragqa index             # Add raw data to the existing index
  ragqa index --rebuild   # Clear the index first`,
	RunE: runIndexCmd,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "clear the index before ingesting")
	indexCmd.Flags().BoolVar(&indexNoSave, "no-save", false, "keep the index in memory only")
}

func runIndexCmd(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	docs, err := collector.LoadBatches(cfg.Storage.RawDataDir)
	if err != nil {
		return fmt.Errorf("failed to load raw data: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no collected data in %s; run 'ragqa collect' first", cfg.Storage.RawDataDir)
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	pipeline, err := buildPipeline(cfg, embedder)
	if err != nil {
		return err
	}

	if !indexRebuild {
		if err := loadIndexIfPresent(pipeline, cfg.Storage.IndexPath); err != nil {
			return fmt.Errorf("failed to load existing index: %w", err)
		}
	}

	fmt.Printf("Indexing %d documents...\n", len(docs))

	stats, err := pipeline.ProcessDocuments(docs, !indexNoSave, cfg.Storage.IndexPath)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("\nIndexing complete:\n")
	fmt.Printf("  Documents: %d\n", stats.DocumentCount)
	fmt.Printf("  Chunks:    %d\n", stats.ChunkCount)
	fmt.Printf("  Dimension: %d\n", stats.EmbeddingDimension)
	fmt.Printf("  Duration:  %.1fs\n", stats.DurationSeconds)
	if stats.IndexPath != "" {
		fmt.Printf("  Saved to:  %s\n", stats.IndexPath)
	}
	return nil
}
