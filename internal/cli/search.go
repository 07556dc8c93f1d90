package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Retrieve chunks without generating an answer",
	Long: `Run vector retrieval only and print the matching chunks with their
similarity scores.

Examples:
  ragqa search "goroutine scheduling"
  ragqa search "memory model" -k 10 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

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
	if pipeline.IndexStats().TotalDocuments == 0 {
		return fmt.Errorf("index is empty; run 'ragqa index' first")
	}

	results, err := pipeline.Search(args[0], searchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results above the similarity threshold.")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%d. [%.3f] %s - %s\n", r.Rank, r.Similarity, r.Metadata.Source, r.Metadata.Title)
		text := r.Text
		if len(text) > 200 {
			text = text[:200] + "..."
		}
		fmt.Printf("   %s\n\n", text)
	}
	return nil
}
