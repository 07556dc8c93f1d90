package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ragqa/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive terminal chat",
	Long: `Open a terminal chat session over the indexed documents.

Example:
  ragqa chat`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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

	answerer, err := buildAnswerer(cfg, pipeline)
	if err != nil {
		return err
	}

	program := tea.NewProgram(tui.New(answerer, cfg.VectorDB.TopK), tea.WithAltScreen())
	_, err = program.Run()
	return err
}
