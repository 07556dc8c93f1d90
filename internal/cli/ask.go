package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragqa/internal/port"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieve the most relevant chunks for the question and generate an
answer grounded in them.

Examples:
  ragqa ask "what is a goroutine?"
  ragqa ask "how does garbage collection work?" --top-k 10 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	answer := answerer.AnswerQuestion(args[0], askTopK, port.GenerateOptions{})

	if askJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	fmt.Println(answer.Answer)
	if answer.Failed() {
		fmt.Printf("\nError: %s\n", answer.Error)
		return nil
	}
	if len(answer.Sources) > 0 {
		fmt.Printf("\nSources (confidence %.2f):\n", answer.Confidence)
		for _, src := range answer.Sources {
			fmt.Printf("  [%.2f] %s - %s\n", src.Similarity, src.Source, src.Title)
		}
	}
	return nil
}
