package cli

import (
	"os"

	"github.com/spf13/cobra"

	"ragqa/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ragqa",
	Short: "Retrieval-augmented question answering over collected documents",
	Long: `ragqa collects documents from configured sources, indexes them in a
local vector store, and answers questions grounded in the retrieved context.

Example usage:
  ragqa collect                    # Run all configured collectors
  ragqa index                      # Build the vector index from raw data
  ragqa ask "what is a goroutine?" # Answer one question
  ragqa serve                      # Start the HTTP API
  ragqa chat                       # Interactive terminal chat`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		return err
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "ragqa.yaml", "config file path")
}

func GetConfig() *config.Config {
	return cfg
}
