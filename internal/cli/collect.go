package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var collectNoSave bool

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect documents from configured sources",
	Long: `Run every collector enabled in the config and persist the results as
JSON batches under the raw data directory.

Examples:
  ragqa collect
  ragqa collect --no-save   # Dry run, nothing written`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().BoolVar(&collectNoSave, "no-save", false, "collect without persisting batches")
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	manager := buildManager(cmd.Context(), cfg, newLogger(cfg))

	names := manager.Collectors()
	if len(names) == 0 {
		return fmt.Errorf("no collectors configured; add sources to %s", cfgFile)
	}

	bar := progressbar.NewOptions(len(names),
		progressbar.OptionSetDescription("Collecting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
	manager.SetProgress(func(done, total int, name string) {
		bar.Describe(fmt.Sprintf("Collecting %s", name))
		bar.Set(done)
	})

	report := manager.CollectAll(cmd.Context(), !collectNoSave)
	bar.Finish()

	fmt.Printf("\nCollection complete:\n")
	fmt.Printf("  Total items:  %d\n", report.TotalItems)
	fmt.Printf("  Successful:   %d\n", report.SuccessfulCollectors)
	fmt.Printf("  Failed:       %d\n", report.FailedCollectors)
	fmt.Printf("  Duration:     %.1fs\n", report.DurationSeconds)

	for _, result := range report.Results {
		if result.Status == "success" {
			fmt.Printf("  %-15s %d items", result.Collector, result.ItemCount)
			if result.FilePath != "" {
				fmt.Printf("  -> %s", result.FilePath)
			}
			fmt.Println()
		} else {
			fmt.Printf("  %-15s FAILED: %s\n", result.Collector, result.Error)
		}
	}

	if report.SuccessfulCollectors == 0 {
		return fmt.Errorf("every collector failed")
	}
	return nil
}
