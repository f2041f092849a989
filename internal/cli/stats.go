package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var statsJSONFlag bool

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Long: `Stats reports what the index currently holds: total symbols and files,
breakdowns by symbol type and language, and when it was last updated.

Example:
  codescout stats`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSONFlag, "json", false, "Emit statistics as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	manager, err := newManager(root)
	if err != nil {
		return err
	}
	defer manager.Close()

	if !manager.IndexExists() {
		return fmt.Errorf("code index does not exist; run 'codescout build' first")
	}

	stats, err := manager.GetIndexStats()
	if err != nil {
		return fmt.Errorf("failed to read index statistics: %w", err)
	}

	if statsJSONFlag {
		return printJSON(stats)
	}

	fmt.Println("Code index statistics:")
	fmt.Printf("  Symbols: %s\n", formatNumber(stats.TotalSymbols))
	fmt.Printf("  Files:   %s\n", formatNumber(stats.TotalFiles))
	if stats.LastUpdated != "" {
		fmt.Printf("  Updated: %s\n", stats.LastUpdated)
	}
	printBreakdown("By type", stats.SymbolsByType)
	printBreakdown("By language", stats.SymbolsByLanguage)
	return nil
}

func printBreakdown(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Printf("  %s:\n", title)
	for _, key := range keys {
		fmt.Printf("    %-12s %s\n", key, formatNumber(counts[key]))
	}
}
