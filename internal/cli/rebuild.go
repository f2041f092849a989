package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rebuildCmd represents the rebuild command
var rebuildCmd = &cobra.Command{
	Use:   "rebuild [path]",
	Short: "Rebuild the symbol index from scratch",
	Long: `Rebuild clears the index store and re-indexes the repository.

Use it when the store schema changed, the index drifted from the tree,
or search results look stale.

Example:
  codescout rebuild`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
	rebuildCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	rebuildCmd.Flags().StringVar(&repoPathFlag, "repo-path", "", "Repository root to index (same as the positional path)")
}

func runRebuild(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && repoPathFlag != "" {
		args = []string{repoPathFlag}
	}
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	manager, err := newManager(root)
	if err != nil {
		return err
	}
	defer manager.Close()

	progress := NewCLIProgressReporter(quietFlag)
	result := manager.Rebuild([]string{root}, progress)
	for _, buildErr := range result.Errors {
		fmt.Fprintln(os.Stderr, "warning:", buildErr)
	}
	if !result.Success && result.SymbolsIndexed == 0 {
		return fmt.Errorf("rebuild failed: %s", result.Message)
	}
	progress.Finish(result.SymbolsIndexed, result.FilesProcessed)
	if quietFlag {
		fmt.Println(result.Message)
	}
	return nil
}
