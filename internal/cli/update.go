package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	updateRootFlag  string
	updateWatchFlag bool
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update [file]",
	Short: "Update the index entry for a single file",
	Long: `Update re-indexes one file without rebuilding the whole store.

Unchanged files are detected by content hash and skipped. A file that no
longer exists on disk is removed from the index instead. With --watch the
file argument is dropped and the whole project root is watched, applying
updates as files change.

Examples:
  codescout update src/parser.py
  codescout update --root /path/to/project src/parser.py
  codescout update --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updateRootFlag, "root", ".", "Project root the file path is relative to")
	updateCmd.Flags().BoolVarP(&updateWatchFlag, "watch", "w", false, "Watch the project root and update the index on changes")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot([]string{updateRootFlag})
	if err != nil {
		return err
	}

	manager, err := newManager(root)
	if err != nil {
		return err
	}
	defer manager.Close()

	if updateWatchFlag {
		return watchRoot(manager, root)
	}

	if len(args) == 0 {
		return fmt.Errorf("a file argument is required unless --watch is given")
	}
	filePath := args[0]
	target := resolvePath(root, filePath)

	if _, statErr := os.Stat(target); os.IsNotExist(statErr) {
		result := manager.RemoveFile(root, filePath)
		if !result.Success {
			return fmt.Errorf("remove failed: %s", result.Message)
		}
		fmt.Println(result.Message)
		return nil
	}

	result := manager.UpdateFile(root, filePath)
	if !result.Success {
		return fmt.Errorf("update failed: %s", result.Message)
	}
	fmt.Println(result.Message)
	return nil
}
