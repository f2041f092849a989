package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codescout/internal/index"
)

var (
	quietFlag    bool
	watchFlag    bool
	repoPathFlag string
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Build the symbol index for a repository",
	Long: `Build scans the repository, extracts symbols from every recognized
source file, and writes them to the index store.

The builder:
  - Walks the tree, honoring .gitignore and configured ignore globs
  - Parses source files with tree-sitter (Go, Python, TypeScript, etc.)
  - Extracts functions, classes, and methods with signatures and docstrings
  - Stores symbols in a SQLite full-text index under .codescout/

Examples:
  # Index the current directory
  codescout build

  # Index a specific directory
  codescout build /path/to/project

  # Index with progress bars disabled
  codescout build --quiet

  # Keep watching for changes after the initial build
  codescout build --watch
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	buildCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and update the index incrementally")
	buildCmd.Flags().StringVar(&repoPathFlag, "repo-path", "", "Repository root to index (same as the positional path)")
}

func runBuild(cmd *cobra.Command, args []string) error {
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
	result := manager.Build([]string{root}, progress)
	for _, buildErr := range result.Errors {
		fmt.Fprintln(os.Stderr, "warning:", buildErr)
	}
	if !result.Success && result.SymbolsIndexed == 0 {
		return fmt.Errorf("build failed: %s", result.Message)
	}
	progress.Finish(result.SymbolsIndexed, result.FilesProcessed)
	if quietFlag {
		fmt.Println(result.Message)
	}

	if watchFlag {
		return watchRoot(manager, root)
	}
	return nil
}

// watchRoot blocks watching the project root until interrupted.
func watchRoot(manager *index.Manager, root string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	watcher, err := index.NewWatcher(manager, root)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	watcher.Start(ctx)
	defer watcher.Stop()

	if !quietFlag {
		fmt.Println("Watching for changes (Ctrl+C to stop)...")
	}
	select {
	case <-sigChan:
		slog.Info("shutting down watcher")
	case <-ctx.Done():
	}
	return nil
}
