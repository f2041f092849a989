package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codescout/internal/config"
	"github.com/mvp-joe/codescout/internal/index"
)

var (
	verbose    bool
	dbPathFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codescout",
	Short: "Codescout - symbol-level code search for repositories",
	Long: `Codescout builds a searchable index of the symbols in your codebase.

It parses source files with tree-sitter, extracts functions, classes, and
methods, and stores them in a SQLite full-text index under .codescout/.
The index powers fast symbol search from the command line and over MCP.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db-path", "", "index store path (default .codescout/code_index.db)")
}

// newManager loads the project configuration relative to rootDir and builds
// an index manager from it. The --db-path flag overrides the configured
// store location.
func newManager(rootDir string) (*index.Manager, error) {
	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbPath := cfg.Index.DBPath
	if dbPathFlag != "" {
		dbPath = dbPathFlag
	}
	dbPath = resolvePath(rootDir, dbPath)

	return index.NewManager(index.Options{
		DBPath:      dbPath,
		Extensions:  cfg.Index.Extensions,
		IgnoreGlobs: cfg.Index.Ignore,
		Logger:      slog.Default(),
	})
}

// resolveRoot turns an optional positional path argument into an absolute
// project root, defaulting to the working directory.
func resolveRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to access %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

// resolvePath anchors a possibly-relative path at the project root.
func resolvePath(rootDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}
