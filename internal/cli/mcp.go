package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codescout/internal/review"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for symbol search",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered
coding assistants search the symbol index.

The MCP server:
- Opens the index store under .codescout/
- Exposes the search_code_index tool
- Communicates via stdio (standard MCP transport)

Example:
  codescout mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	manager, err := newManager(root)
	if err != nil {
		return err
	}
	defer manager.Close()

	srv, err := review.NewServer(manager, nil, Version, slog.Default())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Codescout MCP Server %s\n", Version)
	return srv.Serve(context.Background())
}
