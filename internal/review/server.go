package review

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/codescout/internal/index"
)

// Server manages the review-side MCP server lifecycle.
type Server struct {
	manager *index.Manager
	logger  *slog.Logger
	mcp     *server.MCPServer
}

// NewServer creates an MCP server exposing the code index to a review
// session. It fails when the index is missing or its schema is invalid:
// per the tool contract, search_code_index must not be exposed over a
// store the caller cannot trust.
func NewServer(manager *index.Manager, diffs []CodeDiff, version string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if !manager.IndexExists() {
		return nil, fmt.Errorf("code index does not exist; run build first")
	}
	if !manager.ValidateSchema() {
		return nil, fmt.Errorf("code index schema is invalid; run rebuild")
	}

	mcpServer := server.NewMCPServer(
		"codescout",
		version,
		server.WithToolCapabilities(true),
	)
	AddSearchCodeIndexTool(mcpServer, manager, diffs)

	return &Server{
		manager: manager,
		logger:  logger,
		mcp:     mcpServer,
	}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
