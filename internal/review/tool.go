package review

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/codescout/internal/index"
)

// SymbolSearcher is the slice of the index manager the tool needs.
type SymbolSearcher interface {
	Search(query index.Query) ([]index.Symbol, error)
}

// AddSearchCodeIndexTool registers the search_code_index tool with an MCP
// server. Callers must gate registration on the index being present and
// valid (IndexExists and ValidateSchema); an absent index means the tool is
// not exposed at all.
func AddSearchCodeIndexTool(s *server.MCPServer, searcher SymbolSearcher, diffs []CodeDiff) {
	tool := mcp.NewTool(
		"search_code_index",
		mcp.WithDescription(`Search the project's code symbol index.

Finds functions, classes, and methods by name, signature, docstring, or
file path, ranked by full-text relevance. Use it to look up definitions
related to the files under review.

Examples:
- query "parse config" - symbols mentioning both terms
- query "Loader" with symbol_type "class" - class definitions only
- query "handler" with file_pattern "api/" - matches under api/ paths`),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text search over symbol names, signatures, docstrings, and paths")),
		mcp.WithString("symbol_type",
			mcp.Description("Restrict to one symbol type (function, class, method, ...)")),
		mcp.WithString("file_pattern",
			mcp.Description("Restrict to file paths containing this substring")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 20)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSearchHandler(searcher, diffs))
}

// createSearchHandler creates the handler function for search_code_index.
func createSearchHandler(searcher SymbolSearcher, diffs []CodeDiff) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boostPaths := BoostPaths(diffs)

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		queryText, ok := argsMap["query"].(string)
		if !ok || queryText == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}

		query := index.Query{
			Text:       queryText,
			BoostPaths: boostPaths,
		}
		if symbolType, ok := argsMap["symbol_type"].(string); ok {
			query.SymbolType = symbolType
		}
		if filePattern, ok := argsMap["file_pattern"].(string); ok {
			query.FilePattern = filePattern
		}
		if limit, ok := argsMap["limit"].(float64); ok {
			query.Limit = int(limit)
		}

		symbols, err := searcher.Search(query)
		if err != nil {
			return mcp.NewToolResultError("search failed: " + err.Error()), nil
		}

		return mcp.NewToolResultText(FormatSearchResults(queryText, symbols)), nil
	}
}
