package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codescout/internal/index"
	"github.com/mvp-joe/codescout/internal/review"
)

var (
	searchTypeFlag  string
	searchFileFlag  string
	searchLimitFlag int
	searchJSONFlag  bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the symbol index",
	Long: `Search finds indexed symbols by name, signature, docstring, or file
path, ranked by full-text relevance.

Examples:
  # Find anything mentioning "parse config"
  codescout search "parse config"

  # Class definitions only
  codescout search Loader --type class

  # Restrict to paths under api/
  codescout search handler --file api/

  # Machine-readable output
  codescout search handler --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchTypeFlag, "type", "t", "", "Restrict to one symbol type (function, class, method, ...)")
	searchCmd.Flags().StringVarP(&searchFileFlag, "file", "f", "", "Restrict to file paths containing this substring")
	searchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "l", index.DefaultSearchLimit, "Maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSONFlag, "json", false, "Emit results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	queryText := args[0]
	symbols, err := manager.Search(index.Query{
		Text:        queryText,
		SymbolType:  searchTypeFlag,
		FilePattern: searchFileFlag,
		Limit:       searchLimitFlag,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSONFlag {
		return printJSON(symbols)
	}
	fmt.Println(review.FormatSearchResults(queryText, symbols))
	return nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
