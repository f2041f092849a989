package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var typesJSONFlag bool

// typesCmd represents the types command
var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the symbol types present in the index",
	Long: `Types lists the distinct symbol types the index currently contains,
useful as input to 'codescout search --type'.

Example:
  codescout types`,
	RunE: runTypes,
}

func init() {
	rootCmd.AddCommand(typesCmd)
	typesCmd.Flags().BoolVar(&typesJSONFlag, "json", false, "Emit types as JSON")
}

func runTypes(cmd *cobra.Command, args []string) error {
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

	types, err := manager.GetSymbolTypes()
	if err != nil {
		return fmt.Errorf("failed to read symbol types: %w", err)
	}

	if typesJSONFlag {
		return printJSON(types)
	}
	for _, symbolType := range types {
		fmt.Println(symbolType)
	}
	return nil
}
