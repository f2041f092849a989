package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mvp-joe/codescout/internal/index"
)

// Test Plan for result formatting:
// - Empty results yield a "no symbols found" message
// - Numbered listing carries name, type, parent, location, signature,
//   docstring, and scope
// - Single-line symbols render one line number, spans render start-end
// - Long docstrings are truncated with an ellipsis at 100 characters

func TestFormatSearchResults_Empty(t *testing.T) {
	t.Parallel()

	out := FormatSearchResults("nothing", nil)
	assert.Equal(t, "No symbols found matching 'nothing'", out)
}

func TestFormatSearchResults_Listing(t *testing.T) {
	t.Parallel()

	symbols := []index.Symbol{
		{
			Name: "load", SymbolType: "method", ParentSymbol: "ConfigLoader",
			FilePath: "src/config.py", StartLine: 35, EndLine: 50,
			Signature: "def load(self, path):", Docstring: "Loads the file.",
			Scope: "public",
		},
		{
			Name: "VERSION", SymbolType: "variable",
			FilePath: "src/version.py", StartLine: 3, EndLine: 3,
		},
	}

	out := FormatSearchResults("load", symbols)

	assert.Contains(t, out, "Found 2 symbols matching 'load':")
	assert.Contains(t, out, "1. load (method) in ConfigLoader")
	assert.Contains(t, out, "   Location: src/config.py:35-50")
	assert.Contains(t, out, "   Signature: def load(self, path):")
	assert.Contains(t, out, "   Doc: Loads the file.")
	assert.Contains(t, out, "   Scope: public")

	// Single-line symbol: no span, no optional sections.
	assert.Contains(t, out, "2. VERSION (variable)\n")
	assert.Contains(t, out, "   Location: src/version.py:3\n")
	assert.NotContains(t, out, "VERSION (variable) in")
}

func TestFormatSearchResults_DocstringTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 150)
	symbols := []index.Symbol{
		{Name: "f", SymbolType: "function", FilePath: "a.py", StartLine: 1, Docstring: long},
	}

	out := FormatSearchResults("f", symbols)

	assert.Contains(t, out, strings.Repeat("x", 97)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 98))
}

func TestBoostPaths(t *testing.T) {
	t.Parallel()

	diffs := []CodeDiff{
		{FilePath: "a.py", ChangeType: ChangeModified},
		{FilePath: "b.py", ChangeType: ChangeDeleted},
		{FilePath: "c.py", ChangeType: ChangeAdded},
	}

	assert.Equal(t, []string{"a.py", "c.py"}, BoostPaths(diffs))
}
