package review

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/codescout/internal/index"
)

// maxDocstringLen caps docstrings in tool output so one verbose symbol
// cannot flood the LLM context.
const maxDocstringLen = 100

// FormatSearchResults renders ranked symbols as the human-readable listing
// returned to the LLM.
func FormatSearchResults(query string, symbols []index.Symbol) string {
	if len(symbols) == 0 {
		return fmt.Sprintf("No symbols found matching '%s'", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d symbols matching '%s':\n", len(symbols), query)

	for i, sym := range symbols {
		fmt.Fprintf(&b, "\n%d. %s (%s)", i+1, sym.Name, sym.SymbolType)
		if sym.ParentSymbol != "" {
			fmt.Fprintf(&b, " in %s", sym.ParentSymbol)
		}
		b.WriteString("\n")

		fmt.Fprintf(&b, "   Location: %s:%s\n", sym.FilePath, formatLineSpan(sym))

		if sym.Signature != "" {
			fmt.Fprintf(&b, "   Signature: %s\n", sym.Signature)
		}
		if sym.Docstring != "" {
			fmt.Fprintf(&b, "   Doc: %s\n", truncateDocstring(sym.Docstring))
		}
		if sym.Scope != "" {
			fmt.Fprintf(&b, "   Scope: %s\n", sym.Scope)
		}
	}

	return b.String()
}

// formatLineSpan renders "start" or "start-end" when an end line is known.
func formatLineSpan(sym index.Symbol) string {
	if sym.EndLine > 0 && sym.EndLine != sym.StartLine {
		return fmt.Sprintf("%d-%d", sym.StartLine, sym.EndLine)
	}
	return fmt.Sprintf("%d", sym.StartLine)
}

// truncateDocstring caps a docstring at maxDocstringLen characters,
// replacing the tail with an ellipsis.
func truncateDocstring(doc string) string {
	doc = strings.TrimSpace(doc)
	if len(doc) <= maxDocstringLen {
		return doc
	}
	return doc[:maxDocstringLen-3] + "..."
}
