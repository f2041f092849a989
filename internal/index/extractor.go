package index

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Extractor parses source files and extracts symbol definitions by running
// the language's catalog query against the syntax tree. Grammars and
// compiled queries are cached per language, populated on first use and
// never invalidated for the process lifetime.
//
// Extraction never returns an error: unsupported languages yield an empty
// result, and any per-file parse or query failure is logged and swallowed
// so a multi-file indexing run is never aborted by one bad file.
type Extractor struct {
	mu        sync.Mutex
	languages map[string]*sitter.Language
	queries   map[string]*sitter.Query
	logger    *slog.Logger
}

// NewExtractor creates an extractor with empty caches.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		languages: make(map[string]*sitter.Language),
		queries:   make(map[string]*sitter.Query),
		logger:    logger,
	}
}

// HashContent returns the hex-encoded SHA-256 hash of content. Every symbol
// extracted from a file carries this hash for change detection.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ExtractSymbols extracts all symbol definitions from one file. filePath is
// used for language detection and is recorded verbatim on each symbol, so
// callers pass root-relative paths.
func (e *Extractor) ExtractSymbols(filePath string, content []byte) []Symbol {
	lang := DetectLanguage(filePath)
	if lang == "" {
		return nil
	}

	language, query, ok := e.languageFor(lang)
	if !ok {
		// Recognized language without a registered grammar: zero symbols.
		return nil
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(language); err != nil {
		e.logger.Warn("parser unavailable", "language", lang, "file", filePath, "error", err)
		return nil
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		e.logger.Warn("failed to parse file", "language", lang, "file", filePath)
		return nil
	}
	defer tree.Close()

	fileHash := HashContent(content)
	root := tree.RootNode()

	if query == nil {
		return e.fallbackSymbols(root, content, lang, filePath, fileHash)
	}
	return e.querySymbols(query, root, content, lang, filePath, fileHash)
}

// languageFor returns the cached grammar and compiled query for a language,
// constructing both on first use. The mutex guards against concurrent
// first-use races when file extraction is parallelized by the caller.
func (e *Extractor) languageFor(lang string) (*sitter.Language, *sitter.Query, bool) {
	spec, ok := languageSpecs[lang]
	if !ok {
		return nil, nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	language, ok := e.languages[lang]
	if !ok {
		language = sitter.NewLanguage(spec.grammar())
		e.languages[lang] = language

		if spec.query != "" {
			query, qerr := sitter.NewQuery(language, spec.query)
			if qerr != nil {
				// Bad catalog query: fall back to coarse node matching.
				e.logger.Warn("failed to compile symbol query", "language", lang, "error", qerr.Message)
			} else {
				e.queries[lang] = query
			}
		}
	}

	return language, e.queries[lang], true
}

// querySymbols runs the language's catalog query and converts each match
// into a Symbol. A match lacking either a name or a definition capture is
// dropped silently.
func (e *Extractor) querySymbols(query *sitter.Query, root *sitter.Node, content []byte, lang, filePath, fileHash string) []Symbol {
	captureNames := query.CaptureNames()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	symbols := []Symbol{}
	seen := make(map[symbolKey]bool)

	matches := cursor.Matches(query, root, content)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var kind string
		var nameNode, defNode *sitter.Node

		for i := range match.Captures {
			capture := match.Captures[i]
			captureName := captureNames[capture.Index]
			base, role, found := strings.Cut(captureName, ".")
			if !found {
				continue
			}
			node := capture.Node
			switch role {
			case "name":
				kind = base
				nameNode = &node
			case "definition":
				defNode = &node
			}
		}

		if nameNode == nil || defNode == nil {
			continue
		}

		sym, ok := e.buildSymbol(kind, nameNode, defNode, content, lang, filePath, fileHash)
		if !ok {
			continue
		}

		key := symbolKey{sym.SymbolType, sym.Name, sym.StartLine, sym.EndLine}
		if seen[key] {
			continue
		}
		seen[key] = true
		symbols = append(symbols, sym)
	}

	return symbols
}

// fallbackSymbols is the coarse extraction path for a registered grammar
// with no usable catalog query: any node whose kind mentions function or
// method is function-like, class or struct is class-like. Only nodes with
// a name field are surfaced.
func (e *Extractor) fallbackSymbols(root *sitter.Node, content []byte, lang, filePath, fileHash string) []Symbol {
	symbols := []Symbol{}
	seen := make(map[symbolKey]bool)

	walkTree(root, func(n *sitter.Node) bool {
		nodeKind := n.Kind()

		var kind string
		switch {
		case strings.Contains(nodeKind, "function") || strings.Contains(nodeKind, "method"):
			kind = "function"
		case strings.Contains(nodeKind, "class") || strings.Contains(nodeKind, "struct"):
			kind = "class"
		default:
			return true
		}

		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return true
		}

		sym, ok := e.buildSymbol(kind, nameNode, n, content, lang, filePath, fileHash)
		if !ok {
			return true
		}

		key := symbolKey{sym.SymbolType, sym.Name, sym.StartLine, sym.EndLine}
		if !seen[key] {
			seen[key] = true
			symbols = append(symbols, sym)
		}
		return true
	})

	return symbols
}

// symbolKey deduplicates symbols within one file extraction under the
// store's uniqueness invariant.
type symbolKey struct {
	symbolType string
	name       string
	startLine  int
	endLine    int
}

// buildSymbol converts a matched definition node into a Symbol. Name and
// source text are decoded from the original byte buffer via byte offsets,
// which keeps multi-byte characters intact. Tree rows are 0-based, so line
// numbers get +1; columns stay 0-based.
func (e *Extractor) buildSymbol(kind string, nameNode, defNode *sitter.Node, content []byte, lang, filePath, fileHash string) (Symbol, bool) {
	name := nameNode.Utf8Text(content)
	if name == "" {
		return Symbol{}, false
	}

	start := defNode.StartPosition()
	end := defNode.EndPosition()
	source := defNode.Utf8Text(content)

	parent := enclosingDefinitionName(defNode, content)
	if parent == "" && kind == "method" {
		// Receiver-based methods (Go) have no enclosing class node.
		parent = receiverTypeName(defNode, content)
	}

	// Function-like kinds: the nesting decides the final type. A definition
	// with an enclosing named definition is a method, a top-level one is a
	// function.
	symbolType := kind
	if kind == "function" || kind == "method" {
		if parent != "" {
			symbolType = "method"
		} else {
			symbolType = "function"
		}
	}

	scope := "public"
	if strings.HasPrefix(name, "_") {
		scope = "private"
	}

	var parameters string
	if paramsNode := defNode.ChildByFieldName("parameters"); paramsNode != nil {
		parameters = paramsNode.Utf8Text(content)
	}

	var returnType string
	if retNode := defNode.ChildByFieldName("return_type"); retNode != nil {
		returnType = retNode.Utf8Text(content)
	} else if retNode := defNode.ChildByFieldName("result"); retNode != nil {
		returnType = retNode.Utf8Text(content)
	}

	var docstring string
	if lang == "python" {
		docstring = pythonDocstring(defNode, content)
	}

	return Symbol{
		Name:         name,
		SymbolType:   symbolType,
		FilePath:     filePath,
		StartLine:    int(start.Row) + 1,
		StartColumn:  int(start.Column),
		EndLine:      int(end.Row) + 1,
		EndColumn:    int(end.Column),
		Language:     lang,
		Signature:    firstLine(source),
		Docstring:    docstring,
		ParentSymbol: parent,
		Scope:        scope,
		Parameters:   parameters,
		ReturnType:   returnType,
		FileHash:     fileHash,
		SourceCode:   source,
	}, true
}

// definitionKinds are node-kind substrings that mark an enclosing named
// definition for parent attribution.
var definitionKinds = []string{
	"class", "function", "method", "interface", "module", "trait", "struct", "enum", "impl",
}

// enclosingDefinitionName walks up from a definition node and returns the
// name of the nearest enclosing definition, or "" at top level.
func enclosingDefinitionName(node *sitter.Node, content []byte) string {
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		parentKind := parent.Kind()
		for _, kind := range definitionKinds {
			if strings.Contains(parentKind, kind) {
				if nameNode := parent.ChildByFieldName("name"); nameNode != nil {
					return nameNode.Utf8Text(content)
				}
				break
			}
		}
	}
	return ""
}

// receiverTypeName returns the type name from a method's receiver field,
// or "" when the definition has no receiver.
func receiverTypeName(defNode *sitter.Node, content []byte) string {
	recv := defNode.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	var name string
	walkTree(recv, func(n *sitter.Node) bool {
		if name != "" {
			return false
		}
		if n.Kind() == "type_identifier" {
			name = n.Utf8Text(content)
			return false
		}
		return true
	})
	return name
}

// pythonDocstring returns the docstring of a Python class or function
// definition: the string expression that opens the body, quotes stripped.
func pythonDocstring(defNode *sitter.Node, content []byte) string {
	body := defNode.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}

	first := body.NamedChild(0)
	if first == nil || first.Kind() != "expression_statement" {
		return ""
	}
	if first.NamedChildCount() == 0 {
		return ""
	}

	str := first.NamedChild(0)
	if str == nil || str.Kind() != "string" {
		return ""
	}

	return stripStringQuotes(str.Utf8Text(content))
}

// stripStringQuotes removes surrounding Python string quotes, longest
// delimiter first.
func stripStringQuotes(s string) string {
	for _, quote := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, quote) && strings.HasSuffix(s, quote) && len(s) >= 2*len(quote) {
			return strings.TrimSpace(s[len(quote) : len(s)-len(quote)])
		}
	}
	return strings.TrimSpace(s)
}

// firstLine returns the first line of a definition's source text, used as
// the symbol's signature.
func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimRight(s, " \t\r")
}

// walkTree visits node and its subtree depth-first. The visit callback
// returns false to skip a node's children.
func walkTree(node *sitter.Node, visit func(*sitter.Node) bool) {
	if !visit(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visit)
	}
}
