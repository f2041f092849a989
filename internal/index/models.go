package index

// Symbol is one structural definition extracted from a source file.
// Line numbers are 1-based, columns are 0-based (native tree positions).
type Symbol struct {
	ID           int64  `json:"id,omitempty"`
	Name         string `json:"name"`
	SymbolType   string `json:"symbol_type"` // function, class, method, field, enum, ...
	FilePath     string `json:"file_path"`   // relative to the indexed root
	StartLine    int    `json:"start_line"`
	StartColumn  int    `json:"start_column"`
	EndLine      int    `json:"end_line,omitempty"`
	EndColumn    int    `json:"end_column,omitempty"`
	Language     string `json:"language,omitempty"`
	Signature    string `json:"signature,omitempty"` // first line of the definition
	Docstring    string `json:"docstring,omitempty"`
	ParentSymbol string `json:"parent_symbol,omitempty"` // enclosing definition name
	Scope        string `json:"scope,omitempty"`         // public or private
	Parameters   string `json:"parameters,omitempty"`    // raw parameter list text
	ReturnType   string `json:"return_type,omitempty"`
	FileHash     string `json:"file_hash,omitempty"` // SHA-256 of the file content
	SourceCode   string `json:"source_code,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// IndexedFile tracks the last-seen state of one indexed file.
// A row exists iff the file has been successfully processed at least once.
type IndexedFile struct {
	FilePath    string `json:"file_path"`
	FileHash    string `json:"file_hash"`
	SymbolCount int    `json:"symbol_count"`
	LastIndexed string `json:"last_indexed"`
}

// Query is a symbol search request.
type Query struct {
	Text        string   `json:"query"`
	SymbolType  string   `json:"symbol_type,omitempty"`  // exact match
	FilePattern string   `json:"file_pattern,omitempty"` // substring match on file_path
	Language    string   `json:"language,omitempty"`     // exact match
	Limit       int      `json:"limit,omitempty"`        // default 20
	BoostPaths  []string `json:"boost_paths,omitempty"`  // accepted, not used for ranking
}

// DefaultSearchLimit is applied when Query.Limit is zero or negative.
const DefaultSearchLimit = 20

// IndexResult reports the outcome of a build or rebuild operation.
// Success is true only when the error list is empty.
type IndexResult struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	SymbolsIndexed int      `json:"symbols_indexed"`
	FilesProcessed int      `json:"files_processed"`
	Errors         []string `json:"errors"`
}

// UpdateResult reports the outcome of a single-file update.
type UpdateResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	FilePath       string `json:"file_path"`
	SymbolsAdded   int    `json:"symbols_added"`
	SymbolsRemoved int    `json:"symbols_removed"`
}

// IndexStats aggregates index-wide statistics.
type IndexStats struct {
	TotalSymbols      int            `json:"total_symbols"`
	TotalFiles        int            `json:"total_files"`
	SymbolsByType     map[string]int `json:"symbols_by_type"`
	SymbolsByLanguage map[string]int `json:"symbols_by_language"`
	LastUpdated       string         `json:"last_updated,omitempty"`
}
