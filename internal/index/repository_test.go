package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Repository:
// - Create schema idempotently (safe to open twice)
// - Insert symbols and search them back via FTS with bm25 ranking
// - Enforce the (file_path, symbol_type, name, lines) uniqueness invariant
// - Search filters: symbol_type exact, file_pattern substring, language exact
// - Search limit capping and default
// - Searching an empty store returns an empty slice, never an error
// - Delete symbols by file and count symbols by file
// - File tracking upsert and lookup
// - Stats aggregation by type and language
// - Distinct symbol types
// - Clear index removes symbols and tracking
// - Schema validation detects required tables and the FTS5 declaration
// - IndexExists is path-based

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := OpenRepository(filepath.Join(t.TempDir(), "code_index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testSymbols() []Symbol {
	return []Symbol{
		{
			Name: "parse_config", SymbolType: "function", FilePath: "src/config.py",
			StartLine: 10, EndLine: 25, Language: "python",
			Signature: "def parse_config(path):", Docstring: "Parses a config file.",
			Scope: "public", FileHash: "hash-a",
		},
		{
			Name: "ConfigLoader", SymbolType: "class", FilePath: "src/config.py",
			StartLine: 30, EndLine: 80, Language: "python",
			Signature: "class ConfigLoader:", Scope: "public", FileHash: "hash-a",
		},
		{
			Name: "load", SymbolType: "method", FilePath: "src/config.py",
			StartLine: 35, EndLine: 50, Language: "python",
			ParentSymbol: "ConfigLoader", Scope: "public", FileHash: "hash-a",
		},
		{
			Name: "parseArgs", SymbolType: "function", FilePath: "cli/args.ts",
			StartLine: 5, EndLine: 20, Language: "typescript",
			Signature: "function parseArgs(argv: string[])", Scope: "public", FileHash: "hash-b",
		},
	}
}

func TestOpenRepository_Idempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "code_index.db")

	repo, err := OpenRepository(dbPath)
	require.NoError(t, err)
	require.NoError(t, repo.InsertSymbols(testSymbols()))
	require.NoError(t, repo.Close())

	// Reopening must not fail or lose rows.
	repo, err = OpenRepository(dbPath)
	require.NoError(t, err)
	defer repo.Close()

	count, err := repo.CountSymbolsByFile("src/config.py")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRepository_SearchRoundTrip(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	require.NoError(t, repo.InsertSymbols(testSymbols()))

	results, err := repo.Search(Query{Text: "ConfigLoader"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "ConfigLoader", results[0].Name)
	assert.Equal(t, "class", results[0].SymbolType)
	assert.Equal(t, "src/config.py", results[0].FilePath)
	assert.Equal(t, 30, results[0].StartLine)
	assert.Equal(t, 80, results[0].EndLine)
	assert.Equal(t, "hash-a", results[0].FileHash)
}

func TestRepository_SearchFilters(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	require.NoError(t, repo.InsertSymbols(testSymbols()))

	// symbol_type narrows to exact matches: "config" hits parse_config's
	// docstring and the ConfigLoader name, the filter keeps only the class.
	results, err := repo.Search(Query{Text: "config", SymbolType: "class"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ConfigLoader", results[0].Name)

	// file_pattern is a substring match on the path.
	results, err = repo.Search(Query{Text: "parseArgs", FilePattern: "cli/"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "parseArgs", results[0].Name)

	results, err = repo.Search(Query{Text: "parseArgs", FilePattern: "src/"})
	require.NoError(t, err)
	assert.Empty(t, results)

	// language narrows to exact matches.
	results, err = repo.Search(Query{Text: "config", Language: "python"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, sym := range results {
		assert.Equal(t, "python", sym.Language)
	}
}

func TestRepository_SearchLimit(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	symbols := make([]Symbol, 0, 30)
	for i := 0; i < 30; i++ {
		symbols = append(symbols, Symbol{
			Name: "handler", SymbolType: "function",
			FilePath: "src/file.py", StartLine: i*10 + 1, EndLine: i*10 + 5,
			Language: "python",
		})
	}
	require.NoError(t, repo.InsertSymbols(symbols))

	results, err := repo.Search(Query{Text: "handler", Limit: 3})
	require.NoError(t, err)
	assert.Len(t, results, 3)

	// Zero limit falls back to the default of 20.
	results, err = repo.Search(Query{Text: "handler"})
	require.NoError(t, err)
	assert.Len(t, results, DefaultSearchLimit)
}

func TestRepository_SearchEmptyStore(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)

	results, err := repo.Search(Query{Text: "anything"})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = repo.Search(Query{Text: ""})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRepository_UniquenessInvariant(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	sym := Symbol{
		Name: "dup", SymbolType: "function", FilePath: "a.py",
		StartLine: 1, EndLine: 2, Language: "python", Signature: "def dup():",
	}
	require.NoError(t, repo.InsertSymbols([]Symbol{sym}))

	// Same identity, new payload: the row is replaced, not duplicated.
	sym.Docstring = "second pass"
	require.NoError(t, repo.InsertSymbols([]Symbol{sym}))

	count, err := repo.CountSymbolsByFile("a.py")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := repo.Search(Query{Text: "dup"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "second pass", results[0].Docstring)
}

func TestRepository_DeleteSymbolsByFile(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	require.NoError(t, repo.InsertSymbols(testSymbols()))

	require.NoError(t, repo.DeleteSymbolsByFile("src/config.py"))

	count, err := repo.CountSymbolsByFile("src/config.py")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// The FTS shadow rows are gone too: searching old names finds nothing.
	results, err := repo.Search(Query{Text: "ConfigLoader"})
	require.NoError(t, err)
	assert.Empty(t, results)

	// Other files are untouched.
	results, err = repo.Search(Query{Text: "parseArgs"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRepository_FileTracking(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)

	_, tracked, err := repo.GetFileHash("src/config.py")
	require.NoError(t, err)
	assert.False(t, tracked)

	require.NoError(t, repo.UpdateFileTracking("src/config.py", "hash-a", 3))

	hash, tracked, err := repo.GetFileHash("src/config.py")
	require.NoError(t, err)
	assert.True(t, tracked)
	assert.Equal(t, "hash-a", hash)

	// Upsert overwrites.
	require.NoError(t, repo.UpdateFileTracking("src/config.py", "hash-a2", 5))
	hash, _, err = repo.GetFileHash("src/config.py")
	require.NoError(t, err)
	assert.Equal(t, "hash-a2", hash)

	require.NoError(t, repo.DeleteFileTracking("src/config.py"))
	_, tracked, err = repo.GetFileHash("src/config.py")
	require.NoError(t, err)
	assert.False(t, tracked)
}

func TestRepository_GetIndexStats(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	require.NoError(t, repo.InsertSymbols(testSymbols()))
	require.NoError(t, repo.UpdateFileTracking("src/config.py", "hash-a", 3))
	require.NoError(t, repo.UpdateFileTracking("cli/args.ts", "hash-b", 1))

	stats, err := repo.GetIndexStats()
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalSymbols)
	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, 2, stats.SymbolsByType["function"])
	assert.Equal(t, 1, stats.SymbolsByType["class"])
	assert.Equal(t, 1, stats.SymbolsByType["method"])
	assert.Equal(t, 3, stats.SymbolsByLanguage["python"])
	assert.Equal(t, 1, stats.SymbolsByLanguage["typescript"])
	assert.NotEmpty(t, stats.LastUpdated)
}

func TestRepository_GetSymbolTypes(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	require.NoError(t, repo.InsertSymbols(testSymbols()))

	types, err := repo.GetSymbolTypes()
	require.NoError(t, err)
	assert.Equal(t, []string{"class", "function", "method"}, types)
}

func TestRepository_ClearIndex(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	require.NoError(t, repo.InsertSymbols(testSymbols()))
	require.NoError(t, repo.UpdateFileTracking("src/config.py", "hash-a", 3))

	require.NoError(t, repo.ClearIndex())

	stats, err := repo.GetIndexStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalSymbols)
	assert.Equal(t, 0, stats.TotalFiles)
}

func TestRepository_ValidateSchema(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	assert.True(t, repo.ValidateSchema())

	// Dropping a required table invalidates the schema.
	_, err := repo.db.Exec("DROP TABLE indexed_files")
	require.NoError(t, err)
	assert.False(t, repo.ValidateSchema())
}

func TestIndexExists(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "code_index.db")
	assert.False(t, IndexExists(dbPath))

	repo, err := OpenRepository(dbPath)
	require.NoError(t, err)
	defer repo.Close()

	assert.True(t, IndexExists(dbPath))
}
