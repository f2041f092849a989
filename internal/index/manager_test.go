package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Manager:
// - Build indexes every eligible file under a root with relative paths
// - Build twice on an unchanged tree is idempotent
// - Building an empty directory succeeds with zero counts and no errors
// - Unknown extensions are skipped without tracking rows or errors
// - .gitignore and baseline ignore globs exclude files and directories
// - Extension allow-list narrows the scan
// - UpdateFile: unchanged content reports zero deltas
// - UpdateFile: modified content reports removed/added counts and the
//   search index reflects the replacement
// - UpdateFile: missing file is a failed result, not an error
// - RemoveFile drops symbols and tracking
// - Search/stats/types/exists/validate delegation
// - Progress callbacks fire per scanned file

func newTestManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	if opts.DBPath == "" {
		opts.DBPath = filepath.Join(t.TempDir(), ".codescout", "code_index.db")
	}
	mgr, err := NewManager(opts)
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	path := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "app.py", pythonSample)
	writeFile(t, root, "web/handlers.js", "function handleRequest(req) {\n  return req;\n}\n")
	writeFile(t, root, "notes.xyz", "not code")
	writeFile(t, root, "node_modules/lib/index.js", "function hidden() {}\n")
	return root
}

func TestManager_Build(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	mgr := newTestManager(t, Options{})

	result := mgr.Build([]string{root}, nil)

	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.FilesProcessed)
	assert.Equal(t, 4, result.SymbolsIndexed) // 3 python + 1 javascript

	// Paths are stored relative to the root.
	symbols, err := mgr.Search(Query{Text: "handleRequest"})
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "web/handlers.js", symbols[0].FilePath)
}

func TestManager_BuildIdempotent(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	mgr := newTestManager(t, Options{})

	first := mgr.Build([]string{root}, nil)
	second := mgr.Build([]string{root}, nil)

	assert.Equal(t, first.SymbolsIndexed, second.SymbolsIndexed)
	assert.Equal(t, first.FilesProcessed, second.FilesProcessed)

	stats, err := mgr.GetIndexStats()
	require.NoError(t, err)
	assert.Equal(t, first.SymbolsIndexed, stats.TotalSymbols)
}

func TestManager_BuildEmptyDirectory(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, Options{})
	result := mgr.Build([]string{t.TempDir()}, nil)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.SymbolsIndexed)
	assert.Equal(t, 0, result.FilesProcessed)
	assert.Empty(t, result.Errors)
}

func TestManager_BuildSkipsUnknownExtensions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "data.xyz", "not a language")
	mgr := newTestManager(t, Options{})

	result := mgr.Build([]string{root}, nil)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.FilesProcessed)
	assert.Empty(t, result.Errors)

	// The skipped file never reaches file tracking.
	stats, err := mgr.GetIndexStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalFiles)
}

func TestManager_BuildHonorsGitignore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, ".gitignore", "generated/\nsecret.py\n")
	writeFile(t, root, "app.py", "def visible():\n    pass\n")
	writeFile(t, root, "secret.py", "def invisible():\n    pass\n")
	writeFile(t, root, "generated/gen.py", "def generated():\n    pass\n")
	mgr := newTestManager(t, Options{})

	result := mgr.Build([]string{root}, nil)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.FilesProcessed)

	symbols, err := mgr.Search(Query{Text: "invisible"})
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestManager_BuildExtensionAllowList(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "app.py", "def included():\n    pass\n")
	writeFile(t, root, "app.js", "function excluded() {}\n")
	mgr := newTestManager(t, Options{Extensions: []string{".py"}})

	result := mgr.Build([]string{root}, nil)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 1, result.SymbolsIndexed)
}

func TestManager_BuildIgnoreGlobs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "app.py", "def keep():\n    pass\n")
	writeFile(t, root, "migrations/0001.py", "def drop():\n    pass\n")
	mgr := newTestManager(t, Options{IgnoreGlobs: []string{"migrations/**"}})

	result := mgr.Build([]string{root}, nil)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.FilesProcessed)
}

func TestManager_UpdateFileNoChanges(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "app.py", pythonSample)
	mgr := newTestManager(t, Options{})
	mgr.Build([]string{root}, nil)

	statsBefore, err := mgr.GetIndexStats()
	require.NoError(t, err)

	result := mgr.UpdateFile(root, "app.py")

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.SymbolsAdded)
	assert.Equal(t, 0, result.SymbolsRemoved)
	assert.Contains(t, result.Message, "no changes")

	statsAfter, err := mgr.GetIndexStats()
	require.NoError(t, err)
	assert.Equal(t, statsBefore.TotalSymbols, statsAfter.TotalSymbols)
}

func TestManager_UpdateFileReplacement(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "app.py", pythonSample)
	mgr := newTestManager(t, Options{})
	mgr.Build([]string{root}, nil)

	// The old file had 3 symbols; the replacement has 1.
	writeFile(t, root, "app.py", "def replacement_function():\n    pass\n")

	result := mgr.UpdateFile(root, "app.py")

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SymbolsAdded)
	assert.Equal(t, 3, result.SymbolsRemoved)

	// Old names are gone, new names are findable.
	old, err := mgr.Search(Query{Text: "my_function"})
	require.NoError(t, err)
	assert.Empty(t, old)

	current, err := mgr.Search(Query{Text: "replacement_function"})
	require.NoError(t, err)
	assert.Len(t, current, 1)
}

func TestManager_UpdateFileMissing(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mgr := newTestManager(t, Options{})

	result := mgr.UpdateFile(root, "nope.py")

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "file not found")
}

func TestManager_RemoveFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "app.py", pythonSample)
	mgr := newTestManager(t, Options{})
	mgr.Build([]string{root}, nil)

	result := mgr.RemoveFile(root, "app.py")

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.SymbolsRemoved)

	stats, err := mgr.GetIndexStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalSymbols)
	assert.Equal(t, 0, stats.TotalFiles)
}

func TestManager_ExistsAndValidate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "app.py", pythonSample)
	mgr := newTestManager(t, Options{})

	assert.False(t, mgr.IndexExists())
	assert.False(t, mgr.ValidateSchema())

	// ClearIndex before the store exists is a no-op, not a create.
	require.NoError(t, mgr.ClearIndex())
	assert.False(t, mgr.IndexExists())

	mgr.Build([]string{root}, nil)
	assert.True(t, mgr.IndexExists())
	assert.True(t, mgr.ValidateSchema())
}

func TestManager_GetSymbolTypes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "app.py", pythonSample)
	mgr := newTestManager(t, Options{})
	mgr.Build([]string{root}, nil)

	types, err := mgr.GetSymbolTypes()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"class", "function", "method"}, types)
}

// recordingProgress captures progress callbacks for assertions.
type recordingProgress struct {
	total   int
	indexed []string
}

func (r *recordingProgress) OnScanComplete(totalFiles int)  { r.total = totalFiles }
func (r *recordingProgress) OnFileIndexed(filePath string)  { r.indexed = append(r.indexed, filePath) }

func TestManager_ProgressCallbacks(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	mgr := newTestManager(t, Options{})

	progress := &recordingProgress{}
	mgr.Build([]string{root}, progress)

	assert.Equal(t, 2, progress.total)
	assert.ElementsMatch(t, []string{"app.py", "web/handlers.js"}, progress.indexed)
}

func TestManager_IsEligible(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, ".gitignore", "vendor.py\n")
	mgr := newTestManager(t, Options{})

	assert.True(t, mgr.IsEligible(root, "app.py"))
	assert.False(t, mgr.IsEligible(root, "vendor.py"))
	assert.False(t, mgr.IsEligible(root, "node_modules/pkg/index.js"))
	assert.False(t, mgr.IsEligible(root, "data.xyz"))
}
