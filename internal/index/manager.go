package index

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// baselineIgnoreGlobs are always excluded from scans: version-control
// directories, dependency and cache directories, and binary or log
// extensions that can never hold indexable symbols.
var baselineIgnoreGlobs = []string{
	".git/**",
	".hg/**",
	".svn/**",
	".codescout/**",
	"node_modules/**",
	"vendor/**",
	"bower_components/**",
	"dist/**",
	"build/**",
	"target/**",
	"__pycache__/**",
	".venv/**",
	"venv/**",
	".tox/**",
	".idea/**",
	".vscode/**",
	"*.min.js",
	"*.lock",
	"*.log",
	"*.pyc",
	"*.class",
	"*.o",
	"*.a",
	"*.so",
	"*.dylib",
	"*.dll",
	"*.exe",
	"*.bin",
}

// compiledPattern holds a pattern string and its compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Progress receives build progress callbacks. Implementations must tolerate
// being called from a single goroutine only.
type Progress interface {
	OnScanComplete(totalFiles int)
	OnFileIndexed(filePath string)
}

// Options configures a Manager.
type Options struct {
	DBPath      string
	Extensions  []string // allow-list; empty means every recognized extension
	IgnoreGlobs []string // extra ignore globs on top of the baseline set
	Logger      *slog.Logger
}

// Manager orchestrates scanning, hashing, extraction, and repository
// updates. It holds no mutable state across operations beyond the open
// store connection.
type Manager struct {
	dbPath    string
	extractor *Extractor
	repo      *Repository
	allowExts map[string]bool
	ignore    []compiledPattern
	logger    *slog.Logger
}

// NewManager creates a manager. The store file is not opened until the
// first operation needs it, so existence checks stay meaningful.
func NewManager(opts Options) (*Manager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	allowExts := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowExts[strings.ToLower(ext)] = true
	}

	patterns := make([]compiledPattern, 0, len(baselineIgnoreGlobs)+len(opts.IgnoreGlobs))
	for _, pattern := range append(append([]string{}, baselineIgnoreGlobs...), opts.IgnoreGlobs...) {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("failed to compile ignore pattern %q: %w", pattern, err)
		}
		patterns = append(patterns, compiledPattern{pattern: pattern, glob: g})
	}

	return &Manager{
		dbPath:    opts.DBPath,
		extractor: NewExtractor(logger),
		allowExts: allowExts,
		ignore:    patterns,
		logger:    logger,
	}, nil
}

// Close closes the store connection if one was opened.
func (m *Manager) Close() error {
	if m.repo == nil {
		return nil
	}
	err := m.repo.Close()
	m.repo = nil
	return err
}

// repository opens the store on first use.
func (m *Manager) repository() (*Repository, error) {
	if m.repo == nil {
		repo, err := OpenRepository(m.dbPath)
		if err != nil {
			return nil, err
		}
		m.repo = repo
	}
	return m.repo, nil
}

// Build clears the index and indexes every eligible file under each root.
// Per-file failures are collected, never fatal; Success is true only when
// the error list ends up empty.
func (m *Manager) Build(roots []string, progress Progress) *IndexResult {
	result := &IndexResult{Errors: []string{}}

	repo, err := m.repository()
	if err != nil {
		result.Message = fmt.Sprintf("failed to open index: %v", err)
		return result
	}
	if err := repo.ClearIndex(); err != nil {
		result.Message = fmt.Sprintf("failed to clear index: %v", err)
		return result
	}

	files, scanErrors := m.scanFiles(roots)
	result.Errors = append(result.Errors, scanErrors...)
	if progress != nil {
		progress.OnScanComplete(len(files))
	}

	for _, file := range files {
		count, err := m.indexFile(repo, file.root, file.relPath)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.relPath, err))
		} else {
			result.FilesProcessed++
			result.SymbolsIndexed += count
		}
		if progress != nil {
			progress.OnFileIndexed(file.relPath)
		}
	}

	result.Success = len(result.Errors) == 0
	if result.Success {
		result.Message = fmt.Sprintf("indexed %d symbols from %d files", result.SymbolsIndexed, result.FilesProcessed)
	} else {
		result.Message = fmt.Sprintf("indexed %d symbols from %d files with %d errors",
			result.SymbolsIndexed, result.FilesProcessed, len(result.Errors))
	}
	return result
}

// Rebuild is semantically identical to Build. It exists as a distinct
// operation so callers can be explicit about discarding the old index.
func (m *Manager) Rebuild(roots []string, progress Progress) *IndexResult {
	return m.Build(roots, progress)
}

// UpdateFile re-indexes a single file. root anchors relative path storage;
// filePath may be absolute or root-relative. An unchanged content hash
// reports zero deltas without touching the store. A missing file is a
// failed result, not an error.
func (m *Manager) UpdateFile(root, filePath string) *UpdateResult {
	absPath := filePath
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(root, filePath)
	}
	relPath, err := filepath.Rel(root, absPath)
	if err != nil {
		return &UpdateResult{FilePath: filePath, Message: fmt.Sprintf("path outside root: %v", err)}
	}
	relPath = filepath.ToSlash(relPath)

	content, err := os.ReadFile(absPath)
	if err != nil {
		return &UpdateResult{FilePath: relPath, Message: fmt.Sprintf("file not found: %s", filePath)}
	}

	repo, err := m.repository()
	if err != nil {
		return &UpdateResult{FilePath: relPath, Message: fmt.Sprintf("failed to open index: %v", err)}
	}

	fileHash := HashContent(content)
	storedHash, tracked, err := repo.GetFileHash(relPath)
	if err != nil {
		return &UpdateResult{FilePath: relPath, Message: err.Error()}
	}
	if tracked && storedHash == fileHash {
		return &UpdateResult{
			Success:  true,
			Message:  fmt.Sprintf("no changes detected for %s", relPath),
			FilePath: relPath,
		}
	}

	removed, err := repo.CountSymbolsByFile(relPath)
	if err != nil {
		return &UpdateResult{FilePath: relPath, Message: err.Error()}
	}
	if err := repo.DeleteSymbolsByFile(relPath); err != nil {
		return &UpdateResult{FilePath: relPath, Message: err.Error()}
	}

	symbols := m.extractor.ExtractSymbols(relPath, content)
	if err := repo.InsertSymbols(symbols); err != nil {
		return &UpdateResult{FilePath: relPath, Message: err.Error()}
	}
	if err := repo.UpdateFileTracking(relPath, fileHash, len(symbols)); err != nil {
		return &UpdateResult{FilePath: relPath, Message: err.Error()}
	}

	return &UpdateResult{
		Success:        true,
		Message:        fmt.Sprintf("updated %s: %d added, %d removed", relPath, len(symbols), removed),
		FilePath:       relPath,
		SymbolsAdded:   len(symbols),
		SymbolsRemoved: removed,
	}
}

// RemoveFile drops a deleted file's symbols and tracking row. A rename is
// handled as remove-old-path plus UpdateFile on the new path; no hash-based
// rename detection is attempted.
func (m *Manager) RemoveFile(root, filePath string) *UpdateResult {
	absPath := filePath
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(root, filePath)
	}
	relPath, err := filepath.Rel(root, absPath)
	if err != nil {
		return &UpdateResult{FilePath: filePath, Message: fmt.Sprintf("path outside root: %v", err)}
	}
	relPath = filepath.ToSlash(relPath)

	repo, err := m.repository()
	if err != nil {
		return &UpdateResult{FilePath: relPath, Message: fmt.Sprintf("failed to open index: %v", err)}
	}

	removed, err := repo.CountSymbolsByFile(relPath)
	if err != nil {
		return &UpdateResult{FilePath: relPath, Message: err.Error()}
	}
	if err := repo.DeleteSymbolsByFile(relPath); err != nil {
		return &UpdateResult{FilePath: relPath, Message: err.Error()}
	}
	if err := repo.DeleteFileTracking(relPath); err != nil {
		return &UpdateResult{FilePath: relPath, Message: err.Error()}
	}

	return &UpdateResult{
		Success:        true,
		Message:        fmt.Sprintf("removed %s from index", relPath),
		FilePath:       relPath,
		SymbolsRemoved: removed,
	}
}

// Search delegates to the store with filters translated 1:1.
func (m *Manager) Search(query Query) ([]Symbol, error) {
	repo, err := m.repository()
	if err != nil {
		return nil, err
	}
	return repo.Search(query)
}

// GetIndexStats delegates to the store.
func (m *Manager) GetIndexStats() (*IndexStats, error) {
	repo, err := m.repository()
	if err != nil {
		return nil, err
	}
	return repo.GetIndexStats()
}

// GetSymbolTypes delegates to the store.
func (m *Manager) GetSymbolTypes() ([]string, error) {
	repo, err := m.repository()
	if err != nil {
		return nil, err
	}
	return repo.GetSymbolTypes()
}

// IndexExists reports whether the store file exists on disk.
func (m *Manager) IndexExists() bool {
	return IndexExists(m.dbPath)
}

// ValidateSchema reports whether an existing store has all required
// structures. A missing store validates false without creating the file.
func (m *Manager) ValidateSchema() bool {
	if !m.IndexExists() {
		return false
	}
	repo, err := m.repository()
	if err != nil {
		return false
	}
	return repo.ValidateSchema()
}

// ClearIndex empties the store. A store that was never created is a no-op.
func (m *Manager) ClearIndex() error {
	if !m.IndexExists() {
		return nil
	}
	repo, err := m.repository()
	if err != nil {
		return err
	}
	return repo.ClearIndex()
}

// indexFile reads, hashes, extracts, and persists one file.
func (m *Manager) indexFile(repo *Repository, root, relPath string) (int, error) {
	content, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}

	symbols := m.extractor.ExtractSymbols(relPath, content)
	if err := repo.InsertSymbols(symbols); err != nil {
		return 0, err
	}
	if err := repo.UpdateFileTracking(relPath, HashContent(content), len(symbols)); err != nil {
		return 0, err
	}
	return len(symbols), nil
}

// scannedFile is one eligible file found during a scan, with its path
// relative to the root it was found under.
type scannedFile struct {
	root    string
	relPath string
}

// scanFiles walks each root and returns the files eligible for indexing:
// not ignored by the root's .gitignore or the ignore globs, extension in
// the allow-list (when one is configured), and language recognized by the
// detector. Walk errors are collected, not fatal.
func (m *Manager) scanFiles(roots []string) ([]scannedFile, []string) {
	files := []scannedFile{}
	errors := []string{}

	for _, root := range roots {
		gitIgnore := loadGitignore(root)

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				errors = append(errors, fmt.Sprintf("%s: %v", path, err))
				return nil
			}

			relPath, relErr := filepath.Rel(root, path)
			if relErr != nil || relPath == "." {
				return nil
			}
			relPath = filepath.ToSlash(relPath)

			if d.IsDir() {
				if m.shouldIgnore(relPath) || (gitIgnore != nil && gitIgnore.MatchesPath(relPath+"/")) {
					return filepath.SkipDir
				}
				return nil
			}

			if m.shouldIgnore(relPath) {
				return nil
			}
			if gitIgnore != nil && gitIgnore.MatchesPath(relPath) {
				return nil
			}
			if !m.extensionAllowed(relPath) {
				return nil
			}
			if DetectLanguage(relPath) == "" {
				return nil
			}

			files = append(files, scannedFile{root: root, relPath: relPath})
			return nil
		})
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", root, err))
		}
	}

	return files, errors
}

// IsEligible reports whether a root-relative path would be picked up by a
// scan. Used by the watcher to filter change events.
func (m *Manager) IsEligible(root, relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	if m.shouldIgnore(relPath) {
		return false
	}
	if gitIgnore := loadGitignore(root); gitIgnore != nil && gitIgnore.MatchesPath(relPath) {
		return false
	}
	return m.extensionAllowed(relPath) && DetectLanguage(relPath) != ""
}

// extensionAllowed applies the configured allow-list. Extension-less files
// pass through to the detector's special-filename table.
func (m *Manager) extensionAllowed(relPath string) bool {
	if len(m.allowExts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(relPath))
	if ext == "" {
		return true
	}
	return m.allowExts[ext]
}

// shouldIgnore checks the baseline and configured ignore globs. Directory
// paths also match patterns written with a /** suffix.
func (m *Manager) shouldIgnore(relPath string) bool {
	for _, cp := range m.ignore {
		if cp.glob.Match(relPath) || cp.glob.Match(relPath+"/**") {
			return true
		}
	}
	return false
}

// loadGitignore compiles the root's .gitignore if present.
func loadGitignore(root string) *ignore.GitIgnore {
	matcher, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return matcher
}
