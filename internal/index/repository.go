package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

// Repository is the persistent symbol store: a SQLite database holding the
// symbol table, an FTS5 shadow index kept in sync via triggers, the
// file-tracking table used for change detection, and a small metadata
// key-value table reserved for schema versioning.
//
// Every logical operation runs in its own transaction and commits before
// returning, so a search racing an in-progress build sees a consistent
// snapshot of whatever files have already been committed.
type Repository struct {
	db   *sql.DB
	path string
}

// OpenRepository opens (creating if necessary) the store at dbPath and
// ensures the schema exists. Schema creation is idempotent and safe to run
// on every startup.
func OpenRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps readers unblocked while a build is committing.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA cache_size=-20000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	repo := &Repository{db: db, path: dbPath}
	if err := repo.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the store's file path.
func (r *Repository) Path() string {
	return r.path
}

// DB exposes the underlying connection for read-only consumers.
func (r *Repository) DB() *sql.DB {
	return r.db
}

const createSymbolsTable = `
CREATE TABLE IF NOT EXISTS code_index (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    symbol_type TEXT NOT NULL,                   -- function, class, method, field, enum, ...
    file_path TEXT NOT NULL,                     -- relative to the indexed root
    line_number INTEGER NOT NULL,                -- 1-based
    column_number INTEGER NOT NULL DEFAULT 0,    -- 0-based
    end_line_number INTEGER,
    end_column_number INTEGER,
    language TEXT,
    signature TEXT,
    docstring TEXT,
    parent_symbol TEXT,
    scope TEXT,
    parameters TEXT,
    return_type TEXT,
    file_hash TEXT,                              -- SHA-256 of the source file
    source_code TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(file_path, symbol_type, name, line_number, end_line_number)
)
`

const createSymbolsFTSTable = `
CREATE VIRTUAL TABLE IF NOT EXISTS code_index_fts USING fts5(
    name,
    signature,
    docstring,
    parent_symbol,
    file_path,
    language,
    content='code_index',
    content_rowid='id',
    prefix='2 3 4'
)
`

const createIndexedFilesTable = `
CREATE TABLE IF NOT EXISTS indexed_files (
    file_path TEXT PRIMARY KEY,
    file_hash TEXT NOT NULL,
    symbol_count INTEGER NOT NULL DEFAULT 0,
    last_indexed TEXT DEFAULT CURRENT_TIMESTAMP
)
`

const createMetaTable = `
CREATE TABLE IF NOT EXISTS code_index_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
)
`

// schemaVersion is written into code_index_meta on creation; reserved for
// future migrations.
const schemaVersion = "1"

// createSchema creates all tables, indexes, and triggers. Uses CREATE IF
// NOT EXISTS throughout so it can run on every open.
func (r *Repository) createSchema() error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"code_index", createSymbolsTable},
		{"code_index_fts", createSymbolsFTSTable},
		{"indexed_files", createIndexedFilesTable},
		{"code_index_meta", createMetaTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range symbolIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	for i, trigger := range ftsSyncTriggers() {
		if _, err := tx.Exec(trigger); err != nil {
			return fmt.Errorf("failed to create trigger %d: %w", i+1, err)
		}
	}

	versionSQL := `
		INSERT INTO code_index_meta (key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO NOTHING
	`
	if _, err := tx.Exec(versionSQL, schemaVersion); err != nil {
		return fmt.Errorf("failed to bootstrap code_index_meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

func symbolIndexes() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_code_index_name ON code_index(name)",
		"CREATE INDEX IF NOT EXISTS idx_code_index_type ON code_index(symbol_type)",
		"CREATE INDEX IF NOT EXISTS idx_code_index_file_path ON code_index(file_path)",
		"CREATE INDEX IF NOT EXISTS idx_code_index_language ON code_index(language)",
		"CREATE INDEX IF NOT EXISTS idx_code_index_parent ON code_index(parent_symbol)",
		"CREATE INDEX IF NOT EXISTS idx_code_index_file_hash ON code_index(file_hash)",
	}
}

// ftsSyncTriggers mirror every code_index write into the FTS5 content
// table. The 'delete' command rows are the FTS5 external-content protocol
// for removing stale entries.
func ftsSyncTriggers() []string {
	return []string{
		`CREATE TRIGGER IF NOT EXISTS code_index_ai AFTER INSERT ON code_index BEGIN
			INSERT INTO code_index_fts(rowid, name, signature, docstring, parent_symbol, file_path, language)
			VALUES (new.id, new.name, new.signature, new.docstring, new.parent_symbol, new.file_path, new.language);
		END`,
		`CREATE TRIGGER IF NOT EXISTS code_index_ad AFTER DELETE ON code_index BEGIN
			INSERT INTO code_index_fts(code_index_fts, rowid, name, signature, docstring, parent_symbol, file_path, language)
			VALUES ('delete', old.id, old.name, old.signature, old.docstring, old.parent_symbol, old.file_path, old.language);
		END`,
		`CREATE TRIGGER IF NOT EXISTS code_index_au AFTER UPDATE ON code_index BEGIN
			INSERT INTO code_index_fts(code_index_fts, rowid, name, signature, docstring, parent_symbol, file_path, language)
			VALUES ('delete', old.id, old.name, old.signature, old.docstring, old.parent_symbol, old.file_path, old.language);
			INSERT INTO code_index_fts(rowid, name, signature, docstring, parent_symbol, file_path, language)
			VALUES (new.id, new.name, new.signature, new.docstring, new.parent_symbol, new.file_path, new.language);
		END`,
	}
}

// InsertSymbols batch-upserts symbols in one transaction. A conflict on the
// (file_path, symbol_type, name, line_number, end_line_number) uniqueness
// invariant replaces the existing row.
func (r *Repository) InsertSymbols(symbols []Symbol) error {
	if len(symbols) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin insert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO code_index (
			name, symbol_type, file_path, line_number, column_number,
			end_line_number, end_column_number, language, signature, docstring,
			parent_symbol, scope, parameters, return_type, file_hash, source_code
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, sym := range symbols {
		_, err := stmt.Exec(
			sym.Name, sym.SymbolType, sym.FilePath, sym.StartLine, sym.StartColumn,
			nullableInt(sym.EndLine), nullableInt(sym.EndColumn), sym.Language,
			sym.Signature, sym.Docstring, sym.ParentSymbol, sym.Scope,
			sym.Parameters, sym.ReturnType, sym.FileHash, sym.SourceCode,
		)
		if err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", sym.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert transaction: %w", err)
	}
	return nil
}

// DeleteSymbolsByFile removes all symbol rows for a path. Used before
// re-inserting a changed file's symbols.
func (r *Repository) DeleteSymbolsByFile(filePath string) error {
	if _, err := r.db.Exec("DELETE FROM code_index WHERE file_path = ?", filePath); err != nil {
		return fmt.Errorf("failed to delete symbols for %s: %w", filePath, err)
	}
	return nil
}

// CountSymbolsByFile returns the number of stored symbols for a path.
func (r *Repository) CountSymbolsByFile(filePath string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM code_index WHERE file_path = ?", filePath).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count symbols for %s: %w", filePath, err)
	}
	return count, nil
}

// symbolColumns are the code_index columns scanned into a Symbol.
var symbolColumns = []string{
	"ci.id", "ci.name", "ci.symbol_type", "ci.file_path",
	"ci.line_number", "ci.column_number", "ci.end_line_number", "ci.end_column_number",
	"ci.language", "ci.signature", "ci.docstring", "ci.parent_symbol",
	"ci.scope", "ci.parameters", "ci.return_type", "ci.file_hash",
	"ci.source_code", "ci.created_at", "ci.updated_at",
}

// Search runs a full-text query against the FTS5 shadow table, joined back
// to the symbol table, ranked by bm25 (best match first). Filters narrow by
// exact symbol_type, substring file pattern, and exact language.
//
// Searching an empty store returns an empty slice, never an error.
func (r *Repository) Search(query Query) ([]Symbol, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	match := ftsMatchExpr(query.Text)
	if match == "" {
		return []Symbol{}, nil
	}

	sqlQuery := sq.Select(symbolColumns...).
		From("code_index ci").
		Join("code_index_fts fts ON ci.id = fts.rowid").
		Where(sq.Expr("code_index_fts MATCH ?", match))

	if query.SymbolType != "" {
		sqlQuery = sqlQuery.Where(sq.Eq{"ci.symbol_type": query.SymbolType})
	}
	if query.FilePattern != "" {
		sqlQuery = sqlQuery.Where(sq.Like{"ci.file_path": "%" + query.FilePattern + "%"})
	}
	if query.Language != "" {
		sqlQuery = sqlQuery.Where(sq.Eq{"ci.language": query.Language})
	}

	sqlQuery = sqlQuery.OrderBy("bm25(code_index_fts)").Limit(uint64(limit))

	rows, err := sqlQuery.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to execute search query: %w", err)
	}
	defer rows.Close()

	return scanSymbols(rows)
}

// scanSymbols reads symbol rows into Symbol values.
func scanSymbols(rows *sql.Rows) ([]Symbol, error) {
	symbols := []Symbol{}
	for rows.Next() {
		var sym Symbol
		var endLine, endColumn sql.NullInt64
		var language, signature, docstring, parent, scope, parameters, returnType, fileHash, source sql.NullString
		var createdAt, updatedAt sql.NullString

		err := rows.Scan(
			&sym.ID, &sym.Name, &sym.SymbolType, &sym.FilePath,
			&sym.StartLine, &sym.StartColumn, &endLine, &endColumn,
			&language, &signature, &docstring, &parent,
			&scope, &parameters, &returnType, &fileHash,
			&source, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan symbol row: %w", err)
		}

		sym.EndLine = int(endLine.Int64)
		sym.EndColumn = int(endColumn.Int64)
		sym.Language = language.String
		sym.Signature = signature.String
		sym.Docstring = docstring.String
		sym.ParentSymbol = parent.String
		sym.Scope = scope.String
		sym.Parameters = parameters.String
		sym.ReturnType = returnType.String
		sym.FileHash = fileHash.String
		sym.SourceCode = source.String
		sym.CreatedAt = createdAt.String
		sym.UpdatedAt = updatedAt.String

		symbols = append(symbols, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search results: %w", err)
	}
	return symbols, nil
}

// ftsMatchExpr turns free text into an FTS5 MATCH expression. Each term is
// double-quoted so user input cannot inject FTS query syntax.
func ftsMatchExpr(text string) string {
	terms := strings.Fields(text)
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ReplaceAll(term, `"`, `""`)
		quoted = append(quoted, `"`+term+`"`)
	}
	return strings.Join(quoted, " ")
}

// GetFileHash returns the tracked content hash for a path. The second
// return is false when the file has never been indexed.
func (r *Repository) GetFileHash(filePath string) (string, bool, error) {
	var hash string
	err := r.db.QueryRow("SELECT file_hash FROM indexed_files WHERE file_path = ?", filePath).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query file hash for %s: %w", filePath, err)
	}
	return hash, true, nil
}

// UpdateFileTracking upserts the tracking row for a processed file.
func (r *Repository) UpdateFileTracking(filePath, fileHash string, symbolCount int) error {
	query := `
		INSERT INTO indexed_files (file_path, file_hash, symbol_count, last_indexed)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(file_path) DO UPDATE SET
			file_hash = excluded.file_hash,
			symbol_count = excluded.symbol_count,
			last_indexed = excluded.last_indexed
	`
	if _, err := r.db.Exec(query, filePath, fileHash, symbolCount); err != nil {
		return fmt.Errorf("failed to update file tracking for %s: %w", filePath, err)
	}
	return nil
}

// DeleteFileTracking removes the tracking row for a path.
func (r *Repository) DeleteFileTracking(filePath string) error {
	if _, err := r.db.Exec("DELETE FROM indexed_files WHERE file_path = ?", filePath); err != nil {
		return fmt.Errorf("failed to delete file tracking for %s: %w", filePath, err)
	}
	return nil
}

// GetIndexStats aggregates totals, per-type and per-language counts, and
// the most recent indexing timestamp.
func (r *Repository) GetIndexStats() (*IndexStats, error) {
	stats := &IndexStats{
		SymbolsByType:     make(map[string]int),
		SymbolsByLanguage: make(map[string]int),
	}

	if err := r.db.QueryRow("SELECT COUNT(*) FROM code_index").Scan(&stats.TotalSymbols); err != nil {
		return nil, fmt.Errorf("failed to count symbols: %w", err)
	}
	if err := r.db.QueryRow("SELECT COUNT(*) FROM indexed_files").Scan(&stats.TotalFiles); err != nil {
		return nil, fmt.Errorf("failed to count indexed files: %w", err)
	}

	byType, err := r.db.Query("SELECT symbol_type, COUNT(*) FROM code_index GROUP BY symbol_type")
	if err != nil {
		return nil, fmt.Errorf("failed to count symbols by type: %w", err)
	}
	defer byType.Close()
	for byType.Next() {
		var symbolType string
		var count int
		if err := byType.Scan(&symbolType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		stats.SymbolsByType[symbolType] = count
	}
	if err := byType.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate type counts: %w", err)
	}

	byLang, err := r.db.Query("SELECT COALESCE(language, ''), COUNT(*) FROM code_index GROUP BY language")
	if err != nil {
		return nil, fmt.Errorf("failed to count symbols by language: %w", err)
	}
	defer byLang.Close()
	for byLang.Next() {
		var language string
		var count int
		if err := byLang.Scan(&language, &count); err != nil {
			return nil, fmt.Errorf("failed to scan language count: %w", err)
		}
		stats.SymbolsByLanguage[language] = count
	}
	if err := byLang.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate language counts: %w", err)
	}

	var lastUpdated sql.NullString
	if err := r.db.QueryRow("SELECT MAX(last_indexed) FROM indexed_files").Scan(&lastUpdated); err != nil {
		return nil, fmt.Errorf("failed to query last indexed time: %w", err)
	}
	stats.LastUpdated = lastUpdated.String

	return stats, nil
}

// GetSymbolTypes returns the distinct symbol types present in the store.
func (r *Repository) GetSymbolTypes() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT symbol_type FROM code_index ORDER BY symbol_type")
	if err != nil {
		return nil, fmt.Errorf("failed to query symbol types: %w", err)
	}
	defer rows.Close()

	types := []string{}
	for rows.Next() {
		var symbolType string
		if err := rows.Scan(&symbolType); err != nil {
			return nil, fmt.Errorf("failed to scan symbol type: %w", err)
		}
		types = append(types, symbolType)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate symbol types: %w", err)
	}
	return types, nil
}

// ClearIndex deletes all symbol and file-tracking rows in one transaction.
func (r *Repository) ClearIndex() error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin clear transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM code_index"); err != nil {
		return fmt.Errorf("failed to clear symbols: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM indexed_files"); err != nil {
		return fmt.Errorf("failed to clear file tracking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear transaction: %w", err)
	}
	return nil
}

// requiredTables must all exist for the schema to validate.
var requiredTables = []string{"code_index", "code_index_fts", "indexed_files", "code_index_meta"}

// ValidateSchema checks that every required table exists and that the
// shadow index is declared as an FTS5 virtual table. A false return means
// "rebuild needed", not a hard failure.
func (r *Repository) ValidateSchema() bool {
	for _, table := range requiredTables {
		var name string
		err := r.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			return false
		}
	}

	var ddl sql.NullString
	err := r.db.QueryRow("SELECT sql FROM sqlite_master WHERE name = 'code_index_fts'").Scan(&ddl)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(ddl.String), "fts5")
}

// IndexExists reports whether a store file is present at dbPath. It is
// deliberately path-based so callers can check before creating the file.
func IndexExists(dbPath string) bool {
	info, err := os.Stat(dbPath)
	return err == nil && !info.IsDir()
}

// nullableInt maps the zero value to NULL for optional integer columns.
func nullableInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
