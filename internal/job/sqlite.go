package job

import (
	"database/sql"
	"fmt"
	"net/url"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the registry in a SQLite database so multiple
// pipeline stages can share it.
type SQLiteStore struct {
	db      *sql.DB
	stmtAdd *sql.Stmt
	mu      sync.Mutex
}

// OpenSQLiteStore opens (creating if needed) the registry database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// Registry writes are small and bursty; favor throughput over
	// durability the same way the rest of the pipeline does.
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		_ = db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS file_info (
		uri TEXT PRIMARY KEY,
		result TEXT NOT NULL,
		format TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_file_info_result ON file_info(result);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	stmt, err := db.Prepare(`INSERT OR REPLACE INTO file_info (uri, result, format) VALUES (?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}

	return &SQLiteStore{db: db, stmtAdd: stmt}, nil
}

// Add implements Store.
func (s *SQLiteStore) Add(fi FileInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.stmtAdd.Exec(fi.URI, fi.Result, fi.Format); err != nil {
		return fmt.Errorf("insert file info %s: %w", fi.URI, err)
	}
	return nil
}

// ResultURIs implements Store.
func (s *SQLiteStore) ResultURIs() (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT result FROM file_info`)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]struct{})
	for rows.Next() {
		var result string
		if err := rows.Scan(&result); err != nil {
			return nil, err
		}
		out[result] = struct{}{}
	}
	return out, rows.Err()
}

// ForResult implements Store.
func (s *SQLiteStore) ForResult(result *url.URL) (FileInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.db.QueryRow(`SELECT uri, result, format FROM file_info WHERE result = ? LIMIT 1`, result.String())
	var fi FileInfo
	if err := row.Scan(&fi.URI, &fi.Result, &fi.Format); err != nil {
		if err == sql.ErrNoRows {
			return FileInfo{}, false, nil
		}
		return FileInfo{}, false, fmt.Errorf("query file info: %w", err)
	}
	return fi, true, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	_ = s.stmtAdd.Close()
	return s.db.Close()
}
