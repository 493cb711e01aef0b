// Package index provides the SQLite FTS5 implementation of the persistent
// note index. Building requires the sqlite_fts5 tag on mattn/go-sqlite3.
package index

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/ansuz/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	path     TEXT PRIMARY KEY,
	filename TEXT NOT NULL DEFAULT '',
	title    TEXT NOT NULL DEFAULT '',
	content  TEXT NOT NULL DEFAULT '',
	tags     TEXT NOT NULL DEFAULT '[]',
	mtime    DATETIME NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
	path,
	filename,
	title,
	content,
	tags,
	tokenize = 'unicode61 remove_diacritics 2'
);

CREATE VIRTUAL TABLE IF NOT EXISTS documents_vocab USING fts5vocab('documents_fts', 'row');
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Exists reports whether an index database is present at path. Its absence
// is the public signal that a full build must run first.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Open attaches to an existing index. A missing database is
// apperr.ErrIndexNotFound, not an excuse to create one implicitly.
func Open(path string) (*DB, error) {
	if !Exists(path) {
		return nil, fmt.Errorf("index: open %s: %w", path, apperr.ErrIndexNotFound)
	}
	return open(path)
}

// Create destructively (re)initializes the index at path and opens it.
func Create(path string) (*DB, error) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("index: remove %s: %w", p, err)
		}
	}
	return open(path)
}

func open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
