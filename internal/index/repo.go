package index

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
)

// Document is one indexed note, keyed by its absolute filesystem path.
// Mtime is the filesystem modification time observed at the last successful
// extraction; it never runs ahead of the content actually indexed.
type Document struct {
	Path     string
	Filename string // searchable tokens derived from the path components
	Title    string
	Content  string
	Tags     []string
	Mtime    time.Time
}

// Hit is one ranked search result.
type Hit struct {
	Document
	Score float64
}

// Weights are the per-field relevance boosts applied to ranking.
type Weights struct {
	Path     float64
	Filename float64
	Title    float64
	Content  float64
	Tags     float64
}

// Upsert inserts or replaces a document and its FTS entry within a
// transaction, so a failed write never leaves the two out of step.
func (db *DB) Upsert(doc Document) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(doc.Tags)

	_, err = tx.Exec(`
		INSERT INTO documents (path, filename, title, content, tags, mtime)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			filename = excluded.filename,
			title    = excluded.title,
			content  = excluded.content,
			tags     = excluded.tags,
			mtime    = excluded.mtime
	`, doc.Path, doc.Filename, doc.Title, doc.Content, string(tagsJSON), doc.Mtime)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	_, _ = tx.Exec(`DELETE FROM documents_fts WHERE path = ?`, doc.Path)
	_, err = tx.Exec(`
		INSERT INTO documents_fts (path, filename, title, content, tags)
		VALUES (?, ?, ?, ?, ?)
	`, doc.Path, doc.Filename, doc.Title, doc.Content, joinTags(doc.Tags))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}

	return tx.Commit()
}

// ByPath returns the stored document for path, or nil when absent. A
// duplicate FTS entry for the path means the index is corrupt.
func (db *DB) ByPath(path string) (*Document, error) {
	var dups int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents_fts WHERE path = ?`, path).Scan(&dups); err != nil {
		return nil, fmt.Errorf("index: lookup %s: %w", path, err)
	}
	if dups > 1 {
		return nil, fmt.Errorf("index: %d entries for %s: %w", dups, path, apperr.ErrDuplicatePath)
	}

	rows, err := db.conn.Query(`
		SELECT path, filename, title, content, tags, mtime
		FROM documents WHERE path = ?
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: lookup %s: %w", path, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	doc, err := scanDocument(rows)
	if err != nil {
		return nil, err
	}
	return &doc, rows.Err()
}

// All returns every stored document, newest modification first.
func (db *DB) All() ([]Document, error) {
	rows, err := db.conn.Query(`
		SELECT path, filename, title, content, tags, mtime
		FROM documents ORDER BY mtime DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("index: list: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Search runs an FTS5 match ranked by bm25 with the given column weights.
// A non-positive limit returns every hit.
func (db *DB) Search(match string, w Weights, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := db.conn.Query(`
		SELECT d.path, d.filename, d.title, d.content, d.tags, d.mtime,
		       bm25(documents_fts, ?, ?, ?, ?, ?) AS rank
		FROM documents_fts
		JOIN documents d ON d.path = documents_fts.path
		WHERE documents_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, w.Path, w.Filename, w.Title, w.Content, w.Tags, match, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []Hit
	for rows.Next() {
		var h Hit
		var tagsJSON string
		var rank float64
		if err := rows.Scan(&h.Path, &h.Filename, &h.Title, &h.Content, &tagsJSON, &h.Mtime, &rank); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &h.Tags)
		h.Score = -rank // bm25 ranks better matches more negative
		out = append(out, h)
	}
	return out, rows.Err()
}

// Terms returns the FTS vocabulary with per-term document frequencies.
func (db *DB) Terms() (map[string]int, error) {
	rows, err := db.conn.Query(`SELECT term, doc FROM documents_vocab`)
	if err != nil {
		return nil, fmt.Errorf("index: vocabulary: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var term string
		var doc int
		if err := rows.Scan(&term, &doc); err != nil {
			return nil, err
		}
		out[term] = doc
	}
	return out, rows.Err()
}

// Count returns the number of stored documents.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(rows rowScanner) (Document, error) {
	var doc Document
	var tagsJSON string
	if err := rows.Scan(&doc.Path, &doc.Filename, &doc.Title, &doc.Content, &tagsJSON, &doc.Mtime); err != nil {
		return Document{}, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &doc.Tags)
	return doc, nil
}

func joinTags(tags []string) string {
	return strings.Join(tags, " ")
}
