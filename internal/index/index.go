package index

// Store is the capability interface over the persistent full-text index.
// Consumers (planner, query engine, servers) depend on this interface
// rather than the concrete *DB type, so any conforming engine can be
// substituted and tests can mock it.
type Store interface {
	// Upsert inserts or replaces the document keyed by its unique path.
	Upsert(doc Document) error
	// ByPath returns the document for path, or nil when absent. More than
	// one stored match is an invariant violation (apperr.ErrDuplicatePath).
	ByPath(path string) (*Document, error)
	// All returns every stored document, newest modification first.
	All() ([]Document, error)
	// Search runs a ranked full-text match with per-field weights. A
	// non-positive limit means unlimited.
	Search(match string, w Weights, limit int) ([]Hit, error)
	// Terms returns the index vocabulary with per-term document frequencies.
	Terms() (map[string]int, error)
	// Count returns the number of stored documents.
	Count() (int, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
