package vector

import "context"

// Metadata keys injected by the store.
const (
	// MetaUserID is the namespace owner, injected if absent.
	MetaUserID = "user_id"

	// MetaRecordID is the record's unique id, assigned at insertion if the
	// caller did not provide one.
	MetaRecordID = "record_id"
)

// Record is one stored vector with its open key-value metadata.
type Record struct {
	ID       string         `json:"id"`
	Vector   []float32      `json:"vector"`
	Metadata map[string]any `json:"metadata"`
}

// SearchResult is one ranked match from a namespace index. Distance is the
// raw cosine distance (0 = identical direction); results are ordered by
// ascending distance.
type SearchResult struct {
	ID       string
	Metadata map[string]any
	Distance float64
}

// Index is a single-namespace nearest-neighbor index over fixed-dimension
// vectors. Implementations are not safe for concurrent use on their own;
// the Store serializes access per namespace (writers exclusive, readers
// shared).
//
// The default implementation is the flat persisted index in this package.
// The chromem subpackage provides an embedded-database alternative.
type Index interface {
	// Add appends records and persists them before returning. Vector
	// dimensions are validated by the Store before Add is called.
	Add(ctx context.Context, records []Record) error

	// Search returns at most k nearest records by ascending distance. An
	// empty index returns an empty result, not an error.
	Search(ctx context.Context, query []float32, k int) ([]SearchResult, error)

	// Delete removes the records with the given ids and persists the
	// remainder. It reports whether the index was modified.
	Delete(ctx context.Context, ids []string) (bool, error)

	// Count returns the number of stored records.
	Count() int
}

// IndexOpener creates or reloads the Index persisted in dir for one
// namespace. It is called once per namespace, under the store lock.
type IndexOpener func(dir string, dimension int) (Index, error)
