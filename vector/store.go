package vector

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// namespace pairs one user's index with its lock. Writers take the lock
// exclusively because append and rebuild are not safe under concurrent
// mutation; readers share it.
type namespace struct {
	mu    sync.RWMutex
	index Index
}

// Store manages one Index per user namespace. Namespaces are created
// lazily on first use and persist under basePath across restarts.
// Operations on different namespaces never contend with each other.
type Store struct {
	basePath  string
	dimension int
	opener    IndexOpener

	mu         sync.RWMutex
	namespaces map[string]*namespace
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIndexOpener swaps the per-namespace index backend. The default is
// OpenFlatIndex.
func WithIndexOpener(opener IndexOpener) StoreOption {
	return func(s *Store) { s.opener = opener }
}

// NewStore creates a Store rooted at basePath. Every vector passed to or
// loaded by the store must have exactly dimension elements.
func NewStore(basePath string, dimension int, opts ...StoreOption) (*Store, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("vector: invalid dimension %d", dimension)
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	s := &Store{
		basePath:   basePath,
		dimension:  dimension,
		opener:     OpenFlatIndex,
		namespaces: make(map[string]*namespace),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dimension returns the store's fixed embedding dimension.
func (s *Store) Dimension() int {
	return s.dimension
}

// resolveNamespace returns the namespace for a user, creating and loading
// it on first use. All read and write paths go through here so isolation
// and locking live in one place.
func (s *Store) resolveNamespace(userID string) (*namespace, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	s.mu.RLock()
	ns, exists := s.namespaces[userID]
	s.mu.RUnlock()
	if exists {
		return ns, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if ns, exists := s.namespaces[userID]; exists {
		return ns, nil
	}

	index, err := s.opener(s.namespaceDir(userID), s.dimension)
	if err != nil {
		return nil, fmt.Errorf("open namespace for %q: %w", userID, err)
	}

	ns = &namespace{index: index}
	s.namespaces[userID] = ns
	return ns, nil
}

// namespaceDir derives the deterministic on-disk location for a user id.
func (s *Store) namespaceDir(userID string) string {
	return filepath.Join(s.basePath, "user_"+url.PathEscape(userID))
}

// AddVectors stores a batch of vectors with their metadata in the user's
// namespace and returns the record ids in input order.
//
// Ids are taken from the metadata "record_id" entry when present, otherwise
// assigned fresh; "user_id" is injected into each metadata entry if absent.
// The batch is validated before anything is written: a single mismatched
// dimension rejects the whole call. The updated index is durable on disk
// before AddVectors returns.
func (s *Store) AddVectors(ctx context.Context, vectors [][]float32, metadata []map[string]any, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if len(vectors) != len(metadata) {
		return nil, fmt.Errorf("%w: %d vectors, %d metadata", ErrCountMismatch, len(vectors), len(metadata))
	}
	for _, vec := range vectors {
		if len(vec) != s.dimension {
			return nil, &DimensionMismatchError{Expected: s.dimension, Actual: len(vec)}
		}
	}

	ns, err := s.resolveNamespace(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(vectors))
	records := make([]Record, len(vectors))
	for i, vec := range vectors {
		meta := make(map[string]any, len(metadata[i])+2)
		for k, v := range metadata[i] {
			meta[k] = v
		}

		id, ok := meta[MetaRecordID].(string)
		if !ok || id == "" {
			id = uuid.New().String()
		}
		meta[MetaRecordID] = id
		if _, ok := meta[MetaUserID]; !ok {
			meta[MetaUserID] = userID
		}

		ids[i] = id
		records[i] = Record{
			ID:       id,
			Vector:   append([]float32(nil), vec...),
			Metadata: meta,
		}
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()

	if err := ns.index.Add(ctx, records); err != nil {
		return nil, fmt.Errorf("add vectors for %q: %w", userID, err)
	}

	log.Printf("[VECTOR] Added %d records for user=%s (total %d)", len(records), userID, ns.index.Count())
	return ids, nil
}

// SearchVectors returns at most k nearest records in the user's namespace,
// ordered by ascending distance. An empty or never-used namespace returns
// an empty result, not an error.
func (s *Store) SearchVectors(ctx context.Context, query []float32, k int, userID string) ([]SearchResult, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if len(query) != s.dimension {
		return nil, &DimensionMismatchError{Expected: s.dimension, Actual: len(query)}
	}

	ns, err := s.resolveNamespace(userID)
	if err != nil {
		return nil, err
	}

	ns.mu.RLock()
	defer ns.mu.RUnlock()

	results, err := ns.index.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("search vectors for %q: %w", userID, err)
	}
	return results, nil
}

// DeleteVectors removes the records with the given ids from the user's
// namespace. It returns true if the index was modified and false if no ids
// matched. Deletion rebuilds the persisted index, so it is O(index size).
func (s *Store) DeleteVectors(ctx context.Context, ids []string, userID string) (bool, error) {
	if userID == "" {
		return false, ErrMissingUserID
	}

	ns, err := s.resolveNamespace(userID)
	if err != nil {
		return false, err
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()

	modified, err := ns.index.Delete(ctx, ids)
	if err != nil {
		return false, fmt.Errorf("delete vectors for %q: %w", userID, err)
	}
	if modified {
		log.Printf("[VECTOR] Deleted records for user=%s (total %d)", userID, ns.index.Count())
	}
	return modified, nil
}

// DeleteNamespace removes a user's entire index, in memory and on disk.
func (s *Store) DeleteNamespace(userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.namespaces, userID)
	if err := os.RemoveAll(s.namespaceDir(userID)); err != nil {
		return fmt.Errorf("delete namespace for %q: %w", userID, err)
	}
	log.Printf("[VECTOR] Deleted namespace for user=%s", userID)
	return nil
}
