// Package cache provides a read-through caching decorator for embedders.
//
// Embedding calls are network- or inference-bound, and ingestion re-embeds
// the same paragraph and query texts often. The cache memoizes text to
// vector mappings in a ristretto cache that is constructed explicitly and
// injected wherever an embedder is needed, instead of living in hidden
// process-global state.
package cache

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/sharan01x/move37-go/embedder"
)

// DefaultMaxEntries bounds the number of cached embeddings.
const DefaultMaxEntries = 10_000

// Embedder wraps an inner embedder with a ristretto cache keyed by the
// exact input text.
type Embedder struct {
	inner embedder.Embedder
	cache *ristretto.Cache
}

// New wraps inner with a cache holding at most maxEntries embeddings.
// Non-positive maxEntries selects DefaultMaxEntries.
func New(inner embedder.Embedder, maxEntries int64) (*Embedder, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("embedder cache: %w", err)
	}
	return &Embedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text, or embeds and caches it.
// Returned slices are copies; callers may mutate them freely.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		if vec, ok := cached.([]float32); ok {
			return append([]float32(nil), vec...), nil
		}
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Set(text, append([]float32(nil), vec...), 1)
	return vec, nil
}

// Dimensions returns the inner embedder's vector size.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Wait blocks until pending cache writes are applied. Mainly useful in
// tests that assert on hit behavior.
func (e *Embedder) Wait() {
	e.cache.Wait()
}

// Close releases the cache's resources.
func (e *Embedder) Close() {
	e.cache.Close()
}
