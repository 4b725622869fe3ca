package vector

import (
	"context"
	"fmt"
	"math"

	"github.com/sharan01x/move37-go/embedder"
)

// DefaultTopK is the default number of results returned by SemanticSearch.
const DefaultTopK = 5

// overfetchFactor inflates the inner k so post-filtering (min score, user
// filter) still leaves enough results to fill topK.
const overfetchFactor = 4

// ScoredResult is one semantic search match. Similarity is derived
// deterministically from the index distance as 1 - min(distance, 1),
// clamped to [0, 1]; it is never recomputed from raw vectors.
type ScoredResult struct {
	ID         string
	Metadata   map[string]any
	Similarity float64
}

// SemanticSearch wraps a Store with query embedding, score normalization
// and filtering. An embedding failure here propagates to the caller; there
// is no fallback at this layer.
type SemanticSearch struct {
	store    *Store
	embedder embedder.Embedder
}

// NewSemanticSearch creates a SemanticSearch over the given store and
// embedding provider.
func NewSemanticSearch(store *Store, e embedder.Embedder) *SemanticSearch {
	return &SemanticSearch{store: store, embedder: e}
}

type searchOptions struct {
	topK         int
	minScore     float64
	filterByUser bool
}

// SearchOption configures one Search call.
type SearchOption func(*searchOptions)

// WithTopK sets the maximum number of results (default DefaultTopK).
func WithTopK(k int) SearchOption {
	return func(o *searchOptions) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithMinScore discards results whose similarity is below score
// (default 0, keep everything).
func WithMinScore(score float64) SearchOption {
	return func(o *searchOptions) { o.minScore = score }
}

// WithoutUserFilter disables the metadata user_id check on results. The
// namespace itself still isolates users; this only skips the metadata
// post-filter.
func WithoutUserFilter() SearchOption {
	return func(o *searchOptions) { o.filterByUser = false }
}

// Search embeds the query, searches the user's namespace with an inflated
// inner k, and returns at most topK results sorted by descending
// similarity.
func (s *SemanticSearch) Search(ctx context.Context, query string, userID string, opts ...SearchOption) ([]ScoredResult, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	o := searchOptions{topK: DefaultTopK, filterByUser: true}
	for _, opt := range opts {
		opt(&o)
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	raw, err := s.store.SearchVectors(ctx, queryVec, o.topK*overfetchFactor, userID)
	if err != nil {
		return nil, err
	}

	results := make([]ScoredResult, 0, o.topK)
	for _, r := range raw {
		similarity := 1 - math.Min(r.Distance, 1)
		if similarity < 0 {
			similarity = 0
		} else if similarity > 1 {
			similarity = 1
		}

		if similarity < o.minScore {
			continue
		}
		if o.filterByUser {
			owner, _ := r.Metadata[MetaUserID].(string)
			if owner != userID {
				continue
			}
		}

		results = append(results, ScoredResult{
			ID:         r.ID,
			Metadata:   r.Metadata,
			Similarity: similarity,
		})
		if len(results) == o.topK {
			break
		}
	}
	return results, nil
}
