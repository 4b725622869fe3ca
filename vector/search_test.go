package vector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sharan01x/move37-go/vector"
)

// queryEmbedder maps query texts to fixed vectors.
type queryEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (q *queryEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if q.err != nil {
		return nil, q.err
	}
	if vec, ok := q.vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 0, 0}, nil
}

func (q *queryEmbedder) Dimensions() int { return 3 }

func TestSemanticSearch_BoundsAndOrdering(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	vectors := [][]float32{
		{1, 0, 0},      // identical to the query
		{0.9, 0.43, 0}, // close
		{0, 1, 0},      // orthogonal
	}
	metadata := []map[string]any{{"text": "exact"}, {"text": "close"}, {"text": "far"}}
	if _, err := store.AddVectors(ctx, vectors, metadata, "u1"); err != nil {
		t.Fatalf("Failed to add vectors: %v", err)
	}

	search := vector.NewSemanticSearch(store, &queryEmbedder{})
	results, err := search.Search(ctx, "anything", "u1")
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	for i, r := range results {
		if r.Similarity < 0 || r.Similarity > 1 {
			t.Errorf("Result %d similarity %g out of [0,1]", i, r.Similarity)
		}
		if i > 0 && r.Similarity > results[i-1].Similarity {
			t.Errorf("Results not sorted by descending similarity")
		}
	}
	if text, _ := results[0].Metadata["text"].(string); text != "exact" {
		t.Errorf("Expected nearest result first, got %v", results[0].Metadata)
	}
	if results[0].Similarity < 0.999 {
		t.Errorf("Identical vector should score ~1.0, got %g", results[0].Similarity)
	}
}

func TestSemanticSearch_MinScoreFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	vectors := [][]float32{{1, 0, 0}, {0, 1, 0}}
	if _, err := store.AddVectors(ctx, vectors, []map[string]any{{}, {}}, "u1"); err != nil {
		t.Fatalf("Failed to add vectors: %v", err)
	}

	search := vector.NewSemanticSearch(store, &queryEmbedder{})
	results, err := search.Search(ctx, "anything", "u1", vector.WithMinScore(0.9))
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected the orthogonal vector filtered out, got %d results", len(results))
	}
}

func TestSemanticSearch_TopKTruncates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < 8; i++ {
		if _, err := store.AddVectors(ctx, [][]float32{{1, 0, 0}}, []map[string]any{{}}, "u1"); err != nil {
			t.Fatalf("Failed to add vectors: %v", err)
		}
	}

	search := vector.NewSemanticSearch(store, &queryEmbedder{})
	results, err := search.Search(ctx, "anything", "u1", vector.WithTopK(3))
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("Expected 3 results, got %d", len(results))
	}
}

func TestSemanticSearch_UserFilter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// A record carrying someone else's user_id in its metadata: the
	// injection only fills the key when absent, so this is preserved.
	metadata := []map[string]any{{"user_id": "someone-else"}}
	if _, err := store.AddVectors(ctx, [][]float32{{1, 0, 0}}, metadata, "u1"); err != nil {
		t.Fatalf("Failed to add vectors: %v", err)
	}

	search := vector.NewSemanticSearch(store, &queryEmbedder{})

	results, err := search.Search(ctx, "anything", "u1")
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected foreign-owner result filtered, got %d results", len(results))
	}

	results, err = search.Search(ctx, "anything", "u1", vector.WithoutUserFilter())
	if err != nil {
		t.Fatalf("Failed to search without filter: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 result without user filter, got %d", len(results))
	}
}

func TestSemanticSearch_EmbedErrorPropagates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	wantErr := errors.New("provider down")
	search := vector.NewSemanticSearch(store, &queryEmbedder{err: wantErr})

	if _, err := search.Search(ctx, "anything", "u1"); !errors.Is(err, wantErr) {
		t.Errorf("Expected embedding error to propagate, got %v", err)
	}
}

func TestSemanticSearch_MissingUserID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	search := vector.NewSemanticSearch(store, &queryEmbedder{})
	if _, err := search.Search(ctx, "anything", ""); !errors.Is(err, vector.ErrMissingUserID) {
		t.Errorf("Expected ErrMissingUserID, got %v", err)
	}
}
