package vector_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sharan01x/move37-go/vector"
)

func newTestStore(t *testing.T) *vector.Store {
	t.Helper()
	store, err := vector.NewStore(t.TempDir(), 3)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	ids, err := store.AddVectors(ctx, [][]float32{{1, 0, 0}}, []map[string]any{{"text": "a"}}, "u1")
	if err != nil {
		t.Fatalf("Failed to add vectors: %v", err)
	}
	if len(ids) != 1 || ids[0] == "" {
		t.Fatalf("Expected one non-empty id, got %v", ids)
	}

	results, err := store.SearchVectors(ctx, []float32{1, 0, 0}, 1, "u1")
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.ID != ids[0] {
		t.Errorf("Result id %q, want %q", r.ID, ids[0])
	}
	if math.Abs(r.Distance) > 1e-6 {
		t.Errorf("Expected distance 0 for identical vector, got %g", r.Distance)
	}
	if owner, _ := r.Metadata["user_id"].(string); owner != "u1" {
		t.Errorf("Expected injected user_id, got %v", r.Metadata["user_id"])
	}
	if recordID, _ := r.Metadata["record_id"].(string); recordID != ids[0] {
		t.Errorf("Expected injected record_id %q, got %v", ids[0], r.Metadata["record_id"])
	}
}

func TestStore_ProvidedRecordIDIsKept(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	ids, err := store.AddVectors(ctx, [][]float32{{1, 0, 0}}, []map[string]any{{"record_id": "custom-id"}}, "u1")
	if err != nil {
		t.Fatalf("Failed to add vectors: %v", err)
	}
	if ids[0] != "custom-id" {
		t.Errorf("Expected provided id to be kept, got %q", ids[0])
	}
}

func TestStore_MissingUserID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.AddVectors(ctx, [][]float32{{1, 0, 0}}, []map[string]any{{}}, ""); !errors.Is(err, vector.ErrMissingUserID) {
		t.Errorf("AddVectors: expected ErrMissingUserID, got %v", err)
	}
	if _, err := store.SearchVectors(ctx, []float32{1, 0, 0}, 1, ""); !errors.Is(err, vector.ErrMissingUserID) {
		t.Errorf("SearchVectors: expected ErrMissingUserID, got %v", err)
	}
	if _, err := store.DeleteVectors(ctx, []string{"x"}, ""); !errors.Is(err, vector.ErrMissingUserID) {
		t.Errorf("DeleteVectors: expected ErrMissingUserID, got %v", err)
	}
}

func TestStore_DimensionMismatchRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.AddVectors(ctx,
		[][]float32{{1, 0, 0}, {1, 0}},
		[]map[string]any{{}, {}},
		"u1")

	var mismatch *vector.DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Expected DimensionMismatchError, got %v", err)
	}
	if mismatch.Expected != 3 || mismatch.Actual != 2 {
		t.Errorf("Unexpected mismatch detail: %+v", mismatch)
	}

	// Atomic rejection: the valid vector must not have been written.
	results, err := store.SearchVectors(ctx, []float32{1, 0, 0}, 10, "u1")
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty namespace after rejected batch, got %d results", len(results))
	}
}

func TestStore_CountMismatch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.AddVectors(ctx, [][]float32{{1, 0, 0}}, nil, "u1")
	if !errors.Is(err, vector.ErrCountMismatch) {
		t.Errorf("Expected ErrCountMismatch, got %v", err)
	}
}

func TestStore_DeleteRemovesResults(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	ids, err := store.AddVectors(ctx,
		[][]float32{{1, 0, 0}, {0, 1, 0}},
		[]map[string]any{{}, {}},
		"u1")
	if err != nil {
		t.Fatalf("Failed to add vectors: %v", err)
	}

	modified, err := store.DeleteVectors(ctx, ids[:1], "u1")
	if err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if !modified {
		t.Error("Expected delete to report modification")
	}

	results, err := store.SearchVectors(ctx, []float32{1, 0, 0}, 10, "u1")
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	for _, r := range results {
		if r.ID == ids[0] {
			t.Errorf("Deleted record %q still returned", ids[0])
		}
	}

	// Deleting the same id again finds nothing.
	modified, err = store.DeleteVectors(ctx, ids[:1], "u1")
	if err != nil {
		t.Fatalf("Failed to re-delete: %v", err)
	}
	if modified {
		t.Error("Expected second delete to report no modification")
	}
}

func TestStore_NamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.AddVectors(ctx, [][]float32{{1, 0, 0}}, []map[string]any{{}}, "u1"); err != nil {
		t.Fatalf("Failed to add vectors: %v", err)
	}

	results, err := store.SearchVectors(ctx, []float32{1, 0, 0}, 10, "u2")
	if err != nil {
		t.Fatalf("Search on empty namespace should not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("u2 sees %d of u1's records", len(results))
	}
}

func TestStore_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := vector.NewStore(dir, 3)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	ids, err := store.AddVectors(ctx, [][]float32{{0, 0, 1}}, []map[string]any{{"text": "kept"}}, "u1")
	if err != nil {
		t.Fatalf("Failed to add vectors: %v", err)
	}

	// Simulate a restart: a fresh store over the same base path.
	reopened, err := vector.NewStore(dir, 3)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	results, err := reopened.SearchVectors(ctx, []float32{0, 0, 1}, 1, "u1")
	if err != nil {
		t.Fatalf("Failed to search reopened store: %v", err)
	}
	if len(results) != 1 || results[0].ID != ids[0] {
		t.Fatalf("Expected persisted record after restart, got %v", results)
	}
	if text, _ := results[0].Metadata["text"].(string); text != "kept" {
		t.Errorf("Expected metadata to survive restart, got %v", results[0].Metadata)
	}
}

func TestStore_CorruptIndexKeepsReadablePrefix(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := vector.NewStore(dir, 3)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	ids, err := store.AddVectors(ctx, [][]float32{{1, 0, 0}}, []map[string]any{{}}, "u1")
	if err != nil {
		t.Fatalf("Failed to add vectors: %v", err)
	}

	// Corrupt the tail of the persisted file, as a crash mid-append would.
	indexPath := filepath.Join(dir, "user_u1", "index.jsonl")
	f, err := os.OpenFile(indexPath, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("Failed to open index file: %v", err)
	}
	if _, err := f.WriteString("{\"id\":\"half-written"); err != nil {
		t.Fatalf("Failed to corrupt index: %v", err)
	}
	f.Close()

	reopened, err := vector.NewStore(dir, 3)
	if err != nil {
		t.Fatalf("Reopen after corruption should not fail: %v", err)
	}
	results, err := reopened.SearchVectors(ctx, []float32{1, 0, 0}, 10, "u1")
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 1 || results[0].ID != ids[0] {
		t.Fatalf("Expected the readable record to survive, got %v", results)
	}

	// The namespace must remain writable after recovery.
	if _, err := reopened.AddVectors(ctx, [][]float32{{0, 1, 0}}, []map[string]any{{}}, "u1"); err != nil {
		t.Errorf("Add after recovery failed: %v", err)
	}
}

func TestStore_DeleteNamespace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := vector.NewStore(dir, 3)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if _, err := store.AddVectors(ctx, [][]float32{{1, 0, 0}}, []map[string]any{{}}, "u1"); err != nil {
		t.Fatalf("Failed to add vectors: %v", err)
	}

	if err := store.DeleteNamespace("u1"); err != nil {
		t.Fatalf("Failed to delete namespace: %v", err)
	}

	reopened, err := vector.NewStore(dir, 3)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	results, err := reopened.SearchVectors(ctx, []float32{1, 0, 0}, 10, "u1")
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty namespace after deletion, got %d results", len(results))
	}
}

func TestStore_ResultsSortedByDistance(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	vectors := [][]float32{{0, 1, 0}, {1, 0, 0}, {0.9, 0.1, 0}}
	if _, err := store.AddVectors(ctx, vectors, []map[string]any{{}, {}, {}}, "u1"); err != nil {
		t.Fatalf("Failed to add vectors: %v", err)
	}

	results, err := store.SearchVectors(ctx, []float32{1, 0, 0}, 3, "u1")
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Errorf("Results not sorted by ascending distance: %v", results)
		}
	}
	if math.Abs(results[0].Distance) > 1e-6 {
		t.Errorf("Nearest result should have distance 0, got %g", results[0].Distance)
	}
}
