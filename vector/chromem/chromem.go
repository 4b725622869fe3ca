// Package chromem backs a vector namespace with chromem-go, an embedded
// pure-Go vector database with its own persistence. It implements the same
// vector.Index contract as the default flat index and is selected through
// vector.WithIndexOpener.
//
// chromem metadata values are strings, so non-string metadata (chunk
// offsets, indexes) round-trips as its JSON encoding with this backend.
// The default flat index preserves metadata as stored.
package chromem

import (
	"context"
	"encoding/json"
	"fmt"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/sharan01x/move37-go/vector"
)

// collectionName is the single collection held per namespace database.
const collectionName = "records"

// Opener returns a vector.IndexOpener that persists each namespace as a
// chromem database in its namespace directory. compress enables gzip on
// the persisted files.
func Opener(compress bool) vector.IndexOpener {
	return func(dir string, dimension int) (vector.Index, error) {
		db, err := chromemgo.NewPersistentDB(dir, compress)
		if err != nil {
			return nil, fmt.Errorf("chromem: open db: %w", err)
		}
		col, err := db.GetOrCreateCollection(collectionName, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("chromem: open collection: %w", err)
		}
		return &index{col: col}, nil
	}
}

// index adapts one chromem collection to the vector.Index contract.
type index struct {
	col *chromemgo.Collection
}

func (i *index) Add(ctx context.Context, records []vector.Record) error {
	for _, rec := range records {
		doc := chromemgo.Document{
			ID:        rec.ID,
			Content:   documentContent(rec),
			Embedding: rec.Vector,
			Metadata:  flatten(rec.Metadata),
		}
		if err := i.col.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("chromem: add document: %w", err)
		}
	}
	return nil
}

func (i *index) Search(ctx context.Context, query []float32, k int) ([]vector.SearchResult, error) {
	// chromem rejects nResults larger than the collection.
	if count := i.col.Count(); k > count {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	matches, err := i.col.QueryEmbedding(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: query: %w", err)
	}

	results := make([]vector.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, vector.SearchResult{
			ID:       m.ID,
			Metadata: unflatten(m.Metadata),
			// chromem reports cosine similarity; the index contract is
			// cosine distance.
			Distance: 1 - float64(m.Similarity),
		})
	}
	return results, nil
}

func (i *index) Delete(ctx context.Context, ids []string) (bool, error) {
	before := i.col.Count()
	if err := i.col.Delete(ctx, nil, nil, ids...); err != nil {
		return false, fmt.Errorf("chromem: delete: %w", err)
	}
	return i.col.Count() != before, nil
}

func (i *index) Count() int {
	return i.col.Count()
}

// documentContent picks the chunk text as the chromem document body,
// falling back to the record id for records without text metadata.
func documentContent(rec vector.Record) string {
	if text, ok := rec.Metadata["text"].(string); ok && text != "" {
		return text
	}
	return rec.ID
}

// flatten converts open metadata to chromem's string map. Non-string
// values are JSON-encoded.
func flatten(metadata map[string]any) map[string]string {
	flat := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if s, ok := v.(string); ok {
			flat[k] = s
			continue
		}
		if encoded, err := json.Marshal(v); err == nil {
			flat[k] = string(encoded)
		}
	}
	return flat
}

func unflatten(metadata map[string]string) map[string]any {
	open := make(map[string]any, len(metadata))
	for k, v := range metadata {
		open[k] = v
	}
	return open
}
