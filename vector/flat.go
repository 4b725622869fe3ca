package vector

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// indexFileName is the on-disk index file inside each namespace directory.
const indexFileName = "index.jsonl"

// flatIndex is the default Index implementation: an in-memory slice of
// records scanned linearly per query, persisted as one JSON record per
// line. Adds append to the file; deletes rebuild it.
type flatIndex struct {
	path    string
	records []Record
}

// OpenFlatIndex creates or reloads the flat index persisted in dir. It is
// the store's default IndexOpener.
//
// If the persisted file has unreadable trailing content (for example after
// a crash mid-append), the readable prefix is kept, the rest is dropped,
// and the loss is logged.
func OpenFlatIndex(dir string, dimension int) (Index, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create namespace dir: %w", err)
	}

	f := &flatIndex{path: filepath.Join(dir, indexFileName)}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *flatIndex) load() error {
	file, err := os.Open(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1<<20), 16<<20)

	truncated := false
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			log.Printf("[VECTOR] Corrupt record in %s, keeping %d readable records: %v",
				f.path, len(f.records), err)
			truncated = true
			break
		}
		f.records = append(f.records, rec)
	}
	if err := scanner.Err(); err != nil {
		log.Printf("[VECTOR] Unreadable tail in %s, keeping %d readable records: %v",
			f.path, len(f.records), err)
		truncated = true
	}

	if truncated {
		// Rewrite so later appends don't land after garbage.
		return f.rewrite()
	}
	return nil
}

// Add appends records to memory and to disk, syncing before returning.
func (f *flatIndex) Add(ctx context.Context, records []Record) error {
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open index for append: %w", err)
	}
	enc := json.NewEncoder(file)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			file.Close()
			return fmt.Errorf("append record: %w", err)
		}
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync index: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	f.records = append(f.records, records...)
	return nil
}

// Search scans all records and returns the k nearest by cosine distance,
// ascending. Ties keep insertion order.
func (f *flatIndex) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	if k <= 0 || len(f.records) == 0 {
		return nil, nil
	}

	results := make([]SearchResult, 0, len(f.records))
	for _, rec := range f.records {
		results = append(results, SearchResult{
			ID:       rec.ID,
			Metadata: rec.Metadata,
			Distance: cosineDistance(query, rec.Vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Delete removes the given ids and rebuilds the persisted file. This is an
// O(index size) rebuild, not tombstoning.
func (f *flatIndex) Delete(ctx context.Context, ids []string) (bool, error) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := f.records[:0:0]
	for _, rec := range f.records {
		if _, ok := drop[rec.ID]; !ok {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(f.records) {
		return false, nil
	}

	previous := f.records
	f.records = kept
	if err := f.rewrite(); err != nil {
		f.records = previous
		return false, err
	}
	return true, nil
}

func (f *flatIndex) Count() int {
	return len(f.records)
}

// rewrite replaces the persisted file with the current record set. The new
// content lands in a temp file first and is renamed into place so readers
// never observe a half-written index.
func (f *flatIndex) rewrite() error {
	tmp := f.path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open temp index: %w", err)
	}
	enc := json.NewEncoder(file)
	for _, rec := range f.records {
		if err := enc.Encode(rec); err != nil {
			file.Close()
			return fmt.Errorf("write temp index: %w", err)
		}
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync temp index: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close temp index: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

// cosineDistance computes 1 - cosine similarity. Mismatched lengths and
// zero vectors yield the maximum meaningful distance of 1.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 1
	}
	return 1 - dot/denom
}
