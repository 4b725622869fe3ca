package memory

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sharan01x/move37-go/chunk"
	"github.com/sharan01x/move37-go/embedder"
	"github.com/sharan01x/move37-go/vector"
)

// Config holds Manager configuration.
type Config struct {
	// Enabled toggles the memory system. When false, Remember and Recall
	// are no-ops and Retrieve returns an empty block.
	Enabled bool

	// TopK is the number of memories returned per recall.
	// Default: 5
	TopK int

	// MinScore is the minimum similarity for recall [0.0-1.0].
	// Default: 0.0 (keep everything)
	// Note: small local models (all-MiniLM-L6-v2) produce lower scores
	// than API models, so tune this per embedder.
	MinScore float64

	// SimilarityThreshold is the adjacent-paragraph similarity below
	// which the chunker places a boundary.
	// Default: chunk.DefaultSimilarityThreshold
	SimilarityThreshold float64
}

// DefaultConfig returns sensible defaults.
var DefaultConfig = &Config{
	Enabled:             true,
	TopK:                vector.DefaultTopK,
	MinScore:            0.0,
	SimilarityThreshold: chunk.DefaultSimilarityThreshold,
}

// Manager orchestrates chunking, embedding, storage and retrieval for one
// application. It is safe for concurrent use.
type Manager struct {
	chunker  *chunk.SemanticChunker
	store    *vector.Store
	search   *vector.SemanticSearch
	embedder embedder.Embedder
	config   *Config
}

// NewManager creates a Manager over the given store and embedding
// provider. A nil config selects DefaultConfig.
func NewManager(store *vector.Store, e embedder.Embedder, config *Config) *Manager {
	if config == nil {
		config = DefaultConfig
	}
	return &Manager{
		chunker:  chunk.NewSemanticChunker(e, config.SimilarityThreshold),
		store:    store,
		search:   vector.NewSemanticSearch(store, e),
		embedder: e,
		config:   config,
	}
}

// Remember chunks text semantically, embeds each chunk, and stores the
// results in the user's namespace. It returns the stored record ids in
// chunk order. An embedding failure during storage propagates; only the
// chunker itself degrades to fixed-window chunking.
func (m *Manager) Remember(ctx context.Context, userID string, text string) ([]string, error) {
	if !m.config.Enabled {
		return nil, nil
	}
	if userID == "" {
		return nil, vector.ErrMissingUserID
	}

	chunks := m.chunker.Chunk(ctx, text)
	if len(chunks) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(chunks))
	metadata := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		vec, err := m.embedder.Embed(ctx, c.Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		vectors[i] = vec
		metadata[i] = map[string]any{
			"text":        c.Text,
			"start":       c.Start,
			"end":         c.End,
			"chunk_index": c.Index,
		}
	}

	ids, err := m.store.AddVectors(ctx, vectors, metadata, userID)
	if err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}

	log.Printf("[MEMORY] Remembered %d chunks for user=%s", len(ids), userID)
	return ids, nil
}

// Recall returns the stored chunks most relevant to the query, ranked by
// descending similarity.
func (m *Manager) Recall(ctx context.Context, userID string, query string) ([]vector.ScoredResult, error) {
	if !m.config.Enabled {
		return nil, nil
	}
	return m.search.Search(ctx, query, userID,
		vector.WithTopK(m.config.TopK),
		vector.WithMinScore(m.config.MinScore),
	)
}

// Forget removes the records with the given ids from the user's
// namespace. It reports whether anything was removed.
func (m *Manager) Forget(ctx context.Context, userID string, ids []string) (bool, error) {
	return m.store.DeleteVectors(ctx, ids, userID)
}

// Retrieve recalls memories for the query and returns them as a formatted
// block ready for prompt injection. An empty string means nothing
// relevant was found.
func (m *Manager) Retrieve(ctx context.Context, userID string, query string) (string, error) {
	results, err := m.Recall(ctx, userID, query)
	if err != nil {
		return "", err
	}

	log.Printf("[MEMORY] Recalled %d memories for query: %q", len(results), truncateLog(query, 50))
	if len(results) == 0 {
		return "", nil
	}

	var parts []string
	parts = append(parts, "=== RELEVANT MEMORIES ===\n")
	for i, r := range results {
		text, _ := r.Metadata["text"].(string)
		parts = append(parts, fmt.Sprintf("%d. [%.2f] %s\n", i+1, r.Similarity, text))
	}
	return strings.Join(parts, "\n"), nil
}

// truncateLog truncates text for logging.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
