// Package embedder defines the embedding provider boundary and its
// implementations.
//
// Implementations:
//   - mock: deterministic hash-seeded vectors (tests, offline runs)
//   - openai: OpenAI embeddings REST API over plain HTTP
//   - onnx: local all-MiniLM-L6-v2 model via ONNX Runtime (build tag "onnx")
//   - cache: read-through caching decorator around any Embedder
//
// Embedders are constructed once at application startup and passed by
// reference into the chunker, the vector search service, and the memory
// manager. Nothing in this module resolves an embedder through global state.
package embedder

import "context"

// Embedder converts text into a fixed-dimension vector embedding.
type Embedder interface {
	// Embed converts a single text to its embedding vector. The returned
	// vector always has Dimensions() elements.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}
