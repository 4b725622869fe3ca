package chunk

import (
	"context"
	"log"
	"math"
	"strings"

	"github.com/sharan01x/move37-go/embedder"
)

// DefaultSimilarityThreshold is the adjacent-paragraph similarity below
// which a chunk boundary is placed.
const DefaultSimilarityThreshold = 0.85

// SemanticChunker merges consecutive paragraphs into chunks as long as
// adjacent paragraphs stay semantically similar. Each paragraph is embedded,
// and a breakpoint is placed after paragraph i whenever
//
//	1 - cosineDistance(embedding[i], embedding[i+1]) < threshold
//
// The comparison is strict: a similarity exactly at the threshold does not
// break. Chunking is a pure function of its inputs and safe for concurrent
// use.
type SemanticChunker struct {
	embedder  embedder.Embedder
	threshold float64
}

// NewSemanticChunker creates a SemanticChunker using the given embedding
// provider. A non-positive threshold selects DefaultSimilarityThreshold.
func NewSemanticChunker(e embedder.Embedder, threshold float64) *SemanticChunker {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &SemanticChunker{embedder: e, threshold: threshold}
}

// Chunk splits text into semantically coherent chunks.
//
// If any paragraph embedding fails, semantic chunking is abandoned entirely
// and the result is FixedWindow over the full text with default parameters,
// never a partial result.
func (c *SemanticChunker) Chunk(ctx context.Context, text string) []Chunk {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	paragraphs := SegmentParagraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}
	if len(paragraphs) == 1 {
		return []Chunk{{Text: trimmed, Start: 0, End: len(text)}}
	}

	embeddings := make([][]float32, len(paragraphs))
	for i, p := range paragraphs {
		vec, err := c.embedder.Embed(ctx, p.Text)
		if err != nil {
			log.Printf("[CHUNK] Paragraph embedding failed, falling back to fixed-window: %v", err)
			return FixedWindow(text, DefaultChunkSize, DefaultChunkOverlap)
		}
		embeddings[i] = vec
	}

	var chunks []Chunk
	runStart := 0
	for i := 0; i < len(paragraphs)-1; i++ {
		if cosineSimilarity(embeddings[i], embeddings[i+1]) < c.threshold {
			chunks = append(chunks, mergeRun(paragraphs[runStart:i+1], len(chunks)))
			runStart = i + 1
		}
	}
	return append(chunks, mergeRun(paragraphs[runStart:], len(chunks)))
}

// mergeRun joins a run of consecutive paragraphs into one chunk. The run is
// never empty.
func mergeRun(run []Paragraph, index int) Chunk {
	texts := make([]string, len(run))
	for i, p := range run {
		texts[i] = p.Text
	}
	return Chunk{
		Text:  strings.Join(texts, "\n\n"),
		Start: run[0].Start,
		End:   run[len(run)-1].End,
		Index: index,
	}
}

// cosineSimilarity computes the cosine similarity of two vectors. Vectors
// of mismatched or zero length, and zero vectors, yield 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
