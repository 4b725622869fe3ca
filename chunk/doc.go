// Package chunk splits raw text into retrievable units with exact source
// offsets.
//
// Two strategies are provided:
//   - SemanticChunker: embeds paragraphs and breaks where adjacent
//     similarity drops below a threshold (coherent topic runs)
//   - FixedWindow: sentence-based sliding window with character overlap
//
// SemanticChunker degrades gracefully: if any paragraph embedding fails,
// the whole call falls back to FixedWindow over the full text rather than
// returning a partial result.
//
// All offsets are byte offsets into the original UTF-8 source, so callers
// can map a chunk back to the exact span it came from even though chunk
// text is whitespace-trimmed.
package chunk
