// Package memory is the ingestion and retrieval facade of the recall
// engine.
//
// Callers hand it already-extracted plain text (transcripts, document
// text, notes) under a user id, and later ask free-text questions that are
// answered from the stored material by an external answer-generation
// component.
//
// Architecture:
//   - chunk: semantic chunking with fixed-window fallback
//   - vector: per-user persisted nearest-neighbor store plus the semantic
//     search service
//   - embedder: text-to-vector conversion (OpenAI, local ONNX, mock)
//
// The Manager wires these together:
//   - Remember: chunk, embed and store one submission
//   - Recall: ranked chunk metadata for a query
//   - Retrieve: Recall formatted for prompt injection
//
// All dependencies are constructed at startup and passed in explicitly;
// nothing is resolved through global state.
package memory
