package chunk

import "strings"

const (
	// DefaultChunkSize is the maximum number of characters accumulated into
	// one fixed-window chunk before a new chunk is started.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the number of trailing characters from the
	// previous chunk that seed the next one.
	DefaultChunkOverlap = 100
)

// FixedWindow splits text into sentence-aligned chunks of at most size
// characters, each follow-up chunk seeded with the last overlap characters
// of source text preceding it. Non-positive size or negative overlap select
// the defaults.
//
// Sentences are never split mid-way: a single sentence longer than size is
// emitted whole, producing an over-large chunk rather than a severed one.
//
// Chunk spans are contiguous (each chunk's Start equals the previous
// chunk's End); the overlap appears only in the chunk text.
func FixedWindow(text string, size, overlap int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= size {
		overlap = size / 10
	}

	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= size {
		return []Chunk{{Text: text, Start: 0, End: len(text)}}
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []Chunk
	current := sentences[0].Text
	curStart := sentences[0].Start
	curEnd := sentences[0].End

	for _, s := range sentences[1:] {
		if len(current)+1+len(s.Text) > size {
			chunks = append(chunks, Chunk{
				Text:  current,
				Start: curStart,
				End:   curEnd,
				Index: len(chunks),
			})
			// Seed the next chunk with source text ending at the
			// previous chunk's end.
			tail := overlapTail(text, curEnd, overlap)
			if tail != "" {
				current = tail + " " + s.Text
			} else {
				current = s.Text
			}
			curStart = curEnd
			curEnd = s.End
			continue
		}
		current += " " + s.Text
		curEnd = s.End
	}

	return append(chunks, Chunk{
		Text:  current,
		Start: curStart,
		End:   curEnd,
		Index: len(chunks),
	})
}

func overlapTail(text string, end, overlap int) string {
	start := end - overlap
	if start < 0 {
		start = 0
	}
	return strings.TrimLeft(text[start:end], " \t\n\r")
}
