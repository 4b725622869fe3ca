package chunk

import (
	"regexp"
	"strings"
)

// Paragraph is a contiguous span of source text between blank-line
// boundaries. Text is trimmed of surrounding whitespace; Start and End are
// the byte offsets of the trimmed text within the original source.
type Paragraph struct {
	Text  string
	Start int
	End   int
}

// Chunk is one or more consecutive paragraphs (or sentences, for the
// fixed-window strategy) merged into a single retrievable unit. Index is a
// zero-based sequence number within one chunking call.
type Chunk struct {
	Text  string
	Start int
	End   int
	Index int
}

// blankLine matches a paragraph boundary: a newline, optional horizontal
// whitespace, and a second newline.
var blankLine = regexp.MustCompile(`\n[ \t\r]*\n`)

// SegmentParagraphs splits text on blank-line boundaries into ordered,
// non-overlapping paragraphs. Offsets are exact: each paragraph's trimmed
// text is located in the source starting from the last consumed position.
//
// If the text contains no blank-line boundary, the entire input is returned
// as a single Paragraph spanning the whole source.
func SegmentParagraphs(text string) []Paragraph {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if !blankLine.MatchString(text) {
		return []Paragraph{{Text: text, Start: 0, End: len(text)}}
	}

	var paragraphs []Paragraph
	pos := 0
	for _, part := range blankLine.Split(text, -1) {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		start := strings.Index(text[pos:], trimmed)
		if start < 0 {
			continue
		}
		start += pos
		paragraphs = append(paragraphs, Paragraph{
			Text:  trimmed,
			Start: start,
			End:   start + len(trimmed),
		})
		pos = start + len(trimmed)
	}
	return paragraphs
}
