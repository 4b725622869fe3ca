package chunk

import "strings"

// Sentence is a single sentence with its byte span in the source text.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// knownAbbreviations lists lowercase abbreviations that end with a period
// but do not end a sentence. Matching is a heuristic, not a guarantee.
var knownAbbreviations = map[string]struct{}{
	"mr":   {},
	"mrs":  {},
	"ms":   {},
	"dr":   {},
	"prof": {},
	"sr":   {},
	"jr":   {},
	"st":   {},
	"vs":   {},
	"etc":  {},
	"inc":  {},
	"ltd":  {},
	"co":   {},
	"no":   {},
	"fig":  {},
	"al":   {},
}

// SplitSentences splits text into sentences on sentence-final punctuation
// (`.`, `?`, `!`) followed by whitespace. Periods that terminate a
// single-capital-letter initial (as in "U.S.") or a known short abbreviation
// ("Dr.", "etc.") do not split. The trailing fragment is always treated as a
// sentence even without closing punctuation.
func SplitSentences(text string) []Sentence {
	var sentences []Sentence
	segStart := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '?' && c != '!' {
			continue
		}
		if i+1 >= len(text) || !isSpace(text[i+1]) {
			continue
		}
		if c == '.' && endsWithAbbreviation(text[segStart:i]) {
			continue
		}
		if s, ok := trimSpan(text, segStart, i+1); ok {
			sentences = append(sentences, s)
		}
		segStart = i + 1
	}

	// Trailing fragment, punctuation or not.
	if s, ok := trimSpan(text, segStart, len(text)); ok {
		sentences = append(sentences, s)
	}
	return sentences
}

// trimSpan trims whitespace off both ends of text[start:end] while keeping
// exact offsets for what remains.
func trimSpan(text string, start, end int) (Sentence, bool) {
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	if start >= end {
		return Sentence{}, false
	}
	return Sentence{Text: text[start:end], Start: start, End: end}, true
}

// endsWithAbbreviation reports whether the token preceding a period looks
// like an abbreviation rather than the end of a sentence.
func endsWithAbbreviation(prefix string) bool {
	j := len(prefix)
	for j > 0 && !isSpace(prefix[j-1]) {
		j--
	}
	word := prefix[j:]
	if word == "" {
		return false
	}

	lower := strings.ToLower(strings.TrimRight(word, "."))
	if _, ok := knownAbbreviations[lower]; ok {
		return true
	}

	// Initials: the segment after the last interior period is a single
	// capital letter ("U.S", "J. R").
	if k := strings.LastIndexByte(word, '.'); k >= 0 {
		word = word[k+1:]
	}
	return len(word) == 1 && word[0] >= 'A' && word[0] <= 'Z'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
