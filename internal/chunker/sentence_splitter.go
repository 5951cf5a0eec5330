package chunker

import (
	"regexp"
	"strings"
	"unicode"
)

// sentenceBoundary matches terminal punctuation followed by a whitespace run.
// The whitespace class mirrors Unicode whitespace, not just ASCII.
var sentenceBoundary = regexp.MustCompile(`[.?!][\s\v\x{1c}-\x{1f}\x{85}\p{Z}]+`)

// SentenceSplitter breaks text after '.', '?' or '!' when followed by whitespace.
// The punctuation stays with the preceding sentence and the whitespace is dropped.
// Abbreviations and decimals are not special-cased.
type SentenceSplitter struct {
	boundary *regexp.Regexp
}

func NewSentenceSplitter() *SentenceSplitter {
	return &SentenceSplitter{boundary: sentenceBoundary}
}

// Split returns the sentences of text in order, skipping blank pieces.
func (s *SentenceSplitter) Split(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range s.boundary.FindAllStringIndex(text, -1) {
		// loc[0] is the punctuation byte; keep it, drop the whitespace after it.
		sentences = appendNonBlank(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	return appendNonBlank(sentences, text[start:])
}

func appendNonBlank(out []string, piece string) []string {
	if TrimSpace(piece) == "" {
		return out
	}
	return append(out, piece)
}

// IsSpace reports whether r is whitespace in the sense of the boundary
// pattern: Unicode White_Space plus the information separators U+001C..U+001F.
func IsSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// TrimSpace removes leading and trailing IsSpace runes.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, IsSpace)
}
