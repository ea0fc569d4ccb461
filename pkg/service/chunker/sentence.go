package chunker

import (
	"strings"
	"unicode"
)

// abbreviations that must not be read as sentence boundaries. Compared
// case-insensitively against the word ending at a period.
var abbreviations = map[string]struct{}{
	"mr.":     {},
	"mrs.":    {},
	"ms.":     {},
	"dr.":     {},
	"prof.":   {},
	"sr.":     {},
	"jr.":     {},
	"st.":     {},
	"vs.":     {},
	"etc.":    {},
	"e.g.":    {},
	"i.e.":    {},
	"inc.":    {},
	"ltd.":    {},
	"no.":     {},
	"dept.":   {},
	"approx.": {},
	"p.m.":    {},
	"a.m.":    {},
}

// SplitSentences splits text into sentences on terminal punctuation,
// protecting known abbreviations and single-letter initials. Whitespace
// around each sentence is trimmed; empty sentences are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)

	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		if r == '.' && !isBoundaryPeriod(runes, i) {
			continue
		}

		// Consume trailing closing quotes and parens into the sentence
		end := i + 1
		for end < len(runes) && (runes[end] == '"' || runes[end] == '\'' || runes[end] == ')') {
			end++
		}

		// A boundary needs following whitespace or end of text
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			continue
		}

		sentence := strings.TrimSpace(string(runes[start:end]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = end
		i = end - 1
	}

	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		sentences = append(sentences, rest)
	}

	return sentences
}

// isBoundaryPeriod reports whether the period at index i ends a sentence
// rather than an abbreviation or an initial like "J."
func isBoundaryPeriod(runes []rune, i int) bool {
	// Find the word ending at the period (including internal periods, so
	// "e.g." is matched whole)
	wordStart := i
	for wordStart > 0 && !unicode.IsSpace(runes[wordStart-1]) {
		wordStart--
	}
	word := strings.ToLower(string(runes[wordStart : i+1]))

	if _, ok := abbreviations[word]; ok {
		return false
	}

	// Single uppercase letter followed by a period is an initial
	if len([]rune(word)) == 2 && unicode.IsLetter(runes[wordStart]) && unicode.IsUpper(runes[wordStart]) {
		return false
	}

	return true
}

// SplitParagraphs splits text on blank lines, trimming each paragraph and
// dropping empty ones.
func SplitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}
