package keyword

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords are excluded from lexical indexing and query terms. The list
// covers high-frequency English function words only; domain terms like
// "policy" or "absence" always index.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "day": {}, "get": {}, "has": {},
	"him": {}, "his": {}, "how": {}, "its": {}, "may": {}, "who": {},
	"did": {}, "this": {}, "that": {}, "with": {}, "from": {}, "have": {},
	"they": {}, "will": {}, "what": {}, "when": {}, "does": {}, "about": {},
	"there": {}, "their": {}, "would": {}, "could": {}, "should": {},
	"where": {}, "which": {}, "while": {},
}

// Terms extracts the normalized lexical terms of text: lowercased,
// punctuation-stripped, stopwords and words shorter than three characters
// removed, deduplicated, sorted.
func Terms(text string) []string {
	seen := make(map[string]struct{})

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if len(w) < 3 {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		seen[w] = struct{}{}
	}

	terms := make([]string, 0, len(seen))
	for w := range seen {
		terms = append(terms, w)
	}
	sort.Strings(terms)
	return terms
}

// Overlap returns the terms of query present in the indexed set and the
// fraction of query terms matched
func Overlap(queryTerms []string, indexed []string) ([]string, float64) {
	if len(queryTerms) == 0 {
		return nil, 0
	}

	set := make(map[string]struct{}, len(indexed))
	for _, t := range indexed {
		set[t] = struct{}{}
	}

	var matched []string
	for _, t := range queryTerms {
		if _, ok := set[t]; ok {
			matched = append(matched, t)
		}
	}
	return matched, float64(len(matched)) / float64(len(queryTerms))
}
