package search

import "strings"

// stopwords is the fixed removal list applied to raw query text before
// parsing, matching the default English analyzer of classic full-text
// engines. The match grammar degrades badly on pure-stopword clauses, so
// they never reach it.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "can": {}, "for": {}, "from": {}, "have": {},
	"if": {}, "in": {}, "is": {}, "it": {}, "may": {}, "not": {},
	"of": {}, "on": {}, "or": {}, "tab": {}, "that": {}, "the": {},
	"this": {}, "to": {}, "us": {}, "we": {}, "when": {}, "will": {},
	"with": {}, "yet": {}, "you": {}, "your": {},
}

func isStopword(term string) bool {
	_, ok := stopwords[term]
	return ok
}

// tokenize lowercases text and splits it into letter/digit runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r > 127: // keep non-ASCII letters together; FTS tokenizes them too
		return true
	}
	return false
}

// queryTerms strips stopwords from raw query text, whole-word and
// case-insensitive.
func queryTerms(query string) []string {
	var out []string
	for _, t := range tokenize(query) {
		if isStopword(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
