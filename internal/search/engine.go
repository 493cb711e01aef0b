// Package search executes weighted multi-field ranked queries against the
// index and derives related-term suggestions from the result set.
package search

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/index"
)

// DefaultWeights are the fixed relevance boosts applied to both field
// matching and result ranking.
var DefaultWeights = index.Weights{
	Title:    4,
	Tags:     3,
	Path:     2,
	Filename: 2,
	Content:  1,
}

// maxRelated caps the number of suggested expansion terms.
const maxRelated = 10

// Result is one search or listing row. Missing is computed at read time:
// the backing file has been deleted since it was indexed, but the document
// stays queryable until the next full build.
type Result struct {
	index.Document
	Score   float64
	Missing bool
}

// Engine answers queries against a Store.
type Engine struct {
	store    index.Store
	expander TermExpander
}

// NewEngine creates an engine with the given term expander; nil selects
// exact matching.
func NewEngine(store index.Store, expander TermExpander) *Engine {
	if expander == nil {
		expander = ExactExpander{}
	}
	return &Engine{store: store, expander: expander}
}

// Search runs the weighted ranked query and returns results best-first plus
// up to ten related-term suggestions. Suggestions are never applied to the
// query. An empty (or pure-stopword) query falls back to listing every
// document, newest first, with no suggestions.
func (e *Engine) Search(query string, limit int) ([]Result, []string, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		results, err := e.List()
		return results, nil, err
	}

	match, err := e.buildMatch(terms)
	if err != nil {
		return nil, nil, err
	}
	hits, err := e.store.Search(match, DefaultWeights, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("search: %w", err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{Document: h.Document, Score: h.Score, Missing: missing(h.Path)}
	}

	related, err := e.relatedTerms(hits, terms)
	if err != nil {
		return nil, nil, err
	}
	return results, related, nil
}

// List returns every indexed document, newest modification first, with
// staleness flagged per row.
func (e *Engine) List() ([]Result, error) {
	docs, err := e.store.All()
	if err != nil {
		return nil, fmt.Errorf("search: list: %w", err)
	}
	results := make([]Result, len(docs))
	for i, d := range docs {
		results[i] = Result{Document: d, Missing: missing(d.Path)}
	}
	return results, nil
}

// buildMatch assembles the FTS match expression: each query term expands to
// an OR group of candidate terms, groups combine with AND.
func (e *Engine) buildMatch(terms []string) (string, error) {
	clauses := make([]string, 0, len(terms))
	for _, t := range terms {
		expanded, err := e.expander.Expand(t)
		if err != nil {
			return "", fmt.Errorf("search: expand %q: %w", t, err)
		}
		quoted := make([]string, len(expanded))
		for i, x := range expanded {
			quoted[i] = `"` + strings.ReplaceAll(x, `"`, `""`) + `"`
		}
		clause := strings.Join(quoted, " OR ")
		if len(quoted) > 1 {
			clause = "(" + clause + ")"
		}
		clauses = append(clauses, clause)
	}
	return strings.Join(clauses, " AND "), nil
}

// relatedTerms scores content terms of the matched documents by tf×idf
// against the whole index and returns the top distinguishing ones,
// excluding stopwords and the query's own terms.
func (e *Engine) relatedTerms(hits []index.Hit, query []string) ([]string, error) {
	if len(hits) == 0 {
		return nil, nil
	}
	df, err := e.store.Terms()
	if err != nil {
		return nil, fmt.Errorf("search: vocabulary: %w", err)
	}
	total, err := e.store.Count()
	if err != nil {
		return nil, fmt.Errorf("search: count: %w", err)
	}

	exclude := make(map[string]struct{}, len(query))
	for _, q := range query {
		exclude[q] = struct{}{}
	}

	tf := make(map[string]int)
	for _, h := range hits {
		for _, t := range tokenize(h.Content) {
			if len(t) < 3 || isStopword(t) {
				continue
			}
			if _, skip := exclude[t]; skip {
				continue
			}
			tf[t]++
		}
	}

	type scored struct {
		term  string
		score float64
	}
	terms := make([]scored, 0, len(tf))
	for t, n := range tf {
		d := df[t]
		if d == 0 {
			d = 1
		}
		terms = append(terms, scored{term: t, score: float64(n) * math.Log(1+float64(total)/float64(d))})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].score != terms[j].score {
			return terms[i].score > terms[j].score
		}
		return terms[i].term < terms[j].term
	})
	if len(terms) > maxRelated {
		terms = terms[:maxRelated]
	}

	out := make([]string, len(terms))
	for i, s := range terms {
		out[i] = s.term
	}
	return out, nil
}

func missing(path string) bool {
	_, err := os.Stat(path)
	return err != nil
}
