package search

import (
	"sort"

	"github.com/starford/ansuz/internal/index"
)

// TermExpander rewrites one query term into the set of index terms it
// should match. Swapping the expander changes the matching strategy without
// touching the rest of the engine.
type TermExpander interface {
	Expand(term string) ([]string, error)
}

// ExactExpander matches each term as-is. The default.
type ExactExpander struct{}

// Expand returns the term unchanged.
func (ExactExpander) Expand(term string) ([]string, error) {
	return []string{term}, nil
}

// FuzzyExpander adds typo tolerance by expanding each term with vocabulary
// terms within a small edit distance.
type FuzzyExpander struct {
	Store index.Store
	// MaxDistance is the edit distance bound; zero means 1.
	MaxDistance int
	// MaxAlternates caps how many vocabulary terms join the original; zero
	// means 8.
	MaxAlternates int
}

// Expand returns the original term plus nearby vocabulary terms, most
// frequent first.
func (f *FuzzyExpander) Expand(term string) ([]string, error) {
	maxDist := f.MaxDistance
	if maxDist <= 0 {
		maxDist = 1
	}
	maxAlt := f.MaxAlternates
	if maxAlt <= 0 {
		maxAlt = 8
	}

	vocab, err := f.Store.Terms()
	if err != nil {
		return nil, err
	}

	type alt struct {
		term string
		dist int
		df   int
	}
	var alts []alt
	for v, df := range vocab {
		if v == term {
			continue
		}
		if d := editDistance(term, v, maxDist); d <= maxDist {
			alts = append(alts, alt{term: v, dist: d, df: df})
		}
	}
	sort.Slice(alts, func(i, j int) bool {
		if alts[i].dist != alts[j].dist {
			return alts[i].dist < alts[j].dist
		}
		if alts[i].df != alts[j].df {
			return alts[i].df > alts[j].df
		}
		return alts[i].term < alts[j].term
	})
	if len(alts) > maxAlt {
		alts = alts[:maxAlt]
	}

	out := []string{term}
	for _, a := range alts {
		out = append(out, a.term)
	}
	return out, nil
}

// editDistance is Levenshtein distance with an early bail-out once the
// bound cannot be met.
func editDistance(a, b string, bound int) int {
	ra, rb := []rune(a), []rune(b)
	if diff := len(ra) - len(rb); diff > bound || -diff > bound {
		return bound + 1
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		best := cur[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if cur[j] < best {
				best = cur[j]
			}
		}
		if best > bound {
			return bound + 1
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
