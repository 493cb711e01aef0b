// Package extract converts note files into searchable text and derives
// title/tag metadata with format-specific heuristics.
package extract

import (
	"path/filepath"
	"strings"
)

// Format classifies a note file by its extension. The classification is
// computed once per path and consumed by both content extraction and the
// title heuristics, so the extension comparisons live in one place.
type Format int

const (
	// FormatUnknown covers every extension not listed below. The file stays
	// trackable (path/filename are still searchable) but yields no text.
	FormatUnknown Format = iota
	// FormatText is decoded as lossy UTF-8.
	FormatText
	// FormatTeX is text with a \title{} heuristic on top.
	FormatTeX
	// FormatNotebook is rendered to markdown by an external converter.
	FormatNotebook
	// FormatOpaque has no readable content or title; the path stands in.
	FormatOpaque
)

var textExts = map[string]struct{}{
	"":      {},
	".md":   {},
	".py":   {},
	".pyx":  {},
	".html": {},
	".bib":  {},
	".pxd":  {},
	".org":  {},
	".rst":  {},
}

// Classify returns the Format for path.
func Classify(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".ipynb":
		return FormatNotebook
	case ".tex":
		return FormatTeX
	case ".nb", ".odp":
		return FormatOpaque
	}
	if _, ok := textExts[ext]; ok {
		return FormatText
	}
	return FormatUnknown
}
