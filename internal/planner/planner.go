// Package planner computes the diff between discovered files and indexed
// documents and drives upserts in mtime-descending order.
package planner

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/extract"
	"github.com/starford/ansuz/internal/index"
)

// Stats summarises one update run.
type Stats struct {
	Indexed  int // new or stale documents re-extracted and upserted
	Current  int // documents already up to date
	Empty    int // files whose extraction yielded no text
	Vanished int // discovered files gone by the time they were statted
}

// Planner owns the incremental update policy.
//
// EarlyStop preserves the original optimization: because candidates are
// scanned newest-first, the first already-current document implies every
// remaining one is current too, and the run stops. The implication does not
// hold for a never-indexed file with an older mtime than a current
// document; such a file stays unindexed until the next full build. Off by
// default, which scans all candidates.
type Planner struct {
	Extractor *extract.Extractor
	EarlyStop bool
	Logger    *slog.Logger
}

type candidate struct {
	path  string
	mtime time.Time
}

// Update re-indexes all new and stale files among paths, skipping current
// ones. Files deleted on disk are never removed from the index here; stale
// entries persist until the next full build.
func (p *Planner) Update(ctx context.Context, paths []string, store index.Store) (Stats, error) {
	var stats Stats

	cands := make([]candidate, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			// Vanished between discovery and now; not an error.
			stats.Vanished++
			continue
		}
		cands = append(cands, candidate{path: path, mtime: info.ModTime()})
	}

	// Newest first; ties broken by path for determinism.
	sort.Slice(cands, func(i, j int) bool {
		if !cands[i].mtime.Equal(cands[j].mtime) {
			return cands[i].mtime.After(cands[j].mtime)
		}
		return cands[i].path < cands[j].path
	})

	for _, c := range cands {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		doc, err := store.ByPath(c.path)
		if err != nil {
			return stats, err
		}
		if doc != nil && !doc.Mtime.Before(c.mtime) {
			stats.Current++
			if p.EarlyStop {
				p.Logger.Debug("update: current document reached, stopping scan",
					slog.String("path", c.path))
				break
			}
			continue
		}

		text := p.Extractor.Content(ctx, c.path)
		if strings.TrimSpace(text) == "" {
			p.Logger.Debug("update: no extractable text", slog.String("path", c.path))
			stats.Empty++
			continue
		}

		err = store.Upsert(index.Document{
			Path:     c.path,
			Filename: FilenameTokens(c.path),
			Title:    extract.Title(c.path, text),
			Content:  text,
			Tags:     extract.Tags(text),
			Mtime:    c.mtime,
		})
		if err != nil {
			p.Logger.Warn("update: upsert failed", slog.String("path", c.path), slog.String("error", err.Error()))
			continue
		}
		p.Logger.Debug("update: indexed", slog.String("path", c.path))
		stats.Indexed++
	}

	return stats, nil
}

// FilenameTokens splits a path into searchable tokens on the separators
// that typically delimit words in note filenames.
func FilenameTokens(path string) string {
	fields := strings.FieldsFunc(path, func(r rune) bool {
		switch r {
		case '/', '-', '.', '_':
			return true
		}
		return false
	})
	return strings.Join(fields, " ")
}
