// Package discover enumerates candidate note files from configured source
// roots, applying include/exclude filtering.
package discover

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Source is one configured note location. Sources are walked in the order
// given, which callers derive from the lexicographic order of configured
// source names.
type Source struct {
	Name string
	Root string
}

// Config carries the compiled discovery rules. A candidate is accepted only
// if at least one include pattern matches, and rejected if any exclude rule
// matches afterwards.
type Config struct {
	Sources  []Source
	Includes []*regexp.Regexp
	Excludes []ExcludeRule
}

// Discover walks every source root and returns the deduplicated, filtered
// list of note paths. Ordering is deterministic: sources in configured
// order, files in lexical walk order within each root. Unreadable
// directories are logged and skipped, never fatal.
func Discover(cfg Config, logger *slog.Logger) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string

	for _, src := range cfg.Sources {
		root, err := filepath.Abs(src.Root)
		if err != nil {
			return nil, fmt.Errorf("discover: resolve source %s: %w", src.Name, err)
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				logger.Warn("discover: walk failed", slog.String("path", p), slog.String("error", walkErr.Error()))
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !included(p, cfg.Includes) || excluded(p, cfg.Excludes) {
				return nil
			}
			if _, dup := seen[p]; dup {
				return nil
			}
			seen[p] = struct{}{}
			out = append(out, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discover: walk source %s: %w", src.Name, err)
		}
	}
	return out, nil
}

// included reports whether any include pattern matches. No match against
// every pattern rejects the candidate.
func included(path string, includes []*regexp.Regexp) bool {
	for _, re := range includes {
		if re.FindStringIndex(path) != nil {
			return true
		}
	}
	return false
}

func excluded(path string, rules []ExcludeRule) bool {
	for _, r := range rules {
		if r.Match(path) {
			return true
		}
	}
	return false
}

// WriteCache dumps the discovered paths to a plain-text file, one per line.
// The cache is an inspection artifact, not authoritative state.
func WriteCache(path string, paths []string) error {
	data := strings.Join(paths, "\n")
	if len(paths) > 0 {
		data += "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("discover: write cache: %w", err)
	}
	return nil
}
