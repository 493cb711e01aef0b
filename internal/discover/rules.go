package discover

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// RuleKind enumerates the closed set of exclude rule variants. Non-regex
// rules ("magic filters") are added here as new variants, never by runtime
// lookup into an open table.
type RuleKind int

const (
	// RuleRegex excludes any path the pattern finds a match in.
	RuleRegex RuleKind = iota
	// RuleMissing excludes paths that no longer exist on disk.
	RuleMissing
	// RuleTexOrgSibling excludes .tex files that have a sibling .org source
	// of the same basename (the org file is the canonical note, the tex file
	// a generated export).
	RuleTexOrgSibling
)

// Reserved names that select a magic filter instead of a regex.
const (
	filterMissing       = "missing"
	filterTexOrgSibling = "tex-org-sibling"
)

// ExcludeRule is one configured exclusion, either a compiled regex or a
// magic filter variant.
type ExcludeRule struct {
	Kind    RuleKind
	Pattern *regexp.Regexp // set only for RuleRegex
}

// ParseExcludeRule turns a configured rule string into an ExcludeRule.
// The reserved filter names take precedence; anything else is compiled
// as a regex.
func ParseExcludeRule(s string) (ExcludeRule, error) {
	switch s {
	case filterMissing:
		return ExcludeRule{Kind: RuleMissing}, nil
	case filterTexOrgSibling:
		return ExcludeRule{Kind: RuleTexOrgSibling}, nil
	}
	re, err := regexp.Compile(s)
	if err != nil {
		return ExcludeRule{}, fmt.Errorf("discover: exclude rule %q: %w", s, err)
	}
	return ExcludeRule{Kind: RuleRegex, Pattern: re}, nil
}

// Match reports whether the rule excludes path.
func (r ExcludeRule) Match(path string) bool {
	switch r.Kind {
	case RuleMissing:
		_, err := os.Stat(path)
		return err != nil
	case RuleTexOrgSibling:
		if !strings.HasSuffix(path, ".tex") {
			return false
		}
		org := strings.TrimSuffix(path, ".tex") + ".org"
		_, err := os.Stat(org)
		return err == nil
	default:
		return r.Pattern.FindStringIndex(path) != nil
	}
}
