package extract

import (
	"regexp"
	"strings"
)

// Title heuristics are an ordered rule list evaluated top to bottom; the
// first rule whose predicate accepts the format and whose extractor
// succeeds wins. Keeping them as data keeps each rule testable on its own.
type titleRule struct {
	applies func(Format) bool
	extract func(path, text string) (string, bool)
}

var titleRules = []titleRule{
	// Notebook and opaque binary formats carry no readable title.
	{
		applies: func(f Format) bool { return f == FormatNotebook || f == FormatOpaque },
		extract: func(path, _ string) (string, bool) { return path, true },
	},
	// LaTeX \title{} / \icmltitle{} macro argument.
	{
		applies: func(f Format) bool { return f == FormatTeX },
		extract: func(_, text string) (string, bool) { return texTitle(text) },
	},
	// Everything else, including tex files without a title macro.
	{
		applies: func(Format) bool { return true },
		extract: scanTitle,
	},
}

// Title derives a human-readable title for the note at path with extracted
// text. Falls back to the raw path when nothing better applies.
func Title(path, text string) string {
	f := Classify(path)
	for _, r := range titleRules {
		if !r.applies(f) {
			continue
		}
		if t, ok := r.extract(path, text); ok {
			return normalize(t)
		}
	}
	return normalize(path)
}

var (
	texTitleRe   = regexp.MustCompile(`\\(?:icml)?title\s*\{`)
	texBreakRe   = regexp.MustCompile(`\\\\\s+`)
	texNoteRe    = regexp.MustCompile(`\\(?:footnote|thanks)\s*\{`)
	commentRe    = regexp.MustCompile(`#|//|/\*`)
	shebangRe    = regexp.MustCompile(`^#!`)
	codingRe     = regexp.MustCompile(`^#.*coding[:=]`)
	linePrefixRe = regexp.MustCompile(`(?i)^\s*(?:#\+title:|"""|'''|#+|\*+|title:)[ \t]*`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// texTitle extracts the first \title{...} (or \icmltitle{...}) argument via
// a balanced brace match, then strips LaTeX line breaks, trailing
// footnote/thanks annotations, and comment markers.
func texTitle(text string) (string, bool) {
	loc := texTitleRe.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	arg := balancedArg(text[loc[1]:])

	arg = texBreakRe.ReplaceAllString(arg, " ")
	if note := texNoteRe.FindStringIndex(arg); note != nil {
		arg = arg[:note[0]]
	}
	arg = commentRe.ReplaceAllString(arg, "")
	return arg, true
}

// balancedArg returns the brace-balanced prefix of s, which starts just
// after an opening brace. An unterminated argument greedily takes the rest.
func balancedArg(s string) string {
	depth := 1
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i]
			}
		}
	}
	return s
}

// scanTitle walks the text line by line: shebang and encoding-declaration
// lines are skipped, common title markers are stripped, and the first line
// left non-blank wins. With no qualifying line the raw first line stands,
// or the path when the text is entirely blank.
func scanTitle(path, text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if shebangRe.MatchString(line) || codingRe.MatchString(line) {
			continue
		}
		stripped := linePrefixRe.ReplaceAllString(line, "")
		if strings.TrimSpace(stripped) == "" {
			continue
		}
		if shebangRe.MatchString(stripped) || codingRe.MatchString(stripped) {
			continue
		}
		return stripped, true
	}
	if first, _, _ := strings.Cut(text, "\n"); strings.TrimSpace(first) != "" {
		return first, true
	}
	return path, true
}

func normalize(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

var tagsRe = regexp.MustCompile(`(?m)^[#%:;][ \t]*tags:[ \t]*(.*)`)

// Tags finds the first "tags:" line (comment-prefixed, e.g. "# tags: a b")
// and splits its remainder into individual tokens, first occurrence order,
// deduplicated.
func Tags(text string) []string {
	m := tagsRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, t := range strings.Fields(m[1]) {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
