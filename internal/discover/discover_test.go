package discover

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiscover_IncludeFilter(t *testing.T) {
	dir := t.TempDir()
	md := writeFile(t, dir, "a.md")
	writeFile(t, dir, "b.bin")

	cfg := Config{
		Sources:  []Source{{Name: "notes", Root: dir}},
		Includes: []*regexp.Regexp{regexp.MustCompile(`\.md$`)},
	}
	got, err := Discover(cfg, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{md}) {
		t.Errorf("got %v, want just %s", got, md)
	}
}

func TestDiscover_AnyIncludeSuffices(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md")
	writeFile(t, dir, "b.org")

	cfg := Config{
		Sources: []Source{{Name: "notes", Root: dir}},
		Includes: []*regexp.Regexp{
			regexp.MustCompile(`\.md$`),
			regexp.MustCompile(`\.org$`),
		},
	}
	got, err := Discover(cfg, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %v, want both files", got)
	}
}

func TestDiscover_ExcludeRegex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.md")
	writeFile(t, dir, "private/secret.md")

	rule, err := ParseExcludeRule(`private/`)
	if err != nil {
		t.Fatal(err)
	}
	cfg := Config{
		Sources:  []Source{{Name: "notes", Root: dir}},
		Includes: []*regexp.Regexp{regexp.MustCompile(`\.md$`)},
		Excludes: []ExcludeRule{rule},
	}
	got, err := Discover(cfg, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !strings.HasSuffix(got[0], "keep.md") {
		t.Errorf("got %v, want just keep.md", got)
	}
}

func TestDiscover_TexOrgSiblingExcluded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "exported.tex")
	writeFile(t, dir, "exported.org")
	standalone := writeFile(t, dir, "standalone.tex")

	rule, err := ParseExcludeRule("tex-org-sibling")
	if err != nil {
		t.Fatal(err)
	}
	cfg := Config{
		Sources:  []Source{{Name: "notes", Root: dir}},
		Includes: []*regexp.Regexp{regexp.MustCompile(`\.tex$`)},
		Excludes: []ExcludeRule{rule},
	}
	got, err := Discover(cfg, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{standalone}) {
		t.Errorf("got %v, want just %s", got, standalone)
	}
}

func TestDiscover_DeduplicatesAcrossSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md")

	cfg := Config{
		Sources: []Source{
			{Name: "first", Root: dir},
			{Name: "second", Root: dir},
		},
		Includes: []*regexp.Regexp{regexp.MustCompile(`\.md$`)},
	}
	got, err := Discover(cfg, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %v, want one deduplicated entry", got)
	}
}

func TestDiscover_Deterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.md")
	writeFile(t, dir, "a.md")
	writeFile(t, dir, "sub/c.md")

	cfg := Config{
		Sources:  []Source{{Name: "notes", Root: dir}},
		Includes: []*regexp.Regexp{regexp.MustCompile(`\.md$`)},
	}
	first, err := Discover(cfg, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	second, err := Discover(cfg, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two runs differ: %v vs %v", first, second)
	}
}

func TestParseExcludeRule_MissingFilter(t *testing.T) {
	rule, err := ParseExcludeRule("missing")
	if err != nil {
		t.Fatal(err)
	}
	if rule.Kind != RuleMissing {
		t.Fatalf("kind = %v", rule.Kind)
	}
	if !rule.Match("/definitely/not/there.md") {
		t.Error("missing filter should match a nonexistent path")
	}
	existing := writeFile(t, t.TempDir(), "here.md")
	if rule.Match(existing) {
		t.Error("missing filter should not match an existing path")
	}
}

func TestParseExcludeRule_BadRegex(t *testing.T) {
	if _, err := ParseExcludeRule("("); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestWriteCache(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "tracked.files")
	if err := WriteCache(cache, []string{"/a.md", "/b.md"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(cache)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "/a.md\n/b.md\n" {
		t.Errorf("cache = %q", data)
	}
}

func TestWriteCache_Empty(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "tracked.files")
	if err := WriteCache(cache, nil); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(cache)
	if len(data) != 0 {
		t.Errorf("cache = %q, want empty", data)
	}
}
