package planner

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/extract"
	"github.com/starford/ansuz/internal/testutil"
)

func testPlanner(earlyStop bool) *Planner {
	return &Planner{
		Extractor: extract.NewExtractor(0),
		EarlyStop: earlyStop,
		Logger:    slog.New(slog.DiscardHandler),
	}
}

func TestUpdate_IndexesNewFiles(t *testing.T) {
	db := testutil.TestStore(t)
	dir := t.TempDir()
	mtime := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	a := testutil.WriteNote(t, dir, "a.md", "# Alpha\n# tags: first\nbody\n", mtime)
	b := testutil.WriteNote(t, dir, "b.org", "#+title: Beta\ncontent\n", mtime.Add(time.Hour))

	stats, err := testPlanner(false).Update(context.Background(), []string{a, b}, db)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Indexed != 2 {
		t.Errorf("indexed = %d, want 2", stats.Indexed)
	}

	doc, err := db.ByPath(a)
	if err != nil {
		t.Fatal(err)
	}
	if doc == nil {
		t.Fatal("a.md not indexed")
	}
	if doc.Title != "Alpha" {
		t.Errorf("title = %q", doc.Title)
	}
	if len(doc.Tags) != 1 || doc.Tags[0] != "first" {
		t.Errorf("tags = %v", doc.Tags)
	}
	if !doc.Mtime.Equal(mtime) {
		t.Errorf("mtime = %v, want %v", doc.Mtime, mtime)
	}

	doc, _ = db.ByPath(b)
	if doc == nil || doc.Title != "Beta" {
		t.Errorf("b.org doc = %+v", doc)
	}
}

func TestUpdate_Idempotent(t *testing.T) {
	db := testutil.TestStore(t)
	dir := t.TempDir()
	mtime := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	paths := []string{
		testutil.WriteNote(t, dir, "a.md", "one\n", mtime),
		testutil.WriteNote(t, dir, "b.md", "two\n", mtime.Add(time.Minute)),
	}
	p := testPlanner(false)

	if _, err := p.Update(context.Background(), paths, db); err != nil {
		t.Fatal(err)
	}
	stats, err := p.Update(context.Background(), paths, db)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Indexed != 0 {
		t.Errorf("second run indexed = %d, want 0 (no churn)", stats.Indexed)
	}
	if stats.Current != 2 {
		t.Errorf("second run current = %d, want 2", stats.Current)
	}
	n, _ := db.Count()
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestUpdate_ReindexesStale(t *testing.T) {
	db := testutil.TestStore(t)
	dir := t.TempDir()
	mtime := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	path := testutil.WriteNote(t, dir, "a.md", "# Old Title\n", mtime)
	p := testPlanner(false)

	if _, err := p.Update(context.Background(), []string{path}, db); err != nil {
		t.Fatal(err)
	}
	path = testutil.WriteNote(t, dir, "a.md", "# New Title\n", mtime.Add(time.Hour))
	stats, err := p.Update(context.Background(), []string{path}, db)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Indexed != 1 {
		t.Errorf("indexed = %d, want 1", stats.Indexed)
	}
	doc, _ := db.ByPath(path)
	if doc == nil || doc.Title != "New Title" {
		t.Errorf("doc = %+v, want reindexed title", doc)
	}
	n, _ := db.Count()
	if n != 1 {
		t.Errorf("count = %d, want 1 (path stays unique)", n)
	}
}

func TestUpdate_SkipsEmptyContent(t *testing.T) {
	db := testutil.TestStore(t)
	dir := t.TempDir()
	// Unknown extension extracts to empty text: trackable but not indexed.
	path := testutil.WriteNote(t, dir, "archive.zip", "binary-ish", time.Now())

	stats, err := testPlanner(false).Update(context.Background(), []string{path}, db)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Empty != 1 || stats.Indexed != 0 {
		t.Errorf("stats = %+v, want one empty skip", stats)
	}
	doc, _ := db.ByPath(path)
	if doc != nil {
		t.Error("empty-content file should not be upserted")
	}
}

func TestUpdate_FiltersVanished(t *testing.T) {
	db := testutil.TestStore(t)
	stats, err := testPlanner(false).Update(context.Background(), []string{"/gone/away.md"}, db)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Vanished != 1 {
		t.Errorf("vanished = %d, want 1", stats.Vanished)
	}
}

// A brand-new file whose mtime is older than an already-current document is
// skipped when early-stop is on: the newest-first scan stops at the current
// document and never reaches it. This pins the inherited behavior; the
// default (early-stop off) indexes the file.
func TestUpdate_EarlyStopSkipsOlderNewFile(t *testing.T) {
	db := testutil.TestStore(t)
	dir := t.TempDir()
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	newer := testutil.WriteNote(t, dir, "newer.md", "current note\n", base.Add(time.Hour))

	if _, err := testPlanner(false).Update(context.Background(), []string{newer}, db); err != nil {
		t.Fatal(err)
	}

	// Never indexed, older mtime than the current document.
	older := testutil.WriteNote(t, dir, "older.md", "was never seen\n", base)

	stats, err := testPlanner(true).Update(context.Background(), []string{newer, older}, db)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Indexed != 0 {
		t.Errorf("indexed = %d, want 0 under early stop", stats.Indexed)
	}
	doc, _ := db.ByPath(older)
	if doc != nil {
		t.Error("older new file should have been skipped by the early stop")
	}

	// Without early stop the full scan picks it up.
	stats, err = testPlanner(false).Update(context.Background(), []string{newer, older}, db)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Indexed != 1 {
		t.Errorf("indexed = %d, want 1 without early stop", stats.Indexed)
	}
	doc, _ = db.ByPath(older)
	if doc == nil {
		t.Error("older new file should be indexed by the full scan")
	}
}

func TestFilenameTokens(t *testing.T) {
	got := FilenameTokens("/home/user/machine-learning/kernel_methods.md")
	want := "home user machine learning kernel methods md"
	if got != want {
		t.Errorf("tokens = %q, want %q", got, want)
	}
}
