package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/search"
	"github.com/starford/ansuz/internal/testutil"
)

func testRouter(t *testing.T, authEnabled bool, token string) http.Handler {
	t.Helper()
	db := testutil.TestStore(t)
	now := time.Now()
	docs := []index.Document{
		{Path: "/notes/go.md", Title: "Go Notes", Content: "goroutines and channels", Tags: []string{"go"}, Mtime: now},
		{Path: "/notes/ml.md", Title: "ML Notes", Content: "gradient descent basics", Mtime: now.Add(-time.Hour)},
	}
	for _, d := range docs {
		if err := db.Upsert(d); err != nil {
			t.Fatal(err)
		}
	}
	return NewRouter(search.NewEngine(db, nil), authEnabled, token)
}

func get(t *testing.T, h http.Handler, url, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	h := testRouter(t, false, "")
	rec := get(t, h, "/search?q=goroutines", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Path != "/notes/go.md" {
		t.Errorf("results = %+v", resp.Results)
	}
	if resp.Results[0].Title != "Go Notes" {
		t.Errorf("title = %q", resp.Results[0].Title)
	}
	// The backing file never existed on disk.
	if !resp.Results[0].Missing {
		t.Error("expected missing flag for deleted backing file")
	}
}

func TestSearchEndpoint_InvalidLimit(t *testing.T) {
	h := testRouter(t, false, "")
	rec := get(t, h, "/search?q=x&limit=banana", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearchEndpoint_LimitAll(t *testing.T) {
	h := testRouter(t, false, "")
	rec := get(t, h, "/search?q=notes&limit=all", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListEndpoint_NewestFirst(t *testing.T) {
	h := testRouter(t, false, "")
	rec := get(t, h, "/notes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Notes []ResultDTO `json:"notes"`
		Total int         `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || len(resp.Notes) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Notes[0].Path != "/notes/go.md" {
		t.Errorf("first note = %s, want the newest", resp.Notes[0].Path)
	}
}

func TestAuth_RejectsMissingToken(t *testing.T) {
	h := testRouter(t, true, "sekrit")
	rec := get(t, h, "/notes", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_AcceptsValidToken(t *testing.T) {
	h := testRouter(t, true, "sekrit")
	rec := get(t, h, "/notes", "sekrit")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuth_RejectsWrongToken(t *testing.T) {
	h := testRouter(t, true, "sekrit")
	rec := get(t, h, "/notes", "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
