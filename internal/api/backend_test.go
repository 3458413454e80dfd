package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pbaille/timeline/internal/archive"
	"github.com/pbaille/timeline/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newArchive(t *testing.T) *archive.Store {
	t.Helper()
	a, err := archive.New(filepath.Join(t.TempDir(), "archive.db"), time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close() })

	ctx := context.Background()
	_, err = a.AddEntries(ctx, []domain.Entry{
		{ID: "1", EntryType: "text", DateStart: "2021-05-02T10:00:00Z"},
		{ID: "2", EntryType: "social.reddit.comment", DateStart: "2021-05-02T10:10:00Z"},
		{ID: "3", EntryType: "image", DateStart: "2021-05-02T11:30:00Z", Checksum: "abc"},
		{ID: "4", EntryType: "transaction", DateStart: "2021-05-02T12:00:00Z", Data: map[string]any{"amount": "-4.50"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = a.PutArtifact(ctx, archive.Artifact{Checksum: "abc", Name: "content.html", ContentType: "text/html", Body: []byte("<p>Hello</p>")})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func get(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBackendEntries(t *testing.T) {
	h := NewBackend(newArchive(t), "", quietLogger()).Handler()

	rec := get(t, h, "/entries/2021-05-02.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp domain.EntriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Entries) != 4 || resp.Entries[0].ID != "1" {
		t.Fatalf("unexpected entries %+v", resp.Entries)
	}

	for _, path := range []string{"/entries/not-a-date.json", "/entries/2021-05-02"} {
		if rec := get(t, h, path, ""); rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestBackendFinancesAndArtifacts(t *testing.T) {
	h := NewBackend(newArchive(t), "", quietLogger()).Handler()

	rec := get(t, h, "/entries/finances.json", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"2021-05-02":"-4.50"`) {
		t.Fatalf("unexpected finances %d %s", rec.Code, rec.Body)
	}

	rec = get(t, h, "/metadata/abc/content.html", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "<p>Hello</p>" || rec.Header().Get("Content-Type") != "text/html" {
		t.Fatalf("unexpected artifact %d %q", rec.Code, rec.Body)
	}
	if rec := get(t, h, "/metadata/abc/thumbnail.webp", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBackendToken(t *testing.T) {
	h := NewBackend(newArchive(t), "secret", quietLogger()).Handler()

	if rec := get(t, h, "/entries/2021-05-02.json", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := get(t, h, "/entries/2021-05-02.json", "wrong"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if rec := get(t, h, "/entries/2021-05-02.json", "secret"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := get(t, h, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected open health check, got %d", rec.Code)
	}
}

func TestMiddleware(t *testing.T) {
	h := withLogging(quietLogger(), withCORS(http.HandlerFunc(health)))

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected preflight response %d %v", rec.Code, rec.Header())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected a request id")
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-Id") != "abc" {
		t.Fatalf("expected request id to be echoed, got %q", rec.Header().Get("X-Request-Id"))
	}
}
