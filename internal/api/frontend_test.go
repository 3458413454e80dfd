package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/pbaille/timeline/internal/artifact"
	"github.com/pbaille/timeline/internal/client"
	"github.com/pbaille/timeline/internal/datenav"
	"github.com/pbaille/timeline/internal/store"
	"github.com/pbaille/timeline/internal/timeline"
)

type frontendFixture struct {
	handler http.Handler
	session *store.Session
}

func newFrontend(t *testing.T, token, clientToken string) frontendFixture {
	t.Helper()
	backend := httptest.NewServer(NewBackend(newArchive(t), token, quietLogger()).Handler())
	t.Cleanup(backend.Close)

	c := client.New(backend.URL, client.WithToken(clientToken), client.WithLogger(quietLogger()))
	now := time.Date(2021, 5, 5, 9, 0, 0, 0, time.UTC)
	nav := datenav.New(time.UTC).WithClock(func() time.Time { return now })
	session := store.NewSession(store.NewEntries(c, quietLogger()), nil)
	cache := artifact.NewCache(t.TempDir(), c, quietLogger())

	fe := NewFrontend(nav, session, quietLogger(), WithFinances(c), WithArtifacts(cache))
	return frontendFixture{handler: fe.Handler(), session: session}
}

func post(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTimelineRedirectsInvalidDate(t *testing.T) {
	fx := newFrontend(t, "", "")
	for _, path := range []string{"/timeline?source=x", "/timeline?date=not-a-date&source=x"} {
		rec := get(t, fx.handler, path, "")
		if rec.Code != http.StatusFound {
			t.Fatalf("%s: expected 302, got %d", path, rec.Code)
		}
		loc, err := url.Parse(rec.Header().Get("Location"))
		if err != nil {
			t.Fatal(err)
		}
		if loc.Path != "/timeline" || loc.Query().Get("date") != "2021-05-05" || loc.Query().Get("source") != "x" {
			t.Fatalf("%s: unexpected redirect %s", path, loc)
		}
	}
}

func TestTimelineView(t *testing.T) {
	fx := newFrontend(t, "", "")
	rec := get(t, fx.handler, "/timeline?date=2021-05-02&source=telegram", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var v timeline.View
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v.Date != "2021-05-02" || v.Relative != "3 days ago" {
		t.Fatalf("unexpected header %q %q", v.Date, v.Relative)
	}
	if len(v.Buckets) != 2 || len(v.Buckets[0].Items) != 2 || v.Buckets[1].Items[0].Renderer != "gallery" {
		t.Fatalf("unexpected buckets %+v", v.Buckets)
	}
	if len(v.Transactions) != 1 || v.Totals.ExpenseCount != 1 {
		t.Fatalf("unexpected transactions %+v", v.Transactions)
	}
	if len(v.Balance) == 0 {
		t.Fatalf("expected a balance series")
	}
	if v.Source != "telegram" || v.ClearSourceURL != "/timeline?date=2021-05-02" {
		t.Fatalf("unexpected source %q %q", v.Source, v.ClearSourceURL)
	}

	rec = get(t, fx.handler, "/timeline?date=2021-05-02&filter=image", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if len(v.Buckets) != 1 || len(v.Transactions) != 0 {
		t.Fatalf("expected filtered view, got %+v", v.Buckets)
	}

	if rec := get(t, fx.handler, "/timeline?date=2021-05-02&filter=bogus", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown filter, got %d", rec.Code)
	}
}

func TestTimelineAuthRedirect(t *testing.T) {
	for _, clientToken := range []string{"", "wrong"} {
		fx := newFrontend(t, "secret", clientToken)
		rec := get(t, fx.handler, "/timeline?date=2021-05-02", "")
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != LoginPath {
			t.Fatalf("token %q: expected redirect to login, got %d %s", clientToken, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestFilterToggle(t *testing.T) {
	fx := newFrontend(t, "", "")
	if rec := post(fx.handler, "/filters/image/toggle"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !fx.session.EnabledFilters().Has("image") {
		t.Fatalf("expected image filter enabled")
	}
	if rec := post(fx.handler, "/filters/bogus/toggle"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec := get(t, fx.handler, "/filters", "")
	var resp struct {
		Filters []filterResponse `json:"filters"`
		Enabled []string         `json:"enabled"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Filters) != 14 || len(resp.Enabled) != 1 || resp.Enabled[0] != "image" {
		t.Fatalf("unexpected filters response %+v", resp)
	}
}

func TestRefreshAndArtifacts(t *testing.T) {
	fx := newFrontend(t, "", "")
	if rec := post(fx.handler, "/refresh"); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 before any date, got %d", rec.Code)
	}
	get(t, fx.handler, "/timeline?date=2021-05-02", "")
	rec := post(fx.handler, "/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Status string `json:"status"`
		Count  int    `json:"count"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != "success" || resp.Count != 4 {
		t.Fatalf("unexpected refresh response %+v", resp)
	}

	rec = get(t, fx.handler, "/text/abc", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "{\"text\":\"Hello\"}\n" {
		t.Fatalf("unexpected text %d %s", rec.Code, rec.Body)
	}
	if rec := get(t, fx.handler, "/metadata/abc/content.html", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected cached artifact, got %d", rec.Code)
	}
	if rec := get(t, fx.handler, "/metadata/abc/missing.webp", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
