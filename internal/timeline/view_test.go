package timeline

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pbaille/timeline/internal/datenav"
	"github.com/pbaille/timeline/internal/domain"
	"github.com/pbaille/timeline/internal/entrytype"
	"github.com/pbaille/timeline/internal/filter"
	"github.com/pbaille/timeline/internal/store"
)

func fixedNav() *datenav.Controller {
	now := time.Date(2021, 5, 5, 15, 0, 0, 0, time.UTC)
	return datenav.New(time.UTC).WithClock(func() time.Time { return now })
}

func day() []domain.Entry {
	return []domain.Entry{
		{ID: "1", EntryType: "text", DateOnTimeline: "2021-05-02T10:00:00Z"},
		{ID: "2", EntryType: "transaction", DateOnTimeline: "2021-05-02T10:05:00Z", Data: map[string]any{"amount": "-9.99"}},
		{ID: "3", EntryType: "social.reddit.comment", DateOnTimeline: "2021-05-02T10:10:00Z"},
		{ID: "4", EntryType: "mystery", DateOnTimeline: "2021-05-02T10:20:00Z"},
		{ID: "5", EntryType: "image", DateOnTimeline: "2021-05-02T12:00:00Z"},
		{ID: "6", EntryType: "image", DateOnTimeline: "2021-05-02T12:01:00Z"},
		{ID: "7", EntryType: "transaction", DateOnTimeline: "2021-05-02T20:00:00Z", Data: map[string]any{"amount": 1500.0}},
	}
}

func TestBuild(t *testing.T) {
	b := NewBuilder(fixedNav(), filter.Default)
	d := time.Date(2021, 5, 2, 0, 0, 0, 0, time.UTC)
	v := b.Build(Input{Date: d, Entries: day(), Status: store.StatusSuccess, Query: url.Values{}})

	if v.Date != "2021-05-02" || v.Label != "May 2, 2021" || v.Weekday != "Sunday" || v.Relative != "3 days ago" {
		t.Fatalf("unexpected header %q %q %q %q", v.Date, v.Label, v.Weekday, v.Relative)
	}
	if !v.Forward.Day || v.Forward.Week {
		t.Fatalf("unexpected forward flags %+v", v.Forward)
	}

	// The evening transaction opens a bucket of its own, which is then empty.
	if len(v.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(v.Buckets))
	}
	first := v.Buckets[0]
	if first.Title != "10:00" || len(first.Items) != 2 {
		t.Fatalf("expected text and post in the 10:00 bucket, got %+v", first)
	}
	post := first.Items[1]
	if post.Renderer != entrytype.Post || post.Platform != "reddit" || post.PostType != "Comment" {
		t.Fatalf("unexpected post item %+v", post)
	}
	second := v.Buckets[1]
	if len(second.Items) != 1 || second.Items[0].Renderer != entrytype.Gallery || len(second.Items[0].Gallery) != 2 {
		t.Fatalf("expected one gallery, got %+v", second.Items)
	}
	if v.Len() != 4 {
		t.Fatalf("expected 4 rendered entries, got %d", v.Len())
	}

	if len(v.Transactions) != 2 || v.Totals.IncomeCount != 1 || v.Totals.ExpenseCount != 1 {
		t.Fatalf("unexpected transactions %+v totals %+v", v.Transactions, v.Totals)
	}
	if v.Balance != nil {
		t.Fatalf("expected no balance without finances")
	}
}

func TestBuildFiltersAndRecap(t *testing.T) {
	b := NewBuilder(fixedNav(), nil)
	d := time.Date(2021, 5, 2, 0, 0, 0, 0, time.UTC)
	v := b.Build(Input{Date: d, Entries: day(), Enabled: filter.NewSet("image"), Query: url.Values{}})

	if len(v.Buckets) != 1 || v.Buckets[0].Title != "12:00" {
		t.Fatalf("expected only the image bucket, got %+v", v.Buckets)
	}
	if len(v.Transactions) != 0 {
		t.Fatalf("expected transactions filtered out")
	}

	var image, reddit FilterState
	for _, f := range v.Filters {
		switch f.Name {
		case "image":
			image = f
		case "reddit":
			reddit = f
		}
	}
	if !image.Enabled || image.Count != 2 || image.Label != "images" {
		t.Fatalf("unexpected image recap %+v", image)
	}
	if reddit.Enabled || reddit.Count != 1 || reddit.Label != "reddit entry" {
		t.Fatalf("unexpected reddit recap %+v", reddit)
	}
}

func TestBuildSourceAndBalance(t *testing.T) {
	b := NewBuilder(fixedNav(), nil)
	d := time.Date(2021, 5, 2, 0, 0, 0, 0, time.UTC)
	q := url.Values{"date": {"2021-05-02"}, "source": {"telegram"}}
	v := b.Build(Input{
		Date:     d,
		Query:    q,
		Path:     "/timeline",
		Finances: map[string]float64{"2021-05-01": 3},
	})
	if v.Source != "telegram" || v.ClearSourceURL != "/timeline?date=2021-05-02" {
		t.Fatalf("unexpected source %q %q", v.Source, v.ClearSourceURL)
	}
	if len(v.Balance) != 29 || v.Balance[len(v.Balance)-1].Balance != 3 {
		t.Fatalf("unexpected balance series %+v", v.Balance)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"status":"none"`) || !strings.Contains(string(raw), `"buckets":[]`) {
		t.Fatalf("unexpected json %s", raw)
	}
}

func TestClearSourceURL(t *testing.T) {
	if got := ClearSourceURL("/timeline", url.Values{"source": {"x"}}); got != "/timeline" {
		t.Fatalf("expected bare path, got %s", got)
	}
}

func TestBuildAfterRefreshUsesNewEntries(t *testing.T) {
	b := NewBuilder(fixedNav(), filter.Default)
	d := time.Date(2021, 5, 2, 0, 0, 0, 0, time.UTC)
	old := []domain.Entry{{ID: "1", EntryType: "text", Title: "old", DateOnTimeline: "2021-05-02T10:00:00Z"}}
	b.Build(Input{Date: d, Entries: old, Status: store.StatusSuccess})

	refreshed := []domain.Entry{{ID: "1", EntryType: "text", Title: "new", DateOnTimeline: "2021-05-02T10:00:00Z"}}
	v := b.Build(Input{Date: d, Entries: refreshed, Status: store.StatusSuccess})
	if len(v.Buckets) != 1 || len(v.Buckets[0].Items) != 1 {
		t.Fatalf("expected one item, got %+v", v.Buckets)
	}
	if got := v.Buckets[0].Items[0].Entry.Title; got != "new" {
		t.Fatalf("expected title %q after refresh, got %q", "new", got)
	}
}
