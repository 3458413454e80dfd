package printer

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/pbaille/timeline/internal/datenav"
	"github.com/pbaille/timeline/internal/domain"
	"github.com/pbaille/timeline/internal/finance"
	"github.com/pbaille/timeline/internal/timeline"
)

func init() {
	color.NoColor = true
}

func TestDay(t *testing.T) {
	now := time.Date(2021, 5, 2, 20, 0, 0, 0, time.UTC)
	nav := datenav.New(time.UTC).WithClock(func() time.Time { return now })
	v := timeline.NewBuilder(nav, nil).Build(timeline.Input{
		Date: time.Date(2021, 5, 2, 0, 0, 0, 0, time.UTC),
		Entries: []domain.Entry{
			{ID: "1", EntryType: "text", Title: "Morning   notes", DateOnTimeline: "2021-05-02T09:05:00Z"},
			{ID: "2", EntryType: "image", DateOnTimeline: "2021-05-02T09:10:00Z"},
			{ID: "3", EntryType: "video", DateOnTimeline: "2021-05-02T09:11:00Z"},
			{ID: "4", EntryType: "transaction", DateOnTimeline: "2021-05-02T09:30:00Z", Data: map[string]any{"amount": "-3", "otherParty": "Bakery"}},
		},
		Query: url.Values{},
	})

	var buf bytes.Buffer
	New(&buf).Day(v)
	out := buf.String()
	for _, want := range []string{
		"May 2, 2021",
		"Sunday, today - 3 entries",
		"9:05",
		"text: Morning notes",
		"1 image, 1 video",
		"Unknown time",
		"−3.00 €",
		"Bakery",
		"expenses −3.00 € (1)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestDayEmpty(t *testing.T) {
	nav := datenav.New(time.UTC)
	v := timeline.NewBuilder(nav, nil).Build(timeline.Input{Date: nav.Today(), Query: url.Values{}})
	var buf bytes.Buffer
	New(&buf).Day(v)
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("expected none, got %s", buf.String())
	}
}

func TestMoneyAndSparkline(t *testing.T) {
	if got := Money(-0.001); got != "0.00 €" {
		t.Fatalf("expected 0.00 €, got %s", got)
	}
	if got := Money(1234.5); got != "1234.50 €" {
		t.Fatalf("expected 1234.50 €, got %s", got)
	}
	s := finance.Series{{Balance: 0}, {Balance: 10}, {Balance: 5}}
	if got := Sparkline(s); got != "▁█▄" {
		t.Fatalf("expected ▁█▄, got %s", got)
	}
}

func TestSummaryTruncates(t *testing.T) {
	e := &domain.Entry{EntryType: "text", Description: strings.Repeat("a", 100)}
	got := Summary(e)
	if len([]rune(got)) != summaryWidth || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected summary %q", got)
	}
	if got := Summary(&domain.Entry{EntryType: "commit"}); got != "commit" {
		t.Fatalf("expected entry type fallback, got %q", got)
	}
}
