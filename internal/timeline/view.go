// Package timeline assembles what a day of the timeline shows: buckets of
// renderable entries, the transactions of the day and the filter recap.
package timeline

import (
	"net/url"
	"time"

	"github.com/pbaille/timeline/internal/datenav"
	"github.com/pbaille/timeline/internal/domain"
	"github.com/pbaille/timeline/internal/entrytype"
	"github.com/pbaille/timeline/internal/filter"
	"github.com/pbaille/timeline/internal/finance"
	"github.com/pbaille/timeline/internal/grouping"
	"github.com/pbaille/timeline/internal/store"
)

const labelLayout = "January 2, 2006"

// Item is one rendered element of a bucket: an entry or a gallery.
type Item struct {
	Renderer entrytype.Presentation `json:"renderer"`
	// Platform and PostType are set for posts.
	Platform string          `json:"platform,omitempty"`
	PostType string          `json:"post_type,omitempty"`
	Entry    *domain.Entry   `json:"entry,omitempty"`
	Gallery  []*domain.Entry `json:"gallery,omitempty"`
}

// Key identifies the item among its siblings.
func (i Item) Key() string {
	if i.Entry != nil {
		return i.Entry.Key()
	}
	return "gallery:" + i.Gallery[0].Key()
}

type Bucket struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// FilterState is a filter as shown in the recap.
type FilterState struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	IconClass string `json:"icon_class"`
	Count     int    `json:"count"`
	Enabled   bool   `json:"enabled"`
}

// View is one day of the timeline.
type View struct {
	Date     string          `json:"date"`
	Label    string          `json:"label"`
	Weekday  string          `json:"weekday"`
	Relative string          `json:"relative"`
	Forward  datenav.Forward `json:"forward"`
	Status   store.Status    `json:"status"`

	Buckets      []Bucket       `json:"buckets"`
	Transactions []domain.Entry `json:"transactions"`
	Totals       finance.Totals `json:"totals"`
	Balance      finance.Series `json:"balance,omitempty"`
	Filters      []FilterState  `json:"filters"`

	Source         string `json:"source,omitempty"`
	ClearSourceURL string `json:"clear_source_url,omitempty"`
}

// Len counts the rendered entries, transactions excluded.
func (v *View) Len() int {
	n := 0
	for _, b := range v.Buckets {
		for _, it := range b.Items {
			if it.Gallery != nil {
				n += len(it.Gallery)
				continue
			}
			n++
		}
	}
	return n
}

// Input is everything a view is derived from.
type Input struct {
	Date     time.Time
	Entries  []domain.Entry
	Status   store.Status
	Enabled  filter.Set
	Finances map[string]float64
	// Query is the current query string; it carries the optional source.
	Query url.Values
	// Path is the path the clear-source link points to.
	Path string
}

// Builder derives views. It keeps the last grouping so rebuilding the same
// day with a different recap does not regroup.
type Builder struct {
	nav      *datenav.Controller
	registry *filter.Registry
	memo     *grouping.Memo
}

func NewBuilder(nav *datenav.Controller, registry *filter.Registry) *Builder {
	if registry == nil {
		registry = filter.Default
	}
	return &Builder{
		nav:      nav,
		registry: registry,
		memo:     grouping.NewMemo(nav.Location()),
	}
}

// Build derives the view of in.
func (b *Builder) Build(in Input) *View {
	v := &View{
		Date:     datenav.Format(in.Date),
		Label:    in.Date.Format(labelLayout),
		Weekday:  in.Date.Weekday().String(),
		Relative: b.nav.Relative(in.Date),
		Forward:  b.nav.Forward(in.Date),
		Status:   in.Status,
		Buckets:  []Bucket{},
	}

	entries := b.registry.Filter(in.Entries, in.Enabled)
	for _, gb := range b.memo.Group(entries) {
		if bucket, ok := render(gb); ok {
			v.Buckets = append(v.Buckets, bucket)
		}
	}

	v.Transactions = []domain.Entry{}
	for i := range entries {
		if finance.IsTransaction(&entries[i]) {
			v.Transactions = append(v.Transactions, entries[i])
		}
	}
	v.Totals = finance.Summarize(v.Transactions)
	if in.Finances != nil {
		v.Balance = finance.BalanceSeries(in.Finances, in.Date, finance.BalanceSpan)
	}

	counts := b.registry.Count(in.Entries)
	for _, d := range b.registry.Definitions() {
		label := d.DisplayNamePlural
		if counts[d.Name] == 1 {
			label = d.DisplayName
		}
		v.Filters = append(v.Filters, FilterState{
			Name:      d.Name,
			Label:     label,
			IconClass: d.IconClass,
			Count:     counts[d.Name],
			Enabled:   in.Enabled.Has(d.Name),
		})
	}

	if source := in.Query.Get("source"); source != "" {
		v.Source = source
		v.ClearSourceURL = ClearSourceURL(in.Path, in.Query)
	}
	return v
}

// render resolves the items of a bucket. Entries that cannot be rendered and
// transactions are left out; a bucket left empty is dropped.
func render(gb grouping.Bucket) (Bucket, bool) {
	out := Bucket{Key: gb.Key, Title: gb.Title}
	for _, it := range gb.Items {
		if it.IsGallery() {
			out.Items = append(out.Items, Item{
				Renderer: entrytype.Gallery,
				Gallery:  it.Gallery.Entries,
			})
			continue
		}
		r := entrytype.Resolve(it.Entry)
		if !r.Known() || r.Presentation == entrytype.Transaction {
			continue
		}
		item := Item{Renderer: r.Presentation, Entry: it.Entry}
		if r.Variant != nil {
			item.Platform = r.Variant.Platform()
			item.PostType = r.Variant.PostType(it.Entry)
		}
		out.Items = append(out.Items, item)
	}
	return out, len(out.Items) > 0
}

// ClearSourceURL is path with query minus the source parameter.
func ClearSourceURL(path string, query url.Values) string {
	q := url.Values{}
	for k, vs := range query {
		if k == "source" {
			continue
		}
		q[k] = append([]string(nil), vs...)
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
