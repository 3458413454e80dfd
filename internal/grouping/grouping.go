// Package grouping buckets a day's entries by time and folds runs of media
// entries into galleries.
package grouping

import (
	"fmt"
	"sort"
	"time"

	"github.com/pbaille/timeline/internal/domain"
	"github.com/pbaille/timeline/internal/entrytype"
)

// BucketSpan is the longest distance between the first entry of a bucket and
// any later entry of the same bucket.
const BucketSpan = time.Hour

// Gallery is a run of contiguous media entries inside one bucket.
type Gallery struct {
	Entries []*domain.Entry
}

// Item is either a single entry or a gallery.
type Item struct {
	Entry   *domain.Entry
	Gallery *Gallery
}

func (i Item) IsGallery() bool { return i.Gallery != nil }

// First returns the entry the item starts with.
func (i Item) First() *domain.Entry {
	if i.Gallery != nil {
		return i.Gallery.Entries[0]
	}
	return i.Entry
}

// Bucket is a group of entries that start within BucketSpan of each other.
type Bucket struct {
	// Key is the raw timeline stamp of the first member.
	Key   string
	Start time.Time
	Title string
	Items []Item
}

// Len counts the entries of the bucket, gallery members included.
func (b Bucket) Len() int {
	n := 0
	for _, it := range b.Items {
		if it.Gallery != nil {
			n += len(it.Gallery.Entries)
			continue
		}
		n++
	}
	return n
}

type rawBucket struct {
	key     string
	start   time.Time
	started bool
	entries []*domain.Entry
}

// bucketSet holds buckets in first-seen order, keyed by the raw stamp of
// their first entry.
type bucketSet struct {
	buckets []*rawBucket
	byKey   map[string]*rawBucket
}

// open returns the bucket keyed by key, creating it at the end when new.
func (s *bucketSet) open(key string) *rawBucket {
	if b, ok := s.byKey[key]; ok {
		return b
	}
	if s.byKey == nil {
		s.byKey = make(map[string]*rawBucket)
	}
	b := &rawBucket{key: key}
	s.byKey[key] = b
	s.buckets = append(s.buckets, b)
	return b
}

// Group buckets entries, which must already be sorted by their timeline
// stamp. Timestamps without a zone are read in loc.
//
// A new bucket starts when the entry is more than BucketSpan after the first
// entry of the current bucket. Buckets are keyed by the raw stamp of their
// first entry: a second bucket starting on the same stamp is merged into the
// first one. The result is ordered chronologically.
func Group(entries []domain.Entry, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.Local
	}

	var set bucketSet
	var current *rawBucket

	for i := range entries {
		e := &entries[i]
		t, ok := e.TimelineTime(loc)

		if current == nil || (ok && current.started && t.Sub(current.start) > BucketSpan) {
			current = set.open(e.TimelineStamp())
		}
		if ok && !current.started {
			current.start = t
			current.started = true
		}
		current.entries = append(current.entries, e)
	}

	raws := set.buckets
	sort.SliceStable(raws, func(i, j int) bool {
		return raws[i].start.Before(raws[j].start)
	})

	buckets := make([]Bucket, 0, len(raws))
	for _, raw := range raws {
		b := Bucket{
			Key:   raw.key,
			Start: raw.start,
			Items: fold(raw.entries),
		}
		b.Title = Title(b, loc)
		buckets = append(buckets, b)
	}
	return buckets
}

// fold collapses runs of gallery media into a single Gallery item placed where
// the run starts.
func fold(entries []*domain.Entry) []Item {
	items := make([]Item, 0, len(entries))
	var open *Gallery
	for _, e := range entries {
		if !entrytype.IsGalleryMedia(e) {
			open = nil
			items = append(items, Item{Entry: e})
			continue
		}
		if open == nil {
			open = &Gallery{}
			items = append(items, Item{Gallery: open})
		}
		open.Entries = append(open.Entries, e)
	}
	return items
}

// Title formats the time of the bucket's first entry as H:MM.
func Title(b Bucket, loc *time.Location) string {
	if len(b.Items) == 0 {
		return ""
	}
	t, ok := b.Items[0].First().TimelineTime(loc)
	if !ok {
		return ""
	}
	return FormatTime(t.In(loc))
}

// FormatTime renders 24-hour time with zero padded minutes: 9:05, 14:30.
func FormatTime(t time.Time) string {
	return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
}
