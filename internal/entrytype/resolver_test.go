package entrytype

import (
	"testing"

	"github.com/pbaille/timeline/internal/domain"
)

func TestResolveRedditComment(t *testing.T) {
	e := &domain.Entry{EntryType: "social.reddit.comment"}
	r := Resolve(e)
	if r.Presentation != Post {
		t.Fatalf("expected post, got %q", r.Presentation)
	}
	if got := r.Variant.PostType(e); got != "Comment" {
		t.Fatalf("expected Comment, got %q", got)
	}
}

func TestResolveRedditPost(t *testing.T) {
	e := &domain.Entry{EntryType: "social.reddit.post"}
	r := Resolve(e)
	if r.Presentation != Post {
		t.Fatalf("expected post, got %q", r.Presentation)
	}
	if got := r.Variant.PostType(e); got != "Post" {
		t.Fatalf("expected Post, got %q", got)
	}
}

func TestResolveKnownTypes(t *testing.T) {
	cases := map[string]Presentation{
		"browse":            Activity,
		"commit":            Commit,
		"html":              HTML,
		"journal":           Journal,
		"message.telegram":  Message,
		"message.text.sms":  Message,
		"text":              Text,
		"watch":             Watch,
		"image":             Image,
		"transaction":       Transaction,
		"finance.expense":   Transaction,
		"social.twitter.tw": Post,
	}
	for typ, want := range cases {
		if got := ResolveType(typ).Presentation; got != want {
			t.Errorf("%s: expected %q, got %q", typ, want, got)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	for _, typ := range []string{"geolocation", "balance", "social.myspace.post", "post", "nope"} {
		r := ResolveType(typ)
		if r.Known() {
			t.Errorf("%s: expected unknown, got %q", typ, r.Presentation)
		}
	}
}

func TestIsGalleryMedia(t *testing.T) {
	for typ, want := range map[string]bool{"image": true, "pdf": true, "video": true, "text": false, "message": false} {
		if got := IsGalleryMedia(&domain.Entry{EntryType: typ}); got != want {
			t.Errorf("%s: expected %v, got %v", typ, want, got)
		}
	}
}
