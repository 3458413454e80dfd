package entrytype

import (
	"testing"

	"github.com/pbaille/timeline/internal/domain"
)

func TestTwitterMentions(t *testing.T) {
	e := &domain.Entry{
		EntryType:   "social.twitter.tweet",
		Description: "thanks @gopher & co",
		Data:        map[string]any{"post_user": "me", "post_id": float64(42)},
	}
	tw := Twitter{}
	want := `<p>thanks <a target="_blank" href="https://twitter.com/gopher">@gopher</a> &amp; co</p>`
	if got := tw.RichDescription(e); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got := tw.PostURL(e); got != "https://twitter.com/me/status/42" {
		t.Fatalf("unexpected post url %s", got)
	}
	if got := tw.User(e); got != "@me" {
		t.Fatalf("unexpected user %s", got)
	}
}

func TestHackerNewsFirstParagraph(t *testing.T) {
	e := &domain.Entry{
		EntryType: "social.hackernews.comment",
		Data:      map[string]any{"post_body_html": "First para<p>Second"},
	}
	want := "<p>First para</p><p>Second</p>"
	if got := (HackerNews{}).RichDescription(e); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got := (HackerNews{}).PostType(e); got != "Comment" {
		t.Fatalf("expected Comment, got %s", got)
	}
}

func TestHackerNewsStory(t *testing.T) {
	e := &domain.Entry{
		EntryType: "social.hackernews.story",
		Title:     "Show HN",
		Data:      map[string]any{"post_id": "123"},
	}
	want := `<h3><a href="https://news.ycombinator.com/item?id=123">Show HN</a></h3>`
	if got := (HackerNews{}).RichDescription(e); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got := (HackerNews{}).PostType(e); got != "Submission" {
		t.Fatalf("expected Submission, got %s", got)
	}
}

func TestRedditCommunity(t *testing.T) {
	e := &domain.Entry{
		EntryType: "social.reddit.comment",
		Data: map[string]any{
			"post_community": "golang",
			"post_thread_id": "abc",
			"post_id":        "def",
		},
	}
	r := Reddit{}
	if got := r.Community(e); got != "/r/golang" {
		t.Fatalf("unexpected community %s", got)
	}
	if got := r.PostURL(e); got != "https://reddit.com/comments/abc/_/def" {
		t.Fatalf("unexpected post url %s", got)
	}
}

func TestBlogCommunityFromURL(t *testing.T) {
	e := &domain.Entry{
		EntryType: "social.blog.post",
		Data:      map[string]any{"post_url": "https://example.com/2021/05/hello"},
	}
	b := Blog{}
	if got := b.Community(e); got != "example.com" {
		t.Fatalf("unexpected community %s", got)
	}
	if got := b.CommunityURL(e); got != "https://example.com" {
		t.Fatalf("unexpected community url %s", got)
	}
	if got := b.UserURL(e); got != "" {
		t.Fatalf("expected no user url, got %s", got)
	}
}

func TestSanitizeDropsScripts(t *testing.T) {
	got := Sanitize(`<p onclick="x()">hi<script>alert(1)</script> <a href="javascript:evil()">x</a></p>`)
	want := `<p>hi <a>x</a></p>`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
