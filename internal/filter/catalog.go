package filter

import (
	"strings"

	"github.com/pbaille/timeline/internal/domain"
)

// HasGeolocation reports whether data.location carries both coordinates.
// A zero coordinate counts as missing, so points on the equator or the
// prime meridian are not shown on the map.
func HasGeolocation(e *domain.Entry) bool {
	loc, ok := e.Location()
	if !ok {
		return false
	}
	return domain.Truthy(loc.Latitude) && domain.Truthy(loc.Longitude)
}

func typeIs(t string) func(*domain.Entry) bool {
	return func(e *domain.Entry) bool { return e.EntryType == t }
}

func categoryIs(categories ...string) func(*domain.Entry) bool {
	return func(e *domain.Entry) bool {
		c := e.Category()
		for _, want := range categories {
			if c == want {
				return true
			}
		}
		return false
	}
}

// typePrefix matches the type itself and its dotted subtypes.
func typePrefix(prefix string) func(*domain.Entry) bool {
	return func(e *domain.Entry) bool {
		return e.EntryType == prefix || strings.HasPrefix(e.EntryType, prefix+".")
	}
}

func catalog() []Definition {
	return []Definition{
		{Name: "blog", DisplayName: "blog post", DisplayNamePlural: "blog posts", IconClass: "fas fa-rss", Match: typePrefix("social.blog")},
		{Name: "browse", DisplayName: "page view", DisplayNamePlural: "page views", IconClass: "fas fa-globe-americas", Match: typeIs("browse")},
		{Name: "commit", DisplayName: "commit", DisplayNamePlural: "commits", IconClass: "fab fa-git-square", Match: typeIs("commit")},
		{Name: "file", DisplayName: "file", DisplayNamePlural: "files", IconClass: "fas fa-file", Match: typeIs("file")},
		{Name: "hackerNews", DisplayName: "Hacker News entry", DisplayNamePlural: "Hacker News entries", IconClass: "fab fa-y-combinator", Match: typePrefix("social.hackernews")},
		{Name: "image", DisplayName: "image", DisplayNamePlural: "images", IconClass: "fas fa-image", Match: typeIs("image")},
		{Name: "journal", DisplayName: "journal entry", DisplayNamePlural: "journal entries", IconClass: "fas fa-pen-square", Match: categoryIs("journal", "diary")},
		{Name: "location", DisplayName: "location ping", DisplayNamePlural: "location pings", IconClass: "fas fa-map-marker-alt", Match: HasGeolocation},
		{Name: "message", DisplayName: "message", DisplayNamePlural: "messages", IconClass: "fas fa-comments", Match: categoryIs("message")},
		{Name: "reddit", DisplayName: "reddit entry", DisplayNamePlural: "reddit entries", IconClass: "fab fa-reddit", Match: typePrefix("social.reddit")},
		{Name: "search", DisplayName: "search", DisplayNamePlural: "searches", IconClass: "fas fa-search", Match: typeIs("search")},
		{Name: "transaction", DisplayName: "transaction", DisplayNamePlural: "transactions", IconClass: "fas fa-piggy-bank", Match: categoryIs("transaction", "finance")},
		{Name: "twitter", DisplayName: "tweet", DisplayNamePlural: "tweets", IconClass: "fab fa-twitter", Match: typePrefix("social.twitter")},
		{Name: "video", DisplayName: "video", DisplayNamePlural: "videos", IconClass: "fas fa-video", Match: typeIs("video")},
	}
}
