package entrytype

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/pbaille/timeline/internal/domain"
)

// PostVariant renders one social platform family.
type PostVariant interface {
	Platform() string
	IconClass(e *domain.Entry) string
	User(e *domain.Entry) string
	UserURL(e *domain.Entry) string
	PostURL(e *domain.Entry) string
	Website(e *domain.Entry) string
	// Community and CommunityURL are empty when the platform has none.
	Community(e *domain.Entry) string
	CommunityURL(e *domain.Entry) string
	PostType(e *domain.Entry) string
	RichDescription(e *domain.Entry) string
}

// LookupVariant returns the variant for a platform segment, or nil.
func LookupVariant(platform string) PostVariant {
	switch platform {
	case "twitter":
		return Twitter{}
	case "reddit":
		return Reddit{}
	case "hackernews":
		return HackerNews{}
	case "blog":
		return Blog{}
	}
	return nil
}

// Variants lists every known platform.
func Variants() []PostVariant {
	return []PostVariant{Twitter{}, Reddit{}, HackerNews{}, Blog{}}
}

var mentionPattern = regexp.MustCompile(`@(\w{1,50})`)

type Twitter struct{}

func (Twitter) Platform() string { return "twitter" }
func (Twitter) IconClass(*domain.Entry) string { return "fab fa-twitter" }
func (Twitter) Website(*domain.Entry) string { return "Twitter" }
func (Twitter) Community(*domain.Entry) string { return "" }
func (Twitter) CommunityURL(*domain.Entry) string { return "" }
func (Twitter) PostType(*domain.Entry) string { return "Tweet" }

func (Twitter) User(e *domain.Entry) string {
	return "@" + e.DataString("post_user")
}

func (Twitter) UserURL(e *domain.Entry) string {
	return "https://twitter.com/" + e.DataString("post_user")
}

func (Twitter) PostURL(e *domain.Entry) string {
	return fmt.Sprintf("https://twitter.com/%s/status/%s", e.DataString("post_user"), e.DataString("post_id"))
}

func (Twitter) RichDescription(e *domain.Entry) string {
	body := "<p>" + html.EscapeString(e.Description) + "</p>"
	return mentionPattern.ReplaceAllString(body, `<a target="_blank" href="https://twitter.com/$1">@$1</a>`)
}

type Reddit struct{}

func (Reddit) Platform() string { return "reddit" }
func (Reddit) IconClass(*domain.Entry) string { return "fab fa-reddit" }
func (Reddit) Website(*domain.Entry) string { return "Reddit" }

func (Reddit) User(e *domain.Entry) string {
	return e.DataString("post_user")
}

func (Reddit) UserURL(e *domain.Entry) string {
	return "https://reddit.com/user/" + e.DataString("post_user")
}

func (Reddit) PostURL(e *domain.Entry) string {
	return fmt.Sprintf("https://reddit.com/comments/%s/_/%s", e.DataString("post_thread_id"), e.DataString("post_id"))
}

func (Reddit) Community(e *domain.Entry) string {
	return "/r/" + e.DataString("post_community")
}

func (Reddit) CommunityURL(e *domain.Entry) string {
	return "https://www.reddit.com/r/" + e.DataString("post_community")
}

func (Reddit) PostType(e *domain.Entry) string {
	if e.EntryType == "social.reddit.comment" {
		return "Comment"
	}
	return "Post"
}

func (Reddit) RichDescription(e *domain.Entry) string {
	if e.EntryType == "social.reddit.post" {
		return headline(e.DataString("post_url"), e.Title)
	}
	return Sanitize(e.DataString("post_body_html"))
}

type HackerNews struct{}

func (HackerNews) Platform() string { return "hackernews" }
func (HackerNews) IconClass(*domain.Entry) string { return "fab fa-y-combinator" }
func (HackerNews) Website(*domain.Entry) string { return "Hacker News" }
func (HackerNews) Community(*domain.Entry) string { return "" }
func (HackerNews) CommunityURL(*domain.Entry) string { return "" }

func (HackerNews) User(e *domain.Entry) string {
	return e.DataString("post_user")
}

func (HackerNews) UserURL(e *domain.Entry) string {
	return "https://news.ycombinator.com/submitted?id=" + e.DataString("post_user")
}

func (HackerNews) PostURL(e *domain.Entry) string {
	return "https://news.ycombinator.com/item?id=" + e.DataString("post_id")
}

func (HackerNews) PostType(e *domain.Entry) string {
	if e.EntryType == "social.hackernews.comment" {
		return "Comment"
	}
	return "Submission"
}

// RichDescription renders stories as a headline. Comment bodies come from the
// HN API without a <p> around the first paragraph.
func (h HackerNews) RichDescription(e *domain.Entry) string {
	if e.EntryType == "social.hackernews.story" {
		return headline(h.PostURL(e), e.Title)
	}
	body := strings.Replace(e.DataString("post_body_html"), "<p>", "</p><p>", 1)
	return Sanitize("<p>" + body)
}

type Blog struct{}

func (Blog) Platform() string { return "blog" }
func (Blog) IconClass(*domain.Entry) string { return "fas fa-rss" }
func (Blog) UserURL(*domain.Entry) string { return "" }
func (Blog) Website(*domain.Entry) string { return "Website" }
func (Blog) PostType(*domain.Entry) string { return "Post" }

func (Blog) User(e *domain.Entry) string {
	return e.DataString("post_user")
}

func (Blog) PostURL(e *domain.Entry) string {
	return e.DataString("post_url")
}

func (Blog) Community(e *domain.Entry) string {
	u, err := url.Parse(e.DataString("post_url"))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func (Blog) CommunityURL(e *domain.Entry) string {
	u, err := url.Parse(e.DataString("post_url"))
	if err != nil || u.Host == "" {
		return ""
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
}

func (Blog) RichDescription(e *domain.Entry) string {
	return Sanitize(e.DataString("post_body_html"))
}

func headline(href, title string) string {
	return fmt.Sprintf(`<h3><a href="%s">%s</a></h3>`, html.EscapeString(href), html.EscapeString(title))
}
