// Package entrytype maps raw entry types to the presentation used to render
// them.
package entrytype

import (
	"github.com/pbaille/timeline/internal/domain"
)

// Presentation identifies the renderer of an entry.
type Presentation string

// Unknown is returned for entry types nothing can render. Such entries are
// skipped, they are not an error.
const Unknown Presentation = ""

const (
	Activity    Presentation = "activity"
	Commit      Presentation = "commit"
	Diary       Presentation = "diary"
	Event       Presentation = "event"
	Gallery     Presentation = "gallery"
	HTML        Presentation = "html"
	Image       Presentation = "image"
	Journal     Presentation = "journal"
	Message     Presentation = "message"
	PDF         Presentation = "pdf"
	Post        Presentation = "post"
	Search      Presentation = "search"
	Text        Presentation = "text"
	Transaction Presentation = "transaction"
	Video       Presentation = "video"
	Watch       Presentation = "watch"
)

// byCategory is keyed on the leading dotted segment of entry_type.
var byCategory = map[string]Presentation{
	"browse":      Activity,
	"comment":     Post,
	"commit":      Commit,
	"diary":       Diary,
	"event":       Event,
	"finance":     Transaction,
	"html":        HTML,
	"image":       Image,
	"journal":     Journal,
	"message":     Message,
	"pdf":         PDF,
	"post":        Post,
	"search":      Search,
	"social":      Post,
	"text":        Text,
	"transaction": Transaction,
	"video":       Video,
	"watch":       Watch,
}

// Resolution is the outcome of resolving an entry type.
type Resolution struct {
	Presentation Presentation
	// Variant is set for Post resolutions only.
	Variant PostVariant
}

// Known reports whether the entry can be rendered.
func (r Resolution) Known() bool {
	return r.Presentation != Unknown
}

// Resolve maps an entry to its presentation. Posts are resolved a second
// time on the platform segment of the type; a post from an unknown platform
// cannot be rendered and resolves to Unknown.
func Resolve(e *domain.Entry) Resolution {
	p, ok := byCategory[e.Category()]
	if !ok {
		return Resolution{}
	}
	if p != Post {
		return Resolution{Presentation: p}
	}
	v := LookupVariant(e.Segment(1))
	if v == nil {
		return Resolution{}
	}
	return Resolution{Presentation: Post, Variant: v}
}

// ResolveType resolves a bare entry_type tag.
func ResolveType(entryType string) Resolution {
	return Resolve(&domain.Entry{EntryType: entryType})
}

// IsGalleryMedia reports whether the entry is folded into galleries.
func IsGalleryMedia(e *domain.Entry) bool {
	switch e.Category() {
	case "image", "pdf", "video":
		return true
	}
	return false
}
