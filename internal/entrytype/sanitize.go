package entrytype

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Tags dropped together with their content.
var droppedTags = map[string]bool{
	"script": true, "style": true, "iframe": true,
	"object": true, "embed": true, "noscript": true,
}

// Sanitize strips active content from an HTML fragment taken from a post
// body: dropped tags, on* handlers and javascript: URLs.
func Sanitize(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return html.EscapeString(fragment)
	}

	var sb strings.Builder
	for _, n := range nodes {
		if !clean(n) {
			continue
		}
		if err := html.Render(&sb, n); err != nil {
			return html.EscapeString(fragment)
		}
	}
	return sb.String()
}

// clean scrubs n in place and reports whether it should be kept.
func clean(n *html.Node) bool {
	if n.Type == html.ElementNode && droppedTags[n.Data] {
		return false
	}
	if n.Type == html.ElementNode {
		attrs := n.Attr[:0]
		for _, a := range n.Attr {
			key := strings.ToLower(a.Key)
			if strings.HasPrefix(key, "on") {
				continue
			}
			if (key == "href" || key == "src") &&
				strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
				continue
			}
			attrs = append(attrs, a)
		}
		n.Attr = attrs
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if !clean(c) {
			n.RemoveChild(c)
		}
		c = next
	}
	return true
}
