package artifact

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxText caps the extracted text.
const MaxText = 10 * 1024

// hidden elements never reach the reader of an entry.
var hidden = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true,
	atom.Template: true, atom.Iframe: true, atom.Nav: true,
	atom.Header: true, atom.Footer: true, atom.Aside: true,
}

// block elements end a paragraph.
var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Br: true,
	atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
}

type paragraphs struct {
	done []string
	cur  []string
}

func (p *paragraphs) walk(n *html.Node) {
	if n.Type == html.ElementNode && hidden[n.DataAtom] {
		return
	}
	if n.Type == html.TextNode {
		p.cur = append(p.cur, strings.Fields(n.Data)...)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
	if n.Type == html.ElementNode && block[n.DataAtom] {
		p.flush()
	}
}

func (p *paragraphs) flush() {
	if len(p.cur) > 0 {
		p.done = append(p.done, strings.Join(p.cur, " "))
		p.cur = p.cur[:0]
	}
}

// Paragraphs returns the readable paragraphs of an HTML entry body, with
// whitespace collapsed and page chrome left out.
func Paragraphs(htmlContent string) []string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}
	var p paragraphs
	p.walk(doc)
	p.flush()
	return p.done
}

// Text is the paragraphs of an HTML entry body, one per line, capped at
// MaxText bytes.
func Text(htmlContent string) string {
	text := strings.Join(Paragraphs(htmlContent), "\n")
	if len(text) > MaxText {
		text = truncate(text, MaxText) + "..."
	}
	return text
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
