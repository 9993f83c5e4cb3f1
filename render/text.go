package render

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skippedElements are elements whose subtrees never contribute visible text.
var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Head:     true,
	atom.Meta:     true,
	atom.Link:     true,
	atom.Template: true,
	atom.Iframe:   true,
}

// VisibleText projects HTML onto the text a reader would see: non-visible
// elements stripped, whitespace collapsed to single spaces.
func VisibleText(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		// html.Parse almost never fails on real-world input; fall back to
		// the raw string with tags left in rather than returning nothing.
		return collapseWhitespace(markup)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapseWhitespace(sb.String())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
