// CLAUDE:SUMMARY Deterministic URL heuristics: submission-URL extraction, data-file discovery, API mention discovery.
package chain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/quizchain/render"
)

// submitInstructionRe anchors on the explicit instruction phrase quiz pages
// carry, e.g. "Post your answer to https://host/submit".
var submitInstructionRe = regexp.MustCompile(`(?i)post your answer to\s+(https?://[^\s"'<>]+)`)

// apiMentionRe finds an API endpoint called out in question text,
// e.g. "API: https://host/v1/data".
var apiMentionRe = regexp.MustCompile(`(?i)(?:api|endpoint|url)[:\s]+(https?://[^\s"'<>]+)`)

// inlineFileRe finds absolute data-file URLs embedded in visible text.
var inlineFileRe = regexp.MustCompile(`(?i)https?://[^\s"'<>]+\.(?:csv|json|txt|pdf|xlsx|xls)\b`)

// fileHints are substrings of an href or anchor label that mark a resource
// as quiz data worth downloading.
var fileHints = []string{".csv", ".json", ".txt", ".pdf", ".xlsx", ".xls", "download", "file", "data"}

// ExtractSubmitURL derives the grading endpoint from a rendered page.
// Pure function of page content: the instruction phrase is searched in the
// renderer's text first, then in a fresh visible-text pass over the HTML
// (markup sometimes splits the phrase across nested tags the first
// projection joined differently). Fallback is the page origin plus /submit.
func ExtractSubmitURL(page *render.Page) (string, error) {
	for _, text := range []string{page.Text, render.VisibleText(page.HTML)} {
		if m := submitInstructionRe.FindStringSubmatch(text); m != nil {
			return strings.TrimRight(m[1], `.,;:!?)"'`), nil
		}
	}

	origin, err := url.Parse(page.URL)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return "", fmt.Errorf("%w: cannot parse origin of %q", ErrNoSubmitURL, page.URL)
	}
	return origin.Scheme + "://" + origin.Host + "/submit", nil
}

// DiscoverAPIURL returns the first API-like URL mentioned in the text, or
// empty when none is called out.
func DiscoverAPIURL(text string) string {
	if m := apiMentionRe.FindStringSubmatch(text); m != nil {
		return strings.TrimRight(m[1], `.,;:!?)"'`)
	}
	return ""
}

// DiscoverFileURLs scans anchor hrefs and inline text for data-file
// candidates, resolving relative hrefs against the page URL. Duplicates are
// dropped while first-seen order is preserved; the caller caps fan-out.
func DiscoverFileURLs(page *render.Page) []string {
	var found []string
	seen := make(map[string]bool)
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		found = append(found, u)
	}

	base, baseErr := url.Parse(page.URL)

	doc, err := html.Parse(strings.NewReader(page.HTML))
	if err == nil {
		var walk func(*html.Node)
		walk = func(n *html.Node) {
			if n.Type == html.ElementNode && n.DataAtom == atom.A {
				href := attrVal(n, "href")
				if href != "" && isFileCandidate(href, anchorText(n)) {
					add(resolveHref(base, baseErr, href))
				}
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
		walk(doc)
	}

	for _, m := range inlineFileRe.FindAllString(page.Text, -1) {
		add(m)
	}

	return found
}

func isFileCandidate(href, label string) bool {
	h := strings.ToLower(href)
	l := strings.ToLower(label)
	for _, hint := range fileHints {
		if strings.Contains(h, hint) || strings.Contains(l, hint) {
			return true
		}
	}
	return false
}

func resolveHref(base *url.URL, baseErr error, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	if baseErr != nil || base == nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func attrVal(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func anchorText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
