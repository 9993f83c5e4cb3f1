package render

import "bytes"

// IsSufficient reports whether static HTML carries enough visible text to
// answer from, i.e. no browser escalation is needed.
// Heuristic: text-to-markup ratio plus SPA shell indicators.
func IsSufficient(html []byte) bool {
	if len(html) < 256 {
		return false
	}

	textLen, markupLen := textMarkupRatio(html)
	total := textLen + markupLen
	if total == 0 {
		return false
	}

	// Under 10% text is almost always a script shell.
	if float64(textLen)/float64(total) < 0.10 {
		return false
	}
	if textLen < 200 {
		return false
	}

	lower := bytes.ToLower(html)
	shellMarkers := [][]byte{
		[]byte(`<div id="root"></div>`),
		[]byte(`<div id="app"></div>`),
		[]byte(`<div id="__next"></div>`),
		[]byte(`<noscript>you need to enable javascript`),
		[]byte(`<noscript>enable javascript`),
	}
	for _, m := range shellMarkers {
		if bytes.Contains(lower, m) {
			return false
		}
	}

	return true
}

// textMarkupRatio approximates bytes of visible text vs markup.
// Script and style bodies count as markup, not text.
func textMarkupRatio(html []byte) (text, markup int) {
	lower := bytes.ToLower(html)
	inTag := false
	inScript := false
	inStyle := false

	for i := 0; i < len(lower); i++ {
		c := lower[i]
		switch {
		case c == '<':
			inTag = true
			markup++
			if bytes.HasPrefix(lower[i:], []byte("<script")) {
				inScript = true
			}
			if bytes.HasPrefix(lower[i:], []byte("</script")) {
				inScript = false
			}
			if bytes.HasPrefix(lower[i:], []byte("<style")) {
				inStyle = true
			}
			if bytes.HasPrefix(lower[i:], []byte("</style")) {
				inStyle = false
			}
		case c == '>':
			inTag = false
			markup++
		case inTag || inScript || inStyle:
			markup++
		case c == ' ' || c == '\n' || c == '\r' || c == '\t':
			// Whitespace counts for neither side.
		default:
			text++
		}
	}
	return text, markup
}
