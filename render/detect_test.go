package render

import "testing"

func TestIsSufficient_StaticQuizPage(t *testing.T) {
	html := []byte(`<!DOCTYPE html>
<html>
<head><title>Quiz 3</title></head>
<body>
<main>
<h1>Question 3</h1>
<p>Download the attached CSV and compute the mean of the value column,
rounded to two decimal places. The file covers twelve months of sensor
readings from four stations; ignore rows where the status column is
anything other than OK. Post your answer to https://quiz.example/submit
within the time limit to receive the next question in the chain.</p>
</main>
</body>
</html>`)
	if !IsSufficient(html) {
		t.Error("expected sufficient for static page with content")
	}
}

func TestIsSufficient_SPAShell(t *testing.T) {
	html := []byte(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>App</title></head>
<body>
<div id="root"></div>
<script src="/static/js/main.chunk.js"></script>
</body>
</html>`)
	if IsSufficient(html) {
		t.Error("expected insufficient for SPA shell")
	}
}

func TestIsSufficient_TooShort(t *testing.T) {
	html := []byte(`<html><body>hi</body></html>`)
	if IsSufficient(html) {
		t.Error("expected insufficient for very short content")
	}
}

func TestIsSufficient_ScriptHeavy(t *testing.T) {
	body := `<html><head></head><body><div>ok</div><script>`
	for i := 0; i < 50; i++ {
		body += "window.__state = window.__state || {}; document.title = 'x';"
	}
	body += `</script></body></html>`
	if IsSufficient([]byte(body)) {
		t.Error("expected insufficient when text ratio is tiny")
	}
}

func TestTextMarkupRatio(t *testing.T) {
	text, markup := textMarkupRatio([]byte(`<div>Hello World</div>`))
	if text == 0 {
		t.Error("expected non-zero text count")
	}
	if markup == 0 {
		t.Error("expected non-zero markup count")
	}
	if text >= markup {
		t.Errorf("expected markup-heavy snippet, got text=%d markup=%d", text, markup)
	}
}
