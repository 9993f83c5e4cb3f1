package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const staticQuizHTML = `<!DOCTYPE html>
<html>
<head><title>Quiz 1</title></head>
<body>
<h1>Question 1</h1>
<p>Here is a long static question body that does not need any JavaScript
to display. It asks you to add two numbers together and report the sum.
The numbers are forty-one and one. Post your answer to
https://quiz.example/submit before the deadline expires. There is enough
prose here for the sufficiency heuristic to accept the static render.</p>
</body>
</html>`

func TestRender_StaticPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(staticQuizHTML))
	}))
	defer srv.Close()

	e := New(Config{})
	defer e.Close()

	page, err := e.Render(context.Background(), srv.URL, false)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if page.Dynamic {
		t.Error("expected static render for sufficient HTML")
	}
	if page.URL != srv.URL {
		t.Errorf("url: got %q, want %q", page.URL, srv.URL)
	}
	if !strings.Contains(page.Text, "forty-one") {
		t.Errorf("visible text missing question body: %q", page.Text)
	}
	if strings.Contains(page.Text, "<p>") {
		t.Error("visible text contains markup")
	}
}

func TestFetchStatic_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	e := New(Config{})
	defer e.Close()

	if _, err := e.fetchStatic(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
