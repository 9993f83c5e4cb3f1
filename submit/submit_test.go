package submit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSubmit_CorrectWithNextURL(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: got %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"correct": true, "url": "https://x.test/q2", "reason": null}`))
	}))
	defer srv.Close()

	c := New(Config{})
	out := c.Submit(context.Background(), srv.URL, []byte(`{"email":"a@b.c","answer":42}`))

	if !out.Correct {
		t.Error("expected correct")
	}
	if out.NextURL != "https://x.test/q2" {
		t.Errorf("next url: got %q", out.NextURL)
	}
	if gotBody["answer"].(float64) != 42 {
		t.Errorf("posted answer: got %v", gotBody["answer"])
	}
}

func TestSubmit_MissingFieldsTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	out := New(Config{}).Submit(context.Background(), srv.URL, []byte(`{}`))
	if out.Correct {
		t.Error("absent correct must read as false")
	}
	if out.NextURL != "" {
		t.Errorf("absent url must read as empty, got %q", out.NextURL)
	}
}

func TestSubmit_TransportFailure(t *testing.T) {
	out := New(Config{}).Submit(context.Background(), "http://127.0.0.1:1/submit", []byte(`{}`))
	if out.Correct {
		t.Error("transport failure must be incorrect")
	}
	if out.NextURL != "" {
		t.Error("transport failure must carry no next URL")
	}
	if out.Reason == "" {
		t.Error("expected a reason")
	}
}

func TestSubmit_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	out := New(Config{}).Submit(context.Background(), srv.URL, []byte(`{}`))
	if out.Correct {
		t.Error("non-200 must be incorrect")
	}
	if !strings.Contains(out.Reason, "status 500") {
		t.Errorf("reason: %q", out.Reason)
	}
}

func TestSubmit_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	out := New(Config{}).Submit(context.Background(), srv.URL, []byte(`{}`))
	if out.Correct {
		t.Error("non-JSON must be incorrect")
	}
	if !strings.Contains(out.Reason, "non-JSON") {
		t.Errorf("reason: %q", out.Reason)
	}
	if len(out.Raw) == 0 {
		t.Error("raw body must be retained for diagnostics")
	}
}
