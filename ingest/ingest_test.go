package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetch_CSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("city,population\nParis,2100000\nLyon,520000\n"))
	}))
	defer srv.Close()

	f := New(Config{})
	s := f.Fetch(context.Background(), srv.URL+"/data.csv")

	if s.Size == 0 {
		t.Fatal("expected non-zero size")
	}
	if !strings.Contains(s.Preview, "Headers: city, population") {
		t.Errorf("preview missing headers: %q", s.Preview)
	}
	rows, ok := s.Data.([]map[string]string)
	if !ok {
		t.Fatalf("expected parsed rows, got %T", s.Data)
	}
	if len(rows) != 2 {
		t.Errorf("rows: got %d, want 2", len(rows))
	}
	if rows[0]["city"] != "Paris" {
		t.Errorf("row 0 city: got %q", rows[0]["city"])
	}
}

func TestFetch_JSONObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer": 42, "unit": "items"}`))
	}))
	defer srv.Close()

	f := New(Config{})
	s := f.Fetch(context.Background(), srv.URL)

	if !strings.Contains(s.Preview, "JSON object with keys") {
		t.Errorf("preview: %q", s.Preview)
	}
	obj, ok := s.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %T", s.Data)
	}
	if obj["unit"] != "items" {
		t.Errorf("unit: got %v", obj["unit"])
	}
}

func TestFetch_TruncatesOversized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(strings.Repeat("a", 4096)))
	}))
	defer srv.Close()

	f := New(Config{MaxBytes: 1024})
	s := f.Fetch(context.Background(), srv.URL)

	if s.Size != 1024 {
		t.Errorf("size: got %d, want the 1024-byte cap", s.Size)
	}
	if strings.Contains(s.Preview, "error") {
		t.Errorf("truncation must not surface as an error: %q", s.Preview)
	}
}

func TestFetch_DownloadErrorBecomesPreview(t *testing.T) {
	f := New(Config{})
	s := f.Fetch(context.Background(), "http://127.0.0.1:1/unreachable.csv")

	if !strings.HasPrefix(s.Preview, "[error:") {
		t.Errorf("expected error preview, got %q", s.Preview)
	}
	if s.Data != nil {
		t.Error("expected nil data on failure")
	}
}

func TestFetch_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	f := New(Config{})
	s := f.Fetch(context.Background(), srv.URL)
	if !strings.Contains(s.Preview, "status 403") {
		t.Errorf("preview: %q", s.Preview)
	}
}

func TestDetectKind(t *testing.T) {
	cases := []struct {
		url, ct string
		want    kind
	}{
		{"https://x.test/a.csv", "", kindCSV},
		{"https://x.test/a.csv?sig=abc", "application/octet-stream", kindCSV},
		{"https://x.test/data", "application/json; charset=utf-8", kindJSON},
		{"https://x.test/doc.pdf", "", kindPDF},
		{"https://x.test/book.xlsx", "", kindXLSX},
		{"https://x.test/page", "text/html", kindHTML},
		{"https://x.test/notes.txt", "text/plain", kindText},
	}
	for _, c := range cases {
		if got := detectKind(c.url, c.ct); got != c.want {
			t.Errorf("detectKind(%q, %q): got %v, want %v", c.url, c.ct, got, c.want)
		}
	}
}

func TestPromptBlock(t *testing.T) {
	s := &Summary{
		URL:         "https://x.test/a.csv",
		ContentType: "text/csv",
		Size:        64,
		Preview:     "Headers: a, b",
		Data:        []map[string]string{{"a": "1", "b": "2"}},
	}
	block := s.PromptBlock()
	for _, want := range []string{"FILE: https://x.test/a.csv", "Type: text/csv", "Size: 64 bytes", "Headers: a, b", "1 parsed rows"} {
		if !strings.Contains(block, want) {
			t.Errorf("prompt block missing %q:\n%s", want, block)
		}
	}
}
