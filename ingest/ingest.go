// CLAUDE:SUMMARY Data ingestor: bounded download plus per-format preview dispatch (csv, json, pdf, xlsx, html, text).
// Package ingest downloads resources referenced by a quiz page and turns
// them into bounded textual previews a reasoning backend can consume.
//
// Ingestion never hard-fails: oversized content is truncated and download
// or parse errors become an error preview, so one broken link cannot sink
// a whole round.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Summary is the processed form of one downloaded resource.
type Summary struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Preview     string `json:"preview"`
	Data        any    `json:"data,omitempty"` // parsed rows/values where the format allows
}

// Config configures the Fetcher.
type Config struct {
	// MaxBytes caps one download. Content beyond it is truncated. Default: 10MB.
	MaxBytes int64

	// Timeout bounds one download. Default: 30s.
	Timeout time.Duration

	// PreviewLimit caps preview text length in characters. Default: 6000.
	PreviewLimit int

	UserAgent string
	Logger    *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 << 20
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.PreviewLimit <= 0 {
		c.PreviewLimit = 6000
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; QuizChain/1.0)"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Fetcher downloads and summarizes resources.
type Fetcher struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
	html   *htmlPreviewer
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: cfg.Logger,
		html:   newHTMLPreviewer(),
	}
}

// CloseIdleConnections drops pooled connections. Called when the chain that
// drove the downloads ends.
func (f *Fetcher) CloseIdleConnections() {
	f.client.CloseIdleConnections()
}

// Fetch downloads a resource and returns its summary. It never returns an
// error: failures are reported inside the preview so the caller can still
// hand the backend something about the resource.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) *Summary {
	s := &Summary{URL: rawURL, ContentType: "unknown"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		s.Preview = fmt.Sprintf("[error: %v]", err)
		return s
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("ingest: download failed", "url", rawURL, "error", err)
		s.Preview = fmt.Sprintf("[error: %v]", err)
		return s
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.Preview = fmt.Sprintf("[error: status %d]", resp.StatusCode)
		return s
	}

	// Truncate, never fail, on oversized bodies.
	content, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes))
	if err != nil {
		s.Preview = fmt.Sprintf("[error: read: %v]", err)
		return s
	}

	s.ContentType = strings.ToLower(resp.Header.Get("Content-Type"))
	s.Size = len(content)
	f.summarize(s, content)
	return s
}

// summarize dispatches to a format-specific preview builder.
func (f *Fetcher) summarize(s *Summary, content []byte) {
	switch detectKind(s.URL, s.ContentType) {
	case kindCSV:
		s.Preview, s.Data = previewCSV(content, f.cfg.PreviewLimit)
	case kindJSON:
		s.Preview, s.Data = previewJSON(content, f.cfg.PreviewLimit)
	case kindPDF:
		s.Preview = previewPDF(content, f.cfg.PreviewLimit)
	case kindXLSX:
		s.Preview, s.Data = previewXLSX(content, f.cfg.PreviewLimit)
	case kindHTML:
		s.Preview = f.html.preview(content, f.cfg.PreviewLimit)
	default:
		s.Preview = previewText(content, f.cfg.PreviewLimit)
	}
}

type kind int

const (
	kindText kind = iota
	kindCSV
	kindJSON
	kindPDF
	kindXLSX
	kindHTML
)

// detectKind picks a preview builder from content type, falling back to the
// URL's extension when the server is vague.
func detectKind(rawURL, contentType string) kind {
	u := strings.ToLower(rawURL)
	// Strip query string before extension checks.
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	switch {
	case strings.Contains(contentType, "csv") || strings.HasSuffix(u, ".csv"):
		return kindCSV
	case strings.Contains(contentType, "json") || strings.HasSuffix(u, ".json"):
		return kindJSON
	case strings.Contains(contentType, "pdf") || strings.HasSuffix(u, ".pdf"):
		return kindPDF
	case strings.Contains(contentType, "spreadsheet") || strings.Contains(contentType, "excel") ||
		strings.HasSuffix(u, ".xlsx") || strings.HasSuffix(u, ".xls"):
		return kindXLSX
	case strings.Contains(contentType, "html") || strings.HasSuffix(u, ".html") || strings.HasSuffix(u, ".htm"):
		return kindHTML
	default:
		return kindText
	}
}

// PromptBlock formats the summary for inclusion in a reasoning prompt.
func (s *Summary) PromptBlock() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "FILE: %s\n", s.URL)
	fmt.Fprintf(&sb, "Type: %s\n", s.ContentType)
	fmt.Fprintf(&sb, "Size: %d bytes\n\n", s.Size)
	sb.WriteString("CONTENT PREVIEW:\n")
	if s.Preview == "" {
		sb.WriteString("[No preview available]")
	} else {
		sb.WriteString(s.Preview)
	}
	switch d := s.Data.(type) {
	case nil:
	case []map[string]string:
		fmt.Fprintf(&sb, "\n\nData: %d parsed rows", len(d))
	case []any:
		fmt.Fprintf(&sb, "\n\nData: list with %d items", len(d))
	case map[string]any:
		fmt.Fprintf(&sb, "\n\nData: object with %d keys", len(d))
	default:
		fmt.Fprintf(&sb, "\n\nData: %T", d)
	}
	return sb.String()
}

// truncate caps s at limit runes, annotating how much was dropped.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + fmt.Sprintf("\n... (%d more characters)", len(r)-limit)
}
