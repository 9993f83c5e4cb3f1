// CLAUDE:SUMMARY Page renderer: static HTTP fetch with sufficiency check, escalation to headless Chrome via Rod.
// Package render turns a quiz URL into HTML plus a visible-text projection.
//
// Acquisition strategy:
//  1. Static HTTP GET (fast, no browser). Covers most quiz pages.
//  2. If the static HTML looks like an SPA shell or the caller forces it,
//     escalate to a stealth headless Chrome render.
package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Page is the result of rendering one URL.
type Page struct {
	URL     string `json:"url"`
	HTML    string `json:"html"`
	Text    string `json:"text"`    // visible-text projection of HTML
	Dynamic bool   `json:"dynamic"` // true if script execution was required
}

// Config configures the render engine.
type Config struct {
	// Timeout bounds one static fetch. Default: 15s.
	Timeout time.Duration

	// NavTimeout bounds one browser navigation. Default: 60s.
	NavTimeout time.Duration

	// UserAgent for static fetches. Default: a quizchain identifier.
	UserAgent string

	// RemoteBrowser is the WebSocket URL of an external Chrome.
	// Empty = launch a local headless Chrome on first dynamic render.
	RemoteBrowser string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 60 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; QuizChain/1.0)"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Engine renders pages, owning one HTTP client and one lazy browser.
type Engine struct {
	cfg     Config
	client  *http.Client
	browser *Browser
	logger  *slog.Logger
}

// New creates an Engine. The browser is not launched until a page
// actually needs script execution.
func New(cfg Config) *Engine {
	cfg.defaults()
	return &Engine{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		browser: NewBrowser(cfg),
		logger:  cfg.Logger,
	}
}

// Render fetches a page statically and escalates to the browser when the
// static HTML is insufficient or forceDynamic is set.
func (e *Engine) Render(ctx context.Context, pageURL string, forceDynamic bool) (*Page, error) {
	if !forceDynamic {
		page, err := e.fetchStatic(ctx, pageURL)
		if err == nil && IsSufficient([]byte(page.HTML)) {
			return page, nil
		}
		if err != nil {
			e.logger.Debug("render: static fetch failed, escalating", "url", pageURL, "error", err)
		} else {
			e.logger.Debug("render: static HTML insufficient, escalating", "url", pageURL)
		}
	}

	page, err := e.browser.RenderPage(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("render: dynamic %s: %w", pageURL, err)
	}
	return page, nil
}

// Close releases the browser if one was launched.
func (e *Engine) Close() error {
	return e.browser.Close()
}

func (e *Engine) fetchStatic(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("render: new request: %w", err)
	}
	req.Header.Set("User-Agent", e.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render: do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("render: status %d for %s", resp.StatusCode, pageURL)
	}

	// Cap read to 10MB to prevent runaway downloads.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("render: read body: %w", err)
	}

	html := string(body)
	return &Page{
		URL:     pageURL,
		HTML:    html,
		Text:    VisibleText(html),
		Dynamic: false,
	}, nil
}
