// CLAUDE:SUMMARY Lazy headless Chrome lifecycle: launch on first use, stealth pages, navigation with timeout.
package render

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Browser manages one headless Chrome, launched lazily on the first
// dynamic render and reused for the rest of the process lifetime.
type Browser struct {
	cfg    Config
	mu     sync.Mutex
	b      *rod.Browser
	lnch   *launcher.Launcher
	closed bool
}

// NewBrowser creates a Browser. Chrome is not started here.
func NewBrowser(cfg Config) *Browser {
	cfg.defaults()
	return &Browser{cfg: cfg}
}

// RenderPage navigates a stealth page to the URL and returns the rendered
// HTML plus the body's inner text.
func (br *Browser) RenderPage(ctx context.Context, pageURL string) (*Page, error) {
	b, err := br.ensure(ctx)
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, br.cfg.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		br.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	htmlRes, err := page.Context(navCtx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("browser: get DOM: %w", err)
	}
	markup := htmlRes.Value.Str()

	text := ""
	textRes, err := page.Context(navCtx).Eval(`() => document.body ? document.body.innerText : ""`)
	if err == nil {
		text = textRes.Value.Str()
	}
	if text == "" {
		// Some pages render into shadow roots the innerText walk misses.
		text = VisibleText(markup)
	} else {
		text = collapseWhitespace(text)
	}

	return &Page{
		URL:     pageURL,
		HTML:    markup,
		Text:    text,
		Dynamic: true,
	}, nil
}

// ensure launches or connects Chrome exactly once.
func (br *Browser) ensure(ctx context.Context) (*rod.Browser, error) {
	br.mu.Lock()
	defer br.mu.Unlock()

	if br.closed {
		return nil, fmt.Errorf("browser: closed")
	}
	if br.b != nil {
		return br.b, nil
	}

	wsURL := br.cfg.RemoteBrowser
	if wsURL == "" {
		l := launcher.New().
			Headless(true).
			NoSandbox(true).
			Set("disable-dev-shm-usage").
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		br.lnch = l
		wsURL = u
	}

	// Deliberately not bound to the caller's context: the browser outlives
	// the render call that happened to launch it.
	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if br.lnch != nil {
			br.lnch.Cleanup()
			br.lnch = nil
		}
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	br.cfg.Logger.Info("browser: started", "remote", br.cfg.RemoteBrowser != "")
	br.b = b
	return b, nil
}

// Close shuts down Chrome if it was launched.
func (br *Browser) Close() error {
	br.mu.Lock()
	defer br.mu.Unlock()

	if br.closed {
		return nil
	}
	br.closed = true

	var err error
	if br.b != nil {
		err = br.b.Close()
		br.b = nil
	}
	if br.lnch != nil {
		br.lnch.Cleanup()
		br.lnch = nil
	}
	return err
}
