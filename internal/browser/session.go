package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"finsheet/internal/scrape"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Session is one page bound to one source. It satisfies
// scrape.Session.
type Session struct {
	page *rod.Page
}

// Open creates a session positioned on url. The page masks the
// automation fingerprint before navigating; the target sites refuse
// headless visitors otherwise.
func (b *Browser) Open(ctx context.Context, url string) (scrape.Session, error) {
	page, err := b.NewPage()
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent})
	_, _ = page.EvalOnNewDocument(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`)

	if err := page.Context(ctx).Navigate(url); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.Context(ctx).WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("wait load for %s: %w", url, err)
	}

	return &Session{page: page}, nil
}

// Activate clicks the element matched by selector. A missing element
// is a page-structure mismatch, reported as scrape.ErrPanelNotFound.
// Elements the SPA covers with overlays reject synthetic mouse clicks,
// so a JS click is the fallback.
func (s *Session) Activate(ctx context.Context, selector string) error {
	p := s.page.Context(ctx).Timeout(5 * time.Second)

	has, el, err := p.Has(selector)
	if err != nil {
		return fmt.Errorf("query %q: %w", selector, err)
	}
	if !has {
		return fmt.Errorf("%w: no element matches %q", scrape.ErrPanelNotFound, selector)
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		if _, evalErr := el.Eval(`() => this.click()`); evalErr != nil {
			return fmt.Errorf("click %q: %w", selector, err)
		}
	}
	return nil
}

// Snapshot returns the page's current rendered HTML.
func (s *Session) Snapshot(ctx context.Context) (string, error) {
	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("page html: %w", err)
	}
	return html, nil
}

// Close releases the page. The owning Browser stays up for other
// sessions.
func (s *Session) Close() error {
	return s.page.Close()
}
