// Package browser wraps go-rod behind the session capability the
// scrape package drives. One Browser owns one Chromium process;
// sessions are isolated pages on it.
package browser

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config carries the launch options every caller needs to set.
type Config struct {
	ProxyURL string
	Headless bool
}

// Browser wraps a rod.Browser instance together with its launcher.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      Config
}

// New launches a Chromium instance with the given config.
func New(cfg Config) (*Browser, error) {
	l := launcher.New().Headless(cfg.Headless)
	if cfg.ProxyURL != "" {
		l = l.Proxy(cfg.ProxyURL)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, err
	}
	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, err
	}

	return &Browser{browser: b, launcher: l, cfg: cfg}, nil
}

// NewPage creates a fresh page (tab) on the browser.
func (b *Browser) NewPage() (*rod.Page, error) {
	return b.browser.Page(proto.TargetCreateTarget{})
}

// Close shuts the browser down and kills the launcher process.
func (b *Browser) Close() error {
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return err
		}
	}
	if b.launcher != nil {
		b.launcher.Kill()
	}
	return nil
}
