// Package sites holds the per-site profiles: which panels a site's
// financial page exposes, how to recognize its URLs and how to turn a
// ticker into one. Profiles register themselves at init time.
package sites

import (
	"fmt"
	"strings"

	"finsheet/internal/scrape"
)

// Profile is one supported site's configuration. The navigator never
// discovers panels at runtime; it walks the fixed descriptor list the
// profile declares.
type Profile interface {
	Name() string
	// MatchURL reports whether rawURL belongs to this site.
	MatchURL(rawURL string) bool
	// ResolveTicker turns a ticker into the site's financial-page URL.
	// Pure lookup, no network.
	ResolveTicker(ticker string) (string, error)
	Panels() []scrape.Panel
}

var registry = map[string]Profile{}

func Register(p Profile) {
	registry[strings.ToLower(p.Name())] = p
}

func Get(name string) (Profile, bool) {
	p, ok := registry[strings.ToLower(name)]
	return p, ok
}

// ForURL finds the profile owning rawURL.
func ForURL(rawURL string) (Profile, bool) {
	for _, p := range registry {
		if p.MatchURL(rawURL) {
			return p, true
		}
	}
	return nil, false
}

// BuildJobs resolves the caller's raw inputs into scrape jobs, in
// input order: URLs keep their order first, then tickers. Ticker
// resolution happens here, before the core runs.
func BuildJobs(urls, tickers []string, defaultProfile string) ([]scrape.Job, error) {
	fallback, ok := Get(defaultProfile)
	if !ok {
		return nil, fmt.Errorf("unknown site profile: %s", defaultProfile)
	}

	var jobs []scrape.Job
	for _, u := range urls {
		p, ok := ForURL(u)
		if !ok {
			return nil, fmt.Errorf("no site profile matches URL: %s", u)
		}
		jobs = append(jobs, scrape.Job{
			Source: scrape.Source{Kind: scrape.KindURL, Value: u, URL: u},
			Panels: p.Panels(),
		})
	}
	for _, t := range tickers {
		u, err := fallback.ResolveTicker(t)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, scrape.Job{
			Source: scrape.Source{Kind: scrape.KindTicker, Value: t, URL: u},
			Panels: fallback.Panels(),
		})
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no sources: provide at least one URL or ticker")
	}
	return jobs, nil
}
