// Package scrape drives a headless browser through an SPA's data
// panels and turns each rendered panel into a typed table. It owns the
// navigation loop, the readiness polling and the per-source fan-out;
// the browser itself is only a capability (Session) supplied by the
// caller.
package scrape

import (
	"context"
	"time"

	"finsheet/internal/table"
)

// Session is the browser capability the navigator drives. One session
// is bound to one source's page for its whole lifetime and is never
// shared across sources.
type Session interface {
	// Activate clicks the element matched by selector. A selector with
	// no matching element reports ErrPanelNotFound.
	Activate(ctx context.Context, selector string) error
	// Snapshot returns the page's current rendered markup.
	Snapshot(ctx context.Context) (string, error)
	Close() error
}

// Opener opens a fresh session positioned on url. The aggregator calls
// it once per source.
type Opener interface {
	Open(ctx context.Context, url string) (Session, error)
}

// Panel describes one SPA view reachable by a click: how to activate
// it, when its table counts as loaded, and how to read the table out.
type Panel struct {
	Key      string // short id, used in diagnostics and audit file names
	Label    string // visible label; becomes the extracted table's name
	Selector string // activation element; empty means the panel is already showing
	Ready    ReadyCondition
	Table    table.Spec
	// NextPage is the pagination button's selector. Empty means the
	// panel is a single page.
	NextPage string
	// MaxPages caps pagination as a runaway guard. 0 means
	// DefaultMaxPages.
	MaxPages int
}

// DefaultMaxPages bounds within-panel pagination. A well-formed page
// never comes close; hitting the cap means the next button never
// disables and the run must stop.
const DefaultMaxPages = 50

// SourceKind tells how a source was specified by the caller.
type SourceKind string

const (
	KindURL    SourceKind = "url"
	KindTicker SourceKind = "ticker"
)

// Source is one input to a run. Resolution from ticker to URL happens
// before the core is invoked; URL is always populated.
type Source struct {
	Kind  SourceKind
	Value string // the ticker or the URL as given
	URL   string // the resolved page URL
}

// Tag is the provenance identifier attached to this source's tables.
func (s Source) Tag() string { return s.Value }

// Job pairs a source with the panel descriptors of its site profile.
type Job struct {
	Source Source
	Panels []Panel
}

// Poller owns the readiness poll loop's timing.
type Poller struct {
	Interval time.Duration
	Timeout  time.Duration
}

// DefaultPoller matches the upstream defaults: a ten second budget
// polled every 300ms.
var DefaultPoller = Poller{Interval: 300 * time.Millisecond, Timeout: 10 * time.Second}
