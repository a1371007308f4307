package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ReadyCondition is the declarative "is this table ready" predicate.
// The SPA gives no completion event, so readiness is judged purely
// from the rendered markup.
type ReadyCondition struct {
	// TableSelector locates the table region. Empty means "table".
	TableSelector string
	// MinRows is the least number of rows the region must show. Zero
	// means one.
	MinRows int
	// HeaderText, when set, must appear in the region's header cells.
	HeaderText string
	// LoadingSelector, when set, names an element that must be absent.
	LoadingSelector string
}

// Readiness is one evaluation of the condition against a snapshot.
// Rows feeds the stability rule in the poll loop.
type Readiness struct {
	Ready  bool
	Rows   int
	Reason string // set when not ready, used in timeout diagnostics
}

// Evaluate checks a single snapshot against the condition. Pure: no
// browser, no clock, no side effects.
func Evaluate(markup string, cond ReadyCondition) Readiness {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Readiness{Reason: fmt.Sprintf("unparseable markup: %v", err)}
	}

	if cond.LoadingSelector != "" && doc.Find(cond.LoadingSelector).Length() > 0 {
		return Readiness{Reason: "loading indicator still present"}
	}

	sel := cond.TableSelector
	if sel == "" {
		sel = "table"
	}
	region := doc.Find(sel).First()
	if region.Length() == 0 {
		return Readiness{Reason: fmt.Sprintf("no element matches %q", sel)}
	}

	rows := region.Find("tr").Length()
	min := cond.MinRows
	if min < 1 {
		min = 1
	}
	if rows < min {
		return Readiness{Rows: rows, Reason: fmt.Sprintf("%d rows, want at least %d", rows, min)}
	}

	if cond.HeaderText != "" {
		header := region.Find("th").Text()
		if header == "" {
			header = region.Find("tr").First().Text()
		}
		if !strings.Contains(header, cond.HeaderText) {
			return Readiness{Rows: rows, Reason: fmt.Sprintf("header text %q not present", cond.HeaderText)}
		}
	}

	return Readiness{Ready: true, Rows: rows}
}

// Wait polls snap against cond until the condition holds with a stable
// row count across two consecutive polls, or the budget runs out. A
// timeout is always reported as ErrLoadTimeout, never as a false
// ready.
func (p Poller) Wait(ctx context.Context, snap func(context.Context) (string, error), cond ReadyCondition) (string, error) {
	interval, timeout, deadline := p.timing()

	lastReady := false
	lastRows := -1
	lastReason := "never polled"

	for {
		markup, err := snap(ctx)
		if err != nil {
			return "", fmt.Errorf("snapshot: %w", err)
		}
		r := Evaluate(markup, cond)
		if r.Ready && lastReady && r.Rows == lastRows {
			return markup, nil
		}
		lastReady, lastRows = r.Ready, r.Rows
		if r.Reason != "" {
			lastReason = r.Reason
		} else {
			lastReason = "row count not yet stable"
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w after %s: %s", ErrLoadTimeout, timeout, lastReason)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}
	}
}

// WaitChange polls until the region selected by sel renders
// differently from old. The navigator uses it between pagination
// clicks: the only signal that the SPA swapped the page in is the
// region's markup changing.
func (p Poller) WaitChange(ctx context.Context, snap func(context.Context) (string, error), sel, old string) (string, error) {
	interval, timeout, deadline := p.timing()

	for {
		markup, err := snap(ctx)
		if err != nil {
			return "", fmt.Errorf("snapshot: %w", err)
		}
		if region(markup, sel) != old {
			return markup, nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w after %s: table did not change after pagination", ErrLoadTimeout, timeout)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (p Poller) timing() (time.Duration, time.Duration, time.Time) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPoller.Interval
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPoller.Timeout
	}
	return interval, timeout, time.Now().Add(timeout)
}

// region returns the selected element's rendered HTML, or "" when
// absent.
func region(markup, sel string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	if sel == "" {
		sel = "table"
	}
	html, err := doc.Find(sel).First().Html()
	if err != nil {
		return ""
	}
	return html
}
