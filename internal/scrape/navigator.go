package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go.uber.org/zap"

	"finsheet/internal/table"
)

// Navigator walks a source page's panels in descriptor order:
// activate, wait until ready, capture, extract. Panels on one page are
// never activated concurrently; the SPA's rendering state is shared
// and interleaved clicks would corrupt which panel's markup is being
// observed.
type Navigator struct {
	Poller Poller
	// KeepMarkup retains each panel's captured page HTML on the
	// collection for audit dumps.
	KeepMarkup bool
}

// Navigate extracts every panel into a collection tagged with the
// source. Any failure aborts the source: no partial collection is ever
// returned.
func (n *Navigator) Navigate(ctx context.Context, s Session, source Source, panels []Panel) (*table.Collection, error) {
	if len(panels) == 0 {
		return nil, &SourceError{Source: source.Tag(), Err: fmt.Errorf("%w: profile has no panel descriptors", ErrPanelNotFound)}
	}

	col := &table.Collection{Source: source.Tag()}
	for _, panel := range panels {
		t, pages, err := n.panel(ctx, s, panel)
		if err != nil {
			return nil, &SourceError{Source: source.Tag(), Panel: panel.Label, Err: err}
		}
		t.Name = panel.Label
		t.Source = source.Tag()
		if err := col.Add(t); err != nil {
			return nil, err
		}
		if n.KeepMarkup {
			col.Captures = append(col.Captures, table.Capture{
				Key:   panel.Key,
				Table: panel.Label,
				Pages: pages,
			})
		}
	}
	zap.L().Info("source navigated",
		zap.String("source", source.Tag()),
		zap.Int("tables", len(col.Tables)))
	return col, nil
}

// panel activates one descriptor, waits for its table, pages through
// it and extracts the grid.
func (n *Navigator) panel(ctx context.Context, s Session, panel Panel) (*table.Table, []string, error) {
	if panel.Selector != "" {
		if err := s.Activate(ctx, panel.Selector); err != nil {
			return nil, nil, fmt.Errorf("activate %q: %w", panel.Selector, err)
		}
		zap.L().Debug("panel activated",
			zap.String("panel", panel.Label),
			zap.String("selector", panel.Selector))
	}

	markup, err := n.Poller.Wait(ctx, s.Snapshot, panel.Ready)
	if err != nil {
		zap.L().Warn("wait timed out", zap.String("panel", panel.Label), zap.Error(err))
		return nil, nil, err
	}
	zap.L().Debug("wait satisfied", zap.String("panel", panel.Label))

	pages, err := n.paginate(ctx, s, panel, markup)
	if err != nil {
		return nil, nil, err
	}

	t, err := table.ExtractPages(pages, panel.Table)
	if err != nil {
		return nil, nil, err
	}
	return t, pages, nil
}

// paginate clicks the panel's next button until it disappears or
// disables, waiting for the table region to actually change between
// clicks. A hard cap guards against a next button that never disables.
func (n *Navigator) paginate(ctx context.Context, s Session, panel Panel, first string) ([]string, error) {
	pages := []string{first}
	if panel.NextPage == "" {
		return pages, nil
	}

	maxPages := panel.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	markup := first
	for hasNext(markup, panel.NextPage) {
		if len(pages) >= maxPages {
			return nil, fmt.Errorf("%w: %d pages", ErrTooManyPages, len(pages))
		}

		old := region(markup, panel.Ready.TableSelector)
		if err := s.Activate(ctx, panel.NextPage); err != nil {
			return nil, fmt.Errorf("paginate %q: %w", panel.NextPage, err)
		}

		var err error
		markup, err = n.Poller.WaitChange(ctx, s.Snapshot, panel.Ready.TableSelector, old)
		if err != nil {
			return nil, err
		}
		pages = append(pages, markup)
	}
	return pages, nil
}

// hasNext reports whether the pagination button is present and not
// disabled. The last page keeps the button in the DOM with a disabled
// attribute, and it is not a form element, so the attribute is the
// only signal.
func hasNext(markup, sel string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return false
	}
	btn := doc.Find(sel).First()
	if btn.Length() == 0 {
		return false
	}
	if _, disabled := btn.Attr("disabled"); disabled {
		return false
	}
	if class, ok := btn.Attr("class"); ok && strings.Contains(class, "disabled") {
		return false
	}
	return true
}
