package scrape

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"finsheet/internal/table"
)

// Aggregator fans a run's sources out over isolated browser sessions.
// Each source gets its own session and a strictly sequential panel
// walk; sources run concurrently up to MaxSessions. The first failure
// cancels everything in flight: a run never produces output missing a
// requested source.
type Aggregator struct {
	Opener    Opener
	Navigator *Navigator
	// MaxSessions bounds concurrent sessions. Values below one mean
	// one source at a time.
	MaxSessions int
}

// Run scrapes every job and returns the collections in input order,
// independent of completion timing.
func (a *Aggregator) Run(ctx context.Context, jobs []Job) ([]*table.Collection, error) {
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limit := a.MaxSessions
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	type result struct {
		idx int
		col *table.Collection
		err error
	}
	ch := make(chan result, len(jobs))

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, job Job) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				ch <- result{idx: idx, err: ctx.Err()}
				return
			}

			col, err := a.one(ctx, job)
			ch <- result{idx: idx, col: col, err: err}
		}(i, job)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	out := make([]*table.Collection, len(jobs))
	var firstErr error
	for r := range ch {
		if r.err != nil {
			// Cancellation fallout from another source's failure must
			// not mask the failure that triggered it.
			if firstErr == nil ||
				(errors.Is(firstErr, context.Canceled) && !errors.Is(r.err, context.Canceled)) {
				firstErr = r.err
			}
			cancel()
			continue
		}
		out[r.idx] = r.col
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// one runs a single source on a fresh session, releasing the session
// on every exit path.
func (a *Aggregator) one(ctx context.Context, job Job) (*table.Collection, error) {
	zap.L().Info("source started",
		zap.String("source", job.Source.Tag()),
		zap.String("url", job.Source.URL))

	s, err := a.Opener.Open(ctx, job.Source.URL)
	if err != nil {
		return nil, &SourceError{Source: job.Source.Tag(), Err: fmt.Errorf("open session: %w", err)}
	}
	defer s.Close()

	return a.Navigator.Navigate(ctx, s, job.Source, job.Panels)
}
