package scrape

import (
	"errors"
	"fmt"
)

// ErrPanelNotFound indicates a panel descriptor with no matching
// element on the page: the page structure does not match the profile.
var ErrPanelNotFound = errors.New("panel not found")

// ErrLoadTimeout indicates a panel whose ready condition never held
// within the poll budget.
var ErrLoadTimeout = errors.New("panel load timed out")

// ErrTooManyPages indicates pagination ran past the page cap without
// the next button ever disabling.
var ErrTooManyPages = errors.New("pagination exceeded page cap")

// SourceError ties a failure to the source (and panel, when known) it
// occurred in, so run diagnostics can name the offender.
type SourceError struct {
	Source string
	Panel  string
	Err    error
}

func (e *SourceError) Error() string {
	if e.Panel != "" {
		return fmt.Sprintf("source %q panel %q: %v", e.Source, e.Panel, e.Err)
	}
	return fmt.Sprintf("source %q: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
