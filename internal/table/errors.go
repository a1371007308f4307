package table

import (
	"errors"
	"fmt"
)

// ErrEmptyTable indicates extraction yielded zero rows or zero columns.
// An empty grid is never a successful extraction, even when the page
// request itself succeeded.
var ErrEmptyTable = errors.New("empty table")

// ErrRaggedGrid indicates a body row whose cell count differs from the
// header row.
var ErrRaggedGrid = errors.New("ragged table grid")

// ErrDateCoercion indicates a date-axis value that cannot be parsed.
// The date axis is the merge key, so it must be fully typed.
var ErrDateCoercion = errors.New("date axis not parseable")

// CoercionError carries the offending cell of a date-axis failure.
type CoercionError struct {
	Row   int
	Value string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("%v: row %d value %q", ErrDateCoercion, e.Row, e.Value)
}

func (e *CoercionError) Unwrap() error { return ErrDateCoercion }
