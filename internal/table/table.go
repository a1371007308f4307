// Package table holds the typed tabular records produced by panel
// extraction: a rectangular grid of coerced cells whose first column is
// the date axis used downstream as the merge key.
package table

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a cell value.
type Kind uint8

const (
	// Text is the fallback kind for anything that resists coercion.
	Text Kind = iota
	// Number is a numeric value, Chinese units already normalized.
	Number
	// Date is a calendar date with no time component.
	Date
	// Missing marks "no data", distinct from zero and from empty text.
	Missing
)

// Cell is one typed grid value. Raw keeps the original trimmed text for
// every kind so nothing is lost by coercion.
type Cell struct {
	Kind   Kind
	Raw    string
	Number decimal.Decimal // valid when Kind == Number
	Date   time.Time       // valid when Kind == Date, normalized to UTC midnight
}

// MissingMark is how a missing cell renders in every output format.
// Eastmoney and Xueqiu both render absent values as "--".
const MissingMark = "--"

// DateLayout is the canonical rendering of date cells.
const DateLayout = "2006-01-02"

// String renders the cell in its canonical form.
func (c Cell) String() string {
	switch c.Kind {
	case Number:
		return c.Number.String()
	case Date:
		return c.Date.Format(DateLayout)
	case Missing:
		return MissingMark
	default:
		return c.Raw
	}
}

// TextCell, NumberCell, DateCell and MissingCell build cells of the
// respective kinds.
func TextCell(s string) Cell { return Cell{Kind: Text, Raw: s} }

func NumberCell(d decimal.Decimal, raw string) Cell {
	return Cell{Kind: Number, Raw: raw, Number: d}
}

func DateCell(t time.Time, raw string) Cell {
	return Cell{Kind: Date, Raw: raw, Date: t}
}

func MissingCell() Cell { return Cell{Kind: Missing, Raw: MissingMark} }

// Table is one extracted data panel: an ordered rectangular grid whose
// first column is the date axis. Tables are treated as immutable once
// extraction returns them; the merge stage builds new values instead of
// editing these.
type Table struct {
	Name    string // visible panel label, stable across runs
	Source  string // provenance tag: originating ticker or URL
	Columns []string
	Rows    [][]Cell
}

// Validate enforces the structural invariants: at least one data column
// beyond the date axis is not required, but the grid must be non-empty
// and rectangular.
func (t *Table) Validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q: %w: no columns", t.Name, ErrEmptyTable)
	}
	if len(t.Rows) == 0 {
		return fmt.Errorf("table %q: %w: no rows", t.Name, ErrEmptyTable)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("table %q: %w: row %d has %d cells, header has %d",
				t.Name, ErrRaggedGrid, i, len(row), len(t.Columns))
		}
	}
	return nil
}

// Dates returns the date-axis values in row order.
func (t *Table) Dates() []time.Time {
	out := make([]time.Time, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[0].Date
	}
	return out
}

// Capture retains the rendered markup a panel's table was extracted
// from, one entry per pagination step, for audit dumps.
type Capture struct {
	Key   string   // short panel id, used in audit file names
	Table string   // panel label
	Pages []string // table region HTML per page, navigation order
}

// Collection is the ordered per-source sequence of extracted tables,
// one per navigated panel.
type Collection struct {
	Source   string
	Tables   []*Table
	Captures []Capture // only populated when raw HTML retention is on
}

// Add appends a table, enforcing that panel labels are unique within
// one source.
func (c *Collection) Add(t *Table) error {
	for _, existing := range c.Tables {
		if existing.Name == t.Name {
			return fmt.Errorf("source %q: duplicate table name %q", c.Source, t.Name)
		}
	}
	c.Tables = append(c.Tables, t)
	return nil
}

// Get looks a table up by its panel label.
func (c *Collection) Get(name string) (*Table, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}
