package table

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go.uber.org/zap"
)

// Spec describes how to read one panel's table out of rendered markup.
type Spec struct {
	// Selector locates the table element. Empty selects the first
	// <table> in the markup.
	Selector string
	// Transposed marks tables whose date axis runs across the header
	// (indicator names down the first column, one column per report
	// period). These are transposed into the canonical
	// date-axis-first-column grid before coercion.
	Transposed bool
}

// Extract parses a ready panel's markup into a typed table. The name
// and source tags are the caller's to fill in; extraction only knows
// the grid.
func Extract(markup string, spec Spec) (*Table, error) {
	return ExtractPages([]string{markup}, spec)
}

// ExtractPages parses a paginated panel: one markup snapshot per page,
// in navigation order. Pages widen the grid; the site repeats the tail
// of the previous page at the head of the next one (sliding-window
// pagination), so overlapping columns are skipped by comparing each
// new header against the tail of the accumulated header.
func ExtractPages(pages []string, spec Spec) (*Table, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages captured", ErrEmptyTable)
	}

	var header []string
	var rows [][]string

	for i, markup := range pages {
		h, r, err := parseGrid(markup, spec.Selector)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}

		if i == 0 {
			header = h
			rows = r
			continue
		}

		if spec.Transposed {
			// Later pages repeat the indicator-label column; only the
			// period columns carry new data.
			h = h[1:]
			for j := range r {
				r[j] = r[j][1:]
			}
		}

		skip := overlap(header, h)
		if skip >= len(h) {
			// The page is entirely old data: pagination ran past the
			// last page without the next button disappearing.
			continue
		}
		header = append(header, h[skip:]...)
		for j := range rows {
			if j >= len(r) {
				return nil, fmt.Errorf("page %d: %w: %d rows, previous pages had %d",
					i+1, ErrRaggedGrid, len(r), len(rows))
			}
			rows[j] = append(rows[j], r[j][skip:]...)
		}
	}

	if spec.Transposed {
		header, rows = transpose(header, rows)
	}

	t, err := coerce(header, rows)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("table extracted",
		zap.Int("rows", len(t.Rows)),
		zap.Int("columns", len(t.Columns)),
		zap.Int("pages", len(pages)))
	return t, nil
}

// parseGrid pulls the raw string grid out of the markup: one header
// row, then body rows. Cells come from th/td in document order.
func parseGrid(markup, selector string) (header []string, rows [][]string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, nil, fmt.Errorf("parse markup: %w", err)
	}

	if selector == "" {
		selector = "table"
	}
	tbl := doc.Find(selector).First()
	if tbl.Length() == 0 {
		return nil, nil, fmt.Errorf("%w: no element matches %q", ErrEmptyTable, selector)
	}
	if !tbl.Is("table") {
		tbl = tbl.Find("table").First()
		if tbl.Length() == 0 {
			return nil, nil, fmt.Errorf("%w: no table under %q", ErrEmptyTable, selector)
		}
	}

	tbl.Find("tr").Each(func(i int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		if header == nil {
			header = cells
			return
		}
		rows = append(rows, cells)
	})

	if len(header) == 0 {
		return nil, nil, fmt.Errorf("%w: no header row", ErrEmptyTable)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: no body rows", ErrEmptyTable)
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, nil, fmt.Errorf("%w: row %d has %d cells, header has %d",
				ErrRaggedGrid, i, len(row), len(header))
		}
	}
	return header, rows, nil
}

// overlap counts how many leading header cells of the new page repeat
// the tail of the accumulated header: the largest k where the page's
// first k cells equal the accumulated header's last k. Anchoring at
// the tail matters: periods can legitimately recur earlier in the
// header, and a global search would cut pagination short on them.
func overlap(acc, page []string) int {
	max := len(page)
	if len(acc) < max {
		max = len(acc)
	}
	for k := max; k > 0; k-- {
		match := true
		for i := 0; i < k; i++ {
			if acc[len(acc)-k+i] != page[i] {
				match = false
				break
			}
		}
		if match {
			return k
		}
	}
	return 0
}

// transpose flips an indicator-rows grid into date-axis rows. The
// corner cell becomes the date column's name; each body row's first
// cell becomes a column name.
func transpose(header []string, rows [][]string) ([]string, [][]string) {
	out := make([]string, 0, len(rows)+1)
	out = append(out, header[0])
	for _, row := range rows {
		out = append(out, row[0])
	}

	flipped := make([][]string, 0, len(header)-1)
	for c := 1; c < len(header); c++ {
		line := make([]string, 0, len(rows)+1)
		line = append(line, header[c])
		for _, row := range rows {
			line = append(line, row[c])
		}
		flipped = append(flipped, line)
	}
	return out, flipped
}

// coerce types the raw grid. The first column is the date axis and
// must parse fully; any other column degrades to text on failure.
func coerce(header []string, rows [][]string) (*Table, error) {
	t := &Table{Columns: header}
	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, raw := range row {
			if j == 0 {
				d, ok := ParseDate(raw)
				if !ok {
					return nil, &CoercionError{Row: i, Value: raw}
				}
				cells[j] = DateCell(d, raw)
				continue
			}
			cells[j] = CoerceCell(raw)
		}
		t.Rows = append(t.Rows, cells)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
