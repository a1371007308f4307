// Package merge combines per-source table collections into one dataset
// aligned on the date axis. It is a pure in-memory transform: no I/O,
// no browser, deterministic output regardless of how the sources were
// scheduled.
package merge

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"finsheet/internal/table"
)

// ErrKeyConflict is returned when a source contains two rows for the
// same date and the policy is set to reject duplicates.
var ErrKeyConflict = errors.New("duplicate date key within one source")

// DuplicatePolicy decides what happens when one source's table carries
// two rows with the same date.
type DuplicatePolicy int

const (
	// DuplicateKeepLast lets the later row (in extraction order)
	// overwrite the earlier one.
	DuplicateKeepLast DuplicatePolicy = iota
	// DuplicateReject fails the merge with ErrKeyConflict.
	DuplicateReject
)

// PartialPolicy decides what happens with dates that only some sources
// have data for.
type PartialPolicy int

const (
	// PartialKeep keeps the row and fills missing-marker cells for the
	// absent sources.
	PartialKeep PartialPolicy = iota
	// PartialDrop keeps only dates present in every contributing
	// source.
	PartialDrop
)

// Policy bundles the configurable merge rules. The zero value is the
// default behavior: keep-last duplicates, keep partial dates.
type Policy struct {
	OnDuplicate  DuplicatePolicy
	PartialDates PartialPolicy
}

// MergedTable is one table name combined across sources: the union of
// date keys down the first column, and each source's data columns
// disambiguated with the source tag.
type MergedTable struct {
	Name    string
	Sources []string // contributing source tags, input order
	Columns []string
	Rows    [][]table.Cell
}

// Dataset is the run's final result: one merged table per table name
// seen in any source, in first-seen order.
type Dataset struct {
	Names  []string
	Tables map[string]*MergedTable
}

// Merge combines the collections into a Dataset. Collections are
// consumed in input order; row order in every merged table is solely a
// function of the sorted date keys.
func Merge(collections []*table.Collection, policy Policy) (*Dataset, error) {
	if len(collections) == 0 {
		return nil, errors.New("merge: no collections")
	}

	ds := &Dataset{Tables: map[string]*MergedTable{}}
	for _, c := range collections {
		for _, t := range c.Tables {
			if _, seen := ds.Tables[t.Name]; seen {
				continue
			}
			ds.Names = append(ds.Names, t.Name)
			ds.Tables[t.Name] = &MergedTable{Name: t.Name}
		}
	}

	for _, name := range ds.Names {
		mt, err := mergeOne(name, collections, policy)
		if err != nil {
			return nil, err
		}
		ds.Tables[name] = mt
		zap.L().Info("table merged",
			zap.String("table", name),
			zap.Int("rows", len(mt.Rows)),
			zap.Strings("sources", mt.Sources))
	}
	return ds, nil
}

// part is one source's contribution to a merged table.
type part struct {
	source string
	tab    *table.Table
	byDate map[time.Time][]table.Cell
}

func mergeOne(name string, collections []*table.Collection, policy Policy) (*MergedTable, error) {
	var parts []part
	for _, c := range collections {
		t, ok := c.Get(name)
		if !ok {
			// A name missing from one source contributes no columns;
			// it does not abort the merge.
			continue
		}
		p := part{source: c.Source, tab: t, byDate: map[time.Time][]table.Cell{}}
		for _, row := range t.Rows {
			key := table.Normalize(row[0].Date)
			if _, dup := p.byDate[key]; dup && policy.OnDuplicate == DuplicateReject {
				return nil, fmt.Errorf("table %q source %q date %s: %w",
					name, c.Source, key.Format(table.DateLayout), ErrKeyConflict)
			}
			p.byDate[key] = row
		}
		parts = append(parts, p)
	}

	keys := dateKeys(parts, policy.PartialDates)

	mt := &MergedTable{Name: name, Columns: []string{parts[0].tab.Columns[0]}}
	for _, p := range parts {
		mt.Sources = append(mt.Sources, p.source)
		for _, col := range p.tab.Columns[1:] {
			mt.Columns = append(mt.Columns, fmt.Sprintf("%s(%s)", col, p.source))
		}
	}

	for _, key := range keys {
		row := make([]table.Cell, 0, len(mt.Columns))
		row = append(row, dateCellFor(key, parts))
		for _, p := range parts {
			if src, ok := p.byDate[key]; ok {
				row = append(row, src[1:]...)
			} else {
				for range p.tab.Columns[1:] {
					row = append(row, table.MissingCell())
				}
			}
		}
		mt.Rows = append(mt.Rows, row)
	}
	return mt, nil
}

// dateKeys builds the ascending date axis: the union of every part's
// keys, or the intersection when partial dates are dropped.
func dateKeys(parts []part, policy PartialPolicy) []time.Time {
	seen := map[time.Time]int{}
	for _, p := range parts {
		for key := range p.byDate {
			seen[key]++
		}
	}
	keys := make([]time.Time, 0, len(seen))
	for key, n := range seen {
		if policy == PartialDrop && n < len(parts) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}

// dateCellFor reuses the first contributing source's own date cell so
// that a single-source merge reproduces that source's values exactly.
func dateCellFor(key time.Time, parts []part) table.Cell {
	for _, p := range parts {
		if row, ok := p.byDate[key]; ok {
			return row[0]
		}
	}
	return table.DateCell(key, key.Format(table.DateLayout))
}
