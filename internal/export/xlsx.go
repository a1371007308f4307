package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"finsheet/internal/merge"
	"finsheet/internal/table"
)

// writeXLSX writes one sheet per merged table, in dataset order.
func writeXLSX(ds *merge.Dataset, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	used := map[string]bool{}
	for i, name := range ds.Names {
		mt := ds.Tables[name]
		sheet := sheetName(name, used)

		if i == 0 {
			// The default sheet gets renamed instead of deleted.
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet for %q: %w", name, err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("create sheet for %q: %w", name, err)
			}
		}
		if err := writeSheet(f, sheet, mt); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, mt *merge.MergedTable) error {
	header := make([]interface{}, len(mt.Columns))
	for i, c := range mt.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("sheet %q header: %w", sheet, err)
	}

	for r, row := range mt.Rows {
		values := make([]interface{}, len(row))
		for c, cell := range row {
			values[c] = cellValue(cell)
		}
		addr, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, addr, &values); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", sheet, r+2, err)
		}
	}
	return nil
}

// cellValue picks the spreadsheet representation per cell kind:
// numbers stay numeric, dates render in the canonical layout, missing
// renders as the marker string.
func cellValue(c table.Cell) interface{} {
	switch c.Kind {
	case table.Number:
		v, _ := c.Number.Float64()
		return v
	case table.Date:
		return c.Date.Format(table.DateLayout)
	case table.Missing:
		return table.MissingMark
	default:
		return c.Raw
	}
}

// sheetName fits a table name into excelize's 31-character sheet limit
// and keeps it unique within the workbook.
func sheetName(name string, used map[string]bool) string {
	s := name
	if len([]rune(s)) > 31 {
		s = string([]rune(s)[:31])
	}
	base := s
	for n := 2; used[s]; n++ {
		suffix := fmt.Sprintf("~%d", n)
		r := []rune(base)
		if len(r)+len(suffix) > 31 {
			r = r[:31-len(suffix)]
		}
		s = string(r) + suffix
	}
	used[s] = true
	return s
}
