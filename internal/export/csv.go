package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"finsheet/internal/merge"
)

// writeCSV writes all merged tables into one file, each table under a
// "# name" section header.
func writeCSV(ds *merge.Dataset, path string) error {
	var buf bytes.Buffer
	for i, name := range ds.Names {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(fmt.Sprintf("# %s\n", name))

		mt := ds.Tables[name]
		w := csv.NewWriter(&buf)
		if err := w.Write(mt.Columns); err != nil {
			return fmt.Errorf("table %q header: %w", name, err)
		}
		for _, row := range mt.Rows {
			record := make([]string, len(row))
			for j, cell := range row {
				record[j] = cell.String()
			}
			if err := w.Write(record); err != nil {
				return fmt.Errorf("table %q: %w", name, err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("table %q: %w", name, err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
