// Package export serializes a merged dataset to disk. The format is
// chosen by the output file's extension; after every write the
// artifact is verified to exist and be non-empty, because a zero-byte
// workbook is indistinguishable from a failed run.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"finsheet/internal/merge"
)

// Write serializes the dataset to path, dispatching on the extension.
// Unknown extensions are an error rather than a silent default.
func Write(ds *merge.Dataset, path string) error {
	if ds == nil || len(ds.Names) == 0 {
		return fmt.Errorf("nothing to export: empty dataset")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		err = writeXLSX(ds, path)
	case ".csv":
		err = writeCSV(ds, path)
	default:
		return fmt.Errorf("unsupported output format: %s", filepath.Ext(path))
	}
	if err != nil {
		// A partial artifact must not survive a failed write.
		_ = os.Remove(path)
		return err
	}

	if err := verify(path); err != nil {
		return err
	}
	zap.L().Info("export written",
		zap.String("path", path),
		zap.Int("tables", len(ds.Names)))
	return nil
}

// verify confirms the artifact landed on disk with content.
func verify(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("output file not created: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("output file is empty: %s", path)
	}
	return nil
}
