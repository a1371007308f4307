package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"go.uber.org/zap"

	"finsheet/internal/table"
)

var unsafeFileChars = regexp.MustCompile(`[^\w.-]+`)

// DumpAudit converts every captured panel page to markdown and writes
// it under dir, one file per page:
// <source>_<panel-key>_p<page>.md. Audit dumps let a human diff what
// the browser actually rendered against what the extractor read.
func DumpAudit(collections []*table.Collection, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	n := 0
	for _, col := range collections {
		src := unsafeFileChars.ReplaceAllString(col.Source, "_")
		for _, capture := range col.Captures {
			for i, page := range capture.Pages {
				markdown, err := converter.ConvertString(page)
				if err != nil {
					return fmt.Errorf("convert %s/%s page %d: %w", col.Source, capture.Key, i+1, err)
				}
				name := fmt.Sprintf("%s_%s_p%d.md", src, capture.Key, i+1)
				if err := os.WriteFile(filepath.Join(dir, name), []byte(markdown), 0644); err != nil {
					return fmt.Errorf("write audit file %s: %w", name, err)
				}
				n++
			}
		}
	}
	zap.L().Info("audit dumped", zap.String("dir", dir), zap.Int("files", n))
	return nil
}
