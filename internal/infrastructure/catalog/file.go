package catalog

import (
	"context"
	"fmt"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/infrastructure/reader"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/logger"
	"go.uber.org/zap"
)

// FileSource reads the comparison set from a catalog export (CSV, TSV, JSON
// or JSONL). The file is re-read on every call.
type FileSource struct {
	path   string
	format reader.Format
}

// NewFileSource creates a file-backed catalog. An empty format is detected
// from the extension.
func NewFileSource(path string, format reader.Format) *FileSource {
	return &FileSource{path: path, format: format}
}

// ListEntries reads and maps every row of the export
func (s *FileSource) ListEntries(ctx context.Context) ([]domain.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := reader.ReadFile(s.path, s.format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	entries := make([]domain.CatalogEntry, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		entry, ok := EntryFromRow(row, i+1)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, entry)
	}

	if skipped > 0 {
		logger.Named("catalog").Warn("Skipped catalog rows without a name",
			zap.String("path", s.path),
			zap.Int("skipped", skipped),
		)
	}
	return entries, nil
}
