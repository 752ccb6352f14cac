package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"ctsales/internal/types"
)

// saleHeaders is the column order used by the CSV and Excel exports.
var saleHeaders = []string{"Town", "Residential Type", "Sale Amount", "List Year", "Address", "Lon", "Lat"}

// Writer exports the current filtered subset for external tools. All files
// land under the configured directory, which is created on demand.
type Writer struct {
	dir string
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// CSVOptions configures CSV export behavior.
type CSVOptions struct {
	// BOMPrefix prepends a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// WriteCSV writes the records to name under the export directory and returns
// the full path.
func (w *Writer) WriteCSV(name string, records []types.SaleRecord, opts CSVOptions) (string, error) {
	path := filepath.Join(w.dir, name)
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	slog.Info("writing CSV export",
		slog.String("path", path),
		slog.Int("records", len(records)))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if opts.BOMPrefix {
		if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return "", fmt.Errorf("write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(saleHeaders); err != nil {
		return "", fmt.Errorf("write headers: %w", err)
	}
	for i, rec := range records {
		if err := cw.Write(saleRow(rec)); err != nil {
			return "", fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}
	return path, nil
}

func saleRow(rec types.SaleRecord) []string {
	return []string{
		rec.Town,
		rec.ResidentialType,
		strconv.FormatFloat(rec.SaleAmount, 'f', -1, 64),
		strconv.Itoa(rec.ListYear),
		rec.Address,
		strconv.FormatFloat(rec.Lon, 'f', -1, 64),
		strconv.FormatFloat(rec.Lat, 'f', -1, 64),
	}
}
