package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"ctsales/internal/types"
)

// WriteExcel writes the records as a single-sheet workbook and returns the
// full path.
func (w *Writer) WriteExcel(name string, records []types.SaleRecord) (string, error) {
	path := filepath.Join(w.dir, name)
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sales"
	f.SetSheetName("Sheet1", sheet)

	header := make([]interface{}, len(saleHeaders))
	for i, h := range saleHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", fmt.Errorf("write header row: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		row := []interface{}{
			rec.Town, rec.ResidentialType, rec.SaleAmount, rec.ListYear,
			rec.Address, rec.Lon, rec.Lat,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return "", fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}
