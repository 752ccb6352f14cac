package export

import (
	"fmt"
	"os"
	"path/filepath"

	shp "github.com/jonas-p/go-shp"

	"ctsales/internal/types"
)

// WriteShapefile writes the records as a point shapefile with an attribute
// table (town, type, amount, year, address) so the filtered subset can be
// pulled straight into GIS tools. Returns the full .shp path; go-shp writes
// the companion .shx and .dbf alongside it.
func (w *Writer) WriteShapefile(name string, records []types.SaleRecord) (string, error) {
	path := filepath.Join(w.dir, name)
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	out, err := shp.Create(path, shp.POINT)
	if err != nil {
		return "", fmt.Errorf("create shapefile: %w", err)
	}
	defer out.Close()

	out.SetFields([]shp.Field{
		shp.StringField("TOWN", 64),
		shp.StringField("TYPE", 32),
		shp.FloatField("AMOUNT", 16, 2),
		shp.NumberField("YEAR", 4),
		shp.StringField("ADDRESS", 128),
	})

	for n, rec := range records {
		out.Write(&shp.Point{X: rec.Lon, Y: rec.Lat})
		out.WriteAttribute(n, 0, rec.Town)
		out.WriteAttribute(n, 1, rec.ResidentialType)
		out.WriteAttribute(n, 2, rec.SaleAmount)
		out.WriteAttribute(n, 3, rec.ListYear)
		out.WriteAttribute(n, 4, rec.Address)
	}

	return path, nil
}
