package export

import (
	"encoding/csv"
	"os"
	"strings"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ctsales/internal/types"
)

func sampleRecords() []types.SaleRecord {
	return []types.SaleRecord{
		{Town: "Derby", ResidentialType: "Condo", SaleAmount: 150000, ListYear: 2010, Address: "12 Main St", Lon: -73.08, Lat: 41.32},
		{Town: "Hartford", ResidentialType: "", SaleAmount: 90000.5, ListYear: 2015, Address: "5 Elm St", Lon: -72.68, Lat: 41.76},
	}
}

func TestWriteCSV(t *testing.T) {
	w := NewWriter(t.TempDir())

	path, err := w.WriteCSV("out.csv", sampleRecords(), CSVOptions{})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, saleHeaders, rows[0])
	assert.Equal(t, []string{"Derby", "Condo", "150000", "2010", "12 Main St", "-73.08", "41.32"}, rows[1])
	assert.Equal(t, []string{"Hartford", "", "90000.5", "2015", "5 Elm St", "-72.68", "41.76"}, rows[2])
}

func TestWriteCSV_BOM(t *testing.T) {
	w := NewWriter(t.TempDir())

	path, err := w.WriteCSV("out.csv", sampleRecords(), CSVOptions{BOMPrefix: true})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\xEF\xBB\xBF"))
}

func TestWriteCSV_EmptySubset(t *testing.T) {
	w := NewWriter(t.TempDir())

	path, err := w.WriteCSV("out.csv", nil, CSVOptions{})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}

func TestWriteExcel(t *testing.T) {
	w := NewWriter(t.TempDir())

	path, err := w.WriteExcel("out.xlsx", sampleRecords())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sales")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, saleHeaders, rows[0])
	assert.Equal(t, "Derby", rows[1][0])
	assert.Equal(t, "2010", rows[1][3])
}

func TestWriteShapefile(t *testing.T) {
	w := NewWriter(t.TempDir())

	path, err := w.WriteShapefile("out.shp", sampleRecords())
	require.NoError(t, err)

	r, err := shp.Open(path)
	require.NoError(t, err)
	defer r.Close()

	fields := r.Fields()
	require.Len(t, fields, 5)
	assert.Equal(t, "TOWN", fields[0].String())

	count := 0
	for r.Next() {
		idx, shape := r.Shape()
		point, ok := shape.(*shp.Point)
		require.True(t, ok)
		if idx == 0 {
			assert.InDelta(t, -73.08, point.X, 1e-9)
			assert.InDelta(t, 41.32, point.Y, 1e-9)
			assert.Equal(t, "Derby", strings.TrimSpace(r.ReadAttribute(idx, 0)))
		}
		count++
	}
	assert.Equal(t, 2, count)
}
