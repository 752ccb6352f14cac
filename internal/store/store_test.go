package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Town,Residential Type,Sale Amount,List Year,Address,Location
Derby,Condo,150000,2010,12 Main St,POINT (-73.08 41.32)
Derby,,90000,2010,34 Oak St,POINT (-73.09 41.33)
Hartford,Single Family,320000,2015,5 Elm St,POINT (-72.68 41.76)
Hartford,Single Family,not-a-number,2015,6 Elm St,POINT (-72.69 41.77)
Hartford,Condo,410000,abcd,7 Elm St,POINT (-72.70 41.78)
Bristol,Single Family,275000,2015,8 Pine St,
Bristol,Single Family,260000,2015,9 Pine St,POINT (-72 41)
Avon,Two Family,505000.5,2020.0,1 Ridge Rd,POINT (-72.83 41.81)
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadSample(t *testing.T) *Dataset {
	t.Helper()
	ds, err := Load(writeCSV(t, sampleCSV))
	require.NoError(t, err)
	return ds
}

func TestLoad_CleansRows(t *testing.T) {
	ds := loadSample(t)

	// 8 source rows: bad amount, bad year, empty location, and an
	// integer-coordinate point are all dropped.
	records := ds.Records()
	require.Len(t, records, 4)

	first := records[0]
	assert.Equal(t, "Derby", first.Town)
	assert.Equal(t, "Condo", first.ResidentialType)
	assert.Equal(t, 150000.0, first.SaleAmount)
	assert.Equal(t, 2010, first.ListYear)
	assert.Equal(t, "12 Main St", first.Address)
	assert.Equal(t, -73.08, first.Lon)
	assert.Equal(t, 41.32, first.Lat)

	// Missing residential type survives as empty string.
	assert.Equal(t, "", records[1].ResidentialType)

	// Float-rendered year truncates to int.
	assert.Equal(t, 2020, records[3].ListYear)
	assert.Equal(t, 505000.5, records[3].SaleAmount)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)

	var loadErr *LoadError
	assert.True(t, errors.As(err, &loadErr))
	assert.True(t, os.IsNotExist(loadErr.Err))
}

func TestLoad_MissingColumn(t *testing.T) {
	_, err := Load(writeCSV(t, "Town,Sale Amount\nDerby,100\n"))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "Location")
}

func TestLoad_ZeroValidRows(t *testing.T) {
	csv := `Town,Residential Type,Sale Amount,List Year,Address,Location
Derby,Condo,150000,2010,12 Main St,not a point
`
	_, err := Load(writeCSV(t, csv))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "no valid rows")
}

func TestDistinctValues(t *testing.T) {
	ds := loadSample(t)

	years := ds.Years()
	assert.Equal(t, []int{2010, 2015, 2020}, years)
	for i := 1; i < len(years); i++ {
		assert.Less(t, years[i-1], years[i])
	}

	assert.Equal(t, []string{"Avon", "Derby", "Hartford"}, ds.Towns())

	// Empty residential type is excluded from the distinct list.
	assert.Equal(t, []string{"Condo", "Single Family", "Two Family"}, ds.ResidentialTypes())

	low, high := ds.AmountRange()
	assert.Equal(t, 90000.0, low)
	assert.Equal(t, 505000.5, high)
}

func TestFilter(t *testing.T) {
	ds := loadSample(t)
	low, high := ds.AmountRange()

	t.Run("no restrictions returns every row in order", func(t *testing.T) {
		got := ds.Filter(nil, nil, nil, low, high)
		assert.Equal(t, ds.Records(), got)
	})

	t.Run("idempotent", func(t *testing.T) {
		year := 2010
		a := ds.Filter(&year, []string{"Derby"}, nil, low, high)
		b := ds.Filter(&year, []string{"Derby"}, nil, low, high)
		assert.Equal(t, a, b)
	})

	t.Run("year restriction", func(t *testing.T) {
		year := 2010
		got := ds.Filter(&year, nil, nil, low, high)
		require.Len(t, got, 2)
		for _, rec := range got {
			assert.Equal(t, 2010, rec.ListYear)
		}
	})

	t.Run("town restriction", func(t *testing.T) {
		got := ds.Filter(nil, []string{"Hartford", "Avon"}, nil, low, high)
		require.Len(t, got, 2)
		assert.Equal(t, "Hartford", got[0].Town)
		assert.Equal(t, "Avon", got[1].Town)
	})

	t.Run("residential type restriction", func(t *testing.T) {
		got := ds.Filter(nil, nil, []string{"Condo"}, low, high)
		require.Len(t, got, 1)
		assert.Equal(t, "12 Main St", got[0].Address)
	})

	t.Run("amount range is inclusive", func(t *testing.T) {
		got := ds.Filter(nil, nil, nil, 90000, 150000)
		require.Len(t, got, 2)
	})

	t.Run("low above high matches nothing", func(t *testing.T) {
		got := ds.Filter(nil, nil, nil, high, low)
		assert.Empty(t, got)
	})

	t.Run("empty result is not an error", func(t *testing.T) {
		year := 1999
		got := ds.Filter(&year, nil, nil, low, high)
		assert.Empty(t, got)
	})
}

func TestPointGeometryParsing(t *testing.T) {
	tests := []struct {
		name     string
		location string
		wantLon  float64
		wantLat  float64
		kept     bool
	}{
		{"plain point", "POINT (-73.08 41.32)", -73.08, 41.32, true},
		{"positive lon", "POINT (73.5 41.1)", 73.5, 41.1, true},
		{"surrounding text still matches", "geo POINT (-73.08 41.32) end", -73.08, 41.32, true},
		{"integer coordinates dropped", "POINT (-73 41)", 0, 0, false},
		{"empty", "", 0, 0, false},
		{"garbage", "somewhere in Derby", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csv := "Town,Residential Type,Sale Amount,List Year,Address,Location\n" +
				"Derby,Condo,100000,2010,1 Main St," + tt.location + "\n" +
				"Derby,Condo,100000,2010,2 Main St,POINT (-70.0 40.0)\n"
			ds, err := Load(writeCSV(t, csv))
			require.NoError(t, err)

			if !tt.kept {
				require.Len(t, ds.Records(), 1)
				assert.Equal(t, "2 Main St", ds.Records()[0].Address)
				return
			}
			require.Len(t, ds.Records(), 2)
			assert.Equal(t, tt.wantLon, ds.Records()[0].Lon)
			assert.Equal(t, tt.wantLat, ds.Records()[0].Lat)
		})
	}
}
