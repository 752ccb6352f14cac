package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"ctsales/internal/types"
)

// Column names expected in the source table.
const (
	colLocation        = "Location"
	colSaleAmount      = "Sale Amount"
	colListYear        = "List Year"
	colTown            = "Town"
	colResidentialType = "Residential Type"
	colAddress         = "Address"
)

// pointRe matches the textual point geometry found in the Location column,
// e.g. "POINT (-73.08 41.32)". Both coordinates must carry a decimal point;
// anything else is treated as an unusable location and the row is dropped.
var pointRe = regexp.MustCompile(`POINT \((-?\d+\.\d+) (-?\d+\.\d+)\)`)

// LoadError reports a failure to produce a usable dataset: the file is
// missing, unreadable, malformed, or contains zero valid rows after cleaning.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load sales data %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Dataset is the cleaned, immutable in-memory sales table. It is never
// mutated after Load returns, so concurrent reads need no locking.
type Dataset struct {
	records []types.SaleRecord

	years []int
	towns []string
	resis []string

	amountMin float64
	amountMax float64
}

// Load parses the CSV at path and returns the cleaned dataset. Rows with a
// missing or non-matching location, or an unparseable sale amount or list
// year, are silently dropped; a file yielding zero valid rows is an error.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	// Cleaning is best-effort: short or long rows are tolerated and judged
	// field by field rather than aborting the load.
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, name := range []string{colLocation, colSaleAmount, colListYear, colTown, colAddress} {
		if _, ok := col[name]; !ok {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("missing column %q", name)}
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []types.SaleRecord
	dropped := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}

		m := pointRe.FindStringSubmatch(field(row, colLocation))
		if m == nil {
			dropped++
			continue
		}
		lon, err1 := strconv.ParseFloat(m[1], 64)
		lat, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			dropped++
			continue
		}

		amount, ok := parseAmount(field(row, colSaleAmount))
		if !ok {
			dropped++
			continue
		}
		year, ok := parseYear(field(row, colListYear))
		if !ok {
			dropped++
			continue
		}

		records = append(records, types.SaleRecord{
			Town:            field(row, colTown),
			ResidentialType: field(row, colResidentialType),
			SaleAmount:      amount,
			ListYear:        year,
			Address:         field(row, colAddress),
			Lon:             lon,
			Lat:             lat,
		})
	}

	if len(records) == 0 {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("no valid rows after cleaning (%d dropped)", dropped)}
	}
	if dropped > 0 {
		slog.Debug("dropped unparseable rows", slog.Int("dropped", dropped), slog.Int("kept", len(records)))
	}

	return newDataset(records), nil
}

// newDataset precomputes the distinct-value lists and the global amount
// range; the record slice is adopted, not copied.
func newDataset(records []types.SaleRecord) *Dataset {
	ds := &Dataset{records: records}

	yearSet := make(map[int]struct{})
	townSet := make(map[string]struct{})
	resiSet := make(map[string]struct{})

	ds.amountMin = records[0].SaleAmount
	ds.amountMax = records[0].SaleAmount
	for _, rec := range records {
		yearSet[rec.ListYear] = struct{}{}
		if rec.Town != "" {
			townSet[rec.Town] = struct{}{}
		}
		if rec.ResidentialType != "" {
			resiSet[rec.ResidentialType] = struct{}{}
		}
		if rec.SaleAmount < ds.amountMin {
			ds.amountMin = rec.SaleAmount
		}
		if rec.SaleAmount > ds.amountMax {
			ds.amountMax = rec.SaleAmount
		}
	}

	for y := range yearSet {
		ds.years = append(ds.years, y)
	}
	sort.Ints(ds.years)
	for t := range townSet {
		ds.towns = append(ds.towns, t)
	}
	sort.Strings(ds.towns)
	for rt := range resiSet {
		ds.resis = append(ds.resis, rt)
	}
	sort.Strings(ds.resis)

	return ds
}

// Records returns the cleaned rows in source order. Callers must not mutate
// the returned slice.
func (ds *Dataset) Records() []types.SaleRecord { return ds.records }

// Years returns the distinct list years, ascending.
func (ds *Dataset) Years() []int { return ds.years }

// Towns returns the distinct town names, sorted lexicographically.
func (ds *Dataset) Towns() []string { return ds.towns }

// ResidentialTypes returns the distinct non-empty residential types, sorted
// lexicographically.
func (ds *Dataset) ResidentialTypes() []string { return ds.resis }

// AmountRange returns the global min and max sale amount.
func (ds *Dataset) AmountRange() (low, high float64) {
	return ds.amountMin, ds.amountMax
}

// Filter returns the rows matching every given restriction, in source order.
// A nil year and empty towns/residentialTypes slices mean "no restriction";
// low > high matches nothing.
func (ds *Dataset) Filter(year *int, towns, residentialTypes []string, low, high float64) []types.SaleRecord {
	townSet := toSet(towns)
	resiSet := toSet(residentialTypes)

	var out []types.SaleRecord
	for _, rec := range ds.records {
		if year != nil && rec.ListYear != *year {
			continue
		}
		if len(townSet) > 0 {
			if _, ok := townSet[rec.Town]; !ok {
				continue
			}
		}
		if len(resiSet) > 0 {
			if _, ok := resiSet[rec.ResidentialType]; !ok {
				continue
			}
		}
		if rec.SaleAmount < low || rec.SaleAmount > high {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func toSet(vals []string) map[string]struct{} {
	if len(vals) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}

// parseAmount coerces a sale amount; parse noise (empty, non-numeric) fails.
func parseAmount(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// parseYear accepts integer or float renditions of the list year, truncating
// to int the way the source column is coerced.
func parseYear(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(v), true
}
