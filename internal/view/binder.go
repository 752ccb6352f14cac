package view

import (
	"sort"

	"ctsales/internal/store"
	"ctsales/internal/types"
)

// unknownType is the display label substituted for a missing residential
// type in the flow diagram.
const unknownType = "Unknown"

// Binder owns one session's filter state and keeps the derived amount bounds
// consistent with the selected year. It translates the current state into
// the three rendering-ready projections; the rendering layer itself is
// external and only ever receives plain data.
type Binder struct {
	ds *store.Dataset

	state  types.FilterState
	bounds types.DerivedBounds

	observers []func(types.FilterState)
}

// NewBinder returns a binder initialized to the documented defaults: the
// first available year, no town or type restrictions, and the dataset-global
// amount range.
func NewBinder(ds *store.Dataset) *Binder {
	b := &Binder{ds: ds}
	b.reset()
	return b
}

func (b *Binder) reset() {
	low, high := b.ds.AmountRange()
	b.state = types.FilterState{
		AmountLow:  low,
		AmountHigh: high,
	}
	if years := b.ds.Years(); len(years) > 0 {
		y := years[0]
		b.state.Year = &y
	}
	b.bounds = types.DerivedBounds{Min: low, Max: high}
}

// Notify registers a callback invoked synchronously after every state
// mutation. Callbacks receive a copy of the new state.
func (b *Binder) Notify(fn func(types.FilterState)) {
	b.observers = append(b.observers, fn)
}

func (b *Binder) notify() {
	for _, fn := range b.observers {
		fn(b.State())
	}
}

// State returns a copy of the current filter state.
func (b *Binder) State() types.FilterState {
	s := b.state
	if s.Year != nil {
		y := *s.Year
		s.Year = &y
	}
	s.Towns = append([]string(nil), s.Towns...)
	s.ResidentialTypes = append([]string(nil), s.ResidentialTypes...)
	return s
}

// Bounds returns the current derived amount bounds.
func (b *Binder) Bounds() types.DerivedBounds { return b.bounds }

// SetYear selects a year and re-derives the amount bounds from that year's
// records with every other restriction relaxed. If the year matches no
// records the previous bounds are kept; otherwise both the bounds and the
// current amount range snap to the year's (min, max).
func (b *Binder) SetYear(year int) {
	b.state.Year = &year

	globalLow, globalHigh := b.ds.AmountRange()
	matched := b.ds.Filter(&year, nil, nil, globalLow, globalHigh)
	if len(matched) > 0 {
		low, high := matched[0].SaleAmount, matched[0].SaleAmount
		for _, rec := range matched {
			if rec.SaleAmount < low {
				low = rec.SaleAmount
			}
			if rec.SaleAmount > high {
				high = rec.SaleAmount
			}
		}
		b.bounds = types.DerivedBounds{Min: low, Max: high}
		b.state.AmountLow = low
		b.state.AmountHigh = high
	}
	b.notify()
}

// ClearYear removes the year restriction. Bounds and the amount range are
// left as they are.
func (b *Binder) ClearYear() {
	b.state.Year = nil
	b.notify()
}

// SetTowns replaces the town restriction; an empty slice means no
// restriction.
func (b *Binder) SetTowns(towns []string) {
	b.state.Towns = append([]string(nil), towns...)
	b.notify()
}

// SetResidentialTypes replaces the residential-type restriction; an empty
// slice means no restriction.
func (b *Binder) SetResidentialTypes(resis []string) {
	b.state.ResidentialTypes = append([]string(nil), resis...)
	b.notify()
}

// SetAmountRange replaces the inclusive sale-amount range. A low above high
// is accepted and simply matches nothing.
func (b *Binder) SetAmountRange(low, high float64) {
	b.state.AmountLow = low
	b.state.AmountHigh = high
	b.notify()
}

// Reset restores the filter state and derived bounds to their startup
// defaults.
func (b *Binder) Reset() {
	b.reset()
	b.notify()
}

func (b *Binder) filtered() []types.SaleRecord {
	return b.ds.Filter(b.state.Year, b.state.Towns, b.state.ResidentialTypes,
		b.state.AmountLow, b.state.AmountHigh)
}

// Sankey builds the bipartite town → residential-type flow for the current
// filter state. Missing types count under "Unknown"; towns and types with no
// matching rows do not appear as nodes.
func (b *Binder) Sankey() types.SankeyGraph {
	type pair struct{ town, resi string }
	counts := make(map[pair]int)
	townSet := make(map[string]struct{})
	resiSet := make(map[string]struct{})

	for _, rec := range b.filtered() {
		resi := rec.ResidentialType
		if resi == "" {
			resi = unknownType
		}
		counts[pair{rec.Town, resi}]++
		townSet[rec.Town] = struct{}{}
		resiSet[resi] = struct{}{}
	}

	towns := make([]string, 0, len(townSet))
	for t := range townSet {
		towns = append(towns, t)
	}
	sort.Strings(towns)
	resis := make([]string, 0, len(resiSet))
	for rt := range resiSet {
		resis = append(resis, rt)
	}
	sort.Strings(resis)

	// Towns occupy the low indices, residential types follow. Indices are
	// positional within each group so a type sharing a town's name cannot
	// collide.
	nodes := append(append([]string(nil), towns...), resis...)

	var links []types.SankeyLink
	for ti, t := range towns {
		for ri, rt := range resis {
			if c, ok := counts[pair{t, rt}]; ok {
				links = append(links, types.SankeyLink{
					Source: ti,
					Target: len(towns) + ri,
					Value:  c,
				})
			}
		}
	}

	return types.SankeyGraph{Nodes: nodes, Links: links}
}

// MapPoints projects the filtered rows for the geographic scatter view.
func (b *Binder) MapPoints() []types.MapPoint {
	recs := b.filtered()
	points := make([]types.MapPoint, len(recs))
	for i, rec := range recs {
		points[i] = types.MapPoint{
			Lon:             rec.Lon,
			Lat:             rec.Lat,
			Address:         rec.Address,
			Amount:          rec.SaleAmount,
			Year:            rec.ListYear,
			ResidentialType: rec.ResidentialType,
		}
	}
	return points
}

// Table returns the full filtered row set in source order. Pagination is the
// caller's concern.
func (b *Binder) Table() []types.SaleRecord {
	return b.filtered()
}
