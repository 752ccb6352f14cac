package types

// SaleRecord holds one cleaned row of the sales dataset. Rows that survive
// loading always have a parseable location, sale amount, and list year;
// ResidentialType may be empty and is presented as "Unknown" where a label
// is required.
type SaleRecord struct {
	Town            string  `json:"town"`
	ResidentialType string  `json:"residentialType,omitempty"`
	SaleAmount      float64 `json:"saleAmount"`
	ListYear        int     `json:"listYear"`
	Address         string  `json:"address"`
	Lon             float64 `json:"lon"`
	Lat             float64 `json:"lat"`
}

// FilterState is the complete set of user-adjustable query parameters.
// A nil Year and empty Towns/ResidentialTypes mean "no restriction".
type FilterState struct {
	Year             *int     `json:"year"`
	Towns            []string `json:"towns"`
	ResidentialTypes []string `json:"residentialTypes"`
	AmountLow        float64  `json:"amountLow"`
	AmountHigh       float64  `json:"amountHigh"`
}

// DerivedBounds is the permissible sale-amount range for the currently
// selected year, used to re-clamp the range control when the year changes.
type DerivedBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SankeyLink is one weighted edge of the flow diagram. Source and Target
// index into SankeyGraph.Nodes.
type SankeyLink struct {
	Source int `json:"source"`
	Target int `json:"target"`
	Value  int `json:"value"`
}

// SankeyGraph is the bipartite town → residential-type flow: towns first,
// then residential types, each group sorted lexicographically.
type SankeyGraph struct {
	Nodes []string     `json:"nodes"`
	Links []SankeyLink `json:"links"`
}

// MapPoint is one sale projected for the geographic scatter view.
type MapPoint struct {
	Lon             float64 `json:"lon"`
	Lat             float64 `json:"lat"`
	Address         string  `json:"address"`
	Amount          float64 `json:"amount"`
	Year            int     `json:"year"`
	ResidentialType string  `json:"residentialType,omitempty"`
}
