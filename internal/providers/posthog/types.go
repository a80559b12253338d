package posthog

// TrendsRequest describes a daily-interval trend query over one or more events.
type TrendsRequest struct {
	Events   []string
	DateFrom string
	DateTo   string
}

// BreakdownRequest describes a single-event trend query broken down by a
// property, limited to the top N values for the period.
type BreakdownRequest struct {
	Event     string
	Breakdown string
	Limit     int
	DateFrom  string
	DateTo    string
}

// TrendResult is one series from a trend response: per-day counts aligned to
// a shared date axis.
type TrendResult struct {
	Event          string
	BreakdownValue string
	Days           []string
	Data           []float64
}

type queryEnvelope struct {
	Query trendsQuery `json:"query"`
}

type trendsQuery struct {
	Kind            string           `json:"kind"`
	Series          []eventsNode     `json:"series"`
	Interval        string           `json:"interval"`
	DateRange       dateRange        `json:"dateRange"`
	BreakdownFilter *breakdownFilter `json:"breakdownFilter,omitempty"`
}

type eventsNode struct {
	Kind  string `json:"kind"`
	Event string `json:"event"`
	Math  string `json:"math"`
}

type dateRange struct {
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

type breakdownFilter struct {
	Breakdown      string `json:"breakdown"`
	BreakdownType  string `json:"breakdown_type"`
	BreakdownLimit int    `json:"breakdown_limit"`
}

type queryResponse struct {
	Results []trendResultWire `json:"results"`
}

type trendResultWire struct {
	Label          string    `json:"label"`
	Days           []string  `json:"days"`
	Data           []float64 `json:"data"`
	BreakdownValue any       `json:"breakdown_value"`
	Action         struct {
		Name string `json:"name"`
	} `json:"action"`
}
