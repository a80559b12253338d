package domain

import (
	"context"
	"time"
)

// DayRevenue is one day of the billing ledger. Revenue fields are in major
// currency units; MRR, ActiveCustomers, and ChurnRate are period snapshots
// repeated on every day of the range.
type DayRevenue struct {
	Date            string  `json:"date"`
	Revenue         float64 `json:"revenue"`
	RenewalRevenue  float64 `json:"renewalRevenue"`
	Purchases       int     `json:"purchases"`
	MRR             float64 `json:"mrr"`
	ActiveCustomers int     `json:"activeCustomers"`
	ChurnRate       float64 `json:"churnRate"`
}

// Service builds the daily revenue ledger from the billing provider.
type Service interface {
	// BuildLedger returns one record per day in [start, end], ascending. Both
	// bounds are calendar dates: billing records anywhere on the end day count.
	// It is best-effort: provider failures and missing credentials yield an
	// empty series, never an error.
	BuildLedger(ctx context.Context, start, end time.Time) ([]DayRevenue, error)
}
