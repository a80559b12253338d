package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidDateRange   = errors.New("invalid_date_range")
	ErrInvalidGranularity = errors.New("invalid_granularity")
	ErrUnknownRateField   = errors.New("unknown_rate_field")
)

// DayMetrics is one merged record of the canonical series: analytics funnel
// counts plus the billing ledger for the same date. Purchases is always the
// billing provider's count.
type DayMetrics struct {
	Date             string         `json:"date"`
	Visitors         int            `json:"visitors"`
	PricingViews     int            `json:"pricingViews"`
	Checkouts        int            `json:"checkouts"`
	Purchases        int            `json:"purchases"`
	ReferringDomains map[string]int `json:"referringDomains"`
	Revenue          float64        `json:"revenue"`
	RenewalRevenue   float64        `json:"renewalRevenue"`
	MRR              float64        `json:"mrr"`
	ActiveCustomers  int            `json:"activeCustomers"`
	ChurnRate        float64        `json:"churnRate"`
}

// MetricRecord is a DayMetrics augmented with presentation-only conversion
// rates, all expressed as percentages.
type MetricRecord struct {
	DayMetrics

	VisitorToPriceViewRate  float64 `json:"visitorToPriceViewRate"`
	PriceViewToCheckoutRate float64 `json:"priceViewToCheckoutRate"`
	CheckoutToPurchaseRate  float64 `json:"checkoutToPurchaseRate"`
	CustomRate              float64 `json:"customRate"`
}

// Granularity selects the output bucket size.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity maps a query-string value onto the enum. Empty defaults
// to day.
func ParseGranularity(value string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(GranularityDay):
		return GranularityDay, nil
	case string(GranularityWeek):
		return GranularityWeek, nil
	case string(GranularityMonth):
		return GranularityMonth, nil
	default:
		return "", ErrInvalidGranularity
	}
}

// RateField is the closed set of numeric fields selectable as a custom rate
// numerator or denominator.
type RateField string

const (
	RateFieldVisitors        RateField = "visitors"
	RateFieldPricingViews    RateField = "pricingViews"
	RateFieldCheckouts       RateField = "checkouts"
	RateFieldPurchases       RateField = "purchases"
	RateFieldRevenue         RateField = "revenue"
	RateFieldRenewalRevenue  RateField = "renewalRevenue"
	RateFieldMRR             RateField = "mrr"
	RateFieldActiveCustomers RateField = "activeCustomers"
)

// ParseRateField validates a user-supplied field name up front, so unknown
// names are rejected at configuration time rather than at read time.
func ParseRateField(value string) (RateField, error) {
	switch RateField(strings.TrimSpace(value)) {
	case RateFieldVisitors, RateFieldPricingViews, RateFieldCheckouts, RateFieldPurchases,
		RateFieldRevenue, RateFieldRenewalRevenue, RateFieldMRR, RateFieldActiveCustomers:
		return RateField(strings.TrimSpace(value)), nil
	default:
		return "", ErrUnknownRateField
	}
}

// Value reads the selected field off a record.
func (f RateField) Value(record DayMetrics) float64 {
	switch f {
	case RateFieldVisitors:
		return float64(record.Visitors)
	case RateFieldPricingViews:
		return float64(record.PricingViews)
	case RateFieldCheckouts:
		return float64(record.Checkouts)
	case RateFieldPurchases:
		return float64(record.Purchases)
	case RateFieldRevenue:
		return record.Revenue
	case RateFieldRenewalRevenue:
		return record.RenewalRevenue
	case RateFieldMRR:
		return record.MRR
	case RateFieldActiveCustomers:
		return float64(record.ActiveCustomers)
	default:
		return 0
	}
}

// CustomRate is the user-selected numerator/denominator pair.
type CustomRate struct {
	Numerator   RateField
	Denominator RateField
}

// GetMetricsRequest carries a validated dashboard query.
type GetMetricsRequest struct {
	Start       time.Time
	End         time.Time
	Granularity Granularity
	CustomRate  CustomRate
}

// GetMetricsResponse is the ordered, bucketed, rated series. Stale marks a
// response served from the last persisted snapshot because both providers
// came back empty.
type GetMetricsResponse struct {
	Start       string         `json:"start"`
	End         string         `json:"end"`
	Granularity Granularity    `json:"granularity"`
	Records     []MetricRecord `json:"records"`
	Stale       bool           `json:"stale"`
}

// Service assembles the dashboard series.
type Service interface {
	GetMetrics(ctx context.Context, req GetMetricsRequest) (GetMetricsResponse, error)
}
