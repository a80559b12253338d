package domain

import (
	"context"
	"time"
)

// DayTraffic is one day of funnel traffic. Counts are unique actors per day;
// ReferringDomains maps referrer domain to visitor count.
type DayTraffic struct {
	Date             string         `json:"date"`
	Visitors         int            `json:"visitors"`
	PricingViews     int            `json:"pricingViews"`
	Checkouts        int            `json:"checkouts"`
	Purchases        int            `json:"purchases"`
	ReferringDomains map[string]int `json:"referringDomains"`
}

// Service fetches the daily traffic series from the analytics provider.
type Service interface {
	// FetchSeries returns one record per day in [start, end], ascending. When
	// credentials are missing or the trend query fails it substitutes a mock
	// series, so the result is never empty for a valid range.
	FetchSeries(ctx context.Context, start, end time.Time) []DayTraffic
}
