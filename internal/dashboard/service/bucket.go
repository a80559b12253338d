package service

import (
	"time"

	"github.com/smallbiznis/revboard/internal/dashboard/domain"
)

// bucketSeries rolls the daily series up to the requested granularity. Flow
// fields and per-domain referrer counts are summed; mrr, activeCustomers,
// and churnRate are point-in-time snapshots and take the last member day's
// value. Day granularity is the identity transform.
func bucketSeries(days []domain.DayMetrics, granularity domain.Granularity) []domain.DayMetrics {
	if granularity == domain.GranularityDay || len(days) == 0 {
		return days
	}

	out := make([]domain.DayMetrics, 0)
	var current *domain.DayMetrics
	for _, day := range days {
		key, err := bucketKey(day.Date, granularity)
		if err != nil {
			continue
		}

		if current == nil || current.Date != key {
			if current != nil {
				out = append(out, *current)
			}
			seed := day
			seed.Date = key
			seed.ReferringDomains = copyDomains(day.ReferringDomains)
			current = &seed
			continue
		}

		current.Visitors += day.Visitors
		current.PricingViews += day.PricingViews
		current.Checkouts += day.Checkouts
		current.Purchases += day.Purchases
		current.Revenue += day.Revenue
		current.RenewalRevenue += day.RenewalRevenue
		for name, count := range day.ReferringDomains {
			current.ReferringDomains[name] += count
		}
		current.MRR = day.MRR
		current.ActiveCustomers = day.ActiveCustomers
		current.ChurnRate = day.ChurnRate
	}
	if current != nil {
		out = append(out, *current)
	}
	return out
}

// bucketKey maps a date onto its bucket start: the Monday on/before it for
// weeks, the 1st for months.
func bucketKey(date string, granularity domain.Granularity) (string, error) {
	ts, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return "", err
	}
	switch granularity {
	case domain.GranularityWeek:
		offset := (int(ts.Weekday()) + 6) % 7
		ts = ts.AddDate(0, 0, -offset)
	case domain.GranularityMonth:
		ts = time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return ts.Format(time.DateOnly), nil
}

func copyDomains(domains map[string]int) map[string]int {
	out := make(map[string]int, len(domains))
	for name, count := range domains {
		out[name] = count
	}
	return out
}
