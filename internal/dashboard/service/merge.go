package service

import (
	analyticsdomain "github.com/smallbiznis/revboard/internal/analytics/domain"
	billingdomain "github.com/smallbiznis/revboard/internal/billingledger/domain"
	"github.com/smallbiznis/revboard/internal/dashboard/domain"
)

// mergeSeries joins the billing ledger with the analytics series by date.
// The ledger's dates drive the output: analytics records with no matching
// ledger date are dropped, and ledger dates with no analytics record get
// zero traffic. Purchases always takes the billing value.
func mergeSeries(ledger []billingdomain.DayRevenue, traffic []analyticsdomain.DayTraffic) []domain.DayMetrics {
	byDate := make(map[string]analyticsdomain.DayTraffic, len(traffic))
	for _, record := range traffic {
		byDate[record.Date] = record
	}

	merged := make([]domain.DayMetrics, 0, len(ledger))
	for _, day := range ledger {
		t := byDate[day.Date]
		domains := make(map[string]int, len(t.ReferringDomains))
		for name, count := range t.ReferringDomains {
			domains[name] = count
		}
		merged = append(merged, domain.DayMetrics{
			Date:             day.Date,
			Visitors:         t.Visitors,
			PricingViews:     t.PricingViews,
			Checkouts:        t.Checkouts,
			Purchases:        day.Purchases,
			ReferringDomains: domains,
			Revenue:          day.Revenue,
			RenewalRevenue:   day.RenewalRevenue,
			MRR:              day.MRR,
			ActiveCustomers:  day.ActiveCustomers,
			ChurnRate:        day.ChurnRate,
		})
	}
	return merged
}
