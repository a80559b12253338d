package service

import "github.com/smallbiznis/revboard/internal/dashboard/domain"

// applyRates augments each record with funnel conversion percentages and the
// user-selected custom ratio. A zero denominator yields exactly 0, never NaN
// or Inf.
func applyRates(days []domain.DayMetrics, custom domain.CustomRate) []domain.MetricRecord {
	records := make([]domain.MetricRecord, 0, len(days))
	for _, day := range days {
		records = append(records, domain.MetricRecord{
			DayMetrics:              day,
			VisitorToPriceViewRate:  ratio(float64(day.PricingViews), float64(day.Visitors)),
			PriceViewToCheckoutRate: ratio(float64(day.Checkouts), float64(day.PricingViews)),
			CheckoutToPurchaseRate:  ratio(float64(day.Purchases), float64(day.Checkouts)),
			CustomRate:              ratio(custom.Numerator.Value(day), custom.Denominator.Value(day)),
		})
	}
	return records
}

func ratio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator * 100
}
