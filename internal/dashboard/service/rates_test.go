package service

import (
	"math"
	"testing"

	"github.com/smallbiznis/revboard/internal/dashboard/domain"
	"github.com/stretchr/testify/assert"
)

func TestApplyRates(t *testing.T) {
	days := []domain.DayMetrics{
		{Date: "2024-01-01", Visitors: 200, PricingViews: 50, Checkouts: 10, Purchases: 4, Revenue: 80},
	}
	custom := domain.CustomRate{
		Numerator:   domain.RateFieldRevenue,
		Denominator: domain.RateFieldPurchases,
	}

	records := applyRates(days, custom)
	assert.Len(t, records, 1)
	assert.Equal(t, 25.0, records[0].VisitorToPriceViewRate)
	assert.Equal(t, 20.0, records[0].PriceViewToCheckoutRate)
	assert.Equal(t, 40.0, records[0].CheckoutToPurchaseRate)
	assert.Equal(t, 2000.0, records[0].CustomRate)
}

func TestApplyRatesZeroDenominator(t *testing.T) {
	days := []domain.DayMetrics{
		{Date: "2024-01-01", Visitors: 0, PricingViews: 0, Checkouts: 0, Purchases: 5},
	}
	custom := domain.CustomRate{
		Numerator:   domain.RateFieldPurchases,
		Denominator: domain.RateFieldVisitors,
	}

	records := applyRates(days, custom)
	record := records[0]
	for _, rate := range []float64{
		record.VisitorToPriceViewRate,
		record.PriceViewToCheckoutRate,
		record.CheckoutToPurchaseRate,
		record.CustomRate,
	} {
		assert.Zero(t, rate)
		assert.False(t, math.IsNaN(rate))
		assert.False(t, math.IsInf(rate, 0))
	}
}

func TestParseRateFieldRejectsUnknown(t *testing.T) {
	_, err := domain.ParseRateField("profit")
	assert.ErrorIs(t, err, domain.ErrUnknownRateField)

	field, err := domain.ParseRateField("renewalRevenue")
	assert.NoError(t, err)
	assert.Equal(t, domain.RateFieldRenewalRevenue, field)
}
