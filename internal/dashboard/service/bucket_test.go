package service

import (
	"testing"

	"github.com/smallbiznis/revboard/internal/dashboard/domain"
	"github.com/stretchr/testify/assert"
)

func TestBucketSeriesWeekScenario(t *testing.T) {
	// Both days fall in the ISO week starting Monday 2024-01-01.
	days := []domain.DayMetrics{
		{Date: "2024-01-01", Visitors: 100, PricingViews: 20, Checkouts: 5, Purchases: 1,
			Revenue: 50, RenewalRevenue: 0, MRR: 110, ActiveCustomers: 3},
		{Date: "2024-01-02", Visitors: 200, PricingViews: 40, Checkouts: 10, Purchases: 2,
			Revenue: 100, RenewalRevenue: 20, MRR: 120, ActiveCustomers: 4},
	}

	buckets := bucketSeries(days, domain.GranularityWeek)
	assert.Len(t, buckets, 1)

	bucket := buckets[0]
	assert.Equal(t, "2024-01-01", bucket.Date)
	assert.Equal(t, 300, bucket.Visitors)
	assert.Equal(t, 60, bucket.PricingViews)
	assert.Equal(t, 15, bucket.Checkouts)
	assert.Equal(t, 3, bucket.Purchases)
	assert.Equal(t, 150.0, bucket.Revenue)
	assert.Equal(t, 20.0, bucket.RenewalRevenue)
	// Snapshots take the last member day's value.
	assert.Equal(t, 120.0, bucket.MRR)
	assert.Equal(t, 4, bucket.ActiveCustomers)
}

func TestBucketSeriesWeekKeyIsMonday(t *testing.T) {
	// 2024-01-07 is a Sunday and belongs to the week of Monday 2024-01-01;
	// 2024-01-08 opens the next week.
	days := []domain.DayMetrics{
		{Date: "2024-01-07", Visitors: 10},
		{Date: "2024-01-08", Visitors: 20},
	}

	buckets := bucketSeries(days, domain.GranularityWeek)
	assert.Len(t, buckets, 2)
	assert.Equal(t, "2024-01-01", buckets[0].Date)
	assert.Equal(t, "2024-01-08", buckets[1].Date)
}

func TestBucketSeriesMonth(t *testing.T) {
	days := []domain.DayMetrics{
		{Date: "2024-01-15", Revenue: 10, ReferringDomains: map[string]int{"google.com": 5}},
		{Date: "2024-01-31", Revenue: 20, ReferringDomains: map[string]int{"google.com": 3, "x.com": 2}},
		{Date: "2024-02-01", Revenue: 40},
	}

	buckets := bucketSeries(days, domain.GranularityMonth)
	assert.Len(t, buckets, 2)
	assert.Equal(t, "2024-01-01", buckets[0].Date)
	assert.Equal(t, 30.0, buckets[0].Revenue)
	assert.Equal(t, map[string]int{"google.com": 8, "x.com": 2}, buckets[0].ReferringDomains)
	assert.Equal(t, "2024-02-01", buckets[1].Date)
	assert.Equal(t, 40.0, buckets[1].Revenue)
}

func TestBucketSeriesDayIsIdentity(t *testing.T) {
	days := []domain.DayMetrics{
		{Date: "2024-01-01", Visitors: 1},
		{Date: "2024-01-02", Visitors: 2},
	}
	assert.Equal(t, days, bucketSeries(days, domain.GranularityDay))
}

func TestBucketSeriesSumPreserving(t *testing.T) {
	days := []domain.DayMetrics{
		{Date: "2024-01-01", Revenue: 10, Visitors: 5},
		{Date: "2024-01-05", Revenue: 15, Visitors: 7},
		{Date: "2024-01-08", Revenue: 20, Visitors: 11},
		{Date: "2024-02-02", Revenue: 25, Visitors: 13},
	}

	for _, granularity := range []domain.Granularity{domain.GranularityWeek, domain.GranularityMonth} {
		var revenue float64
		var visitors int
		for _, bucket := range bucketSeries(days, granularity) {
			revenue += bucket.Revenue
			visitors += bucket.Visitors
		}
		assert.Equal(t, 70.0, revenue, "granularity %s", granularity)
		assert.Equal(t, 36, visitors, "granularity %s", granularity)
	}
}

func TestBucketSeriesSeedCopiesReferrerMap(t *testing.T) {
	days := []domain.DayMetrics{
		{Date: "2024-01-01", ReferringDomains: map[string]int{"google.com": 5}},
		{Date: "2024-01-02", ReferringDomains: map[string]int{"google.com": 2}},
	}

	buckets := bucketSeries(days, domain.GranularityWeek)
	assert.Equal(t, 7, buckets[0].ReferringDomains["google.com"])
	// The input day's map must be untouched.
	assert.Equal(t, 5, days[0].ReferringDomains["google.com"])
}
