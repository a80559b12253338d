package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/smallbiznis/revboard/internal/config"
	"github.com/smallbiznis/revboard/internal/providers/posthog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type analyticsAPIMock struct {
	mock.Mock
}

func (m *analyticsAPIMock) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *analyticsAPIMock) QueryTrends(ctx context.Context, req posthog.TrendsRequest) ([]posthog.TrendResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]posthog.TrendResult), args.Error(1)
}

func (m *analyticsAPIMock) QueryBreakdown(ctx context.Context, req posthog.BreakdownRequest) ([]posthog.TrendResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]posthog.TrendResult), args.Error(1)
}

func mustDay(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		t.Fatalf("parse %s: %v", value, err)
	}
	return parsed
}

func testService(api AnalyticsAPI) *service {
	holder := config.NewStaticDashboardConfigHolder(config.DefaultDashboardConfig())
	rng := rand.New(rand.NewSource(42))
	return newServiceWith(api, holder, zap.NewNop(), nil, rng.Intn)
}

func TestFetchSeriesOverlaysTrendResults(t *testing.T) {
	api := &analyticsAPIMock{}
	api.On("Enabled").Return(true)
	api.On("QueryTrends", mock.Anything, mock.Anything).Return([]posthog.TrendResult{
		{
			Event: "$pageview",
			Days:  []string{"2024-03-04", "2024-03-05", "2024-03-06"},
			Data:  []float64{120, 95, 140},
		},
		{
			Event: "purchase_completed",
			Days:  []string{"2024-03-05"},
			Data:  []float64{4},
		},
	}, nil)
	api.On("QueryBreakdown", mock.Anything, mock.Anything).Return([]posthog.TrendResult{
		{
			Event:          "$pageview",
			BreakdownValue: "google.com",
			Days:           []string{"2024-03-04", "2024-03-05"},
			Data:           []float64{80, 0},
		},
	}, nil)

	svc := testService(api)
	series := svc.FetchSeries(context.Background(), mustDay(t, "2024-03-04"), mustDay(t, "2024-03-06"))

	assert.Len(t, series, 3)
	assert.Equal(t, "2024-03-04", series[0].Date)
	assert.Equal(t, "2024-03-06", series[2].Date)

	assert.Equal(t, 120, series[0].Visitors)
	assert.Equal(t, 95, series[1].Visitors)
	assert.Equal(t, 140, series[2].Visitors)
	assert.Equal(t, 4, series[1].Purchases)
	assert.Zero(t, series[0].Purchases)

	assert.Equal(t, map[string]int{"google.com": 80}, series[0].ReferringDomains)
	assert.Empty(t, series[1].ReferringDomains)
}

func TestFetchSeriesIgnoresDatesOutsideRange(t *testing.T) {
	api := &analyticsAPIMock{}
	api.On("Enabled").Return(true)
	api.On("QueryTrends", mock.Anything, mock.Anything).Return([]posthog.TrendResult{
		{
			Event: "$pageview",
			Days:  []string{"2024-02-29", "2024-03-04T00:00:00", "2024-03-09"},
			Data:  []float64{999, 50, 999},
		},
	}, nil)
	api.On("QueryBreakdown", mock.Anything, mock.Anything).Return([]posthog.TrendResult{}, nil)

	svc := testService(api)
	series := svc.FetchSeries(context.Background(), mustDay(t, "2024-03-04"), mustDay(t, "2024-03-05"))

	assert.Len(t, series, 2)
	assert.Equal(t, 50, series[0].Visitors)
	assert.Zero(t, series[1].Visitors)
}

func TestFetchSeriesMockWhenCredentialsMissing(t *testing.T) {
	api := &analyticsAPIMock{}
	api.On("Enabled").Return(false)

	svc := testService(api)
	series := svc.FetchSeries(context.Background(), mustDay(t, "2024-03-01"), mustDay(t, "2024-03-07"))

	assert.Len(t, series, 7)
	for _, record := range series {
		assert.GreaterOrEqual(t, record.Visitors, 500)
		assert.LessOrEqual(t, record.Visitors, 1000)
		assert.LessOrEqual(t, record.PricingViews, record.Visitors)
		assert.LessOrEqual(t, record.Checkouts, record.PricingViews)
		assert.LessOrEqual(t, record.Purchases, record.Checkouts)

		total := 0
		for _, count := range record.ReferringDomains {
			total += count
		}
		assert.Equal(t, record.Visitors, total)
	}
	api.AssertNotCalled(t, "QueryTrends", mock.Anything, mock.Anything)
}

func TestFetchSeriesMockOnTrendFailure(t *testing.T) {
	api := &analyticsAPIMock{}
	api.On("Enabled").Return(true)
	api.On("QueryTrends", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	svc := testService(api)
	series := svc.FetchSeries(context.Background(), mustDay(t, "2024-03-01"), mustDay(t, "2024-03-03"))

	assert.Len(t, series, 3)
	for _, record := range series {
		assert.GreaterOrEqual(t, record.Visitors, 500)
	}
	api.AssertNotCalled(t, "QueryBreakdown", mock.Anything, mock.Anything)
}

func TestFetchSeriesBreakdownFailureIsNonFatal(t *testing.T) {
	api := &analyticsAPIMock{}
	api.On("Enabled").Return(true)
	api.On("QueryTrends", mock.Anything, mock.Anything).Return([]posthog.TrendResult{
		{Event: "$pageview", Days: []string{"2024-03-01"}, Data: []float64{75}},
	}, nil)
	api.On("QueryBreakdown", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	svc := testService(api)
	series := svc.FetchSeries(context.Background(), mustDay(t, "2024-03-01"), mustDay(t, "2024-03-01"))

	assert.Len(t, series, 1)
	assert.Equal(t, 75, series[0].Visitors)
	assert.Empty(t, series[0].ReferringDomains)
}
