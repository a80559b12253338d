package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/smallbiznis/revboard/internal/analytics/domain"
	"github.com/smallbiznis/revboard/internal/config"
	obsmetrics "github.com/smallbiznis/revboard/internal/observability/metrics"
	"github.com/smallbiznis/revboard/internal/providers/posthog"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	providerID        = "posthog"
	referrerBreakdown = "$referring_domain"
)

// AnalyticsAPI is the slice of the PostHog client the fetcher uses.
type AnalyticsAPI interface {
	Enabled() bool
	QueryTrends(ctx context.Context, req posthog.TrendsRequest) ([]posthog.TrendResult, error)
	QueryBreakdown(ctx context.Context, req posthog.BreakdownRequest) ([]posthog.TrendResult, error)
}

type Params struct {
	fx.In

	Client  *posthog.Client
	Holder  *config.DashboardConfigHolder
	Log     *zap.Logger
	Metrics *obsmetrics.Metrics
}

type service struct {
	api     AnalyticsAPI
	holder  *config.DashboardConfigHolder
	log     *zap.Logger
	metrics *obsmetrics.Metrics
	randInt func(n int) int
}

// NewService constructs the analytics series fetcher.
func NewService(p Params) domain.Service {
	return &service{
		api:     p.Client,
		holder:  p.Holder,
		log:     p.Log.Named("analytics.service"),
		metrics: p.Metrics,
		randInt: rand.Intn,
	}
}

func newServiceWith(api AnalyticsAPI, holder *config.DashboardConfigHolder, log *zap.Logger, m *obsmetrics.Metrics, randInt func(int) int) *service {
	return &service{
		api:     api,
		holder:  holder,
		log:     log.Named("analytics.service"),
		metrics: m,
		randInt: randInt,
	}
}

func (s *service) FetchSeries(ctx context.Context, start, end time.Time) []domain.DayTraffic {
	start = start.UTC()
	end = end.UTC()
	axis, index := emptyAxis(start, end)
	cfg := s.holder.Get()

	if !s.api.Enabled() {
		s.log.Warn("analytics credentials missing, serving mock series")
		s.metrics.RecordMockFallback(ctx, "missing_credentials")
		return s.mockSeries(axis, cfg.MockDomains)
	}

	dateFrom := start.Format(time.DateOnly)
	dateTo := end.Format(time.DateOnly)

	began := time.Now()
	results, err := s.api.QueryTrends(ctx, posthog.TrendsRequest{
		Events: []string{
			cfg.FunnelEvents.PageView,
			cfg.FunnelEvents.PricingView,
			cfg.FunnelEvents.CheckoutClick,
			cfg.FunnelEvents.Purchase,
		},
		DateFrom: dateFrom,
		DateTo:   dateTo,
	})
	s.metrics.RecordProviderFetch(ctx, providerID, "trends", outcome(err), time.Since(began))
	if err != nil {
		s.log.Error("trend query failed, serving mock series", zap.Error(err))
		s.metrics.RecordMockFallback(ctx, "trend_query_failed")
		return s.mockSeries(axis, cfg.MockDomains)
	}

	for _, result := range results {
		apply := fieldSetter(cfg.FunnelEvents, result.Event)
		if apply == nil {
			s.log.Debug("trend result for unknown event ignored", zap.String("event", result.Event))
			continue
		}
		for i, dayValue := range result.Days {
			if i >= len(result.Data) {
				break
			}
			pos, ok := index[dateKey(dayValue)]
			if !ok {
				continue
			}
			apply(&axis[pos], int(result.Data[i]))
		}
	}

	began = time.Now()
	breakdown, err := s.api.QueryBreakdown(ctx, posthog.BreakdownRequest{
		Event:     cfg.FunnelEvents.PageView,
		Breakdown: referrerBreakdown,
		Limit:     cfg.ReferrerLimit,
		DateFrom:  dateFrom,
		DateTo:    dateTo,
	})
	s.metrics.RecordProviderFetch(ctx, providerID, "breakdown", outcome(err), time.Since(began))
	if err != nil {
		// Referrer data is decorative, so a failed breakdown keeps the trend
		// series and just leaves the domain maps empty.
		s.log.Warn("referrer breakdown failed, domains omitted", zap.Error(err))
		return axis
	}

	for _, result := range breakdown {
		name := result.BreakdownValue
		if name == "" {
			continue
		}
		for i, dayValue := range result.Days {
			if i >= len(result.Data) {
				break
			}
			pos, ok := index[dateKey(dayValue)]
			if !ok {
				continue
			}
			if count := int(result.Data[i]); count > 0 {
				axis[pos].ReferringDomains[name] += count
			}
		}
	}
	return axis
}

// mockSeries fills the axis with plausible funnel numbers so the dashboard
// stays demonstrable without live analytics.
func (s *service) mockSeries(axis []domain.DayTraffic, domains []string) []domain.DayTraffic {
	for i := range axis {
		visitors := 500 + s.randInt(501)
		pricingViews := visitors * (25 + s.randInt(11)) / 100
		checkouts := pricingViews * (8 + s.randInt(5)) / 100
		purchases := checkouts * (40 + s.randInt(21)) / 100

		referrers := make(map[string]int, len(domains)+1)
		remaining := visitors
		for _, name := range domains {
			if remaining <= 0 {
				break
			}
			share := s.randInt(remaining/2 + 1)
			if share == 0 {
				continue
			}
			referrers[name] = share
			remaining -= share
		}
		if remaining > 0 {
			referrers["other"] = remaining
		}

		axis[i].Visitors = visitors
		axis[i].PricingViews = pricingViews
		axis[i].Checkouts = checkouts
		axis[i].Purchases = purchases
		axis[i].ReferringDomains = referrers
	}
	return axis
}

// emptyAxis builds a zero-filled record per day in [start, end], ascending,
// plus a date-to-position index for overlaying provider results.
func emptyAxis(start, end time.Time) ([]domain.DayTraffic, map[string]int) {
	axis := make([]domain.DayTraffic, 0)
	index := make(map[string]int)
	for day := dateOnly(start); !day.After(dateOnly(end)); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		index[key] = len(axis)
		axis = append(axis, domain.DayTraffic{
			Date:             key,
			ReferringDomains: make(map[string]int),
		})
	}
	return axis, index
}

func fieldSetter(events config.FunnelEvents, event string) func(*domain.DayTraffic, int) {
	switch event {
	case events.PageView:
		return func(d *domain.DayTraffic, v int) { d.Visitors = v }
	case events.PricingView:
		return func(d *domain.DayTraffic, v int) { d.PricingViews = v }
	case events.CheckoutClick:
		return func(d *domain.DayTraffic, v int) { d.Checkouts = v }
	case events.Purchase:
		return func(d *domain.DayTraffic, v int) { d.Purchases = v }
	default:
		return nil
	}
}

// dateKey trims provider day strings like "2024-03-05T00:00:00" to the date.
func dateKey(value string) string {
	if len(value) > len(time.DateOnly) {
		return value[:len(time.DateOnly)]
	}
	return value
}

func dateOnly(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
