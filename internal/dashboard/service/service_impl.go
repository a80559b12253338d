package service

import (
	"context"
	"sync"

	analyticsdomain "github.com/smallbiznis/revboard/internal/analytics/domain"
	billingdomain "github.com/smallbiznis/revboard/internal/billingledger/domain"
	"github.com/smallbiznis/revboard/internal/cache"
	"github.com/smallbiznis/revboard/internal/config"
	"github.com/smallbiznis/revboard/internal/dashboard/domain"
	obsmetrics "github.com/smallbiznis/revboard/internal/observability/metrics"
	snapshotdomain "github.com/smallbiznis/revboard/internal/snapshot/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Billing   billingdomain.Service
	Analytics analyticsdomain.Service
	Snapshot  snapshotdomain.Service
	Cache     cache.SeriesCache
	Holder    *config.DashboardConfigHolder
	Log       *zap.Logger
	Metrics   *obsmetrics.Metrics
}

type service struct {
	billing   billingdomain.Service
	analytics analyticsdomain.Service
	snapshot  snapshotdomain.Service
	cache     cache.SeriesCache
	holder    *config.DashboardConfigHolder
	log       *zap.Logger
	metrics   *obsmetrics.Metrics
}

// NewService constructs the dashboard orchestrator.
func NewService(p Params) domain.Service {
	return &service{
		billing:   p.Billing,
		analytics: p.Analytics,
		snapshot:  p.Snapshot,
		cache:     p.Cache,
		holder:    p.Holder,
		log:       p.Log.Named("dashboard.service"),
		metrics:   p.Metrics,
	}
}

// GetMetrics fetches both sources concurrently, merges them into the
// canonical daily series, buckets it, and derives rates. Computed series are
// cached by request fingerprint; when the billing ledger comes back empty the
// last persisted snapshot is served instead, marked stale.
func (s *service) GetMetrics(ctx context.Context, req domain.GetMetricsRequest) (domain.GetMetricsResponse, error) {
	req, err := s.normalize(req)
	if err != nil {
		return domain.GetMetricsResponse{}, err
	}

	resp := domain.GetMetricsResponse{
		Start:       req.Start.UTC().Format("2006-01-02"),
		End:         req.End.UTC().Format("2006-01-02"),
		Granularity: req.Granularity,
	}

	fingerprint := cache.Fingerprint(req)
	if records, ok := s.cache.Get(ctx, fingerprint); ok {
		s.metrics.RecordCacheLookup(ctx, s.cache.Backend(), true)
		resp.Records = records
		return resp, nil
	}
	s.metrics.RecordCacheLookup(ctx, s.cache.Backend(), false)

	var (
		wg      sync.WaitGroup
		ledger  []billingdomain.DayRevenue
		traffic []analyticsdomain.DayTraffic
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ledger, _ = s.billing.BuildLedger(ctx, req.Start, req.End)
	}()
	go func() {
		defer wg.Done()
		traffic = s.analytics.FetchSeries(ctx, req.Start, req.End)
	}()
	wg.Wait()

	if len(ledger) == 0 {
		return s.serveSnapshot(ctx, req, resp)
	}

	merged := mergeSeries(ledger, traffic)
	if err := s.snapshot.UpsertDays(ctx, merged); err != nil {
		s.log.Warn("snapshot upsert failed", zap.Error(err))
	}

	records := applyRates(bucketSeries(merged, req.Granularity), req.CustomRate)
	s.cache.Put(ctx, fingerprint, records)
	resp.Records = records
	return resp, nil
}

// serveSnapshot replays the last persisted series for the range. An empty
// snapshot yields an empty record set rather than an error, so the caller is
// never left without a response.
func (s *service) serveSnapshot(ctx context.Context, req domain.GetMetricsRequest, resp domain.GetMetricsResponse) (domain.GetMetricsResponse, error) {
	days, err := s.snapshot.RangeDays(ctx, req.Start, req.End)
	if err != nil {
		s.log.Error("snapshot range failed", zap.Error(err))
		resp.Records = []domain.MetricRecord{}
		return resp, nil
	}
	if len(days) == 0 {
		s.log.Warn("billing ledger empty and no snapshot available")
		resp.Records = []domain.MetricRecord{}
		return resp, nil
	}

	s.metrics.RecordSnapshotFallback(ctx)
	s.log.Warn("billing ledger empty, serving persisted snapshot",
		zap.String("start", resp.Start),
		zap.String("end", resp.End),
	)
	resp.Records = applyRates(bucketSeries(days, req.Granularity), req.CustomRate)
	resp.Stale = true
	return resp, nil
}

// normalize validates the range and fills the custom rate pair from the
// dashboard config when the caller omitted it.
func (s *service) normalize(req domain.GetMetricsRequest) (domain.GetMetricsRequest, error) {
	if req.Start.After(req.End) {
		return req, domain.ErrInvalidDateRange
	}
	if req.Granularity == "" {
		req.Granularity = domain.GranularityDay
	}
	// Fill only the missing side from the config defaults, so a caller
	// supplying just a numerator keeps it.
	pair := s.holder.Get().DefaultRate
	if req.CustomRate.Numerator == "" {
		numerator, err := domain.ParseRateField(pair.Numerator)
		if err != nil {
			return req, err
		}
		req.CustomRate.Numerator = numerator
	}
	if req.CustomRate.Denominator == "" {
		denominator, err := domain.ParseRateField(pair.Denominator)
		if err != nil {
			return req, err
		}
		req.CustomRate.Denominator = denominator
	}
	return req, nil
}
