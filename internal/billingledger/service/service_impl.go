package service

import (
	"context"
	"strconv"
	"time"

	"github.com/smallbiznis/revboard/internal/billingledger/domain"
	obsmetrics "github.com/smallbiznis/revboard/internal/observability/metrics"
	"github.com/smallbiznis/revboard/internal/providers/lemonsqueezy"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	pageSize   = 100
	providerID = "lemonsqueezy"
)

// BillingAPI is the slice of the Lemon Squeezy client the ledger builder uses.
type BillingAPI interface {
	Enabled() bool
	ListOrders(ctx context.Context, page, size int) (lemonsqueezy.OrdersPage, error)
	ListSubscriptionInvoices(ctx context.Context, page, size int) (lemonsqueezy.SubscriptionInvoicesPage, error)
	ListCustomers(ctx context.Context, page, size int) (lemonsqueezy.CustomersPage, error)
	ListSubscriptions(ctx context.Context, status string, page, size int) (lemonsqueezy.SubscriptionsPage, error)
}

type Params struct {
	fx.In

	Client  *lemonsqueezy.Client
	Log     *zap.Logger
	Metrics *obsmetrics.Metrics
}

type service struct {
	api     BillingAPI
	log     *zap.Logger
	metrics *obsmetrics.Metrics
}

// NewService constructs the billing ledger builder.
func NewService(p Params) domain.Service {
	return &service{
		api:     p.Client,
		log:     p.Log.Named("billingledger.service"),
		metrics: p.Metrics,
	}
}

func newServiceWith(api BillingAPI, log *zap.Logger, m *obsmetrics.Metrics) *service {
	return &service{api: api, log: log.Named("billingledger.service"), metrics: m}
}

// dayTotals accumulates per-day amounts before the snapshot fields are applied.
type dayTotals struct {
	revenue        float64
	renewalRevenue float64
	purchases      int
}

func (s *service) BuildLedger(ctx context.Context, start, end time.Time) ([]domain.DayRevenue, error) {
	if !s.api.Enabled() {
		s.log.Warn("billing credentials missing, returning empty ledger")
		return nil, nil
	}

	start = dateOnly(start.UTC())
	end = dateOnly(end.UTC())
	// Callers pass calendar dates at midnight, so the end bound is the whole
	// end day: a paid order at 10:00 on the end date still counts.
	endExclusive := end.AddDate(0, 0, 1)

	totals := make(map[string]*dayTotals)
	if err := s.collectOrders(ctx, start, endExclusive, totals); err != nil {
		s.log.Error("fetch orders failed, returning empty ledger", zap.Error(err))
		return nil, nil
	}
	if err := s.collectInvoices(ctx, start, endExclusive, totals); err != nil {
		s.log.Error("fetch subscription invoices failed, returning empty ledger", zap.Error(err))
		return nil, nil
	}

	mrr, activeCustomers, err := s.collectSnapshot(ctx)
	if err != nil {
		s.log.Error("fetch customers or subscriptions failed, returning empty ledger", zap.Error(err))
		return nil, nil
	}

	ledger := make([]domain.DayRevenue, 0)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		record := domain.DayRevenue{
			Date:            day.Format(time.DateOnly),
			MRR:             mrr,
			ActiveCustomers: activeCustomers,
			ChurnRate:       0,
		}
		if t, ok := totals[record.Date]; ok {
			record.Revenue = t.revenue
			record.RenewalRevenue = t.renewalRevenue
			record.Purchases = t.purchases
		}
		ledger = append(ledger, record)
	}
	return ledger, nil
}

// collectOrders pages through orders newest-first and adds paid orders inside
// the range to the day totals. Pagination stops once a page reaches records
// older than start, with meta.lastPage as the backstop.
func (s *service) collectOrders(ctx context.Context, start, endExclusive time.Time, totals map[string]*dayTotals) error {
	pages := int64(0)
	defer func() { s.metrics.RecordProviderPages(ctx, providerID, "orders", pages) }()

	for page := 1; ; page++ {
		began := time.Now()
		resp, err := s.api.ListOrders(ctx, page, pageSize)
		s.metrics.RecordProviderFetch(ctx, providerID, "orders", outcome(err), time.Since(began))
		if err != nil {
			return err
		}
		pages++

		reachedStart := false
		for _, order := range resp.Data {
			created := order.Attributes.CreatedAt.UTC()
			if created.Before(start) {
				reachedStart = true
				continue
			}
			if !created.Before(endExclusive) || order.Attributes.Status != "paid" {
				continue
			}
			t := dayFor(totals, created)
			t.revenue += float64(order.Attributes.Total) / 100
			t.purchases++
		}

		if reachedStart || lastPage(resp.Meta, page) {
			return nil
		}
	}
}

// collectInvoices adds paid renewal invoices to both revenue and renewal
// revenue. Initial invoices are already counted as orders: an invoice is
// initial when its billing reason says so or when it is tied to an order.
func (s *service) collectInvoices(ctx context.Context, start, endExclusive time.Time, totals map[string]*dayTotals) error {
	pages := int64(0)
	defer func() { s.metrics.RecordProviderPages(ctx, providerID, "subscription-invoices", pages) }()

	for page := 1; ; page++ {
		began := time.Now()
		resp, err := s.api.ListSubscriptionInvoices(ctx, page, pageSize)
		s.metrics.RecordProviderFetch(ctx, providerID, "subscription-invoices", outcome(err), time.Since(began))
		if err != nil {
			return err
		}
		pages++

		reachedStart := false
		for _, invoice := range resp.Data {
			attrs := invoice.Attributes
			created := attrs.CreatedAt.UTC()
			if created.Before(start) {
				reachedStart = true
				continue
			}
			if !created.Before(endExclusive) || attrs.Status != "paid" {
				continue
			}
			if attrs.BillingReason == "initial" || attrs.OrderID != 0 {
				continue
			}
			t := dayFor(totals, created)
			amount := float64(attrs.Total) / 100
			t.revenue += amount
			t.renewalRevenue += amount
		}

		if reachedStart || lastPage(resp.Meta, page) {
			return nil
		}
	}
}

// collectSnapshot fetches the full customer and active subscription lists and
// derives the MRR and active customer snapshot. Active customers counts
// subscriptions, not distinct customers, so one customer with two active
// subscriptions counts twice.
func (s *service) collectSnapshot(ctx context.Context) (float64, int, error) {
	mrrByCustomer := make(map[int64]int64)
	customerPages := int64(0)
	for page := 1; ; page++ {
		began := time.Now()
		resp, err := s.api.ListCustomers(ctx, page, pageSize)
		s.metrics.RecordProviderFetch(ctx, providerID, "customers", outcome(err), time.Since(began))
		if err != nil {
			return 0, 0, err
		}
		customerPages++

		for _, customer := range resp.Data {
			id, parseErr := strconv.ParseInt(customer.ID, 10, 64)
			if parseErr != nil {
				s.log.Warn("skipping customer with non-numeric id", zap.String("id", customer.ID))
				continue
			}
			mrrByCustomer[id] = customer.Attributes.MRR
		}
		if lastPage(resp.Meta, page) {
			break
		}
	}
	s.metrics.RecordProviderPages(ctx, providerID, "customers", customerPages)

	activeCustomerIDs := make(map[int64]struct{})
	activeSubscriptions := 0
	subscriptionPages := int64(0)
	for page := 1; ; page++ {
		began := time.Now()
		resp, err := s.api.ListSubscriptions(ctx, "active", page, pageSize)
		s.metrics.RecordProviderFetch(ctx, providerID, "subscriptions", outcome(err), time.Since(began))
		if err != nil {
			return 0, 0, err
		}
		subscriptionPages++

		for _, sub := range resp.Data {
			activeSubscriptions++
			activeCustomerIDs[sub.Attributes.CustomerID] = struct{}{}
		}
		if lastPage(resp.Meta, page) {
			break
		}
	}
	s.metrics.RecordProviderPages(ctx, providerID, "subscriptions", subscriptionPages)

	var mrrCents int64
	for id := range activeCustomerIDs {
		mrrCents += mrrByCustomer[id]
	}
	return float64(mrrCents) / 100, activeSubscriptions, nil
}

func dayFor(totals map[string]*dayTotals, ts time.Time) *dayTotals {
	key := ts.Format(time.DateOnly)
	t, ok := totals[key]
	if !ok {
		t = &dayTotals{}
		totals[key] = t
	}
	return t
}

func dateOnly(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}

func lastPage(meta lemonsqueezy.Meta, current int) bool {
	return meta.Page.LastPage <= 0 || current >= meta.Page.LastPage
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
