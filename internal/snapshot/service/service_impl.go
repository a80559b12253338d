package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	dashboard "github.com/smallbiznis/revboard/internal/dashboard/domain"
	"github.com/smallbiznis/revboard/internal/snapshot/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

// NewService constructs the daily snapshot store.
func NewService(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("snapshot.service"),
		genID: p.GenID,
	}
}

// Migrate creates the snapshot table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.DaySnapshot{})
}

// UpsertDays writes one row per day, replacing the previous value for dates
// already present.
func (s *service) UpsertDays(ctx context.Context, days []dashboard.DayMetrics) error {
	if len(days) == 0 {
		return nil
	}

	rows := make([]domain.DaySnapshot, 0, len(days))
	for _, day := range days {
		rows = append(rows, domain.DaySnapshot{
			ID:               s.genID.Generate().Int64(),
			Date:             day.Date,
			Visitors:         day.Visitors,
			PricingViews:     day.PricingViews,
			Checkouts:        day.Checkouts,
			Purchases:        day.Purchases,
			ReferringDomains: toJSONMap(day.ReferringDomains),
			Revenue:          day.Revenue,
			RenewalRevenue:   day.RenewalRevenue,
			MRR:              day.MRR,
			ActiveCustomers:  day.ActiveCustomers,
			ChurnRate:        day.ChurnRate,
		})
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"visitors", "pricing_views", "checkouts", "purchases",
				"referring_domains", "revenue", "renewal_revenue",
				"mrr", "active_customers", "churn_rate", "updated_at",
			}),
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert day snapshots: %w", err)
	}
	return nil
}

// RangeDays returns the persisted records inside [start, end], ascending.
// Days never snapshotted are absent, not zero-filled.
func (s *service) RangeDays(ctx context.Context, start, end time.Time) ([]dashboard.DayMetrics, error) {
	var rows []domain.DaySnapshot
	err := s.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", start.UTC().Format(time.DateOnly), end.UTC().Format(time.DateOnly)).
		Order("date asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("range day snapshots: %w", err)
	}

	days := make([]dashboard.DayMetrics, 0, len(rows))
	for _, row := range rows {
		days = append(days, dashboard.DayMetrics{
			Date:             row.Date,
			Visitors:         row.Visitors,
			PricingViews:     row.PricingViews,
			Checkouts:        row.Checkouts,
			Purchases:        row.Purchases,
			ReferringDomains: fromJSONMap(row.ReferringDomains),
			Revenue:          row.Revenue,
			RenewalRevenue:   row.RenewalRevenue,
			MRR:              row.MRR,
			ActiveCustomers:  row.ActiveCustomers,
			ChurnRate:        row.ChurnRate,
		})
	}
	return days, nil
}

func toJSONMap(m map[string]int) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for key, value := range m {
		out[key] = value
	}
	return out
}

// fromJSONMap tolerates the numeric types the JSON column round-trips through.
func fromJSONMap(m datatypes.JSONMap) map[string]int {
	out := make(map[string]int, len(m))
	for key, value := range m {
		switch n := value.(type) {
		case float64:
			out[key] = int(n)
		case int64:
			out[key] = int(n)
		case int:
			out[key] = n
		}
	}
	return out
}
