package domain

import (
	"context"
	"time"

	dashboard "github.com/smallbiznis/revboard/internal/dashboard/domain"
	"gorm.io/datatypes"
)

// DaySnapshot is the persisted last-known-good daily record, used to serve
// stale data when both providers fail.
type DaySnapshot struct {
	ID               int64             `gorm:"primaryKey"`
	Date             string            `gorm:"size:10;uniqueIndex"`
	Visitors         int               `gorm:"not null;default:0"`
	PricingViews     int               `gorm:"not null;default:0"`
	Checkouts        int               `gorm:"not null;default:0"`
	Purchases        int               `gorm:"not null;default:0"`
	ReferringDomains datatypes.JSONMap `gorm:"type:json"`
	Revenue          float64           `gorm:"not null;default:0"`
	RenewalRevenue   float64           `gorm:"not null;default:0"`
	MRR              float64           `gorm:"not null;default:0"`
	ActiveCustomers  int               `gorm:"not null;default:0"`
	ChurnRate        float64           `gorm:"not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (DaySnapshot) TableName() string { return "day_snapshots" }

// Service persists and recalls the canonical daily series.
type Service interface {
	UpsertDays(ctx context.Context, days []dashboard.DayMetrics) error
	RangeDays(ctx context.Context, start, end time.Time) ([]dashboard.DayMetrics, error)
}
