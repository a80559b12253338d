package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	dashboard "github.com/smallbiznis/revboard/internal/dashboard/domain"
	"github.com/smallbiznis/revboard/pkg/db"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) *service {
	t.Helper()
	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return &service{db: conn, log: zap.NewNop(), genID: node}
}

func mustDay(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		t.Fatalf("parse %s: %v", value, err)
	}
	return parsed
}

func TestUpsertAndRangeDays(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	err := svc.UpsertDays(ctx, []dashboard.DayMetrics{
		{Date: "2024-03-01", Visitors: 100, Revenue: 50, ReferringDomains: map[string]int{"google.com": 60}},
		{Date: "2024-03-02", Visitors: 200, Revenue: 100, RenewalRevenue: 20},
		{Date: "2024-03-10", Visitors: 10},
	})
	assert.NoError(t, err)

	days, err := svc.RangeDays(ctx, mustDay(t, "2024-03-01"), mustDay(t, "2024-03-05"))
	assert.NoError(t, err)
	assert.Len(t, days, 2)
	assert.Equal(t, "2024-03-01", days[0].Date)
	assert.Equal(t, "2024-03-02", days[1].Date)
	assert.Equal(t, 100, days[0].Visitors)
	assert.Equal(t, map[string]int{"google.com": 60}, days[0].ReferringDomains)
	assert.Equal(t, 20.0, days[1].RenewalRevenue)
}

func TestUpsertReplacesExistingDay(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, svc.UpsertDays(ctx, []dashboard.DayMetrics{
		{Date: "2024-03-01", Visitors: 100, Revenue: 50},
	}))
	assert.NoError(t, svc.UpsertDays(ctx, []dashboard.DayMetrics{
		{Date: "2024-03-01", Visitors: 150, Revenue: 75, ReferringDomains: map[string]int{"x.com": 30}},
	}))

	days, err := svc.RangeDays(ctx, mustDay(t, "2024-03-01"), mustDay(t, "2024-03-01"))
	assert.NoError(t, err)
	assert.Len(t, days, 1)
	assert.Equal(t, 150, days[0].Visitors)
	assert.Equal(t, 75.0, days[0].Revenue)
	assert.Equal(t, map[string]int{"x.com": 30}, days[0].ReferringDomains)
}

func TestUpsertNoDaysIsNoop(t *testing.T) {
	svc := newTestService(t)
	assert.NoError(t, svc.UpsertDays(context.Background(), nil))
}
