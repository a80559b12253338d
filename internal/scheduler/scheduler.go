package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/revboard/internal/clock"
	dashboarddomain "github.com/smallbiznis/revboard/internal/dashboard/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependencies")

type Params struct {
	fx.In

	Dashboard dashboarddomain.Service
	Clock     clock.Clock
	Log       *zap.Logger
	Config    Config `optional:"true"`
}

// Scheduler periodically rebuilds the trailing metrics window so the series
// cache stays warm and the snapshot store keeps a recent last-known-good
// copy even when the dashboard sees no traffic.
type Scheduler struct {
	dashboard dashboarddomain.Service
	clock     clock.Clock
	log       *zap.Logger
	cfg       Config
}

func New(p Params) (*Scheduler, error) {
	if p.Dashboard == nil || p.Clock == nil || p.Log == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		dashboard: p.Dashboard,
		clock:     p.Clock,
		log:       p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:       p.Config.withDefaults(),
	}, nil
}

// RunOnce refreshes the trailing window once.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := s.clock.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -(s.cfg.WindowDays - 1))

	resp, err := s.dashboard.GetMetrics(ctx, dashboarddomain.GetMetricsRequest{
		Start:       start,
		End:         end,
		Granularity: dashboarddomain.GranularityDay,
	})
	if err != nil {
		s.log.Error("refresh failed", zap.Error(err))
		return err
	}

	s.log.Info("refreshed metrics window",
		zap.String("start", resp.Start),
		zap.String("end", resp.End),
		zap.Int("records", len(resp.Records)),
		zap.Bool("stale", resp.Stale),
	)
	return nil
}

// RunForever refreshes on the configured interval until ctx is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	if err := s.RunOnce(ctx); err != nil {
		s.log.Warn("initial refresh failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.log.Warn("scheduled refresh failed", zap.Error(err))
			}
		}
	}
}
