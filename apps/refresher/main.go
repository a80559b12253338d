package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/revboard/internal/analytics"
	"github.com/smallbiznis/revboard/internal/billingledger"
	"github.com/smallbiznis/revboard/internal/cache"
	"github.com/smallbiznis/revboard/internal/clock"
	"github.com/smallbiznis/revboard/internal/config"
	"github.com/smallbiznis/revboard/internal/dashboard"
	"github.com/smallbiznis/revboard/internal/observability"
	"github.com/smallbiznis/revboard/internal/providers"
	"github.com/smallbiznis/revboard/internal/scheduler"
	"github.com/smallbiznis/revboard/internal/snapshot"
	"github.com/smallbiznis/revboard/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		cache.Module,
		providers.Module,
		billingledger.Module,
		analytics.Module,
		snapshot.Module,
		dashboard.Module,
		scheduler.Module,

		// No server module.
		fx.Invoke(StartScheduler),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func StartScheduler(lc fx.Lifecycle, s *scheduler.Scheduler) {
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.RunForever(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}
