package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/revboard/internal/analytics"
	"github.com/smallbiznis/revboard/internal/billingledger"
	"github.com/smallbiznis/revboard/internal/cache"
	"github.com/smallbiznis/revboard/internal/clock"
	"github.com/smallbiznis/revboard/internal/config"
	"github.com/smallbiznis/revboard/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/revboard/internal/dashboard/domain"
	"github.com/smallbiznis/revboard/internal/observability"
	obsmiddleware "github.com/smallbiznis/revboard/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/revboard/internal/observability/metrics"
	obstracing "github.com/smallbiznis/revboard/internal/observability/tracing"
	"github.com/smallbiznis/revboard/internal/providers"
	"github.com/smallbiznis/revboard/internal/snapshot"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	config.Module,
	clock.Module,
	cache.Module,
	providers.Module,
	billingledger.Module,
	analytics.Module,
	snapshot.Module,
	dashboard.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	dashboardSvc dashboarddomain.Service
	holder       *config.DashboardConfigHolder
	clock        clock.Clock
	log          *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DashboardSvc dashboarddomain.Service
	Holder       *config.DashboardConfigHolder
	Clock        clock.Clock
	Log          *zap.Logger
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		dashboardSvc: p.DashboardSvc,
		holder:       p.Holder,
		clock:        p.Clock,
		log:          p.Log.Named("server"),
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.GET("/dashboard/metrics", s.GetDashboardMetrics)
	v1.GET("/dashboard/config", s.GetDashboardConfig)
}
