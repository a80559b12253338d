package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/revboard/internal/clock"
	"github.com/smallbiznis/revboard/internal/config"
	dashboarddomain "github.com/smallbiznis/revboard/internal/dashboard/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type dashboardServiceStub struct {
	lastReq dashboarddomain.GetMetricsRequest
	resp    dashboarddomain.GetMetricsResponse
	err     error
}

func (s *dashboardServiceStub) GetMetrics(_ context.Context, req dashboarddomain.GetMetricsRequest) (dashboarddomain.GetMetricsResponse, error) {
	s.lastReq = req
	return s.resp, s.err
}

func newTestServer(stub *dashboardServiceStub) *Server {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:       engine,
		dashboardSvc: stub,
		holder:       config.NewStaticDashboardConfigHolder(config.DefaultDashboardConfig()),
		clock:        clock.NewFakeClock(time.Date(2024, 3, 30, 15, 4, 5, 0, time.UTC)),
		log:          zap.NewNop(),
	}
	srv.registerAPIRoutes()
	return srv
}

func doRequest(srv *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	srv.engine.ServeHTTP(rec, req)
	return rec
}

func TestGetDashboardMetricsSimpleRange(t *testing.T) {
	stub := &dashboardServiceStub{
		resp: dashboarddomain.GetMetricsResponse{
			Start:       "2024-03-01",
			End:         "2024-03-30",
			Granularity: dashboarddomain.GranularityDay,
			Records:     []dashboarddomain.MetricRecord{},
		},
	}
	srv := newTestServer(stub)

	rec := doRequest(srv, "/v1/dashboard/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Simple mode is a trailing 30 day window snapped to UTC midnight.
	assert.Equal(t, "2024-03-30", stub.lastReq.End.Format(time.DateOnly))
	assert.Equal(t, "2024-03-01", stub.lastReq.Start.Format(time.DateOnly))
	assert.Equal(t, dashboarddomain.GranularityDay, stub.lastReq.Granularity)
}

func TestGetDashboardMetricsCustomRange(t *testing.T) {
	stub := &dashboardServiceStub{}
	srv := newTestServer(stub)

	rec := doRequest(srv, "/v1/dashboard/metrics?range=custom&start=2024-01-01&end=2024-01-31&granularity=week&numerator=revenue&denominator=purchases")
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "2024-01-01", stub.lastReq.Start.Format(time.DateOnly))
	assert.Equal(t, "2024-01-31", stub.lastReq.End.Format(time.DateOnly))
	assert.Equal(t, dashboarddomain.GranularityWeek, stub.lastReq.Granularity)
	assert.Equal(t, dashboarddomain.RateFieldRevenue, stub.lastReq.CustomRate.Numerator)
	assert.Equal(t, dashboarddomain.RateFieldPurchases, stub.lastReq.CustomRate.Denominator)
}

func TestGetDashboardMetricsCustomRangeRequiresDates(t *testing.T) {
	srv := newTestServer(&dashboardServiceStub{})

	rec := doRequest(srv, "/v1/dashboard/metrics?range=custom&start=2024-01-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body.Error.Type)
}

func TestGetDashboardMetricsRejectsBadGranularity(t *testing.T) {
	srv := newTestServer(&dashboardServiceStub{})

	rec := doRequest(srv, "/v1/dashboard/metrics?granularity=quarter")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDashboardMetricsRejectsUnknownRateField(t *testing.T) {
	srv := newTestServer(&dashboardServiceStub{})

	rec := doRequest(srv, "/v1/dashboard/metrics?numerator=profit")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDashboardMetricsRejectsReversedCustomRange(t *testing.T) {
	srv := newTestServer(&dashboardServiceStub{})

	rec := doRequest(srv, "/v1/dashboard/metrics?range=custom&start=2024-02-01&end=2024-01-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDashboardConfig(t *testing.T) {
	srv := newTestServer(&dashboardServiceStub{})

	rec := doRequest(srv, "/v1/dashboard/config")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "funnelEvents")
	assert.Contains(t, body, "defaultRate")
}
