package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dashboarddomain "github.com/smallbiznis/revboard/internal/dashboard/domain"
)

const simpleRangeDays = 30

// GetDashboardMetrics serves the merged, bucketed, rated series.
//
// Query parameters: range (simple|custom, default simple), start and end
// (YYYY-MM-DD, required for custom), granularity (day|week|month, default
// day), numerator and denominator (custom rate fields, defaulted from the
// dashboard config when omitted).
func (s *Server) GetDashboardMetrics(c *gin.Context) {
	req, err := s.buildMetricsRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.dashboardSvc.GetMetrics(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetDashboardConfig exposes the current hot-reloadable dashboard settings.
func (s *Server) GetDashboardConfig(c *gin.Context) {
	cfg := s.holder.Get()
	c.JSON(http.StatusOK, gin.H{
		"funnelEvents": gin.H{
			"pageView":      cfg.FunnelEvents.PageView,
			"pricingView":   cfg.FunnelEvents.PricingView,
			"checkoutClick": cfg.FunnelEvents.CheckoutClick,
			"purchase":      cfg.FunnelEvents.Purchase,
		},
		"referrerLimit": cfg.ReferrerLimit,
		"defaultRate": gin.H{
			"numerator":   cfg.DefaultRate.Numerator,
			"denominator": cfg.DefaultRate.Denominator,
		},
	})
}

func (s *Server) buildMetricsRequest(c *gin.Context) (dashboarddomain.GetMetricsRequest, error) {
	var req dashboarddomain.GetMetricsRequest

	granularity, err := dashboarddomain.ParseGranularity(c.Query("granularity"))
	if err != nil {
		return req, err
	}
	req.Granularity = granularity

	if numerator := strings.TrimSpace(c.Query("numerator")); numerator != "" {
		field, err := dashboarddomain.ParseRateField(numerator)
		if err != nil {
			return req, err
		}
		req.CustomRate.Numerator = field
	}
	if denominator := strings.TrimSpace(c.Query("denominator")); denominator != "" {
		field, err := dashboarddomain.ParseRateField(denominator)
		if err != nil {
			return req, err
		}
		req.CustomRate.Denominator = field
	}

	start, hasStart, err := parseOptionalDate(c, "start")
	if err != nil {
		return req, err
	}
	end, hasEnd, err := parseOptionalDate(c, "end")
	if err != nil {
		return req, err
	}

	rangeMode := strings.ToLower(strings.TrimSpace(c.DefaultQuery("range", "simple")))
	switch rangeMode {
	case "simple":
		// Trailing window snapped to UTC midnight, so identical simple-mode
		// requests within a day share a cache fingerprint.
		now := s.clock.Now().UTC()
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		start = end.AddDate(0, 0, -(simpleRangeDays - 1))
	case "custom":
		if !hasStart || !hasEnd {
			return req, newValidationError("range", "missing_dates", "custom range requires start and end")
		}
		if start.After(end) {
			return req, dashboarddomain.ErrInvalidDateRange
		}
	default:
		return req, newValidationError("range", "invalid_range_mode", "range must be simple or custom")
	}

	req.Start = start
	req.End = end
	return req, nil
}
