package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const dateOnlyLayout = "2006-01-02"

// parseOptionalDate reads a YYYY-MM-DD query parameter. Returns false when
// the parameter is absent.
func parseOptionalDate(c *gin.Context, name string) (time.Time, bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, false, nil
	}
	parsed, err := time.ParseInLocation(dateOnlyLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, false, newValidationError(name, "invalid_date", "expected YYYY-MM-DD")
	}
	return parsed, true, nil
}
