package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/smallbiznis/revboard/internal/dashboard/domain"
)

const fingerprintPrefix = "revboard:series:"

// Fingerprint derives the cache key for a metrics request. Dates are snapped
// to their UTC day and the granularity lowercased, so equivalent requests
// share an entry regardless of how the caller spelled them.
func Fingerprint(req domain.GetMetricsRequest) string {
	parts := []string{
		req.Start.UTC().Format(time.DateOnly),
		req.End.UTC().Format(time.DateOnly),
		strings.ToLower(string(req.Granularity)),
		string(req.CustomRate.Numerator),
		string(req.CustomRate.Denominator),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fingerprintPrefix + hex.EncodeToString(sum[:16])
}
