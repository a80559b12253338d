package cache

import (
	"context"
	"time"

	"github.com/smallbiznis/revboard/internal/dashboard/domain"
)

// SeriesCache stores computed metric series keyed by request fingerprint.
// Implementations are best-effort: a broken backend behaves like a miss and
// never fails the request.
type SeriesCache interface {
	Get(ctx context.Context, fingerprint string) ([]domain.MetricRecord, bool)
	Put(ctx context.Context, fingerprint string, records []domain.MetricRecord)
	Backend() string
}

// MemorySeriesCache keeps series in process memory with a TTL.
type MemorySeriesCache struct {
	inner *TTLCache[string, []domain.MetricRecord]
}

func NewMemorySeriesCache(ttl time.Duration) *MemorySeriesCache {
	return &MemorySeriesCache{inner: NewTTLCache[string, []domain.MetricRecord](ttl)}
}

func (c *MemorySeriesCache) Get(_ context.Context, fingerprint string) ([]domain.MetricRecord, bool) {
	return c.inner.Get(fingerprint)
}

func (c *MemorySeriesCache) Put(_ context.Context, fingerprint string, records []domain.MetricRecord) {
	c.inner.Set(fingerprint, records)
}

func (c *MemorySeriesCache) Backend() string { return "memory" }
