package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	providerFetches  metric.Int64Counter
	providerPages    metric.Int64Counter
	fetchDuration    metric.Float64Histogram
	cacheLookups     metric.Int64Counter
	mockFallbacks    metric.Int64Counter
	snapshotFallback metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "revboard"
	}
	meter := provider.Meter(name)

	providerFetches, err := meter.Int64Counter("revboard_provider_fetches_total")
	if err != nil {
		return nil, err
	}
	providerPages, err := meter.Int64Counter("revboard_provider_pages_total")
	if err != nil {
		return nil, err
	}
	fetchDuration, err := meter.Float64Histogram("revboard_provider_fetch_duration_seconds")
	if err != nil {
		return nil, err
	}
	cacheLookups, err := meter.Int64Counter("revboard_series_cache_lookups_total")
	if err != nil {
		return nil, err
	}
	mockFallbacks, err := meter.Int64Counter("revboard_mock_fallbacks_total")
	if err != nil {
		return nil, err
	}
	snapshotFallback, err := meter.Int64Counter("revboard_snapshot_fallbacks_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		providerFetches:  providerFetches,
		providerPages:    providerPages,
		fetchDuration:    fetchDuration,
		cacheLookups:     cacheLookups,
		mockFallbacks:    mockFallbacks,
		snapshotFallback: snapshotFallback,
	}, nil
}

// RecordProviderFetch counts one provider fetch and its outcome.
func (m *Metrics) RecordProviderFetch(ctx context.Context, provider, resource, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("provider", strings.TrimSpace(provider)),
		attribute.String("resource", strings.TrimSpace(resource)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.providerFetches.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.fetchDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

// RecordProviderPages counts pages consumed during a paginated fetch.
func (m *Metrics) RecordProviderPages(ctx context.Context, provider, resource string, pages int64) {
	if m == nil || pages <= 0 {
		return
	}
	attrs := FilterAttributes(
		attribute.String("provider", strings.TrimSpace(provider)),
		attribute.String("resource", strings.TrimSpace(resource)),
	)
	m.providerPages.Add(ctx, pages, metric.WithAttributes(attrs...))
}

// RecordCacheLookup counts a series cache hit or miss.
func (m *Metrics) RecordCacheLookup(ctx context.Context, backend string, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	attrs := FilterAttributes(
		attribute.String("backend", strings.TrimSpace(backend)),
		attribute.String("outcome", outcome),
	)
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordMockFallback counts analytics mock substitutions.
func (m *Metrics) RecordMockFallback(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.mockFallbacks.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSnapshotFallback counts stale-snapshot responses.
func (m *Metrics) RecordSnapshotFallback(ctx context.Context) {
	if m == nil {
		return
	}
	m.snapshotFallback.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"provider":    {},
	"resource":    {},
	"outcome":     {},
	"backend":     {},
	"reason":      {},
	"endpoint":    {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
