package metrics

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "revboard-test"}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	if m == nil {
		t.Fatal("expected metrics instance")
	}
}

func TestFilterAttributesDropsUnknownKeys(t *testing.T) {
	filtered := FilterAttributes(
		attribute.String("provider", "lemonsqueezy"),
		attribute.String("fingerprint", "abc"),
	)
	if len(filtered) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(filtered))
	}
	if filtered[0].Key != "provider" {
		t.Fatalf("expected provider label, got %s", filtered[0].Key)
	}
}
