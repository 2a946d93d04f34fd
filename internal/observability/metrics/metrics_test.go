package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("machine_type", "baler"),
		attribute.String("farmer_id", "456"),
		attribute.String("status", "paid"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("machine_type"), attrs[0].Key)
	assert.Equal(t, attribute.Key("status"), attrs[1].Key)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordBookingCreated(context.Background(), "baler", "daily")
		m.RecordSettlement(context.Background(), "paid")
		m.RecordQuarantined(context.Background(), "machine_bookings", "invalid_status")
	})
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordBulkPurchase(context.Background(), 125000)
		m.RecordRateLimitDenied(context.Background(), "bookings.create", "exhausted")
	})
}
