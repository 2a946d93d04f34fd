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

// Metrics exposes marketplace instruments.
type Metrics struct {
	bookingsCreated    metric.Int64Counter
	bulkPurchases      metric.Int64Counter
	settlements        metric.Int64Counter
	quarantinedRows    metric.Int64Counter
	excludedPayments   metric.Int64Counter
	rateLimitAllowed   metric.Int64Counter
	rateLimitDenied    metric.Int64Counter
	bulkPurchaseAmount metric.Float64Histogram
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
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

// New configures the domain instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "agrimarket"
	}
	meter := provider.Meter(name)

	m := &Metrics{}
	var err error
	counters := []struct {
		target *metric.Int64Counter
		name   string
	}{
		{&m.bookingsCreated, "agrimarket_bookings_created_total"},
		{&m.bulkPurchases, "agrimarket_bulk_purchases_total"},
		{&m.settlements, "agrimarket_payment_settlements_total"},
		{&m.quarantinedRows, "agrimarket_quarantined_rows_total"},
		{&m.excludedPayments, "agrimarket_payment_join_exclusions_total"},
		{&m.rateLimitAllowed, "agrimarket_rate_limit_allowed_total"},
		{&m.rateLimitDenied, "agrimarket_rate_limit_denied_total"},
	}
	for _, c := range counters {
		if *c.target, err = meter.Int64Counter(c.name); err != nil {
			return nil, err
		}
	}
	m.bulkPurchaseAmount, err = meter.Float64Histogram("agrimarket_bulk_purchase_amount")
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) RecordBookingCreated(ctx context.Context, machineType, pricingMode string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("machine_type", strings.TrimSpace(machineType)),
		attribute.String("pricing_mode", strings.TrimSpace(pricingMode)),
	)
	m.bookingsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordBulkPurchase(ctx context.Context, totalAmount float64) {
	if m == nil {
		return
	}
	m.bulkPurchases.Add(ctx, 1)
	m.bulkPurchaseAmount.Record(ctx, totalAmount)
}

// RecordSettlement counts a distribution moving to status.
func (m *Metrics) RecordSettlement(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.settlements.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordQuarantined counts a row dropped at the read boundary.
func (m *Metrics) RecordQuarantined(ctx context.Context, table, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("table", strings.TrimSpace(table)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.quarantinedRows.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordPaymentExcluded(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.excludedPayments.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
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

// Farmer, listing and profile identifiers are never labels.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"machine_type": {},
	"pricing_mode": {},
	"status":       {},
	"table":        {},
	"reason":       {},
	"endpoint":     {},
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
