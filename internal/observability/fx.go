package observability

import (
	"github.com/smallbiznis/agrimarket/internal/observability/logger"
	"github.com/smallbiznis/agrimarket/internal/observability/metrics"
	"github.com/smallbiznis/agrimarket/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// Module wires logging, tracing and metrics from the application config.
// The tracer provider and scheduler metrics are forced at startup so that
// exporters and collectors exist before the first request or job run.
var Module = fx.Module("observability",
	fx.Provide(
		loggerConfig,
		logger.New,
		tracingConfig,
		tracing.NewProvider,
		metricsConfig,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
	fx.Invoke(
		func(*sdktrace.TracerProvider) {},
		metrics.SchedulerWithConfig,
	),
)
