package observability

import (
	"strings"

	"github.com/smallbiznis/agrimarket/internal/config"
	"github.com/smallbiznis/agrimarket/internal/observability/logger"
	"github.com/smallbiznis/agrimarket/internal/observability/metrics"
	"github.com/smallbiznis/agrimarket/internal/observability/tracing"
)

const defaultServiceName = "agrimarket"

func serviceName(cfg config.Config) string {
	if name := strings.TrimSpace(cfg.AppName); name != "" {
		return name
	}
	return defaultServiceName
}

// verbose turns on debug output and error stacks. Local, dev and test
// environments are always verbose.
func verbose(cfg config.Config) bool {
	if cfg.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Environment)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func loggerConfig(cfg config.Config) logger.Config {
	debug := verbose(cfg)
	return logger.Config{
		ServiceName:         serviceName(cfg),
		Environment:         cfg.Environment,
		Version:             cfg.AppVersion,
		Level:               cfg.LogLevel,
		Format:              cfg.LogFormat,
		Debug:               debug,
		IncludeCaller:       true,
		IncludeStackOnError: debug,
	}
}

func tracingConfig(cfg config.Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.OtelEnabled,
		ServiceName:      serviceName(cfg),
		ServiceVersion:   cfg.AppVersion,
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.OTLPEndpoint,
		ExporterProtocol: cfg.OTLPProtocol,
		SamplingRatio:    cfg.OtelSamplingRatio,
	}
}

func metricsConfig(cfg config.Config) metrics.Config {
	return metrics.Config{
		Enabled:          cfg.OtelEnabled,
		ExporterEndpoint: cfg.OTLPEndpoint,
		ExporterProtocol: cfg.OTLPProtocol,
		ServiceName:      serviceName(cfg),
		Environment:      cfg.Environment,
	}
}
