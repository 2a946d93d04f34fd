package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDevelopmentDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OTEL_SAMPLING_RATIO", "")

	cfg := Load()

	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 1.0, cfg.OtelSamplingRatio)
}

func TestLoadProductionDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("OTEL_SAMPLING_RATIO", "")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 0.1, cfg.OtelSamplingRatio)
}

func TestLoadExplicitOverridesWinInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_FORMAT", "Console")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("OTLP_PROTOCOL", "HTTP/protobuf")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.5")
	t.Setenv("OTEL_ENABLED", "off")

	cfg := Load()

	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http/protobuf", cfg.OTLPProtocol)
	assert.Equal(t, 0.5, cfg.OtelSamplingRatio)
	assert.False(t, cfg.OtelEnabled)
}
