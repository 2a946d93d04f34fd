package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	AuthJWTSecret string
	AuthJWTIssuer string

	LogLevel  string
	LogFormat string

	OTLPEndpoint      string
	OTLPProtocol      string
	OtelEnabled       bool
	OtelSamplingRatio float64

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// PayoutAccountKey is a hex encoded 32 byte key sealing farmer payout accounts.
	PayoutAccountKey string

	BookingRatePerMinute float64
	BookingBurst         int

	SchedulerEnabled  bool
	SchedulerInterval time.Duration

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:              getenv("APP_SERVICE", "agrimarket"),
		AppVersion:           getenv("APP_VERSION", "0.1.0"),
		Environment:          getenv("ENVIRONMENT", "development"),
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		AuthJWTSecret:        strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),
		AuthJWTIssuer:        strings.TrimSpace(getenv("AUTH_JWT_ISSUER", "")),
		LogLevel:             strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
		OTLPEndpoint:         strings.TrimSpace(getenv("OTLP_ENDPOINT", "localhost:4317")),
		OTLPProtocol:         strings.ToLower(strings.TrimSpace(getenv("OTLP_PROTOCOL", "grpc"))),
		OtelEnabled:          getenvBool("OTEL_ENABLED", true),
		RedisAddr:            strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:        getenv("REDIS_PASSWORD", ""),
		RedisDB:              getenvInt("REDIS_DB", 0),
		PayoutAccountKey:     strings.TrimSpace(getenv("PAYOUT_ACCOUNT_KEY", "")),
		BookingRatePerMinute: getenvFloat("BOOKING_RATE_PER_MINUTE", 0.2),
		BookingBurst:         getenvInt("BOOKING_BURST", 5),
		SchedulerEnabled:     getenvBool("SCHEDULER_ENABLED", true),
		SchedulerInterval:    getenvDuration("SCHEDULER_INTERVAL", 5*time.Minute),
		DBType:               getenv("DATABASE_TYPE", "postgres"),
		DBHost:               getenv("DATABASE_HOST", "localhost"),
		DBPort:               getenv("DATABASE_PORT", "5432"),
		DBName:               getenv("DATABASE_NAME", "agrimarket"),
		DBUser:               getenv("DATABASE_USER", "postgres"),
		DBPassword:           getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:            getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:        getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:        getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime:    getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime:    getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),
	}

	// Production ships json logs to the collector and samples traces; every
	// other environment keeps console logs and full traces for local reading.
	format, ratio := "console", 1.0
	if cfg.IsProduction() {
		format, ratio = "json", 0.1
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", format)))
	cfg.OtelSamplingRatio = getenvFloat("OTEL_SAMPLING_RATIO", ratio)
	return cfg
}

// IsProduction reports whether the process runs in the production environment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
