package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RateConfig is the hourly and daily price of one machine type.
type RateConfig struct {
	Hourly string `mapstructure:"hourly"`
	Daily  string `mapstructure:"daily"`
}

// RatesConfig is the machine rate table. Machines without an entry fall back
// to Default.
type RatesConfig struct {
	Default  RateConfig            `mapstructure:"default"`
	Machines map[string]RateConfig `mapstructure:"machines"`
}

func DefaultRatesConfig() RatesConfig {
	return RatesConfig{
		Default: RateConfig{Hourly: "800", Daily: "5000"},
	}
}

// Lookup returns the rate configured for machineType or the default entry.
func (c RatesConfig) Lookup(machineType string) RateConfig {
	key := strings.ToLower(strings.TrimSpace(machineType))
	if rate, ok := c.Machines[key]; ok {
		return rate
	}
	return c.Default
}

// Parse converts both rates to decimals and requires them to be positive.
func (r RateConfig) Parse() (hourly, daily decimal.Decimal, err error) {
	hourly, err = decimal.NewFromString(strings.TrimSpace(r.Hourly))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("hourly rate %q: %w", r.Hourly, err)
	}
	daily, err = decimal.NewFromString(strings.TrimSpace(r.Daily))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("daily rate %q: %w", r.Daily, err)
	}
	if !hourly.IsPositive() || !daily.IsPositive() {
		return decimal.Zero, decimal.Zero, errors.New("rates must be positive")
	}
	return hourly, daily, nil
}

type RatesHolder struct {
	current atomic.Value // holds RatesConfig
}

// NewRatesHolder loads rates.yml and keeps the table current while the file
// changes. A missing file falls back to DefaultRatesConfig.
func NewRatesHolder(log *zap.Logger) (*RatesHolder, error) {
	v := viper.New()

	v.SetConfigName("rates")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/agrimarket")
	v.AddConfigPath(".")

	v.SetEnvPrefix("AGRIMARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRatesConfig()
	v.SetDefault("rates.default.hourly", defaults.Default.Hourly)
	v.SetDefault("rates.default.daily", defaults.Default.Daily)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg RatesConfig
	if err := v.UnmarshalKey("rates", &cfg); err != nil {
		return nil, err
	}
	if err := ValidateRates(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticRates(cfg)
	log = log.Named("rates.config")

	if fileLoaded {
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated RatesConfig
			if err := v.UnmarshalKey("rates", &updated); err != nil {
				log.Warn("rate table reload failed", zap.Error(err))
				return
			}
			if err := ValidateRates(updated); err != nil {
				log.Warn("invalid rate table ignored", zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("rate table reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}

	return holder, nil
}

// NewStaticRates returns a holder that never reloads.
func NewStaticRates(cfg RatesConfig) *RatesHolder {
	holder := &RatesHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *RatesHolder) Get() RatesConfig {
	return h.current.Load().(RatesConfig)
}

func ValidateRates(cfg RatesConfig) error {
	if _, _, err := cfg.Default.Parse(); err != nil {
		return fmt.Errorf("rates.default: %w", err)
	}
	for machine, rate := range cfg.Machines {
		if _, _, err := rate.Parse(); err != nil {
			return fmt.Errorf("rates.machines.%s: %w", machine, err)
		}
	}
	return nil
}
