package domain

import "github.com/shopspring/decimal"

const (
	MinDuration       = 1
	MaxHourlyDuration = 12
	MaxDailyDuration  = 30
	HoursPerDay       = 8
)

// Rates are the per-mode prices for one machine type. Hourly and daily rates
// are configured independently and need not be proportional.
type Rates struct {
	Hourly decimal.Decimal
	Daily  decimal.Decimal
}

func (r Rates) For(mode PricingMode) decimal.Decimal {
	if mode == PricingModeDaily {
		return r.Daily
	}
	return r.Hourly
}

type Quote struct {
	PricingMode   PricingMode     `json:"pricing_mode"`
	Duration      int             `json:"duration"`
	DurationHours int             `json:"duration_hours"`
	Rate          decimal.Decimal `json:"rate"`
	Cost          decimal.Decimal `json:"cost"`
}

// CalculateCost prices duration units of mode. Hourly bookings take 1 to 12
// hours. Daily bookings take 1 to 30 days, are stored as 8 hours per day and
// are charged the daily rate per day. Any other input yields a zero cost and
// ErrInvalidDuration.
func CalculateCost(mode PricingMode, duration int, rates Rates) (Quote, error) {
	quote := Quote{PricingMode: mode, Duration: duration, Cost: decimal.Zero}

	var maxDuration, hoursPerUnit int
	switch mode {
	case PricingModeHourly:
		maxDuration, hoursPerUnit = MaxHourlyDuration, 1
	case PricingModeDaily:
		maxDuration, hoursPerUnit = MaxDailyDuration, HoursPerDay
	default:
		return quote, ErrInvalidPricingMode
	}

	if duration < MinDuration || duration > maxDuration {
		return quote, ErrInvalidDuration
	}

	rate := rates.For(mode)
	if !rate.IsPositive() {
		return quote, ErrInvalidRate
	}

	quote.Rate = rate
	quote.DurationHours = duration * hoursPerUnit
	quote.Cost = rate.Mul(decimal.NewFromInt(int64(duration)))
	return quote, nil
}
