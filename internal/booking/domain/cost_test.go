package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRates = Rates{
	Hourly: decimal.NewFromInt(800),
	Daily:  decimal.NewFromInt(5000),
}

func TestHourlyCostIsDurationTimesHourlyRate(t *testing.T) {
	for d := 1; d <= MaxHourlyDuration; d++ {
		quote, err := CalculateCost(PricingModeHourly, d, testRates)
		require.NoError(t, err)
		assert.True(t, quote.Cost.Equal(decimal.NewFromInt(int64(d*800))), "d=%d cost=%s", d, quote.Cost)
		assert.Equal(t, d, quote.DurationHours)
	}
}

func TestDailyCostUsesDailyRateNotHourlyTimesEight(t *testing.T) {
	for d := 1; d <= MaxDailyDuration; d++ {
		quote, err := CalculateCost(PricingModeDaily, d, testRates)
		require.NoError(t, err)
		assert.True(t, quote.Cost.Equal(decimal.NewFromInt(int64(d*5000))), "d=%d cost=%s", d, quote.Cost)
		assert.Equal(t, d*HoursPerDay, quote.DurationHours)
	}
}

func TestTwoDayBooking(t *testing.T) {
	quote, err := CalculateCost(PricingModeDaily, 2, testRates)
	require.NoError(t, err)
	assert.Equal(t, "10000", quote.Cost.String())
	assert.Equal(t, 16, quote.DurationHours)
	assert.Equal(t, "5000", quote.Rate.String())
}

func TestOutOfBoundsDurationCostsNothing(t *testing.T) {
	cases := []struct {
		mode     PricingMode
		duration int
	}{
		{PricingModeHourly, 0},
		{PricingModeHourly, -1},
		{PricingModeHourly, 13},
		{PricingModeDaily, 0},
		{PricingModeDaily, 31},
	}
	for _, tc := range cases {
		quote, err := CalculateCost(tc.mode, tc.duration, testRates)
		assert.ErrorIs(t, err, ErrInvalidDuration, "%s %d", tc.mode, tc.duration)
		assert.True(t, quote.Cost.IsZero())
		assert.Zero(t, quote.DurationHours)
	}
}

func TestUnknownModeAndMissingRate(t *testing.T) {
	quote, err := CalculateCost("weekly", 1, testRates)
	assert.ErrorIs(t, err, ErrInvalidPricingMode)
	assert.True(t, quote.Cost.IsZero())

	_, err = CalculateCost(PricingModeDaily, 1, Rates{Hourly: decimal.NewFromInt(800)})
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(BookingStatusPending, BookingStatusConfirmed))
	assert.True(t, CanTransition(BookingStatusPending, BookingStatusCancelled))
	assert.True(t, CanTransition(BookingStatusConfirmed, BookingStatusCompleted))
	assert.True(t, CanTransition(BookingStatusConfirmed, BookingStatusCancelled))

	assert.False(t, CanTransition(BookingStatusPending, BookingStatusCompleted))
	assert.False(t, CanTransition(BookingStatusCompleted, BookingStatusCancelled))
	assert.False(t, CanTransition(BookingStatusCancelled, BookingStatusPending))
}

func TestParseMachineType(t *testing.T) {
	machine, ok := ParseMachineType(" Happy_Seeder ")
	assert.True(t, ok)
	assert.Equal(t, MachineHappySeeder, machine)

	_, ok = ParseMachineType("tractor")
	assert.False(t, ok)
}

func TestValidateQuarantinesBrokenRows(t *testing.T) {
	valid := MachineBooking{
		MachineType:   MachineBaler,
		PricingMode:   PricingModeHourly,
		Status:        BookingStatusPending,
		DurationHours: 4,
		Cost:          decimal.NewFromInt(3200),
	}
	assert.NoError(t, valid.Validate())

	broken := valid
	broken.Status = "archived"
	assert.ErrorIs(t, broken.Validate(), ErrInvalidStatus)

	broken = valid
	broken.DurationHours = 0
	assert.ErrorIs(t, broken.Validate(), ErrInvalidDuration)

	broken = valid
	broken.Cost = decimal.NewFromInt(-1)
	assert.ErrorIs(t, broken.Validate(), ErrInvalidCost)
}
