package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/agrimarket/internal/authorization"
	"github.com/smallbiznis/agrimarket/internal/booking/domain"
	"github.com/smallbiznis/agrimarket/internal/booking/repository"
	"github.com/smallbiznis/agrimarket/internal/config"
	farmerdomain "github.com/smallbiznis/agrimarket/internal/farmer/domain"
	farmerrepo "github.com/smallbiznis/agrimarket/internal/farmer/repository"
	farmerservice "github.com/smallbiznis/agrimarket/internal/farmer/service"
	"github.com/smallbiznis/agrimarket/internal/identity"
	panchayatrepo "github.com/smallbiznis/agrimarket/internal/panchayat/repository"
	"github.com/smallbiznis/agrimarket/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	env    *testutil.Env
	svc    domain.Service
	farmer farmerdomain.Farmer
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := testutil.NewEnv(t)
	farmers := farmerservice.New(farmerservice.Params{
		DB:            env.DB,
		Log:           env.Log,
		GenID:         env.Node,
		Clock:         env.Clock,
		Authz:         env.Authz,
		Repo:          farmerrepo.Provide(),
		PanchayatRepo: panchayatrepo.Provide(),
	})
	rates := config.NewStaticRates(config.RatesConfig{
		Default: config.RateConfig{Hourly: "800", Daily: "5000"},
		Machines: map[string]config.RateConfig{
			"baler": {Hourly: "1200", Daily: "7000"},
		},
	})
	svc := New(Params{
		DB:      env.DB,
		Log:     env.Log,
		GenID:   env.Node,
		Clock:   env.Clock,
		Authz:   env.Authz,
		Repo:    repository.Provide(),
		Farmers: farmers,
		Rates:   rates,
	})

	panchayat := env.SeedPanchayat(t, "bhadaur")
	farmer := env.SeedFarmer(t, "profile-1", panchayat.ID)
	return &fixture{
		env:    env,
		svc:    svc,
		farmer: farmer,
		ctx:    env.As(identity.RoleFarmer, "profile-1"),
	}
}

func (f *fixture) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.env.DB.Model(&domain.MachineBooking{}).Count(&n).Error)
	return n
}

func TestQuoteUsesMachineRates(t *testing.T) {
	f := newFixture(t)

	quote, err := f.svc.Quote(f.ctx, domain.QuoteRequest{MachineType: "happy_seeder", PricingMode: "hourly", Duration: 3})
	require.NoError(t, err)
	assert.Equal(t, "2400", quote.Cost.String())
	assert.Equal(t, 3, quote.DurationHours)

	quote, err = f.svc.Quote(f.ctx, domain.QuoteRequest{MachineType: "baler", PricingMode: "daily", Duration: 2})
	require.NoError(t, err)
	assert.Equal(t, "14000", quote.Cost.String())
	assert.Equal(t, 16, quote.DurationHours)

	quote, err = f.svc.Quote(f.ctx, domain.QuoteRequest{MachineType: "mulcher", PricingMode: "hourly", Duration: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
	assert.True(t, quote.Cost.IsZero())
}

func TestCreateDailyBooking(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.Create(f.ctx, domain.CreateBookingRequest{
		MachineType: "super_seeder",
		PricingMode: "daily",
		Duration:    2,
		BookingDate: "2026-10-05",
		Notes:       "north field",
	})
	require.NoError(t, err)
	assert.Equal(t, "10000", booking.Cost.String())
	assert.Equal(t, "5000", booking.RateApplied.String())
	assert.Equal(t, 16, booking.DurationHours)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, f.farmer.ID, booking.FarmerID)
	require.NotNil(t, booking.Notes)

	var stored domain.MachineBooking
	require.NoError(t, f.env.DB.First(&stored, "id = ?", booking.ID).Error)
	assert.Equal(t, "10000", stored.Cost.String())
	assert.Equal(t, 16, stored.DurationHours)
}

func TestCreateRejectsOutOfRangeDuration(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, domain.CreateBookingRequest{
		MachineType: "happy_seeder",
		PricingMode: "hourly",
		Duration:    13,
		BookingDate: "2026-10-05",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)

	_, err = f.svc.Create(f.ctx, domain.CreateBookingRequest{
		MachineType: "happy_seeder",
		PricingMode: "daily",
		Duration:    31,
		BookingDate: "2026-10-05",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
	assert.Zero(t, f.count(t))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	base := domain.CreateBookingRequest{MachineType: "rotavator", PricingMode: "hourly", Duration: 2, BookingDate: "2026-10-01"}

	_, err := f.svc.Create(f.ctx, base)
	require.NoError(t, err, "today is bookable")

	past := base
	past.BookingDate = "2026-09-30"
	_, err = f.svc.Create(f.ctx, past)
	assert.ErrorIs(t, err, domain.ErrInvalidBookingDate)

	machine := base
	machine.MachineType = "tractor"
	_, err = f.svc.Create(f.ctx, machine)
	assert.ErrorIs(t, err, domain.ErrInvalidMachineType)

	mode := base
	mode.PricingMode = "weekly"
	_, err = f.svc.Create(f.ctx, mode)
	assert.ErrorIs(t, err, domain.ErrInvalidPricingMode)

	_, err = f.svc.Create(f.env.As(identity.RoleFarmer, "unregistered"), base)
	assert.ErrorIs(t, err, domain.ErrFarmerProfileRequired)

	_, err = f.svc.Create(f.env.As(identity.RoleBuyer, "buyer-1"), base)
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	assert.Equal(t, int64(1), f.count(t))
}

func TestCostIsFixedAtCreation(t *testing.T) {
	f := newFixture(t)
	booking, err := f.svc.Create(f.ctx, domain.CreateBookingRequest{MachineType: "mulcher", PricingMode: "hourly", Duration: 2, BookingDate: "2026-10-02"})
	require.NoError(t, err)

	svc := f.svc.(*Service)
	svc.rates = config.NewStaticRates(config.RatesConfig{Default: config.RateConfig{Hourly: "999", Daily: "9999"}})

	list, err := f.svc.List(f.ctx, domain.ListBookingRequest{})
	require.NoError(t, err)
	require.Len(t, list.Bookings, 1)
	assert.Equal(t, booking.ID, list.Bookings[0].ID)
	assert.Equal(t, "1600", list.Bookings[0].Cost.String())
	assert.Equal(t, "800", list.Bookings[0].RateApplied.String())
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)
	create := func() domain.MachineBooking {
		b, err := f.svc.Create(f.ctx, domain.CreateBookingRequest{MachineType: "baler", PricingMode: "hourly", Duration: 1, BookingDate: "2026-10-03"})
		require.NoError(t, err)
		f.env.Clock.Advance(time.Second)
		return b
	}
	admin := f.env.AsAdmin("admin-1", f.farmer.PanchayatID)

	first := create()
	confirmed, err := f.svc.UpdateStatus(admin, domain.UpdateStatusRequest{ID: first.ID.String(), Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, confirmed.Status)

	completed, err := f.svc.UpdateStatus(admin, domain.UpdateStatusRequest{ID: first.ID.String(), Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCompleted, completed.Status)

	_, err = f.svc.UpdateStatus(admin, domain.UpdateStatusRequest{ID: first.ID.String(), Status: "cancelled"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	second := create()
	_, err = f.svc.UpdateStatus(f.ctx, domain.UpdateStatusRequest{ID: second.ID.String(), Status: "confirmed"})
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	cancelled, err := f.svc.UpdateStatus(f.ctx, domain.UpdateStatusRequest{ID: second.ID.String(), Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)

	third := create()
	f.env.SeedFarmer(t, "profile-2", f.farmer.PanchayatID)
	_, err = f.svc.UpdateStatus(f.env.As(identity.RoleFarmer, "profile-2"), domain.UpdateStatusRequest{ID: third.ID.String(), Status: "cancelled"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.UpdateStatus(f.env.AsAdmin("admin-2", 42), domain.UpdateStatusRequest{ID: third.ID.String(), Status: "confirmed"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecentForFarmer(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 4; i++ {
		_, err := f.svc.Create(f.ctx, domain.CreateBookingRequest{MachineType: "baler", PricingMode: "hourly", Duration: i + 1, BookingDate: "2026-10-03"})
		require.NoError(t, err)
		f.env.Clock.Advance(time.Minute)
	}

	recent, err := f.svc.RecentForFarmer(context.Background(), f.farmer.ID, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, 4, recent[0].Duration)
	assert.Equal(t, 2, recent[2].Duration)
}
