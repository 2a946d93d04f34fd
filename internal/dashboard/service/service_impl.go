package service

import (
	"context"

	"github.com/smallbiznis/agrimarket/internal/authorization"
	bookingdomain "github.com/smallbiznis/agrimarket/internal/booking/domain"
	"github.com/smallbiznis/agrimarket/internal/dashboard/domain"
	farmerdomain "github.com/smallbiznis/agrimarket/internal/farmer/domain"
	"github.com/smallbiznis/agrimarket/internal/identity"
	paymentdomain "github.com/smallbiznis/agrimarket/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Authz    authorization.Service
	Farmers  farmerdomain.Service
	Payments paymentdomain.Service
	Bookings bookingdomain.Service
}

type Service struct {
	log      *zap.Logger
	authz    authorization.Service
	farmers  farmerdomain.Service
	payments paymentdomain.Service
	bookings bookingdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("dashboard.service"),
		authz:    p.Authz,
		farmers:  p.Farmers,
		payments: p.Payments,
		bookings: p.Bookings,
	}
}

// FarmerDashboard runs identity, profile, payments and bookings one after
// another and stops at the first failure.
func (s *Service) FarmerDashboard(ctx context.Context) (domain.Dashboard, error) {
	caller, err := identity.MustCaller(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}
	if err := s.authz.Authorize(ctx, caller, authorization.ObjectDashboard, authorization.ActionDashboardView); err != nil {
		return domain.Dashboard{}, err
	}

	farmer, err := s.farmers.FindByProfile(ctx, caller.ProfileID)
	if err != nil {
		return domain.Dashboard{}, err
	}
	if farmer == nil {
		s.log.Debug("dashboard requested before farmer registration")
		return emptyDashboard(), nil
	}

	payments, err := s.payments.ListByFarmer(ctx, farmer.ID)
	if err != nil {
		return domain.Dashboard{}, err
	}
	summary := paymentdomain.Summarize(paymentdomain.Distributions(payments))

	bookings, err := s.bookings.RecentForFarmer(ctx, farmer.ID, domain.RecentBookingsLimit)
	if err != nil {
		return domain.Dashboard{}, err
	}

	recent := payments
	if len(recent) > domain.RecentPaymentsLimit {
		recent = recent[:domain.RecentPaymentsLimit]
	}
	return domain.Dashboard{
		Initialized:    true,
		Farmer:         farmer,
		Summary:        summary,
		RecentPayments: recent,
		RecentBookings: bookings,
	}, nil
}

func emptyDashboard() domain.Dashboard {
	return domain.Dashboard{
		Summary:        paymentdomain.Summarize(nil),
		RecentPayments: []paymentdomain.JoinedDistribution{},
		RecentBookings: []bookingdomain.MachineBooking{},
	}
}
