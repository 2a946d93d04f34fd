package domain

import (
	"context"

	bookingdomain "github.com/smallbiznis/agrimarket/internal/booking/domain"
	farmerdomain "github.com/smallbiznis/agrimarket/internal/farmer/domain"
	paymentdomain "github.com/smallbiznis/agrimarket/internal/payment/domain"
)

const (
	RecentPaymentsLimit = 5
	RecentBookingsLimit = 5
)

// Dashboard is the farmer home screen. Initialized is false, and every list
// empty, until the caller registers a farmer profile.
type Dashboard struct {
	Initialized    bool                               `json:"initialized"`
	Farmer         *farmerdomain.Farmer               `json:"farmer,omitempty"`
	Summary        paymentdomain.Summary              `json:"summary"`
	RecentPayments []paymentdomain.JoinedDistribution `json:"recent_payments"`
	RecentBookings []bookingdomain.MachineBooking     `json:"recent_bookings"`
}

type Service interface {
	FarmerDashboard(context.Context) (Dashboard, error)
}
