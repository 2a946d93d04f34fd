package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrimarket/pkg/db/pagination"
)

type QuoteRequest struct {
	MachineType string
	PricingMode string
	Duration    int
}

type CreateBookingRequest struct {
	MachineType string
	PricingMode string
	Duration    int
	BookingDate string
	Notes       string
}

type ListBookingRequest struct {
	Status    string
	PageToken string
	PageSize  int
}

type ListBookingFilter struct {
	Status BookingStatus
}

type ListBookingResponse struct {
	pagination.PageInfo
	Bookings []MachineBooking `json:"bookings"`
}

type UpdateStatusRequest struct {
	ID     string
	Status string
}

type Service interface {
	Quote(context.Context, QuoteRequest) (Quote, error)
	Create(context.Context, CreateBookingRequest) (MachineBooking, error)
	List(context.Context, ListBookingRequest) (ListBookingResponse, error)
	UpdateStatus(context.Context, UpdateStatusRequest) (MachineBooking, error)
	RecentForFarmer(ctx context.Context, farmerID snowflake.ID, limit int) ([]MachineBooking, error)
}

var (
	ErrInvalidMachineType = errors.New("invalid_machine_type")
	ErrInvalidPricingMode = errors.New("invalid_pricing_mode")
	ErrInvalidDuration    = errors.New("invalid_duration")
	ErrInvalidRate        = errors.New("invalid_rate")
	ErrInvalidCost        = errors.New("invalid_cost")
	ErrInvalidBookingDate = errors.New("invalid_booking_date")
	ErrInvalidNotes       = errors.New("invalid_notes")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidTransition  = errors.New("invalid_status_transition")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")

	ErrFarmerProfileRequired = errors.New("farmer_profile_required")
)
