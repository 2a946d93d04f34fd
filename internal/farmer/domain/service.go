package domain

import (
	"context"
	"errors"
)

type RegisterFarmerRequest struct {
	PanchayatID   string
	Name          string
	Phone         string
	PayoutAccount string
}

type Service interface {
	Register(context.Context, RegisterFarmerRequest) (Farmer, error)
	// Me returns the caller's profile or ErrProfileNotFound.
	Me(context.Context) (Farmer, error)
	// FindByProfile returns nil, nil when the profile has no farmer row.
	FindByProfile(ctx context.Context, profileID string) (*Farmer, error)
}

var (
	ErrInvalidName             = errors.New("invalid_name")
	ErrInvalidPhone            = errors.New("invalid_phone")
	ErrInvalidPanchayat        = errors.New("invalid_panchayat")
	ErrInvalidPayoutAccount    = errors.New("invalid_payout_account")
	ErrPayoutSealerUnavailable = errors.New("payout_account_storage_unavailable")
	ErrAlreadyRegistered       = errors.New("farmer_already_registered")
	ErrProfileNotFound         = errors.New("farmer_profile_not_found")
)
