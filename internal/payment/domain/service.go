package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// FarmerPayments is the caller's joined payment history. Initialized is false
// when the caller has no farmer profile yet.
type FarmerPayments struct {
	Initialized bool                 `json:"initialized"`
	Payments    []JoinedDistribution `json:"payments"`
	Summary     Summary              `json:"summary"`
}

type Service interface {
	FarmerPayments(context.Context) (FarmerPayments, error)
	// ListByFarmer returns the farmer's distributions newest first. Rows whose
	// listing or purchase cannot be loaded are left out.
	ListByFarmer(ctx context.Context, farmerID snowflake.ID) ([]JoinedDistribution, error)
	MarkPaid(ctx context.Context, id string) (PaymentDistribution, error)
	MarkFailed(ctx context.Context, id string) (PaymentDistribution, error)
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidPrice      = errors.New("invalid_price")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrNotFound          = errors.New("not_found")
)
