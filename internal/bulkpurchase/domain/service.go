package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/smallbiznis/agrimarket/internal/payment/domain"
)

type CreateBulkPurchaseRequest struct {
	ListingIDs            []string
	NegotiatedPricePerTon string
}

type Detail struct {
	BulkPurchase
	Distributions []paymentdomain.PaymentDistribution `json:"distributions"`
}

// Violation is a purchase whose distributions no longer add up.
type Violation struct {
	BulkPurchaseID    snowflake.ID `json:"bulk_purchase_id"`
	TotalQuantityTons string       `json:"total_quantity_tons"`
	Distributed       string       `json:"distributed_quantity_tons"`
}

type ReconcileResult struct {
	Checked    int
	Violations []Violation
}

type Service interface {
	Create(context.Context, CreateBulkPurchaseRequest) (Detail, error)
	Get(ctx context.Context, id string) (Detail, error)
	// Reconcile re-checks the quantity invariant of purchases created at or
	// after since.
	Reconcile(ctx context.Context, since time.Time, limit int) (ReconcileResult, error)
}

var (
	ErrNoListings             = errors.New("listing_ids_required")
	ErrDuplicateListing       = errors.New("duplicate_listing")
	ErrInvalidListingID       = errors.New("invalid_listing_id")
	ErrInvalidNegotiatedPrice = errors.New("invalid_negotiated_price")
	ErrInvalidQuantity        = errors.New("invalid_quantity")
	ErrInvalidPrice           = errors.New("invalid_price")
	ErrInvalidID              = errors.New("invalid_id")
	ErrListingUnavailable     = errors.New("listing_unavailable")
	ErrMixedPanchayat         = errors.New("mixed_panchayat")
	ErrQuantityMismatch       = errors.New("quantity_mismatch")
	ErrNotFound               = errors.New("not_found")
)
