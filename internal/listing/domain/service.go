package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/agrimarket/pkg/db/pagination"
)

type CreateListingRequest struct {
	CropType     string
	QuantityTons string
	PricePerTon  string
	Metadata     map[string]any
}

type ListListingRequest struct {
	PanchayatID string
	CropType    string
	Status      string
	PageToken   string
	PageSize    int
}

type ListListingResponse struct {
	pagination.PageInfo
	Listings []CropResidueListing `json:"listings"`
}

type Service interface {
	Create(context.Context, CreateListingRequest) (CropResidueListing, error)
	Get(ctx context.Context, id string) (CropResidueListing, error)
	List(context.Context, ListListingRequest) (ListListingResponse, error)
	Withdraw(ctx context.Context, id string) (CropResidueListing, error)
}

var (
	ErrInvalidID               = errors.New("invalid_id")
	ErrInvalidCropType         = errors.New("invalid_crop_type")
	ErrInvalidQuantity         = errors.New("invalid_quantity")
	ErrInvalidPrice            = errors.New("invalid_price")
	ErrInvalidStatus           = errors.New("invalid_status")
	ErrInvalidPanchayat        = errors.New("invalid_panchayat")
	ErrInvalidStatusTransition = errors.New("invalid_status_transition")
	ErrFarmerProfileRequired   = errors.New("farmer_profile_required")
	ErrNotFound                = errors.New("not_found")
)
