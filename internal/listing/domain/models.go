package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CropType string

const (
	CropPaddyStraw     CropType = "paddy_straw"
	CropWheatStraw     CropType = "wheat_straw"
	CropSugarcaneTrash CropType = "sugarcane_trash"
	CropCottonStalk    CropType = "cotton_stalk"
	CropMaizeStover    CropType = "maize_stover"
	CropOther          CropType = "other"
)

func ParseCropType(value string) (CropType, bool) {
	switch CropType(strings.ToLower(strings.TrimSpace(value))) {
	case CropPaddyStraw:
		return CropPaddyStraw, true
	case CropWheatStraw:
		return CropWheatStraw, true
	case CropSugarcaneTrash:
		return CropSugarcaneTrash, true
	case CropCottonStalk:
		return CropCottonStalk, true
	case CropMaizeStover:
		return CropMaizeStover, true
	case CropOther:
		return CropOther, true
	default:
		return "", false
	}
}

type ListingStatus string

const (
	ListingAvailable ListingStatus = "available"
	ListingSold      ListingStatus = "sold"
	ListingWithdrawn ListingStatus = "withdrawn"
)

func ParseListingStatus(value string) (ListingStatus, bool) {
	switch ListingStatus(strings.ToLower(strings.TrimSpace(value))) {
	case ListingAvailable:
		return ListingAvailable, true
	case ListingSold:
		return ListingSold, true
	case ListingWithdrawn:
		return ListingWithdrawn, true
	default:
		return "", false
	}
}

// CanTransition reports whether a listing may move from one status to
// another. Only available listings move; sold and withdrawn are terminal.
func CanTransition(from, to ListingStatus) bool {
	if from != ListingAvailable {
		return false
	}
	return to == ListingSold || to == ListingWithdrawn
}

// CropResidueListing is a farmer's offer of crop residue for sale.
type CropResidueListing struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	FarmerID     snowflake.ID      `gorm:"not null;index" json:"farmer_id"`
	PanchayatID  snowflake.ID      `gorm:"not null;index" json:"panchayat_id"`
	CropType     CropType          `gorm:"type:text;not null" json:"crop_type"`
	QuantityTons decimal.Decimal   `gorm:"type:decimal(18,4);not null" json:"quantity_tons"`
	PricePerTon  decimal.Decimal   `gorm:"type:decimal(18,4);not null" json:"price_per_ton"`
	Status       ListingStatus     `gorm:"type:text;not null;index" json:"status"`
	Metadata     datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null" json:"updated_at"`
}

func (CropResidueListing) TableName() string {
	return "crop_residue_listings"
}

// Validate rejects rows that cannot be priced or have an unknown status.
func (l CropResidueListing) Validate() error {
	if l.ID == 0 || l.FarmerID == 0 {
		return ErrInvalidID
	}
	if !l.QuantityTons.IsPositive() {
		return ErrInvalidQuantity
	}
	if !l.PricePerTon.IsPositive() {
		return ErrInvalidPrice
	}
	if _, ok := ParseListingStatus(string(l.Status)); !ok {
		return ErrInvalidStatus
	}
	return nil
}
