package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func ParsePaymentStatus(value string) (PaymentStatus, bool) {
	switch PaymentStatus(strings.ToLower(strings.TrimSpace(value))) {
	case PaymentPending:
		return PaymentPending, true
	case PaymentPaid:
		return PaymentPaid, true
	case PaymentFailed:
		return PaymentFailed, true
	default:
		return "", false
	}
}

// CanTransition allows pending to paid or failed. Paid and failed are terminal.
func CanTransition(from, to PaymentStatus) bool {
	return from == PaymentPending && (to == PaymentPaid || to == PaymentFailed)
}

// PaymentDistribution is one farmer's share of a bulk purchase.
type PaymentDistribution struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	FarmerID       snowflake.ID    `gorm:"not null;index" json:"farmer_id"`
	ListingID      snowflake.ID    `gorm:"not null;index" json:"listing_id"`
	BulkPurchaseID snowflake.ID    `gorm:"not null;index" json:"bulk_purchase_id"`
	QuantityTons   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity_tons"`
	PricePerTon    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"price_per_ton"`
	PaymentAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"payment_amount"`
	PaymentStatus  PaymentStatus   `gorm:"type:text;not null;index" json:"payment_status"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}

func (PaymentDistribution) TableName() string {
	return "farmer_payment_distributions"
}

// AmountScale is the number of decimal places stored for payment amounts.
const AmountScale = 4

// ExpectedAmount is quantity times price per ton, rounded to AmountScale.
func (d PaymentDistribution) ExpectedAmount() decimal.Decimal {
	return LineAmount(d.QuantityTons, d.PricePerTon)
}

// LineAmount prices quantity tons at pricePerTon, rounded half away from zero
// to AmountScale.
func LineAmount(quantity, pricePerTon decimal.Decimal) decimal.Decimal {
	return quantity.Mul(pricePerTon).Round(AmountScale)
}

// Validate reports the first reason the row cannot be trusted.
func (d PaymentDistribution) Validate() error {
	if d.ID == 0 {
		return ErrInvalidID
	}
	if !d.QuantityTons.IsPositive() {
		return ErrInvalidQuantity
	}
	if !d.PricePerTon.IsPositive() {
		return ErrInvalidPrice
	}
	if _, ok := ParsePaymentStatus(string(d.PaymentStatus)); !ok {
		return ErrInvalidStatus
	}
	return nil
}

type ListingSummary struct {
	ID       snowflake.ID `json:"id"`
	CropType string       `json:"crop_type"`
	Status   string       `json:"status"`
}

type PurchaseSummary struct {
	ID        snowflake.ID `json:"id"`
	Reference string       `json:"reference"`
	CreatedAt time.Time    `json:"created_at"`
}

// JoinedDistribution is a distribution together with its listing and bulk
// purchase.
type JoinedDistribution struct {
	PaymentDistribution
	Listing  ListingSummary  `json:"listing"`
	Purchase PurchaseSummary `json:"bulk_purchase"`
}
