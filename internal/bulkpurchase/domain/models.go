package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// BulkPurchase aggregates several listings, possibly from different farmers,
// into one purchase.
type BulkPurchase struct {
	ID                 snowflake.ID    `gorm:"primaryKey" json:"id"`
	Reference          string          `gorm:"type:text;not null;uniqueIndex" json:"reference"`
	BuyerProfileID     string          `gorm:"type:text;not null;index" json:"buyer_profile_id"`
	PanchayatID        snowflake.ID    `gorm:"not null;index" json:"panchayat_id"`
	TotalQuantityTons  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_quantity_tons"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	AveragePricePerTon decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"average_price_per_ton"`
	CreatedAt          time.Time       `gorm:"not null;index" json:"created_at"`
}

func (BulkPurchase) TableName() string {
	return "bulk_purchases"
}
