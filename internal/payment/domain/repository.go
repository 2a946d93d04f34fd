package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertBatch(ctx context.Context, db *gorm.DB, rows []*PaymentDistribution) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PaymentDistribution, error)
	ListByFarmer(ctx context.Context, db *gorm.DB, farmerID snowflake.ID) ([]*PaymentDistribution, error)
	ListByBulkPurchases(ctx context.Context, db *gorm.DB, purchaseIDs []snowflake.ID) ([]*PaymentDistribution, error)
	// Settle moves a pending row to status and reports the rows changed.
	Settle(ctx context.Context, db *gorm.DB, id snowflake.ID, status PaymentStatus, paidAt *time.Time, now time.Time) (int64, error)
}
