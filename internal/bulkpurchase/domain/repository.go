package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, purchase *BulkPurchase) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*BulkPurchase, error)
	ListCreatedSince(ctx context.Context, db *gorm.DB, since time.Time, limit int) ([]*BulkPurchase, error)
}
