package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrimarket/internal/payment/domain"
	"github.com/smallbiznis/agrimarket/pkg/db/option"
	"github.com/smallbiznis/agrimarket/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) store(db *gorm.DB) repository.Repository[domain.PaymentDistribution] {
	return repository.ProvideStore[domain.PaymentDistribution](db)
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, rows []*domain.PaymentDistribution) error {
	if len(rows) == 0 {
		return nil
	}
	return r.store(db).Insert(ctx, rows...)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PaymentDistribution, error) {
	return r.store(db).SelectOne(ctx, nil, option.Where("id = ?", id))
}

func (r *repo) ListByFarmer(ctx context.Context, db *gorm.DB, farmerID snowflake.ID) ([]*domain.PaymentDistribution, error) {
	return r.store(db).Select(ctx, nil,
		option.Where("farmer_id = ?", farmerID),
		option.NewestFirst(),
	)
}

func (r *repo) ListByBulkPurchases(ctx context.Context, db *gorm.DB, purchaseIDs []snowflake.ID) ([]*domain.PaymentDistribution, error) {
	if len(purchaseIDs) == 0 {
		return nil, nil
	}
	return r.store(db).Select(ctx, nil,
		option.In("bulk_purchase_id", purchaseIDs),
		option.OrderBy("bulk_purchase_id asc, id asc"),
	)
}

func (r *repo) Settle(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.PaymentStatus, paidAt *time.Time, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.PaymentDistribution{}).
		Where("id = ? AND payment_status = ?", id, domain.PaymentPending).
		Updates(map[string]any{
			"payment_status": status,
			"paid_at":        paidAt,
			"updated_at":     now,
		})
	return result.RowsAffected, result.Error
}
