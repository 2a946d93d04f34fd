package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrimarket/internal/bulkpurchase/domain"
	"github.com/smallbiznis/agrimarket/pkg/db/option"
	"github.com/smallbiznis/agrimarket/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) store(db *gorm.DB) repository.Repository[domain.BulkPurchase] {
	return repository.ProvideStore[domain.BulkPurchase](db)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, purchase *domain.BulkPurchase) error {
	return r.store(db).Insert(ctx, purchase)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.BulkPurchase, error) {
	return r.store(db).SelectOne(ctx, nil, option.Where("id = ?", id))
}

func (r *repo) ListCreatedSince(ctx context.Context, db *gorm.DB, since time.Time, limit int) ([]*domain.BulkPurchase, error) {
	return r.store(db).Select(ctx, nil,
		option.Where("created_at >= ?", since),
		option.NewestFirst(),
		option.Limit(limit),
	)
}
