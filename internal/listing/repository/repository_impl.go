package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrimarket/internal/listing/domain"
	"github.com/smallbiznis/agrimarket/pkg/db/option"
	"github.com/smallbiznis/agrimarket/pkg/db/pagination"
	"github.com/smallbiznis/agrimarket/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) store(db *gorm.DB) repository.Repository[domain.CropResidueListing] {
	return repository.ProvideStore[domain.CropResidueListing](db)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, listing *domain.CropResidueListing) error {
	return r.store(db).Insert(ctx, listing)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CropResidueListing, error) {
	return r.store(db).SelectOne(ctx, nil, option.Where("id = ?", id))
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID, forUpdate bool) ([]*domain.CropResidueListing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	opts := []option.QueryOption{
		option.In("id", ids),
		option.OrderBy("id asc"),
	}
	if forUpdate {
		opts = append(opts, option.ForUpdate())
	}
	return r.store(db).Select(ctx, nil, opts...)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.CropResidueListing, error) {
	stmt := db.WithContext(ctx).Model(&domain.CropResidueListing{})
	if filter.PanchayatID != 0 {
		stmt = stmt.Where("panchayat_id = ?", filter.PanchayatID)
	}
	if filter.CropType != "" {
		stmt = stmt.Where("crop_type = ?", filter.CropType)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	stmt, err := pagination.Apply(stmt, page)
	if err != nil {
		return nil, err
	}

	var listings []*domain.CropResidueListing
	if err := stmt.Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.ListingStatus, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.CropResidueListing{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}
