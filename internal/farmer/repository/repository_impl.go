package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrimarket/internal/farmer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, farmer *domain.Farmer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO farmers (id, profile_id, panchayat_id, name, phone, payout_account_sealed, payout_account_last4, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		farmer.ID,
		farmer.ProfileID,
		farmer.PanchayatID,
		farmer.Name,
		farmer.Phone,
		farmer.PayoutAccountSealed,
		farmer.PayoutAccountLast4,
		farmer.CreatedAt,
		farmer.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Farmer, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByProfileID(ctx context.Context, db *gorm.DB, profileID string) (*domain.Farmer, error) {
	return r.findOne(ctx, db, "profile_id = ?", profileID)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, arg any) (*domain.Farmer, error) {
	var farmer domain.Farmer
	err := db.WithContext(ctx).
		Where(query, arg).
		Limit(1).
		Find(&farmer).Error
	if err != nil {
		return nil, err
	}
	if farmer.ID == 0 {
		return nil, nil
	}
	return &farmer, nil
}
