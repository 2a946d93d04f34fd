package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrimarket/internal/panchayat/domain"
	"github.com/smallbiznis/agrimarket/pkg/db/option"
	"github.com/smallbiznis/agrimarket/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) store(db *gorm.DB) repository.Repository[domain.Panchayat] {
	return repository.ProvideStore[domain.Panchayat](db)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, panchayat *domain.Panchayat) error {
	return r.store(db).Insert(ctx, panchayat)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Panchayat, error) {
	return r.store(db).SelectOne(ctx, nil, option.Where("id = ?", id))
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Panchayat, error) {
	return r.store(db).Select(ctx, nil, option.OrderBy("name asc, id asc"))
}
