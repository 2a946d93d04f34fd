package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/agrimarket/pkg/db/option"
	"gorm.io/gorm"
)

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (r *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	return &store[T]{db: tx}
}

func (r *store[T]) Select(ctx context.Context, filter *T, opts ...option.QueryOption) ([]*T, error) {
	var result []*T
	if err := r.buildQuery(ctx, filter, opts...).Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// SelectOne returns nil, nil when nothing matches.
func (r *store[T]) SelectOne(ctx context.Context, filter *T, opts ...option.QueryOption) (*T, error) {
	var result T
	err := r.buildQuery(ctx, filter, opts...).Take(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *store[T]) Insert(ctx context.Context, rows ...*T) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

func (r *store[T]) Count(ctx context.Context, filter *T, opts ...option.QueryOption) (int64, error) {
	var count int64
	err := r.buildQuery(ctx, filter, opts...).Model(new(T)).Count(&count).Error
	return count, err
}

func (r *store[T]) buildQuery(ctx context.Context, filter *T, opts ...option.QueryOption) *gorm.DB {
	stmt := r.db.WithContext(ctx).Model(new(T))
	if filter != nil {
		stmt = stmt.Where(filter)
	}
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	return stmt
}
