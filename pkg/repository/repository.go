package repository

import (
	"context"

	"github.com/smallbiznis/agrimarket/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is the generic table access used by the domain repositories:
// select with a filter and insert rows.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Select(ctx context.Context, filter *T, opts ...option.QueryOption) ([]*T, error)
	SelectOne(ctx context.Context, filter *T, opts ...option.QueryOption) (*T, error)
	Insert(ctx context.Context, rows ...*T) error
	Count(ctx context.Context, filter *T, opts ...option.QueryOption) (int64, error)
}
