package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrimarket/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	PanchayatID snowflake.ID
	CropType    CropType
	Status      ListingStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, listing *CropResidueListing) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CropResidueListing, error)
	// FindByIDs locks the returned rows when forUpdate is set and the dialect
	// supports row locks.
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID, forUpdate bool) ([]*CropResidueListing, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*CropResidueListing, error)
	// UpdateStatus moves a listing only while it is still in from and reports
	// the number of rows changed.
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to ListingStatus, now time.Time) (int64, error)
}
