package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, panchayat *Panchayat) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Panchayat, error)
	List(ctx context.Context, db *gorm.DB) ([]*Panchayat, error)
}
