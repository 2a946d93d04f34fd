package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, farmer *Farmer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Farmer, error)
	FindByProfileID(ctx context.Context, db *gorm.DB, profileID string) (*Farmer, error)
}
