package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrimarket/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, booking *MachineBooking) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MachineBooking, error)
	ListByFarmer(ctx context.Context, db *gorm.DB, farmerID snowflake.ID, filter ListBookingFilter, page pagination.Pagination) ([]*MachineBooking, error)
	ListByPanchayat(ctx context.Context, db *gorm.DB, panchayatID snowflake.ID, filter ListBookingFilter, page pagination.Pagination) ([]*MachineBooking, error)
	// UpdateStatus moves a booking only while it is still in from.
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to BookingStatus, now time.Time) (int64, error)
}
