package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrimarket/internal/booking/domain"
	"github.com/smallbiznis/agrimarket/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, booking *domain.MachineBooking) error {
	return db.WithContext(ctx).Create(booking).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MachineBooking, error) {
	var booking domain.MachineBooking
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&booking).Error
	if err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, nil
	}
	return &booking, nil
}

func (r *repo) ListByFarmer(ctx context.Context, db *gorm.DB, farmerID snowflake.ID, filter domain.ListBookingFilter, page pagination.Pagination) ([]*domain.MachineBooking, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.MachineBooking{}).
		Where("farmer_id = ?", farmerID)
	return r.list(stmt, filter, page)
}

func (r *repo) ListByPanchayat(ctx context.Context, db *gorm.DB, panchayatID snowflake.ID, filter domain.ListBookingFilter, page pagination.Pagination) ([]*domain.MachineBooking, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.MachineBooking{}).
		Where("panchayat_id = ?", panchayatID)
	return r.list(stmt, filter, page)
}

func (r *repo) list(stmt *gorm.DB, filter domain.ListBookingFilter, page pagination.Pagination) ([]*domain.MachineBooking, error) {
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt, err := pagination.Apply(stmt, page)
	if err != nil {
		return nil, err
	}

	var bookings []*domain.MachineBooking
	if err := stmt.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.BookingStatus, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.MachineBooking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}
