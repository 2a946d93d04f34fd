package domain

import (
	"context"
	"errors"
)

type CreatePanchayatRequest struct {
	Name     string
	District string
	State    string
}

type Service interface {
	Create(context.Context, CreatePanchayatRequest) (Panchayat, error)
	GetByID(ctx context.Context, id string) (Panchayat, error)
	List(context.Context) ([]Panchayat, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidID   = errors.New("invalid_id")
	ErrDuplicate   = errors.New("panchayat_exists")
	ErrNotFound    = errors.New("not_found")
)
