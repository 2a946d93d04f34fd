package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/agrimarket/internal/authorization"
	"github.com/smallbiznis/agrimarket/internal/booking/domain"
	"github.com/smallbiznis/agrimarket/internal/clock"
	"github.com/smallbiznis/agrimarket/internal/config"
	farmerdomain "github.com/smallbiznis/agrimarket/internal/farmer/domain"
	"github.com/smallbiznis/agrimarket/internal/identity"
	"github.com/smallbiznis/agrimarket/internal/observability/metrics"
	"github.com/smallbiznis/agrimarket/internal/ratelimit"
	"github.com/smallbiznis/agrimarket/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	bookingDateLayout = "2006-01-02"
	maxNotesLength    = 500
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Authz   authorization.Service
	Repo    domain.Repository
	Farmers farmerdomain.Service
	Rates   *config.RatesHolder
	Limiter *ratelimit.BookingLimiter `optional:"true"`
	Metrics *metrics.Metrics          `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	authz   authorization.Service
	repo    domain.Repository
	farmers farmerdomain.Service
	rates   *config.RatesHolder
	limiter *ratelimit.BookingLimiter
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("booking.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		authz:   p.Authz,
		repo:    p.Repo,
		farmers: p.Farmers,
		rates:   p.Rates,
		limiter: p.Limiter,
		metrics: p.Metrics,
	}
}

// Quote prices a booking without storing it. On invalid input the returned
// quote carries a zero cost next to the error.
func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	if _, err := s.authorize(ctx, authorization.ActionBookingQuote); err != nil {
		return domain.Quote{}, err
	}
	machineType, mode, err := parseMachine(req.MachineType, req.PricingMode)
	if err != nil {
		return domain.Quote{Cost: decimal.Zero}, err
	}
	return s.quote(machineType, mode, req.Duration)
}

func (s *Service) Create(ctx context.Context, req domain.CreateBookingRequest) (domain.MachineBooking, error) {
	caller, err := s.authorize(ctx, authorization.ActionBookingCreate)
	if err != nil {
		return domain.MachineBooking{}, err
	}

	machineType, mode, err := parseMachine(req.MachineType, req.PricingMode)
	if err != nil {
		return domain.MachineBooking{}, err
	}
	quote, err := s.quote(machineType, mode, req.Duration)
	if err != nil {
		return domain.MachineBooking{}, err
	}

	now := s.clock.Now()
	bookingDate, err := parseBookingDate(req.BookingDate, now)
	if err != nil {
		return domain.MachineBooking{}, err
	}

	var notes *string
	if value := strings.TrimSpace(req.Notes); value != "" {
		if len(value) > maxNotesLength {
			return domain.MachineBooking{}, domain.ErrInvalidNotes
		}
		notes = &value
	}

	farmer, err := s.farmers.FindByProfile(ctx, caller.ProfileID)
	if err != nil {
		return domain.MachineBooking{}, err
	}
	if farmer == nil {
		return domain.MachineBooking{}, domain.ErrFarmerProfileRequired
	}

	if err := s.limiter.Allow(ctx, caller.ProfileID); err != nil {
		return domain.MachineBooking{}, err
	}

	booking := domain.MachineBooking{
		ID:            s.genID.Generate(),
		FarmerID:      farmer.ID,
		PanchayatID:   farmer.PanchayatID,
		MachineType:   machineType,
		PricingMode:   mode,
		BookingDate:   bookingDate,
		Duration:      quote.Duration,
		DurationHours: quote.DurationHours,
		RateApplied:   quote.Rate,
		Cost:          quote.Cost,
		Status:        domain.BookingStatusPending,
		Notes:         notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.db, &booking); err != nil {
		return domain.MachineBooking{}, err
	}

	s.metrics.RecordBookingCreated(ctx, string(machineType), string(mode))
	s.log.Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("machine_type", string(machineType)),
		zap.String("pricing_mode", string(mode)),
		zap.Int("duration_hours", booking.DurationHours),
		zap.String("cost", booking.Cost.String()),
	)
	return booking, nil
}

func (s *Service) List(ctx context.Context, req domain.ListBookingRequest) (domain.ListBookingResponse, error) {
	caller, err := s.authorize(ctx, authorization.ActionBookingView)
	if err != nil {
		return domain.ListBookingResponse{}, err
	}

	filter := domain.ListBookingFilter{}
	if value := strings.TrimSpace(req.Status); value != "" {
		status, ok := domain.ParseBookingStatus(value)
		if !ok {
			return domain.ListBookingResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}

	var items []*domain.MachineBooking
	switch caller.Role {
	case identity.RoleFarmer:
		farmer, err := s.farmers.FindByProfile(ctx, caller.ProfileID)
		if err != nil {
			return domain.ListBookingResponse{}, err
		}
		if farmer == nil {
			return domain.ListBookingResponse{Bookings: []domain.MachineBooking{}}, nil
		}
		items, err = s.repo.ListByFarmer(ctx, s.db, farmer.ID, filter, page)
		if err != nil {
			return domain.ListBookingResponse{}, err
		}
	case identity.RolePanchayatAdmin:
		if caller.PanchayatID == 0 {
			return domain.ListBookingResponse{}, authorization.ErrForbidden
		}
		items, err = s.repo.ListByPanchayat(ctx, s.db, caller.PanchayatID, filter, page)
		if err != nil {
			return domain.ListBookingResponse{}, err
		}
	default:
		return domain.ListBookingResponse{}, authorization.ErrForbidden
	}

	pageItems, info := pagination.BuildCursorPageInfo(items, page.Size(), func(b *domain.MachineBooking) pagination.Cursor {
		return pagination.Cursor{
			ID:        b.ID.String(),
			CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	})
	return domain.ListBookingResponse{PageInfo: info, Bookings: s.keepValid(pageItems)}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.MachineBooking, error) {
	caller, err := identity.MustCaller(ctx)
	if err != nil {
		return domain.MachineBooking{}, err
	}

	bookingID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || bookingID == 0 {
		return domain.MachineBooking{}, domain.ErrInvalidID
	}
	to, ok := domain.ParseBookingStatus(req.Status)
	if !ok {
		return domain.MachineBooking{}, domain.ErrInvalidStatus
	}

	action := authorization.ActionBookingUpdateStatus
	if caller.Role == identity.RoleFarmer {
		action = authorization.ActionBookingCancel
		if to != domain.BookingStatusCancelled {
			return domain.MachineBooking{}, authorization.ErrForbidden
		}
	}
	if err := s.authz.Authorize(ctx, caller, authorization.ObjectBooking, action); err != nil {
		return domain.MachineBooking{}, err
	}

	booking, err := s.repo.FindByID(ctx, s.db, bookingID)
	if err != nil {
		return domain.MachineBooking{}, err
	}
	if booking == nil {
		return domain.MachineBooking{}, domain.ErrNotFound
	}
	if ok, err := s.canManage(ctx, caller, booking); err != nil {
		return domain.MachineBooking{}, err
	} else if !ok {
		return domain.MachineBooking{}, domain.ErrNotFound
	}

	if !domain.CanTransition(booking.Status, to) {
		return domain.MachineBooking{}, domain.ErrInvalidTransition
	}

	now := s.clock.Now()
	affected, err := s.repo.UpdateStatus(ctx, s.db, booking.ID, booking.Status, to, now)
	if err != nil {
		return domain.MachineBooking{}, err
	}
	if affected == 0 {
		return domain.MachineBooking{}, domain.ErrInvalidTransition
	}

	s.log.Info("booking status updated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("from", string(booking.Status)),
		zap.String("to", string(to)),
	)
	booking.Status = to
	booking.UpdatedAt = now
	return *booking, nil
}

func (s *Service) RecentForFarmer(ctx context.Context, farmerID snowflake.ID, limit int) ([]domain.MachineBooking, error) {
	items, err := s.repo.ListByFarmer(ctx, s.db, farmerID, domain.ListBookingFilter{}, pagination.Pagination{PageSize: limit})
	if err != nil {
		return nil, err
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return s.keepValid(items), nil
}

func (s *Service) canManage(ctx context.Context, caller identity.Caller, booking *domain.MachineBooking) (bool, error) {
	switch caller.Role {
	case identity.RoleFarmer:
		farmer, err := s.farmers.FindByProfile(ctx, caller.ProfileID)
		if err != nil {
			return false, err
		}
		return farmer != nil && farmer.ID == booking.FarmerID, nil
	case identity.RolePanchayatAdmin:
		return caller.PanchayatID == 0 || caller.PanchayatID == booking.PanchayatID, nil
	default:
		return false, nil
	}
}

func (s *Service) quote(machineType domain.MachineType, mode domain.PricingMode, duration int) (domain.Quote, error) {
	hourly, daily, err := s.rates.Get().Lookup(string(machineType)).Parse()
	if err != nil {
		s.log.Error("machine rate misconfigured",
			zap.String("machine_type", string(machineType)),
			zap.Error(err),
		)
		return domain.Quote{PricingMode: mode, Duration: duration, Cost: decimal.Zero}, domain.ErrInvalidRate
	}
	return domain.CalculateCost(mode, duration, domain.Rates{Hourly: hourly, Daily: daily})
}

func (s *Service) keepValid(items []*domain.MachineBooking) []domain.MachineBooking {
	out := make([]domain.MachineBooking, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			s.log.Warn("booking quarantined",
				zap.String("booking_id", item.ID.String()),
				zap.Error(err),
			)
			continue
		}
		out = append(out, *item)
	}
	return out
}

func (s *Service) authorize(ctx context.Context, action string) (identity.Caller, error) {
	caller, err := identity.MustCaller(ctx)
	if err != nil {
		return identity.Caller{}, err
	}
	if err := s.authz.Authorize(ctx, caller, authorization.ObjectBooking, action); err != nil {
		return identity.Caller{}, err
	}
	return caller, nil
}

func parseMachine(machine, pricingMode string) (domain.MachineType, domain.PricingMode, error) {
	machineType, ok := domain.ParseMachineType(machine)
	if !ok {
		return "", "", domain.ErrInvalidMachineType
	}
	mode, ok := domain.ParsePricingMode(pricingMode)
	if !ok {
		return "", "", domain.ErrInvalidPricingMode
	}
	return machineType, mode, nil
}

// parseBookingDate accepts a calendar date that is today or later in UTC.
func parseBookingDate(value string, now time.Time) (time.Time, error) {
	date, err := time.Parse(bookingDateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, domain.ErrInvalidBookingDate
	}
	today := now.UTC().Truncate(24 * time.Hour)
	if date.Before(today) {
		return time.Time{}, domain.ErrInvalidBookingDate
	}
	return date, nil
}
