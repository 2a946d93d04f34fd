package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/agrimarket/internal/authorization"
	"github.com/smallbiznis/agrimarket/internal/clock"
	farmerdomain "github.com/smallbiznis/agrimarket/internal/farmer/domain"
	"github.com/smallbiznis/agrimarket/internal/identity"
	"github.com/smallbiznis/agrimarket/internal/listing/domain"
	"github.com/smallbiznis/agrimarket/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Listing quantities and prices are stored with four decimal places.
const amountScale = 4

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Authz   authorization.Service
	Repo    domain.Repository
	Farmers farmerdomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	authz   authorization.Service
	repo    domain.Repository
	farmers farmerdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("listing.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		authz:   p.Authz,
		repo:    p.Repo,
		farmers: p.Farmers,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateListingRequest) (domain.CropResidueListing, error) {
	caller, err := s.authorize(ctx, authorization.ActionListingCreate)
	if err != nil {
		return domain.CropResidueListing{}, err
	}

	cropType, ok := domain.ParseCropType(req.CropType)
	if !ok {
		return domain.CropResidueListing{}, domain.ErrInvalidCropType
	}
	quantity, err := parsePositive(req.QuantityTons)
	if err != nil {
		return domain.CropResidueListing{}, domain.ErrInvalidQuantity
	}
	price, err := parsePositive(req.PricePerTon)
	if err != nil {
		return domain.CropResidueListing{}, domain.ErrInvalidPrice
	}

	farmer, err := s.farmers.FindByProfile(ctx, caller.ProfileID)
	if err != nil {
		return domain.CropResidueListing{}, err
	}
	if farmer == nil {
		return domain.CropResidueListing{}, domain.ErrFarmerProfileRequired
	}

	now := s.clock.Now()
	listing := domain.CropResidueListing{
		ID:           s.genID.Generate(),
		FarmerID:     farmer.ID,
		PanchayatID:  farmer.PanchayatID,
		CropType:     cropType,
		QuantityTons: quantity,
		PricePerTon:  price,
		Status:       domain.ListingAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if len(req.Metadata) > 0 {
		listing.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, &listing); err != nil {
		return domain.CropResidueListing{}, err
	}

	s.log.Info("listing created",
		zap.String("listing_id", listing.ID.String()),
		zap.String("farmer_id", farmer.ID.String()),
		zap.String("crop_type", string(cropType)),
	)
	return listing, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.CropResidueListing, error) {
	if _, err := s.authorize(ctx, authorization.ActionListingView); err != nil {
		return domain.CropResidueListing{}, err
	}

	listingID, err := parseID(id)
	if err != nil {
		return domain.CropResidueListing{}, err
	}
	listing, err := s.repo.FindByID(ctx, s.db, listingID)
	if err != nil {
		return domain.CropResidueListing{}, err
	}
	if listing == nil {
		return domain.CropResidueListing{}, domain.ErrNotFound
	}
	return *listing, nil
}

func (s *Service) List(ctx context.Context, req domain.ListListingRequest) (domain.ListListingResponse, error) {
	caller, err := s.authorize(ctx, authorization.ActionListingView)
	if err != nil {
		return domain.ListListingResponse{}, err
	}

	filter := domain.ListFilter{}
	if value := strings.TrimSpace(req.PanchayatID); value != "" {
		id, err := snowflake.ParseString(value)
		if err != nil || id == 0 {
			return domain.ListListingResponse{}, domain.ErrInvalidPanchayat
		}
		filter.PanchayatID = id
	}
	if caller.Role == identity.RolePanchayatAdmin && caller.PanchayatID != 0 {
		if filter.PanchayatID != 0 && filter.PanchayatID != caller.PanchayatID {
			return domain.ListListingResponse{}, authorization.ErrForbidden
		}
		filter.PanchayatID = caller.PanchayatID
	}
	if value := strings.TrimSpace(req.CropType); value != "" {
		cropType, ok := domain.ParseCropType(value)
		if !ok {
			return domain.ListListingResponse{}, domain.ErrInvalidCropType
		}
		filter.CropType = cropType
	}
	if value := strings.TrimSpace(req.Status); value != "" {
		status, ok := domain.ParseListingStatus(value)
		if !ok {
			return domain.ListListingResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListListingResponse{}, err
	}

	pageItems, info := pagination.BuildCursorPageInfo(items, page.Size(), func(l *domain.CropResidueListing) pagination.Cursor {
		return pagination.Cursor{
			ID:        l.ID.String(),
			CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	})

	out := make([]domain.CropResidueListing, 0, len(pageItems))
	for _, item := range pageItems {
		if err := item.Validate(); err != nil {
			s.log.Warn("listing quarantined",
				zap.String("listing_id", item.ID.String()),
				zap.Error(err),
			)
			continue
		}
		out = append(out, *item)
	}
	return domain.ListListingResponse{PageInfo: info, Listings: out}, nil
}

func (s *Service) Withdraw(ctx context.Context, id string) (domain.CropResidueListing, error) {
	caller, err := s.authorize(ctx, authorization.ActionListingWithdraw)
	if err != nil {
		return domain.CropResidueListing{}, err
	}

	listingID, err := parseID(id)
	if err != nil {
		return domain.CropResidueListing{}, err
	}
	farmer, err := s.farmers.FindByProfile(ctx, caller.ProfileID)
	if err != nil {
		return domain.CropResidueListing{}, err
	}
	if farmer == nil {
		return domain.CropResidueListing{}, domain.ErrFarmerProfileRequired
	}

	listing, err := s.repo.FindByID(ctx, s.db, listingID)
	if err != nil {
		return domain.CropResidueListing{}, err
	}
	if listing == nil || listing.FarmerID != farmer.ID {
		return domain.CropResidueListing{}, domain.ErrNotFound
	}
	if !domain.CanTransition(listing.Status, domain.ListingWithdrawn) {
		return domain.CropResidueListing{}, domain.ErrInvalidStatusTransition
	}

	now := s.clock.Now()
	affected, err := s.repo.UpdateStatus(ctx, s.db, listing.ID, domain.ListingAvailable, domain.ListingWithdrawn, now)
	if err != nil {
		return domain.CropResidueListing{}, err
	}
	if affected == 0 {
		return domain.CropResidueListing{}, domain.ErrInvalidStatusTransition
	}

	listing.Status = domain.ListingWithdrawn
	listing.UpdatedAt = now
	s.log.Info("listing withdrawn", zap.String("listing_id", listing.ID.String()))
	return *listing, nil
}

func (s *Service) authorize(ctx context.Context, action string) (identity.Caller, error) {
	caller, err := identity.MustCaller(ctx)
	if err != nil {
		return identity.Caller{}, err
	}
	if err := s.authz.Authorize(ctx, caller, authorization.ObjectListing, action); err != nil {
		return identity.Caller{}, err
	}
	return caller, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parsePositive(value string) (decimal.Decimal, error) {
	parsed, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, err
	}
	if !parsed.IsPositive() || !parsed.Equal(parsed.Round(amountScale)) {
		return decimal.Zero, domain.ErrInvalidQuantity
	}
	return parsed, nil
}
