package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/agrimarket/internal/authorization"
	"github.com/smallbiznis/agrimarket/internal/bulkpurchase/domain"
	"github.com/smallbiznis/agrimarket/internal/clock"
	"github.com/smallbiznis/agrimarket/internal/identity"
	listingdomain "github.com/smallbiznis/agrimarket/internal/listing/domain"
	"github.com/smallbiznis/agrimarket/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/agrimarket/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const referencePrefix = "BP-"

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Authz       authorization.Service
	Repo        domain.Repository
	ListingRepo listingdomain.Repository
	PaymentRepo paymentdomain.Repository
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	authz       authorization.Service
	repo        domain.Repository
	listingRepo listingdomain.Repository
	paymentRepo paymentdomain.Repository
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("bulkpurchase.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		authz:       p.Authz,
		repo:        p.Repo,
		listingRepo: p.ListingRepo,
		paymentRepo: p.PaymentRepo,
		metrics:     p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateBulkPurchaseRequest) (domain.Detail, error) {
	caller, err := s.authorize(ctx, authorization.ActionBulkPurchaseCreate)
	if err != nil {
		return domain.Detail{}, err
	}

	listingIDs, err := parseListingIDs(req.ListingIDs)
	if err != nil {
		return domain.Detail{}, err
	}

	var negotiated *decimal.Decimal
	if value := strings.TrimSpace(req.NegotiatedPricePerTon); value != "" {
		price, err := decimal.NewFromString(value)
		if err != nil || !price.IsPositive() || !price.Equal(price.Round(domain.PriceScale)) {
			return domain.Detail{}, domain.ErrInvalidNegotiatedPrice
		}
		negotiated = &price
	}

	var detail domain.Detail
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listings, err := s.listingRepo.FindByIDs(ctx, tx, listingIDs, true)
		if err != nil {
			return err
		}
		if len(listings) != len(listingIDs) {
			return domain.ErrListingUnavailable
		}

		panchayatID := listings[0].PanchayatID
		lines := make([]domain.PlanLine, 0, len(listings))
		for _, listing := range listings {
			if err := listing.Validate(); err != nil {
				s.log.Warn("listing quarantined",
					zap.String("listing_id", listing.ID.String()),
					zap.Error(err),
				)
				return domain.ErrListingUnavailable
			}
			if listing.Status != listingdomain.ListingAvailable {
				return domain.ErrListingUnavailable
			}
			if listing.PanchayatID != panchayatID {
				return domain.ErrMixedPanchayat
			}
			lines = append(lines, domain.PlanLine{
				ListingID:    listing.ID,
				FarmerID:     listing.FarmerID,
				QuantityTons: listing.QuantityTons,
				PricePerTon:  listing.PricePerTon,
			})
		}

		plan, err := domain.BuildPlan(lines, negotiated)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		for _, line := range plan.Lines {
			affected, err := s.listingRepo.UpdateStatus(ctx, tx, line.ListingID, listingdomain.ListingAvailable, listingdomain.ListingSold, now)
			if err != nil {
				return err
			}
			if affected == 0 {
				return domain.ErrListingUnavailable
			}
		}

		purchase := domain.BulkPurchase{
			ID:                 s.genID.Generate(),
			Reference:          referencePrefix + ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
			BuyerProfileID:     caller.ProfileID,
			PanchayatID:        panchayatID,
			TotalQuantityTons:  plan.TotalQuantityTons,
			TotalAmount:        plan.TotalAmount,
			AveragePricePerTon: plan.AveragePricePerTon,
			CreatedAt:          now,
		}
		if err := s.repo.Insert(ctx, tx, &purchase); err != nil {
			return err
		}

		rows := make([]*paymentdomain.PaymentDistribution, 0, len(plan.Lines))
		quantities := make([]decimal.Decimal, 0, len(plan.Lines))
		for _, line := range plan.Lines {
			rows = append(rows, &paymentdomain.PaymentDistribution{
				ID:             s.genID.Generate(),
				FarmerID:       line.FarmerID,
				ListingID:      line.ListingID,
				BulkPurchaseID: purchase.ID,
				QuantityTons:   line.QuantityTons,
				PricePerTon:    line.PricePerTon,
				PaymentAmount:  line.Amount(),
				PaymentStatus:  paymentdomain.PaymentPending,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
			quantities = append(quantities, line.QuantityTons)
		}
		if err := s.paymentRepo.InsertBatch(ctx, tx, rows); err != nil {
			return err
		}

		if err := domain.VerifyQuantity(purchase.TotalQuantityTons, quantities); err != nil {
			return err
		}

		detail = domain.Detail{BulkPurchase: purchase, Distributions: derefAll(rows)}
		return nil
	})
	if err != nil {
		if isDomainErr(err) {
			return domain.Detail{}, err
		}
		return domain.Detail{}, fmt.Errorf("create bulk purchase: %w", err)
	}

	s.metrics.RecordBulkPurchase(ctx, detail.TotalAmount.InexactFloat64())
	s.log.Info("bulk purchase created",
		zap.String("bulk_purchase_id", detail.ID.String()),
		zap.String("reference", detail.Reference),
		zap.Int("listings", len(detail.Distributions)),
		zap.String("total_amount", detail.TotalAmount.String()),
	)
	return detail, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Detail, error) {
	caller, err := s.authorize(ctx, authorization.ActionBulkPurchaseView)
	if err != nil {
		return domain.Detail{}, err
	}

	purchaseID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || purchaseID == 0 {
		return domain.Detail{}, domain.ErrInvalidID
	}

	purchase, err := s.repo.FindByID(ctx, s.db, purchaseID)
	if err != nil {
		return domain.Detail{}, err
	}
	if purchase == nil || !canView(caller, purchase) {
		return domain.Detail{}, domain.ErrNotFound
	}

	rows, err := s.paymentRepo.ListByBulkPurchases(ctx, s.db, []snowflake.ID{purchase.ID})
	if err != nil {
		return domain.Detail{}, err
	}
	return domain.Detail{BulkPurchase: *purchase, Distributions: derefAll(rows)}, nil
}

func (s *Service) Reconcile(ctx context.Context, since time.Time, limit int) (domain.ReconcileResult, error) {
	purchases, err := s.repo.ListCreatedSince(ctx, s.db, since, limit)
	if err != nil {
		return domain.ReconcileResult{}, fmt.Errorf("list bulk purchases: %w", err)
	}
	if len(purchases) == 0 {
		return domain.ReconcileResult{}, nil
	}

	ids := make([]snowflake.ID, 0, len(purchases))
	for _, purchase := range purchases {
		ids = append(ids, purchase.ID)
	}
	rows, err := s.paymentRepo.ListByBulkPurchases(ctx, s.db, ids)
	if err != nil {
		return domain.ReconcileResult{}, fmt.Errorf("list payment distributions: %w", err)
	}

	quantities := make(map[snowflake.ID][]decimal.Decimal, len(purchases))
	for _, row := range rows {
		quantities[row.BulkPurchaseID] = append(quantities[row.BulkPurchaseID], row.QuantityTons)
	}

	result := domain.ReconcileResult{Checked: len(purchases)}
	for _, purchase := range purchases {
		qs := quantities[purchase.ID]
		if err := domain.VerifyQuantity(purchase.TotalQuantityTons, qs); err != nil {
			distributed := decimal.Sum(decimal.Zero, qs...)
			s.log.Error("bulk purchase quantity invariant violated",
				zap.String("bulk_purchase_id", purchase.ID.String()),
				zap.String("total_quantity_tons", purchase.TotalQuantityTons.String()),
				zap.String("distributed_quantity_tons", distributed.String()),
			)
			result.Violations = append(result.Violations, domain.Violation{
				BulkPurchaseID:    purchase.ID,
				TotalQuantityTons: purchase.TotalQuantityTons.String(),
				Distributed:       distributed.String(),
			})
		}
	}
	return result, nil
}

func (s *Service) authorize(ctx context.Context, action string) (identity.Caller, error) {
	caller, err := identity.MustCaller(ctx)
	if err != nil {
		return identity.Caller{}, err
	}
	if err := s.authz.Authorize(ctx, caller, authorization.ObjectBulkPurchase, action); err != nil {
		return identity.Caller{}, err
	}
	return caller, nil
}

func canView(caller identity.Caller, purchase *domain.BulkPurchase) bool {
	switch caller.Role {
	case identity.RoleBuyer:
		return purchase.BuyerProfileID == caller.ProfileID
	case identity.RolePanchayatAdmin:
		return caller.PanchayatID == 0 || caller.PanchayatID == purchase.PanchayatID
	default:
		return false
	}
}

func parseListingIDs(values []string) ([]snowflake.ID, error) {
	if len(values) == 0 {
		return nil, domain.ErrNoListings
	}
	seen := make(map[snowflake.ID]struct{}, len(values))
	ids := make([]snowflake.ID, 0, len(values))
	for _, value := range values {
		id, err := snowflake.ParseString(strings.TrimSpace(value))
		if err != nil || id == 0 {
			return nil, domain.ErrInvalidListingID
		}
		if _, ok := seen[id]; ok {
			return nil, domain.ErrDuplicateListing
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func derefAll(rows []*paymentdomain.PaymentDistribution) []paymentdomain.PaymentDistribution {
	out := make([]paymentdomain.PaymentDistribution, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out
}

func isDomainErr(err error) bool {
	for _, target := range []error{
		domain.ErrListingUnavailable,
		domain.ErrMixedPanchayat,
		domain.ErrQuantityMismatch,
		domain.ErrInvalidQuantity,
		domain.ErrInvalidPrice,
		domain.ErrNoListings,
		domain.ErrInvalidNegotiatedPrice,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
