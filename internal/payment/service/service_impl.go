package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrimarket/internal/authorization"
	bulkdomain "github.com/smallbiznis/agrimarket/internal/bulkpurchase/domain"
	"github.com/smallbiznis/agrimarket/internal/clock"
	farmerdomain "github.com/smallbiznis/agrimarket/internal/farmer/domain"
	"github.com/smallbiznis/agrimarket/internal/identity"
	listingdomain "github.com/smallbiznis/agrimarket/internal/listing/domain"
	"github.com/smallbiznis/agrimarket/internal/observability/metrics"
	"github.com/smallbiznis/agrimarket/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const distributionTable = "farmer_payment_distributions"

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	Authz        authorization.Service
	Repo         domain.Repository
	Farmers      farmerdomain.Service
	ListingRepo  listingdomain.Repository
	PurchaseRepo bulkdomain.Repository
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	authz        authorization.Service
	repo         domain.Repository
	farmers      farmerdomain.Service
	listingRepo  listingdomain.Repository
	purchaseRepo bulkdomain.Repository
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("payment.service"),
		clock:        p.Clock,
		authz:        p.Authz,
		repo:         p.Repo,
		farmers:      p.Farmers,
		listingRepo:  p.ListingRepo,
		purchaseRepo: p.PurchaseRepo,
		metrics:      p.Metrics,
	}
}

func (s *Service) FarmerPayments(ctx context.Context) (domain.FarmerPayments, error) {
	caller, err := identity.MustCaller(ctx)
	if err != nil {
		return domain.FarmerPayments{}, err
	}
	if err := s.authz.Authorize(ctx, caller, authorization.ObjectPayment, authorization.ActionPaymentView); err != nil {
		return domain.FarmerPayments{}, err
	}

	farmer, err := s.farmers.FindByProfile(ctx, caller.ProfileID)
	if err != nil {
		return domain.FarmerPayments{}, err
	}
	if farmer == nil {
		return domain.FarmerPayments{
			Payments: []domain.JoinedDistribution{},
			Summary:  domain.Summarize(nil),
		}, nil
	}

	payments, err := s.ListByFarmer(ctx, farmer.ID)
	if err != nil {
		return domain.FarmerPayments{}, err
	}
	return domain.FarmerPayments{
		Initialized: true,
		Payments:    payments,
		Summary:     domain.Summarize(domain.Distributions(payments)),
	}, nil
}

func (s *Service) ListByFarmer(ctx context.Context, farmerID snowflake.ID) ([]domain.JoinedDistribution, error) {
	rows, err := s.repo.ListByFarmer(ctx, s.db, farmerID)
	if err != nil {
		return nil, err
	}

	j := newJoiner(s.db, s.listingRepo, s.purchaseRepo)
	out := make([]domain.JoinedDistribution, 0, len(rows))
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			s.log.Warn("payment distribution quarantined",
				zap.String("distribution_id", row.ID.String()),
				zap.Error(err),
			)
			s.metrics.RecordQuarantined(ctx, distributionTable, err.Error())
			continue
		}

		if expected := row.ExpectedAmount(); !row.PaymentAmount.Equal(expected) {
			s.log.Warn("payment amount mismatch, using recomputed value",
				zap.String("distribution_id", row.ID.String()),
				zap.String("stored", row.PaymentAmount.String()),
				zap.String("recomputed", expected.String()),
			)
			row.PaymentAmount = expected
		}

		joined, reason, err := j.join(ctx, *row)
		if err != nil {
			s.log.Warn("payment distribution excluded",
				zap.String("distribution_id", row.ID.String()),
				zap.String("reason", reason),
				zap.Error(err),
			)
			s.metrics.RecordPaymentExcluded(ctx, reason)
			continue
		}
		out = append(out, joined)
	}
	return domain.SortNewestFirst(out), nil
}

func (s *Service) MarkPaid(ctx context.Context, id string) (domain.PaymentDistribution, error) {
	return s.settle(ctx, id, domain.PaymentPaid)
}

func (s *Service) MarkFailed(ctx context.Context, id string) (domain.PaymentDistribution, error) {
	return s.settle(ctx, id, domain.PaymentFailed)
}

func (s *Service) settle(ctx context.Context, id string, to domain.PaymentStatus) (domain.PaymentDistribution, error) {
	caller, err := identity.MustCaller(ctx)
	if err != nil {
		return domain.PaymentDistribution{}, err
	}
	if err := s.authz.Authorize(ctx, caller, authorization.ObjectPayment, authorization.ActionPaymentSettle); err != nil {
		return domain.PaymentDistribution{}, err
	}

	distributionID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || distributionID == 0 {
		return domain.PaymentDistribution{}, domain.ErrInvalidID
	}

	var settled domain.PaymentDistribution
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.repo.FindByID(ctx, tx, distributionID)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.ErrNotFound
		}

		if caller.PanchayatID != 0 {
			purchase, err := s.purchaseRepo.FindByID(ctx, tx, row.BulkPurchaseID)
			if err != nil {
				return err
			}
			if purchase == nil || purchase.PanchayatID != caller.PanchayatID {
				return authorization.ErrForbidden
			}
		}

		if !domain.CanTransition(row.PaymentStatus, to) {
			return domain.ErrInvalidTransition
		}

		now := s.clock.Now()
		var paidAt *time.Time
		if to == domain.PaymentPaid {
			paidAt = &now
		}
		affected, err := s.repo.Settle(ctx, tx, row.ID, to, paidAt, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrInvalidTransition
		}

		row.PaymentStatus = to
		row.PaidAt = paidAt
		row.UpdatedAt = now
		settled = *row
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidTransition) && !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, authorization.ErrForbidden) {
			return domain.PaymentDistribution{}, fmt.Errorf("settle payment distribution: %w", err)
		}
		return domain.PaymentDistribution{}, err
	}

	s.metrics.RecordSettlement(ctx, string(to))
	s.log.Info("payment distribution settled",
		zap.String("distribution_id", settled.ID.String()),
		zap.String("status", string(to)),
	)
	return settled, nil
}
