package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrimarket/internal/authorization"
	"github.com/smallbiznis/agrimarket/internal/clock"
	"github.com/smallbiznis/agrimarket/internal/farmer/domain"
	"github.com/smallbiznis/agrimarket/internal/identity"
	panchayatdomain "github.com/smallbiznis/agrimarket/internal/panchayat/domain"
	"github.com/smallbiznis/agrimarket/pkg/db"
	"github.com/smallbiznis/agrimarket/pkg/sealer"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	phonePattern  = regexp.MustCompile(`^(\+91)?[6-9][0-9]{9}$`)
	payoutPattern = regexp.MustCompile(`^([0-9]{9,18}|[a-zA-Z0-9._-]{2,256}@[a-zA-Z]{2,64})$`)
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Authz         authorization.Service
	Repo          domain.Repository
	PanchayatRepo panchayatdomain.Repository
	Sealer        *sealer.Sealer `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	authz         authorization.Service
	repo          domain.Repository
	panchayatRepo panchayatdomain.Repository
	sealer        *sealer.Sealer
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("farmer.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		authz:         p.Authz,
		repo:          p.Repo,
		panchayatRepo: p.PanchayatRepo,
		sealer:        p.Sealer,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterFarmerRequest) (domain.Farmer, error) {
	caller, err := s.authorize(ctx)
	if err != nil {
		return domain.Farmer{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 120 {
		return domain.Farmer{}, domain.ErrInvalidName
	}
	phone := strings.ReplaceAll(strings.TrimSpace(req.Phone), " ", "")
	if !phonePattern.MatchString(phone) {
		return domain.Farmer{}, domain.ErrInvalidPhone
	}
	panchayatID, err := snowflake.ParseString(strings.TrimSpace(req.PanchayatID))
	if err != nil || panchayatID == 0 {
		return domain.Farmer{}, domain.ErrInvalidPanchayat
	}

	panchayat, err := s.panchayatRepo.FindByID(ctx, s.db, panchayatID)
	if err != nil {
		return domain.Farmer{}, err
	}
	if panchayat == nil {
		return domain.Farmer{}, domain.ErrInvalidPanchayat
	}

	now := s.clock.Now()
	farmer := domain.Farmer{
		ID:          s.genID.Generate(),
		ProfileID:   caller.ProfileID,
		PanchayatID: panchayatID,
		Name:        name,
		Phone:       phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if account := strings.TrimSpace(req.PayoutAccount); account != "" {
		if !payoutPattern.MatchString(account) {
			return domain.Farmer{}, domain.ErrInvalidPayoutAccount
		}
		if s.sealer == nil {
			return domain.Farmer{}, domain.ErrPayoutSealerUnavailable
		}
		sealed, err := s.sealer.Seal(account, caller.ProfileID)
		if err != nil {
			return domain.Farmer{}, err
		}
		farmer.PayoutAccountSealed = sealed
		farmer.PayoutAccountLast4 = sealer.Last4(account)
	}

	if err := s.repo.Insert(ctx, s.db, &farmer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Farmer{}, domain.ErrAlreadyRegistered
		}
		return domain.Farmer{}, err
	}

	s.log.Info("farmer registered",
		zap.String("farmer_id", farmer.ID.String()),
		zap.String("panchayat_id", panchayatID.String()),
	)
	return farmer, nil
}

func (s *Service) Me(ctx context.Context) (domain.Farmer, error) {
	caller, err := s.authorize(ctx)
	if err != nil {
		return domain.Farmer{}, err
	}
	farmer, err := s.repo.FindByProfileID(ctx, s.db, caller.ProfileID)
	if err != nil {
		return domain.Farmer{}, err
	}
	if farmer == nil {
		return domain.Farmer{}, domain.ErrProfileNotFound
	}
	return *farmer, nil
}

func (s *Service) FindByProfile(ctx context.Context, profileID string) (*domain.Farmer, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, nil
	}
	return s.repo.FindByProfileID(ctx, s.db, profileID)
}

func (s *Service) authorize(ctx context.Context) (identity.Caller, error) {
	caller, err := identity.MustCaller(ctx)
	if err != nil {
		return identity.Caller{}, err
	}
	if err := s.authz.Authorize(ctx, caller, authorization.ObjectFarmerProfile, authorization.ActionFarmerProfileManage); err != nil {
		return identity.Caller{}, err
	}
	return caller, nil
}
