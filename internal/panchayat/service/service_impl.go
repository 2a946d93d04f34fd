package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/agrimarket/internal/authorization"
	"github.com/smallbiznis/agrimarket/internal/clock"
	"github.com/smallbiznis/agrimarket/internal/identity"
	"github.com/smallbiznis/agrimarket/internal/panchayat/domain"
	"github.com/smallbiznis/agrimarket/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Authz authorization.Service
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	authz authorization.Service
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("panchayat.service"),
		genID: p.GenID,
		clock: p.Clock,
		authz: p.Authz,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePanchayatRequest) (domain.Panchayat, error) {
	if err := s.authorize(ctx, authorization.ActionPanchayatCreate); err != nil {
		return domain.Panchayat{}, err
	}

	name := strings.TrimSpace(req.Name)
	code := slug.Make(strings.Join([]string{name, strings.TrimSpace(req.District)}, " "))
	if name == "" || code == "" {
		return domain.Panchayat{}, domain.ErrInvalidName
	}

	panchayat := domain.Panchayat{
		ID:        s.genID.Generate(),
		Name:      name,
		Code:      code,
		District:  strings.TrimSpace(req.District),
		State:     strings.TrimSpace(req.State),
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, &panchayat); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Panchayat{}, domain.ErrDuplicate
		}
		return domain.Panchayat{}, err
	}

	s.log.Info("panchayat created", zap.String("panchayat_id", panchayat.ID.String()), zap.String("code", code))
	return panchayat, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Panchayat, error) {
	if err := s.authorize(ctx, authorization.ActionPanchayatView); err != nil {
		return domain.Panchayat{}, err
	}

	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.Panchayat{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Panchayat{}, err
	}
	if item == nil {
		return domain.Panchayat{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Panchayat, error) {
	if err := s.authorize(ctx, authorization.ActionPanchayatView); err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Panchayat, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *Service) authorize(ctx context.Context, action string) error {
	caller, err := identity.MustCaller(ctx)
	if err != nil {
		return err
	}
	return s.authz.Authorize(ctx, caller, authorization.ObjectPanchayat, action)
}
