package statement

import (
	"context"
	"fmt"

	"github.com/smallbiznis/agrimarket/internal/authorization"
	"github.com/smallbiznis/agrimarket/internal/clock"
	"github.com/smallbiznis/agrimarket/internal/identity"
	paymentdomain "github.com/smallbiznis/agrimarket/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Statement struct {
	Filename string
	Content  []byte
}

type Service interface {
	FarmerStatement(context.Context) (Statement, error)
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Authz    authorization.Service
	Payments paymentdomain.Service
}

type service struct {
	log      *zap.Logger
	clock    clock.Clock
	authz    authorization.Service
	payments paymentdomain.Service
}

func NewService(p Params) Service {
	return &service{
		log:      p.Log.Named("statement.service"),
		clock:    p.Clock,
		authz:    p.Authz,
		payments: p.Payments,
	}
}

func (s *service) FarmerStatement(ctx context.Context) (Statement, error) {
	caller, err := identity.MustCaller(ctx)
	if err != nil {
		return Statement{}, err
	}
	if err := s.authz.Authorize(ctx, caller, authorization.ObjectPayment, authorization.ActionPaymentExport); err != nil {
		return Statement{}, err
	}

	history, err := s.payments.FarmerPayments(ctx)
	if err != nil {
		return Statement{}, err
	}

	now := s.clock.Now()
	content, err := Render(history.Payments, history.Summary, now)
	if err != nil {
		return Statement{}, fmt.Errorf("render statement: %w", err)
	}

	s.log.Info("statement exported", zap.Int("rows", len(history.Payments)))
	return Statement{
		Filename: fmt.Sprintf("payments-%s.xlsx", now.UTC().Format("20060102")),
		Content:  content,
	}, nil
}
