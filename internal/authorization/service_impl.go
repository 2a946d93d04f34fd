package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/smallbiznis/agrimarket/internal/identity"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectPanchayat     = "panchayat"
	ObjectFarmerProfile = "farmer_profile"
	ObjectListing       = "listing"
	ObjectBulkPurchase  = "bulk_purchase"
	ObjectPayment       = "payment"
	ObjectBooking       = "booking"
	ObjectDashboard     = "dashboard"
)

const (
	ActionPanchayatCreate = "panchayat.create"
	ActionPanchayatView   = "panchayat.view"

	ActionFarmerProfileManage = "farmer_profile.manage"

	ActionListingCreate   = "listing.create"
	ActionListingView     = "listing.view"
	ActionListingWithdraw = "listing.withdraw"

	ActionBulkPurchaseCreate = "bulk_purchase.create"
	ActionBulkPurchaseView   = "bulk_purchase.view"

	ActionPaymentView   = "payment.view"
	ActionPaymentExport = "payment.export"
	ActionPaymentSettle = "payment.settle"

	ActionBookingQuote        = "booking.quote"
	ActionBookingCreate       = "booking.create"
	ActionBookingView         = "booking.view"
	ActionBookingCancel       = "booking.cancel"
	ActionBookingUpdateStatus = "booking.update_status"

	ActionDashboardView = "dashboard.view"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer loads policies through the gorm adapter and seeds the role
// table. Seeding is idempotent.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

// NewMemoryEnforcer builds an enforcer with the seeded policies and no
// persistence.
func NewMemoryEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, caller identity.Caller, object string, action string) error {
	if strings.TrimSpace(caller.ProfileID) == "" {
		return ErrInvalidActor
	}
	if _, ok := identity.ParseRole(string(caller.Role)); !ok {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(caller.Subject(), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("profile_id", caller.ProfileID),
			zap.String("role", string(caller.Role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	farmer := "role:" + string(identity.RoleFarmer)
	buyer := "role:" + string(identity.RoleBuyer)
	admin := "role:" + string(identity.RolePanchayatAdmin)

	policies := [][]string{
		{farmer, ObjectPanchayat, ActionPanchayatView},
		{buyer, ObjectPanchayat, ActionPanchayatView},
		{admin, ObjectPanchayat, ActionPanchayatView},
		{admin, ObjectPanchayat, ActionPanchayatCreate},

		{farmer, ObjectFarmerProfile, ActionFarmerProfileManage},

		{farmer, ObjectListing, ActionListingCreate},
		{farmer, ObjectListing, ActionListingView},
		{farmer, ObjectListing, ActionListingWithdraw},
		{buyer, ObjectListing, ActionListingView},
		{admin, ObjectListing, ActionListingView},

		{buyer, ObjectBulkPurchase, ActionBulkPurchaseCreate},
		{buyer, ObjectBulkPurchase, ActionBulkPurchaseView},
		{admin, ObjectBulkPurchase, ActionBulkPurchaseView},

		{farmer, ObjectPayment, ActionPaymentView},
		{farmer, ObjectPayment, ActionPaymentExport},
		{admin, ObjectPayment, ActionPaymentSettle},

		{farmer, ObjectBooking, ActionBookingQuote},
		{farmer, ObjectBooking, ActionBookingCreate},
		{farmer, ObjectBooking, ActionBookingView},
		{farmer, ObjectBooking, ActionBookingCancel},
		{admin, ObjectBooking, ActionBookingView},
		{admin, ObjectBooking, ActionBookingUpdateStatus},

		{farmer, ObjectDashboard, ActionDashboardView},
	}

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
