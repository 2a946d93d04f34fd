package authorization

import (
	"context"
	"testing"

	"github.com/smallbiznis/agrimarket/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	enforcer, err := NewMemoryEnforcer()
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAuthorizeByRole(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	farmer := identity.Caller{ProfileID: "f-1", Role: identity.RoleFarmer}
	buyer := identity.Caller{ProfileID: "b-1", Role: identity.RoleBuyer}
	admin := identity.Caller{ProfileID: "a-1", Role: identity.RolePanchayatAdmin}

	assert.NoError(t, svc.Authorize(ctx, farmer, ObjectBooking, ActionBookingCreate))
	assert.NoError(t, svc.Authorize(ctx, buyer, ObjectBulkPurchase, ActionBulkPurchaseCreate))
	assert.NoError(t, svc.Authorize(ctx, admin, ObjectPayment, ActionPaymentSettle))

	assert.ErrorIs(t, svc.Authorize(ctx, farmer, ObjectPayment, ActionPaymentSettle), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, buyer, ObjectBooking, ActionBookingCreate), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, admin, ObjectBulkPurchase, ActionBulkPurchaseCreate), ErrForbidden)
}

func TestAuthorizeRejectsMalformedInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, identity.Caller{Role: identity.RoleFarmer}, ObjectBooking, ActionBookingView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, identity.Caller{ProfileID: "x", Role: "root"}, ObjectBooking, ActionBookingView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, identity.Caller{ProfileID: "x", Role: identity.RoleFarmer}, "", ActionBookingView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, identity.Caller{ProfileID: "x", Role: identity.RoleFarmer}, ObjectBooking, " "), ErrInvalidAction)
}

func TestSeedPoliciesIsIdempotent(t *testing.T) {
	enforcer, err := NewMemoryEnforcer()
	require.NoError(t, err)

	before, err := enforcer.GetPolicy()
	require.NoError(t, err)
	require.NoError(t, seedPolicies(enforcer))
	after, err := enforcer.GetPolicy()
	require.NoError(t, err)

	assert.Equal(t, len(before), len(after))
}
