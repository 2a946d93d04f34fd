package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/agrimarket/internal/authorization"
	bulkdomain "github.com/smallbiznis/agrimarket/internal/bulkpurchase/domain"
	bulkrepo "github.com/smallbiznis/agrimarket/internal/bulkpurchase/repository"
	farmerdomain "github.com/smallbiznis/agrimarket/internal/farmer/domain"
	farmerrepo "github.com/smallbiznis/agrimarket/internal/farmer/repository"
	farmerservice "github.com/smallbiznis/agrimarket/internal/farmer/service"
	"github.com/smallbiznis/agrimarket/internal/identity"
	listingdomain "github.com/smallbiznis/agrimarket/internal/listing/domain"
	listingrepo "github.com/smallbiznis/agrimarket/internal/listing/repository"
	panchayatrepo "github.com/smallbiznis/agrimarket/internal/panchayat/repository"
	"github.com/smallbiznis/agrimarket/internal/payment/domain"
	"github.com/smallbiznis/agrimarket/internal/payment/repository"
	"github.com/smallbiznis/agrimarket/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type fixture struct {
	env       *testutil.Env
	svc       domain.Service
	farmer    farmerdomain.Farmer
	listing   listingdomain.CropResidueListing
	purchase  bulkdomain.BulkPurchase
	panchayat snowflake.ID
	params    Params
}

func newFixture(t *testing.T, listingRepo listingdomain.Repository) *fixture {
	t.Helper()
	env := testutil.NewEnv(t)
	if listingRepo == nil {
		listingRepo = listingrepo.Provide()
	}
	farmers := farmerservice.New(farmerservice.Params{
		DB:            env.DB,
		Log:           env.Log,
		GenID:         env.Node,
		Clock:         env.Clock,
		Authz:         env.Authz,
		Repo:          farmerrepo.Provide(),
		PanchayatRepo: panchayatrepo.Provide(),
	})
	params := Params{
		DB:           env.DB,
		Log:          env.Log,
		Clock:        env.Clock,
		Authz:        env.Authz,
		Repo:         repository.Provide(),
		Farmers:      farmers,
		ListingRepo:  listingRepo,
		PurchaseRepo: bulkrepo.Provide(),
	}
	svc := New(params)

	panchayat := env.SeedPanchayat(t, "bhadaur")
	farmer := env.SeedFarmer(t, "profile-1", panchayat.ID)
	listing := env.SeedListing(t, farmer, "1", "1000")
	purchase := bulkdomain.BulkPurchase{
		ID:                 env.Node.Generate(),
		Reference:          "BP-1",
		BuyerProfileID:     "buyer-1",
		PanchayatID:        panchayat.ID,
		TotalQuantityTons:  decimal.NewFromInt(1),
		TotalAmount:        decimal.NewFromInt(1000),
		AveragePricePerTon: decimal.NewFromInt(1000),
		CreatedAt:          env.Clock.Now(),
	}
	require.NoError(t, env.DB.Create(&purchase).Error)

	return &fixture{env: env, svc: svc, farmer: farmer, listing: listing, purchase: purchase, panchayat: panchayat.ID, params: params}
}

func (f *fixture) seed(t *testing.T, status domain.PaymentStatus, qty, price, amount string) domain.PaymentDistribution {
	t.Helper()
	now := f.env.Clock.Now()
	row := domain.PaymentDistribution{
		ID:             f.env.Node.Generate(),
		FarmerID:       f.farmer.ID,
		ListingID:      f.listing.ID,
		BulkPurchaseID: f.purchase.ID,
		QuantityTons:   decimal.RequireFromString(qty),
		PricePerTon:    decimal.RequireFromString(price),
		PaymentAmount:  decimal.RequireFromString(amount),
		PaymentStatus:  status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, f.env.DB.Create(&row).Error)
	f.env.Clock.Advance(time.Minute)
	return row
}

// observe rebuilds the service on a logger that records Warn and above.
func (f *fixture) observe() *observer.ObservedLogs {
	core, logs := observer.New(zap.WarnLevel)
	f.params.Log = zap.New(core)
	f.svc = New(f.params)
	return logs
}

func TestListByFarmerAcceptsAmountsAtStorageScale(t *testing.T) {
	f := newFixture(t, nil)
	logs := f.observe()
	// 1.2345 x 1234.5678 = 1524.07394910, stored as numeric(18,4).
	f.seed(t, domain.PaymentPending, "1.2345", "1234.5678", "1524.0739")

	rows, err := f.svc.ListByFarmer(context.Background(), f.farmer.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1524.0739", rows[0].PaymentAmount.String())
	assert.Zero(t, logs.FilterMessage("payment amount mismatch, using recomputed value").Len())
}

func TestFarmerPaymentsSummary(t *testing.T) {
	f := newFixture(t, nil)
	older := f.seed(t, domain.PaymentPaid, "1", "1000", "1000")
	newer := f.seed(t, domain.PaymentPending, "0.5", "1000", "500")

	ctx := f.env.As(identity.RoleFarmer, "profile-1")
	result, err := f.svc.FarmerPayments(ctx)
	require.NoError(t, err)

	assert.True(t, result.Initialized)
	require.Len(t, result.Payments, 2)
	assert.Equal(t, newer.ID, result.Payments[0].ID)
	assert.Equal(t, older.ID, result.Payments[1].ID)
	assert.Equal(t, "BP-1", result.Payments[0].Purchase.Reference)
	assert.Equal(t, "paddy_straw", result.Payments[0].Listing.CropType)

	assert.Equal(t, "1000", result.Summary.TotalPaid.String())
	assert.Equal(t, "500", result.Summary.TotalPending.String())
	assert.Equal(t, 2, result.Summary.TransactionCount)
	assert.Equal(t, "750", result.Summary.AveragePerTransaction.String())

	again, err := f.svc.FarmerPayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.Summary, again.Summary)
}

func TestFarmerPaymentsWithoutProfile(t *testing.T) {
	f := newFixture(t, nil)

	result, err := f.svc.FarmerPayments(f.env.As(identity.RoleFarmer, "unregistered"))
	require.NoError(t, err)
	assert.False(t, result.Initialized)
	assert.Empty(t, result.Payments)
	assert.Equal(t, 0, result.Summary.TransactionCount)
	assert.True(t, result.Summary.AveragePerTransaction.IsZero())
}

func TestListByFarmerRecomputesAndQuarantines(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, domain.PaymentPending, "2", "1000", "1999")
	f.seed(t, domain.PaymentPending, "0", "1000", "0")

	rows, err := f.svc.ListByFarmer(context.Background(), f.farmer.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2000", rows[0].PaymentAmount.String())
}

func TestListByFarmerExcludesFailedJoins(t *testing.T) {
	f := newFixture(t, nil)
	kept := f.seed(t, domain.PaymentPaid, "1", "1000", "1000")

	orphan := f.seed(t, domain.PaymentPending, "1", "1000", "1000")
	require.NoError(t, f.env.DB.Model(&domain.PaymentDistribution{}).
		Where("id = ?", orphan.ID).
		Update("bulk_purchase_id", snowflake.ID(99)).Error)

	rows, err := f.svc.ListByFarmer(context.Background(), f.farmer.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, kept.ID, rows[0].ID)
}

type failingListings struct {
	listingdomain.Repository
	calls int
}

func (r *failingListings) FindByID(context.Context, *gorm.DB, snowflake.ID) (*listingdomain.CropResidueListing, error) {
	r.calls++
	return nil, errors.New("connection reset")
}

func TestListByFarmerMemoizesLookupFailures(t *testing.T) {
	listings := &failingListings{Repository: listingrepo.Provide()}
	f := newFixture(t, listings)
	f.seed(t, domain.PaymentPaid, "1", "1000", "1000")
	f.seed(t, domain.PaymentPending, "1", "1000", "1000")

	rows, err := f.svc.ListByFarmer(context.Background(), f.farmer.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 1, listings.calls)
}

func TestSettlementTransitions(t *testing.T) {
	f := newFixture(t, nil)
	pending := f.seed(t, domain.PaymentPending, "1", "1000", "1000")
	other := f.seed(t, domain.PaymentPending, "1", "1000", "1000")
	admin := f.env.AsAdmin("admin-1", f.panchayat)

	paid, err := f.svc.MarkPaid(admin, pending.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(f.env.Clock.Now()))

	_, err = f.svc.MarkPaid(admin, pending.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.svc.MarkFailed(admin, pending.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	failed, err := f.svc.MarkFailed(admin, other.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, failed.PaymentStatus)
	assert.Nil(t, failed.PaidAt)

	var stored domain.PaymentDistribution
	require.NoError(t, f.env.DB.First(&stored, "id = ?", other.ID).Error)
	assert.Equal(t, domain.PaymentFailed, stored.PaymentStatus)
}

func TestSettlementAuthorization(t *testing.T) {
	f := newFixture(t, nil)
	pending := f.seed(t, domain.PaymentPending, "1", "1000", "1000")

	_, err := f.svc.MarkPaid(f.env.As(identity.RoleFarmer, "profile-1"), pending.ID.String())
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	_, err = f.svc.MarkPaid(f.env.AsAdmin("admin-2", snowflake.ID(777)), pending.ID.String())
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	_, err = f.svc.MarkPaid(f.env.AsAdmin("admin-1", f.panchayat), "123")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.MarkPaid(f.env.AsAdmin("admin-1", f.panchayat), "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
