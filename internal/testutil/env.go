// Package testutil wires the shared pieces service tests need: a migrated
// in-memory database, an id generator, a fake clock and the seeded casbin
// policies.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/agrimarket/internal/authorization"
	"github.com/smallbiznis/agrimarket/internal/clock"
	farmerdomain "github.com/smallbiznis/agrimarket/internal/farmer/domain"
	"github.com/smallbiznis/agrimarket/internal/identity"
	listingdomain "github.com/smallbiznis/agrimarket/internal/listing/domain"
	"github.com/smallbiznis/agrimarket/internal/migration"
	panchayatdomain "github.com/smallbiznis/agrimarket/internal/panchayat/domain"
	"github.com/smallbiznis/agrimarket/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Epoch is the fake clock's starting time.
var Epoch = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

type Env struct {
	DB    *gorm.DB
	Log   *zap.Logger
	Node  *snowflake.Node
	Clock *clock.FakeClock
	Authz authorization.Service
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	enforcer, err := authorization.NewMemoryEnforcer()
	require.NoError(t, err)

	log := zap.NewNop()
	return &Env{
		DB:    conn,
		Log:   log,
		Node:  node,
		Clock: clock.NewFakeClock(Epoch),
		Authz: authorization.NewService(authorization.Params{Log: log, Enforcer: enforcer}),
	}
}

func (e *Env) As(role identity.Role, profileID string) context.Context {
	return identity.WithCaller(context.Background(), identity.Caller{ProfileID: profileID, Role: role})
}

func (e *Env) AsAdmin(profileID string, panchayatID snowflake.ID) context.Context {
	return identity.WithCaller(context.Background(), identity.Caller{
		ProfileID:   profileID,
		Role:        identity.RolePanchayatAdmin,
		PanchayatID: panchayatID,
	})
}

func (e *Env) SeedPanchayat(t *testing.T, name string) panchayatdomain.Panchayat {
	t.Helper()
	row := panchayatdomain.Panchayat{
		ID:        e.Node.Generate(),
		Name:      name,
		Code:      name,
		CreatedAt: e.Clock.Now(),
	}
	require.NoError(t, e.DB.Create(&row).Error)
	return row
}

func (e *Env) SeedFarmer(t *testing.T, profileID string, panchayatID snowflake.ID) farmerdomain.Farmer {
	t.Helper()
	now := e.Clock.Now()
	row := farmerdomain.Farmer{
		ID:          e.Node.Generate(),
		ProfileID:   profileID,
		PanchayatID: panchayatID,
		Name:        "Farmer " + profileID,
		Phone:       "9876543210",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, e.DB.Create(&row).Error)
	return row
}

func (e *Env) SeedListing(t *testing.T, farmer farmerdomain.Farmer, quantity, price string) listingdomain.CropResidueListing {
	t.Helper()
	now := e.Clock.Now()
	row := listingdomain.CropResidueListing{
		ID:           e.Node.Generate(),
		FarmerID:     farmer.ID,
		PanchayatID:  farmer.PanchayatID,
		CropType:     listingdomain.CropPaddyStraw,
		QuantityTons: decimal.RequireFromString(quantity),
		PricePerTon:  decimal.RequireFromString(price),
		Status:       listingdomain.ListingAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.DB.Create(&row).Error)
	return row
}
