package service

import (
	"testing"

	"github.com/smallbiznis/agrimarket/internal/authorization"
	"github.com/smallbiznis/agrimarket/internal/identity"
	"github.com/smallbiznis/agrimarket/internal/panchayat/domain"
	"github.com/smallbiznis/agrimarket/internal/panchayat/repository"
	"github.com/smallbiznis/agrimarket/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(env *testutil.Env) domain.Service {
	return New(Params{
		DB:    env.DB,
		Log:   env.Log,
		GenID: env.Node,
		Clock: env.Clock,
		Authz: env.Authz,
		Repo:  repository.Provide(),
	})
}

func TestCreateAndGet(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := newService(env)
	admin := env.As(identity.RolePanchayatAdmin, "admin-1")

	created, err := svc.Create(admin, domain.CreatePanchayatRequest{Name: " Kheri Kalan ", District: "Sangrur", State: "Punjab"})
	require.NoError(t, err)
	assert.Equal(t, "Kheri Kalan", created.Name)
	assert.Equal(t, "kheri-kalan-sangrur", created.Code)

	farmer := env.As(identity.RoleFarmer, "farmer-1")
	got, err := svc.GetByID(farmer, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	list, err := svc.List(farmer)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := newService(env)
	admin := env.As(identity.RolePanchayatAdmin, "admin-1")

	_, err := svc.Create(admin, domain.CreatePanchayatRequest{Name: "Bhadaur", District: "Barnala"})
	require.NoError(t, err)

	_, err = svc.Create(admin, domain.CreatePanchayatRequest{Name: "bhadaur", District: "BARNALA"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateRequiresAdmin(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := newService(env)

	_, err := svc.Create(env.As(identity.RoleFarmer, "farmer-1"), domain.CreatePanchayatRequest{Name: "Bhadaur"})
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	_, err = svc.Create(env.As(identity.RolePanchayatAdmin, "admin-1"), domain.CreatePanchayatRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestGetUnknown(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := newService(env)
	ctx := env.As(identity.RoleBuyer, "buyer-1")

	_, err := svc.GetByID(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.GetByID(ctx, "12345")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
