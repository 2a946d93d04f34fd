package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/agrimarket/internal/auth"
	bookingrepo "github.com/smallbiznis/agrimarket/internal/booking/repository"
	bookingservice "github.com/smallbiznis/agrimarket/internal/booking/service"
	bulkdomain "github.com/smallbiznis/agrimarket/internal/bulkpurchase/domain"
	"github.com/smallbiznis/agrimarket/internal/config"
	dashboarddomain "github.com/smallbiznis/agrimarket/internal/dashboard/domain"
	farmerrepo "github.com/smallbiznis/agrimarket/internal/farmer/repository"
	farmerservice "github.com/smallbiznis/agrimarket/internal/farmer/service"
	"github.com/smallbiznis/agrimarket/internal/identity"
	listingdomain "github.com/smallbiznis/agrimarket/internal/listing/domain"
	panchayatrepo "github.com/smallbiznis/agrimarket/internal/panchayat/repository"
	paymentdomain "github.com/smallbiznis/agrimarket/internal/payment/domain"
	"github.com/smallbiznis/agrimarket/internal/ratelimit"
	"github.com/smallbiznis/agrimarket/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubDashboard struct {
	resp dashboarddomain.Dashboard
	err  error
}

func (s stubDashboard) FarmerDashboard(context.Context) (dashboarddomain.Dashboard, error) {
	return s.resp, s.err
}

type stubPayments struct {
	paymentdomain.Service
	err error
}

func (s stubPayments) MarkPaid(context.Context, string) (paymentdomain.PaymentDistribution, error) {
	return paymentdomain.PaymentDistribution{}, s.err
}

type testServer struct {
	env    *testutil.Env
	engine *gin.Engine
	tokens *auth.TokenService
}

func newTestServer(t *testing.T, dashboard dashboarddomain.Service, payments paymentdomain.Service) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := testutil.NewEnv(t)
	tokens, err := auth.NewTokenService(auth.Config{Secret: "test-secret", Issuer: "agrimarket"}, env.Clock)
	require.NoError(t, err)

	farmers := farmerservice.New(farmerservice.Params{
		DB:            env.DB,
		Log:           env.Log,
		GenID:         env.Node,
		Clock:         env.Clock,
		Authz:         env.Authz,
		Repo:          farmerrepo.Provide(),
		PanchayatRepo: panchayatrepo.Provide(),
	})
	bookings := bookingservice.New(bookingservice.Params{
		DB:      env.DB,
		Log:     env.Log,
		GenID:   env.Node,
		Clock:   env.Clock,
		Authz:   env.Authz,
		Repo:    bookingrepo.Provide(),
		Farmers: farmers,
		Rates:   config.NewStaticRates(config.RatesConfig{Default: config.RateConfig{Hourly: "800", Daily: "5000"}}),
	})

	engine := NewEngine(zap.NewNop(), nil)
	NewServer(ServerParams{
		Gin:          engine,
		Log:          zap.NewNop(),
		Tokens:       tokens,
		FarmerSvc:    farmers,
		BookingSvc:   bookings,
		DashboardSvc: dashboard,
		PaymentSvc:   payments,
	})
	return &testServer{env: env, engine: engine, tokens: tokens}
}

func (ts *testServer) token(t *testing.T, caller identity.Caller) string {
	t.Helper()
	token, err := ts.tokens.Issue(caller)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthIsPublic(t *testing.T) {
	ts := newTestServer(t, stubDashboard{}, stubPayments{})

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	ts := newTestServer(t, stubDashboard{}, stubPayments{})

	rec := ts.do(t, http.MethodGet, "/api/farmer/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Type)

	rec = ts.do(t, http.MethodGet, "/api/farmer/dashboard", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := auth.NewTokenService(auth.Config{Secret: "other-secret", Issuer: "agrimarket"}, ts.env.Clock)
	require.NoError(t, err)
	forged, err := other.Issue(identity.Caller{ProfileID: "profile-1", Role: identity.RoleFarmer})
	require.NoError(t, err)
	rec = ts.do(t, http.MethodGet, "/api/farmer/dashboard", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	ts := newTestServer(t, stubDashboard{}, stubPayments{})
	token := ts.token(t, identity.Caller{ProfileID: "profile-1", Role: identity.RoleFarmer})

	ts.env.Clock.Advance(25 * time.Hour)
	rec := ts.do(t, http.MethodGet, "/api/farmer/dashboard", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardWithoutProfileIsUninitialized(t *testing.T) {
	ts := newTestServer(t, stubDashboard{resp: dashboarddomain.Dashboard{}}, stubPayments{})
	token := ts.token(t, identity.Caller{ProfileID: "profile-9", Role: identity.RoleFarmer})

	rec := ts.do(t, http.MethodGet, "/api/farmer/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Initialized bool `json:"initialized"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Initialized)
}

func TestQuoteBooking(t *testing.T) {
	ts := newTestServer(t, stubDashboard{}, stubPayments{})
	token := ts.token(t, identity.Caller{ProfileID: "profile-1", Role: identity.RoleFarmer})

	rec := ts.do(t, http.MethodPost, "/api/bookings/quote", token, gin.H{
		"machine_type": "happy_seeder",
		"pricing_mode": "hourly",
		"duration":     3,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Cost          string `json:"cost"`
			DurationHours int    `json:"duration_hours"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2400", resp.Data.Cost)
	assert.Equal(t, 3, resp.Data.DurationHours)
}

func TestQuoteBookingOutOfRangeIsValidationError(t *testing.T) {
	ts := newTestServer(t, stubDashboard{}, stubPayments{})
	token := ts.token(t, identity.Caller{ProfileID: "profile-1", Role: identity.RoleFarmer})

	rec := ts.do(t, http.MethodPost, "/api/bookings/quote", token, gin.H{
		"machine_type": "happy_seeder",
		"pricing_mode": "hourly",
		"duration":     13,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_duration", payload.Errors[0].Code)
	assert.Equal(t, "duration", payload.Errors[0].Field)
}

func TestCreateAndCancelBooking(t *testing.T) {
	ts := newTestServer(t, stubDashboard{}, stubPayments{})
	panchayat := ts.env.SeedPanchayat(t, "bhadaur")
	ts.env.SeedFarmer(t, "profile-1", panchayat.ID)
	token := ts.token(t, identity.Caller{ProfileID: "profile-1", Role: identity.RoleFarmer})

	rec := ts.do(t, http.MethodPost, "/api/bookings", token, gin.H{
		"machine_type": "baler",
		"pricing_mode": "daily",
		"duration":     2,
		"booking_date": "2026-10-02",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data struct {
			ID            string `json:"id"`
			Cost          string `json:"cost"`
			DurationHours int    `json:"duration_hours"`
			Status        string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "10000", created.Data.Cost)
	assert.Equal(t, 16, created.Data.DurationHours)
	assert.Equal(t, "pending", created.Data.Status)

	path := fmt.Sprintf("/api/bookings/%s/status", created.Data.ID)
	rec = ts.do(t, http.MethodPost, path, token, gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, path, token, gin.H{"status": "cancelled"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, path, token, gin.H{"status": "cancelled"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateBookingWithoutProfileIsConflict(t *testing.T) {
	ts := newTestServer(t, stubDashboard{}, stubPayments{})
	token := ts.token(t, identity.Caller{ProfileID: "profile-404", Role: identity.RoleFarmer})

	rec := ts.do(t, http.MethodPost, "/api/bookings", token, gin.H{
		"machine_type": "baler",
		"pricing_mode": "daily",
		"duration":     1,
		"booking_date": "2026-10-02",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMalformedBodyIsInvalidRequest(t *testing.T) {
	ts := newTestServer(t, stubDashboard{}, stubPayments{})
	token := ts.token(t, identity.Caller{ProfileID: "profile-1", Role: identity.RoleFarmer})

	req := httptest.NewRequest(http.MethodPost, "/api/bookings/quote", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rec).Errors[0].Code)
}

func TestSettlementErrorsAreMapped(t *testing.T) {
	ts := newTestServer(t, stubDashboard{}, stubPayments{err: paymentdomain.ErrInvalidTransition})
	token := ts.token(t, identity.Caller{ProfileID: "admin-1", Role: identity.RolePanchayatAdmin})

	rec := ts.do(t, http.MethodPost, "/api/payments/123/mark-paid", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	ts := newTestServer(t, stubDashboard{}, stubPayments{})

	rec := ts.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Type)
}

func TestRateLimitedSetsRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := NewEngine(zap.NewNop(), nil)
	engine.GET("/limited", func(c *gin.Context) {
		AbortWithError(c, &ratelimit.LimitError{RetryAfter: 1500 * time.Millisecond})
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/limited", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"no caller", identity.ErrNoCaller, http.StatusUnauthorized, "unauthorized"},
		{"listing transition", listingdomain.ErrInvalidStatusTransition, http.StatusConflict, "conflict"},
		{"listing not found", listingdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"wrapped validation", fmt.Errorf("create: %w", listingdomain.ErrInvalidQuantity), http.StatusBadRequest, "validation_error"},
		{"rate limited", ratelimit.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.kind, payload.Type)
		})
	}
}

func TestMapErrorUsesSentinelCodeForWrappedValidation(t *testing.T) {
	cases := []struct {
		err   error
		code  string
		field string
	}{
		{fmt.Errorf("listing 1: %w", bulkdomain.ErrInvalidQuantity), "invalid_quantity", "quantity"},
		{fmt.Errorf("plan: %w", fmt.Errorf("listing 7: %w", bulkdomain.ErrMixedPanchayat)), "mixed_panchayat", "listing_ids"},
		{fmt.Errorf("negotiated 10.12345: %w", bulkdomain.ErrInvalidNegotiatedPrice), "invalid_negotiated_price", "negotiated_price"},
	}
	for _, tc := range cases {
		status, payload := mapError(tc.err)
		assert.Equal(t, http.StatusBadRequest, status)
		require.Len(t, payload.Errors, 1)
		assert.Equal(t, tc.code, payload.Errors[0].Code)
		assert.Equal(t, tc.field, payload.Errors[0].Field)
		assert.NotContains(t, payload.Errors[0].Message, ":")
	}
}

func TestRegisterGinReleaseModeInProduction(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	gin.SetMode(gin.TestMode)
	registerGin(config.Config{Environment: "development"}, zap.NewNop(), nil)
	assert.Equal(t, gin.TestMode, gin.Mode())

	registerGin(config.Config{Environment: " Production "}, zap.NewNop(), nil)
	assert.Equal(t, gin.ReleaseMode, gin.Mode())
}
