package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/agrimarket/internal/clock"
	"github.com/smallbiznis/agrimarket/internal/config"
	"github.com/smallbiznis/agrimarket/internal/identity"
)

var (
	ErrMissingToken = errors.New("missing_token")
	ErrInvalidToken = errors.New("invalid_token")
	ErrNoSecret     = errors.New("auth secret is not configured")
)

const defaultTokenTTL = 24 * time.Hour

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

func ConfigFrom(cfg config.Config) Config {
	return Config{
		Secret: cfg.AuthJWTSecret,
		Issuer: cfg.AuthJWTIssuer,
		TTL:    defaultTokenTTL,
	}
}

// Claims is the bearer token payload. Subject carries the profile UUID.
type Claims struct {
	Role        string `json:"role"`
	PanchayatID string `json:"panchayat_id,omitempty"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenService(cfg Config, clk clock.Clock) (*TokenService, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrNoSecret
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		issuer: strings.TrimSpace(cfg.Issuer),
		ttl:    ttl,
		clock:  clk,
	}, nil
}

// Issue signs an HS256 token for caller.
func (s *TokenService) Issue(caller identity.Caller) (string, error) {
	now := s.clock.Now()
	claims := &Claims{
		Role: string(caller.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.ProfileID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	if caller.PanchayatID != 0 {
		claims.PanchayatID = caller.PanchayatID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses raw and returns the caller it identifies.
func (s *TokenService) Verify(raw string) (identity.Caller, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return identity.Caller{}, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return identity.Caller{}, ErrInvalidToken
	}

	role, ok := identity.ParseRole(claims.Role)
	if !ok || strings.TrimSpace(claims.Subject) == "" {
		return identity.Caller{}, ErrInvalidToken
	}

	caller := identity.Caller{
		ProfileID: strings.TrimSpace(claims.Subject),
		Role:      role,
	}
	if value := strings.TrimSpace(claims.PanchayatID); value != "" {
		id, err := snowflake.ParseString(value)
		if err != nil {
			return identity.Caller{}, ErrInvalidToken
		}
		caller.PanchayatID = id
	}
	return caller, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
