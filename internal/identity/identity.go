// Package identity carries the authenticated caller through request contexts.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleFarmer         Role = "farmer"
	RoleBuyer          Role = "buyer"
	RolePanchayatAdmin Role = "panchayat_admin"
)

var ErrNoCaller = errors.New("unauthorized")

func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleFarmer:
		return RoleFarmer, true
	case RoleBuyer:
		return RoleBuyer, true
	case RolePanchayatAdmin:
		return RolePanchayatAdmin, true
	default:
		return "", false
	}
}

// Caller is the verified identity behind a request.
type Caller struct {
	ProfileID   string
	Role        Role
	PanchayatID snowflake.ID
}

func (c Caller) Subject() string {
	return "role:" + string(c.Role)
}

type callerKey struct{}

func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

func CallerFromContext(ctx context.Context) (Caller, bool) {
	if ctx == nil {
		return Caller{}, false
	}
	caller, ok := ctx.Value(callerKey{}).(Caller)
	if !ok || strings.TrimSpace(caller.ProfileID) == "" {
		return Caller{}, false
	}
	return caller, true
}

// MustCaller returns ErrNoCaller when ctx carries no identity.
func MustCaller(ctx context.Context) (Caller, error) {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return Caller{}, ErrNoCaller
	}
	return caller, nil
}
