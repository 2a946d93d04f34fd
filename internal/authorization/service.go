package authorization

import (
	"context"

	"github.com/smallbiznis/agrimarket/internal/identity"
)

type Service interface {
	Authorize(ctx context.Context, caller identity.Caller, object string, action string) error
}
