package server

import (
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/agrimarket/internal/auth"
	"github.com/smallbiznis/agrimarket/internal/identity"
	obslogger "github.com/smallbiznis/agrimarket/internal/observability/logger"
	"go.uber.org/zap"
)

const contextProfileIDKey = "profile_id"

// AuthRequired verifies the bearer token and stores the caller on the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		caller, err := s.tokens.Verify(raw)
		if err != nil {
			obslogger.WithContext(c.Request.Context(), s.log).Debug("rejected bearer token", zap.Error(err))
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextProfileIDKey, caller.ProfileID)
		c.Request = c.Request.WithContext(identity.WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}
