package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/stuteach-backend/internal/access"
	"github.com/stemsi/stuteach-backend/internal/response"
	"github.com/stemsi/stuteach-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
	// ContextKeyCaller is the Gin context key for the resolved access.Caller.
	ContextKeyCaller = "caller"
)

// RequireAuth resolves the bearer token into a Caller. Requests without a
// usable credential never reach the handler.
func RequireAuth(authService *service.AuthService, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "auth_middleware").Logger()

	return func(c *gin.Context) {
		caller, claims, err := authService.ResolveCaller(c.Request.Context(), bearerToken(c))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenMissing):
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			case errors.Is(err, service.ErrTokenExpired):
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenExpired)
			case errors.Is(err, service.ErrTokenInvalid):
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			default:
				log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("Failed to resolve caller")
				response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			}
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyCaller, caller)
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetCaller retrieves the resolved caller. The boolean is false when
// RequireAuth did not run.
func GetCaller(c *gin.Context) (access.Caller, bool) {
	val, exists := c.Get(ContextKeyCaller)
	if !exists {
		return access.Caller{}, false
	}
	caller, ok := val.(access.Caller)
	return caller, ok
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
