package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/logging"
	"github.com/andcook/andcook/backend/internal/types"
)

// PrincipalKey is the gin context key holding the *types.Principal of an
// authenticated request.
const PrincipalKey = "principal"

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperror.New(apperror.ErrUnauthorized, "Unauthorized"))
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortWithError(c, apperror.New(apperror.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := validator.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("rejected session token")
			abortWithError(c, apperror.New(apperror.ErrUnauthorized, "Unauthorized"))
			return
		}

		c.Set(PrincipalKey, claims.Principal())
		c.Next()
	}
}

// GetPrincipal returns the authenticated principal, or nil when the request
// did not pass AuthMiddleware.
func GetPrincipal(c *gin.Context) *types.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*types.Principal)
	return p
}

// principalKey is the rate limiter bucket for the request's principal.
func principalKey(c *gin.Context) string {
	p := GetPrincipal(c)
	if p == nil {
		return ""
	}
	if p.Email != "" {
		return strings.ToLower(p.Email)
	}
	return p.UserID.String()
}
