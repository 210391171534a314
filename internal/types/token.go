package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims represents the claims in a JWT issued by the identity provider.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Image  string    `json:"image,omitempty"`
	Role   string    `json:"role,omitempty"`
}

// Principal is the acting identity of a request as asserted by the session.
// It is trusted as-is and resolved to a stored user by the identity service.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Image  string
	Role   string
}

// Principal extracts the acting identity from validated claims.
func (c *TokenClaims) Principal() *Principal {
	return &Principal{
		UserID: c.UserID,
		Email:  c.Email,
		Name:   c.Name,
		Image:  c.Image,
		Role:   c.Role,
	}
}
