package service

import (
	"strings"

	"github.com/andcook/andcook/backend/internal/models"
)

// AccessGuard decides who may mutate recipes and reach admin endpoints.
type AccessGuard struct {
	privilegedEmail string
}

// NewAccessGuard returns a guard that also treats privilegedEmail as an
// administrator. An empty address disables that rule.
func NewAccessGuard(privilegedEmail string) *AccessGuard {
	return &AccessGuard{privilegedEmail: strings.ToLower(strings.TrimSpace(privilegedEmail))}
}

// IsAdmin reports whether u holds the admin role or the privileged address.
func (g *AccessGuard) IsAdmin(u *models.User) bool {
	if u == nil {
		return false
	}
	if u.Role == models.RoleAdmin {
		return true
	}
	return g.privilegedEmail != "" && strings.EqualFold(u.Email, g.privilegedEmail)
}

// CanMutate reports whether u may update or delete r: admins and the author.
func (g *AccessGuard) CanMutate(u *models.User, r *models.Recipe) bool {
	if u == nil || r == nil {
		return false
	}
	return g.IsAdmin(u) || u.ID == r.AuthorID
}
