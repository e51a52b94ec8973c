package jwt

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles recognised by the scoring API
const (
	RoleRecruiter = "recruiter"
	RoleReviewer  = "reviewer"
	RoleAdmin     = "admin"
	RoleService   = "service"
)

// Claims represents JWT custom claims
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	OrgID  string    `json:"org_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims carry any of roles
func (c *Claims) HasRole(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}
