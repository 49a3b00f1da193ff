package models

import "time"

// Roles
const (
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

// Grant scopes
const (
	GrantAdmin    = "admin"
	GrantPayments = "payments:"
	GrantBranch   = "branch:"
)

// Session is the request-scoped identity built from a validated token
type Session struct {
	Actor    string               `json:"actor"`
	Role     string               `json:"role"`
	Employee string               `json:"employee,omitempty"`
	Grants   map[string]time.Time `json:"grants,omitempty"`
	Now      time.Time            `json:"-"`
}

// HasGrant reports whether scope is granted and not yet expired at s.Now
func (s *Session) HasGrant(scope string) bool {
	if s == nil {
		return false
	}
	exp, ok := s.Grants[scope]
	return ok && s.Now.Before(exp)
}

// IsAdmin requires both the admin role and a live admin grant
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin && s.HasGrant(GrantAdmin)
}

type LoginRequest struct {
	Role     string `json:"role" validate:"required,oneof=employee admin"`
	Employee string `json:"employee" validate:"required_if=Role employee"`
	Password string `json:"password"`
}

type UnlockRequest struct {
	Scope    string `json:"scope" validate:"required,oneof=payments branch"`
	Target   string `json:"target" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LockRequest struct {
	Scope  string `json:"scope" validate:"required,oneof=payments branch admin"`
	Target string `json:"target"`
}

// TokenResponse is returned by login/unlock/lock
type TokenResponse struct {
	Token   string  `json:"token"`
	Session Session `json:"session"`
}
