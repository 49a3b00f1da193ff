package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"megacrm-backend/internal/auth"
	"megacrm-backend/internal/config"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/repositories"
	"megacrm-backend/internal/timeutil"
)

// AuthService turns configured passwords into signed sessions with timed
// grants: admin, payments:<employee> and branch:<name>.
type AuthService struct {
	Config  *config.Config
	JWT     *auth.JWTManager
	Clients *repositories.ClientRepository
	Now     func() time.Time
}

func NewAuthService(cfg *config.Config, jwt *auth.JWTManager, clients *repositories.ClientRepository) *AuthService {
	return &AuthService{Config: cfg, JWT: jwt, Clients: clients, Now: timeutil.Now}
}

func (s *AuthService) issue(session *models.Session) (*models.TokenResponse, error) {
	token, err := s.JWT.GenerateToken(*session)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &models.TokenResponse{Token: token, Session: *session}, nil
}

// Login opens an employee session (the employee table must exist, and the
// employee password must match when one is configured) or an admin session
// carrying an admin grant.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	now := s.Now()
	session := &models.Session{Role: req.Role, Grants: map[string]time.Time{}, Now: now}

	switch req.Role {
	case models.RoleAdmin:
		if !auth.CheckSecret(s.Config.Auth.AdminPassword, req.Password) {
			log.Printf("[Auth] admin login rejected")
			return nil, ErrUnauthorized
		}
		session.Actor = "admin"
		session.Grants[models.GrantAdmin] = now.Add(s.Config.Auth.AdminUnlock)
	default:
		employee := strings.TrimSpace(req.Employee)
		employees, err := s.Clients.ListEmployees(ctx)
		if err != nil {
			return nil, err
		}
		if !contains(employees, employee) {
			return nil, fmt.Errorf("employee %q: %w", employee, ErrUnauthorized)
		}
		if secret := s.Config.EmployeePasswordFor(employee); secret != "" && !auth.CheckSecret(secret, req.Password) {
			log.Printf("[Auth] login rejected for %s", employee)
			return nil, ErrUnauthorized
		}
		session.Actor = employee
		session.Employee = employee
	}
	return s.issue(session)
}

// Unlock adds a timed grant to the session after checking the scope password
func (s *AuthService) Unlock(ctx context.Context, session *models.Session, req *models.UnlockRequest) (*models.TokenResponse, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	now := s.Now()
	next := cloneSession(session, now)

	switch req.Scope {
	case "payments":
		employee := strings.TrimSpace(req.Target)
		if session.Role == models.RoleEmployee && employee != session.Employee {
			return nil, fmt.Errorf("payments of %s: %w", employee, ErrForbidden)
		}
		if !auth.CheckSecret(s.Config.PaymentsPasswordFor(employee), req.Password) {
			return nil, ErrUnauthorized
		}
		next.Grants[models.GrantPayments+employee] = now.Add(s.Config.Auth.PaymentsUnlock)
	case "branch":
		b, ok := s.Config.Branch(req.Target)
		if !ok {
			return nil, fmt.Errorf("branch %q: %w", req.Target, ErrNotFound)
		}
		if !auth.CheckSecret(b.Password, req.Password) {
			return nil, ErrUnauthorized
		}
		next.Grants[models.GrantBranch+b.Name] = now.Add(time.Duration(s.Config.JWT.ExpirationHours) * time.Hour)
	}
	log.Printf("[Auth] %s unlocked %s %s", session.Actor, req.Scope, req.Target)
	return s.issue(next)
}

// Lock drops a grant from the session
func (s *AuthService) Lock(ctx context.Context, session *models.Session, req *models.LockRequest) (*models.TokenResponse, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	next := cloneSession(session, s.Now())
	switch req.Scope {
	case "admin":
		delete(next.Grants, models.GrantAdmin)
	case "payments":
		delete(next.Grants, models.GrantPayments+strings.TrimSpace(req.Target))
	case "branch":
		if b, ok := s.Config.Branch(req.Target); ok {
			delete(next.Grants, models.GrantBranch+b.Name)
		}
	}
	return s.issue(next)
}

func cloneSession(s *models.Session, now time.Time) *models.Session {
	next := &models.Session{
		Actor:    s.Actor,
		Role:     s.Role,
		Employee: s.Employee,
		Grants:   make(map[string]time.Time, len(s.Grants)+1),
		Now:      now,
	}
	for scope, exp := range s.Grants {
		if exp.After(now) {
			next.Grants[scope] = exp
		}
	}
	return next
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
