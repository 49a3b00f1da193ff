package services

import (
	"fmt"

	"megacrm-backend/internal/models"
)

// CanAccessEmployee: admins reach every table, employees only their own
func CanAccessEmployee(s *models.Session, employee string) bool {
	if s == nil {
		return false
	}
	return s.IsAdmin() || (s.Role == models.RoleEmployee && s.Employee == employee)
}

func requirePayments(s *models.Session, employee string) error {
	if s.IsAdmin() || s.HasGrant(models.GrantPayments+employee) {
		return nil
	}
	return fmt.Errorf("payments of %s are locked: %w", employee, ErrForbidden)
}

func requireBranch(s *models.Session, b models.Branch) error {
	if s.IsAdmin() || s.HasGrant(models.GrantBranch+b.Name) {
		return nil
	}
	return fmt.Errorf("branch %s is locked: %w", b.Name, ErrForbidden)
}

// actorName is what gets written in the "Employé" column of ledger rows
func actorName(s *models.Session) string {
	if s == nil {
		return ""
	}
	if s.Employee != "" {
		return s.Employee
	}
	return s.Actor
}
