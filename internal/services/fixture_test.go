package services_test

import (
	"context"
	"testing"
	"time"

	"megacrm-backend/internal/auth"
	"megacrm-backend/internal/config"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/repositories"
	"megacrm-backend/internal/services"
	"megacrm-backend/internal/store"
	"megacrm-backend/internal/timeutil"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.March, 10, 11, 30, 0, 0, timeutil.Business)

func clock() time.Time { return now }

type fixture struct {
	store     *store.Memory
	cfg       *config.Config
	clients   *services.ClientService
	dashboard *services.DashboardService
	payments  *services.PaymentService
	finance   *services.FinanceService
	auth      *services.AuthService
}

func newFixture(t *testing.T, employees ...string) *fixture {
	t.Helper()
	mem := store.NewMemory()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test"
	cfg.JWT.ExpirationHours = 12
	cfg.Auth.AdminPassword = "admin123"
	cfg.Auth.AdminUnlock = 30 * time.Minute
	cfg.Auth.PaymentsPassword = "1234"
	cfg.Auth.PaymentsUnlock = 15 * time.Minute
	cfg.Branches = []models.Branch{
		{Name: "Menzel Bourguiba", Code: "MB", Password: "MB_2025!"},
		{Name: "Bizerte", Code: "BZ", Password: "BZ_2025!"},
	}

	clientRepo := repositories.NewClientRepository(mem)
	f := &fixture{
		store:     mem,
		cfg:       cfg,
		clients:   services.NewClientService(clientRepo, repositories.NewTransferLogRepository(mem), nil),
		dashboard: services.NewDashboardService(clientRepo, nil, time.Minute),
		payments:  services.NewPaymentService(repositories.NewPaymentRepository(mem), clientRepo, nil, time.Minute, nil),
		finance:   services.NewFinanceService(repositories.NewFinanceRepository(mem), clientRepo, cfg.Branches, nil),
		auth:      services.NewAuthService(cfg, auth.NewJWTManager(cfg), clientRepo),
	}
	f.clients.Now = clock
	f.dashboard.Now = clock
	f.payments.Now = clock
	f.finance.Now = clock
	f.auth.Now = clock

	for _, e := range employees {
		require.NoError(t, f.clients.CreateEmployee(context.Background(), &models.CreateEmployeeRequest{Name: e}))
	}
	return f
}

func (f *fixture) add(t *testing.T, employee, name, phone, formation string) *models.ClientView {
	t.Helper()
	v, err := f.clients.AddClient(context.Background(), employee, &models.CreateClientRequest{
		Name: name, Phone: phone, Formation: formation,
	})
	require.NoError(t, err)
	return v
}

func adminSession() *models.Session {
	return &models.Session{
		Actor:  "admin",
		Role:   models.RoleAdmin,
		Grants: map[string]time.Time{models.GrantAdmin: now.Add(time.Hour)},
		Now:    now,
	}
}

func employeeSession(name string, grants ...string) *models.Session {
	s := &models.Session{Actor: name, Role: models.RoleEmployee, Employee: name, Grants: map[string]time.Time{}, Now: now}
	for _, g := range grants {
		s.Grants[g] = now.Add(time.Hour)
	}
	return s
}
