package http_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"megacrm-backend/internal/auth"
	"megacrm-backend/internal/config"
	"megacrm-backend/internal/handlers"
	"megacrm-backend/internal/health"
	api "megacrm-backend/internal/http"
	"megacrm-backend/internal/middleware"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/repositories"
	"megacrm-backend/internal/services"
	"megacrm-backend/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	t       *testing.T
	handler http.Handler
}

func newServer(t *testing.T) *server {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "router-test"
	cfg.JWT.ExpirationHours = 12
	cfg.Auth.AdminPassword = "admin123"
	cfg.Auth.AdminUnlock = 30 * time.Minute
	cfg.Auth.PaymentsPassword = "1234"
	cfg.Auth.PaymentsUnlock = 15 * time.Minute
	cfg.Branches = []models.Branch{{Name: "Menzel Bourguiba", Code: "MB", Password: "MB_2025!"}}

	mem := store.NewMemory()
	clientRepo := repositories.NewClientRepository(mem)
	jm := auth.NewJWTManager(cfg)

	clientService := services.NewClientService(clientRepo, repositories.NewTransferLogRepository(mem), nil)
	dashboardService := services.NewDashboardService(clientRepo, nil, time.Minute)
	paymentService := services.NewPaymentService(repositories.NewPaymentRepository(mem), clientRepo, nil, time.Minute, nil)
	financeService := services.NewFinanceService(repositories.NewFinanceRepository(mem), clientRepo, cfg.Branches, nil)

	router := api.NewRouter(api.Handlers{
		Auth:      handlers.NewAuthHandler(services.NewAuthService(cfg, jm, clientRepo)),
		Clients:   handlers.NewClientHandler(clientService),
		Dashboard: handlers.NewDashboardHandler(dashboardService),
		Payments:  handlers.NewPaymentHandler(paymentService),
		Finance:   handlers.NewFinanceHandler(financeService),
		Reports:   handlers.NewReportHandler(services.NewReportService(dashboardService, paymentService)),
		Backup:    handlers.NewBackupHandler(services.NewBackupService(mem, nil, "", "", nil)),
		Health:    handlers.NewHealthHandler(health.NewHealthChecker(mem, nil)),
	}, middleware.NewAuthMiddleware(jm))

	return &server{t: t, handler: middleware.PanicRecovery(router)}
}

func (s *server) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *server) token(rec *httptest.ResponseRecorder) string {
	s.t.Helper()
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp models.TokenResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(s.t, resp.Token)
	return resp.Token
}

func (s *server) login(req models.LoginRequest) string {
	return s.token(s.do(http.MethodPost, "/auth/login", "", req))
}

func TestRouter_ClientFlow(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/auth/login", "", models.LoginRequest{Role: "admin", Password: "nope"}).Code)
	admin := s.login(models.LoginRequest{Role: "admin", Password: "admin123"})

	for _, name := range []string{"Sana", "Walid"} {
		rec := s.do(http.MethodPost, "/api/employees", admin, models.CreateEmployeeRequest{Name: name})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/employees", admin, models.CreateEmployeeRequest{Name: "Sana"}).Code)

	sana := s.login(models.LoginRequest{Role: "employee", Employee: "Sana"})
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/employees", sana, models.CreateEmployeeRequest{Name: "X"}).Code)

	rec := s.do(http.MethodPost, "/api/employees/Sana/clients", sana, models.CreateClientRequest{
		Name: "Amine", Phone: "22 111 333", Formation: "Anglais",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// same number in another format, other employee
	rec = s.do(http.MethodPost, "/api/employees/Walid/clients", admin, models.CreateClientRequest{
		Name: "Amine bis", Phone: "+216 22111333", Formation: "Anglais",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/employees/Sana/clients", sana, models.CreateClientRequest{Phone: "22000000"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var verr struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verr))
	assert.Equal(t, "required", verr.Fields["Name"])

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/employees/Walid/clients", sana, nil).Code)

	rec = s.do(http.MethodPost, "/api/employees/Sana/clients/21622111333/notes", sana, models.NoteRequest{Note: "rappeler lundi"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/employees/Sana/clients", sana, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list models.ClientList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Clients, 1)
	assert.Contains(t, list.Clients[0].Remark, "rappeler lundi")

	rec = s.do(http.MethodPost, "/api/reassign", sana, models.ReassignRequest{Source: "Sana", Destination: "Walid", Phone: "22111333"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/transfers", sana, nil).Code)

	rec = s.do(http.MethodGet, "/api/transfers", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []models.TransferLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	assert.Len(t, logs, 1)

	rec = s.do(http.MethodGet, "/api/clients/search?phone=22111333", sana, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found []models.ClientView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Walid", found[0].Employee)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/dashboard", sana, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/stats/formations?month=2026-03", sana, nil).Code)
}

func TestRouter_PaymentsNeedUnlock(t *testing.T) {
	s := newServer(t)
	admin := s.login(models.LoginRequest{Role: "admin", Password: "admin123"})
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/employees", admin, models.CreateEmployeeRequest{Name: "Sana"}).Code)

	sana := s.login(models.LoginRequest{Role: "employee", Employee: "Sana"})
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/employees/Sana/clients", sana, models.CreateClientRequest{
		Name: "Amine", Phone: "22111333", Formation: "Anglais", Enrolled: true,
	}).Code)

	pay := models.CreatePaymentRequest{Phone: "22111333", Price: decimal.NewFromInt(1000), Amount: decimal.NewFromInt(300)}
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/employees/Sana/payments", sana, pay).Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/auth/unlock", sana, models.UnlockRequest{Scope: "payments", Target: "Sana", Password: "bad"}).Code)
	unlocked := s.token(s.do(http.MethodPost, "/api/auth/unlock", sana, models.UnlockRequest{Scope: "payments", Target: "Sana", Password: "1234"}))

	rec := s.do(http.MethodPost, "/api/employees/Sana/payments", unlocked, pay)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p models.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.True(t, p.Remaining.Equal(decimal.NewFromInt(700)))

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/payments", unlocked, nil).Code)
	rec = s.do(http.MethodGet, "/api/payments?employee=Sana", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all models.PaymentList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all.Payments, 1)

	locked := s.token(s.do(http.MethodPost, "/api/auth/lock", unlocked, models.LockRequest{Scope: "payments", Target: "Sana"}))
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/employees/Sana/payments", locked, nil).Code)

	rec = s.do(http.MethodGet, "/api/reports/payments.csv", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
}

func TestRouter_Finance(t *testing.T) {
	s := newServer(t)
	admin := s.login(models.LoginRequest{Role: "admin", Password: "admin123"})
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/employees", admin, models.CreateEmployeeRequest{Name: "Sana"}).Code)
	sana := s.login(models.LoginRequest{Role: "employee", Employee: "Sana"})

	rev := models.CreateRevenueRequest{Label: "Inscription", Price: decimal.NewFromInt(500), AdminAmount: decimal.NewFromInt(200)}
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/finance/MB/revenues/3", sana, rev).Code)

	branch := s.token(s.do(http.MethodPost, "/api/auth/unlock", sana, models.UnlockRequest{Scope: "branch", Target: "MB", Password: "MB_2025!"}))
	rec := s.do(http.MethodPost, "/api/finance/MB/revenues/3", branch, rev)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/finance/MB/revenues/13", branch, rev).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/finance/MB/other/3", branch, nil).Code)

	rec = s.do(http.MethodGet, "/api/finance/MB/revenues/3", branch, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list models.LedgerList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Revenues, 1)
	assert.True(t, list.Revenues[0].Remaining.Equal(decimal.NewFromInt(300)))

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/finance/MB/summary/3", branch, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/finance/MB/reconciliation", admin, nil).Code)
}

func TestRouter_BackupAndImport(t *testing.T) {
	s := newServer(t)
	admin := s.login(models.LoginRequest{Role: "admin", Password: "admin123"})

	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodPost, "/api/backup", admin, nil).Code)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "clients.xlsx")
	require.NoError(t, err)
	fw.Write([]byte("not a workbook"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+admin)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_PublicEndpoints(t *testing.T) {
	s := newServer(t)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health/ready", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/metrics", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/dashboard", "", nil).Code)
}
