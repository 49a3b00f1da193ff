package http

import (
	"net/http"

	"megacrm-backend/internal/handlers"
	"megacrm-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Auth      *handlers.AuthHandler
	Clients   *handlers.ClientHandler
	Dashboard *handlers.DashboardHandler
	Payments  *handlers.PaymentHandler
	Finance   *handlers.FinanceHandler
	Reports   *handlers.ReportHandler
	Backup    *handlers.BackupHandler
	Health    *handlers.HealthHandler
	Realtime  http.Handler
}

func NewRouter(hs Handlers, authMiddleware *middleware.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogging, middleware.MetricsMiddleware)

	admin := func(f http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.RequireAdmin(f).ServeHTTP
	}

	// Public API routes - Authentication
	r.HandleFunc("/auth/login", hs.Auth.Login).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/auth/me", hs.Auth.Me).Methods("GET")
	api.HandleFunc("/auth/unlock", hs.Auth.Unlock).Methods("POST")
	api.HandleFunc("/auth/lock", hs.Auth.Lock).Methods("POST")

	// Employees and their client tables
	api.HandleFunc("/employees", hs.Clients.ListEmployees).Methods("GET")
	api.HandleFunc("/employees", admin(hs.Clients.CreateEmployee)).Methods("POST")
	api.HandleFunc("/employees/{name}", admin(hs.Clients.DeleteEmployee)).Methods("DELETE")

	clientsAPI := api.PathPrefix("/employees/{employee}/clients").Subrouter()
	clientsAPI.HandleFunc("", hs.Clients.ListClients).Methods("GET")
	clientsAPI.HandleFunc("", hs.Clients.AddClient).Methods("POST")
	clientsAPI.HandleFunc("/{phone}", hs.Clients.EditClient).Methods("PUT")
	clientsAPI.HandleFunc("/{phone}/notes", hs.Clients.AppendNote).Methods("POST")
	clientsAPI.HandleFunc("/{phone}/tag", hs.Clients.SetTag).Methods("PUT")
	clientsAPI.HandleFunc("/{phone}/alert", hs.Clients.SetAlert).Methods("PUT")

	api.HandleFunc("/reassign", hs.Clients.Reassign).Methods("POST")
	api.HandleFunc("/transfers", admin(hs.Clients.Transfers)).Methods("GET")
	api.HandleFunc("/clients/search", hs.Clients.Search).Methods("GET")

	// Dashboard and statistics
	api.HandleFunc("/dashboard", hs.Dashboard.Dashboard).Methods("GET")
	api.HandleFunc("/stats/employees", hs.Dashboard.ByEmployee).Methods("GET")
	api.HandleFunc("/stats/months", hs.Dashboard.ByMonth).Methods("GET")
	api.HandleFunc("/stats/formations", hs.Dashboard.ByFormation).Methods("GET")

	// Payments (grant checks happen in the service)
	api.HandleFunc("/employees/{employee}/payments", hs.Payments.List).Methods("GET")
	api.HandleFunc("/employees/{employee}/payments", hs.Payments.Add).Methods("POST")
	api.HandleFunc("/payments", admin(hs.Payments.All)).Methods("GET")

	// Finance ledgers, most specific routes first
	financeAPI := api.PathPrefix("/finance").Subrouter()
	financeAPI.HandleFunc("/enrolled-clients", hs.Finance.EnrolledClients).Methods("GET")
	financeAPI.HandleFunc("/{branch}/reconciliation", hs.Finance.Reconciliation).Methods("GET")
	financeAPI.HandleFunc("/{branch}/summary/{month:[0-9]+}", hs.Finance.Summary).Methods("GET")
	financeAPI.HandleFunc("/{branch}/revenues/{month:[0-9]+}", hs.Finance.AddRevenue).Methods("POST")
	financeAPI.HandleFunc("/{branch}/expenses/{month:[0-9]+}", hs.Finance.AddExpense).Methods("POST")
	financeAPI.HandleFunc("/{branch}/{kind:revenues|expenses}/{month:[0-9]+}", hs.Finance.List).Methods("GET")

	// Reports
	api.HandleFunc("/reports/clients.csv", hs.Reports.ClientsCSV).Methods("GET")
	api.HandleFunc("/reports/payments.csv", admin(hs.Reports.PaymentsCSV)).Methods("GET")
	api.HandleFunc("/reports/dashboard.pdf", hs.Reports.DashboardPDF).Methods("GET")

	// Backup and workbook import
	api.HandleFunc("/backup", admin(hs.Backup.Run)).Methods("POST")
	api.HandleFunc("/backup", admin(hs.Backup.Last)).Methods("GET")
	api.HandleFunc("/import", admin(hs.Backup.Import)).Methods("POST")

	// Change notifications
	if hs.Realtime != nil {
		r.Handle("/ws", hs.Realtime)
	}

	// Health endpoints (no auth required)
	r.HandleFunc("/health", hs.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", hs.Health.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", hs.Health.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
