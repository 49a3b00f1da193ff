package handlers

import (
	"net/http"

	"megacrm-backend/internal/models"
	"megacrm-backend/internal/services"
	"megacrm-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type FinanceHandler struct {
	Service *services.FinanceService
}

func NewFinanceHandler(s *services.FinanceService) *FinanceHandler {
	return &FinanceHandler{Service: s}
}

// List handles GET /api/finance/{branch}/{kind}/{month}?from=&to=&search=&employee=
func (h *FinanceHandler) List(w http.ResponseWriter, r *http.Request) {
	month, ok := monthVar(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	q := r.URL.Query()
	list, err := h.Service.List(r.Context(), session(r), vars["branch"], vars["kind"], month, models.LedgerFilter{
		From:     queryDate(r, "from"),
		To:       queryDate(r, "to"),
		Search:   q.Get("search"),
		Employee: q.Get("employee"),
	})
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

// AddRevenue handles POST /api/finance/{branch}/revenues/{month}
func (h *FinanceHandler) AddRevenue(w http.ResponseWriter, r *http.Request) {
	month, ok := monthVar(w, r)
	if !ok {
		return
	}
	var req models.CreateRevenueRequest
	if !decode(w, r, &req) {
		return
	}
	entry, err := h.Service.AddRevenue(r.Context(), session(r), mux.Vars(r)["branch"], month, &req)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, entry)
}

// AddExpense handles POST /api/finance/{branch}/expenses/{month}
func (h *FinanceHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	month, ok := monthVar(w, r)
	if !ok {
		return
	}
	var req models.CreateExpenseRequest
	if !decode(w, r, &req) {
		return
	}
	entry, err := h.Service.AddExpense(r.Context(), session(r), mux.Vars(r)["branch"], month, &req)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, entry)
}

// Summary handles GET /api/finance/{branch}/summary/{month}
func (h *FinanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	month, ok := monthVar(w, r)
	if !ok {
		return
	}
	summary, err := h.Service.Summary(r.Context(), session(r), mux.Vars(r)["branch"], month)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

// Reconciliation handles GET /api/finance/{branch}/reconciliation
func (h *FinanceHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.Reconciliation(r.Context(), session(r), mux.Vars(r)["branch"])
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, rec)
}

// EnrolledClients handles GET /api/finance/enrolled-clients?employee=
// Employees get their own table regardless of the query.
func (h *FinanceHandler) EnrolledClients(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	employee := r.URL.Query().Get("employee")
	if s != nil && s.Role == models.RoleEmployee {
		employee = s.Employee
	}
	if employee == "" {
		utils.Error(w, http.StatusBadRequest, "employee is required")
		return
	}
	if !services.CanAccessEmployee(s, employee) {
		utils.Error(w, http.StatusForbidden, "Forbidden: not your client table")
		return
	}
	clients, err := h.Service.EnrolledClients(r.Context(), employee)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	if clients == nil {
		clients = []models.EnrolledClient{}
	}
	utils.JSON(w, http.StatusOK, clients)
}
