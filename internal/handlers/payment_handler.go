package handlers

import (
	"net/http"

	"megacrm-backend/internal/models"
	"megacrm-backend/internal/services"
	"megacrm-backend/pkg/utils"
)

type PaymentHandler struct {
	Service *services.PaymentService
}

func NewPaymentHandler(s *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Service: s}
}

// List handles GET /api/employees/{employee}/payments?phone=
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	employee, ok := employeeVar(w, r)
	if !ok {
		return
	}
	payments, err := h.Service.List(r.Context(), session(r), employee, r.URL.Query().Get("phone"))
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	utils.JSON(w, http.StatusOK, payments)
}

// Add handles POST /api/employees/{employee}/payments
func (h *PaymentHandler) Add(w http.ResponseWriter, r *http.Request) {
	employee, ok := employeeVar(w, r)
	if !ok {
		return
	}
	var req models.CreatePaymentRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Service.Add(r.Context(), session(r), employee, &req)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, p)
}

// All handles GET /api/payments?employee=&formation=&from=&to=&sort=&asc=
func (h *PaymentHandler) All(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.All(r.Context(), session(r), paymentFilter(r))
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

func paymentFilter(r *http.Request) models.PaymentFilter {
	return models.PaymentFilter{
		Employees:  queryList(r, "employee"),
		Formations: queryList(r, "formation"),
		From:       queryDate(r, "from"),
		To:         queryDate(r, "to"),
		SortBy:     r.URL.Query().Get("sort"),
		Ascending:  queryBool(r, "asc"),
	}
}
