package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"megacrm-backend/internal/services"
	"megacrm-backend/internal/timeutil"
	"megacrm-backend/pkg/utils"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// ClientsCSV handles GET /api/reports/clients.csv?employee=
// Employees only export their own table.
func (h *ReportHandler) ClientsCSV(w http.ResponseWriter, r *http.Request) {
	employee := r.URL.Query().Get("employee")
	if s := session(r); !s.IsAdmin() {
		if employee == "" {
			employee = s.Employee
		}
		if !services.CanAccessEmployee(s, employee) {
			utils.Error(w, http.StatusForbidden, "Forbidden: not your client table")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	data, err := h.Service.ClientsCSV(ctx, employee)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}

	scope := "all"
	if employee != "" {
		scope = employee
	}
	attach(w, "text/csv", fmt.Sprintf("clients_%s_%s.csv", scope, timeutil.Now().Format("2006-01-02")), data)
}

// PaymentsCSV handles GET /api/reports/payments.csv with the /api/payments filters
func (h *ReportHandler) PaymentsCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	data, err := h.Service.PaymentsCSV(ctx, session(r), paymentFilter(r))
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	attach(w, "text/csv", fmt.Sprintf("payments_%s.csv", timeutil.Now().Format("2006-01-02")), data)
}

// DashboardPDF handles GET /api/reports/dashboard.pdf
func (h *ReportHandler) DashboardPDF(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	data, err := h.Service.DashboardPDF(ctx)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	attach(w, "application/pdf", fmt.Sprintf("dashboard_%s.pdf", timeutil.Now().Format("2006-01-02")), data)
}

func attach(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Write(data)
}
