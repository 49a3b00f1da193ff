package handlers

import (
	"net/http"

	"megacrm-backend/internal/services"
	"megacrm-backend/pkg/utils"
)

type DashboardHandler struct {
	Service *services.DashboardService
}

func NewDashboardHandler(s *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Service: s}
}

// Dashboard handles GET /api/dashboard
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Dashboard(r.Context())
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, d)
}

// ByEmployee handles GET /api/stats/employees
func (h *DashboardHandler) ByEmployee(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.ByEmployee(r.Context())
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, stats)
}

// ByMonth handles GET /api/stats/months
func (h *DashboardHandler) ByMonth(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.ByMonth(r.Context())
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, stats)
}

// ByFormation handles GET /api/stats/formations?month=MM-YYYY
func (h *DashboardHandler) ByFormation(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.ByFormation(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, stats)
}
