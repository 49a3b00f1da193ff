package handlers

import (
	"net/http"

	"megacrm-backend/internal/models"
	"megacrm-backend/internal/services"
	"megacrm-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// ClientHandler serves employee tables, client edits, reassignment and search
type ClientHandler struct {
	Service *services.ClientService
}

func NewClientHandler(s *services.ClientService) *ClientHandler {
	return &ClientHandler{Service: s}
}

// ListEmployees handles GET /api/employees
func (h *ClientHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	names, err := h.Service.ListEmployees(r.Context())
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	utils.JSON(w, http.StatusOK, names)
}

// CreateEmployee handles POST /api/employees
func (h *ClientHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEmployeeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Service.CreateEmployee(r.Context(), &req); err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]string{"employee": req.Name})
}

// DeleteEmployee handles DELETE /api/employees/{name}
func (h *ClientHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteEmployee(r.Context(), mux.Vars(r)["name"]); err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListClients handles GET /api/employees/{employee}/clients?month=&formation=&alerts=1
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	employee, ok := employeeVar(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	list, err := h.Service.ListClients(r.Context(), employee, models.ClientFilter{
		Month:      q.Get("month"),
		Formation:  q.Get("formation"),
		AlertsOnly: queryBool(r, "alerts"),
	})
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

// AddClient handles POST /api/employees/{employee}/clients
func (h *ClientHandler) AddClient(w http.ResponseWriter, r *http.Request) {
	employee, ok := employeeVar(w, r)
	if !ok {
		return
	}
	var req models.CreateClientRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.Service.AddClient(r.Context(), employee, &req)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, view)
}

// EditClient handles PUT /api/employees/{employee}/clients/{phone}
func (h *ClientHandler) EditClient(w http.ResponseWriter, r *http.Request) {
	employee, ok := employeeVar(w, r)
	if !ok {
		return
	}
	var req models.UpdateClientRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.Service.EditClient(r.Context(), employee, mux.Vars(r)["phone"], &req)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, view)
}

// AppendNote handles POST /api/employees/{employee}/clients/{phone}/notes
func (h *ClientHandler) AppendNote(w http.ResponseWriter, r *http.Request) {
	employee, ok := employeeVar(w, r)
	if !ok {
		return
	}
	var req models.NoteRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.Service.AppendNote(r.Context(), employee, mux.Vars(r)["phone"], &req)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, view)
}

// SetTag handles PUT /api/employees/{employee}/clients/{phone}/tag
func (h *ClientHandler) SetTag(w http.ResponseWriter, r *http.Request) {
	employee, ok := employeeVar(w, r)
	if !ok {
		return
	}
	var req models.TagRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.Service.SetTag(r.Context(), employee, mux.Vars(r)["phone"], &req)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, view)
}

// SetAlert handles PUT /api/employees/{employee}/clients/{phone}/alert
func (h *ClientHandler) SetAlert(w http.ResponseWriter, r *http.Request) {
	employee, ok := employeeVar(w, r)
	if !ok {
		return
	}
	var req models.AlertRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.Service.SetAlert(r.Context(), employee, mux.Vars(r)["phone"], &req)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, view)
}

// Reassign handles POST /api/reassign. Employees may only move clients out of their own table.
func (h *ClientHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	var req models.ReassignRequest
	if !decode(w, r, &req) {
		return
	}
	s := session(r)
	if req.Source != "" && !services.CanAccessEmployee(s, req.Source) {
		utils.Error(w, http.StatusForbidden, "Forbidden: not your client table")
		return
	}
	entry, err := h.Service.Reassign(r.Context(), s.Actor, &req)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, entry)
}

// Transfers handles GET /api/transfers
func (h *ClientHandler) Transfers(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Service.Transfers(r.Context())
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	if logs == nil {
		logs = []models.TransferLog{}
	}
	utils.JSON(w, http.StatusOK, logs)
}

// Search handles GET /api/clients/search?phone=
func (h *ClientHandler) Search(w http.ResponseWriter, r *http.Request) {
	found, err := h.Service.Search(r.Context(), r.URL.Query().Get("phone"))
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, found)
}
