package handlers

import (
	"net/http"

	"megacrm-backend/internal/models"
	"megacrm-backend/internal/services"
	"megacrm-backend/pkg/utils"
)

type AuthHandler struct {
	Service *services.AuthService
}

func NewAuthHandler(s *services.AuthService) *AuthHandler {
	return &AuthHandler{Service: s}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// Unlock handles POST /api/auth/unlock and returns a token carrying the new grant
func (h *AuthHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req models.UnlockRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.Service.Unlock(r.Context(), session(r), &req)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// Lock handles POST /api/auth/lock
func (h *AuthHandler) Lock(w http.ResponseWriter, r *http.Request) {
	var req models.LockRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.Service.Lock(r.Context(), session(r), &req)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, session(r))
}
