package handlers

import (
	"net/http"

	"megacrm-backend/internal/services"
	"megacrm-backend/pkg/utils"
)

const maxImportBytes = 32 << 20

type BackupHandler struct {
	Service *services.BackupService
}

func NewBackupHandler(s *services.BackupService) *BackupHandler {
	return &BackupHandler{Service: s}
}

// Run handles POST /api/backup
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Run(r.Context())
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}

// Last handles GET /api/backup
func (h *BackupHandler) Last(w http.ResponseWriter, r *http.Request) {
	last := h.Service.Last()
	if last == nil {
		utils.Error(w, http.StatusNotFound, "no backup yet")
		return
	}
	utils.JSON(w, http.StatusOK, last)
}

// Import handles POST /api/import (multipart field "file", an .xlsx workbook)
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	tables, err := h.Service.Import(r.Context(), file)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	if tables == nil {
		tables = []string{}
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"imported": tables})
}
