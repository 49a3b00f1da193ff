package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"megacrm-backend/internal/middleware"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/services"
	"megacrm-backend/internal/timeutil"
	"megacrm-backend/pkg/utils"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// decode reads a JSON body into dst, writing 400 on failure
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func session(r *http.Request) *models.Session {
	return middleware.SessionFromContext(r.Context())
}

// employeeVar returns the {employee} path variable if the session may act on it
func employeeVar(w http.ResponseWriter, r *http.Request) (string, bool) {
	employee := mux.Vars(r)["employee"]
	if !services.CanAccessEmployee(session(r), employee) {
		utils.Error(w, http.StatusForbidden, "Forbidden: not your client table")
		return "", false
	}
	return employee, true
}

func monthVar(w http.ResponseWriter, r *http.Request) (int, bool) {
	month, err := strconv.Atoi(mux.Vars(r)["month"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid month")
		return 0, false
	}
	return month, true
}

func queryDate(r *http.Request, key string) *time.Time {
	if t, ok := timeutil.ParseDate(r.URL.Query().Get(key)); ok {
		return &t
	}
	return nil
}

func queryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}
